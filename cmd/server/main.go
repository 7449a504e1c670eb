package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"

	"github.com/jrsteele09/go-oauth-relay/handshake"
	"github.com/jrsteele09/go-oauth-relay/internal/config"
	"github.com/jrsteele09/go-oauth-relay/provider"
	"github.com/jrsteele09/go-oauth-relay/server"
	"github.com/jrsteele09/go-oauth-relay/sessions"
	"github.com/jrsteele09/go-oauth-relay/sessions/cacherepo"
	"github.com/jrsteele09/go-oauth-relay/token/refresh"
	"github.com/jrsteele09/go-oauth-relay/token/sqlitestore"
	"github.com/jrsteele09/go-oauth-relay/users"
	fakeuserrepo "github.com/jrsteele09/go-oauth-relay/users/repofake"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running server: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	tokenStore, err := sqlitestore.Open(filepath.Join(c.GetDataFolder(), "tokens.sqlite"))
	if err != nil {
		return fmt.Errorf("sqlitestore.Open %w", err)
	}
	defer tokenStore.Close()

	sessionService := sessions.NewService(cacherepo.New(c.GetSessionTTL()), c.GetSessionTTL())
	userRepo := fakeuserrepo.NewFakeUserRepo()
	if err := seedUser(userRepo); err != nil {
		return fmt.Errorf("seedUser %w", err)
	}

	providerClient := provider.New(c, c.GetBaseURL())
	binder := handshake.NewBinder(sessionService, sessionService, providerClient, tokenStore)
	refresher := refresh.NewManager(tokenStore, providerClient, c)

	srv, err := server.New(c, server.Deps{
		Sessions:  sessionService,
		Users:     userRepo,
		Tokens:    tokenStore,
		Provider:  providerClient,
		Binder:    binder,
		Refresher: refresher,
	})
	if err != nil {
		return fmt.Errorf("server.New %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

// seedUser ensures one local principal exists so a fresh deployment can sign
// in and start the provider challenge.
func seedUser(repo users.UserRepo) error {
	email := config.GetEnv("RELAY_USER_EMAIL", "admin@localhost")
	password := config.GetEnv("RELAY_USER_PASSWORD", "")
	if password == "" {
		log.Printf("RELAY_USER_PASSWORD not set, skipping local user seed\n")
		return nil
	}

	hash, err := users.HashPassword(password)
	if err != nil {
		return fmt.Errorf("users.HashPassword %w", err)
	}
	return repo.Upsert(&users.User{
		Email:        email,
		PasswordHash: hash,
		DateJoined:   time.Now(),
	})
}

func listenAndServe(server *http.Server) error {
	log.Printf("Server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
