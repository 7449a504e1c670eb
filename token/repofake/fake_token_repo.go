package tokenrepofake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-oauth-relay/internal/errors"
	"github.com/jrsteele09/go-oauth-relay/token"
)

var _ token.Repo = (*FakeTokenRepo)(nil)

type FakeTokenRepo struct {
	records map[string]token.Record
	lock    sync.RWMutex
}

func NewFakeTokenRepo() *FakeTokenRepo {
	return &FakeTokenRepo{
		records: make(map[string]token.Record),
	}
}

func (tr *FakeTokenRepo) Get(ctx context.Context, userID string) (*token.Record, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	record, ok := tr.records[userID]
	if !ok {
		return nil, errors.ErrNoLinkedAccount
	}
	return &record, nil
}

func (tr *FakeTokenRepo) Upsert(ctx context.Context, record *token.Record) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	// Store a copy so callers can't mutate stored state afterwards
	tr.records[record.UserID] = *record
	return nil
}

// Len reports the number of stored records. Test helper.
func (tr *FakeTokenRepo) Len() int {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	return len(tr.records)
}
