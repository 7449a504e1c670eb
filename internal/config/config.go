package config

type Config interface {
	EnvConfig
	CorsConfig
	ProviderConfig
	SessionConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetBaseURL() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	Cors
	Provider
	Session
}

func New() Config {
	return mainConfig{}
}
