package config

import "time"

// ClientConfig configures the chat client. It is loaded separately because the
// client never needs the model or vector store settings.
type ClientConfig struct {
	BaseURL            string `koanf:"base_url" validate:"required,url"`
	MaxRetries         int    `koanf:"max_retries" validate:"min=1"`
	RetryDelaySecs     int    `koanf:"retry_delay_secs" validate:"min=0"`
	HealthTimeoutSecs  int    `koanf:"health_timeout_secs" validate:"min=1"`
	RequestTimeoutSecs int    `koanf:"request_timeout_secs" validate:"min=1"`
}

var defaultClientConfig = ClientConfig{
	BaseURL:            "http://localhost:8000",
	MaxRetries:         20,
	RetryDelaySecs:     5,
	HealthTimeoutSecs:  5,
	RequestTimeoutSecs: 300,
}

var clientEnvAliases = map[string]string{
	"URL": "base_url",
}

// LoadClient reads the client configuration from the environment
// (URL and APP_<KEY> overrides). The PROD flag is handled by the caller
// because it decides whether a .env file is read at all.
func LoadClient() (ClientConfig, error) {
	cfg := defaultClientConfig
	if err := load("", clientEnvAliases, &cfg); err != nil {
		return cfg, err
	}
	if err := validateStruct(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c ClientConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySecs) * time.Second
}

func (c ClientConfig) HealthTimeout() time.Duration {
	return time.Duration(c.HealthTimeoutSecs) * time.Second
}

func (c ClientConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}
