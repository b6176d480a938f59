package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"katutubo-llm/pkg/apperror/status"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3/log"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type serverConfig struct {
	Port               int    `koanf:"port" validate:"required"`
	Mode               string `koanf:"mode" validate:"required"`
	Concurrency        int    `koanf:"concurrency" validate:"required,min=1"`
	BodyLimit          int    `koanf:"body_limit" validate:"required"`
	AppName            string `koanf:"app_name" validate:"required"`
	RequestTimeoutSecs int    `koanf:"request_timeout_secs" validate:"required,min=1"`
}

type logLevel string

const (
	Debug logLevel = "debug"
	Info  logLevel = "info"
	Warn  logLevel = "warn"
	Error logLevel = "error"
	Fatal logLevel = "fatal"
	Panic logLevel = "panic"
)

type Module string

const (
	ModuleMilvus    Module = "milvus"
	ModuleQdrant    Module = "qdrant"
	ModuleEncoder   Module = "encoder"
	ModuleTokenizer Module = "tokenizer"
	ModulePrompt    Module = "prompt"
	ModuleInference Module = "inference"
	ModuleRetriever Module = "retriever"
	ModuleChat      Module = "chat"
	ModuleDatabase  Module = "database"
	ModuleServer    Module = "server"
	ModuleSetting   Module = "setting"
	ModuleHealth    Module = "health"
	ModuleClient    Module = "client"
)

// DefaultSystemPrompt is the persona every prompt starts with.
const DefaultSystemPrompt = "You are a friendly and helpful assistant who responds in Taglish. " +
	"Keep your answers short, chill, and easy to understand — parang ka-chat lang."

type modelConfig struct {
	ID              string `koanf:"id" validate:"required"`
	Adapter         string `koanf:"adapter"`
	Device          string `koanf:"device"`
	Backend         string `koanf:"backend" validate:"oneof=openai ollama"`
	BaseURL         string `koanf:"base_url" validate:"required,url"`
	Key             string `koanf:"key"`
	TimeoutSecs     int    `koanf:"timeout_secs" validate:"required,min=1"`
	MaxPromptTokens int    `koanf:"max_prompt_tokens" validate:"required,min=1"`
	SystemPrompt    string `koanf:"system_prompt" validate:"required"`
}

type tokenizerConfig struct {
	Backend       string `koanf:"backend" validate:"oneof=approx remote"`
	BaseURL       string `koanf:"base_url" validate:"required_if=Backend remote"`
	CharsPerToken int    `koanf:"chars_per_token" validate:"min=1"`
}

type encoderConfig struct {
	ID          string `koanf:"id" validate:"required"`
	Backend     string `koanf:"backend" validate:"oneof=openai ollama"`
	BaseURL     string `koanf:"base_url" validate:"required,url"`
	Key         string `koanf:"key"`
	TimeoutSecs int    `koanf:"timeout_secs" validate:"required,min=1"`
}

type vectorStoreConfig struct {
	Backend        string  `koanf:"backend" validate:"oneof=milvus qdrant"`
	Address        string  `koanf:"address" validate:"required"`
	APIKey         string  `koanf:"api_key"`
	Collection     string  `koanf:"collection" validate:"required"`
	VectorField    string  `koanf:"vector_field" validate:"required"`
	AnswerField    string  `koanf:"answer_field" validate:"required"`
	MetricType     string  `koanf:"metric_type" validate:"oneof=COSINE IP"`
	SearchEf       int     `koanf:"search_ef" validate:"min=1"`
	ScoreThreshold float64 `koanf:"score_threshold" validate:"gte=0,lte=1"`
	TimeoutSecs    int     `koanf:"timeout_secs" validate:"required,min=1"`
}

type exchangeLogConfig struct {
	Enabled      bool   `koanf:"enabled"`
	Driver       string `koanf:"driver" validate:"oneof=mysql sqlite"`
	DSN          string `koanf:"dsn" validate:"required_if=Enabled true"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxLifetime  int    `koanf:"max_lifetime"`
}

type config struct {
	Server      serverConfig      `koanf:"server"`
	LogLevel    logLevel          `koanf:"log_level"`
	Model       modelConfig       `koanf:"model"`
	Tokenizer   tokenizerConfig   `koanf:"tokenizer"`
	Encoder     encoderConfig     `koanf:"encoder"`
	VectorStore vectorStoreConfig `koanf:"vector_store"`
	ExchangeLog exchangeLogConfig `koanf:"exchange_log"`
}

var defaultConfig = config{
	Server: serverConfig{
		Port:               8000,
		Mode:               "release",
		Concurrency:        64,
		BodyLimit:          4 * 1024 * 1024,
		AppName:            "Katutubo LLM API",
		RequestTimeoutSecs: 300,
	},
	LogLevel: Info,
	Model: modelConfig{
		Backend:         "openai",
		BaseURL:         "http://localhost:8080/v1",
		TimeoutSecs:     300,
		MaxPromptTokens: 512,
		SystemPrompt:    DefaultSystemPrompt,
	},
	Tokenizer: tokenizerConfig{
		Backend:       "approx",
		CharsPerToken: 4,
	},
	Encoder: encoderConfig{
		Backend:     "openai",
		BaseURL:     "http://localhost:8081/v1",
		TimeoutSecs: 30,
	},
	VectorStore: vectorStoreConfig{
		Backend:        "milvus",
		Collection:     "up_faqs",
		VectorField:    "embedding",
		AnswerField:    "answer",
		MetricType:     "COSINE",
		SearchEf:       64,
		ScoreThreshold: 0.6,
		TimeoutSecs:    5,
	},
	ExchangeLog: exchangeLogConfig{
		Driver:       "sqlite",
		MaxIdleConns: 2,
		MaxOpenConns: 4,
		MaxLifetime:  30,
	},
}

// envAliases maps the deployment's historical variable names onto config keys.
var envAliases = map[string]string{
	"MODEL_ID":             "model.id",
	"ADAPTER_PATH":         "model.adapter",
	"GPU_ID":               "model.device",
	"ENCODER_ID":           "encoder.id",
	"QDRANT_PATH":          "vector_store.address",
	"VECTOR_STORE_ADDRESS": "vector_store.address",
	"LOG_LEVEL":            "log_level",
}

var (
	Cfg  = defaultConfig
	once sync.Once
)

// envKey turns APP_VECTOR_STORE__SCORE_THRESHOLD into vector_store.score_threshold.
// Unknown variables map to "" and are skipped by the provider.
func envKey(aliases map[string]string) func(string) string {
	return func(s string) string {
		if k, ok := aliases[s]; ok {
			return k
		}
		if !strings.HasPrefix(s, "APP_") {
			return ""
		}
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "APP_")), "__", ".")
	}
}

// load layers defaults, an optional yaml file and the environment into out.
func load(path string, aliases map[string]string, out any) error {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, os.ErrNotExist) {
			return status.New(status.ConfigurationInvalidFile, fmt.Errorf("%v: read %s: %w", ModuleSetting, path, err))
		}
	}

	if err := k.Load(env.Provider("", ".", envKey(aliases)), nil); err != nil {
		return status.New(status.ConfigurationInvalidEnv, fmt.Errorf("%v: read env: %w", ModuleSetting, err))
	}

	if err := k.Unmarshal("", out); err != nil {
		return status.New(status.ConfigurationInvalidEnv, fmt.Errorf("%v: unmarshal config: %w", ModuleSetting, err))
	}
	return nil
}

// validateStruct returns a ConfigurationError listing every failed field.
func validateStruct(v any) error {
	err := validator.New().Struct(v)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return status.New(status.ConfigurationMissing, fmt.Errorf("config validation failed: %w", err))
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%v config validation failed:", ModuleSetting))
	for _, e := range errs {
		sb.WriteString(fmt.Sprintf("\n  • %s: failed '%s' (value: %v)", e.Namespace(), e.Tag(), e.Value()))
	}
	return status.New(status.ConfigurationMissing, errors.New(sb.String()))
}

// Load reads the server configuration from path (optional) and the environment.
func Load(path string) (config, error) {
	cfg := defaultConfig
	if err := load(path, envAliases, &cfg); err != nil {
		return cfg, err
	}
	if err := validateStruct(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Init loads the configuration once into Cfg.
func Init(path string) error {
	var err error
	once.Do(func() {
		var cfg config
		cfg, err = Load(path)
		if err != nil {
			log.Errorf("%v: %v", ModuleSetting, err)
			return
		}
		Cfg = cfg
	})
	return err
}
