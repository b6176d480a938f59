package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"katutubo-llm/config"
	"katutubo-llm/internal/api/healthcheck"
	"katutubo-llm/internal/api/infer"
	"katutubo-llm/internal/app"
	"katutubo-llm/internal/core/chat"
	"katutubo-llm/internal/core/encoder"
	"katutubo-llm/internal/core/inference"
	"katutubo-llm/internal/core/prompt"
	"katutubo-llm/internal/core/retriever"
	"katutubo-llm/internal/core/tokenizer"
	"katutubo-llm/internal/database"
	"katutubo-llm/internal/middleware"
	"katutubo-llm/pkg/apperror/status"
	"katutubo-llm/pkg/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/joho/godotenv"
)

func secs(n int) time.Duration { return time.Duration(n) * time.Second }

func newTokenizer() tokenizer.Tokenizer {
	cfg := config.Cfg.Tokenizer
	if cfg.Backend == "remote" {
		return tokenizer.NewRemote(cfg.BaseURL, config.Cfg.Model.Key, config.Cfg.Model.ID, secs(config.Cfg.Model.TimeoutSecs))
	}
	return tokenizer.NewApprox(cfg.CharsPerToken)
}

func newEmbedder() retriever.Embedder {
	cfg := config.Cfg.Encoder
	if cfg.Backend == "ollama" {
		return encoder.NewOllama(cfg.BaseURL, cfg.ID, secs(cfg.TimeoutSecs))
	}
	return encoder.NewOpenAI(cfg.BaseURL, cfg.Key, cfg.ID, secs(cfg.TimeoutSecs))
}

func newGenerator() inference.TextGenerator {
	cfg := config.Cfg.Model
	if cfg.Backend == "ollama" {
		return inference.NewOllama(cfg.BaseURL, cfg.ID, cfg.Device, secs(cfg.TimeoutSecs))
	}
	return inference.NewOpenAI(cfg.BaseURL, cfg.Key, cfg.ID, cfg.Adapter, secs(cfg.TimeoutSecs))
}

// connectMilvusWithRetry gives a freshly started Milvus time to come up.
func connectMilvusWithRetry(cfg retriever.MilvusConfig, attempts int, perAttemptTimeout, delay time.Duration) (*retriever.Milvus, error) {
	var lastErr error
	for i := 0; i < attempts; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), perAttemptTimeout)
		m, err := retriever.DialMilvus(ctx, cfg)
		cancel()
		if err == nil {
			return m, nil
		}
		lastErr = err
		logger.Warn("%v: connect attempt %d/%d failed: %v", config.ModuleMilvus, i+1, attempts, err)
		time.Sleep(delay)
	}
	return nil, lastErr
}

func newVectorIndex() (retriever.VectorIndex, error) {
	cfg := config.Cfg.VectorStore
	switch cfg.Backend {
	case "qdrant":
		return retriever.NewQdrant(retriever.QdrantConfig{
			URL:         cfg.Address,
			APIKey:      cfg.APIKey,
			Collection:  cfg.Collection,
			AnswerField: cfg.AnswerField,
			Timeout:     secs(cfg.TimeoutSecs),
		}), nil
	case "milvus":
		m, err := connectMilvusWithRetry(retriever.MilvusConfig{
			Address:     cfg.Address,
			Collection:  cfg.Collection,
			VectorField: cfg.VectorField,
			AnswerField: cfg.AnswerField,
			MetricType:  cfg.MetricType,
			SearchEf:    cfg.SearchEf,
		}, 5, 10*time.Second, 2*time.Second)
		if err != nil {
			return nil, status.New(status.RetrievalStoreUnavailable, err)
		}
		return m, nil
	default:
		return nil, status.New(status.ConfigurationUnsupported, fmt.Errorf("unsupported vector store %q", cfg.Backend))
	}
}

func newExchangeLog() chat.ExchangeLog {
	cfg := config.Cfg.ExchangeLog
	if !cfg.Enabled {
		return chat.NopLog
	}
	err := database.Init(database.Config{
		Driver:       cfg.Driver,
		DSN:          cfg.DSN,
		MaxIdleConns: cfg.MaxIdleConns,
		MaxOpenConns: cfg.MaxOpenConns,
		MaxLifetime:  cfg.MaxLifetime,
	})
	if err != nil {
		logger.Error(err, "%v: exchange log disabled", config.ModuleDatabase)
		return chat.NopLog
	}
	return database.ExchangeLog{}
}

func main() {
	// .env values win over the inherited environment
	if err := godotenv.Overload(); err != nil && !os.IsNotExist(err) {
		logger.Warn("%v: could not read .env: %v", config.ModuleSetting, err)
	}
	if err := config.Init("config.yml"); err != nil {
		logger.Fatal(err, "%v: invalid configuration", config.ModuleSetting)
	}
	logger.Init(string(config.Cfg.LogLevel))

	state := app.NewState()

	index, err := newVectorIndex()
	if err != nil {
		logger.Fatal(err, "%v: vector store unavailable", config.ModuleRetriever)
	}
	defer index.Close()

	gate := retriever.NewGate(newEmbedder(), index, retriever.Options{
		Threshold:     config.Cfg.VectorStore.ScoreThreshold,
		EmbedTimeout:  secs(config.Cfg.Encoder.TimeoutSecs),
		SearchTimeout: secs(config.Cfg.VectorStore.TimeoutSecs),
	})
	builder := prompt.NewBuilder(newTokenizer(), config.Cfg.Model.SystemPrompt, config.Cfg.Model.MaxPromptTokens)
	engine := inference.NewEngine(builder, newGenerator())
	service := chat.NewService(gate, engine, newExchangeLog())
	defer database.Close()

	srv := fiber.New(fiber.Config{
		AppName:   config.Cfg.Server.AppName,
		BodyLimit: config.Cfg.Server.BodyLimit,
	})
	middleware.Register(srv, config.Cfg.Server.Concurrency)
	healthcheck.RegisterRoutes(srv, healthcheck.NewHandler(state, gate))
	infer.RegisterRoutes(srv, infer.NewHandler(state, service, secs(config.Cfg.Server.RequestTimeoutSecs)))

	// warm-up: the collection must answer before the service accepts prompts
	ctx, cancel := context.WithTimeout(context.Background(), secs(config.Cfg.VectorStore.TimeoutSecs))
	if err := gate.Ping(ctx); err != nil {
		logger.Warn("%v: vector store probe failed at startup: %v", config.ModuleRetriever, err)
	}
	cancel()
	state.MarkReady()
	logger.Info("%v: ready, model %s (%s)", config.ModuleServer, config.Cfg.Model.ID, config.Cfg.Model.Backend)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		logger.Info("%v: shutting down", config.ModuleServer)
		if err := srv.Shutdown(); err != nil {
			logger.Error(err, "%v: shutdown failed", config.ModuleServer)
		}
	}()

	addr := fmt.Sprintf(":%d", config.Cfg.Server.Port)
	if err := srv.Listen(addr); err != nil {
		logger.Error(err, "%v: server error", config.ModuleServer)
	}
}
