package main

import (
	"os"

	"github.com/joho/godotenv"

	"katutubo-llm/pkg/logger"
)

func main() {
	// local development reads .env; production sets PROD and the real environment
	if os.Getenv("PROD") == "" {
		if err := godotenv.Overload(); err != nil && !os.IsNotExist(err) {
			logger.Warn("could not read .env: %v", err)
		}
	}
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
