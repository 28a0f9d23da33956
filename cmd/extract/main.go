package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"contaflow/internal/service"
	"contaflow/pkg/config"
	"contaflow/pkg/logger"

	"go.uber.org/zap"
)

// Standalone extraction runner: sends one PDF through the remote extractor and
// prints the structured result. Useful for tuning prompts without the server.
func main() {
	filePath := flag.String("file", "", "path to the PDF document")
	hint := flag.String("hint", "", "account context hint forwarded to the extractor")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall extraction timeout")
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: extract -file document.pdf [-hint \"...\"]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	file, err := os.Open(*filePath)
	if err != nil {
		appLogger.Fatal("Failed to open document", zap.Error(err))
	}
	defer file.Close()

	openaiService := service.NewOpenAIService(&cfg.OpenAI, appLogger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	extraction, err := openaiService.ExtractDocument(ctx, file, filepath.Base(*filePath), *hint)
	if err != nil {
		appLogger.Fatal("Extraction failed", zap.Error(err))
	}
	openaiService.WaitCleanup()

	out, err := json.MarshalIndent(extraction, "", "  ")
	if err != nil {
		appLogger.Fatal("Failed to encode result", zap.Error(err))
	}
	fmt.Println(string(out))
}
