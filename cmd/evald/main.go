package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/answerlab/evald/internal/api"
	"github.com/answerlab/evald/internal/config"
	"github.com/answerlab/evald/internal/registry"
	"github.com/answerlab/evald/internal/runner"
	"github.com/answerlab/evald/internal/workflow"
)

func main() {
	// Load .env if present; real environment variables take precedence.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	logger := config.NewLogger(os.Stdout, cfg.SlogLevel())

	logger.Info("evald: starting",
		"listen_addr", cfg.ListenAddr,
		"max_workers", cfg.MaxWorkers,
		"llm_base_url", cfg.LLM.BaseURL,
	)

	if cfg.LLM.APIKey == "" {
		logger.Warn("GROQ_API_KEY is not set; workflow executions will fail")
	}

	manifest, err := workflow.DefaultManifest()
	if err != nil {
		log.Fatalf("failed to load pipeline manifest: %v", err)
	}

	client := workflow.NewChatClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Timeout)
	pipeline := workflow.NewPipeline(manifest, client, logger)

	reg := registry.New()
	run := runner.New(reg, pipeline, logger, cfg.MaxWorkers)

	srv := api.NewServer(cfg.ListenAddr, reg, run, logger)
	if err := srv.Run(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
