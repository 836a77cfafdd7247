package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jobboard-api/internal/config"
	"github.com/jobboard-api/internal/pkg/logger"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "jobboard-api",
		Short:         "Job board HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveCmd().RunE(cmd, args)
		},
	}
	rootCmd.AddCommand(serveCmd(), bootstrapCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

// load reads .env (optional) and the environment, then builds the logger.
func load() (*config.Config, *zap.Logger) {
	envErr := godotenv.Load()
	cfg := config.Load()
	log := logger.New(cfg.AppEnv, cfg.LogLevel)
	if envErr != nil {
		log.Debug("no .env file found, reading from environment")
	}
	if cfg.JWTSecretFromLegacy {
		log.Warn("SECRET_KEY is deprecated, set JWT_SECRET instead")
	}
	return cfg, log
}
