package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jobboard-api/internal/application/recovery"
	"github.com/jobboard-api/internal/config"
	"github.com/jobboard-api/internal/infrastructure/dynamo"
	"github.com/jobboard-api/internal/infrastructure/google"
	jwtinfra "github.com/jobboard-api/internal/infrastructure/jwt"
	"github.com/jobboard-api/internal/infrastructure/metrics"
	redisinfra "github.com/jobboard-api/internal/infrastructure/redis"
	s3infra "github.com/jobboard-api/internal/infrastructure/s3"
	"github.com/jobboard-api/internal/infrastructure/smtp"
	"github.com/jobboard-api/internal/infrastructure/sns"
	transporthttp "github.com/jobboard-api/internal/transport/http"
	"github.com/jobboard-api/internal/transport/http/handler"
)

func serveCmd() *cobra.Command {
	var bootstrap bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log := load()
			defer func() { _ = log.Sync() }()
			return serve(cmd.Context(), cfg, log, bootstrap)
		},
	}
	cmd.Flags().BoolVar(&bootstrap, "bootstrap", false, "create missing DynamoDB tables before serving")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger, bootstrap bool) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tokens, err := jwtinfra.NewProvider(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		return fmt.Errorf("token codec: %w", err)
	}

	dynamoClient, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	if bootstrap {
		dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables, log)
	}

	checks := map[string]handler.Check{
		"users_table": dynamo.TableCheck(dynamoClient, cfg.DynamoTables.Users),
	}
	tickets, err := ticketStore(ctx, cfg, dynamoClient, checks)
	if err != nil {
		return err
	}

	s3Client, err := s3infra.NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)
	checks["resume_bucket"] = s3Store.Check

	deps := &transporthttp.Deps{
		UserRepo:       dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		JobRepo:        dynamo.NewJobRepo(dynamoClient, cfg.DynamoTables.Jobs),
		NewsletterRepo: dynamo.NewNewsletterRepo(dynamoClient, cfg.DynamoTables.Newsletters),
		Tickets:        tickets,
		Resumes:        s3Store,
		ResumeKey:      s3infra.ResumeKey,
		Mailer:         smtp.NewMailer(cfg),
		Tokens:         tokens,
		Metrics:        metrics.New(),
		Log:            log,
		Checks:         checks,
	}
	if sender, err := sns.NewSender(ctx, cfg); err == nil {
		deps.SMS = sender
	} else {
		log.Warn("sms channel disabled", zap.Error(err))
	}
	if cfg.GoogleClientID != "" {
		deps.Google = google.NewVerifier(cfg.GoogleClientID)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      transporthttp.NewRouter(ctx, cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// ticketStore selects the recovery ticket backend from TICKET_STORE.
func ticketStore(ctx context.Context, cfg *config.Config, client *dynamodb.Client, checks map[string]handler.Check) (recovery.TicketStore, error) {
	switch cfg.TicketStore {
	case "", "dynamo":
		return dynamo.NewTicketRepo(client, cfg.DynamoTables.RecoveryTickets), nil
	case "redis":
		rc, err := redisinfra.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		checks["redis"] = redisinfra.Check(rc)
		return redisinfra.NewTicketStore(rc), nil
	default:
		return nil, fmt.Errorf("unknown TICKET_STORE %q", cfg.TicketStore)
	}
}
