package main

import (
	"github.com/spf13/cobra"

	"github.com/jobboard-api/internal/infrastructure/dynamo"
)

func bootstrapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Create the DynamoDB tables and enable TTL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log := load()
			defer func() { _ = log.Sync() }()

			client, err := dynamo.NewClient(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			dynamo.Bootstrap(cmd.Context(), client, cfg.DynamoTables, log)
			return nil
		},
	}
}
