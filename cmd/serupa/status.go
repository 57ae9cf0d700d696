package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperjump/serupa/internal/assets"
	"github.com/hyperjump/serupa/internal/cli"
	"github.com/hyperjump/serupa/internal/models"
	"github.com/hyperjump/serupa/internal/search"
)

func newStatusCmd(g *globalFlags) *cobra.Command {
	var serverURL string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the loaded model, index and record table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := cli.ParseOutputFormat(g.output)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			var status *models.StatusResponse
			if serverURL != "" {
				status, err = cli.NewClient(serverURL, 30*time.Second).Status(ctx)
			} else {
				status, err = statusLocal(ctx, g)
			}
			if err != nil {
				return fmt.Errorf("status failed: %w", err)
			}
			return cli.WriteStatus(cmd.OutOrStdout(), status, format)
		},
	}
	cmd.Flags().StringVar(&serverURL, "server", defaultServerURL, `server URL ("" = inspect the model directory directly)`)
	return cmd
}

func statusLocal(ctx context.Context, g *globalFlags) (*models.StatusResponse, error) {
	cfg, logger, _, err := g.setup()
	if err != nil {
		return nil, err
	}
	defer logger.Sync()

	normalizer, err := newNormalizer(cfg)
	if err != nil {
		return nil, err
	}
	a, err := assets.Load(cfg, logger)
	if err != nil {
		return nil, err
	}
	defer a.Close()
	return search.NewEngine(normalizer, a).Status(ctx)
}
