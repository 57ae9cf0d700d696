package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/serupa/internal/assets"
	"github.com/hyperjump/serupa/internal/cli"
	"github.com/hyperjump/serupa/internal/models"
	"github.com/hyperjump/serupa/internal/search"
)

const defaultServerURL = "http://localhost:5000"

type searchFlags struct {
	title     string
	desc      string
	platform  string
	techs     []string
	threshold float64
	serverURL string
	timeout   time.Duration
}

func newSearchCmd(g *globalFlags) *cobra.Command {
	f := &searchFlags{}
	cmd := &cobra.Command{
		Use:   "search [flags] [title words...]",
		Short: "Find past projects similar to a title and description",
		Long: `Find past projects similar to a title and description.

Positional arguments are joined into the title when --title is not set.
With --server "" the models are loaded in-process instead of calling a running server.`,
		Example: `  serupa search --tech kotlin,firebase "Aplikasi Kasir" --desc "untuk UMKM"
  serupa search --server "" --tech laravel --threshold 0.3 Sistem Informasi Perpustakaan`,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := f.query(args, cmd.Flags().Changed("threshold"))
			if err != nil {
				return err
			}
			format, err := cli.ParseOutputFormat(g.output)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), f.timeout)
			defer cancel()

			var resp *models.SearchResponse
			if f.serverURL != "" {
				resp, err = cli.NewClient(f.serverURL, f.timeout).Search(ctx, q)
			} else {
				resp, err = searchLocal(ctx, g, q)
			}
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			return cli.WriteSearchResults(cmd.OutOrStdout(), resp, format)
		},
	}
	cmd.Flags().StringVar(&f.title, "title", "", "project title (judul_pa)")
	cmd.Flags().StringVar(&f.desc, "desc", "", "project description (desc_pa)")
	cmd.Flags().StringVar(&f.platform, "platform", "", "declared platform (platform_aplikasi)")
	cmd.Flags().StringSliceVar(&f.techs, "tech", nil, "technologies used, comma separated or repeated")
	cmd.Flags().Float64Var(&f.threshold, "threshold", models.DefaultThreshold, "minimum similarity in [0,1]")
	cmd.Flags().StringVar(&f.serverURL, "server", defaultServerURL, `server URL ("" = load models in-process)`)
	cmd.Flags().DurationVar(&f.timeout, "timeout", 60*time.Second, "request timeout")
	return cmd
}

// query builds the request. The threshold is only sent when set explicitly so the
// server default applies otherwise.
func (f *searchFlags) query(args []string, thresholdSet bool) (*models.SearchQuery, error) {
	title := f.title
	if title == "" {
		title = joinArgs(args)
	} else if len(args) > 0 {
		return nil, errors.New("pass the title either with --title or as arguments, not both")
	}
	techs := make([]any, len(f.techs))
	for i, t := range f.techs {
		techs[i] = t
	}
	q := &models.SearchQuery{
		Title:       title,
		Description: f.desc,
		Platform:    f.platform,
		Techs:       models.NewTechList(techs),
	}
	if thresholdSet {
		threshold := f.threshold
		q.Threshold = &threshold
	}
	return q, nil
}

func searchLocal(ctx context.Context, g *globalFlags, q *models.SearchQuery) (*models.SearchResponse, error) {
	cfg, logger, _, err := g.setup()
	if err != nil {
		return nil, err
	}
	defer logger.Sync()

	if err := search.Validate(q); err != nil {
		return nil, err
	}
	normalizer, err := newNormalizer(cfg)
	if err != nil {
		return nil, err
	}
	a, err := assets.Load(cfg, logger)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	logger.Debug("searching in-process", zap.String("models_dir", cfg.Models.Dir))
	return search.NewEngine(normalizer, a, search.WithLogger(logger)).Search(ctx, q)
}
