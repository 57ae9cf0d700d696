// Package main is the serupa CLI entry point.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/serupa/internal/cli"
	"github.com/hyperjump/serupa/internal/config"
	"github.com/hyperjump/serupa/internal/preprocess"
	"github.com/hyperjump/serupa/pkg/utils"
)

var version = "dev"

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	debug      bool
	output     string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "serupa",
		Short:         "Similarity search over past capstone projects",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "",
		fmt.Sprintf("config file path (default %s, then ./config.yaml)", config.DefaultConfigPath))
	root.PersistentFlags().BoolVar(&g.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().StringVarP(&g.output, "output", "o", "text", "output format: text or json")

	root.AddCommand(
		newServerCmd(g),
		newSearchCmd(g),
		newDetectCmd(g),
		newNormalizeCmd(g),
		newStatusCmd(g),
		newImportCmd(g),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "serupa version %s\n", version)
		},
	}
}

// loadConfig loads the config at path. With no path it tries the installed location,
// then ./config.yaml, then falls back to defaults plus environment overrides.
// It returns the path that was loaded, or "" for defaults.
func loadConfig(path string) (*config.Config, string, error) {
	if path == "" {
		path = config.Find()
	}
	if path == "" {
		cfg, err := config.Default()
		return cfg, "", err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// setup loads config, builds the one-shot command logger and parses the output format.
func (g *globalFlags) setup() (*config.Config, *zap.Logger, cli.OutputFormat, error) {
	format, err := cli.ParseOutputFormat(g.output)
	if err != nil {
		return nil, nil, "", err
	}
	cfg, _, err := loadConfig(g.configPath)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := utils.NewCLILogger(cfg.Debug || g.debug)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, format, nil
}

func newNormalizer(cfg *config.Config) (*preprocess.Normalizer, error) {
	cache, err := preprocess.NewLRUCache(cfg.Preprocess.CacheSize)
	if err != nil {
		return nil, err
	}
	return preprocess.NewNormalizer(preprocess.WithCache(cache))
}

// joinArgs joins positional args with spaces so multi-word text works with or without
// shell quoting.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
