package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/hyperjump/serupa/internal/cli"
	"github.com/hyperjump/serupa/internal/preprocess"
	"github.com/hyperjump/serupa/internal/tagger"
)

func newDetectCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "detect <text...>",
		Short:   "Report platforms and technologies mentioned in a text",
		Example: `  serupa detect "Aplikasi Mobile dibangun dengan Kotlin dan Firebase"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, format, err := g.setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			rules, err := tagger.LoadRules(cfg.Rules.Path)
			if err != nil {
				return err
			}
			return cli.WriteDetection(cmd.OutOrStdout(), tagger.New(rules).Detect(joinArgs(args)), format)
		},
	}
}

func newNormalizeCmd(g *globalFlags) *cobra.Command {
	var techs string
	cmd := &cobra.Command{
		Use:   "normalize [text...]",
		Short: "Show the normalized form of a text and a technology list",
		Example: `  serupa normalize "Sistem Informasi untuk Pengelolaan Perpustakaan"
  serupa normalize --techs "['Kotlin','Firebase']"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := joinArgs(args)
			if text == "" && techs == "" {
				return errors.New("nothing to normalize: pass text or --techs")
			}
			cfg, logger, format, err := g.setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			normalizer, err := newNormalizer(cfg)
			if err != nil {
				return err
			}
			out := cli.Normalized{Input: text, Normalized: normalizer.Normalize(text)}
			if techs != "" {
				rules, err := tagger.LoadRules(cfg.Rules.Path)
				if err != nil {
					return err
				}
				out.Techs = preprocess.NormalizeTechList(techs)
				out.TechPlatforms = tagger.New(rules).PlatformsForTechs(out.Techs)
			}
			return cli.WriteNormalized(cmd.OutOrStdout(), out, format)
		},
	}
	cmd.Flags().StringVar(&techs, "techs", "", `technology list literal, e.g. "['Kotlin','Firebase']"`)
	return cmd
}
