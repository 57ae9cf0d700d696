package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/serupa/internal/storage"
	"github.com/hyperjump/serupa/internal/vector"
)

func newImportCmd(g *globalFlags) *cobra.Command {
	var (
		sheet string
		out   string
	)
	cmd := &cobra.Command{
		Use:   "import <file.xlsx|file.csv>",
		Short: "Build the record table from a spreadsheet export of past projects",
		Long: `Build the record table from a spreadsheet export of past projects.

Rows are stored in file order; row i must be the i-th vector of the index, so import
the same export the index was built from. The table is replaced atomically.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, _, err := g.setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			records, err := storage.ReadRecordsFile(args[0], sheet)
			if err != nil {
				return err
			}
			if out == "" {
				out = cfg.Models.RecordsPath()
			}
			store, err := storage.NewSQLiteStorage(out)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.ReplaceAll(cmd.Context(), records); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records into %s\n", len(records), out)

			checkIndexSize(logger, cfg.Models.IndexType, cfg.Models.IndexPath(), len(records))
			return nil
		},
	}
	cmd.Flags().StringVar(&sheet, "sheet", "", "worksheet name (default: first sheet)")
	cmd.Flags().StringVar(&out, "out", "", "record table path (default: models.dir/records_file)")
	return cmd
}

// checkIndexSize warns when the index next to the table holds a different number of rows.
func checkIndexSize(logger *zap.Logger, indexType, path string, records int) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	idx, err := vector.Open(indexType, path, 0)
	if err != nil {
		logger.Warn("could not open index to compare sizes", zap.String("path", path), zap.Error(err))
		return
	}
	defer idx.Close()
	if idx.Size() != records {
		logger.Warn("index and record table sizes differ",
			zap.Int("index_size", idx.Size()),
			zap.Int("records", records),
		)
	}
}
