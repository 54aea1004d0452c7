package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/trial-engine/internal/store"
	"github.com/pdiddy/trial-engine/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export analysis rows to a file",
	Long: `Export writes stored analysis rows to a YAML or JSON file. Filters
narrow the export the same way they narrow search; with no filters the
whole database is exported.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("format", "yaml", "output format: yaml or json")
	exportCmd.Flags().String("out", "", "output file path (required)")
	exportCmd.Flags().StringArray("filter", nil, "explicit filter as field=value (repeatable)")
	exportCmd.Flags().String("index-dir", defaultIndexDir, "directory holding the analysis database")

	exportCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")
	indexDir, _ := cmd.Flags().GetString("index-dir")

	filters, err := parseExplicitFilters(cmd)
	if err != nil {
		return err
	}

	st, err := store.NewStore(types.StoreConfig{IndexDir: indexDir})
	if err != nil {
		return err
	}
	defer st.Close()

	opts := store.SearchOptions{Filters: filters}

	switch format {
	case "yaml":
		err = st.ExportYAML(context.Background(), opts, out)
	case "json":
		err = st.ExportJSON(context.Background(), opts, out)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Exported to %s\n", out)
	return nil
}
