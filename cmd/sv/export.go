package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/sectionview/pkg/config"
	"github.com/vanderheijden86/sectionview/pkg/export"
	"github.com/vanderheijden86/sectionview/pkg/loader"
	"github.com/vanderheijden86/sectionview/pkg/store"
)

// exportCmd writes the catalog as Markdown
var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the catalog and its rows as Markdown",
	Long: `Export every section of the catalog as a Markdown report. Remote
sections include the rows stored by 'sv seed'.

Examples:
  # Write to the terminal
  sv export

  # Write to a file
  sv export report.md`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	root, err := findProject()
	if err != nil {
		return err
	}
	cfg, err := config.Load(root, configPath)
	if err != nil {
		return err
	}
	cat, _, err := loader.LoadCatalog(cfg.Data.Catalog)
	if err != nil {
		return err
	}
	rs, err := store.Open(cfg.Data.Database)
	if err != nil {
		return err
	}
	defer rs.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if len(args) == 1 {
		if err := export.SaveMarkdownToFile(ctx, cat, rs, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d sections to %s\n", len(cat.Sections), args[0])
		return nil
	}
	md, err := export.GenerateMarkdown(ctx, cat, rs, timeNow())
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), md)
	return err
}
