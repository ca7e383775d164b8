package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/sectionview/pkg/config"
	"github.com/vanderheijden86/sectionview/pkg/loader"
	"github.com/vanderheijden86/sectionview/pkg/model"
	"github.com/vanderheijden86/sectionview/pkg/store"
)

var (
	demoRows     int
	listStored   bool
	dropSections []string
)

// seedCmd fills the row store
var seedCmd = &cobra.Command{
	Use:   "seed [file]",
	Short: "Load rows for remote sections into the row store",
	Long: `Load rows for remote sections into the row store.

A seed file is YAML with rows keyed by section ID:

  sections:
    archive:
      - id: a-1
        title: First archived row
        body: "Markdown shown in the detail pane."

Sections already in the store are replaced.

Examples:
  # Seed from a file
  sv seed rows.yaml

  # Fill every remote section of the catalog with 20 placeholder rows
  sv seed --demo 20

  # Show what is stored, then forget the archive section
  sv seed --list
  sv seed --drop archive`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&demoRows, "demo", 0, "generate N placeholder rows for every remote section")
	seedCmd.Flags().BoolVar(&listStored, "list", false, "list the sections in the row store")
	seedCmd.Flags().StringSliceVar(&dropSections, "drop", nil, "remove stored rows for these section IDs")
}

func runSeed(cmd *cobra.Command, args []string) error {
	maintenance := listStored || len(dropSections) > 0
	if len(args) == 0 && demoRows <= 0 && !maintenance {
		return errors.New("give a seed file, --demo N, --list or --drop")
	}

	root, ok := config.DetectRoot()
	if !ok {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		root = cwd
	}
	cfg, err := config.Load(root, configPath)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if maintenance && len(args) == 0 && demoRows <= 0 {
		rs, err := store.Open(cfg.Data.Database)
		if err != nil {
			return err
		}
		defer rs.Close()
		return maintainStore(ctx, cmd.OutOrStdout(), rs, dropSections, listStored)
	}

	var rows map[string][]model.Row
	if len(args) == 1 {
		rows, err = loader.LoadSeed(args[0])
	} else {
		rows, err = demoSeed(cfg.Data.Catalog, demoRows, time.Now())
	}
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return errors.New("nothing to seed")
	}

	rs, err := store.Open(cfg.Data.Database)
	if err != nil {
		return err
	}
	defer rs.Close()

	if err := rs.Seed(ctx, rows); err != nil {
		return err
	}
	printSeeded(cmd.OutOrStdout(), rows, rs.Path())
	if maintenance {
		return maintainStore(ctx, cmd.OutOrStdout(), rs, dropSections, listStored)
	}
	return nil
}

// maintainStore drops the given sections and optionally lists what remains.
func maintainStore(ctx context.Context, w io.Writer, rs *store.RowStore, drop []string, list bool) error {
	for _, id := range drop {
		if err := rs.DeleteSection(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(w, "Dropped %s\n", id)
	}
	if !list {
		return nil
	}
	sums, err := rs.Sections(ctx)
	if err != nil {
		return err
	}
	if len(sums) == 0 {
		fmt.Fprintln(w, "Row store is empty")
		return nil
	}
	for _, sum := range sums {
		fmt.Fprintf(w, "%-20s %5d rows  %s\n", sum.ID, sum.Rows, sum.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

// demoSeed builds n placeholder rows for every remote section in the catalog.
func demoSeed(catalogPath string, n int, now time.Time) (map[string][]model.Row, error) {
	cat, _, err := loader.LoadCatalog(catalogPath)
	if err != nil {
		return nil, err
	}
	rows := make(map[string][]model.Row)
	for _, sec := range cat.Sections {
		if sec.Kind.NeedsDownload() {
			rows[sec.ID] = store.DemoRows(sec.ID, n, now)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s has no remote sections", catalogPath)
	}
	return rows, nil
}

func printSeeded(w io.Writer, rows map[string][]model.Row, path string) {
	ids := make([]string, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(w, "Seeded %s with %d rows\n", id, len(rows[id]))
	}
	fmt.Fprintf(w, "Row store: %s\n", path)
}
