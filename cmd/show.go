package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/gridstate/internal/app"
	"github.com/zjrosen/gridstate/internal/config"
	"github.com/zjrosen/gridstate/internal/dataset"
	"github.com/zjrosen/gridstate/internal/snapshot"
)

// Output formats accepted by --output.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
	formatURL   = "url"
)

var (
	showState  stateFlags
	showOutput string
	showWidth  int
	showBase   string
	showSave   bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print one page of the dataset",
	Long: `Print one page of the dataset after applying a saved view, a URL query
and column filters, in that order.

Filter expressions depend on the column's filter kind:
  string           al        substring, case-insensitive
                   =Alice    exact match
  list             active    one of the column values
  number-interval  18..30    also 18.. and ..30
  date-interval    2024-01-01..2024-06-30
  color            red,blue  any of the column colors

Examples:
  # First page, default sort
  gridstate show --data people.json

  # Filter two columns and sort descending by age
  gridstate show -f name=al -f age=20.. --sort age --reverse

  # Reopen a saved view on page 3
  gridstate show --view adults --page 3

  # Print the state as a shareable query
  gridstate show -f status=active -o url`,
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := openGrid(cmd.Context(), cfg, traces)
		if err != nil {
			return err
		}
		defer g.Close()

		if err := showState.apply(cmd.Context(), g, cfg); err != nil {
			return err
		}
		if showSave {
			if err := saveDefaultSort(g.Snapshot().Sort); err != nil {
				return err
			}
		}
		return writeGrid(cmd.OutOrStdout(), g, showOutput, showWidth, showBase)
	},
}

func init() {
	showState.register(showCmd)
	showCmd.Flags().StringVarP(&showOutput, "output", "o", formatTable, "output format: table, json, yaml or url")
	showCmd.Flags().IntVarP(&showWidth, "width", "w", 0, "wrap the table summary at this width")
	showCmd.Flags().StringVar(&showBase, "base-url", "", "base URL for --output url")
	showCmd.Flags().BoolVar(&showSave, "save-sort", false, "store the resulting sort as default_sort in the config file")
	rootCmd.AddCommand(showCmd)
}

func saveDefaultSort(s *snapshot.Sort) error {
	var sc config.SortConfig
	if s != nil {
		sc = config.SortConfig{By: s.By, Reverse: s.Reverse}
	}
	path := configFileForWrite()
	if err := config.SaveDefaultSort(path, sc); err != nil {
		return fmt.Errorf("saving default sort to %s: %w", path, err)
	}
	return nil
}

// pageOutput is the json and yaml form of a displayed page.
type pageOutput struct {
	View  string            `json:"view,omitempty" yaml:"view,omitempty"`
	Total int               `json:"total" yaml:"total"`
	Page  int               `json:"page" yaml:"page"`
	Pages int               `json:"pages" yaml:"pages"`
	State snapshot.Snapshot `json:"state" yaml:"state"`
	Rows  []dataset.Row     `json:"rows" yaml:"rows"`
}

func newPageOutput(g *app.Grid) pageOutput {
	page := g.Provider().Page()
	rows := g.Items().Displayed()
	if rows == nil {
		rows = []dataset.Row{}
	}
	return pageOutput{
		View:  g.View(),
		Total: g.Items().Total(),
		Page:  page.Current(),
		Pages: page.Last(),
		State: g.Snapshot(),
		Rows:  rows,
	}
}

func writeGrid(w io.Writer, g *app.Grid, format string, width int, base string) error {
	switch format {
	case formatTable, "":
		_, err := fmt.Fprintln(w, g.Render(width))
		return err
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newPageOutput(g))
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newPageOutput(g)); err != nil {
			return err
		}
		return enc.Close()
	case formatURL:
		u, err := g.Snapshot().URL(base)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, u)
		return err
	}
	return fmt.Errorf("unknown output format %q (want table, json, yaml or url)", format)
}
