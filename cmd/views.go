package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/zjrosen/gridstate/internal/app"
	"github.com/zjrosen/gridstate/internal/filter"
	"github.com/zjrosen/gridstate/internal/render"
	"github.com/zjrosen/gridstate/internal/snapshot"
	"github.com/zjrosen/gridstate/internal/views/domain"
)

var (
	viewsState       stateFlags
	viewsDescription string
	viewsDataset     string
	viewsLimit       int
	viewsFilterKind  string
	viewsFilterKey   string
	viewsOutput      string
	viewsBase        string
)

var viewsCmd = &cobra.Command{
	Use:   "views",
	Short: "Manage saved views",
	Long: `A view is a named grid state (page, sort and filters) stored in the
views database. Views are applied with 'gridstate show --view NAME'.`,
}

var viewsSaveCmd = &cobra.Command{
	Use:   "save NAME",
	Short: "Save the grid state described by the flags as a view",
	Long: `Save the grid state described by the flags as a view. Saving under an
existing name replaces that view's state.

Examples:
  gridstate views save adults -f age=18..
  gridstate views save oslo-active --view adults -f status=active --sort name`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := openGrid(cmd.Context(), cfg, traces)
		if err != nil {
			return err
		}
		defer g.Close()
		if err := viewsState.apply(cmd.Context(), g, cfg); err != nil {
			return err
		}

		repo, closeRepo, err := viewRepository()
		if err != nil {
			return err
		}
		defer closeRepo()
		return saveView(cmd.OutOrStdout(), repo, args[0], viewsDescription, cfg.DataFile, g)
	},
}

var viewsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved views",
	Long: `List saved views, optionally only those carrying a filter of one kind
(--filter-kind number-interval) or one filter by key (--filter-key string/name).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lf, err := listFilter(viewsDataset, viewsFilterKind, viewsFilterKey, viewsLimit)
		if err != nil {
			return err
		}
		repo, closeRepo, err := viewRepository()
		if err != nil {
			return err
		}
		defer closeRepo()
		return listViews(cmd.OutOrStdout(), repo, lf, time.Now())
	},
}

var viewsShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Print a saved view's state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closeRepo, err := viewRepository()
		if err != nil {
			return err
		}
		defer closeRepo()
		return showView(cmd.OutOrStdout(), repo, args[0], viewsOutput, viewsBase)
	},
}

var viewsDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a saved view",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closeRepo, err := viewRepository()
		if err != nil {
			return err
		}
		defer closeRepo()
		if err := repo.Delete(args[0]); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted view %s\n", args[0])
		return err
	},
}

var viewsDiffCmd = &cobra.Command{
	Use:   "diff A B",
	Short: "Compare the state of two saved views",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closeRepo, err := viewRepository()
		if err != nil {
			return err
		}
		defer closeRepo()
		return diffViews(cmd.OutOrStdout(), repo, args[0], args[1])
	},
}

func init() {
	viewsState.register(viewsSaveCmd)
	viewsSaveCmd.Flags().StringVar(&viewsDescription, "description", "", "view description")

	viewsListCmd.Flags().StringVar(&viewsDataset, "dataset", "", "only views saved against this dataset file")
	viewsListCmd.Flags().StringVar(&viewsFilterKind, "filter-kind", "", "only views with a filter of this kind")
	viewsListCmd.Flags().StringVar(&viewsFilterKey, "filter-key", "", "only views with this filter, as kind/id")
	viewsListCmd.Flags().IntVarP(&viewsLimit, "limit", "n", 0, "maximum number of views (0 = all)")

	viewsShowCmd.Flags().StringVarP(&viewsOutput, "output", "o", formatYAML, "output format: yaml, json or url")
	viewsShowCmd.Flags().StringVar(&viewsBase, "base-url", "", "base URL for --output url")

	viewsCmd.AddCommand(viewsSaveCmd, viewsListCmd, viewsShowCmd, viewsDeleteCmd, viewsDiffCmd)
	rootCmd.AddCommand(viewsCmd)
}

func viewRepository() (domain.ViewRepository, func(), error) {
	db, err := openViews(cfg)
	if err != nil {
		return nil, nil, err
	}
	return db.ViewRepository(), func() { _ = db.Close() }, nil
}

// saveView stores the grid's state under name, replacing an existing view of
// that name.
func saveView(w io.Writer, repo domain.ViewRepository, name, description, datasetPath string, g *app.Grid) error {
	s := g.Snapshot()

	v, err := repo.FindByName(name)
	var notFound *domain.ViewNotFoundError
	switch {
	case errors.As(err, &notFound):
		v = domain.NewView(uuid.NewString(), name, datasetPath, s)
	case err != nil:
		return err
	default:
		v.Replace(s)
	}
	if description != "" {
		v.SetDescription(description)
	}

	if err := repo.Save(v); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Saved view %s (%s)\n", name, s.FingerprintHex())
	return err
}

// listFilter validates the list flags.
func listFilter(dataset, kind, key string, limit int) (domain.ListFilter, error) {
	lf := domain.ListFilter{Dataset: dataset, FilterKey: key, Limit: limit}
	if kind != "" {
		k, err := filter.ParseKind(kind)
		if err != nil {
			return domain.ListFilter{}, err
		}
		lf.FilterKind = string(k)
	}
	if key != "" {
		k, _, ok := strings.Cut(key, "/")
		if !ok {
			return domain.ListFilter{}, fmt.Errorf("filter key %q: want kind/id", key)
		}
		if _, err := filter.ParseKind(k); err != nil {
			return domain.ListFilter{}, fmt.Errorf("filter key %q: %w", key, err)
		}
	}
	return lf, nil
}

func listViews(w io.Writer, repo domain.ViewRepository, lf domain.ListFilter, now time.Time) error {
	views, err := repo.List(lf)
	if err != nil {
		return err
	}
	if len(views) == 0 {
		_, err := fmt.Fprintln(w, "No saved views")
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(render.BorderColor)).
		Headers("NAME", "DATASET", "STATE", "UPDATED", "DESCRIPTION")
	for _, v := range views {
		t.Row(v.Name(), v.Dataset(), render.DescribeState(v.Snapshot()), app.SinceLabel(v.UpdatedAt(), now), v.Description())
	}
	_, err = fmt.Fprintln(w, t.Render())
	return err
}

func showView(w io.Writer, repo domain.ViewRepository, name, format, base string) error {
	v, err := repo.FindByName(name)
	if err != nil {
		return err
	}
	s := v.Snapshot()

	var out []byte
	switch format {
	case formatYAML, "":
		out, err = s.YAML()
	case formatJSON:
		out, err = s.JSON()
		out = append(out, '\n')
	case formatURL:
		var u string
		u, err = s.URL(base)
		out = []byte(u + "\n")
	default:
		return fmt.Errorf("unknown output format %q (want yaml, json or url)", format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func diffViews(w io.Writer, repo domain.ViewRepository, a, b string) error {
	left, err := repo.FindByName(a)
	if err != nil {
		return err
	}
	right, err := repo.FindByName(b)
	if err != nil {
		return err
	}
	d, err := snapshot.Diff(left.Snapshot(), right.Snapshot())
	if err != nil {
		return err
	}
	if d == "" {
		_, err = fmt.Fprintf(w, "Views %s and %s have the same state\n", a, b)
		return err
	}
	_, err = fmt.Fprint(w, d)
	return err
}
