package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/gridstate/internal/app"
	"github.com/zjrosen/gridstate/internal/config"
	"github.com/zjrosen/gridstate/internal/dataset"
	"github.com/zjrosen/gridstate/internal/infrastructure/sqlite"
	"github.com/zjrosen/gridstate/internal/snapshot"
	"github.com/zjrosen/gridstate/internal/tracing"
)

// errNoDataset is returned when neither --data nor data_file names a file.
var errNoDataset = errors.New("no dataset: pass --data or set data_file in the config")

// stateFlags describe a grid state on the command line. They are applied in
// field order: the saved view, then the query, then the individual flags.
type stateFlags struct {
	view    string
	query   string
	filters []string
	sort    string
	reverse bool
	page    int
	size    int
}

func (f *stateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.view, "view", "", "start from a saved view")
	cmd.Flags().StringVarP(&f.query, "query", "q", "", "start from a URL query (page=2&size=10&sort=age&filter=...)")
	cmd.Flags().StringArrayVarP(&f.filters, "filter", "f", nil, "column filter as column=expression (repeatable)")
	cmd.Flags().StringVarP(&f.sort, "sort", "s", "", "sort by column")
	cmd.Flags().BoolVarP(&f.reverse, "reverse", "r", false, "reverse the sort")
	cmd.Flags().IntVarP(&f.page, "page", "p", 0, "page number, starting at 1")
	cmd.Flags().IntVar(&f.size, "size", -1, "rows per page; 0 shows every row (default: page_size)")
}

// openGrid loads the dataset and builds a grid over it.
func openGrid(ctx context.Context, c config.Config, tp *tracing.Provider) (*app.Grid, error) {
	if c.DataFile == "" {
		return nil, errNoDataset
	}
	if tp == nil {
		tp = tracing.Noop()
	}

	_, span := tp.Tracer().Start(ctx, tracing.SpanLoadRows,
		trace.WithAttributes(attribute.String(tracing.AttrDatasetPath, c.DataFile)))
	rows, err := dataset.Load(c.DataFile)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return nil, err
	}
	span.SetAttributes(attribute.Int(tracing.AttrDatasetRows, len(rows)))
	span.End()

	var opts []app.Option
	if tp.Enabled() {
		opts = append(opts, app.WithTracer(tp.Tracer()))
	}
	return app.New(c, rows, opts...)
}

// openViews opens the saved views database.
func openViews(c config.Config) (*sqlite.DB, error) {
	path := c.ViewsDB
	if path == "" {
		path = config.DefaultViewsDBPath()
	}
	db, err := sqlite.NewDB(path)
	if err != nil {
		return nil, fmt.Errorf("opening views database: %w", err)
	}
	return db, nil
}

// apply writes the flags into g.
func (f *stateFlags) apply(ctx context.Context, g *app.Grid, c config.Config) error {
	if f.view != "" {
		db, err := openViews(c)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		v, err := db.ViewRepository().FindByName(f.view)
		if err != nil {
			return err
		}
		if err := g.ApplyView(ctx, v.Name(), v.Snapshot()); err != nil {
			return err
		}
	}

	if f.query != "" {
		q, err := url.ParseQuery(strings.TrimPrefix(f.query, "?"))
		if err != nil {
			return fmt.Errorf("%w: %v", snapshot.ErrInvalidQuery, err)
		}
		s, err := snapshot.ParseQuery(q)
		if err != nil {
			return err
		}
		if err := g.Apply(ctx, s); err != nil {
			return err
		}
	}

	for _, expr := range f.filters {
		name, input, ok := strings.Cut(expr, "=")
		if !ok {
			return fmt.Errorf("filter %q: expected column=expression", expr)
		}
		col, ok := g.Column(strings.TrimSpace(name))
		if !ok {
			return fmt.Errorf("filter %q: unknown column %q", expr, name)
		}
		if err := g.SetColumnFilter(col, input); err != nil {
			return err
		}
	}

	if f.sort != "" {
		col, ok := g.Column(f.sort)
		if !ok {
			return fmt.Errorf("sort: unknown column %q", f.sort)
		}
		g.SortBy(col, f.reverse)
	}

	page := g.Provider().Page()
	if f.size >= 0 {
		page.SetSize(f.size)
	}
	if f.page > 0 {
		page.SetCurrent(f.page)
	}
	return nil
}
