package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/zjrosen/gridstate/internal/dataset"
	"github.com/zjrosen/gridstate/internal/log"
	"github.com/zjrosen/gridstate/internal/ui/gridview"
	"github.com/zjrosen/gridstate/internal/watcher"
)

var (
	watchState       stateFlags
	watchNoAutoWatch bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Browse the dataset interactively",
	Long: `Browse the dataset in an interactive table. Page with j/k, move between
columns with h/l, sort with s and filter with /. The table reloads when the
dataset file changes on disk.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchState.register(watchCmd)
	watchCmd.Flags().BoolVar(&watchNoAutoWatch, "no-auto-reload", false,
		"do not reload when the dataset file changes")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	g, err := openGrid(cmd.Context(), cfg, traces)
	if err != nil {
		return err
	}
	defer g.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if err := watchState.apply(ctx, g, cfg); err != nil {
		return err
	}

	path := cfg.DataFile
	opts := []gridview.Option{
		gridview.WithReloader(func() ([]dataset.Row, error) { return dataset.Load(path) }),
	}

	if !watchNoAutoWatch {
		wcfg := watcher.DefaultConfig(path)
		if cfg.Watch.Debounce > 0 {
			wcfg.Debounce = cfg.Watch.Debounce
		}
		w, err := watcher.New(wcfg)
		if err != nil {
			return err
		}
		changes, err := w.Start()
		if err != nil {
			_ = w.Stop()
			return err
		}
		defer func() {
			if err := w.Stop(); err != nil {
				log.ErrorErr(log.CatWatcher, "Stopping watcher failed", err)
			}
		}()
		opts = append(opts, gridview.WithFileChanges(changes))
	}

	model := gridview.New(ctx, g, opts...)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}
