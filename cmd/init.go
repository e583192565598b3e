package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/gridstate/internal/config"
	"github.com/zjrosen/gridstate/internal/dataset"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [DATASET]",
	Short: "Write a config file, with columns read from a dataset",
	Long: `Write .gridstate/config.yaml (or the --config path) with default settings.
Given a dataset file, data_file points at it and one string-filtered column
is written per property found in its rows.`,
	Args: cobra.MaximumNArgs(1),
	// The config being written need not be valid yet.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = localConfigPath
		}
		var data string
		if len(args) == 1 {
			data = args[0]
		}
		return initConfigFile(cmd.OutOrStdout(), path, data, initForce)
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

func initConfigFile(w io.Writer, path, data string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.WriteDefaultConfig(path); err != nil {
		return err
	}

	if data != "" {
		rows, err := dataset.Load(data)
		if err != nil {
			return err
		}
		if err := config.SaveDataFile(path, data); err != nil {
			return err
		}
		cols := config.ColumnsFor(dataset.Properties(rows))
		if err := config.SaveColumns(path, cols); err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "Wrote %s with %d columns from %s\n", path, len(cols), data)
		return err
	}

	_, err := fmt.Fprintf(w, "Wrote %s\n", path)
	return err
}
