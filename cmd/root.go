package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/gridstate/internal/config"
	"github.com/zjrosen/gridstate/internal/log"
	"github.com/zjrosen/gridstate/internal/render"
	"github.com/zjrosen/gridstate/internal/tracing"
)

func init() {
	// Query the terminal background before any Bubble Tea program starts so
	// the OSC 11 reply cannot land in the filter input.
	_ = lipgloss.HasDarkBackground()
}

// localConfigPath is checked before the user config directory.
const localConfigPath = ".gridstate/config.yaml"

var (
	version = "dev"
	cfgFile string
	debug   bool
	noColor bool
	cfg     config.Config

	traces     = tracing.Noop()
	logCleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "gridstate",
	Short: "Filter, sort and page tabular data from the terminal",
	Long: `gridstate shows a JSON or YAML dataset as a paged table. Column filters,
the sort and the page form one grid state that can be saved as a named view,
shared as a URL query and compared with other views.`,
	Version:            version,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .gridstate/config.yaml, then ~/.config/gridstate/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false,
		"write a debug log (also GRIDSTATE_DEBUG=1)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"disable colored output (also NO_COLOR)")
	rootCmd.PersistentFlags().String("data", "",
		"dataset file, JSON or YAML (overrides data_file)")
	rootCmd.PersistentFlags().String("views-db", "",
		"saved views database (overrides views_db)")

	_ = viper.BindPFlag("data_file", rootCmd.PersistentFlags().Lookup("data"))
	_ = viper.BindPFlag("views_db", rootCmd.PersistentFlags().Lookup("views-db"))
}

func initConfig() {
	setDefaults(viper.GetViper())
	viper.SetEnvPrefix("GRIDSTATE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .gridstate/config.yaml (current directory)
		// 2. ~/.config/gridstate/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			viper.SetConfigFile(localConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "gridstate"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "gridstate: reading config: %v\n", err)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

// setDefaults registers every default so env vars and partial config files
// overlay them key by key.
func setDefaults(v *viper.Viper) {
	d := config.Defaults()
	v.SetDefault("views_db", d.ViewsDB)
	v.SetDefault("page_size", d.PageSize)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.cleanup_interval", d.Cache.CleanupInterval)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("log.level", d.Log.Level)
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if debug || os.Getenv("GRIDSTATE_DEBUG") != "" {
		path := cfg.Log.Path
		if path == "" {
			path = "debug.log"
		}
		cleanup, err := log.Init(path)
		if err != nil {
			return fmt.Errorf("opening debug log: %w", err)
		}
		logCleanup = cleanup
		log.SetMinLevel(log.ParseLevel(cfg.Log.Level))
		log.Info(log.CatConfig, "Starting", "command", cmd.CommandPath(), "config", viper.ConfigFileUsed())
	}

	render.SetColor(!noColor && os.Getenv("NO_COLOR") == "")

	p, err := tracing.NewProvider(cfg.TracingConfig())
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	traces = p
	return nil
}

func teardown(*cobra.Command, []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := traces.Shutdown(ctx); err != nil {
		log.ErrorErr(log.CatConfig, "Tracing shutdown failed", err)
	}
	if logCleanup != nil {
		logCleanup()
	}
	return nil
}

// configFileForWrite is where commands that edit the config write.
func configFileForWrite() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return localConfigPath
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
