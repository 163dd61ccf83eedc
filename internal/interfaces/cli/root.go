package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/hubfix-ai/hubfix-cli/internal/core/patch"
	"github.com/hubfix-ai/hubfix-cli/internal/infrastructure/config"
	"github.com/hubfix-ai/hubfix-cli/internal/infrastructure/hub"
	"github.com/hubfix-ai/hubfix-cli/internal/infrastructure/hubapi"
	"github.com/hubfix-ai/hubfix-cli/internal/infrastructure/logger"
	"github.com/hubfix-ai/hubfix-cli/internal/infrastructure/scaffold"
)

var (
	Version   = "dev"     // Overridden by ldflags
	BuildTime = "unknown" // Overridden by ldflags
)

// CLIContainer holds all the dependencies for CLI commands
type CLIContainer struct {
	Config     *config.Config
	ConfigPath string
	Logger     *logger.Logger
	Patcher    *patch.Patcher
	Locator    *hub.Locator
	Scanner    *hub.Scanner
	Hub        *hubapi.Client
	Scaffold   *scaffold.Writer

	initialized bool
}

// NewContainer creates an empty container. It is populated on first command
// run; tests may pre-populate it instead.
func NewContainer() *CLIContainer {
	return &CLIContainer{}
}

// Overrides carries the persistent flag values applied on top of the loaded
// configuration.
type Overrides struct {
	ConfigPath string
	CacheDir   string
	HubURL     string
	Token      string
	Debug      bool
}

// Initialize loads configuration, applies flag overrides, and wires the
// services. Calling it twice is a no-op.
func (c *CLIContainer) Initialize(overrides Overrides) error {
	if c.initialized {
		return nil
	}

	configPath := overrides.ConfigPath
	if configPath == "" {
		defaultPath, err := config.DefaultPath()
		if err != nil {
			return err
		}
		configPath = defaultPath
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if overrides.CacheDir != "" {
		cfg.Cache.Dir = overrides.CacheDir
	}
	if overrides.HubURL != "" {
		cfg.Hub.BaseURL = overrides.HubURL
	}
	if overrides.Token != "" {
		cfg.Hub.Token = overrides.Token
	}
	if overrides.Debug {
		cfg.Logger.Level = "debug"
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		return err
	}

	c.Config = cfg
	c.ConfigPath = configPath
	c.Logger = log
	c.Patcher = patch.NewPatcher()
	c.Locator = hub.NewLocator(cfg.Cache.Dir)
	c.Scanner = hub.NewScanner(c.Locator, cfg.Patch.File, cfg.Patch.Field)
	c.Hub = hubapi.NewClient(cfg.Hub.BaseURL, cfg.Hub.Token, cfg.Hub.Timeout)
	c.Scaffold = scaffold.NewWriter(cfg.Server.ConfigDir)
	c.initialized = true
	return nil
}

// NewRootCommand builds the base command all subcommands hang off.
func NewRootCommand(container *CLIContainer) *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:   "hubfix",
		Short: "Hubfix - hub cache config maintenance for local model servers",
		Long: `Hubfix keeps the JSON config files of locally cached hub models in the
shape a model server expects.

Its main job is ensuring a config field carries a default: the patch command
resolves a file through the cache's symlink chain, stores a one-time backup
next to the real bytes, and inserts the field only if it is absent. Existing
values are never overwritten, and a second run is a no-op.

Around that core it can inventory the cache, check a model against the hub,
scaffold server bootstrap configs, and restore pristine files from backups.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			overrides := Overrides{}
			overrides.ConfigPath, _ = cmd.Flags().GetString("config")
			overrides.CacheDir, _ = cmd.Flags().GetString("cache-dir")
			overrides.HubURL, _ = cmd.Flags().GetString("hub-url")
			overrides.Token, _ = cmd.Flags().GetString("token")
			overrides.Debug, _ = cmd.Flags().GetBool("debug")

			return container.Initialize(overrides)
		},
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} version {{.Version}}\nBuild time: %s\nGo version: %s\nPlatform: %s/%s\n",
		BuildTime, goVersion(), runtime.GOOS, runtime.GOARCH))

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("config", "", "Config file path (default is $HOME/.config/hubfix/config.json)")
	rootCmd.PersistentFlags().String("cache-dir", "", "Hub cache directory (default is the standard hub cache)")
	rootCmd.PersistentFlags().String("hub-url", "", "Hub API base URL")
	rootCmd.PersistentFlags().String("token", "", "Hub API token for private models")

	rootCmd.AddCommand(NewPatchCommand(container))
	rootCmd.AddCommand(NewRestoreCommand(container))
	rootCmd.AddCommand(NewInspectCommand(container))
	rootCmd.AddCommand(NewListCommand(container))
	rootCmd.AddCommand(NewCheckCommand(container))
	rootCmd.AddCommand(NewScaffoldCommand(container))
	rootCmd.AddCommand(NewBrowseCommand(container))
	rootCmd.AddCommand(NewConfigCommand(container))

	return rootCmd
}

// goVersion returns the Go version used to build the binary
func goVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.GoVersion
	}
	return "unknown"
}

// Execute runs the root command and exits non-zero on failure. The context
// reaches every command, so cancelling it aborts cache scans and hub calls.
func Execute(ctx context.Context, container *CLIContainer) {
	rootCmd := NewRootCommand(container)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
