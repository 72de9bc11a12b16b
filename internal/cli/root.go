package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"image-tagger/internal/loader"
	"image-tagger/internal/logging"
	"image-tagger/internal/startup"
	"image-tagger/internal/workspace"
)

// rootOptions holds the persistent flags and the configuration they resolve to.
type rootOptions struct {
	configFile string
	dir        string
	extensions string
	catalog    string
	throttle   time.Duration
	logLevel   string

	cfg *startup.Config
}

// NewRootCmd creates the image-tagger command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "image-tagger",
		Short: "Tag a folder of images with comma-separated sidecar files",
		Long: `image-tagger manages the tags of every image in one directory.

Each image's tags live in a sidecar text file next to it (img1.png -> img1.txt)
holding a comma-separated list. Use "serve" for the HTTP API or the other
subcommands for one-shot edits.

Filter queries:
  cat, *.jpg          images tagged cat and some tag matching *.jpg
  cat !(outdoor)      images tagged cat and no tag matching outdoor
  cat OR dog          images tagged exactly cat or exactly dog`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.resolve(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "YAML configuration file (default $"+startup.ConfigEnv+")")
	rootCmd.PersistentFlags().StringVarP(&opts.dir, "dir", "d", "", "Image directory (overrides TAGGER_DIR)")
	rootCmd.PersistentFlags().StringVar(&opts.extensions, "ext", "", "Comma-separated image extensions (overrides IMAGE_EXTENSIONS)")
	rootCmd.PersistentFlags().StringVar(&opts.catalog, "catalog", "", "SQLite catalog path (overrides CATALOG_PATH)")
	rootCmd.PersistentFlags().DurationVar(&opts.throttle, "throttle", 0, "Pause after each sidecar write (overrides SAVE_THROTTLE)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")

	rootCmd.Version = startup.Version + " (" + startup.Commit + ")"

	rootCmd.AddCommand(
		newServeCmd(opts),
		newImagesCmd(opts),
		newShowCmd(opts),
		newTagsCmd(opts),
		newSuggestCmd(opts),
		newAddCmd(opts),
		newRemoveCmd(opts),
		newRenameCmd(opts),
		newDeleteCmd(opts),
		newStatsCmd(opts),
	)

	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		startup.LogFatal("%v", err)
	}
}

// resolve loads the configuration and applies flags that were set explicitly.
func (o *rootOptions) resolve(cmd *cobra.Command) error {
	cfg, err := startup.LoadConfig(o.configFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("dir") {
		cfg.Dir = o.dir
	}
	if flags.Changed("ext") {
		cfg.ImageExtensions = o.extensions
	}
	if flags.Changed("catalog") {
		cfg.CatalogPath = o.catalog
	}
	if flags.Changed("throttle") {
		cfg.SaveThrottle = o.throttle
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}

	level, ok := logging.ParseLevel(cfg.LogLevel)
	if !ok {
		return fmt.Errorf("invalid log level %q", cfg.LogLevel)
	}
	logging.SetLevel(level)

	if err := cfg.Validate(); err != nil {
		return err
	}

	o.cfg = cfg
	return nil
}

func (o *rootOptions) workspaceOptions() workspace.Options {
	return workspace.Options{
		Dir: o.cfg.Dir,
		Load: loader.Options{
			Extensions:      o.cfg.Extensions(),
			Workers:         o.cfg.LoadWorkers,
			ProbeDimensions: o.cfg.ProbeDimensions,
		},
		Throttle:    o.cfg.SaveThrottle,
		CatalogPath: o.cfg.CatalogPath,
	}
}

// withWorkspace opens the configured workspace, runs fn and closes it,
// which waits for every queued save.
func (o *rootOptions) withWorkspace(ctx context.Context, fn func(*workspace.Workspace) error) (err error) {
	ws, err := workspace.Open(ctx, o.workspaceOptions())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := ws.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close workspace: %w", cerr)
		}
	}()
	return fn(ws)
}
