// Package cli implements the netposter command-line interface.
//
// # Commands
//
//   - render: render one graph to a poster, a schematic, a chart or JSON
//   - frames: render a batch of daily graphs in parallel
//   - closeness: estimate the connected-closeness distance of a graph
//   - cache: inspect and clear the artifact cache
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/netposter/pkg/buildinfo"
	"github.com/matzehuels/netposter/pkg/cache"
	"github.com/matzehuels/netposter/pkg/pipeline"
)

const appName = "netposter"

// Environment defaults of the cache flags.
const (
	envRedisURL   = "NETPOSTER_REDIS_URL"
	envCacheScope = "NETPOSTER_CACHE_SCOPE"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogError = log.ErrorLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a CLI logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Netposter renders weighted actor networks as posters",
		Long: `Netposter renders a positioned, weighted actor graph into a layered raster
poster: density heatmap, relief shading, edges that fade through foreign nodes,
shadowed node markers, labels and analytical overlays.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.framesCommand())
	root.AddCommand(c.closenessCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	return root
}

// cacheFlags selects the cache backend of a command.
type cacheFlags struct {
	noCache  bool
	redisURL string
	scope    string
}

func (f *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().StringVar(&f.redisURL, "redis", os.Getenv(envRedisURL), "redis URL of a shared cache (default $"+envRedisURL+")")
	cmd.Flags().StringVar(&f.scope, "cache-scope", os.Getenv(envCacheScope), "key prefix separating projects in a shared cache (default $"+envCacheScope+")")
}

// newRunner creates a pipeline runner with the selected cache.
func (c *CLI) newRunner(f cacheFlags) (*pipeline.Runner, error) {
	cc, err := c.newCache(f)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, cache.Scope(nil, f.scope), c.Logger), nil
}

func (c *CLI) newCache(f cacheFlags) (cache.Cache, error) {
	switch {
	case f.noCache:
		return cache.NewNullCache(), nil
	case f.redisURL != "":
		rc, err := cache.NewRedisCache(f.redisURL)
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("using redis cache")
		return rc, nil
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("no cache directory, caching disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// cacheDir returns the cache directory using XDG standard (~/.cache/netposter/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// parseFormats splits a comma-separated format list.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatPNG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
