package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/netposter/pkg/pipeline"
)

type renderOpts struct {
	settingsFlags
	cache   cacheFlags
	output  string
	formats string
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts
	cmd := &cobra.Command{
		Use:   "render <graph.json>",
		Short: "Render a graph to a poster",
		Long: `Render a positioned graph to a raster poster.

Formats: png, jpeg, svg (vector schematic), chart (closeness diagnostic) and
json (normalised geometry with the closeness estimate). With --tiles N the
raster formats are written as N×N files named <output>_r<row>_c<col>.<ext>.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], opts)
		},
	}
	opts.settingsFlags.register(cmd)
	opts.cache.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output path without extension (default: input name)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", pipeline.FormatPNG, "comma-separated output formats")
	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts renderOpts) error {
	ctx := cmd.Context()
	s, err := c.resolveSettings(cmd, opts.settingsFlags)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(opts.cache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := pipeline.Options{
		Input:      input,
		EventsPath: opts.events,
		Settings:   s,
		Formats:    parseFormats(opts.formats),
		Logger:     c.Logger,
	}
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	base := outputBase(input, opts.output)

	var spin *spinner
	if isatty.IsTerminal(os.Stderr.Fd()) && c.Logger.GetLevel() > LogDebug {
		spin = startSpinner(ctx, os.Stderr, "Rendering "+filepath.Base(input))
	}
	defer spin.Stop()
	sw := startStopwatch(c.Logger)

	var written []string
	formats := popts.Formats
	if s.Tiles > 1 {
		for _, f := range []string{pipeline.FormatPNG, pipeline.FormatJPEG} {
			if !slices.Contains(formats, f) {
				continue
			}
			spin.SetMessage(fmt.Sprintf("Rendering %d×%d %s tiles", s.Tiles, s.Tiles, f))
			paths, err := runner.ExportTiles(ctx, popts, base+pipeline.Extension(f))
			written = append(written, paths...)
			if err != nil {
				return err
			}
			sw.step("wrote tiles", "format", f, "count", len(paths))
		}
		formats = slices.DeleteFunc(slices.Clone(formats), func(f string) bool {
			return f == pipeline.FormatPNG || f == pipeline.FormatJPEG
		})
	}

	var res *pipeline.Result
	if len(formats) > 0 {
		popts.Formats = formats
		spin.SetMessage("Rendering " + strings.Join(formats, ", "))
		res, err = runner.Execute(ctx, popts)
		if err != nil {
			return err
		}
		for _, f := range formats {
			p := base + pipeline.Extension(f)
			if err := pipeline.WriteArtifact(p, res.Artifacts[f]); err != nil {
				return err
			}
			written = append(written, p)
		}
	}
	spin.Stop()
	sw.finish("Rendered "+filepath.Base(input), "files", len(written))

	ui := newPrinter(cmd.OutOrStdout())
	ui.success("Rendered %s", filepath.Base(input))
	if res != nil {
		ui.stats(res.Stats, res.CacheHit)
		if cr := res.Closeness; cr != nil && cr.Inconclusive {
			ui.warning("closeness inconclusive: %s", cr.Reason)
		}
	}
	for _, p := range written {
		ui.file(p)
	}
	return nil
}

// outputExts are stripped from --output, longest first.
var outputExts = []string{".chart.png", ".jpeg", ".json", ".png", ".jpg", ".svg"}

// outputBase returns the path that format extensions are appended to. A
// known extension on output is stripped.
func outputBase(input, output string) string {
	if output == "" {
		name := filepath.Base(input)
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	for _, ext := range outputExts {
		if strings.HasSuffix(output, ext) {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}
