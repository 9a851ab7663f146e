package cli

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/netposter/pkg/errors"
	"github.com/matzehuels/netposter/pkg/pipeline"
)

type framesOpts struct {
	settingsFlags
	cache   cacheFlags
	outDir  string
	workers int
	formats string
	plain   bool
}

// framesCommand creates the frames command.
func (c *CLI) framesCommand() *cobra.Command {
	var opts framesOpts
	cmd := &cobra.Command{
		Use:   "frames <graph.json|dir>...",
		Short: "Render a batch of daily graphs in parallel",
		Long: `Render one poster per input graph, several at a time. Directories are
expanded to the JSON files they contain. Every frame gets its own renderer, so
a failing frame does not stop the batch.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFrames(cmd, args, opts)
		},
	}
	opts.settingsFlags.register(cmd)
	opts.cache.register(cmd)
	cmd.Flags().StringVarP(&opts.outDir, "out-dir", "o", "frames", "output directory")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "frames rendered at once (default: number of CPUs)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", pipeline.FormatPNG, "comma-separated output formats")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "log progress lines instead of the interactive view")
	return cmd
}

func (c *CLI) runFrames(cmd *cobra.Command, args []string, opts framesOpts) error {
	inputs, err := expandInputs(args)
	if err != nil {
		return err
	}
	s, err := c.resolveSettings(cmd, opts.settingsFlags)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(opts.cache)
	if err != nil {
		return err
	}
	defer runner.Close()

	fopts := pipeline.FrameOptions{
		Options: pipeline.Options{
			EventsPath: opts.events,
			Settings:   s,
			Formats:    parseFormats(opts.formats),
		},
		OutDir:  opts.outDir,
		Workers: opts.workers,
	}

	interactive := !opts.plain && isatty.IsTerminal(os.Stdout.Fd()) && isatty.IsTerminal(os.Stdin.Fd())
	if !interactive {
		return c.runFramesPlain(cmd.Context(), runner, inputs, fopts)
	}
	return c.runFramesTUI(cmd.Context(), runner, inputs, fopts)
}

func (c *CLI) runFramesPlain(ctx context.Context, runner *pipeline.Runner, inputs []string, fopts pipeline.FrameOptions) error {
	sw := startStopwatch(c.Logger)
	done := 0
	err := runner.RenderFrames(ctx, inputs, fopts, func(f pipeline.Frame) {
		done++
		if f.Err != nil {
			return
		}
		c.Logger.Info("frame done",
			"n", done, "of", len(inputs),
			"input", filepath.Base(f.Input),
			"cached", f.CacheHit,
			"took", f.Duration.Round(1e6))
	})
	sw.finish("Rendered frames", "count", done)
	return err
}

func (c *CLI) runFramesTUI(ctx context.Context, runner *pipeline.Runner, inputs []string, fopts pipeline.FrameOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The view owns the terminal; log lines would tear it.
	level := c.Logger.GetLevel()
	c.Logger.SetLevel(LogError)
	defer c.Logger.SetLevel(level)

	p := tea.NewProgram(newFramesModel(len(inputs), fopts.OutDir, cancel), tea.WithContext(ctx))
	go func() {
		err := runner.RenderFrames(ctx, inputs, fopts, func(f pipeline.Frame) {
			p.Send(frameMsg(f))
		})
		p.Send(framesDoneMsg{err: err})
	}()

	final, err := p.Run()
	if err != nil && !stderrors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	m, ok := final.(framesModel)
	if !ok {
		return nil
	}
	if m.cancelled {
		return context.Canceled
	}
	return m.err
}

// expandInputs replaces directories by the JSON files they contain, sorted.
func expandInputs(args []string) ([]string, error) {
	var out []string
	for _, a := range args {
		info, err := os.Stat(a)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "input %s", a)
		}
		if !info.IsDir() {
			out = append(out, a)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(a, "*.json"))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "list %s", a)
		}
		sort.Strings(matches)
		out = append(out, matches...)
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no input graphs found")
	}
	return out, nil
}
