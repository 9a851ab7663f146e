package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/netposter/pkg/errors"
)

// FrameOptions configures a batch of frames.
type FrameOptions struct {
	// Options is the template for every frame. Input and Graph are set per
	// frame; Formats defaults to PNG.
	Options

	// OutDir receives one artifact per frame and format, named after the
	// input file.
	OutDir string

	// Workers is the number of frames rendered at once; 0 means GOMAXPROCS.
	Workers int
}

// Frame reports the outcome of one frame.
type Frame struct {
	Index    int
	Input    string
	Paths    []string
	CacheHit bool
	Duration time.Duration
	Err      error
}

// RenderFrames renders one poster per input with a renderer each, at most
// Workers at a time. A failing frame does not stop the others. onFrame, if
// set, is called once per finished frame; calls are serialised.
func (r *Runner) RenderFrames(ctx context.Context, inputs []string, opts FrameOptions, onFrame func(Frame)) error {
	if len(inputs) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no input graphs")
	}
	if opts.OutDir == "" {
		return errors.New(errors.ErrCodeInvalidPath, "an output directory is required")
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create %s", opts.OutDir)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, len(inputs))
	if opts.Options.Workers == 0 {
		opts.Options.Workers = max(1, runtime.GOMAXPROCS(0)/workers)
	}
	r.applyLogger(&opts.Options)

	var (
		mu     sync.Mutex
		failed int
	)
	report := func(f Frame) {
		mu.Lock()
		defer mu.Unlock()
		if f.Err != nil {
			failed++
		}
		if onFrame != nil {
			onFrame(f)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, in := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			paths, hit, err := r.renderFrame(ctx, in, opts)
			report(Frame{Index: i, Input: in, Paths: paths, CacheHit: hit, Duration: time.Since(start), Err: err})
			if err != nil {
				opts.Logger.Error("frame failed", "input", in, "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if failed > 0 {
		return errors.New(errors.ErrCodeInternal, "%d of %d frames failed", failed, len(inputs))
	}
	return nil
}

func (r *Runner) renderFrame(ctx context.Context, input string, opts FrameOptions) ([]string, bool, error) {
	o := opts.Options
	o.Input = input
	o.Graph = nil
	o.Formats = append([]string(nil), opts.Formats...)
	o.validated = false
	o.Logger = o.Logger.With("frame", filepath.Base(input))
	if err := o.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	base := filepath.Join(opts.OutDir, frameName(input))
	var paths []string

	// Tiled raster output is written tile by tile.
	var formats []string
	for _, f := range o.Formats {
		if (f == FormatPNG || f == FormatJPEG) && o.Settings.Tiles > 1 {
			written, err := r.ExportTiles(ctx, o, base+Extension(f))
			paths = append(paths, written...)
			if err != nil {
				return paths, false, err
			}
			continue
		}
		formats = append(formats, f)
	}
	if len(formats) == 0 {
		return paths, false, nil
	}

	o.Formats = formats
	res, err := r.Execute(ctx, o)
	if err != nil {
		return paths, false, err
	}
	for _, f := range formats {
		p := base + Extension(f)
		if err := WriteArtifact(p, res.Artifacts[f]); err != nil {
			return paths, res.CacheHit, err
		}
		paths = append(paths, p)
	}
	return paths, res.CacheHit, nil
}

// WriteArtifact writes data to path, creating parent directories.
func WriteArtifact(path string, data []byte) error {
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	return nil
}

// frameName is the input file name without its extension.
func frameName(input string) string {
	name := filepath.Base(input)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
