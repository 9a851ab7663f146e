package engine

import (
	"context"
	"image"
	"image/draw"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/netposter/pkg/errors"
	"github.com/matzehuels/netposter/pkg/observability"
	"github.com/matzehuels/netposter/pkg/render"
	"github.com/matzehuels/netposter/pkg/render/raster"
	"github.com/matzehuels/netposter/pkg/render/settings"
)

// Tiles returns the tile grid of the canvas, row by row.
func (r *Renderer) Tiles() []raster.Tile {
	tw, th := r.settings.TileSize()
	return raster.Tiles(r.settings.Tiles, tw, th)
}

// Tile returns the tile at (col, row).
func (r *Renderer) Tile(col, row int) (raster.Tile, error) {
	n := r.settings.Tiles
	if col < 0 || row < 0 || col >= n || row >= n {
		return raster.Tile{}, errors.New(errors.ErrCodeInvalidInput, "tile (%d, %d) outside the %dx%d grid", col, row, n, n)
	}
	return r.Tiles()[row*n+col], nil
}

// RenderTile renders tile (col, row) at render resolution. The returned
// image has its origin at (0, 0).
func (r *Renderer) RenderTile(ctx context.Context, col, row int) (*image.RGBA, error) {
	t, err := r.Tile(col, row)
	if err != nil {
		return nil, err
	}
	ls, err := r.layers(ctx)
	if err != nil {
		return nil, err
	}
	return r.composite(ctx, t, ls)
}

// composite draws every layer of t into its own buffer and blends them,
// bottom to top, over the background.
func (r *Renderer) composite(ctx context.Context, t raster.Tile, ls []layer) (*image.RGBA, error) {
	bufs := make([]*image.RGBA, len(ls))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, l := range ls {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			buf := raster.NewLayer(t)
			l.draw(buf, t)
			bufs[i] = buf
			observability.Render().OnLayerDrawn(ctx, r.id, l.name, t.Col, t.Row, time.Since(start))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	w, h := t.Bounds.Dx(), t.Bounds.Dy()
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	dc := gg.NewContextForRGBA(out)
	if bg := r.settings.Background; bg.Enabled {
		c, err := settings.ParseColor(bg.Color)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSettings, err, "background colour")
		}
		dc.SetColor(c.Clamped())
		dc.Clear()
	}
	for _, buf := range bufs {
		dc.DrawImage(rebase(buf), 0, 0)
	}
	return out, nil
}

// rebase returns img moved so that its bounds start at the origin. The
// pixels are shared.
func rebase(img *image.RGBA) *image.RGBA {
	return &image.RGBA{Pix: img.Pix, Stride: img.Stride, Rect: img.Rect.Sub(img.Rect.Min)}
}

// RenderCanvas renders and assembles every tile at render resolution.
func (r *Renderer) RenderCanvas(ctx context.Context) (*image.RGBA, error) {
	start := time.Now()
	observability.Render().OnRenderStart(ctx, r.id, len(r.layout.Nodes), len(r.layout.Edges), r.settings.Tiles*r.settings.Tiles)

	canvas, err := r.renderCanvas(ctx)
	observability.Render().OnRenderComplete(ctx, r.id, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("canvas rendered", "size", [2]int{r.layout.Width, r.layout.Height}, "took", time.Since(start))
	return canvas, nil
}

func (r *Renderer) renderCanvas(ctx context.Context) (*image.RGBA, error) {
	ls, err := r.layers(ctx)
	if err != nil {
		return nil, err
	}
	canvas := image.NewRGBA(image.Rect(0, 0, r.layout.Width, r.layout.Height))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, r.workers/2))
	for _, t := range r.Tiles() {
		g.Go(func() error {
			img, err := r.composite(ctx, t, ls)
			if err != nil {
				return err
			}
			draw.Draw(canvas, t.Bounds, img, image.Point{}, draw.Src)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return canvas, nil
}

// Render renders the full image and resamples it to the output resolution.
func (r *Renderer) Render(ctx context.Context) (image.Image, error) {
	canvas, err := r.RenderCanvas(ctx)
	if err != nil {
		return nil, err
	}
	ow, oh := r.settings.OutputSize()
	return render.Resample(canvas, ow, oh, r.settings.Resample), nil
}

// Export writes the render to path, in the format of its extension. With a
// tile factor above 1 every tile is written to its own file, named by
// [render.TilePath]. The tiles reassemble into the output of [Renderer.Render]
// pixel for pixel. It returns the written paths.
func (r *Renderer) Export(ctx context.Context, path string) ([]string, error) {
	if _, err := render.FormatFromPath(path); err != nil {
		return nil, err
	}
	if r.settings.Tiles == 1 {
		img, err := r.Render(ctx)
		if err != nil {
			return nil, err
		}
		if err := render.WriteFile(path, img); err != nil {
			return nil, err
		}
		r.logger.Info("wrote image", "path", path)
		return []string{path}, nil
	}

	tile, err := r.outputTiles(ctx)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, t := range r.Tiles() {
		img, err := tile(t)
		if err != nil {
			return paths, err
		}
		p := render.TilePath(path, t.Row, t.Col)
		if err := render.WriteFile(p, img); err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	r.logger.Info("wrote tiles", "count", len(paths), "pattern", render.TilePath(path, 0, 0))
	return paths, nil
}

// outputTiles returns a function producing each tile at output resolution.
// At render DPI tiles are composited one at a time. Otherwise the whole
// canvas is resampled once and cut, since a filter applied per tile would
// clamp at every seam.
func (r *Renderer) outputTiles(ctx context.Context) (func(raster.Tile) (image.Image, error), error) {
	if r.settings.OutputDPI == r.settings.RenderDPI {
		ls, err := r.layers(ctx)
		if err != nil {
			return nil, err
		}
		return func(t raster.Tile) (image.Image, error) {
			return r.composite(ctx, t, ls)
		}, nil
	}

	out, err := r.Render(ctx)
	if err != nil {
		return nil, err
	}
	ow, oh := r.settings.OutputTileSize()
	return func(t raster.Tile) (image.Image, error) {
		return crop(out, image.Rect(t.Col*ow, t.Row*oh, (t.Col+1)*ow, (t.Row+1)*oh)), nil
	}, nil
}

// crop copies rect of img into a new image with its origin at (0, 0).
func crop(img image.Image, rect image.Rectangle) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), img, rect.Min, draw.Src)
	return dst
}
