package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/netposter/pkg/render/settings"
)

// settingsFlags are the render settings that can be overridden on the
// command line. Everything else comes from the settings file.
type settingsFlags struct {
	file      string
	width     float64
	height    float64
	dpi       float64
	outputDPI float64
	tiles     int
	overlay   string
	seed      int64
	events    string
}

func (f *settingsFlags) register(cmd *cobra.Command) {
	d := settings.Defaults()
	fl := cmd.Flags()
	fl.StringVarP(&f.file, "settings", "s", "", "TOML settings file")
	fl.StringVar(&f.events, "events", "", "broadcast table (JSON) for the tags overlay")
	fl.Float64Var(&f.width, "width", d.Width, "image width in mm")
	fl.Float64Var(&f.height, "height", d.Height, "image height in mm")
	fl.Float64Var(&f.dpi, "dpi", d.RenderDPI, "render resolution")
	fl.Float64Var(&f.outputDPI, "output-dpi", d.OutputDPI, "resolution of the written image")
	fl.IntVar(&f.tiles, "tiles", d.Tiles, "split the image into an N×N grid of files")
	fl.StringVar(&f.overlay, "overlay", d.Overlay.Kind, "overlay: tags, closeness or proximity")
	fl.Int64Var(&f.seed, "seed", d.Seed, "random seed for fallback positions and jitter")
}

// resolveSettings loads the settings file, if any, and applies the flags the user
// set explicitly.
func (c *CLI) resolveSettings(cmd *cobra.Command, f settingsFlags) (settings.Settings, error) {
	s := settings.Defaults()
	if f.file != "" {
		loaded, unknown, err := settings.Load(f.file)
		if err != nil {
			return s, err
		}
		for _, k := range unknown {
			c.Logger.Warn("unknown settings key", "key", k, "file", f.file)
		}
		s = loaded
	}

	changed := cmd.Flags().Changed
	if changed("width") {
		s.Width = f.width
	}
	if changed("height") {
		s.Height = f.height
	}
	if changed("dpi") {
		s.RenderDPI = f.dpi
		if !changed("output-dpi") && f.file == "" {
			s.OutputDPI = f.dpi
		}
	}
	if changed("output-dpi") {
		s.OutputDPI = f.outputDPI
	}
	if changed("tiles") {
		s.Tiles = f.tiles
	}
	if changed("overlay") {
		s.Overlay.Kind = f.overlay
	}
	if changed("seed") {
		s.Seed = f.seed
	}
	return s, s.Validate()
}
