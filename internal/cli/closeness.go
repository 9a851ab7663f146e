package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netposter/pkg/closeness"
	"github.com/matzehuels/netposter/pkg/graph"
	"github.com/matzehuels/netposter/pkg/pipeline"
	"github.com/matzehuels/netposter/pkg/render"
	"github.com/matzehuels/netposter/pkg/render/engine"
)

type closenessOpts struct {
	settingsFlags
	chart   string
	asJSON  bool
	grid    int
	epsilon float64
}

// closenessCommand creates the closeness command.
func (c *CLI) closenessCommand() *cobra.Command {
	var opts closenessOpts
	cmd := &cobra.Command{
		Use:   "closeness <graph.json>",
		Short: "Estimate the connected-closeness distance of a graph",
		Long: `Estimate Δ_max, the distance at which pairs of nodes closer than Δ are most
over-represented among connected pairs. Distances are in render pixels of the
normalised layout, so they depend on the size and resolution settings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCloseness(cmd, args[0], opts)
		},
	}
	opts.settingsFlags.register(cmd)
	cmd.Flags().StringVar(&opts.chart, "chart", "", "write the diagnostic chart to this PNG")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the result as JSON")
	cmd.Flags().IntVar(&opts.grid, "grid", 0, "grid points per search iteration (default from settings)")
	cmd.Flags().Float64Var(&opts.epsilon, "epsilon", 0, "convergence tolerance (default from settings)")
	return cmd
}

func (c *CLI) runCloseness(cmd *cobra.Command, input string, opts closenessOpts) error {
	s, err := c.resolveSettings(cmd, opts.settingsFlags)
	if err != nil {
		return err
	}
	if opts.grid > 0 {
		s.Closeness.GridSize = opts.grid
	}
	if opts.epsilon > 0 {
		s.Closeness.Epsilon = opts.epsilon
	}

	g, err := graph.ImportJSON(input)
	if err != nil {
		return err
	}
	r, err := engine.New(g, s, engine.WithLogger(c.Logger))
	if err != nil {
		return err
	}
	sw := startStopwatch(c.Logger)
	res, err := r.Closeness(cmd.Context())
	if err != nil {
		return err
	}
	sw.finish("Estimated closeness", "iterations", res.Iterations)

	if opts.chart != "" {
		if err := render.WriteFile(opts.chart, closeness.Chart(res, pipeline.ChartWidth, pipeline.ChartHeight)); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(pipeline.Report(res))
	}

	ui := newPrinter(out)
	ui.success("%s", filepath.Base(input))
	if res.Inconclusive {
		ui.warning("inconclusive: %s", res.Reason)
	} else {
		ui.keyValue("Δ max", fmt.Sprintf("%.2f px", res.DeltaMax))
	}
	ui.keyValue("C max", fmt.Sprintf("%.4f", res.CMax))
	ui.keyValue("edges", fmt.Sprintf("%.1f%%", 100*res.E))
	ui.keyValue("pairs", fmt.Sprintf("%.1f%%", 100*res.P))
	ui.keyValue("iterations", fmt.Sprint(res.Iterations))
	if opts.chart != "" {
		ui.file(opts.chart)
	}
	return nil
}
