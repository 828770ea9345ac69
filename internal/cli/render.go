package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	mgerrors "github.com/matzehuels/moviegraph/pkg/errors"
	"github.com/matzehuels/moviegraph/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string   // output file (single format) or base path (several)
	formats []string // output formats, see pipeline.ValidFormats
	edges   bool     // draw link lines
	steps   int      // simulation steps; 0 keeps the configured value
	scale   float64  // png resolution multiplier; 0 keeps the configured value
	seed    uint64   // simulation seed; 0 keeps the configured value
	noCache bool     // bypass the artifact cache
	refresh bool     // recompute and overwrite cached artifacts
}

// renderCommand creates the render command. It reads an interaction map
// (a JSON object of id → [id, ...]) from a file, or stdin for "-", and
// writes one document per requested format.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [map.json]",
		Short: "Render an interaction map to SVG, PNG, PDF, DOT or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			for _, f := range opts.formats {
				if err := pipeline.ValidateFormat(f); err != nil {
					return err
				}
			}
			opts.edges = opts.edges || c.cfg.Render.Edges
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, dot, graphviz, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.edges, "edges", false, "draw link lines between users and movies")
	cmd.Flags().IntVar(&opts.steps, "steps", 0, "simulation steps (default from config, 600)")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "PNG resolution multiplier")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "simulation seed")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached artifacts")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	data, err := readInput(input, c.cfg.Server.MaxBodyBytes)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	base := opts.output
	if base == "" || len(opts.formats) > 1 {
		base = basePath(opts.output, input)
	}

	for _, format := range opts.formats {
		popts := c.cfg.PipelineOptions()
		popts.Format = format
		popts.Edges = opts.edges
		popts.Refresh = opts.refresh
		if opts.steps > 0 {
			popts.Steps = opts.steps
		}
		if opts.scale > 0 {
			popts.Scale = opts.scale
		}
		if opts.seed > 0 {
			popts.Seed = opts.seed
		}

		spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", format))
		spinner.Start()
		res, err := runner.Execute(ctx, data, popts)
		spinner.Stop()
		if err != nil {
			printError("Render %s failed: %s", format, mgerrors.UserMessage(err))
			return err
		}

		path := base
		if opts.output == "" || len(opts.formats) > 1 {
			path = base + pipeline.Extensions[format]
		}
		if err := os.WriteFile(path, res.Artifact, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printSuccess("Rendered %s", strings.ToUpper(format))
		printStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.CacheHit)
		printFile(path)
	}
	return nil
}

// readInput reads path, or stdin for "-", up to limit bytes.
func readInput(path string, limit int64) ([]byte, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, mgerrors.Wrap(mgerrors.ErrCodeFileNotFound, err, "open %s", path)
		}
		defer f.Close()
		r = f
	}
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, mgerrors.New(mgerrors.ErrCodePayloadTooLarge, "%s exceeds %d bytes", path, limit)
	}
	return data, nil
}

// basePath derives the output path without extension: the -o value with
// its extension stripped, else the input name, else "moviegraph" for stdin.
func basePath(output, input string) string {
	if output != "" {
		return strings.TrimSuffix(output, filepath.Ext(output))
	}
	if input == "-" {
		return appName
	}
	return strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
}
