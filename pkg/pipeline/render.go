package pipeline

import (
	"context"
	"encoding/json"

	mgerrors "github.com/matzehuels/moviegraph/pkg/errors"
	"github.com/matzehuels/moviegraph/pkg/render"
	"github.com/matzehuels/moviegraph/pkg/render/nodelink"
	"github.com/matzehuels/moviegraph/pkg/render/raster"
	"github.com/matzehuels/moviegraph/pkg/render/svg"
)

// layoutDocument is the json format: the placed scene plus run metadata.
type layoutDocument struct {
	render.Scene
	Steps int `json:"steps"`
}

// Render serializes scene in opts.Format.
func Render(ctx context.Context, scene render.Scene, steps int, opts Options) ([]byte, error) {
	switch opts.Format {
	case FormatSVG:
		return svg.Render(scene, svgOptions(opts)...), nil

	case FormatPNG:
		ropts := []raster.Option{raster.WithScale(opts.Scale)}
		if opts.Edges {
			ropts = append(ropts, raster.WithEdges())
		}
		if opts.Theme != nil {
			ropts = append(ropts, raster.WithTheme(*opts.Theme))
		}
		data, err := raster.Render(scene, ropts...)
		if err != nil {
			return nil, mgerrors.Wrap(mgerrors.ErrCodeInternal, err, "render png")
		}
		return data, nil

	case FormatDOT:
		return []byte(nodelink.ToDOT(scene, dotOptions(opts))), nil

	case FormatGraphviz:
		return nodelink.RenderSVG(ctx, nodelink.ToDOT(scene, dotOptions(opts)))

	case FormatJSON:
		data, err := json.MarshalIndent(layoutDocument{Scene: scene, Steps: steps}, "", "  ")
		if err != nil {
			return nil, mgerrors.Wrap(mgerrors.ErrCodeInternal, err, "encode layout")
		}
		return data, nil

	case FormatPDF:
		return render.ToPDF(ctx, svg.Render(scene, svgOptions(opts)...))
	}
	return nil, mgerrors.New(mgerrors.ErrCodeUnsupported, "unsupported format %q", opts.Format)
}

func svgOptions(opts Options) []svg.Option {
	var out []svg.Option
	if opts.Edges {
		out = append(out, svg.WithEdges())
	}
	if opts.Theme != nil {
		out = append(out, svg.WithTheme(*opts.Theme))
	}
	return out
}

func dotOptions(opts Options) nodelink.Options {
	return nodelink.Options{Edges: opts.Edges, Theme: opts.Theme}
}
