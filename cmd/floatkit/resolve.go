package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/floatkit/internal/errors"
	"github.com/vango-dev/floatkit/pkg/dom"
	"github.com/vango-dev/floatkit/pkg/geom"
	"github.com/vango-dev/floatkit/pkg/position"
	"github.com/vango-dev/floatkit/pkg/server"
	"github.com/vango-dev/floatkit/pkg/tooltip"
)

// snapshot is a measured layout plus the pair to position in it.
type snapshot struct {
	Viewport   geom.Rect           `json:"viewport"`
	Nodes      []server.LayoutNode `json:"nodes"`
	Reference  string              `json:"reference"`
	Floating   string              `json:"floating"`
	Arrow      string              `json:"arrow,omitempty"`
	Placement  string              `json:"placement,omitempty"`
	Strategy   position.Strategy   `json:"strategy,omitempty"`
	Middleware []position.Spec     `json:"middleware,omitempty"`
}

type resolved struct {
	position.Result
	Visible bool `json:"visible"`
}

func resolveCmd() *cobra.Command {
	var (
		file      string
		placement string
		strategy  string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Compute a floating position from a layout snapshot",
		Long: `Read a layout snapshot as JSON and print the resolved position.

The snapshot lists the viewport, the measured nodes, the ids of the
reference and floating elements and optionally a placement, strategy
and middleware list. Without a middleware list the tooltip pipeline
(offset 8, flip, shift) is used.

Examples:
  floatkit resolve -f layout.json
  cat layout.json | floatkit resolve --placement=left`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if file != "" && file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			snap, err := readSnapshot(in)
			if err != nil {
				return err
			}
			if placement != "" {
				snap.Placement = placement
			}
			if strategy != "" {
				snap.Strategy = position.Strategy(strategy)
			}

			res, err := resolve(snap, slog.Default())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "Snapshot file, - for stdin")
	cmd.Flags().StringVarP(&placement, "placement", "p", "", "Override the snapshot placement")
	cmd.Flags().StringVar(&strategy, "strategy", "", "Override the positioning strategy (absolute or fixed)")

	return cmd
}

func readSnapshot(r io.Reader) (snapshot, error) {
	var snap snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return snap, errors.New("F030").
			WithDetail("Failed to parse layout snapshot: " + err.Error())
	}
	return snap, nil
}

func resolve(snap snapshot, logger *slog.Logger) (resolved, error) {
	p := geom.PlacementBottom
	if snap.Placement != "" {
		parsed, err := geom.ParsePlacement(snap.Placement)
		if err != nil {
			return resolved{}, errors.New("F010").WithDetail(snap.Placement).Wrap(err)
		}
		p = parsed
	}
	strategy := snap.Strategy
	if strategy == "" {
		strategy = position.StrategyAbsolute
	}

	doc := dom.NewDocument(snap.Viewport)
	if errs := server.ApplyLayout(doc, &snap.Viewport, snap.Nodes, false); len(errs) > 0 {
		return resolved{}, errs[0]
	}
	ref, fl := doc.Lookup(snap.Reference), doc.Lookup(snap.Floating)

	middleware := tooltip.DefaultMiddleware()
	if snap.Middleware != nil {
		hooks := position.DecodeHooks{}
		if snap.Arrow != "" {
			hooks.ArrowElement = doc.Lookup(snap.Arrow)
		}
		middleware = position.Decode(snap.Middleware, hooks, logger)
	}

	r := position.NewResolver(position.WithLogger(logger))
	res, ok := r.Compute(context.Background(), ref, fl, position.Config{
		Placement:  p,
		Strategy:   strategy,
		Middleware: middleware,
	})
	if !ok {
		return resolved{}, errors.New("F001").
			WithDetail("reference " + snap.Reference + " or floating " + snap.Floating + " is not in the snapshot")
	}
	return resolved{Result: res, Visible: res.Visible()}, nil
}
