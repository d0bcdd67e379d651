package position

import (
	"encoding/json"
	"log/slog"

	"github.com/vango-dev/floatkit/internal/errors"
	"github.com/vango-dev/floatkit/pkg/dom"
	"github.com/vango-dev/floatkit/pkg/geom"
)

// Spec names a middleware step with JSON options, the form middleware takes
// in configuration files and wire messages.
type Spec struct {
	Name    string          `json:"name"`
	Options json.RawMessage `json:"options,omitempty"`
}

// Padding decodes either a number (all sides) or a per-side object.
type Padding geom.SideObject

// UnmarshalJSON implements json.Unmarshaler.
func (p *Padding) UnmarshalJSON(b []byte) error {
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*p = Padding(geom.Uniform(n))
		return nil
	}
	var side geom.SideObject
	if err := json.Unmarshal(b, &side); err != nil {
		return err
	}
	*p = Padding(side)
	return nil
}

// DecodeHooks supplies the component state some steps need.
type DecodeHooks struct {
	// OnSize becomes the Apply callback of a size step.
	OnSize func(SizeInfo)
	// ArrowElement is the arrow handle for an arrow step.
	ArrowElement dom.Element
}

type offsetOptions struct {
	MainAxis      float64  `json:"mainAxis"`
	CrossAxis     float64  `json:"crossAxis"`
	AlignmentAxis *float64 `json:"alignmentAxis"`
}

type flipOptions struct {
	MainAxis           *bool            `json:"mainAxis"`
	CrossAxis          *bool            `json:"crossAxis"`
	FallbackPlacements []geom.Placement `json:"fallbackPlacements"`
	FallbackStrategy   string           `json:"fallbackStrategy"`
	FlipAlignment      *bool            `json:"flipAlignment"`
	Padding            Padding          `json:"padding"`
}

type shiftOptions struct {
	MainAxis  *bool   `json:"mainAxis"`
	CrossAxis bool    `json:"crossAxis"`
	Padding   Padding `json:"padding"`
}

type paddingOptions struct {
	Padding Padding `json:"padding"`
}

// Decode turns named specs into middleware. A hide spec expands into both
// hide strategies. Unknown names and malformed options are logged and
// dropped; decoding never fails.
func Decode(specs []Spec, hooks DecodeHooks, logger *slog.Logger) []Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	out := make([]Middleware, 0, len(specs))
	for _, spec := range specs {
		m, err := decodeOne(spec, hooks)
		if err != nil {
			logger.Debug("middleware dropped", "name", spec.Name, "error", err)
			continue
		}
		out = append(out, m...)
	}
	return out
}

func decodeOne(spec Spec, hooks DecodeHooks) ([]Middleware, error) {
	unmarshal := func(v any) error {
		if len(spec.Options) == 0 || string(spec.Options) == "null" {
			return nil
		}
		if err := json.Unmarshal(spec.Options, v); err != nil {
			return errors.New("F004").WithDetail(spec.Name).Wrap(err)
		}
		return nil
	}

	switch spec.Name {
	case "offset":
		var distance float64
		if len(spec.Options) > 0 && json.Unmarshal(spec.Options, &distance) == nil {
			return []Middleware{Offset{MainAxis: distance}}, nil
		}
		var o offsetOptions
		if err := unmarshal(&o); err != nil {
			return nil, err
		}
		return []Middleware{Offset{MainAxis: o.MainAxis, CrossAxis: o.CrossAxis, AlignmentAxis: o.AlignmentAxis}}, nil

	case "flip":
		var o flipOptions
		if err := unmarshal(&o); err != nil {
			return nil, err
		}
		f := Flip{
			DisableMainAxis:      o.MainAxis != nil && !*o.MainAxis,
			DisableCrossAxis:     o.CrossAxis != nil && !*o.CrossAxis,
			FallbackPlacements:   o.FallbackPlacements,
			DisableFlipAlignment: o.FlipAlignment != nil && !*o.FlipAlignment,
			Padding:              geom.SideObject(o.Padding),
		}
		if o.FallbackStrategy == "initialPlacement" {
			f.FallbackStrategy = FallbackInitialPlacement
		}
		return []Middleware{f}, nil

	case "shift":
		var o shiftOptions
		if err := unmarshal(&o); err != nil {
			return nil, err
		}
		return []Middleware{Shift{
			DisableMainAxis: o.MainAxis != nil && !*o.MainAxis,
			CrossAxis:       o.CrossAxis,
			Padding:         geom.SideObject(o.Padding),
		}}, nil

	case "size":
		var o paddingOptions
		if err := unmarshal(&o); err != nil {
			return nil, err
		}
		return []Middleware{Size{Padding: geom.SideObject(o.Padding), Apply: hooks.OnSize}}, nil

	case "arrow":
		var o paddingOptions
		if err := unmarshal(&o); err != nil {
			return nil, err
		}
		return []Middleware{Arrow{Element: hooks.ArrowElement, Padding: geom.SideObject(o.Padding)}}, nil

	case "hide":
		return []Middleware{
			Hide{Strategy: HideReferenceHidden},
			Hide{Strategy: HideEscaped},
		}, nil

	default:
		return nil, errors.New("F003").WithDetail(spec.Name)
	}
}
