// Package chart models Chart.js configurations and binds them to canvases.
package chart

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	TypeLine     = "line"
	TypeBar      = "bar"
	TypeDoughnut = "doughnut"
)

var ErrInvalidConfig = errors.New("invalid chart config")

// Config is the object handed to `new Chart(ctx, config)`.
type Config struct {
	Type    string  `json:"type"`
	Data    Data    `json:"data"`
	Options Options `json:"options"`
}

type Data struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

type Dataset struct {
	Label           string    `json:"label,omitempty"`
	Data            []float64 `json:"data"`
	BackgroundColor Colors    `json:"backgroundColor,omitempty"`
	BorderColor     Colors    `json:"borderColor,omitempty"`
	BorderWidth     int       `json:"borderWidth,omitempty"`
	BorderRadius    int       `json:"borderRadius,omitempty"`
	Fill            bool      `json:"fill,omitempty"`
	Tension         float64   `json:"tension,omitempty"`
	PointRadius     int       `json:"pointRadius,omitempty"`
}

// Colors is a per-point colour list. A single colour is encoded as a plain
// string, which Chart.js applies to every point.
type Colors []string

func (c Colors) MarshalJSON() ([]byte, error) {
	if len(c) == 1 {
		return json.Marshal(c[0])
	}
	return json.Marshal([]string(c))
}

func (c *Colors) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*c = Colors{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*c = many
	return nil
}

type Options struct {
	Responsive          bool            `json:"responsive"`
	MaintainAspectRatio bool            `json:"maintainAspectRatio"`
	Plugins             *Plugins        `json:"plugins,omitempty"`
	Scales              map[string]Axis `json:"scales,omitempty"`
}

type Plugins struct {
	Legend  *Legend  `json:"legend,omitempty"`
	Title   *Title   `json:"title,omitempty"`
	Tooltip *Tooltip `json:"tooltip,omitempty"`
}

type Tooltip struct {
	Mode      string `json:"mode,omitempty"`
	Intersect bool   `json:"intersect"`
}

type Legend struct {
	Display  *bool         `json:"display,omitempty"`
	Position string        `json:"position,omitempty"`
	Labels   *LegendLabels `json:"labels,omitempty"`
}

type LegendLabels struct {
	BoxWidth int `json:"boxWidth,omitempty"`
	Padding  int `json:"padding,omitempty"`
}

type Title struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

type Axis struct {
	BeginAtZero bool   `json:"beginAtZero,omitempty"`
	Grid        *Grid  `json:"grid,omitempty"`
	Ticks       *Ticks `json:"ticks,omitempty"`
	Title       *Title `json:"title,omitempty"`
}

type Grid struct {
	Display bool `json:"display"`
}

type Ticks struct {
	StepSize    float64 `json:"stepSize,omitempty"`
	MaxRotation *int    `json:"maxRotation,omitempty"`
	MinRotation *int    `json:"minRotation,omitempty"`
}

// Hidden returns a pointer to false, for Legend.Display.
func Hidden() *bool {
	f := false
	return &f
}

// Int returns a pointer to n, for optional numeric options such as rotations.
func Int(n int) *int { return &n }

// Upright keeps category labels horizontal.
func Upright() *Ticks {
	return &Ticks{MaxRotation: Int(0), MinRotation: Int(0)}
}

// Validate checks the config is drawable: a known type and datasets that
// line up with the labels.
func (c Config) Validate() error {
	switch c.Type {
	case TypeLine, TypeBar, TypeDoughnut:
	default:
		return fmt.Errorf("%w: type %q", ErrInvalidConfig, c.Type)
	}
	for i, ds := range c.Data.Datasets {
		if len(ds.Data) != len(c.Data.Labels) {
			return fmt.Errorf("%w: dataset %d has %d points for %d labels",
				ErrInvalidConfig, i, len(ds.Data), len(c.Data.Labels))
		}
	}
	return nil
}
