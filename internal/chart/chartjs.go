package chart

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"finboard/internal/view"
)

const (
	// AttrConfig carries the serialized config the page script feeds to Chart.js.
	AttrConfig = "data-chart-config"
	// AttrRevision increments on every redraw.
	AttrRevision = "data-chart-revision"
)

var (
	ErrNotCanvas = errors.New("chart target is not a canvas")
	ErrDestroyed = errors.New("chart destroyed")
)

// Chart is a live chart bound to one canvas.
type Chart interface {
	// Config returns the mutable config. Changes take effect on Update.
	Config() *Config
	Update() error
	Destroy()
}

// Library constructs charts.
type Library interface {
	New(canvas *view.Element, cfg Config) (Chart, error)
}

// ChartJS renders charts as Chart.js configs attached to the canvas element.
type ChartJS struct{}

func (ChartJS) New(canvas *view.Element, cfg Config) (Chart, error) {
	if canvas == nil || canvas.Tag() != "canvas" {
		return nil, ErrNotCanvas
	}
	c := &canvasChart{canvas: canvas, cfg: cfg}
	if err := c.Update(); err != nil {
		return nil, err
	}
	return c, nil
}

type canvasChart struct {
	canvas    *view.Element
	cfg       Config
	revision  int
	destroyed bool
}

func (c *canvasChart) Config() *Config { return &c.cfg }

func (c *canvasChart) Update() error {
	if c.destroyed {
		return ErrDestroyed
	}
	if err := c.cfg.Validate(); err != nil {
		return err
	}
	b, err := json.Marshal(c.cfg)
	if err != nil {
		return fmt.Errorf("encode chart config: %w", err)
	}
	c.revision++
	c.canvas.SetAttr(AttrConfig, string(b))
	c.canvas.SetAttr(AttrRevision, strconv.Itoa(c.revision))
	return nil
}

func (c *canvasChart) Destroy() {
	c.destroyed = true
	c.canvas.RemoveAttr(AttrConfig)
	c.canvas.RemoveAttr(AttrRevision)
}
