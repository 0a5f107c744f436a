package widgets

import (
	"fmt"

	"finboard/internal/aggregate"
	"finboard/internal/chart"
	"finboard/internal/view"
)

// TimeIntervals is the hourly transaction count bar chart.
type TimeIntervals struct {
	chart chart.Chart
}

func NewTimeIntervals(doc *view.Document, a view.Anchors, lib chart.Library, buckets []aggregate.HourBucket) (*TimeIntervals, error) {
	canvas, err := doc.Require(a.TimeIntervalCanvas)
	if err != nil {
		return nil, err
	}
	c, err := lib.New(canvas, timeIntervalsConfig(buckets))
	if err != nil {
		return nil, fmt.Errorf("time interval chart: %w", err)
	}
	return &TimeIntervals{chart: c}, nil
}

func (w *TimeIntervals) Chart() chart.Chart { return w.chart }

// Flows is the inflow/outflow doughnut.
type Flows struct {
	chart chart.Chart
}

func NewFlows(doc *view.Document, a view.Anchors, lib chart.Library, split aggregate.FlowSplit) (*Flows, error) {
	canvas, err := doc.Require(a.FlowsCanvas)
	if err != nil {
		return nil, err
	}
	c, err := lib.New(canvas, flowsConfig(split))
	if err != nil {
		return nil, fmt.Errorf("flows chart: %w", err)
	}
	return &Flows{chart: c}, nil
}

func (w *Flows) Chart() chart.Chart { return w.chart }
