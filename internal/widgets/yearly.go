package widgets

import (
	"fmt"

	"finboard/internal/aggregate"
	"finboard/internal/chart"
	"finboard/internal/tabs"
	"finboard/internal/view"
)

const (
	classYearTab     = "year-tab"
	classYearlyChart = "yearly-chart"
)

// Yearly renders one tab and one bar chart per year; only the selected
// year's chart is visible.
type Yearly struct {
	charts map[string]chart.Chart
	group  *tabs.Group
}

// NewYearly rebuilds the tab strip and the chart container from scratch. With
// no years both containers are left empty and there is nothing to select.
func NewYearly(doc *view.Document, a view.Anchors, lib chart.Library, years []aggregate.YearGroup) (*Yearly, error) {
	strip, err := doc.Require(a.YearTabs)
	if err != nil {
		return nil, err
	}
	container, err := doc.Require(a.YearlyCharts)
	if err != nil {
		return nil, err
	}
	strip.Clear()
	container.Clear()

	y := &Yearly{charts: make(map[string]chart.Chart, len(years))}
	options := make([]tabs.Option, 0, len(years))
	for _, g := range years {
		btn := strip.Append("button", classYearTab)
		btn.SetAttr("type", "button")
		btn.SetAttr(attrTabGroup, GroupYear)
		btn.SetAttr(attrTabOption, g.Year)
		btn.SetText(g.Year)

		panel := container.Append("div", classYearlyChart)
		panel.SetAttr("data-year", g.Year)
		canvas := panel.Append("canvas")
		canvas.SetAttr("id", yearlyCanvasID(g.Year))

		c, err := lib.New(canvas, yearlyConfig(g))
		if err != nil {
			return nil, fmt.Errorf("yearly chart %s: %w", g.Year, err)
		}
		y.charts[g.Year] = c
		options = append(options, tabs.Option{
			Name:    g.Year,
			Control: view.ClassMarker{El: btn},
			Panel:   view.DisplayMarker{El: panel},
		})
	}

	if len(options) == 0 {
		return y, nil
	}
	y.group, err = tabs.New(GroupYear, options, "", nil)
	if err != nil {
		return nil, err
	}
	return y, nil
}

// yearlyCanvasID keeps a year's canvas addressable across panel swaps, so the
// page can hand the live chart over to the replacement markup.
func yearlyCanvasID(year string) string { return "yearly-chart-" + year }

// Select shows the given year.
func (y *Yearly) Select(year string) (bool, error) {
	if y.group == nil {
		return false, fmt.Errorf("%s: %w: %q", GroupYear, tabs.ErrUnknownOption, year)
	}
	return y.group.Select(year)
}

// Active returns the visible year, or "" when there are no years.
func (y *Yearly) Active() string {
	if y.group == nil {
		return ""
	}
	return y.group.Active()
}

// Years lists the tabs in display order.
func (y *Yearly) Years() []string {
	if y.group == nil {
		return nil
	}
	return y.group.Options()
}

func (y *Yearly) Chart(year string) (chart.Chart, bool) {
	c, ok := y.charts[year]
	return c, ok
}
