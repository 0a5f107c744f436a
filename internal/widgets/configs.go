package widgets

import (
	"strings"

	"finboard/internal/aggregate"
	"finboard/internal/chart"
	"finboard/internal/core"
)

// Palette. Credit and inflows share the teal family, debit and outflows the red one.
const (
	tealLine  = "rgba(75, 192, 192, 1)"
	tealFill  = "rgba(75, 192, 192, 0.1)"
	tealBar   = "rgba(75, 192, 192, 0.6)"
	redLine   = "rgba(255, 99, 132, 1)"
	redFill   = "rgba(255, 99, 132, 0.1)"
	redSlice  = "rgba(255, 99, 132, 0.6)"
	blueBar   = "rgba(54, 162, 235, 0.6)"
	blueLine  = "rgba(54, 162, 235, 1)"
	tealSlice = tealBar
)

// transactionDataset is the single dataset of the credit/debit chart.
func transactionDataset(kind string, s aggregate.Series) chart.Dataset {
	border, fill := tealLine, tealFill
	if kind == Debit {
		border, fill = redLine, redFill
	}
	return chart.Dataset{
		Label:           strings.ToUpper(kind[:1]) + kind[1:] + " Transactions",
		Data:            core.Floats(s.Amounts),
		BorderColor:     chart.Colors{border},
		BackgroundColor: chart.Colors{fill},
		Fill:            true,
		Tension:         0.4,
		PointRadius:     4,
	}
}

func transactionsConfig(kind string, s aggregate.Series) chart.Config {
	return chart.Config{
		Type: chart.TypeLine,
		Data: chart.Data{
			Labels:   append([]string{}, s.Dates...),
			Datasets: []chart.Dataset{transactionDataset(kind, s)},
		},
		Options: chart.Options{
			Responsive: true,
			Scales: map[string]chart.Axis{
				"x": {Grid: &chart.Grid{Display: false}, Ticks: chart.Upright()},
				"y": {BeginAtZero: true},
			},
			Plugins: &chart.Plugins{
				Tooltip: &chart.Tooltip{Mode: "index", Intersect: false},
			},
		},
	}
}

func timeIntervalsConfig(buckets []aggregate.HourBucket) chart.Config {
	labels := make([]string, len(buckets))
	counts := make([]float64, len(buckets))
	for i, b := range buckets {
		labels[i] = b.Range
		counts[i] = float64(b.Count)
	}
	return chart.Config{
		Type: chart.TypeBar,
		Data: chart.Data{
			Labels: labels,
			Datasets: []chart.Dataset{{
				Label:           "Transactions",
				Data:            counts,
				BackgroundColor: chart.Colors{blueBar},
				BorderColor:     chart.Colors{blueLine},
				BorderWidth:     1,
				BorderRadius:    5,
			}},
		},
		Options: chart.Options{
			Responsive: true,
			Plugins:    &chart.Plugins{Legend: &chart.Legend{Display: chart.Hidden()}},
			Scales: map[string]chart.Axis{
				"x": {Grid: &chart.Grid{Display: true}, Ticks: chart.Upright()},
				"y": {BeginAtZero: true, Ticks: &chart.Ticks{StepSize: 1}},
			},
		},
	}
}

func yearlyConfig(g aggregate.YearGroup) chart.Config {
	labels := make([]string, len(g.Months))
	amounts := make([]float64, len(g.Months))
	for i, m := range g.Months {
		labels[i] = m.Label
		amounts[i] = core.Float(m.Amount)
	}
	return chart.Config{
		Type: chart.TypeBar,
		Data: chart.Data{
			Labels: labels,
			Datasets: []chart.Dataset{{
				Label:           "Monthly Spending " + g.Year,
				Data:            amounts,
				BackgroundColor: chart.Colors{tealBar},
				BorderColor:     chart.Colors{tealLine},
				BorderWidth:     1,
			}},
		},
		Options: chart.Options{
			Responsive: true,
			Scales:     map[string]chart.Axis{"y": {BeginAtZero: true}},
		},
	}
}

func flowsConfig(f aggregate.FlowSplit) chart.Config {
	return chart.Config{
		Type: chart.TypeDoughnut,
		Data: chart.Data{
			Labels: append([]string{}, f.Labels...),
			Datasets: []chart.Dataset{{
				Data:            core.Floats(f.Data),
				BackgroundColor: chart.Colors{tealSlice, redSlice},
			}},
		},
		Options: chart.Options{
			Responsive:          true,
			MaintainAspectRatio: true,
			Plugins: &chart.Plugins{Legend: &chart.Legend{
				Position: "right",
				Labels:   &chart.LegendLabels{BoxWidth: 12, Padding: 10},
			}},
		},
	}
}
