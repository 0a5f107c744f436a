// Package aggregate reshapes a dashboard payload into per-widget view models.
//
// Every function here is pure: inputs are never modified and the returned
// values are built fresh on each call.
package aggregate

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/goodsign/monday"
	"github.com/shopspring/decimal"

	"finboard/internal/core"
)

// Flow labels, in chart order.
const (
	LabelInflows  = "Inflows"
	LabelOutflows = "Outflows"
)

type (
	// Series is a date-sorted credit or debit series.
	Series struct {
		Dates   []string
		Amounts []decimal.Decimal
	}

	HourBucket struct {
		Range string
		Count int
	}

	MonthEntry struct {
		Label  string // long month name in the configured locale
		Date   time.Time
		Amount decimal.Decimal
	}

	YearGroup struct {
		Year   string
		Months []MonthEntry
	}

	FlowSplit struct {
		Labels []string
		Data   []decimal.Decimal
	}

	SavingsCard struct {
		Category string
		Amount   string
		Value    decimal.Decimal
	}

	// Options controls presentation details that depend on the viewer.
	Options struct {
		Locale   monday.Locale
		Currency string
	}

	// Views is the full set of view models for one render pass.
	Views struct {
		Credit    Series
		Debit     Series
		Intervals []HourBucket
		Years     []YearGroup
		Flows     FlowSplit
		Savings   []SavingsCard
		Alerts    []string
		Outliers  []core.Outlier
	}
)

// DefaultOptions renders English month names and rupee amounts.
func DefaultOptions() Options {
	return Options{Locale: monday.LocaleEnUS, Currency: core.DefaultCurrency}
}

// Build runs every transform over the payload once.
func Build(p core.Payload, opts Options) (Views, error) {
	if opts.Locale == "" {
		opts.Locale = monday.LocaleEnUS
	}
	if opts.Currency == "" {
		opts.Currency = core.DefaultCurrency
	}

	intervals, err := BucketHours(p.TopTimeIntervals)
	if err != nil {
		return Views{}, err
	}
	years, err := GroupByYear(p.MonthlyComparison, opts.Locale)
	if err != nil {
		return Views{}, err
	}

	return Views{
		Credit:    SortSeries(p.CreditChartData),
		Debit:     SortSeries(p.DebitChartData),
		Intervals: intervals,
		Years:     years,
		Flows:     SplitFlows(p.Inflows, p.Outflows),
		Savings:   SavingsCards(p.SavingsSuggestions, opts.Currency),
		Alerts:    AlertItems(p.Alerts),
		Outliers:  append([]core.Outlier(nil), p.Outliers...),
	}, nil
}

// SortSeries orders (date, amount) pairs by ISO date, ascending.
// The sort is stable, so equal dates keep their payload order.
func SortSeries(c core.ChartData) Series {
	n := len(c.Dates)
	if len(c.Amounts) < n {
		n = len(c.Amounts)
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return c.Dates[idx[a]] < c.Dates[idx[b]]
	})

	s := Series{
		Dates:   make([]string, n),
		Amounts: make([]decimal.Decimal, n),
	}
	for i, j := range idx {
		s.Dates[i] = c.Dates[j]
		s.Amounts[i] = c.Amounts[j]
	}
	return s
}

// Len reports the number of points in the series.
func (s Series) Len() int { return len(s.Dates) }

// BucketHours labels each record with the hour-long range it falls in.
// Duplicated hours are not merged and input order is kept.
func BucketHours(in []core.TimeInterval) ([]HourBucket, error) {
	out := make([]HourBucket, 0, len(in))
	for i, ti := range in {
		hour, err := core.ParseHour(ti.Time)
		if err != nil {
			return nil, fmt.Errorf("time interval %d: %w", i, err)
		}
		out = append(out, HourBucket{
			Range: HourRange(hour),
			Count: ti.TransactionCount,
		})
	}
	return out, nil
}

// HourRange formats "{h}:00 - {h+1}:00". Hour 23 yields "23:00 - 24:00".
func HourRange(hour int) string {
	return strconv.Itoa(hour) + ":00 - " + strconv.Itoa(hour+1) + ":00"
}

// GroupByYear partitions monthly records by calendar year. Groups are ordered
// by year; records within a group keep their payload order.
func GroupByYear(in []core.MonthlyAmount, locale monday.Locale) ([]YearGroup, error) {
	byYear := map[string]*YearGroup{}
	var years []string
	for i, m := range in {
		t, err := core.ParseDate(m.Date)
		if err != nil {
			return nil, fmt.Errorf("monthly record %d: %w", i, err)
		}
		year := strconv.Itoa(t.Year())
		g, ok := byYear[year]
		if !ok {
			g = &YearGroup{Year: year}
			byYear[year] = g
			years = append(years, year)
		}
		g.Months = append(g.Months, MonthEntry{
			Label:  MonthLabel(t, locale),
			Date:   t,
			Amount: m.Amount,
		})
	}

	sort.Strings(years)
	out := make([]YearGroup, 0, len(years))
	for _, y := range years {
		out = append(out, *byYear[y])
	}
	return out, nil
}

// MonthLabel returns the long month name of t in the given locale.
func MonthLabel(t time.Time, locale monday.Locale) string {
	return monday.Format(t, "January", locale)
}

// YearLabels lists the group years in tab order.
func YearLabels(groups []YearGroup) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Year
	}
	return out
}

// SplitFlows builds the two-slice inflow/outflow proportion.
func SplitFlows(inflows, outflows decimal.Decimal) FlowSplit {
	return FlowSplit{
		Labels: []string{LabelInflows, LabelOutflows},
		Data:   []decimal.Decimal{inflows, outflows},
	}
}

// SavingsCards turns suggestions into display cards, in payload order.
func SavingsCards(s core.Suggestions, currency string) []SavingsCard {
	out := make([]SavingsCard, 0, len(s))
	for _, sg := range s {
		out = append(out, SavingsCard{
			Category: sg.Category,
			Amount:   core.FormatAmount(sg.Amount, currency),
			Value:    sg.Amount,
		})
	}
	return out
}

// AlertItems copies the alert messages.
func AlertItems(alerts []string) []string {
	return append([]string{}, alerts...)
}
