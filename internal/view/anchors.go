package view

import (
	"errors"
	"fmt"
)

// Anchors names every host page element the widgets draw into.
// The zero value of a field means "use the default" when merged.
type Anchors struct {
	SavingsList         string `json:"savings_list" yaml:"savings_list" toml:"savings_list"`
	AlertsList          string `json:"alerts_list" yaml:"alerts_list" toml:"alerts_list"`
	TransactionsPanel   string `json:"transactions_panel" yaml:"transactions_panel" toml:"transactions_panel"`
	TransactionsCanvas  string `json:"transactions_canvas" yaml:"transactions_canvas" toml:"transactions_canvas"`
	TransactionTabClass string `json:"transaction_tab_class" yaml:"transaction_tab_class" toml:"transaction_tab_class"`
	TimeIntervalCanvas  string `json:"time_interval_canvas" yaml:"time_interval_canvas" toml:"time_interval_canvas"`
	YearlyPanel         string `json:"yearly_panel" yaml:"yearly_panel" toml:"yearly_panel"`
	YearTabs            string `json:"year_tabs" yaml:"year_tabs" toml:"year_tabs"`
	YearlyCharts        string `json:"yearly_charts" yaml:"yearly_charts" toml:"yearly_charts"`
	FlowsCanvas         string `json:"flows_canvas" yaml:"flows_canvas" toml:"flows_canvas"`
}

// DefaultAnchors matches web/templates/dashboard.html.
func DefaultAnchors() Anchors {
	return Anchors{
		SavingsList:         "savings-suggestions-list",
		AlertsList:          "spending-alerts-list",
		TransactionsPanel:   "combined-transactions-panel",
		TransactionsCanvas:  "combined-transactions-chart",
		TransactionTabClass: "chart-tab",
		TimeIntervalCanvas:  "timeIntervalChart",
		YearlyPanel:         "yearly-comparison-panel",
		YearTabs:            "yearTabs",
		YearlyCharts:        "yearlyChartsContainer",
		FlowsCanvas:         "inflow-outflow-chart",
	}
}

// Merge returns a copy of a with every non-empty field of o applied.
func (a Anchors) Merge(o Anchors) Anchors {
	set := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	set(&a.SavingsList, o.SavingsList)
	set(&a.AlertsList, o.AlertsList)
	set(&a.TransactionsPanel, o.TransactionsPanel)
	set(&a.TransactionsCanvas, o.TransactionsCanvas)
	set(&a.TransactionTabClass, o.TransactionTabClass)
	set(&a.TimeIntervalCanvas, o.TimeIntervalCanvas)
	set(&a.YearlyPanel, o.YearlyPanel)
	set(&a.YearTabs, o.YearTabs)
	set(&a.YearlyCharts, o.YearlyCharts)
	set(&a.FlowsCanvas, o.FlowsCanvas)
	return a
}

// ids lists the id-based anchors by field name.
func (a Anchors) ids() [][2]string {
	return [][2]string{
		{"savings_list", a.SavingsList},
		{"alerts_list", a.AlertsList},
		{"transactions_panel", a.TransactionsPanel},
		{"transactions_canvas", a.TransactionsCanvas},
		{"time_interval_canvas", a.TimeIntervalCanvas},
		{"yearly_panel", a.YearlyPanel},
		{"year_tabs", a.YearTabs},
		{"yearly_charts", a.YearlyCharts},
		{"flows_canvas", a.FlowsCanvas},
	}
}

// Validate checks that no anchor is blank.
func (a Anchors) Validate() error {
	var errs []error
	for _, kv := range a.ids() {
		if kv[1] == "" {
			errs = append(errs, fmt.Errorf("anchor %s is empty", kv[0]))
		}
	}
	if a.TransactionTabClass == "" {
		errs = append(errs, errors.New("anchor transaction_tab_class is empty"))
	}
	return errors.Join(errs...)
}

// Check verifies the document provides every anchor.
func (a Anchors) Check(doc *Document) error {
	var errs []error
	for _, kv := range a.ids() {
		if _, err := doc.Require(kv[1]); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", kv[0], err))
		}
	}
	if len(doc.FindByClass(a.TransactionTabClass)) == 0 {
		errs = append(errs, fmt.Errorf("transaction_tab_class: %w: .%s", ErrAnchorNotFound, a.TransactionTabClass))
	}
	return errors.Join(errs...)
}
