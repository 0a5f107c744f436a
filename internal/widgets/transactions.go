package widgets

import (
	"fmt"

	"finboard/internal/aggregate"
	"finboard/internal/chart"
	"finboard/internal/tabs"
	"finboard/internal/view"
)

// Transaction types, matching the data-chart attribute of the tabs.
const (
	Credit = "credit"
	Debit  = "debit"
)

// Transactions is the combined credit/debit line chart. Both series share a
// single chart instance; switching type rewrites its data and redraws.
type Transactions struct {
	chart  chart.Chart
	series map[string]aggregate.Series
	group  *tabs.Group
}

func NewTransactions(doc *view.Document, a view.Anchors, lib chart.Library, credit, debit aggregate.Series) (*Transactions, error) {
	canvas, err := doc.Require(a.TransactionsCanvas)
	if err != nil {
		return nil, err
	}

	controls := map[string]*view.Element{}
	for _, el := range doc.FindByClass(a.TransactionTabClass) {
		kind := el.Attr("data-chart")
		if kind != Credit && kind != Debit {
			continue
		}
		if _, seen := controls[kind]; !seen {
			controls[kind] = el
		}
	}
	var options []tabs.Option
	for _, kind := range []string{Credit, Debit} {
		el, ok := controls[kind]
		if !ok {
			return nil, fmt.Errorf("%w: .%s[data-chart=%s]", view.ErrAnchorNotFound, a.TransactionTabClass, kind)
		}
		el.SetAttr(attrTabGroup, GroupTransactions)
		el.SetAttr(attrTabOption, kind)
		options = append(options, tabs.Option{Name: kind, Control: view.ClassMarker{El: el}})
	}

	group, err := tabs.New(GroupTransactions, options, Credit, nil)
	if err != nil {
		return nil, err
	}
	c, err := lib.New(canvas, transactionsConfig(Credit, credit))
	if err != nil {
		return nil, fmt.Errorf("transactions chart: %w", err)
	}
	return &Transactions{
		chart:  c,
		series: map[string]aggregate.Series{Credit: credit, Debit: debit},
		group:  group,
	}, nil
}

// Select switches the chart to the given type. Selecting the shown type does
// nothing and reports false.
func (t *Transactions) Select(kind string) (bool, error) {
	changed, err := t.group.Select(kind)
	if err != nil || !changed {
		return changed, err
	}
	s := t.series[kind]
	cfg := t.chart.Config()
	cfg.Data.Labels = append([]string{}, s.Dates...)
	cfg.Data.Datasets[0] = transactionDataset(kind, s)
	return true, t.chart.Update()
}

func (t *Transactions) Active() string { return t.group.Active() }

func (t *Transactions) Chart() chart.Chart { return t.chart }
