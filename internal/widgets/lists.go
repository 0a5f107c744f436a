package widgets

import (
	"finboard/internal/aggregate"
	"finboard/internal/view"
)

// Savings is the savings-suggestion card list.
type Savings struct {
	list *view.Element
}

func NewSavings(doc *view.Document, a view.Anchors, cards []aggregate.SavingsCard) (*Savings, error) {
	list, err := doc.Require(a.SavingsList)
	if err != nil {
		return nil, err
	}
	s := &Savings{list: list}
	s.Update(cards)
	return s, nil
}

// Update replaces every card.
func (s *Savings) Update(cards []aggregate.SavingsCard) {
	s.list.Clear()
	for _, c := range cards {
		card := s.list.Append("div", "metric-card")
		header := card.Append("div", "metric-header")
		header.Append("h4").SetText(c.Category)
		header.Append("div", "metric-icon").SetText("💰")
		card.Append("div", "metric-value").SetText(c.Amount)
		card.Append("div", "metric-label").SetText("Potential Savings")
	}
}

// Alerts is the spending-alert list.
type Alerts struct {
	list *view.Element
}

func NewAlerts(doc *view.Document, a view.Anchors, alerts []string) (*Alerts, error) {
	list, err := doc.Require(a.AlertsList)
	if err != nil {
		return nil, err
	}
	w := &Alerts{list: list}
	w.Update(alerts)
	return w, nil
}

// Update replaces every alert.
func (w *Alerts) Update(alerts []string) {
	w.list.Clear()
	for _, msg := range alerts {
		item := w.list.Append("div", "alert-metric")
		header := item.Append("div", "alert-header")
		header.Append("div", "alert-icon").SetText("⚠️")
		header.Append("div", "alert-timestamp").SetText("Now")
		item.Append("div", "alert-message").SetText(msg)
	}
}
