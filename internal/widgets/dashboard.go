// Package widgets draws the dashboard widgets into a host page and routes tab
// clicks back to the widget that owns them.
package widgets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"finboard/internal/aggregate"
	"finboard/internal/chart"
	"finboard/internal/core"
	"finboard/internal/fetch"
	"finboard/internal/log"
	"finboard/internal/view"
)

// Tab groups addressable through Click.
const (
	GroupTransactions = "transactions"
	GroupYear         = "year"
)

// Widget names used in logs and errors.
const (
	WidgetSavings       = "savings"
	WidgetAlerts        = "alerts"
	WidgetTransactions  = "transactions"
	WidgetYearly        = "yearly"
	WidgetTimeIntervals = "time_intervals"
	WidgetFlows         = "flows"
)

// Attributes carried by every tab control so the page script can post clicks.
const (
	attrTabGroup  = "data-tab-group"
	attrTabOption = "data-tab-option"
)

var (
	ErrUnknownGroup = errors.New("unknown tab group")
	ErrLoad         = errors.New("dashboard data unavailable")
	ErrNotLoaded    = errors.New("dashboard not loaded")
)

// Config wires a dashboard to its collaborators. Zero fields get defaults.
type Config struct {
	Anchors view.Anchors
	Charts  chart.Library
	Logger  *log.Logger
	View    aggregate.Options
}

// Fragment is a re-painted panel, ready to replace the element with the same id.
type Fragment struct {
	ID      string
	HTML    string
	Changed bool
}

// Dashboard owns one host page and every widget drawn into it. All methods
// are serialised by a single mutex.
type Dashboard struct {
	mu      sync.Mutex
	doc     *view.Document
	anchors view.Anchors
	charts  chart.Library
	logger  *log.Logger
	opts    aggregate.Options

	loaded bool
	views  aggregate.Views
	err    error

	savings      *Savings
	alerts       *Alerts
	transactions *Transactions
	yearly       *Yearly
	intervals    *TimeIntervals
	flows        *Flows
}

func NewDashboard(doc *view.Document, cfg Config) *Dashboard {
	d := &Dashboard{
		doc:     doc,
		anchors: view.DefaultAnchors().Merge(cfg.Anchors),
		charts:  cfg.Charts,
		logger:  cfg.Logger,
		opts:    cfg.View,
	}
	if d.charts == nil {
		d.charts = chart.ChartJS{}
	}
	if d.logger == nil {
		d.logger = log.Discard()
	}
	d.logger = d.logger.WithComponent(log.ComponentWidgets)
	return d
}

// Load fetches the payload and draws every widget. A fetch failure is logged
// once and leaves the page untouched. A widget that fails to draw is logged
// and skipped; see Err.
func (d *Dashboard) Load(ctx context.Context, src fetch.Source) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := src.Load(ctx)
	if err != nil {
		d.logger.ErrorContext(ctx, "Failed to load dashboard data", log.NewFields().
			WithOperation(log.OpFetch).
			WithErrorType(errorType(err)).
			WithError(err).
			ToSlice()...)
		return fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return d.build(ctx, p)
}

// Show draws an already decoded payload.
func (d *Dashboard) Show(ctx context.Context, p core.Payload) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.build(ctx, p)
}

func (d *Dashboard) build(ctx context.Context, p core.Payload) error {
	views, err := aggregate.Build(p, d.opts)
	if err != nil {
		d.logger.ErrorContext(ctx, "Failed to build dashboard views", log.NewFields().
			WithOperation(log.OpBuild).
			WithErrorType(log.ErrorTypeValidation).
			WithError(err).
			ToSlice()...)
		return fmt.Errorf("%w: %w", ErrLoad, err)
	}
	d.views = views
	d.loaded = true

	var errs []error
	step := func(name string, fn func() error) {
		if err := fn(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			d.logger.ErrorContext(ctx, "Failed to render widget",
				log.FieldWidget, name,
				log.FieldOperation, log.OpRender,
				log.FieldError, err.Error())
		}
	}

	step(WidgetSavings, func() (err error) {
		d.savings, err = NewSavings(d.doc, d.anchors, views.Savings)
		return err
	})
	step(WidgetAlerts, func() (err error) {
		d.alerts, err = NewAlerts(d.doc, d.anchors, views.Alerts)
		return err
	})
	step(WidgetTransactions, func() (err error) {
		d.transactions, err = NewTransactions(d.doc, d.anchors, d.charts, views.Credit, views.Debit)
		return err
	})
	step(WidgetYearly, func() (err error) {
		d.yearly, err = NewYearly(d.doc, d.anchors, d.charts, views.Years)
		return err
	})
	step(WidgetTimeIntervals, func() (err error) {
		d.intervals, err = NewTimeIntervals(d.doc, d.anchors, d.charts, views.Intervals)
		return err
	})
	step(WidgetFlows, func() (err error) {
		d.flows, err = NewFlows(d.doc, d.anchors, d.charts, views.Flows)
		return err
	})

	d.err = errors.Join(errs...)
	d.logger.DebugContext(ctx, "Dashboard rendered",
		log.FieldOperation, log.OpRender,
		log.FieldYears, len(views.Years),
		"widget_errors", len(errs))
	return nil
}

// Click selects option in the named tab group and returns the panel that
// contains the group, rendered after the change.
func (d *Dashboard) Click(group, option string) (Fragment, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.loaded {
		return Fragment{}, ErrNotLoaded
	}

	var (
		changed bool
		err     error
		panelID string
	)
	switch {
	case group == GroupTransactions && d.transactions != nil:
		panelID = d.anchors.TransactionsPanel
		changed, err = d.transactions.Select(option)
	case group == GroupYear && d.yearly != nil:
		panelID = d.anchors.YearlyPanel
		changed, err = d.yearly.Select(option)
	default:
		return Fragment{}, fmt.Errorf("%w: %q", ErrUnknownGroup, group)
	}
	if err != nil {
		return Fragment{}, err
	}

	panel, err := d.doc.Require(panelID)
	if err != nil {
		return Fragment{}, err
	}
	html, err := panel.HTML()
	if err != nil {
		return Fragment{}, fmt.Errorf("render panel: %w", err)
	}
	return Fragment{ID: panelID, HTML: html, Changed: changed}, nil
}

// Render writes the whole page in its current state.
func (d *Dashboard) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Render(w)
}

// Views returns the view models of the last successful load.
func (d *Dashboard) Views() (aggregate.Views, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.views, d.loaded
}

// Err returns the joined errors of widgets that could not be drawn.
func (d *Dashboard) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

// State reports the active option of each tab group.
func (d *Dashboard) State() map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	state := map[string]string{}
	if d.transactions != nil {
		state[GroupTransactions] = d.transactions.Active()
	}
	if d.yearly != nil && d.yearly.Active() != "" {
		state[GroupYear] = d.yearly.Active()
	}
	return state
}

func errorType(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return log.ErrorTypeTimeout
	case errors.Is(err, core.ErrMalformedPayload):
		return log.ErrorTypeValidation
	default:
		return log.ErrorTypeNetwork
	}
}
