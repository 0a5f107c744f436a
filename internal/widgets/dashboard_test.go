package widgets

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"finboard/internal/chart"
	"finboard/internal/core"
	"finboard/internal/fetch"
	"finboard/internal/log"
	"finboard/internal/log/logtest"
	"finboard/internal/tabs"
	"finboard/internal/view"
)

const hostPage = `<!DOCTYPE html><html><head><title>finboard</title></head><body>
<div id="savings-suggestions-list"><p>stale</p></div>
<div id="spending-alerts-list"><p>stale</p></div>
<section id="combined-transactions-panel">
  <button class="chart-tab active" data-chart="credit">Credit</button>
  <button class="chart-tab" data-chart="debit">Debit</button>
  <canvas id="combined-transactions-chart"></canvas>
</section>
<canvas id="timeIntervalChart"></canvas>
<section id="yearly-comparison-panel">
  <div id="yearTabs"><button>old</button></div>
  <div id="yearlyChartsContainer"><div>old</div></div>
</section>
<canvas id="inflow-outflow-chart"></canvas>
</body></html>`

const payloadJSON = `{
	"savings_suggestions": {"Food": 120.5, "Rent": 300},
	"alerts": ["High spending detected in Food: 1205"],
	"credit_chart_data": {"dates": ["2024-02-01", "2024-01-15"], "amounts": [200, 100]},
	"debit_chart_data": {"dates": ["2024-01-20", "2023-12-31"], "amounts": [50, 75]},
	"monthly_comparison": [
		{"date": "2024-01-01", "amount": 150},
		{"date": "2023-03-01", "amount": 90},
		{"date": "2023-01-01", "amount": 60}
	],
	"top_time_intervals": [{"time": "9:45", "transaction_count": 3}, {"time": "23:10", "transaction_count": 1}],
	"inflows": 1000,
	"outflows": 400
}`

// countingLib records every chart construction.
type countingLib struct {
	built []chart.Chart
}

func (l *countingLib) New(canvas *view.Element, cfg chart.Config) (chart.Chart, error) {
	c, err := chart.ChartJS{}.New(canvas, cfg)
	if err != nil {
		return nil, err
	}
	l.built = append(l.built, c)
	return c, nil
}

type fixture struct {
	doc  *view.Document
	lib  *countingLib
	logs *logtest.Recorder
	dash *Dashboard
}

func newFixture(t *testing.T, page string) *fixture {
	t.Helper()
	doc, err := view.ParseString(page)
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}
	f := &fixture{doc: doc, lib: &countingLib{}, logs: logtest.NewRecorder()}
	f.dash = NewDashboard(doc, Config{Charts: f.lib, Logger: f.logs.Logger(log.ComponentApp)})
	return f
}

func payload(t *testing.T, body string) fetch.Source {
	t.Helper()
	p, err := core.DecodePayload(strings.NewReader(body))
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	return fetch.SourceFunc(func(context.Context) (core.Payload, error) { return p, nil })
}

func (f *fixture) load(t *testing.T) {
	t.Helper()
	if err := f.dash.Load(context.Background(), payload(t, payloadJSON)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := f.dash.Err(); err != nil {
		t.Fatalf("widget errors: %v", err)
	}
}

func (f *fixture) byID(t *testing.T, id string) *view.Element {
	t.Helper()
	el, ok := f.doc.ByID(id)
	if !ok {
		t.Fatalf("#%s missing", id)
	}
	return el
}

func TestLoad_FetchFailureBuildsNothing(t *testing.T) {
	f := newFixture(t, hostPage)
	failing := fetch.SourceFunc(func(context.Context) (core.Payload, error) {
		return core.Payload{}, errors.New("connection refused")
	})

	err := f.dash.Load(context.Background(), failing)
	if !errors.Is(err, ErrLoad) {
		t.Fatalf("expected ErrLoad, got %v", err)
	}
	if len(f.lib.built) != 0 {
		t.Fatalf("charts constructed = %d, want 0", len(f.lib.built))
	}
	if n := f.logs.Count(slog.LevelError); n != 1 {
		t.Fatalf("error records = %d, want exactly 1", n)
	}
	rec := f.logs.Records()[0]
	if rec.Attrs[log.FieldComponent] != log.ComponentWidgets || rec.Attrs[log.FieldOperation] != log.OpFetch {
		t.Fatalf("record attrs = %v", rec.Attrs)
	}
	if got := f.byID(t, "savings-suggestions-list").Text(); got != "stale" {
		t.Fatalf("page must stay untouched, savings list = %q", got)
	}
	if _, err := f.dash.Click(GroupTransactions, Debit); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}
}

func TestLoad_RendersEveryWidget(t *testing.T) {
	f := newFixture(t, hostPage)
	f.load(t)

	// transactions + intervals + flows + one per year (2023, 2024)
	if len(f.lib.built) != 5 {
		t.Fatalf("charts constructed = %d, want 5", len(f.lib.built))
	}
	state := f.dash.State()
	if state[GroupTransactions] != Credit || state[GroupYear] != "2023" {
		t.Fatalf("initial state = %v", state)
	}
	if f.logs.Count(slog.LevelError) != 0 {
		t.Fatalf("unexpected error logs: %v", f.logs.Records())
	}
}

func TestSavingsCards(t *testing.T) {
	f := newFixture(t, hostPage)
	f.load(t)

	cards := f.byID(t, "savings-suggestions-list").Children()
	if len(cards) != 2 {
		t.Fatalf("cards = %d, want 2", len(cards))
	}
	first, err := cards[0].HTML()
	if err != nil {
		t.Fatal(err)
	}
	want := `<div class="metric-card"><div class="metric-header"><h4>Food</h4><div class="metric-icon">💰</div></div>` +
		`<div class="metric-value">₹120.50</div><div class="metric-label">Potential Savings</div></div>`
	if first != want {
		t.Fatalf("card markup\n got %s\nwant %s", first, want)
	}
	if !strings.Contains(cards[1].Text(), "Rent") {
		t.Fatal("cards must follow payload order")
	}

	empty := newFixture(t, hostPage)
	body := strings.Replace(payloadJSON, `{"Food": 120.5, "Rent": 300}`, `{}`, 1)
	if err := empty.dash.Load(context.Background(), payload(t, body)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if n := len(empty.byID(t, "savings-suggestions-list").Children()); n != 0 {
		t.Fatalf("no suggestions should leave an empty container, got %d children", n)
	}
}

func TestAlerts(t *testing.T) {
	f := newFixture(t, hostPage)
	f.load(t)

	items := f.byID(t, "spending-alerts-list").FindByClass("alert-message")
	if len(items) != 1 || items[0].Text() != "High spending detected in Food: 1205" {
		t.Fatalf("alerts = %v", items)
	}

	empty := newFixture(t, hostPage)
	body := strings.Replace(payloadJSON, `["High spending detected in Food: 1205"]`, `[]`, 1)
	if err := empty.dash.Load(context.Background(), payload(t, body)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if n := len(empty.byID(t, "spending-alerts-list").Children()); n != 0 {
		t.Fatalf("empty alerts should leave an empty container, got %d children", n)
	}
}

func TestTransactions_SwitchReusesChart(t *testing.T) {
	f := newFixture(t, hostPage)
	f.load(t)
	canvas := f.byID(t, "combined-transactions-chart")
	tx := f.dash.transactions
	cfg := tx.Chart().Config()

	if strings.Join(cfg.Data.Labels, ",") != "2024-01-15,2024-02-01" {
		t.Fatalf("credit labels = %v", cfg.Data.Labels)
	}
	if got := cfg.Data.Datasets[0].Data; got[0] != 100 || got[1] != 200 {
		t.Fatalf("credit amounts must follow their dates, got %v", got)
	}

	frag, err := f.dash.Click(GroupTransactions, Debit)
	if err != nil {
		t.Fatalf("Click: %v", err)
	}
	if !frag.Changed || frag.ID != "combined-transactions-panel" {
		t.Fatalf("fragment = %+v", frag)
	}
	if len(f.lib.built) != 5 {
		t.Fatal("switching type must not construct a new chart")
	}
	ds := tx.Chart().Config().Data.Datasets[0]
	if ds.Label != "Debit Transactions" || ds.BorderColor[0] != redLine || ds.BackgroundColor[0] != redFill {
		t.Fatalf("debit dataset = %+v", ds)
	}
	if strings.Join(tx.Chart().Config().Data.Labels, ",") != "2023-12-31,2024-01-20" {
		t.Fatalf("debit labels = %v", tx.Chart().Config().Data.Labels)
	}
	if canvas.Attr(chart.AttrRevision) != "2" {
		t.Fatalf("revision = %s, want one redraw", canvas.Attr(chart.AttrRevision))
	}
	if !strings.Contains(frag.HTML, "Debit Transactions") {
		t.Fatal("fragment should carry the redrawn chart config")
	}

	tabsEls := f.doc.FindByClass("chart-tab")
	if tabsEls[0].HasClass(view.ActiveClass) || !tabsEls[1].HasClass(view.ActiveClass) {
		t.Fatal("active class did not move to the debit tab")
	}

	frag, err = f.dash.Click(GroupTransactions, Debit)
	if err != nil || frag.Changed {
		t.Fatalf("re-click = %+v, %v", frag, err)
	}
	if canvas.Attr(chart.AttrRevision) != "2" {
		t.Fatal("re-clicking the active tab must not redraw")
	}
}

func TestYearly(t *testing.T) {
	f := newFixture(t, hostPage)
	f.load(t)

	if got := strings.Join(f.dash.yearly.Years(), ","); got != "2023,2024" {
		t.Fatalf("years = %s", got)
	}
	strip := f.byID(t, "yearTabs")
	buttons := strip.Children()
	if len(buttons) != 2 || buttons[0].Text() != "2023" {
		t.Fatalf("tab strip was not rebuilt: %d buttons", len(buttons))
	}
	panels := f.byID(t, "yearlyChartsContainer").Children()
	if len(panels) != 2 || !panels[0].Visible() || panels[1].Visible() {
		t.Fatal("only the earliest year should be visible")
	}

	c, _ := f.dash.yearly.Chart("2023")
	if got := strings.Join(c.Config().Data.Labels, ","); got != "March,January" {
		t.Fatalf("2023 labels = %s, want payload order", got)
	}
	if c.Config().Data.Datasets[0].Label != "Monthly Spending 2023" {
		t.Fatalf("label = %s", c.Config().Data.Datasets[0].Label)
	}

	frag, err := f.dash.Click(GroupYear, "2024")
	if err != nil || !frag.Changed || frag.ID != "yearly-comparison-panel" {
		t.Fatalf("Click = %+v, %v", frag, err)
	}
	if panels[0].Visible() || !panels[1].Visible() {
		t.Fatal("visibility did not follow the selection")
	}
	if !buttons[1].HasClass(view.ActiveClass) || buttons[0].HasClass(view.ActiveClass) {
		t.Fatal("active class did not follow the selection")
	}
	if buttons[1].Attr("data-tab-option") != "2024" || buttons[1].Attr("data-tab-group") != GroupYear {
		t.Fatal("year tabs must carry their click routing attributes")
	}
}

func TestYearly_ClickKeepsCharts(t *testing.T) {
	f := newFixture(t, hostPage)
	f.load(t)

	frag, err := f.dash.Click(GroupYear, "2024")
	if err != nil {
		t.Fatalf("Click: %v", err)
	}
	if len(f.lib.built) != 5 {
		t.Fatalf("switching year built %d charts, want none beyond the initial 5", len(f.lib.built))
	}
	for _, year := range []string{"2023", "2024"} {
		id := "yearly-chart-" + year
		canvas := f.byID(t, id)
		if canvas.Attr(chart.AttrRevision) != "1" {
			t.Errorf("%s revision = %s, a visibility switch must not redraw", id, canvas.Attr(chart.AttrRevision))
		}
		if !strings.Contains(frag.HTML, `id="`+id+`"`) {
			t.Errorf("fragment lost canvas #%s, the page cannot carry its chart over", id)
		}
	}
}

func TestYearly_SingleYear(t *testing.T) {
	f := newFixture(t, hostPage)
	body := strings.NewReplacer(
		`"2023-03-01"`, `"2024-03-01"`,
		`"2023-01-01"`, `"2024-02-01"`,
	).Replace(payloadJSON)
	if err := f.dash.Load(context.Background(), payload(t, body)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := f.dash.Err(); err != nil {
		t.Fatalf("widget errors: %v", err)
	}

	active := 0
	for _, tab := range f.doc.FindByClass("year-tab") {
		if tab.HasClass(view.ActiveClass) {
			active++
		}
	}
	if active != 1 {
		t.Fatalf("active year tabs = %d, want 1", active)
	}
	visible := 0
	for _, panel := range f.doc.FindByClass("yearly-chart") {
		if panel.Visible() {
			visible++
		}
	}
	if visible != 1 || f.dash.yearly.Active() != "2024" {
		t.Fatalf("visible yearly charts = %d, active = %q", visible, f.dash.yearly.Active())
	}
}

func TestIntervalsAndFlows(t *testing.T) {
	f := newFixture(t, hostPage)
	f.load(t)

	iv := f.dash.intervals.Chart().Config()
	if strings.Join(iv.Data.Labels, "|") != "9:00 - 10:00|23:00 - 24:00" {
		t.Fatalf("interval labels = %v", iv.Data.Labels)
	}
	if iv.Options.Scales["y"].Ticks.StepSize != 1 || *iv.Options.Plugins.Legend.Display {
		t.Fatal("interval chart options mismatch")
	}

	fl := f.dash.flows.Chart().Config()
	if strings.Join(fl.Data.Labels, ",") != "Inflows,Outflows" {
		t.Fatalf("flow labels = %v", fl.Data.Labels)
	}
	if d := fl.Data.Datasets[0].Data; d[0] != 1000 || d[1] != 400 {
		t.Fatalf("flow data = %v", d)
	}
	if fl.Type != chart.TypeDoughnut || fl.Options.Plugins.Legend.Position != "right" {
		t.Fatalf("flow chart = %+v", fl)
	}
}

func TestClick_Errors(t *testing.T) {
	f := newFixture(t, hostPage)
	f.load(t)

	if _, err := f.dash.Click("category", "x"); !errors.Is(err, ErrUnknownGroup) {
		t.Fatalf("expected ErrUnknownGroup, got %v", err)
	}
	if _, err := f.dash.Click(GroupYear, "1999"); !errors.Is(err, tabs.ErrUnknownOption) {
		t.Fatalf("expected ErrUnknownOption, got %v", err)
	}
	if f.dash.State()[GroupYear] != "2023" {
		t.Fatal("failed click changed state")
	}
}

func TestLoad_MissingAnchorIsIsolated(t *testing.T) {
	page := strings.Replace(hostPage, `<canvas id="inflow-outflow-chart"></canvas>`, ``, 1)
	f := newFixture(t, page)
	if err := f.dash.Load(context.Background(), payload(t, payloadJSON)); err != nil {
		t.Fatalf("Load: %v", err)
	}

	err := f.dash.Err()
	if !errors.Is(err, view.ErrAnchorNotFound) || !strings.Contains(err.Error(), "inflow-outflow-chart") {
		t.Fatalf("expected missing anchor error naming the id, got %v", err)
	}
	if len(f.lib.built) != 4 {
		t.Fatalf("other widgets should still render, charts = %d", len(f.lib.built))
	}
	if f.logs.Count(slog.LevelError) != 1 {
		t.Fatalf("error records = %d", f.logs.Count(slog.LevelError))
	}
}

func TestYearly_NoYears(t *testing.T) {
	doc, _ := view.ParseString(hostPage)
	y, err := NewYearly(doc, view.DefaultAnchors(), chart.ChartJS{}, nil)
	if err != nil {
		t.Fatalf("NewYearly: %v", err)
	}
	strip, _ := doc.ByID("yearTabs")
	if len(strip.Children()) != 0 || y.Active() != "" {
		t.Fatal("no years should leave an empty strip")
	}
	if _, err := y.Select("2024"); !errors.Is(err, tabs.ErrUnknownOption) {
		t.Fatalf("expected ErrUnknownOption, got %v", err)
	}
}
