package view

import (
	"errors"
	"strings"
	"testing"
)

const page = `<!DOCTYPE html><html><head><title>t</title></head><body>
<div id="panel" class="card" style="color: red">
  <button class="chart-tab active" data-chart="credit">Credit</button>
  <button class="chart-tab" data-chart="debit">Debit</button>
  <canvas id="c"></canvas>
</div>
<ul id="list"><li>old</li></ul>
</body></html>`

func mustParse(t *testing.T, s string) *Document {
	t.Helper()
	doc, err := ParseString(s)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestByIDAndRequire(t *testing.T) {
	doc := mustParse(t, page)
	el, ok := doc.ByID("panel")
	if !ok || el.Tag() != "div" {
		t.Fatalf("ByID(panel) = %v, %v", el, ok)
	}
	if _, err := doc.Require("missing"); !errors.Is(err, ErrAnchorNotFound) {
		t.Fatalf("expected ErrAnchorNotFound, got %v", err)
	}
	if _, err := doc.Require(""); !errors.Is(err, ErrAnchorNotFound) {
		t.Fatalf("empty id should not match, got %v", err)
	}
}

func TestClasses(t *testing.T) {
	doc := mustParse(t, page)
	tabs := doc.FindByClass("chart-tab")
	if len(tabs) != 2 {
		t.Fatalf("found %d tabs, want 2", len(tabs))
	}
	if tabs[0].Attr("data-chart") != "credit" || tabs[1].Attr("data-chart") != "debit" {
		t.Fatal("tabs not in document order")
	}

	tabs[0].RemoveClass("active")
	tabs[1].AddClass("active")
	tabs[1].AddClass("active")
	if tabs[0].HasClass("active") {
		t.Fatal("class not removed")
	}
	if got := tabs[1].Attr("class"); got != "chart-tab active" {
		t.Fatalf("class attr = %q", got)
	}
}

func TestDisplay(t *testing.T) {
	doc := mustParse(t, page)
	el, _ := doc.ByID("panel")
	el.Hide()
	if el.Visible() {
		t.Fatal("expected hidden")
	}
	if el.Style("color") != "red" {
		t.Fatalf("other declarations must survive, style=%q", el.Attr("style"))
	}
	el.Show()
	if !el.Visible() || el.Style("display") != "block" {
		t.Fatalf("style = %q", el.Attr("style"))
	}
}

func TestClearAppendRender(t *testing.T) {
	doc := mustParse(t, page)
	list, _ := doc.ByID("list")
	list.Clear()
	if len(list.Children()) != 0 {
		t.Fatal("Clear left children")
	}
	li := list.Append("li", "metric-card")
	li.Append("h4").SetText("<Food & Drink>")

	out, err := list.HTML()
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	want := `<ul id="list"><li class="metric-card"><h4>&lt;Food &amp; Drink&gt;</h4></li></ul>`
	if out != want {
		t.Fatalf("got  %s\nwant %s", out, want)
	}
	if list.Text() != "<Food & Drink>" {
		t.Fatalf("Text = %q", list.Text())
	}

	var b strings.Builder
	if err := doc.Render(&b); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(b.String(), "<li>old</li>") {
		t.Fatal("rendered page still has cleared content")
	}
}

func TestContains(t *testing.T) {
	doc := mustParse(t, page)
	panel, _ := doc.ByID("panel")
	canvas, _ := doc.ByID("c")
	list, _ := doc.ByID("list")
	if !panel.Contains(canvas) || panel.Contains(list) {
		t.Fatal("Contains mismatch")
	}
}

func TestMarkers(t *testing.T) {
	doc := mustParse(t, page)
	el, _ := doc.ByID("panel")

	ClassMarker{El: el}.SetActive(true)
	if !el.HasClass(ActiveClass) {
		t.Fatal("class marker did not add active")
	}
	ClassMarker{El: el}.SetActive(false)
	if el.HasClass(ActiveClass) || !el.HasClass("card") {
		t.Fatalf("class = %q", el.Attr("class"))
	}

	DisplayMarker{El: el}.SetActive(false)
	if el.Visible() {
		t.Fatal("display marker did not hide")
	}
}

func TestAnchors(t *testing.T) {
	a := DefaultAnchors().Merge(Anchors{SavingsList: "savings"})
	if a.SavingsList != "savings" || a.AlertsList != "spending-alerts-list" {
		t.Fatalf("merge = %+v", a)
	}
	if err := a.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := (Anchors{}).Validate(); err == nil {
		t.Fatal("empty anchors should fail validation")
	}

	doc := mustParse(t, page)
	err := DefaultAnchors().Check(doc)
	if !errors.Is(err, ErrAnchorNotFound) {
		t.Fatalf("expected missing anchors, got %v", err)
	}
	if !strings.Contains(err.Error(), "#savings-suggestions-list") {
		t.Fatalf("error should name the missing id: %v", err)
	}
}
