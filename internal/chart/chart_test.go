package chart

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"finboard/internal/view"
)

func canvas(t *testing.T, tag string) *view.Element {
	t.Helper()
	doc, err := view.ParseString(`<html><body><` + tag + ` id="x"></` + tag + `></body></html>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	el, _ := doc.ByID("x")
	return el
}

func barConfig() Config {
	return Config{
		Type: TypeBar,
		Data: Data{
			Labels:   []string{"a", "b"},
			Datasets: []Dataset{{Label: "n", Data: []float64{1, 2}, BackgroundColor: Colors{"red"}}},
		},
		Options: Options{Responsive: true},
	}
}

func TestChartJS_NewAndUpdate(t *testing.T) {
	el := canvas(t, "canvas")
	c, err := ChartJS{}.New(el, barConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if el.Attr(AttrRevision) != "1" {
		t.Fatalf("revision = %q", el.Attr(AttrRevision))
	}

	var got Config
	if err := json.Unmarshal([]byte(el.Attr(AttrConfig)), &got); err != nil {
		t.Fatalf("config attr is not JSON: %v", err)
	}
	if got.Type != TypeBar || len(got.Data.Datasets) != 1 || got.Data.Datasets[0].BackgroundColor[0] != "red" {
		t.Fatalf("decoded config = %+v", got)
	}

	c.Config().Data.Labels = []string{"x"}
	c.Config().Data.Datasets[0].Data = []float64{9}
	if err := c.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if el.Attr(AttrRevision) != "2" || !strings.Contains(el.Attr(AttrConfig), `"labels":["x"]`) {
		t.Fatalf("after update: rev=%s cfg=%s", el.Attr(AttrRevision), el.Attr(AttrConfig))
	}

	c.Destroy()
	if el.Attr(AttrConfig) != "" {
		t.Fatal("Destroy left the config attribute")
	}
	if err := c.Update(); !errors.Is(err, ErrDestroyed) {
		t.Fatalf("expected ErrDestroyed, got %v", err)
	}
}

func TestChartJS_Rejects(t *testing.T) {
	if _, err := (ChartJS{}).New(canvas(t, "div"), barConfig()); !errors.Is(err, ErrNotCanvas) {
		t.Fatalf("expected ErrNotCanvas, got %v", err)
	}
	bad := barConfig()
	bad.Data.Labels = []string{"only-one"}
	if _, err := (ChartJS{}).New(canvas(t, "canvas"), bad); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	bad = barConfig()
	bad.Type = "radar"
	if err := bad.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for type, got %v", err)
	}
}

func TestColorsJSON(t *testing.T) {
	tests := []struct {
		in   Colors
		want string
	}{
		{Colors{"red"}, `"red"`},
		{Colors{"red", "blue"}, `["red","blue"]`},
	}
	for _, tt := range tests {
		b, err := json.Marshal(tt.in)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(b) != tt.want {
			t.Fatalf("Marshal(%v) = %s, want %s", tt.in, b, tt.want)
		}
	}

	b, _ := json.Marshal(Dataset{Data: []float64{1}})
	if strings.Contains(string(b), "backgroundColor") {
		t.Fatalf("empty colours should be omitted: %s", b)
	}
	b, _ = json.Marshal(Legend{Display: Hidden()})
	if string(b) != `{"display":false}` {
		t.Fatalf("hidden legend = %s", b)
	}
}
