package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	apphttp "finboard/internal/http"
	"finboard/internal/log"
)

const payloadFile = "testdata/payload.json"

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	for _, key := range []string{"FINBOARD_CONFIG_FILE", "FINBOARD_DATA_FILE", "FINBOARD_DATA_URL", "FINBOARD_LOG_FORMAT", "FINBOARD_LOCALE"} {
		t.Setenv(key, "")
	}

	var out, errOut bytes.Buffer
	app := NewApp("test")
	app.SetOutput(&out, &errOut)
	app.SetArgs(append(args, "--no-color", "--env-file", ""))
	err := app.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestInspect(t *testing.T) {
	out, _, err := run(t, "inspect", "--data", payloadFile)
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}
	for _, want := range []string{
		"Savings Suggestions",
		"Shopping",
		"High spending detected in Food: 1205",
		"Monthly Comparison 2023",
		"+18.75%",
		"9:00 - 10:00",
		"Laptop",
		"₹2849.25",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestRender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	out, _, err := run(t, "render", "--data", payloadFile, "--out", path, "--locale", "it_IT")
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	if !strings.Contains(out, "Dashboard written to") {
		t.Errorf("output = %q", out)
	}

	page, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	body := string(page)
	// transactions, hourly, flows and one chart per year
	if n := strings.Count(body, "data-chart-config="); n != 5 {
		t.Errorf("%d charts, want 5", n)
	}
	if !strings.Contains(body, "dicembre") {
		t.Error("month names not localized")
	}
	if strings.Contains(body, `src="/static/`) {
		t.Error("rendered page depends on the server")
	}
}

func TestRender_Stdout(t *testing.T) {
	out, _, err := run(t, "render", "--data", payloadFile, "-o", "-")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(strings.ToLower(out), "<!doctype html>") {
		t.Fatalf("stdout is not the page: %.80s", out)
	}
}

func TestRender_FetchFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone.json")
	if err := os.WriteFile(missing, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "page.html")
	_, stderr, err := run(t, "render", "--data", missing, "--out", out)
	if err == nil {
		t.Fatal("expected an error for a payload missing every field")
	}
	if _, statErr := os.Stat(out); statErr == nil {
		t.Fatal("no page should be written when loading fails")
	}
	if !strings.Contains(stderr, "Failed to load dashboard data") {
		t.Fatalf("failure not logged: %s", stderr)
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	out, _, err := run(t, "export", "--data", payloadFile, "--format", "csv,json", "--dir", dir, "--name", "march")
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	if strings.Count(out, "Saved ") != 2 {
		t.Errorf("output = %q", out)
	}
	for _, pattern := range []string{"march_*.csv", "march_*.json"} {
		matches, _ := filepath.Glob(filepath.Join(dir, pattern))
		if len(matches) != 1 {
			t.Errorf("%s: %v", pattern, matches)
		}
	}
}

func TestExport_UnknownFormat(t *testing.T) {
	_, _, err := run(t, "export", "--data", payloadFile, "--format", "xlsx", "--dir", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "unknown export format") {
		t.Fatalf("err = %v", err)
	}
}

func TestInvalidConfiguration(t *testing.T) {
	_, _, err := run(t, "inspect", "--data", payloadFile, "--log-format", "xml")
	if err == nil || !strings.Contains(err.Error(), "invalid log format 'xml'") {
		t.Fatalf("err = %v", err)
	}
}

func TestConfigFileFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finboard.toml")
	if err := os.WriteFile(path, []byte("currency = \"€\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, _, err := run(t, "inspect", "--data", payloadFile, "-C", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "€2849.25") {
		t.Fatalf("currency from the config file not applied:\n%s", out)
	}
}

func TestMonthChange(t *testing.T) {
	tests := []struct {
		prev, cur int64
		want      string
	}{
		{100, 150, "+50.00%"},
		{200, 150, "-25.00%"},
		{100, 100, "0%"},
		{0, 0, "0%"},
		{0, 10, "N/A"},
		{1, 5000, ">+999%"},
	}
	for _, tt := range tests {
		got, _ := monthChange(decimal.NewFromInt(tt.prev), decimal.NewFromInt(tt.cur), "")
		if !strings.Contains(got, tt.want) {
			t.Errorf("monthChange(%d, %d) = %q, want %q", tt.prev, tt.cur, got, tt.want)
		}
	}
}

func TestServeUntilDone(t *testing.T) {
	srv := apphttp.NewServer(apphttp.Options{Addr: "127.0.0.1:0"})
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- serveUntilDone(ctx, log.Discard(), srv, time.Second) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serveUntilDone() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
