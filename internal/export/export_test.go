package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/aggregate"
	"finboard/internal/core"
)

func sampleViews(t *testing.T) aggregate.Views {
	t.Helper()
	p, err := core.DecodePayload(strings.NewReader(`{
		"savings_suggestions": {"Food": 120.5},
		"alerts": ["High spending detected in Food: 1205"],
		"credit_chart_data": {"dates": ["2024-02-01", "2024-01-15"], "amounts": [200, 100]},
		"debit_chart_data": {"dates": ["2024-01-20"], "amounts": [50]},
		"monthly_comparison": [{"date": "2023-11-01", "amount": 90}, {"date": "2024-01-01", "amount": 150}],
		"top_time_intervals": [{"time": "9:45", "transaction_count": 3}],
		"inflows": 1000,
		"outflows": 400,
		"outliers": [{"name": "Laptop", "transaction_id": "T9", "date": "2024-01-03", "amount": 2400, "payee_type": "Shopping"}]
	}`))
	if err != nil {
		t.Fatal(err)
	}
	v, err := aggregate.Build(p, aggregate.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in      string
		want    []Format
		wantErr bool
	}{
		{"csv", []Format{FormatCSV}, false},
		{"PDF, json,csv,json", []Format{FormatPDF, FormatJSON, FormatCSV}, false},
		{"xlsx", nil, true},
		{" , ", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormats(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormats(%q) error = %v", tt.in, err)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownFormat) {
					t.Fatalf("error %v is not ErrUnknownFormat", err)
				}
				return
			}
			if strings.Join(formatsToStrings(got), ",") != strings.Join(formatsToStrings(tt.want), ",") {
				t.Fatalf("ParseFormats(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func formatsToStrings(fs []Format) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = string(f)
	}
	return out
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleViews(t)); err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if strings.Join(rows[0], ",") != "section,key,label,value" {
		t.Fatalf("header = %v", rows[0])
	}

	sections := map[string]int{}
	for _, r := range rows[1:] {
		sections[r[0]]++
	}
	want := map[string]int{"savings": 1, "alerts": 1, "credit": 2, "debit": 1, "hourly": 1, "yearly": 2, "flows": 2, "outliers": 1}
	for s, n := range want {
		if sections[s] != n {
			t.Errorf("section %s has %d rows, want %d", s, sections[s], n)
		}
	}

	// credit rows come out date-sorted
	var credit []string
	for _, r := range rows[1:] {
		if r[0] == "credit" {
			credit = append(credit, r[1]+"="+r[3])
		}
	}
	if strings.Join(credit, " ") != "2024-01-15=100 2024-02-01=200" {
		t.Fatalf("credit rows = %v", credit)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	generated := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if err := WriteJSON(&buf, sampleViews(t), generated); err != nil {
		t.Fatal(err)
	}

	var doc struct {
		GeneratedAt string `json:"generated_at"`
		Years       []struct {
			Year  string          `json:"year"`
			Total decimal.Decimal `json:"total"`
		} `json:"yearly"`
		Totals struct {
			Credit decimal.Decimal `json:"credit"`
			Net    decimal.Decimal `json:"net"`
		} `json:"totals"`
		Outliers []core.Outlier `json:"outliers"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if doc.GeneratedAt != "2024-03-01T10:00:00Z" {
		t.Errorf("generated_at = %s", doc.GeneratedAt)
	}
	if len(doc.Years) != 2 || doc.Years[0].Year != "2023" || !doc.Years[1].Total.Equal(decimal.NewFromInt(150)) {
		t.Errorf("yearly = %+v", doc.Years)
	}
	if !doc.Totals.Credit.Equal(decimal.NewFromInt(300)) || !doc.Totals.Net.Equal(decimal.NewFromInt(600)) {
		t.Errorf("totals = %+v", doc.Totals)
	}
	if len(doc.Outliers) != 1 || doc.Outliers[0].TransactionID != "T9" {
		t.Errorf("outliers = %+v", doc.Outliers)
	}
}

func TestWriteJSON_EmptyViewsUseEmptyArrays(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, aggregate.Views{}, time.Now()); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "null") {
		t.Fatalf("empty views should encode as empty arrays:\n%s", buf.String())
	}
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	err := WritePDF(&buf, sampleViews(t), Report{Title: "March", Generated: time.Now()})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatal("output is not a PDF")
	}
}

func TestExporter_Export(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	e := &Exporter{
		Dir: dir,
		Now: func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) },
	}

	paths, err := e.Export(sampleViews(t), []Format{FormatCSV, FormatJSON, FormatPDF})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("paths = %v", paths)
	}
	for i, ext := range []string{"csv", "json", "pdf"} {
		if filepath.Base(paths[i]) != "finboard_20240301_100000."+ext {
			t.Errorf("path %d = %s", i, paths[i])
		}
		info, err := os.Stat(paths[i])
		if err != nil || info.Size() == 0 {
			t.Errorf("%s missing or empty: %v", paths[i], err)
		}
	}
}
