// Package export writes the dashboard view models to CSV, JSON and PDF files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/aggregate"
	"finboard/internal/core"
	"finboard/internal/log"
)

// Format is an export file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
)

var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormats reads a comma separated list such as "csv,pdf". Duplicates
// are dropped; order is kept.
func ParseFormats(s string) ([]Format, error) {
	var out []Format
	seen := map[Format]bool{}
	for _, part := range strings.Split(s, ",") {
		f := Format(strings.ToLower(strings.TrimSpace(part)))
		if f == "" {
			continue
		}
		switch f {
		case FormatCSV, FormatJSON, FormatPDF:
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: none given", ErrUnknownFormat)
	}
	return out, nil
}

// Exporter writes timestamped export files into Dir.
type Exporter struct {
	Dir      string
	Base     string
	Title    string
	Currency string
	Logger   *log.Logger
	Now      func() time.Time
}

// Export writes one file per format and returns their absolute paths.
func (e *Exporter) Export(v aggregate.Views, formats []Format) ([]string, error) {
	logger := e.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentExport)

	var paths []string
	for _, f := range formats {
		path, err := e.filename(string(f))
		if err != nil {
			return paths, err
		}
		if err := e.write(path, f, v); err != nil {
			logger.Error("Export failed",
				log.FieldFormat, string(f),
				log.FieldOutput, path,
				log.FieldOperation, log.OpExport,
				log.FieldError, err.Error())
			return paths, err
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		logger.Info("Export written", log.FieldFormat, string(f), log.FieldOutput, abs)
		paths = append(paths, abs)
	}
	return paths, nil
}

func (e *Exporter) write(path string, f Format, v aggregate.Views) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating %s file: %w", f, err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("error closing %s file: %w", f, cerr)
		}
	}()

	switch f {
	case FormatCSV:
		return WriteCSV(file, v)
	case FormatJSON:
		return WriteJSON(file, v, e.now())
	case FormatPDF:
		return WritePDF(file, v, Report{Title: e.Title, Currency: e.Currency, Generated: e.now()})
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

func (e *Exporter) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Exporter) filename(ext string) (string, error) {
	dir := e.Dir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	base := e.Base
	if base == "" {
		base = "finboard"
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%s.%s", base, e.now().Format("20060102_150405"), ext)), nil
}

// CSVHeader is the first row of every CSV export. Each view becomes rows of
// (section, key, label, value).
var CSVHeader = []string{"section", "key", "label", "value"}

// WriteCSV writes every view model as rows in one long-format table.
func WriteCSV(w io.Writer, v aggregate.Views) error {
	cw := csv.NewWriter(w)
	rows := [][]string{CSVHeader}
	add := func(section, key, label, value string) {
		rows = append(rows, []string{section, key, label, value})
	}

	for _, c := range v.Savings {
		add("savings", c.Category, c.Amount, c.Value.String())
	}
	for i, a := range v.Alerts {
		add("alerts", strconv.Itoa(i+1), a, "")
	}
	for i, d := range v.Credit.Dates {
		add("credit", d, "", v.Credit.Amounts[i].String())
	}
	for i, d := range v.Debit.Dates {
		add("debit", d, "", v.Debit.Amounts[i].String())
	}
	for _, b := range v.Intervals {
		add("hourly", b.Range, "", strconv.Itoa(b.Count))
	}
	for _, g := range v.Years {
		for _, m := range g.Months {
			add("yearly", g.Year, m.Label, m.Amount.String())
		}
	}
	for i, l := range v.Flows.Labels {
		add("flows", l, "", v.Flows.Data[i].String())
	}
	for _, o := range v.Outliers {
		add("outliers", o.TransactionID, o.Name+" ("+o.PayeeType+", "+o.Date+")", o.Amount.String())
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("error writing CSV: %w", err)
	}
	return nil
}

type (
	jsonDocument struct {
		GeneratedAt string         `json:"generated_at"`
		Savings     []jsonAmount   `json:"savings_suggestions"`
		Alerts      []string       `json:"alerts"`
		Credit      jsonSeries     `json:"credit"`
		Debit       jsonSeries     `json:"debit"`
		Hourly      []jsonCount    `json:"hourly"`
		Years       []jsonYear     `json:"yearly"`
		Flows       []jsonAmount   `json:"flows"`
		Outliers    []core.Outlier `json:"outliers"`
		Totals      jsonTotals     `json:"totals"`
	}

	jsonAmount struct {
		Label  string          `json:"label"`
		Amount decimal.Decimal `json:"amount"`
	}

	jsonSeries struct {
		Dates   []string          `json:"dates"`
		Amounts []decimal.Decimal `json:"amounts"`
	}

	jsonCount struct {
		Range string `json:"range"`
		Count int    `json:"count"`
	}

	jsonYear struct {
		Year   string          `json:"year"`
		Months []jsonAmount    `json:"months"`
		Total  decimal.Decimal `json:"total"`
	}

	jsonTotals struct {
		Credit  decimal.Decimal `json:"credit"`
		Debit   decimal.Decimal `json:"debit"`
		Savings decimal.Decimal `json:"savings"`
		Net     decimal.Decimal `json:"net"`
	}
)

// WriteJSON writes the view models as one indented document.
func WriteJSON(w io.Writer, v aggregate.Views, generated time.Time) error {
	doc := jsonDocument{
		GeneratedAt: generated.UTC().Format(time.RFC3339),
		Savings:     []jsonAmount{},
		Alerts:      append([]string{}, v.Alerts...),
		Credit:      jsonSeries{Dates: orEmpty(v.Credit.Dates), Amounts: orEmptyDec(v.Credit.Amounts)},
		Debit:       jsonSeries{Dates: orEmpty(v.Debit.Dates), Amounts: orEmptyDec(v.Debit.Amounts)},
		Hourly:      []jsonCount{},
		Years:       []jsonYear{},
		Flows:       []jsonAmount{},
		Outliers:    append([]core.Outlier{}, v.Outliers...),
		Totals:      totals(v),
	}
	for _, c := range v.Savings {
		doc.Savings = append(doc.Savings, jsonAmount{Label: c.Category, Amount: c.Value})
	}
	for _, b := range v.Intervals {
		doc.Hourly = append(doc.Hourly, jsonCount{Range: b.Range, Count: b.Count})
	}
	for _, g := range v.Years {
		y := jsonYear{Year: g.Year, Months: []jsonAmount{}, Total: decimal.Zero}
		for _, m := range g.Months {
			y.Months = append(y.Months, jsonAmount{Label: m.Label, Amount: m.Amount})
			y.Total = y.Total.Add(m.Amount)
		}
		doc.Years = append(doc.Years, y)
	}
	for i, l := range v.Flows.Labels {
		doc.Flows = append(doc.Flows, jsonAmount{Label: l, Amount: v.Flows.Data[i]})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("error encoding JSON data: %w", err)
	}
	return nil
}

func totals(v aggregate.Views) jsonTotals {
	t := jsonTotals{
		Credit:  core.Sum(v.Credit.Amounts),
		Debit:   core.Sum(v.Debit.Amounts),
		Savings: decimal.Zero,
		Net:     decimal.Zero,
	}
	for _, c := range v.Savings {
		t.Savings = t.Savings.Add(c.Value)
	}
	if len(v.Flows.Data) == 2 {
		t.Net = v.Flows.Data[0].Sub(v.Flows.Data[1])
	}
	return t
}

func orEmpty(s []string) []string {
	return append([]string{}, s...)
}

func orEmptyDec(s []decimal.Decimal) []decimal.Decimal {
	return append([]decimal.Decimal{}, s...)
}
