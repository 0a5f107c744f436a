package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"finboard/internal/aggregate"
	"finboard/internal/core"
)

// Report holds the PDF cover details.
type Report struct {
	Title     string
	Currency  string
	Generated time.Time
}

var (
	headerColor     = [3]int{40, 40, 40}
	headerTextColor = [3]int{255, 255, 255}
	bodyTextColor   = [3]int{50, 50, 50}
	lineColor       = [3]int{200, 200, 200}
)

// pdfSafe replaces symbols the core PDF fonts cannot encode.
var pdfSafe = strings.NewReplacer("₹", "Rs. ", "⚠️", "", "💰", "")

// WritePDF renders the view models as an A4 report with one section per widget.
func WritePDF(w io.Writer, v aggregate.Views, r Report) error {
	if r.Title == "" {
		r.Title = "Financial Dashboard"
	}
	if r.Currency == "" {
		r.Currency = core.DefaultCurrency
	}
	money := func(d decimal.Decimal) string {
		return pdfSafe.Replace(r.Currency) + d.StringFixed(2)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string { return tr(pdfSafe.Replace(s)) }

	section := func(title string) {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(0, 0, 0)
		pdf.Cell(0, 8, text(title))
		pdf.Ln(7)
		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(3)
		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	}
	row := func(label, value string) {
		pdf.CellFormat(120, 6, text(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(70, 6, text(value), "", 1, "R", false, 0, "")
	}
	empty := func() {
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 6, "No data", "", 1, "L", false, 0, "")
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	}

	pdf.AddPage()
	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, text("  "+r.Title), "", 1, "L", true, 0, "")
	if !r.Generated.IsZero() {
		pdf.SetFont("Arial", "", 9)
		pdf.SetFillColor(240, 240, 240)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		pdf.CellFormat(0, 7, text("  Generated "+r.Generated.Format("2006-01-02 15:04 MST")), "", 1, "L", true, 0, "")
	}

	section("Inflows vs Outflows")
	if len(v.Flows.Labels) == 0 {
		empty()
	}
	for i, l := range v.Flows.Labels {
		row(l, money(v.Flows.Data[i]))
	}

	section("Savings Suggestions")
	if len(v.Savings) == 0 {
		empty()
	}
	for _, c := range v.Savings {
		row(c.Category, money(c.Value))
	}

	section("Spending Alerts")
	if len(v.Alerts) == 0 {
		empty()
	}
	for _, a := range v.Alerts {
		pdf.MultiCell(190, 5, text("- "+a), "", "L", false)
	}

	for _, s := range []struct {
		title  string
		series aggregate.Series
	}{{"Credit Transactions", v.Credit}, {"Debit Transactions", v.Debit}} {
		section(s.title)
		if s.series.Len() == 0 {
			empty()
		}
		for i, d := range s.series.Dates {
			row(d, money(s.series.Amounts[i]))
		}
		if s.series.Len() > 0 {
			pdf.SetFont("Arial", "B", 10)
			row("Total", money(core.Sum(s.series.Amounts)))
			pdf.SetFont("Arial", "", 10)
		}
	}

	section("Busiest Hours")
	if len(v.Intervals) == 0 {
		empty()
	}
	for _, b := range v.Intervals {
		row(b.Range, strconv.Itoa(b.Count)+" transactions")
	}

	section("Monthly Comparison")
	if len(v.Years) == 0 {
		empty()
	}
	for _, g := range v.Years {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 6, text(g.Year), "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, m := range g.Months {
			row("  "+m.Label, money(m.Amount))
		}
	}

	if len(v.Outliers) > 0 {
		section("Unusual Transactions")
		for _, o := range v.Outliers {
			row(fmt.Sprintf("%s  %s (%s)", o.Date, o.Name, o.PayeeType), money(o.Amount))
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("error writing PDF: %w", err)
	}
	return nil
}
