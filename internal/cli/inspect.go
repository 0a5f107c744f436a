package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"finboard/internal/aggregate"
	"finboard/internal/core"
)

var (
	brightGreen  = color.New(color.FgGreen, color.Bold).SprintFunc()
	brightRed    = color.New(color.FgRed, color.Bold).SprintFunc()
	brightYellow = color.New(color.FgYellow, color.Bold).SprintFunc()
	brightCyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
)

const barWidth = 40

func (app *App) newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Print the dashboard views as terminal tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := app.loadViews(cmd.Context())
			if err != nil {
				return err
			}
			printViews(cmd.OutOrStdout(), v, app.cfg.Currency)
			return nil
		},
	}
}

// printViews writes one block per widget.
func printViews(w io.Writer, v aggregate.Views, currency string) {
	money := func(d decimal.Decimal) string { return core.FormatAmount(d, currency) }

	fmt.Fprintln(w, brightCyan("Inflows vs Outflows"))
	for i, l := range v.Flows.Labels {
		fmt.Fprintf(w, "  %-10s %s\n", l, money(v.Flows.Data[i]))
	}
	if len(v.Flows.Data) == 2 {
		net := v.Flows.Data[0].Sub(v.Flows.Data[1])
		paint := brightGreen
		if net.IsNegative() {
			paint = brightRed
		}
		fmt.Fprintf(w, "  %-10s %s\n", "Net", paint(money(net)))
	}
	fmt.Fprintln(w)

	rows := pterm.TableData{{"Category", "Potential Savings"}}
	for _, c := range v.Savings {
		rows = append(rows, []string{c.Category, money(c.Value)})
	}
	printTable(w, "Savings Suggestions", rows)

	fmt.Fprintln(w, brightCyan("Spending Alerts"))
	if len(v.Alerts) == 0 {
		fmt.Fprintln(w, "  none")
	}
	for _, a := range v.Alerts {
		fmt.Fprintf(w, "  %s %s\n", brightYellow("!"), a)
	}
	fmt.Fprintln(w)

	for _, s := range []struct {
		title  string
		series aggregate.Series
	}{{"Credit Transactions", v.Credit}, {"Debit Transactions", v.Debit}} {
		rows := pterm.TableData{{"Date", "Amount"}}
		for i, d := range s.series.Dates {
			rows = append(rows, []string{d, money(s.series.Amounts[i])})
		}
		if s.series.Len() > 0 {
			rows = append(rows, []string{"Total", money(core.Sum(s.series.Amounts))})
		}
		printTable(w, s.title, rows)
	}

	rows = pterm.TableData{{"Hour", "Transactions"}}
	for _, b := range v.Intervals {
		rows = append(rows, []string{b.Range, strconv.Itoa(b.Count)})
	}
	printTable(w, "Busiest Hours", rows)

	for _, g := range v.Years {
		printYearBars(w, g, money)
	}

	if len(v.Outliers) > 0 {
		rows = pterm.TableData{{"Date", "Name", "Payee Type", "Amount"}}
		for _, o := range v.Outliers {
			rows = append(rows, []string{o.Date, o.Name, o.PayeeType, money(o.Amount)})
		}
		printTable(w, "Unusual Transactions", rows)
	}
}

func printTable(w io.Writer, title string, rows pterm.TableData) {
	fmt.Fprintln(w, brightCyan(title))
	if len(rows) < 2 {
		fmt.Fprintln(w, "  none")
		fmt.Fprintln(w)
		return
	}
	table, err := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan)).
		WithData(rows).
		Srender()
	if err != nil {
		fmt.Fprintf(w, "  %v\n\n", err)
		return
	}
	fmt.Fprintln(w, table)
	fmt.Fprintln(w)
}

// printYearBars draws one bar per month, scaled to the largest month of the
// year, with the change against the previous month.
func printYearBars(w io.Writer, g aggregate.YearGroup, money func(decimal.Decimal) string) {
	peak := decimal.Zero
	for _, m := range g.Months {
		if m.Amount.GreaterThan(peak) {
			peak = m.Amount
		}
	}

	rows := pterm.TableData{{"Month", "Amount", "", "MoM Change"}}
	for i, m := range g.Months {
		length := 0
		if peak.IsPositive() && m.Amount.IsPositive() {
			length = int(m.Amount.Div(peak).Mul(decimal.NewFromInt(barWidth)).IntPart())
		}
		bar := strings.Repeat("█", length)

		change := ""
		if i > 0 {
			change, bar = monthChange(g.Months[i-1].Amount, m.Amount, bar)
		} else {
			bar = pterm.FgBlue.Sprint(bar)
		}
		rows = append(rows, []string{m.Label, money(m.Amount), bar, change})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(rows).Srender()
	if err != nil {
		fmt.Fprintf(w, "  %v\n\n", err)
		return
	}
	fmt.Fprintln(w, pterm.DefaultBox.
		WithTitle("Monthly Comparison "+g.Year).
		WithBoxStyle(pterm.NewStyle(pterm.FgCyan)).
		Sprint(table))
	fmt.Fprintln(w)
}

// monthChange formats the month-over-month change and colors the bar to
// match: red for more spending, green for less.
func monthChange(prev, cur decimal.Decimal, bar string) (string, string) {
	if prev.IsZero() {
		if cur.IsZero() {
			return pterm.FgYellow.Sprint("0%"), pterm.FgYellow.Sprint(bar)
		}
		return pterm.FgRed.Sprint("N/A"), pterm.FgRed.Sprint(bar)
	}
	pct, _ := cur.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).Float64()
	switch {
	case pct > 999:
		return pterm.FgRed.Sprint(">+999%"), pterm.FgRed.Sprint(bar)
	case pct > 0.005:
		return pterm.FgRed.Sprintf("+%.2f%%", pct), pterm.FgRed.Sprint(bar)
	case pct < -0.005:
		return pterm.FgGreen.Sprintf("%.2f%%", pct), pterm.FgGreen.Sprint(bar)
	}
	return pterm.FgYellow.Sprint("0%"), pterm.FgYellow.Sprint(bar)
}
