package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// ChartData is a parallel date/amount series. Dates and Amounts are index aligned.
	ChartData struct {
		Dates   []string          `json:"dates"`
		Amounts []decimal.Decimal `json:"amounts"`
	}

	MonthlyAmount struct {
		Date   string          `json:"date"`
		Amount decimal.Decimal `json:"amount"`
	}

	TimeInterval struct {
		Time             string `json:"time"` // HH:MM
		TransactionCount int    `json:"transaction_count"`
	}

	Suggestion struct {
		Category string
		Amount   decimal.Decimal
	}

	// Suggestions keeps the key order of the savings_suggestions JSON object.
	Suggestions []Suggestion

	// Outlier is a transaction flagged by the producer's IQR check.
	Outlier struct {
		Name          string          `json:"name"`
		TransactionID string          `json:"transaction_id"`
		Date          string          `json:"date"`
		Amount        decimal.Decimal `json:"amount"`
		PayeeType     string          `json:"payee_type"`
	}

	// Payload is the dashboard-data document served by the data endpoint.
	Payload struct {
		SavingsSuggestions Suggestions     `json:"savings_suggestions"`
		Alerts             []string        `json:"alerts"`
		CreditChartData    ChartData       `json:"credit_chart_data"`
		DebitChartData     ChartData       `json:"debit_chart_data"`
		MonthlyComparison  []MonthlyAmount `json:"monthly_comparison"`
		TopTimeIntervals   []TimeInterval  `json:"top_time_intervals"`
		Inflows            decimal.Decimal `json:"inflows"`
		Outflows           decimal.Decimal `json:"outflows"`
		Outliers           []Outlier       `json:"outliers,omitempty"`
	}
)

var (
	ErrMalformedPayload = errors.New("malformed dashboard data")
	ErrInvalidTime      = errors.New("invalid time of day")
	ErrInvalidDate      = errors.New("invalid date")
)

// requiredFields are the payload keys every widget depends on.
var requiredFields = []string{
	"savings_suggestions",
	"alerts",
	"credit_chart_data",
	"debit_chart_data",
	"monthly_comparison",
	"top_time_intervals",
	"inflows",
	"outflows",
}

func malformed(field, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrMalformedPayload, field, fmt.Sprintf(format, args...))
}

// DecodePayload reads and validates a dashboard payload.
// Every failure wraps ErrMalformedPayload.
func DecodePayload(r io.Reader) (Payload, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return Payload{}, fmt.Errorf("read dashboard data: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	for _, field := range requiredFields {
		v, ok := raw[field]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return Payload{}, malformed(field, "missing")
		}
	}

	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if err := p.Validate(); err != nil {
		return Payload{}, err
	}
	return p, nil
}

// Validate checks the invariants the aggregator relies on.
func (p Payload) Validate() error {
	if err := p.CreditChartData.validate("credit_chart_data"); err != nil {
		return err
	}
	if err := p.DebitChartData.validate("debit_chart_data"); err != nil {
		return err
	}
	for i, m := range p.MonthlyComparison {
		if _, err := ParseDate(m.Date); err != nil {
			return malformed(fmt.Sprintf("monthly_comparison[%d].date", i), "%q is not a date", m.Date)
		}
	}
	for i, ti := range p.TopTimeIntervals {
		if _, err := ParseHour(ti.Time); err != nil {
			return malformed(fmt.Sprintf("top_time_intervals[%d].time", i), "%q is not HH:MM", ti.Time)
		}
		if ti.TransactionCount < 0 {
			return malformed(fmt.Sprintf("top_time_intervals[%d].transaction_count", i), "negative count %d", ti.TransactionCount)
		}
	}
	return nil
}

func (c ChartData) validate(field string) error {
	if len(c.Dates) != len(c.Amounts) {
		return malformed(field, "%d dates but %d amounts", len(c.Dates), len(c.Amounts))
	}
	for i, d := range c.Dates {
		if _, err := ParseDate(d); err != nil {
			return malformed(fmt.Sprintf("%s.dates[%d]", field, i), "%q is not a date", d)
		}
	}
	return nil
}

var dateLayouts = []string{"2006-01-02", "2006-01", time.RFC3339}

// ParseDate accepts YYYY-MM-DD, YYYY-MM and RFC 3339 timestamps.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// ParseHour returns the hour component of an "HH:MM" string.
func ParseHour(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || hh == "" || mm == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return hour, nil
}

func (s *Suggestions) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("savings_suggestions: expected an object")
	}

	out := Suggestions{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		var amount decimal.Decimal
		if err := dec.Decode(&amount); err != nil {
			return fmt.Errorf("savings_suggestions[%q]: %w", key, err)
		}
		out = append(out, Suggestion{Category: key, Amount: amount})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*s = out
	return nil
}

func (s Suggestions) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, sg := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(sg.Category)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(sg.Amount.String())
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
