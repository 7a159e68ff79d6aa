package ledger

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// excelEpoch is day zero of the Excel 1900 date system (with the leap-year bug folded in).
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

const displayDateLayout = "02-01-2006"

var dateLayouts = []string{
	"02-01-2006",
	"02/01/2006",
	"2006-01-02",
	"02-Jan-2006",
	"02-Jan-06",
	"02 Jan 2006",
	"2006-01-02T15:04:05Z07:00",
}

// toFloat coerces a raw scalar to a finite number. Anything unparseable is nil.
func toFloat(v any) *float64 {
	var f float64
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case int32:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		s := strings.NewReplacer(",", "", "₹", "", " ", "").Replace(strings.TrimSpace(x))
		if s == "" || s == "-" {
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// toString renders a raw scalar as trimmed text. Whole numbers lose their ".0".
func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return x.String()
	default:
		if f := toFloat(v); f != nil {
			return strconv.FormatFloat(*f, 'f', -1, 64)
		}
		return ""
	}
}

// toDate normalizes a raw date to dd-mm-yyyy. Unrecognized text is kept as-is;
// empty or non-date values are nil.
func toDate(v any) *string {
	switch x := v.(type) {
	case nil:
		return nil
	case time.Time:
		s := x.Format(displayDateLayout)
		return &s
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				out := t.Format(displayDateLayout)
				return &out
			}
		}
		if f := toFloat(s); f != nil {
			return excelSerialDate(*f)
		}
		return &s
	default:
		if f := toFloat(v); f != nil {
			return excelSerialDate(*f)
		}
		return nil
	}
}

func excelSerialDate(serial float64) *string {
	if serial < 1 || serial > 2958465 {
		return nil
	}
	s := excelEpoch.AddDate(0, 0, int(serial)).Format(displayDateLayout)
	return &s
}

// normalizeKey folds a column header to lowercase alphanumerics so that
// "Taxable Value (₹)" and "taxableValue" compare equal.
func normalizeKey(k string) string {
	var b strings.Builder
	b.Grow(len(k))
	for _, r := range strings.ToLower(k) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizeInvoiceNumber is the identity used for dedup and reconciliation.
func normalizeInvoiceNumber(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}

func normalizeGSTIN(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func dec(f *float64) decimal.Decimal {
	if f == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*f)
}

func valueOf(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func floatPtr(f float64) *float64 {
	return &f
}

func strPtr(s string) *string {
	return &s
}
