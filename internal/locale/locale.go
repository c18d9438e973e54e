// Package locale parses Turkish-formatted numbers and dates as they
// appear across upstream payloads. Display contexts (HTML tables) use dot
// as the thousands separator and comma as the decimal separator; several
// API JSON contexts use the reverse. The convention is chosen per source,
// never globally.
package locale

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Istanbul is the fixed UTC+3 zone Turkish sources report times in.
var Istanbul = time.FixedZone("TRT", 3*60*60)

// Style selects the separator convention of a numeric string.
type Style int

const (
	// StyleDisplay is "1.234,56": dot thousands, comma decimal.
	StyleDisplay Style = iota
	// StyleAPI is "1,234.56": comma thousands, dot decimal.
	StyleAPI
)

// ParseNumber parses s under the given style.
func ParseNumber(s string, style Style) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "%")
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0, fmt.Errorf("empty numeric field")
	}

	switch style {
	case StyleDisplay:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case StyleAPI:
		s = strings.ReplaceAll(s, ",", "")
	}
	return strconv.ParseFloat(s, 64)
}

// Number is the coercing variant of ParseNumber: malformed or missing
// input yields 0, never NaN and never a panic. Sources use it for every
// numeric field arriving as text.
func Number(s string, style Style) float64 {
	v, err := ParseNumber(s, style)
	if err != nil {
		return 0
	}
	return v
}

// Coerce converts a decoded JSON value of unknown dynamic type (float64,
// string, json.Number, nil) to a float64, falling back to 0. Upstream JSON
// frequently encodes numbers as strings.
func Coerce(v any, style Style) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	case int:
		return float64(t)
	case string:
		return Number(t, style)
	case fmt.Stringer:
		return Number(t.String(), style)
	case nil:
		return 0
	default:
		return 0
	}
}

// CoerceInt converts a decoded JSON value to int64, tolerating string and
// float encodings. Used for unix-timestamp fields whose JSON type varies
// by upstream.
func CoerceInt(v any) int64 {
	switch t := v.(type) {
	case float64:
		return int64(t)
	case int64:
		return t
	case int:
		return int64(t)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

var months = map[string]time.Month{
	"ocak": time.January, "şubat": time.February, "subat": time.February,
	"mart": time.March, "nisan": time.April, "mayıs": time.May, "mayis": time.May,
	"haziran": time.June, "temmuz": time.July, "ağustos": time.August,
	"agustos": time.August, "eylül": time.September, "eylul": time.September,
	"ekim": time.October, "kasım": time.November, "kasim": time.November,
	"aralık": time.December, "aralik": time.December,
}

var monthNameDate = regexp.MustCompile(`^(\d{1,2})\s+(\p{L}+)\s+(\d{4})$`)

// ParseMonthNameDate parses "15 Ocak 2026" style dates using the fixed
// Turkish month-name table.
func ParseMonthNameDate(s string) (time.Time, error) {
	m := monthNameDate.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q", s)
	}
	day, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[3])
	month, ok := months[strings.ToLower(m[2])]
	if !ok {
		return time.Time{}, fmt.Errorf("unknown month name %q", m[2])
	}
	return time.Date(year, month, day, 0, 0, 0, 0, Istanbul), nil
}

// ParseDate parses DD.MM.YYYY with optional HH:mm and HH:mm:ss suffixes.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"02.01.2006 15:04:05", "02.01.2006 15:04", "02.01.2006"} {
		if t, err := time.ParseInLocation(layout, s, Istanbul); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// FormatDate renders a time as DD.MM.YYYY, the format range-taking
// upstreams accept.
func FormatDate(t time.Time) string {
	return t.In(Istanbul).Format("02.01.2006")
}

// UnixSeconds converts an upstream unix-seconds value. The unit is pinned
// per source from observed sample data; this helper exists so the choice
// is explicit at every call site.
func UnixSeconds(v int64) time.Time {
	return time.Unix(v, 0).In(Istanbul)
}

// UnixMillis converts an upstream unix-milliseconds value.
func UnixMillis(v int64) time.Time {
	return time.UnixMilli(v).In(Istanbul)
}
