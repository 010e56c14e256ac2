// Package format holds the display formatting helpers shared by the site
// widgets. All functions are pure.
package format

import (
	"fmt"
	"strings"
	"time"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"'", "&#39;",
	`"`, "&quot;",
)

// EscapeHTML escapes the five HTML-significant characters. Widgets run every
// piece of server- or visitor-supplied text through this before it is placed
// into a rendered fragment.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// Truncate shortens s to at most max runes, appending an ellipsis when it
// was cut. Truncation happens on rune boundaries so multibyte text is never
// left with a broken sequence.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

// Duration renders a slot duration in minutes as a human label:
// 30 -> "30 min", 60 -> "1 hour", 90 -> "1 hour 30 min", 120 -> "2 hours".
func Duration(minutes int) string {
	if minutes <= 0 {
		return "0 min"
	}
	hours := minutes / 60
	rest := minutes % 60
	if hours == 0 {
		return fmt.Sprintf("%d min", rest)
	}
	label := "hours"
	if hours == 1 {
		label = "hour"
	}
	if rest == 0 {
		return fmt.Sprintf("%d %s", hours, label)
	}
	return fmt.Sprintf("%d %s %d min", hours, label, rest)
}

// Price renders a slot price. Whole amounts drop the pence.
func Price(amount float64) string {
	if amount == float64(int64(amount)) {
		return fmt.Sprintf("£%d", int64(amount))
	}
	return fmt.Sprintf("£%.2f", amount)
}

// Date renders an ISO date (2006-01-02) as "Monday 2 January 2006". Inputs
// that fail to parse are returned unchanged so a malformed server value
// still shows something.
func Date(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("Monday 2 January 2006")
}

// Time renders a 24-hour "15:04" time as "3:04pm".
func Time(hhmm string) string {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return hhmm
	}
	return t.Format("3:04pm")
}

// Timestamp renders an ISO datetime as the short clock label shown on chat
// bubbles. Falls back to the raw value on parse failure.
func Timestamp(iso string) string {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return iso
	}
	return t.Format("3:04pm")
}
