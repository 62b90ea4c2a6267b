package normalize

import (
	"math"
	"regexp"
	"strings"
	"time"

	"restoreviews/internal/domain"
)

var (
	isoDateTimeRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}`)
	isoDayRe      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dottedDayRe   = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)
)

const (
	// Numbers above this are millisecond epochs, at or below it seconds.
	msEpochThreshold = 1_000_000_000_000
	// Largest instant a JSON date can carry, in ms (±100M days).
	maxEpochMs = 8.64e15

	displayLayout = "02.01.2006"
)

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// Passthrough strings that ParseDate still understands.
var looseLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC1123,
	time.RFC1123Z,
}

type dateKind int

const (
	dateNone dateKind = iota
	dateInstant
	dateISODay
	dateDotted
	datePassthrough
)

// classifyDate applies the encodings most-specific first so epoch integers are
// never read as year-like strings.
func (n *Normalizer) classifyDate(raw any) (dateKind, time.Time) {
	s, isStr := raw.(string)
	if isStr && isoDateTimeRe.MatchString(s) {
		t, ok := n.parseISO(s)
		if !ok {
			return dateNone, time.Time{}
		}
		return dateInstant, t
	}
	if f, ok := numericValue(raw); ok && f != 0 {
		ms := f
		if math.Abs(f) <= msEpochThreshold {
			ms = f * 1000
		}
		if math.Abs(ms) > maxEpochMs {
			return dateNone, time.Time{}
		}
		return dateInstant, time.UnixMilli(int64(ms))
	}
	if isStr && isoDayRe.MatchString(s) {
		return dateISODay, time.Time{}
	}
	if isStr && dottedDayRe.MatchString(s) {
		return dateDotted, time.Time{}
	}
	if truthy(raw) {
		return datePassthrough, time.Time{}
	}
	return dateNone, time.Time{}
}

func (n *Normalizer) parseISO(s string) (time.Time, bool) {
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, n.loc); err == nil {
			return t, true
		}
	}
	// trailing junk after the minutes ("... UTC", "+03")
	if t, err := time.ParseInLocation("2006-01-02T15:04", s[:16], n.loc); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// FormatDate renders a date-like value as DD.MM.YYYY, passes unknown truthy
// values through, and returns the "Нет даты" sentinel for everything else.
func (n *Normalizer) FormatDate(raw any) (out string) {
	defer func() {
		if recover() != nil {
			out = domain.NoDate
		}
	}()

	kind, t := n.classifyDate(raw)
	switch kind {
	case dateInstant:
		return t.In(n.loc).Format(displayLayout)
	case dateISODay:
		s := raw.(string)
		return s[8:10] + "." + s[5:7] + "." + s[0:4]
	case dateDotted:
		return raw.(string)
	case datePassthrough:
		return scalarString(raw)
	}
	return domain.NoDate
}

// ParseDate resolves raw to an instant using the same classification as
// FormatDate. Day-only encodings resolve to midnight in the configured zone.
func (n *Normalizer) ParseDate(raw any) (t time.Time, ok bool) {
	defer func() {
		if recover() != nil {
			t, ok = time.Time{}, false
		}
	}()

	kind, inst := n.classifyDate(raw)
	switch kind {
	case dateInstant:
		return inst, true
	case dateISODay:
		return n.parseIn("2006-01-02", raw.(string))
	case dateDotted:
		return n.parseIn(displayLayout, raw.(string))
	case datePassthrough:
		s, isStr := raw.(string)
		if !isStr {
			return time.Time{}, false
		}
		s = strings.TrimSpace(s)
		for _, layout := range looseLayouts {
			if t, ok := n.parseIn(layout, s); ok {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func (n *Normalizer) parseIn(layout, s string) (time.Time, bool) {
	t, err := time.ParseInLocation(layout, s, n.loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
