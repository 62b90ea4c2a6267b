// Package normalize turns untrusted restaurant/review payloads into the
// canonical domain model. Nothing here returns an error or panics on bad
// input: malformed values degrade to defaults and sentinels.
package normalize

import (
	"time"

	"restoreviews/internal/domain"
)

type Normalizer struct {
	aliases *Registry
	loc     *time.Location
}

type Option func(*Normalizer)

// WithAliases replaces the built-in synonym registry.
func WithAliases(r *Registry) Option {
	return func(n *Normalizer) {
		if r != nil {
			n.aliases = r
		}
	}
}

// WithLocation sets the zone dates are rendered in (default UTC).
func WithLocation(loc *time.Location) Option {
	return func(n *Normalizer) {
		if loc != nil {
			n.loc = loc
		}
	}
}

func New(opts ...Option) *Normalizer {
	n := &Normalizer{aliases: DefaultRegistry(), loc: time.UTC}
	for _, o := range opts {
		o(n)
	}
	return n
}

var std = New()

// FormatDate renders raw with the default normalizer.
func FormatDate(raw any) string { return std.FormatDate(raw) }

// ParseDate parses raw with the default normalizer.
func ParseDate(raw any) (time.Time, bool) { return std.ParseDate(raw) }

// NormalizeReview normalizes raw with the default normalizer.
func NormalizeReview(raw any) domain.Review { return std.NormalizeReview(raw) }
