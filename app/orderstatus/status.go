// Package orderstatus maps between the canonical order status codes the
// backend stores and the labels an admin picks from. Mappings are total
// over the five known statuses; anything else passes through unchanged so
// an unexpected stored value is still shown and never blocks an update.
package orderstatus

import (
	"strings"
)

// Status is a canonical order status code as stored by the backend.
type Status string

const (
	Pending        Status = "pending"
	Packing        Status = "packing"
	OutForDelivery Status = "out for delivery"
	Delivered      Status = "delivered"
	Cancelled      Status = "cancelled"
)

// Indicator is the colour category used to badge an order.
type Indicator string

const (
	Yellow  Indicator = "yellow"
	Orange  Indicator = "orange"
	Blue    Indicator = "blue"
	Green   Indicator = "green"
	Red     Indicator = "red"
	Neutral Indicator = "neutral"
)

// All lists the statuses in selector order.
var All = []Status{Pending, Packing, OutForDelivery, Delivered, Cancelled}

var labels = map[Status]string{
	Pending:        "Order Placed",
	Packing:        "Packing",
	OutForDelivery: "Out for Delivery",
	Delivered:      "Delivered",
	Cancelled:      "Cancelled",
}

var indicators = map[Status]Indicator{
	Pending:        Yellow,
	Packing:        Orange,
	OutForDelivery: Blue,
	Delivered:      Green,
	Cancelled:      Red,
}

// Normalize lower-cases and trims a stored code.
func Normalize(code string) Status {
	return Status(strings.ToLower(strings.TrimSpace(code)))
}

// Valid reports whether s is one of the five known codes.
func (s Status) Valid() bool {
	_, ok := labels[s]
	return ok
}

// Label is the display label, or the raw code when unknown.
func (s Status) Label() string {
	if l, ok := labels[s]; ok {
		return l
	}
	return string(s)
}

// Indicator is the badge colour, Neutral when unknown.
func (s Status) Indicator() Indicator {
	if i, ok := indicators[s]; ok {
		return i
	}
	return Neutral
}

// Terminal reports whether no further fulfilment is expected.
func (s Status) Terminal() bool {
	return s == Delivered || s == Cancelled
}

// Parse resolves either a code or a label to a known status.
func Parse(v string) (Status, bool) {
	if s := Normalize(v); s.Valid() {
		return s, true
	}
	if s, ok := fromLabel(v); ok {
		return s, true
	}
	return "", false
}

// DisplayLabelFor maps a stored code to its label. Lookup is
// case-insensitive; unknown codes are returned as given.
func DisplayLabelFor(code string) string {
	if s := Normalize(code); s.Valid() {
		return s.Label()
	}
	return code
}

// CanonicalCodeFor maps a selected label to the code sent to the backend.
// Known labels match case-insensitively; a value that is already a code
// maps to itself; anything else is sent lower-cased.
func CanonicalCodeFor(label string) string {
	if s, ok := Parse(label); ok {
		return string(s)
	}
	return strings.ToLower(strings.TrimSpace(label))
}

// SelectedOption is the selector value pre-selected for an order: the label
// of its stored code, or the raw stored value when the code is unknown.
func SelectedOption(stored string) string {
	return DisplayLabelFor(stored)
}

// IndicatorFor is the badge colour for a stored code.
func IndicatorFor(code string) Indicator {
	return Normalize(code).Indicator()
}

// Option is one entry of the status selector.
type Option struct {
	Label     string    `json:"label"`
	Code      Status    `json:"code"`
	Indicator Indicator `json:"indicator"`
}

// Options lists the selector entries in order.
func Options() []Option {
	out := make([]Option, 0, len(All))
	for _, s := range All {
		out = append(out, Option{Label: s.Label(), Code: s, Indicator: s.Indicator()})
	}
	return out
}

// IsRegression reports a move out of a terminal status to another status.
// Such moves are allowed; callers only log them.
func IsRegression(from, to string) bool {
	f, t := Normalize(from), Normalize(to)
	return f.Terminal() && f != t
}

func fromLabel(label string) (Status, bool) {
	l := strings.TrimSpace(label)
	for s, name := range labels {
		if strings.EqualFold(name, l) {
			return s, true
		}
	}
	return "", false
}
