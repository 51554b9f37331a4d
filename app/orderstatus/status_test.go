package orderstatus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabelsRoundTrip(t *testing.T) {
	for _, s := range All {
		label := DisplayLabelFor(string(s))
		assert.Equal(t, string(s), CanonicalCodeFor(label), label)
	}
}

func TestDisplayLabelFor(t *testing.T) {
	cases := map[string]string{
		"pending":          "Order Placed",
		"Packing":          "Packing",
		"OUT FOR DELIVERY": "Out for Delivery",
		" delivered ":      "Delivered",
		"cancelled":        "Cancelled",
		"Returned":         "Returned",
	}
	for code, want := range cases {
		assert.Equal(t, want, DisplayLabelFor(code), code)
	}
}

func TestCanonicalCodeFor(t *testing.T) {
	assert.Equal(t, "pending", CanonicalCodeFor("Order Placed"))
	assert.Equal(t, "out for delivery", CanonicalCodeFor("out for delivery"))
	assert.Equal(t, "out for delivery", CanonicalCodeFor("OUT FOR DELIVERY"))
	assert.Equal(t, "returned", CanonicalCodeFor("Returned"))
}

func TestIndicators(t *testing.T) {
	assert.Equal(t, Yellow, IndicatorFor("pending"))
	assert.Equal(t, Orange, IndicatorFor("Packing"))
	assert.Equal(t, Blue, IndicatorFor("out for delivery"))
	assert.Equal(t, Green, IndicatorFor("DELIVERED"))
	assert.Equal(t, Red, IndicatorFor("cancelled"))
	assert.Equal(t, Neutral, IndicatorFor("on hold"))
}

func TestSelectedOption(t *testing.T) {
	assert.Equal(t, "Packing", SelectedOption("PACKING"))
	assert.Equal(t, "On Hold", SelectedOption("On Hold"))
}

func TestParse(t *testing.T) {
	s, ok := Parse("Order Placed")
	assert.True(t, ok)
	assert.Equal(t, Pending, s)

	s, ok = Parse("Delivered")
	assert.True(t, ok)
	assert.Equal(t, Delivered, s)

	_, ok = Parse("shipped")
	assert.False(t, ok)
}

func TestOptionsInSelectorOrder(t *testing.T) {
	opts := Options()
	assert.Len(t, opts, 5)
	assert.Equal(t, Option{Label: "Order Placed", Code: Pending, Indicator: Yellow}, opts[0])
	assert.Equal(t, Cancelled, opts[4].Code)
}

func TestIsRegression(t *testing.T) {
	assert.True(t, IsRegression("delivered", "pending"))
	assert.True(t, IsRegression("Cancelled", "packing"))
	assert.False(t, IsRegression("delivered", "Delivered"))
	assert.False(t, IsRegression("pending", "delivered"))
	assert.False(t, IsRegression("packing", "pending"))
}
