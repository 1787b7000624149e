package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatQuantity(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{900, "900"},
		{9999.4, "9999"},
		{12_500, "12.5K"},
		{2_340_000, "2.34M"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, formatQuantity(c.in), "%v", c.in)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "tower", truncate("tower", 8))
	assert.Equal(t, "resid~", truncate("residential", 6))
}
