package rounding

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRound2HalfUp(t *testing.T) {
	cases := map[string]string{
		"3.145":  "3.15",
		"3.144":  "3.14",
		"0.005":  "0.01",
		"8":      "8",
		"2.675":  "2.68",
		"9.9999": "10",
	}
	for in, want := range cases {
		got := Round2(decimal.RequireFromString(in))
		assert.True(t, got.Equal(decimal.RequireFromString(want)), "round2(%s) = %s, want %s", in, got, want)
	}
}

func TestRound2Idempotent(t *testing.T) {
	for _, raw := range []string{"0", "1.005", "3.145", "7.3333333", "99.995", "0.0049"} {
		once := Round2(decimal.RequireFromString(raw))
		assert.True(t, once.Equal(Round2(once)), raw)
	}
}

func TestRound3(t *testing.T) {
	assert.Equal(t, "0.961", Round3(decimal.RequireFromString("0.9605")).String())
	assert.Equal(t, "0.8", Round3(decimal.RequireFromString("0.8")).String())
}

func TestFloat2(t *testing.T) {
	assert.True(t, Float2(8.333333).Equal(decimal.RequireFromString("8.33")))
	assert.True(t, Float2(3.145).Equal(decimal.RequireFromString("3.15")))
}

func TestClamp(t *testing.T) {
	assert.True(t, Clamp(decimal.NewFromInt(120), Zero, Hundred).Equal(Hundred))
	assert.True(t, Clamp(decimal.NewFromInt(-3), Zero, Hundred).Equal(Zero))
	assert.True(t, Clamp(decimal.NewFromInt(42), Zero, Hundred).Equal(decimal.NewFromInt(42)))
}
