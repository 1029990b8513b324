package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func num(t *testing.T, text string) Number {
	t.Helper()
	n, err := ParseNumber(text, 15)
	require.NoError(t, err)
	return n
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"42", "42"},
		{"3.14", "3.14"},
		{"1e3", "1000"},
		{"0.5", "0.5"},
		{"nan", "nan"},
		{"inf", "inf"},
		{"+inf", "inf"},
		{"-inf", "-inf"},
		{"pi", "pi"},
		{"e", "e"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			n := num(t, tt.text)
			assert.Equal(t, tt.want, n.String(15))
		})
	}

	_, err := ParseNumber("bogus", 15)
	assert.Error(t, err)
}

func TestTrailingZeroSuppression(t *testing.T) {
	assert.Equal(t, "2", num(t, "2.0").String(15))
	assert.Equal(t, "2.5", num(t, "2.50").String(15))
}

func TestDivisionByZero(t *testing.T) {
	zero := num(t, "0")
	one := num(t, "1")
	minusOne := num(t, "-1")

	assert.True(t, Div(15, zero, zero).IsNaN())
	assert.Equal(t, 1, Div(15, one, zero).InfSign())
	assert.Equal(t, -1, Div(15, minusOne, zero).InfSign())
}

func TestInfArithmetic(t *testing.T) {
	inf := NumberInf(1)
	one := num(t, "1")

	assert.True(t, Add(15, inf, one).IsInf())
	assert.True(t, Add(15, inf, NumberInf(-1)).IsNaN())
	assert.Equal(t, 0, Div(15, one, inf).Sign())
}

func TestCmpOrdersInfinities(t *testing.T) {
	inf := NumberInf(1)
	ninf := NumberInf(-1)
	one := num(t, "1")

	assert.Equal(t, 1, inf.Cmp(one))
	assert.Equal(t, -1, ninf.Cmp(one))
	assert.Equal(t, 0, inf.Cmp(NumberInf(1)))
	assert.Equal(t, -1, ninf.Cmp(inf))
}

func TestNumberEquality(t *testing.T) {
	assert.True(t, num(t, "2").Equal(num(t, "2.0")))
	assert.False(t, NumberNaN().Equal(NumberNaN()))
	assert.True(t, NumberInf(1).Equal(NumberInf(1)))
	assert.False(t, NumberInf(1).Equal(NumberInf(-1)))
	// -0 compares equal to 0: big.Float's Cmp treats -0 and +0 as equal.
	assert.True(t, Neg(15, num(t, "0")).Equal(num(t, "0")))
}

func TestIsInteger(t *testing.T) {
	assert.True(t, num(t, "5").IsInteger())
	assert.False(t, num(t, "5.5").IsInteger())
	assert.False(t, NumberNaN().IsInteger())
	assert.False(t, NumberInf(1).IsInteger())
}

func TestSignChainCollapsing(t *testing.T) {
	tests := []struct{ in, want string }{
		{"--5", "5"},
		{"-+-5", "5"},
		{"-5", "-5"},
		{"+5", "5"},
		{"5", "5"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeSignChain(tt.in), "input %q", tt.in)
	}
}

func TestPowKeepsConfiguredPrecision(t *testing.T) {
	// 3^40 = 12157665459056928801 exceeds float64's 15-16 significant
	// digits; the integer-exponent path must stay exact.
	r := Pow(50, num(t, "3"), num(t, "40"))
	assert.Equal(t, "12157665459056928801", r.String(50))

	assert.Equal(t, "0.25", Pow(15, num(t, "2"), num(t, "-2")).String(15))
	assert.Equal(t, "1", Pow(15, num(t, "7"), num(t, "0")).String(15))

	// Fractional exponents bridge through float64.
	assert.Equal(t, "2", Pow(15, num(t, "4"), num(t, "0.5")).String(15))
	assert.True(t, Pow(15, NumberNaN(), num(t, "2")).IsNaN())
}

func TestPrecisionRendering(t *testing.T) {
	third := Div(5, num(t, "1"), num(t, "3"))
	assert.Equal(t, "0.33333", third.String(5))
}
