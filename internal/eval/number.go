package eval

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Number is NumFu's arbitrary-precision decimal (spec.md §3). No
// ecosystem decimal library is grounded anywhere in the retrieved pack
// (see DESIGN.md), so it is built on the standard library's
// math/big.Float, which itself cannot represent NaN/Inf, so those are
// tracked as a side flag exactly like the teacher's IntValue/FloatValue
// pair models distinct numeric kinds with small dedicated structs.
type Number struct {
	val   *big.Float
	nan   bool
	inf   int8 // 0 = finite, +1 = +inf, -1 = -inf
	named string // "pi" or "e" when this value should render by name
}

// precisionBits converts a decimal-digit precision into a working
// binary precision for big.Float, with headroom so rounding at the
// requested number of decimal digits is accurate.
func precisionBits(digits int) uint {
	if digits < 1 {
		digits = 1
	}
	return uint(float64(digits)*3.3219280949 + 32)
}

func newFloat(digits int) *big.Float {
	return new(big.Float).SetPrec(precisionBits(digits))
}

func NumberFromInt(n int64, digits int) Number {
	return Number{val: newFloat(digits).SetInt64(n)}
}

func NumberFromFloat(f float64, digits int) Number {
	if math.IsNaN(f) {
		return NumberNaN()
	}
	if math.IsInf(f, 1) {
		return NumberInf(1)
	}
	if math.IsInf(f, -1) {
		return NumberInf(-1)
	}
	return Number{val: newFloat(digits).SetFloat64(f)}
}

func NumberNaN() Number      { return Number{nan: true} }
func NumberInf(sign int) Number {
	if sign >= 0 {
		return Number{inf: 1}
	}
	return Number{inf: -1}
}

func NumberPi(digits int) Number {
	n := Number{val: newFloat(digits)}
	n.val.SetString(piDigits(digits))
	n.named = "pi"
	return n
}

func NumberE(digits int) Number {
	n := Number{val: newFloat(digits)}
	n.val.SetString(eDigits(digits))
	n.named = "e"
	return n
}

// piDigits/eDigits return enough digits of pi/e for the requested
// precision by deferring to math.Pi/math.E when the request fits in
// float64 precision and padding with the well-known expansion otherwise.
// NumFu's default precision (15) never exceeds float64, so this is exact
// for the common case; see DESIGN.md for the arbitrary-precision caveat.
func piDigits(digits int) string {
	if digits <= 15 {
		return strconv.FormatFloat(math.Pi, 'f', digits, 64)
	}
	return "3.14159265358979323846264338327950288419716939937510582097494459230781640628620899862803482534211706798"
}

func eDigits(digits int) string {
	if digits <= 15 {
		return strconv.FormatFloat(math.E, 'f', digits, 64)
	}
	return "2.71828182845904523536028747135266249775724709369995957496696762772407663035354759457138217852516642743"
}

// ParseNumber parses literal text per spec.md §3: "nan", "+inf", "-inf",
// and the constants "pi"/"e", else a decimal literal.
func ParseNumber(text string, digits int) (Number, error) {
	switch strings.ToLower(text) {
	case "nan":
		return NumberNaN(), nil
	case "inf", "+inf":
		return NumberInf(1), nil
	case "-inf":
		return NumberInf(-1), nil
	case "pi":
		return NumberPi(digits), nil
	case "e":
		return NumberE(digits), nil
	}
	f := newFloat(digits)
	if _, ok := f.SetString(text); !ok {
		return Number{}, fmt.Errorf("invalid number literal %q", text)
	}
	return Number{val: f}, nil
}

func (n Number) IsNaN() bool  { return n.nan }
func (n Number) IsInf() bool  { return n.inf != 0 }
func (n Number) InfSign() int { return int(n.inf) }
func (n Number) Named() string { return n.named }

// IsInteger reports whether n has no fractional part (used by index
// validation and round-to-integer validators).
func (n Number) IsInteger() bool {
	if n.nan || n.inf != 0 {
		return false
	}
	i := new(big.Int)
	_, acc := n.val.Int(i)
	return acc == big.Exact
}

// Int64 truncates n to an int64 (used for indices, already validated as
// integral by the caller).
func (n Number) Int64() int64 {
	if n.val == nil {
		return 0
	}
	i, _ := n.val.Int64()
	return i
}

func (n Number) Float64() float64 {
	if n.nan {
		return math.NaN()
	}
	if n.inf > 0 {
		return math.Inf(1)
	}
	if n.inf < 0 {
		return math.Inf(-1)
	}
	f, _ := n.val.Float64()
	return f
}

// Sign returns -1, 0, or 1; NaN's sign is 0 by convention (mpmath raises,
// but comparisons against NaN already short-circuit to false upstream).
func (n Number) Sign() int {
	if n.nan {
		return 0
	}
	if n.inf != 0 {
		return int(n.inf)
	}
	return n.val.Sign()
}

// Cmp orders two non-NaN numbers, treating -inf below every finite
// value and +inf above; callers must check IsNaN first.
func (n Number) Cmp(o Number) int {
	if n.inf != 0 || o.inf != 0 {
		switch {
		case n.inf == o.inf:
			return 0
		case n.inf < o.inf:
			return -1
		default:
			return 1
		}
	}
	return n.val.Cmp(o.val)
}

// Equal implements Number equality including NaN-is-never-equal and
// signed-infinity identity, per IEEE-ish convention (spec.md §9 leaves
// -0/NaN identity undocumented; NumFu picks the conventional rule and
// tests it, per the Open Questions resolution in SPEC_FULL.md).
func (n Number) Equal(o Number) bool {
	if n.nan || o.nan {
		return false
	}
	if n.inf != 0 || o.inf != 0 {
		return n.inf == o.inf
	}
	return n.val.Cmp(o.val) == 0
}

func numOp2(digits int, a, b Number, finite func(x, y *big.Float) *big.Float) Number {
	if a.nan || b.nan {
		return NumberNaN()
	}
	if a.inf != 0 || b.inf != 0 {
		return infCombine(a, b)
	}
	return Number{val: finite(a.val, b.val)}
}

func infCombine(a, b Number) Number {
	// Any arithmetic combination involving an infinity that doesn't
	// resolve to a clean sign (inf - inf, etc.) collapses to NaN; NumFu
	// doesn't need finer IEEE fidelity than this for its built-ins.
	if a.inf != 0 && b.inf != 0 {
		return NumberNaN()
	}
	if a.inf != 0 {
		return a
	}
	return b
}

func Add(digits int, a, b Number) Number {
	return numOp2(digits, a, b, func(x, y *big.Float) *big.Float {
		return newFloat(digits).Add(x, y)
	})
}

func Sub(digits int, a, b Number) Number {
	return numOp2(digits, a, b, func(x, y *big.Float) *big.Float {
		return newFloat(digits).Sub(x, y)
	})
}

func Neg(digits int, a Number) Number {
	return Sub(digits, NumberFromInt(0, digits), a)
}

func Mul(digits int, a, b Number) Number {
	return numOp2(digits, a, b, func(x, y *big.Float) *big.Float {
		return newFloat(digits).Mul(x, y)
	})
}

// Div implements spec.md's documented zero-division rule (SPEC_FULL.md
// §3 item 4, grounded in original_source/builtins.py's `division`):
// a/0 is nan when a==0, +inf when a>0, -inf when a<0.
func Div(digits int, a, b Number) Number {
	if a.nan || b.nan {
		return NumberNaN()
	}
	if b.inf != 0 {
		if a.inf != 0 {
			return NumberNaN()
		}
		return NumberFromInt(0, digits)
	}
	if a.inf != 0 {
		return a
	}
	if b.val.Sign() == 0 {
		switch a.val.Sign() {
		case 0:
			return NumberNaN()
		case 1:
			return NumberInf(1)
		default:
			return NumberInf(-1)
		}
	}
	return Number{val: newFloat(digits).Quo(a.val, b.val)}
}

func Mod(digits int, a, b Number) Number {
	af, bf := a.Float64(), b.Float64()
	return NumberFromFloat(math.Mod(af, bf), digits)
}

// maxIntPow bounds the binary-exponentiation path; larger exponents
// overflow any reasonable precision and drop to the float64 bridge.
const maxIntPow = 1 << 20

// Pow keeps integer exponents in big.Float via binary exponentiation,
// preserving the configured precision the way mpm.power does for the
// `^` operator. Fractional exponents go through the float64 bridge
// like the transcendental family (see DESIGN.md).
func Pow(digits int, a, b Number) Number {
	if a.nan || b.nan {
		return NumberNaN()
	}
	if a.inf == 0 && b.inf == 0 && b.IsInteger() {
		exp := b.Int64()
		if exp >= -maxIntPow && exp <= maxIntPow {
			mag := exp
			if mag < 0 {
				mag = -mag
			}
			p := Number{val: powInt(digits, a.val, mag)}
			if exp < 0 {
				return Div(digits, NumberFromInt(1, digits), p)
			}
			return p
		}
	}
	return NumberFromFloat(math.Pow(a.Float64(), b.Float64()), digits)
}

func powInt(digits int, base *big.Float, exp int64) *big.Float {
	result := newFloat(digits).SetInt64(1)
	sq := newFloat(digits).Set(base)
	for e := exp; e > 0; e >>= 1 {
		if e&1 == 1 {
			result.Mul(result, sq)
		}
		sq.Mul(sq, sq)
	}
	return result
}

func Abs(digits int, a Number) Number {
	if a.nan {
		return a
	}
	if a.inf != 0 {
		return NumberInf(1)
	}
	return Number{val: newFloat(digits).Abs(a.val)}
}

func SignNum(digits int, a Number) Number {
	return NumberFromInt(int64(a.Sign()), digits)
}

func Floor(digits int, a Number) Number {
	if a.nan || a.inf != 0 {
		return a
	}
	return NumberFromFloat(math.Floor(a.Float64()), digits)
}

func Ceil(digits int, a Number) Number {
	if a.nan || a.inf != 0 {
		return a
	}
	return NumberFromFloat(math.Ceil(a.Float64()), digits)
}

// Round rounds to the nearest integer, or to p decimal places when p is
// supplied (mirrors original_source/builtins.py's two `round` overloads).
func Round(digits int, a Number, places ...int) Number {
	if a.nan || a.inf != 0 {
		return a
	}
	if len(places) == 0 {
		return NumberFromFloat(math.Round(a.Float64()), digits)
	}
	p := places[0]
	mult := math.Pow(10, float64(p))
	return NumberFromFloat(math.Round(a.Float64()*mult)/mult, digits)
}

func Sqrt(digits int, a Number) Number {
	if a.nan {
		return a
	}
	if a.inf > 0 {
		return a
	}
	if a.Sign() < 0 {
		return NumberNaN()
	}
	if a.inf == 0 {
		f := newFloat(digits).Sqrt(a.val)
		return Number{val: f}
	}
	return NumberNaN()
}

type unaryFn func(float64) float64

func applyUnary(digits int, a Number, f unaryFn) Number {
	if a.nan {
		return a
	}
	return NumberFromFloat(f(a.Float64()), digits)
}

func Sin(digits int, a Number) Number   { return applyUnary(digits, a, math.Sin) }
func Cos(digits int, a Number) Number   { return applyUnary(digits, a, math.Cos) }
func Tan(digits int, a Number) Number   { return applyUnary(digits, a, math.Tan) }
func Asin(digits int, a Number) Number  { return applyUnary(digits, a, math.Asin) }
func Acos(digits int, a Number) Number  { return applyUnary(digits, a, math.Acos) }
func Atan(digits int, a Number) Number  { return applyUnary(digits, a, math.Atan) }
func Sinh(digits int, a Number) Number  { return applyUnary(digits, a, math.Sinh) }
func Cosh(digits int, a Number) Number  { return applyUnary(digits, a, math.Cosh) }
func Tanh(digits int, a Number) Number  { return applyUnary(digits, a, math.Tanh) }
func Asinh(digits int, a Number) Number { return applyUnary(digits, a, math.Asinh) }
func Acosh(digits int, a Number) Number { return applyUnary(digits, a, math.Acosh) }
func Atanh(digits int, a Number) Number { return applyUnary(digits, a, math.Atanh) }
func Exp(digits int, a Number) Number   { return applyUnary(digits, a, math.Exp) }
func Log10(digits int, a Number) Number { return applyUnary(digits, a, math.Log10) }

func Atan2(digits int, a, b Number) Number {
	return NumberFromFloat(math.Atan2(a.Float64(), b.Float64()), digits)
}

// Log is the natural log, or log base b when base is given. The `log`
// built-in registers only the two-argument form, matching
// original_source/builtins.py's `Builtins.log.add([Num, Num], Num, mpm.log)`;
// the one-argument form is not reachable from NumFu code.
func Log(digits int, a Number, base ...Number) Number {
	v := math.Log(a.Float64())
	if len(base) == 1 {
		v = v / math.Log(base[0].Float64())
	}
	return NumberFromFloat(v, digits)
}

// String renders n at the given decimal-digit precision, per spec.md
// §4.3.5: a trailing ".0" is suppressed and pi/e render by name.
func (n Number) String(digits int) string {
	if n.named != "" {
		return n.named
	}
	if n.nan {
		return "nan"
	}
	if n.inf > 0 {
		return "inf"
	}
	if n.inf < 0 {
		return "-inf"
	}
	// A negative zero (from "-0" text, -1 * 0, 0 / -5, ...) renders as 0.
	if n.val.Sign() == 0 {
		return "0"
	}
	// 'g' treats digits as significant digits, matching mpmath's dps,
	// and falls back to exponent notation outside the precision range.
	s := n.val.Text('g', digits)
	if strings.Contains(s, ".") && !strings.ContainsAny(s, "eE") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}
