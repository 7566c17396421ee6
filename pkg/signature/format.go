package signature

import (
	"math"
	"math/big"
	"strconv"
)

// fixed formats v with prec fractional digits. Values exactly halfway between
// two representable outputs round away from zero; everything else rounds to
// the nearest decimal of the exact binary value.
func fixed(v float64, prec int) string {
	if halfway(v, prec) {
		p := math.Pow10(prec)
		r := math.Floor(math.Abs(v)*p) + 1
		return strconv.FormatFloat(math.Copysign(r/p, v), 'f', prec, 64)
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func halfway(v float64, prec int) bool {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return false
	}
	x := new(big.Float).SetPrec(256).SetFloat64(v)
	x.Mul(x, new(big.Float).SetPrec(256).SetFloat64(2*math.Pow10(prec)))
	if !x.IsInt() {
		return false
	}
	i, _ := x.Int(nil)
	return i.Bit(0) == 1
}
