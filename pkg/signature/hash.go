package signature

import (
	"fmt"
	"math"
	"strconv"
	"unicode/utf16"
)

// HashString returns the string that is hashed for req:
// "{name}-{model}-{theme}-{skillsCount}".
func HashString(req Request) string {
	return req.Name + "-" + req.Model + "-" + req.Theme + "-" + strconv.Itoa(req.SkillsCount)
}

// Hash computes the rolling polynomial hash h = h*31 + c over the UTF-16 code
// units of s. Arithmetic wraps in 32-bit two's complement at every step.
func Hash(s string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = h<<5 - h + int32(c)
	}
	return h
}

// Seed returns |hash| widened to 64 bits, so math.MinInt32 maps to 2^31.
func Seed(hash int32) int64 {
	s := int64(hash)
	if s < 0 {
		s = -s
	}
	return s
}

// ID formats |hash| as exactly 8 upper-case hex characters.
func ID(hash int32) string {
	return fmt.Sprintf("%08X", Seed(hash))
}

// clipID is the first 6 lower-case hex characters of |hash|, unpadded.
func clipID(hash int32) string {
	h := strconv.FormatInt(Seed(hash), 16)
	if len(h) > 6 {
		h = h[:6]
	}
	return h
}

// Source is a deterministic stream of values in [0, 1) keyed by index.
// The zero value is a valid source with seed 0.
type Source struct {
	seed int64
}

// NewSource returns a Source for seed.
func NewSource(seed int64) Source { return Source{seed: seed} }

// At returns frac(sin(seed+index) * 10000).
func (s Source) At(index int) float64 {
	x := math.Sin(float64(s.seed+int64(index))) * 10000
	return x - math.Floor(x)
}
