// Package term tokenizes product and query text and builds term-frequency vectors.
package term

import (
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Tokenizer normalizes text into lowercase alphanumeric terms.
// The zero value lowercases only; NFKC folding is opt-in.
type Tokenizer struct {
	nfkc bool
}

// Option configures a Tokenizer.
type Option func(*Tokenizer)

// WithUnicodeFolding applies NFKC compatibility folding before lowercasing,
// so full-width and ligature forms reduce to their ASCII equivalents.
func WithUnicodeFolding(enabled bool) Option {
	return func(t *Tokenizer) { t.nfkc = enabled }
}

// NewTokenizer creates a tokenizer.
func NewTokenizer(opts ...Option) Tokenizer {
	var t Tokenizer
	for _, o := range opts {
		o(&t)
	}
	return t
}

// Fold lowercases s (after NFKC folding when enabled).
func (t Tokenizer) Fold(s string) string {
	if t.nfkc {
		s = norm.NFKC.String(s)
	}
	return strings.ToLower(s)
}

// Join concatenates fields with single spaces and folds the result.
func (t Tokenizer) Join(fields ...string) string {
	return t.Fold(strings.Join(fields, " "))
}

// Tokens splits already-folded text on whitespace and strips every character
// outside [a-z0-9]. Tokens that become empty are dropped.
func Tokens(folded string) []string {
	fields := strings.Fields(folded)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if c := Clean(f); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// Clean removes every byte outside [a-z0-9] from s.
func Clean(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Vector maps a term to its occurrence count.
type Vector map[string]int

// Build folds and tokenizes fields and counts the surviving terms.
func (t Tokenizer) Build(fields ...string) Vector {
	v := make(Vector)
	for _, tok := range Tokens(t.Join(fields...)) {
		v[tok]++
	}
	return v
}

// SquaredNorm returns the sum of squared counts.
func (v Vector) SquaredNorm() int64 {
	var sum int64
	for _, c := range v {
		sum += int64(c) * int64(c)
	}
	return sum
}

// Dot returns the dot product of v and o over their shared terms.
func (v Vector) Dot(o Vector) int64 {
	small, large := v, o
	if len(large) < len(small) {
		small, large = large, small
	}
	var dot int64
	for term, c := range small {
		if oc, ok := large[term]; ok {
			dot += int64(c) * int64(oc)
		}
	}
	return dot
}

// Cosine returns the cosine similarity of v and o, or 0 when either vector is empty.
// Integer accumulation keeps Cosine(a, b) == Cosine(b, a) exactly.
func Cosine(v, o Vector) float64 {
	nv, no := v.SquaredNorm(), o.SquaredNorm()
	if nv == 0 || no == 0 {
		return 0
	}
	return float64(v.Dot(o)) / (math.Sqrt(float64(nv)) * math.Sqrt(float64(no)))
}
