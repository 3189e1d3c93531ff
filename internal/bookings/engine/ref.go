package engine

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
)

const (
	DefaultRefPrefix = "GEM"
	RefLength        = 6

	refAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// largest multiple of len(refAlphabet) that fits in a byte
	refRejectAt = 256 - 256%len(refAlphabet)
)

// RefGenerator produces human-readable booking references such as
// GEM-7QK2ZD. References are not guaranteed unique; the store enforces
// uniqueness and callers retry on collision.
type RefGenerator struct {
	prefix string
	rand   io.Reader
}

func NewRefGenerator(prefix string, r io.Reader) *RefGenerator {
	if prefix == "" {
		prefix = DefaultRefPrefix
	}
	if r == nil {
		r = rand.Reader
	}
	return &RefGenerator{prefix: prefix, rand: r}
}

func (g *RefGenerator) Next() (string, error) {
	out := make([]byte, 0, RefLength)
	buf := make([]byte, RefLength*2)
	for len(out) < RefLength {
		if _, err := io.ReadFull(g.rand, buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		for _, b := range buf {
			// rejection sampling keeps every character equally likely
			if int(b) >= refRejectAt {
				continue
			}
			out = append(out, refAlphabet[int(b)%len(refAlphabet)])
			if len(out) == RefLength {
				break
			}
		}
	}
	return g.prefix + "-" + string(out), nil
}

// Valid reports whether ref has this generator's shape.
func (g *RefGenerator) Valid(ref string) bool {
	suffix, ok := strings.CutPrefix(ref, g.prefix+"-")
	if !ok || len(suffix) != RefLength {
		return false
	}
	for i := 0; i < len(suffix); i++ {
		if strings.IndexByte(refAlphabet, suffix[i]) < 0 {
			return false
		}
	}
	return true
}

// GenerateBookingRef draws a reference from crypto/rand.
func GenerateBookingRef(prefix string) (string, error) {
	return NewRefGenerator(prefix, nil).Next()
}
