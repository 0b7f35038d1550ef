// Package slug generates public identifiers for published invitations.
//
// A slug is "inv-" followed by six random characters from [a-z0-9] and the
// base-36 encoding of the current Unix time in milliseconds. Generation does
// not check uniqueness; the invitation repositories enforce that with a
// unique index and report collisions as storeutil.ErrDuplicateSlug.
package slug

import (
	"crypto/rand"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Prefix starts every generated slug.
const Prefix = "inv-"

// RandomLength is the number of random characters after the prefix.
const RandomLength = 6

const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// maxUnbiased is the largest multiple of len(alphabet) that fits in a byte.
// Bytes at or above it are discarded so every character is equally likely.
const maxUnbiased = 256 - 256%len(alphabet)

// Generator produces slugs from a random source and a clock.
type Generator struct {
	rand io.Reader
	now  func() time.Time
}

// New returns a Generator backed by crypto/rand and the wall clock.
func New() *Generator {
	return &Generator{rand: rand.Reader, now: time.Now}
}

// NewWithSource returns a Generator with an explicit random source and clock.
// Tests use it to advance virtual time.
func NewWithSource(r io.Reader, now func() time.Time) *Generator {
	if r == nil {
		r = rand.Reader
	}
	if now == nil {
		now = time.Now
	}
	return &Generator{rand: r, now: now}
}

// Generate returns a new slug.
func (g *Generator) Generate() (string, error) {
	var b strings.Builder
	b.Grow(len(Prefix) + RandomLength + 9)
	b.WriteString(Prefix)

	buf := make([]byte, RandomLength*2)
	n := 0
	for n < RandomLength {
		if _, err := io.ReadFull(g.rand, buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, c := range buf {
			if int(c) >= maxUnbiased {
				continue
			}
			b.WriteByte(alphabet[int(c)%len(alphabet)])
			n++
			if n == RandomLength {
				break
			}
		}
	}

	b.WriteString(strconv.FormatInt(g.now().UnixMilli(), 36))
	return b.String(), nil
}

var defaultGenerator = New()

// Generate returns a new slug from the default generator.
func Generate() (string, error) {
	return defaultGenerator.Generate()
}

// Valid reports whether s has the shape of a generated slug: the prefix
// followed by more than RandomLength characters from [a-z0-9].
func Valid(s string) bool {
	rest, ok := strings.CutPrefix(s, Prefix)
	if !ok || len(rest) <= RandomLength {
		return false
	}
	for i := 0; i < len(rest); i++ {
		if !strings.ContainsRune(alphabet, rune(rest[i])) {
			return false
		}
	}
	return true
}
