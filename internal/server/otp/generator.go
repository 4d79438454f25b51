// Package otp generates one-time codes and dispatches them to users.
package otp

import (
	"crypto/rand"
	"errors"
	"io"
	"math/big"
	"strings"
	"unicode/utf8"
)

var (
	ErrEmptyAlphabet = errors.New("otp alphabet must not be empty")
	ErrInvalidLength = errors.New("otp length must be positive")
)

// Generate returns a code of length symbols, each drawn independently and
// uniformly from alphabet using a cryptographically secure source.
func Generate(alphabet string, length int) (string, error) {
	return generate(rand.Reader, []rune(alphabet), length)
}

func generate(r io.Reader, symbols []rune, length int) (string, error) {
	if len(symbols) == 0 {
		return "", ErrEmptyAlphabet
	}
	if length <= 0 {
		return "", ErrInvalidLength
	}

	size := big.NewInt(int64(len(symbols)))

	var b strings.Builder
	b.Grow(length)
	for range length {
		n, err := rand.Int(r, size)
		if err != nil {
			return "", err
		}
		b.WriteRune(symbols[n.Int64()])
	}
	return b.String(), nil
}

// MaxBytes returns the byte length of the longest code Generate can return
// for alphabet and length.
func MaxBytes(alphabet string, length int) int {
	return maxBytes([]rune(alphabet), length)
}

func maxBytes(symbols []rune, length int) int {
	widest := 0
	for _, r := range symbols {
		widest = max(widest, utf8.RuneLen(r))
	}
	return widest * length
}

// Generator produces codes with a fixed alphabet and length.
type Generator struct {
	symbols []rune
	length  int
	rand    io.Reader
}

// NewGenerator validates alphabet and length once so Generate cannot fail on
// configuration.
func NewGenerator(alphabet string, length int) (*Generator, error) {
	symbols := []rune(alphabet)
	if len(symbols) == 0 {
		return nil, ErrEmptyAlphabet
	}
	if length <= 0 {
		return nil, ErrInvalidLength
	}
	return &Generator{symbols: symbols, length: length, rand: rand.Reader}, nil
}

// MaxBytes returns the byte length of the longest code g can produce.
func (g *Generator) MaxBytes() int {
	return maxBytes(g.symbols, g.length)
}

// Generate returns a fresh code.
func (g *Generator) Generate() (string, error) {
	return generate(g.rand, g.symbols, g.length)
}
