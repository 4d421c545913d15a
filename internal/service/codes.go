package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	// DefaultCodePrefix starts every generated group code unless configured otherwise.
	DefaultCodePrefix = "SPESE"

	codeAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength     = 8
	maxCodeRetries = 5
)

// codeGenerator produces human-shareable group codes such as "SPESE-7K2M9QXA".
type codeGenerator struct {
	prefix string
}

func newCodeGenerator(prefix string) *codeGenerator {
	prefix = strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(prefix)), "-")
	if prefix == "" {
		prefix = DefaultCodePrefix
	}
	return &codeGenerator{prefix: prefix}
}

func (g *codeGenerator) next() (string, error) {
	var b strings.Builder
	b.Grow(len(g.prefix) + 1 + codeLength)
	b.WriteString(g.prefix)
	b.WriteByte('-')

	limit := big.NewInt(int64(len(codeAlphabet)))
	for range codeLength {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to generate group code: %w", err)
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}
