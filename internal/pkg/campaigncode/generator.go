package campaigncode

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
)

const (
	Length      = 8
	MaxAttempts = 5

	// 32 symbols without 0/O and 1/I so codes survive being read aloud or typed from a caption.
	Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

var ErrConflictExhausted = errors.New("campaign code conflict exhausted")

// ReserveFunc atomically claims a code, reporting false when it already exists.
// Implementations must use an insert-if-absent write.
type ReserveFunc func(ctx context.Context, code string) (bool, error)

type Generator struct {
	Source      func() (string, error)
	MaxAttempts int
}

func NewGenerator() *Generator {
	return &Generator{Source: Random, MaxAttempts: MaxAttempts}
}

// Generate returns a reserved code or ErrConflictExhausted after MaxAttempts collisions.
func (g *Generator) Generate(ctx context.Context, reserve ReserveFunc) (string, error) {
	attempts := g.MaxAttempts
	if attempts <= 0 {
		attempts = MaxAttempts
	}
	source := g.Source
	if source == nil {
		source = Random
	}

	for i := 0; i < attempts; i++ {
		code, err := source()
		if err != nil {
			return "", err
		}

		reserved, err := reserve(ctx, code)
		if err != nil {
			return "", fmt.Errorf("reserve campaign code: %w", err)
		}
		if reserved {
			return code, nil
		}
	}

	return "", ErrConflictExhausted
}

func Random() (string, error) {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = Alphabet[int(b)%len(Alphabet)]
	}
	return string(buf), nil
}

// Normalize upper-cases code and reports whether it has the shape Random produces.
func Normalize(code string) (string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != Length {
		return "", false
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(Alphabet, code[i]) < 0 {
			return "", false
		}
	}
	return code, true
}
