package core

import (
	"github.com/pion/randutil"

	"github.com/dkeye/chatrelay/internal/domain"
	"github.com/dkeye/chatrelay/internal/metrics"
)

const (
	CodeAlphabet      = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	DefaultCodeLength = 4
)

// RandomSource yields length characters picked uniformly from runes.
type RandomSource interface {
	GenerateString(n int, runes string) string
}

// CodeGenerator produces room codes that are not live in the registry.
type CodeGenerator struct {
	src    RandomSource
	length int
}

func NewCodeGenerator(length int, src RandomSource) *CodeGenerator {
	if length <= 0 {
		length = DefaultCodeLength
	}
	if src == nil {
		src = randutil.NewMathRandomGenerator()
	}
	return &CodeGenerator{src: src, length: length}
}

func (g *CodeGenerator) Length() int { return g.length }

// Generate retries until taken reports the candidate free. There is no retry
// cap: 26^4 codes is far beyond the number of rooms this process holds.
func (g *CodeGenerator) Generate(taken func(domain.RoomCode) bool) domain.RoomCode {
	for {
		code := domain.RoomCode(g.src.GenerateString(g.length, CodeAlphabet))
		if !taken(code) {
			return code
		}
		metrics.CodeCollisions.Inc()
	}
}
