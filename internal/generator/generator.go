// Package generator picks target digits for drill prompts.
package generator

import (
	"math/rand"
	"time"
)

const digitCount = 10

// Generator produces randomized target digits.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Digit selects a digit uniformly.
func (g *Generator) Digit() int {
	return g.rnd.Intn(digitCount)
}

// WeightedDigit selects a digit with a bias toward weak digits. Each weak
// digit weighs 1+factor, every other digit weighs 1.
func (g *Generator) WeightedDigit(weak map[int]struct{}, factor float64) int {
	if len(weak) == 0 || factor <= 0 {
		return g.Digit()
	}
	var weights [digitCount]float64
	total := 0.0
	for d := range weights {
		w := 1.0
		if _, ok := weak[d]; ok {
			w += factor
		}
		weights[d] = w
		total += w
	}

	r := g.rnd.Float64() * total
	acc := 0.0
	for d, w := range weights {
		acc += w
		if r < acc {
			return d
		}
	}
	return digitCount - 1
}
