package service

import (
	"math"
	"math/rand/v2"

	"github.com/lucasb-eyer/go-colorful"
)

// OneOverGoldenRatio is the hue step. Adding it modulo 1 spreads
// consecutive hues evenly over [0, 1).
const OneOverGoldenRatio = 0.618033988749895

// NextHue возвращает следующий оттенок после prev, результат всегда в [0, 1)
func NextHue(prev float64) float64 {
	h := math.Mod(prev+OneOverGoldenRatio, 1)
	if h < 0 {
		h += 1
	}
	if h >= 1 {
		h = 0
	}
	return h
}

// ValidHue reports whether h can seed a HueGenerator.
func ValidHue(h float64) bool {
	return !math.IsNaN(h) && h >= 0 && h < 1
}

// HueGenerator хранит предыдущий оттенок и выдает следующий (не потокобезопасен)
type HueGenerator struct {
	current float64
}

// NewHueGenerator создает генератор со случайным начальным оттенком
func NewHueGenerator() *HueGenerator {
	return &HueGenerator{current: rand.Float64()}
}

// NewHueGeneratorFrom создает генератор, продолжающий последовательность после seed.
// Невалидный seed заменяется случайным.
func NewHueGeneratorFrom(seed float64) *HueGenerator {
	if !ValidHue(seed) {
		return NewHueGenerator()
	}
	return &HueGenerator{current: seed}
}

// Next advances the generator and returns the new hue.
func (g *HueGenerator) Next() float64 {
	g.current = NextHue(g.current)
	return g.current
}

// Current returns the last produced hue (or the seed).
func (g *HueGenerator) Current() float64 {
	return g.current
}

// ColorFromHSV переводит HSV (все компоненты в [0, 1]) в hex цвет "#rrggbb"
func ColorFromHSV(h, s, v float64) string {
	return colorful.Hsv(h*360, s, v).Clamped().Hex()
}
