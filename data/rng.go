package data

import "math/rand"

// defaultRNG backs RandomReplacementBuffer with the package-level math/rand
// source when the caller doesn't supply a deterministic one.
type defaultRNG struct{}

func (defaultRNG) Float64() float64  { return rand.Float64() }
func (defaultRNG) Intn(n int) int    { return rand.Intn(n) }
