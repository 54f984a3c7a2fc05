package main

import "strings"

// LowerTransformer is a second concrete implementation of Transformer,
// exercising interface fan-out to more than one implementation.
type LowerTransformer struct{}

func (t *LowerTransformer) Apply(input string) string {
	return strings.ToLower(input)
}

// NewLowerTransformer is a constructor whose return type makes
// LowerTransformer's methods reachable without a direct call edge.
func NewLowerTransformer() *LowerTransformer {
	return &LowerTransformer{}
}
