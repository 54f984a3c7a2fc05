package main

import "strings"

// UpperTransformer is one concrete implementation of Transformer.
type UpperTransformer struct{}

func (t *UpperTransformer) Apply(input string) string {
	return strings.ToUpper(wrap(input))
}

func wrap(s string) string {
	return "[" + s + "]"
}
