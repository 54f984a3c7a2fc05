package main

import "fmt"

func main() {
	var t Transformer = NewUpperTransformer()
	fmt.Println(run(t))
}

func run(t Transformer) string {
	return t.Apply("hello")
}

// NewUpperTransformer is a constructor whose return type makes
// UpperTransformer's methods reachable without a direct call edge.
func NewUpperTransformer() *UpperTransformer {
	return &UpperTransformer{}
}
