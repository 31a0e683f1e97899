/*
Package dsl provides a fluent builder for in-memory component trees.

It is the programmatic counterpart of YAML scenarios: useful for tests, demos
and hosts that assemble their pages in Go.

Example usage:

	b := dsl.New("page")
	b.Root().
		Panel("cart").
			Control("qty").Set("value", 1).End().
			Literal("hint").End().
		End().
		Panel("profile").
			Control("name").Set("value", "ada")

	root, err := b.Build()
*/
package dsl
