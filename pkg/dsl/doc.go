/*
Package dsl provides a fluent builder for constructing measurement methods in Go.

It is an alternative to writing method documents in YAML or JSON, useful for
generated methods, tests and IDE-assisted authoring.

Example usage:

	b := dsl.New("29Si").Name("sideband")
	b.Dimension(2046, 25000).Offset(-10000).
		Event().Field(14.1).Spin(1500, method.MagicAngle)
	m, err := b.Build()

	// Two events sharing one dimension:
	mq := dsl.New("23Na")
	mq.Dimension(512, 5e4).
		Event().Fraction(0.5).Select(method.FunctionalP, 0, []int{-3}).
		Event().Fraction(0.5).Select(method.FunctionalP, 0, []int{-1})
	m2, err := mq.Build()
*/
package dsl
