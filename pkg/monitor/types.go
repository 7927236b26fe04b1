package monitor

// PatternMatcher reports which pattern indexes match a line.
type PatternMatcher interface {
	// Match returns matching indexes in ascending order.
	Match(text string) []int
	// Expr returns the source expression of the pattern at index.
	Expr(index int) string
}
