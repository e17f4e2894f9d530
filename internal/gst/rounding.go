package gst

// RoundHalfUp rounds to a whole rupee, ties away from zero (100.50 -> 101).
// Only the grand total is ever passed through here.
func RoundHalfUp(amount Money) Money {
	return amount.Round(0)
}
