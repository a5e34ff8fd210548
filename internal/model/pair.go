package model

import "strings"

// PairKey returns the canonical key for the undirected pair (a, b). Both
// directed records of a friendship share one event stream keyed this way.
func PairKey(a, b string) string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return a + "|" + b
}
