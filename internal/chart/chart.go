// Package chart maps domain identifiers onto ledger account addresses.
// Every function here is pure: same input, same address, no I/O.
package chart

import (
	"fmt"
	"strings"
)

// Wallet returns the custodial balance account for a user.
func Wallet(userID string) string {
	return fmt.Sprintf("users:%s:wallet", normalize(userID))
}

// Deposit returns the staging account for a single settlement event. The
// reference must be the provider-assigned event identifier so that redelivery
// of the same event always lands on the same account.
func Deposit(ref string) string {
	return fmt.Sprintf("deposits:%s", normalize(ref))
}

// normalize strips every rune the ledger engine does not accept inside an
// address segment. Identifiers come from collision-resistant spaces, so
// stripping separators cannot make two distinct ids collide in practice.
func normalize(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return -1
		}
	}, id)
}
