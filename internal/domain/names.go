package domain

import "strings"

const accountAlphabet = "rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz"

// IsValidAccount checks the shape of a classic ledger address: an "r"
// prefix followed by base58 characters, 25 to 35 in total. The checksum is
// not verified.
func IsValidAccount(account string) bool {
	if len(account) < 25 || len(account) > 35 {
		return false
	}
	if account[0] != 'r' {
		return false
	}
	for _, ch := range account {
		if !strings.ContainsRune(accountAlphabet, ch) {
			return false
		}
	}
	return true
}
