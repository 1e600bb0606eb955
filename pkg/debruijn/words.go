package debruijn

import "strings"

// printable is the symbol table used by Format and Parse: decimal digits,
// then lowercase, then uppercase letters, indexed by symbol value.
const printable = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// MaxPrintableAlphabet is the largest alphabet size that Format and Parse
// can represent, one character per symbol.
const MaxPrintableAlphabet = len(printable)

// Words enumerates all k^n words of length n over the alphabet {0, ..., k-1}
// in ascending lexicographic order. The result is deterministic: the word at
// index i is the base-k representation of i, left-padded to n digits.
func Words(k, n int) ([][]int, error) {
	if k < 1 {
		return nil, ErrInvalidAlphabet
	}
	if n < 1 {
		return nil, ErrInvalidOrder
	}
	total := intPow(k, n)
	words := make([][]int, total)
	for i := range total {
		word := make([]int, n)
		rest := i
		for pos := n - 1; pos >= 0; pos-- {
			word[pos] = rest % k
			rest /= k
		}
		words[i] = word
	}
	return words, nil
}

// Format renders a symbol sequence as a compact string, one printable
// character per symbol. It fails with ErrAlphabetTooLarge when a symbol
// exceeds MaxPrintableAlphabet-1 and with ErrInvalidArgument when a symbol
// is negative.
func Format(seq []int) (string, error) {
	var b strings.Builder
	b.Grow(len(seq))
	for _, s := range seq {
		if s < 0 {
			return "", ErrInvalidArgument
		}
		if s >= MaxPrintableAlphabet {
			return "", ErrAlphabetTooLarge
		}
		b.WriteByte(printable[s])
	}
	return b.String(), nil
}

// Parse is the inverse of Format: it maps each character of s back to its
// symbol value. Characters outside the printable table fail with
// ErrNotPrintable.
func Parse(s string) ([]int, error) {
	seq := make([]int, 0, len(s))
	for _, r := range s {
		i := strings.IndexRune(printable, r)
		if i < 0 {
			return nil, ErrNotPrintable
		}
		seq = append(seq, i)
	}
	return seq, nil
}

// intPow computes base^exp for small non-negative exponents.
func intPow(base, exp int) int {
	result := 1
	for range exp {
		result *= base
	}
	return result
}
