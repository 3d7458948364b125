// Package ticket finds tracking-record references in free-form text such as
// pull request titles, branch names and commit messages.
package ticket

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Digits, word characters and whitespace are matched over all of Unicode,
// so "#123é" is not a reference and "#١٢٣" is ticket 123.
var (
	// "For #12345 some bug fix", "fixes #12345, #67890". The second group
	// holds the word character that rules out a word boundary, if any.
	hashReference = regexp.MustCompile(`#(\p{Nd}+)([\pL\pN_]?)`)
	// "12345 some bug fix", "12345_some_branch_name"
	leadingNumber = regexp.MustCompile(`^(\p{Nd}+)`)
	// "Ticket/12345 some bug fix"
	ticketBranch = regexp.MustCompile(`(?i)^ticket/(\p{Nd}+)[\s\v\p{Z}\x{1c}-\x{1f}\x{85}]`)
)

// ParseReference returns the ticket number referenced by text.
//
// An explicit #N anywhere in the text wins over a number the text starts
// with, which in turn wins over a leading "ticket/N" prefix. When several
// #N references are present only the first one is used. The second return
// value is false when no reference is found.
func ParseReference(text string) (int, bool) {
	for _, match := range hashReference.FindAllStringSubmatch(text, -1) {
		if match[2] == "" {
			return parseDigits(match[1])
		}
	}
	for _, pattern := range []*regexp.Regexp{leadingNumber, ticketBranch} {
		if match := pattern.FindStringSubmatch(text); match != nil {
			return parseDigits(match[1])
		}
	}
	return 0, false
}

// parseDigits converts a run of decimal digits from any script. A run that
// overflows int is reported as no reference.
func parseDigits(digits string) (int, bool) {
	var ascii strings.Builder
	for _, r := range digits {
		v, ok := digitValue(r)
		if !ok {
			return 0, false
		}
		ascii.WriteByte(byte('0' + v))
	}

	id, err := strconv.Atoi(ascii.String())
	if err != nil {
		return 0, false
	}
	return id, true
}

// digitValue relies on every Unicode decimal digit range being made of
// whole 0-9 blocks.
func digitValue(r rune) (int, bool) {
	if r >= '0' && r <= '9' {
		return int(r - '0'), true
	}
	for _, rng := range unicode.Nd.R16 {
		if r >= rune(rng.Lo) && r <= rune(rng.Hi) {
			return int(r-rune(rng.Lo)) % 10, true
		}
	}
	for _, rng := range unicode.Nd.R32 {
		if r >= rune(rng.Lo) && r <= rune(rng.Hi) {
			return int(r-rune(rng.Lo)) % 10, true
		}
	}
	return 0, false
}
