// Package moderation approves or rejects message content before it reaches
// the ledger.
package moderation

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/gizetz/gbairai/internal/apperr"
)

type Policy interface {
	// Review returns the content to store, or a validation error.
	Review(content string) (string, error)
}

// Basic normalizes content to NFC, trims surrounding whitespace and caps
// the length in runes. Zero MaxLength disables the cap.
type Basic struct {
	MaxLength int
}

func (b Basic) Review(content string) (string, error) {
	content = strings.TrimSpace(norm.NFC.String(content))
	if content == "" {
		return "", apperr.ErrEmptyContent
	}
	if b.MaxLength > 0 && utf8.RuneCountInString(content) > b.MaxLength {
		return "", apperr.ErrContentTooLong
	}
	return strings.Map(dropControl, content), nil
}

// dropControl removes control characters other than line breaks and tabs.
func dropControl(r rune) rune {
	if r == '\n' || r == '\t' {
		return r
	}
	if unicode.IsControl(r) {
		return -1
	}
	return r
}
