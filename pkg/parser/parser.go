// Package parser decodes the four fixed-width record families delivered by
// the acquirer: CCN/CDN authorization files and LCN/LDN settlement files.
//
// Decoding is purely positional. Text fields are extracted and trimmed;
// numeric fields degrade to nil when the trimmed substring is empty or not
// a number — a malformed amount is an absent amount, never a decode
// failure. The only hard error is a line shorter than the family's
// minimum width. Header and trailer lines must be stripped by the caller.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/acquirex/reconcile/pkg/domain"
)

// Record is one decoded detail line of any family.
type Record interface {
	FileType() domain.FileType
}

// Error reports a line that cannot be decoded at all.
type Error struct {
	Type   domain.FileType
	Width  int
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse %s: %s (line width %d)", e.Type, e.Reason, e.Width)
}

// Minimum widths cover every field the matcher and the accounting close
// depend on; trailing bank-detail columns may be absent.
const (
	minWidthCreditTransaction = 242 // through the unique number
	minWidthDebitTransaction  = 221 // through the unique number
	minWidthCreditLiquidation = 171 // through total installments
	minWidthDebitLiquidation  = 104 // through the unique number
)

// Parse decodes one detail line of the given family.
func Parse(t domain.FileType, line string) (Record, error) {
	switch t {
	case domain.FileCreditTransaction:
		return ParseCreditTransaction(line)
	case domain.FileDebitTransaction:
		return ParseDebitTransaction(line)
	case domain.FileCreditLiquidation:
		return ParseCreditLiquidation(line)
	case domain.FileDebitLiquidation:
		return ParseDebitLiquidation(line)
	}
	return nil, fmt.Errorf("no parser for file type %q: %w", t, domain.ErrValidation)
}

// cut returns the trimmed substring [start, end), tolerating short lines.
func cut(line string, start, end int) string {
	if start >= len(line) {
		return ""
	}
	if end > len(line) {
		end = len(line)
	}
	return strings.TrimSpace(line[start:end])
}

// cutInt decodes a numeric column. Empty or non-numeric content yields
// nil, matching the degrade-to-absent contract.
func cutInt(line string, start, end int) *int64 {
	s := cut(line, start, end)
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n == 0 {
		// Zero is treated as absent, like any other unusable numeric
		// column; the source encodes "no value" as all zeros.
		return nil
	}
	return &n
}

func checkWidth(t domain.FileType, line string, min int) error {
	w := len(strings.TrimRight(line, " \t\r\n"))
	if w < min {
		return &Error{Type: t, Width: w, Reason: "line shorter than family minimum width"}
	}
	return nil
}
