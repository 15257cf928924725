package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// Value sanitizers for raw CSV fields. Feeds are dirty: numeric columns
// carry stray suffixes, date columns mix m/d/y and ISO forms, and "null" is
// spelled half a dozen ways. Coercion is deliberately non-fatal: a value
// that cannot be read becomes NULL rather than failing the row.

// IsNullLiteral reports whether a raw value denotes a missing field:
// empty, whitespace-only, or the literal strings "NULL"/"null".
// Mixed-case forms like "Null" are real values and pass through.
func IsNullLiteral(v string) bool {
	if strings.TrimSpace(v) == "" {
		return true
	}
	return v == "NULL" || v == "null"
}

// NormalizeEmpty maps null-literal values to an invalid (NULL) pgtype.Text
// and passes every other value through unchanged.
func NormalizeEmpty(v string) pgtype.Text {
	if IsNullLiteral(v) {
		return pgtype.Text{}
	}
	return pgtype.Text{String: v, Valid: true}
}

// NormalizeInt parses the leading integer prefix of a value: "007" is 7,
// "12B" is 12, "abc" and "" are NULL. Malformed numerics are dropped to
// NULL, never surfaced as row errors.
func NormalizeInt(v string) pgtype.Int4 {
	t := NormalizeEmpty(v)
	if !t.Valid {
		return pgtype.Int4{}
	}

	s := strings.TrimSpace(t.String)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		digits++
	}
	if digits == end {
		return pgtype.Int4{}
	}

	n, err := strconv.ParseInt(s[:digits], 10, 32)
	if err != nil {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(n), Valid: true}
}

// NormalizeDate rewrites slash-separated dates, read as month/day/year, into
// year-month-day with zero-padded components: "3/4/2024" becomes
// "2024-03-04". Anything else passes through untouched; no calendar
// validation is applied, so an unparseable value is left for the store to
// reject. Empty values become NULL.
func NormalizeDate(v string) pgtype.Text {
	if strings.TrimSpace(v) == "" {
		return pgtype.Text{}
	}

	if strings.Contains(v, "/") {
		parts := strings.Split(v, "/")
		if len(parts) == 3 && parts[0] != "" && parts[1] != "" && parts[2] != "" {
			return pgtype.Text{
				String: fmt.Sprintf("%s-%s-%s", parts[2], pad2(parts[0]), pad2(parts[1])),
				Valid:  true,
			}
		}
	}

	return pgtype.Text{String: v, Valid: true}
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
