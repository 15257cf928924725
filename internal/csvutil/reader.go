// Package csvutil parses CSV payloads into header-keyed records.
//
// Feed files arrive from object storage with inconsistent encodings and the
// usual spreadsheet-export artifacts (BOM, formula-escaped cells, stray
// quoting). Parsing repairs the encoding, keys every data row by the cleaned
// header, and drops fully empty rows so downstream code only sees usable
// records.
package csvutil

import (
	"bytes"
	"encoding/csv"
	"strings"
	"unicode/utf8"
)

// Record is a single CSV data row keyed by lowercased header name.
// Values are trimmed; a column missing from the row is absent from the map.
type Record map[string]string

// Has reports whether the column exists in the record, even if empty.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// HasValue reports whether the column exists and holds a non-empty value.
func (r Record) HasValue(key string) bool {
	return r[key] != ""
}

// Keys returns the record's column names. Order is not stable.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	return keys
}

// Parse decodes a CSV payload into records keyed by the first row's headers.
// Rows with every cell empty are skipped. Rows shorter than the header keep
// only the columns they have; extra cells are dropped.
func Parse(data []byte) ([]Record, error) {
	rows, err := parseRows(SanitizeUTF8(data))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = CleanHeader(h)
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		rec := make(Record, len(header))
		for i, key := range header {
			if key == "" || i >= len(row) {
				continue
			}
			rec[key] = CleanCell(row[i])
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRows(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

// CleanHeader normalizes a header cell into a record key: trims whitespace
// and BOM, strips surrounding quotes, and lowercases.
func CleanHeader(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	return strings.ToLower(CleanCell(s))
}

// CleanCell trims a cell and strips spreadsheet export artifacts:
// formula-escaped values (="0042") and surrounding quote characters.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)

	return strings.TrimSpace(s)
}

// SanitizeUTF8 replaces invalid byte sequences with the Unicode replacement
// character so encoding/csv never chokes on mixed-encoding exports.
func SanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
