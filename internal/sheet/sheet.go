// Package sheet parses spreadsheet CSV exports into loosely typed records.
// The source is a human-edited Google Sheet, so the parser is deliberately
// forgiving: it strips a leading BOM, accepts LF and CRLF line endings,
// handles RFC4180 quoting, and pads short rows instead of failing.
package sheet

import "strings"

// Record is one data row of the sheet: a header-to-value mapping that
// preserves the original header casing and column order.
type Record struct {
	headers []string
	values  map[string]string
}

// Headers returns the column names in source order.
func (r Record) Headers() []string {
	return r.headers
}

// Get looks up a value by header name, case-insensitively.
// The second return value distinguishes a missing column from a column
// that is present but empty.
func (r Record) Get(name string) (string, bool) {
	if v, ok := r.values[name]; ok {
		return v, true
	}
	// Walk headers in column order so duplicate headers differing only
	// by case resolve to the leftmost column, deterministically.
	for _, h := range r.headers {
		if strings.EqualFold(h, name) {
			return r.values[h], true
		}
	}
	return "", false
}

// First tries the given header names in priority order and returns the
// first non-empty value. Callers use it to express alias chains such as
// "Evento" then "Nome".
func (r Record) First(names ...string) string {
	for _, name := range names {
		if v, ok := r.Get(name); ok && v != "" {
			return v
		}
	}
	return ""
}

// Parse converts raw CSV text into records. The first line is the header
// row; with fewer than two lines the result is empty. Rows shorter than
// the header are padded with empty strings, extra cells are dropped, and
// blank lines produce no record. Parse never fails: malformed rows
// degrade to whatever fields could be tokenized.
func Parse(text string) []Record {
	text = strings.TrimPrefix(text, "\uFEFF")

	lines := splitLines(text)
	if len(lines) < 2 {
		return nil
	}

	headers := splitFields(lines[0])

	records := make([]Record, 0, len(lines)-1)
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := splitFields(line)
		if len(fields) > len(headers) {
			fields = fields[:len(headers)]
		}

		values := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(fields) {
				values[h] = fields[i]
			} else {
				values[h] = ""
			}
		}
		records = append(records, Record{headers: headers, values: values})
	}
	return records
}

// splitLines splits text into logical CSV lines. A newline inside a
// quoted field belongs to the field, not the line structure. A quote
// opens a field only at a field boundary (start of line or right after
// a comma); a stray quote mid-field stays literal, so one malformed
// cell cannot swallow the rest of the file.
func splitLines(text string) []string {
	var (
		lines      []string
		b          strings.Builder
		inQuotes   bool
		fieldStart = true
	)
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case inQuotes:
			if c == '"' {
				if i+1 < len(text) && text[i+1] == '"' {
					b.WriteString(`""`)
					i++
					continue
				}
				inQuotes = false
				fieldStart = false
			}
			b.WriteByte(c)
		case c == '"' && fieldStart:
			inQuotes = true
			b.WriteByte(c)
		case c == '\n':
			lines = append(lines, strings.TrimSuffix(b.String(), "\r"))
			b.Reset()
			fieldStart = true
		default:
			b.WriteByte(c)
			fieldStart = c == ','
		}
	}
	if b.Len() > 0 {
		lines = append(lines, strings.TrimSuffix(b.String(), "\r"))
	}
	return lines
}

// splitFields tokenizes one logical line into field values. Quoted fields
// may contain commas and newlines; a doubled quote inside a quoted field
// is one literal quote, while a quote that does not start a field stays
// literal. Every value is trimmed after unescaping. The index always
// advances, so a trailing comma terminates with one final empty field
// rather than looping.
func splitFields(line string) []string {
	var (
		fields   []string
		b        strings.Builder
		inQuotes bool
	)
	i := 0
	for i < len(line) {
		c := line[i]
		switch {
		case inQuotes:
			if c == '"' {
				if i+1 < len(line) && line[i+1] == '"' {
					b.WriteByte('"')
					i += 2
					continue
				}
				inQuotes = false
				i++
				continue
			}
			b.WriteByte(c)
			i++
		case c == '"' && b.Len() == 0:
			inQuotes = true
			i++
		case c == ',':
			fields = append(fields, strings.TrimSpace(b.String()))
			b.Reset()
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	fields = append(fields, strings.TrimSpace(b.String()))
	return fields
}

// QuoteField encodes s as a single RFC4180 field, quoting only when the
// value requires it.
func QuoteField(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
