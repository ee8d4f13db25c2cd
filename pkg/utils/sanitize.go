package utils

import (
	"strconv"
	"strings"
	"unicode"
)

// SanitizeColumnName lowercases a column header and replaces spaces and
// hyphens with underscores. Any other character that is not alphanumeric or
// an underscore is dropped. Empty results become "column"; names starting
// with a digit get a "c_" prefix so they remain valid SQL identifiers.
func SanitizeColumnName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r == ' ' || r == '-':
			b.WriteByte('_')
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "" {
		return "column"
	}
	if unicode.IsDigit(rune(out[0])) {
		return "c_" + out
	}
	return out
}

// SanitizeTableName lowercases a sheet name and keeps only alphanumerics and
// underscores. Empty results become "table"; names starting with a digit get
// a "t_" prefix.
func SanitizeTableName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "" {
		return "table"
	}
	if unicode.IsDigit(rune(out[0])) {
		return "t_" + out
	}
	return out
}

// excelize rejects sheet names longer than 31 characters or containing
// :\/?*[] characters.
const maxSheetNameLen = 31

// SanitizeSheetName makes a name acceptable to Excel. Invalid characters are
// replaced with underscores and the result is truncated to 31 characters.
func SanitizeSheetName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if cleaned == "" {
		cleaned = "Sheet"
	}
	// Truncate by runes: a byte cut could split a multi-byte character and
	// produce invalid UTF-8, which excelize rejects.
	if runes := []rune(cleaned); len(runes) > maxSheetNameLen {
		cleaned = string(runes[:maxSheetNameLen])
	}
	return cleaned
}

// Dedupe returns name unchanged if unseen, otherwise appends _2, _3, ...
// until the result is unique. seen is updated with the returned name.
func Dedupe(name string, seen map[string]bool) string {
	out := name
	for n := 2; seen[out]; n++ {
		out = name + "_" + strconv.Itoa(n)
	}
	seen[out] = true
	return out
}
