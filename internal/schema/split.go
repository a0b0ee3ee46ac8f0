// Copyright (c) 2025 Inkwell
// Licensed under the MIT License. See LICENSE file in the project root for details.

package schema

import (
	"strings"
)

// Split partitions a SQL script into statements on top-level semicolons.
// Each statement is trimmed; empty and comment-only segments are dropped.
//
// Semicolons inside single-quoted strings (including E'' escape strings),
// double-quoted identifiers, dollar-quoted bodies, and comments do not end a
// statement. Comments outside quoted text are removed from the output.
// An unterminated quote or comment runs to the end of the input.
func Split(sql string) []string {
	var (
		out  []string
		cur  strings.Builder
		code bool
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); code && s != "" {
			out = append(out, s)
		}
		cur.Reset()
		code = false
	}

	for i := 0; i < len(sql); {
		c := sql[i]
		switch {
		case c == ';':
			flush()
			i++

		case c == '-' && at(sql, i+1) == '-':
			i = skipLineComment(sql, i)

		case c == '/' && at(sql, i+1) == '*':
			i = skipBlockComment(sql, i)
			// keep tokens on either side of the comment apart
			cur.WriteByte(' ')

		case c == '\'':
			end := scanString(sql, i, isEscapePrefix(sql, i))
			cur.WriteString(sql[i:end])
			code = true
			i = end

		case c == '"':
			end := scanQuoted(sql, i, '"')
			cur.WriteString(sql[i:end])
			code = true
			i = end

		case c == '$':
			if tag, ok := dollarTag(sql, i); ok {
				end := scanDollar(sql, i, tag)
				cur.WriteString(sql[i:end])
				code = true
				i = end
				continue
			}
			cur.WriteByte(c)
			code = true
			i++

		default:
			cur.WriteByte(c)
			if !isSpace(c) {
				code = true
			}
			i++
		}
	}
	flush()
	return out
}

func at(s string, i int) byte {
	if i < 0 || i >= len(s) {
		return 0
	}
	return s[i]
}

// skipLineComment returns the index of the newline ending the comment, so
// the newline itself is kept as whitespace.
func skipLineComment(s string, i int) int {
	if j := strings.IndexByte(s[i:], '\n'); j >= 0 {
		return i + j
	}
	return len(s)
}

// skipBlockComment handles nested /* */ comments.
func skipBlockComment(s string, i int) int {
	depth := 0
	for i < len(s) {
		switch {
		case s[i] == '/' && at(s, i+1) == '*':
			depth++
			i += 2
		case s[i] == '*' && at(s, i+1) == '/':
			depth--
			i += 2
			if depth == 0 {
				return i
			}
		default:
			i++
		}
	}
	return len(s)
}

// isEscapePrefix reports whether the quote at i opens an E'' string.
func isEscapePrefix(s string, i int) bool {
	p := at(s, i-1)
	if p != 'E' && p != 'e' {
		return false
	}
	return !isIdent(at(s, i-2))
}

// scanString returns the index just past the closing quote of the literal
// opened at i. '' is always an escaped quote; with backslash, \' is too.
func scanString(s string, i int, backslash bool) int {
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			if backslash {
				j++
			}
		case '\'':
			if at(s, j+1) == '\'' {
				j++
				continue
			}
			return j + 1
		}
	}
	return len(s)
}

// scanQuoted scans a quoted identifier where a doubled quote escapes itself.
func scanQuoted(s string, i int, q byte) int {
	for j := i + 1; j < len(s); j++ {
		if s[j] == q {
			if at(s, j+1) == q {
				j++
				continue
			}
			return j + 1
		}
	}
	return len(s)
}

// dollarTag recognizes $$ or $name$ at i. Positional parameters ($1) and
// identifiers containing $ do not qualify.
func dollarTag(s string, i int) (string, bool) {
	if isIdent(at(s, i-1)) {
		return "", false
	}
	j := i + 1
	for j < len(s) && s[j] != '$' {
		c := s[j]
		if !isIdent(c) || (j == i+1 && isDigit(c)) {
			return "", false
		}
		j++
	}
	if j >= len(s) {
		return "", false
	}
	return s[i : j+1], true
}

func scanDollar(s string, i int, tag string) int {
	start := i + len(tag)
	if j := strings.Index(s[start:], tag); j >= 0 {
		return start + j + len(tag)
	}
	return len(s)
}

func isIdent(c byte) bool {
	return c == '_' || isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}
