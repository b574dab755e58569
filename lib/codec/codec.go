// Package codec turns compose fields and a body into the flat text handed
// to the editor, and parses the edited text back.
package codec

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

// Sentinel separates the header block from the body. Users are told not
// to touch it; its absence when headers were sent means the text is
// unusable.
const Sentinel = "-=-=-=-=-=-=-=-=-=# DontRemoveThisLine #=-=-=-=-=-=-=-=-=-\n"

// LabelWidth is the column at which header values start, counted from the
// beginning of the label.
const LabelWidth = 11

var ErrMalformed = errors.New("malformed error")

// unknown collects values of header lines that match no known label.
const unknown Name = "unknown"

var wordRe = regexp.MustCompile(`\w`)

// HeaderBlock renders the enabled headers followed by the sentinel line.
func HeaderBlock(hs HeaderSet, fields Fields) string {
	var sb strings.Builder
	for _, h := range hs {
		if !h.Include {
			continue
		}
		sb.WriteString(h.Label)
		sb.WriteString(":")
		if pad := LabelWidth - len(h.Label); pad > 0 {
			sb.WriteString(strings.Repeat(" ", pad))
		}
		sb.WriteString(fields[h.Name])
		sb.WriteString("\n")
	}
	sb.WriteString(Sentinel)
	return sb.String()
}

// Encode builds the text sent to the editor. With header editing disabled
// the body goes out untouched.
func Encode(enabled bool, hs HeaderSet, fields Fields, body string) string {
	if !enabled {
		return body
	}
	return HeaderBlock(hs, fields) + body
}

// Decode splits edited text into header values and body. With header
// editing enabled, text without a sentinel is rejected with ErrMalformed.
func Decode(enabled bool, hs HeaderSet, blob string) (Values, string, error) {
	if !enabled {
		hs = hs.Disabled()
	}
	parts := strings.Split(blob, Sentinel)
	if len(parts) == 1 {
		if enabled {
			return nil, "", ErrMalformed
		}
		return Values{}, blob, nil
	}
	body := strings.Join(parts[1:], Sentinel)
	parsed := parseHeaderBlock(hs, parts[0])

	values := make(Values)
	for _, h := range hs {
		if h.Include {
			values[h.Name] = parsed[h.Name]
		}
	}
	return values, body, nil
}

func parseHeaderBlock(hs HeaderSet, block string) map[Name]string {
	table := make(map[Name]string)
	current := unknown

	for _, line := range strings.Split(block, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			// folded value, skip lines made of blanks only
			if wordRe.MatchString(line) {
				table[current] += "," + line
			}
			continue
		}
		name, ok := hs.Lookup(stripSpaces(key))
		if ok {
			current = name
		} else {
			current = unknown
		}
		value = strings.TrimLeftFunc(value, unicode.IsSpace)
		if prev, seen := table[current]; seen {
			table[current] = prev + "," + value
		} else {
			table[current] = value
		}
	}
	return table
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}
