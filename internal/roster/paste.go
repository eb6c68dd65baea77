package roster

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode"

	"github.com/albapepper/xi-fantasy/internal/position"
)

var pasteDelimiter = regexp.MustCompile(`\s*[;,\t|]\s*`)

// ParsePasteFile reads a pasted roster from path.
func ParsePasteFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()
	return ParsePaste(f)
}

// ParsePaste reads a roster copied as plain text, one player per line:
//
//	Courtois, POR, 9.5
//	Pedri;MC
//	DEL | Vinícius Jr. | 14
//	Jules Koundé DF 15M
//
// Fields are split on ',', ';', '|' or tab; a line without any of those is
// split on whitespace. The position is the first field after the name that
// names a known position, and whatever follows it is the price. Delimited
// lines may also lead with the position or put the price before it. Lines with
// no recognizable position (headers, notes, blank lines) are skipped, as
// are repeated names.
func ParsePaste(r io.Reader) ([]Entry, error) {
	var entries []Entry
	seen := make(map[string]bool)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		e, ok := parseDelimited(line)
		if !ok {
			e, ok = parseSpaced(line)
		}
		if !ok {
			continue
		}
		key := strings.ToLower(e.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no player lines found", ErrInvalidRoster)
	}
	return entries, nil
}

func parseDelimited(line string) (Entry, bool) {
	seps := pasteDelimiter.FindAllStringIndex(line, -1)
	if len(seps) == 0 {
		return Entry{}, false
	}

	fields := make([]string, 0, len(seps)+1)
	start := 0
	for _, s := range seps {
		fields = append(fields, line[start:s[0]])
		start = s[1]
	}
	fields = append(fields, line[start:])

	// rest returns the raw text after field i, so a price written as
	// "12,5" survives the comma split.
	rest := func(i int) string {
		if i >= len(seps) {
			return ""
		}
		return strings.Trim(line[seps[i][1]:], " \t;,|")
	}

	for i := 1; i < len(fields); i++ {
		code, ok := position.Normalize(fields[i])
		if !ok {
			continue
		}
		// Fields before the position without a letter are a price written
		// ahead of it ("Pedri, 8.5, MC").
		var name, price []string
		for _, f := range fields[:i] {
			if strings.IndexFunc(f, unicode.IsLetter) >= 0 {
				name = append(name, f)
			} else if f != "" {
				price = append(price, f)
			}
		}
		if r := rest(i); r != "" {
			price = append(price, r)
		}
		return newPasteEntry(strings.Join(name, " "), code, strings.Join(price, " "))
	}
	if code, ok := position.Normalize(fields[0]); ok && len(fields) > 1 {
		return newPasteEntry(fields[1], code, rest(1))
	}
	return Entry{}, false
}

func parseSpaced(line string) (Entry, bool) {
	tokens := strings.Fields(line)
	if len(tokens) < 2 {
		return Entry{}, false
	}
	for i := len(tokens) - 1; i >= 1; i-- {
		code, ok := position.Normalize(strings.Trim(tokens[i], ";,|"))
		if !ok {
			continue
		}
		name := strings.TrimRight(strings.Join(tokens[:i], " "), ";,|")
		price := strings.Trim(strings.Join(tokens[i+1:], " "), ";,| ")
		return newPasteEntry(name, code, price)
	}
	if code, ok := position.Normalize(strings.Trim(tokens[0], ";,|")); ok {
		return newPasteEntry(strings.Trim(strings.Join(tokens[1:], " "), ";,|"), code, "")
	}
	return Entry{}, false
}

func newPasteEntry(name string, code position.Code, price string) (Entry, bool) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return Entry{}, false
	}
	return Entry{Name: name, Position: string(code), Price: Price(strings.TrimSpace(price))}, true
}
