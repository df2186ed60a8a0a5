package manifest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/handiism/scan-downloader/internal/model"
)

// declPrefix starts every chapter declaration in episodes.js.
const declPrefix = "var eps"

// ErrNoBlocks is returned when the script contains no chapter declaration at all.
var ErrNoBlocks = errors.New("no chapter declarations found")

// ParseError describes a declaration that was skipped.
type ParseError struct {
	// Offset is the byte offset of the declaration in the script.
	Offset int

	// ID is the chapter identifier, when it could be read.
	ID string

	// Reason explains why the declaration was rejected.
	Reason string
}

func (e *ParseError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("manifest: declaration eps%s at offset %d: %s", e.ID, e.Offset, e.Reason)
	}
	return fmt.Sprintf("manifest: declaration at offset %d: %s", e.Offset, e.Reason)
}

// Parser extracts the chapter catalog from episodes.js content.
//
// Example usage:
//
//	parser := NewParser()
//
//	script, _ := client.GetString(ctx, work.ManifestURL)
//	catalog, errs := parser.Parse(script)
//	for _, err := range errs {
//	    logger.Warn().Err(err).Msg("skipped declaration")
//	}
type Parser struct {
	prefix string
}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{prefix: declPrefix}
}

// Parse is a convenience wrapper around NewParser().Parse.
func Parse(text string) (model.Catalog, []error) {
	return NewParser().Parse(text)
}

// Parse extracts every chapter declaration from the script text.
//
// This method performs the following steps:
//  1. Locates every "var eps" declaration; a declaration ends where the next begins
//  2. Reads the chapter id between the prefix and '='
//  3. Reads the array body up to its matching ']' (brackets inside quotes are ignored)
//  4. Splits the body on commas and normalizes each token, dropping empty ones
//  5. Sorts the catalog by numeric chapter id, keeping manifest order for equal ids
//
// Declarations that are malformed or whose id is not numeric are skipped and
// reported as *ParseError. ErrNoBlocks is reported when nothing matched; an
// empty catalog is a valid result.
func (p *Parser) Parse(text string) (model.Catalog, []error) {
	starts := p.declarationStarts(text)
	if len(starts) == 0 {
		return model.Catalog{}, []error{ErrNoBlocks}
	}

	catalog := make(model.Catalog, 0, len(starts))
	var errs []error

	for i, start := range starts {
		end := len(text)
		if i+1 < len(starts) {
			end = starts[i+1]
		}

		entry, err := p.parseDeclaration(text[start:end], start)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if _, err := entry.Number(); err != nil {
			errs = append(errs, &ParseError{Offset: start, ID: entry.ID, Reason: err.Error()})
			continue
		}

		catalog = append(catalog, entry)
	}

	catalog.Sort()
	return catalog, errs
}

// declarationStarts returns the offset of every declaration prefix.
func (p *Parser) declarationStarts(text string) []int {
	var starts []int
	for offset := 0; ; {
		i := strings.Index(text[offset:], p.prefix)
		if i == -1 {
			return starts
		}
		starts = append(starts, offset+i)
		offset += i + len(p.prefix)
	}
}

// parseDeclaration parses one declaration. decl starts with the prefix and
// runs until the next declaration or the end of the script.
func (p *Parser) parseDeclaration(decl string, offset int) (model.CatalogEntry, error) {
	rest := decl[len(p.prefix):]

	eq := strings.IndexByte(rest, '=')
	if eq == -1 {
		return model.CatalogEntry{}, &ParseError{Offset: offset, Reason: "missing '='"}
	}

	id := strings.TrimSpace(rest[:eq])
	if id == "" {
		return model.CatalogEntry{}, &ParseError{Offset: offset, Reason: "missing chapter number"}
	}

	rest = strings.TrimLeft(rest[eq+1:], " \t\r\n")
	if !strings.HasPrefix(rest, "[") {
		return model.CatalogEntry{}, &ParseError{Offset: offset, ID: id, Reason: "expected '['"}
	}

	body, after, ok := scanArray(rest[1:])
	if !ok {
		return model.CatalogEntry{}, &ParseError{Offset: offset, ID: id, Reason: "missing closing bracket"}
	}

	if !strings.HasPrefix(strings.TrimLeft(after, " \t\r\n"), ";") {
		return model.CatalogEntry{}, &ParseError{Offset: offset, ID: id, Reason: "missing ';' after array"}
	}

	return model.CatalogEntry{ID: id, URLs: splitTokens(body)}, nil
}

// scanArray returns the content up to the ']' closing the array whose '['
// has already been consumed, and the text following it.
func scanArray(s string) (body, rest string, ok bool) {
	var sc quoteScanner
	depth := 0
	for i := 0; i < len(s); i++ {
		if sc.step(s, &i) {
			continue
		}
		switch s[i] {
		case '[':
			depth++
		case ']':
			if depth == 0 {
				return s[:i], s[i+1:], true
			}
			depth--
		}
	}
	return "", "", false
}

// splitTokens splits an array body on commas outside quotes and returns the
// non-empty normalized tokens in order.
func splitTokens(body string) []string {
	urls := make([]string, 0)

	var sc quoteScanner
	last := 0
	for i := 0; i <= len(body); i++ {
		if i < len(body) {
			if sc.step(body, &i) || body[i] != ',' {
				continue
			}
		}
		if token := Normalize(body[last:i]); token != "" {
			urls = append(urls, token)
		}
		last = i + 1
	}

	return urls
}

// Normalize cleans one raw array token: line breaks and commas are removed,
// then surrounding whitespace and quote characters are stripped.
//
//	Normalize(" 'https://x/1.jpg',\n") // "https://x/1.jpg"
//	Normalize(" ,\n")                  // ""
func Normalize(token string) string {
	token = strings.NewReplacer("\r", "", "\n", "", ",", "").Replace(token)
	token = strings.TrimSpace(token)
	token = strings.Trim(token, "'\"`")
	return strings.TrimSpace(token)
}

// quoteScanner tracks whether a scan position is inside a string literal.
type quoteScanner struct {
	quote byte
}

// step consumes s[*i] if it belongs to a string literal (including the
// opening and closing quotes) and reports whether it did. Escaped characters
// are skipped. A line break ends a single or double quoted string, which
// keeps an unbalanced quote from swallowing the rest of the array.
func (q *quoteScanner) step(s string, i *int) bool {
	c := s[*i]
	if q.quote == 0 {
		if c == '\'' || c == '"' || c == '`' {
			q.quote = c
			return true
		}
		return false
	}

	switch {
	case c == '\\' && *i+1 < len(s):
		*i++
	case c == q.quote:
		q.quote = 0
	case c == '\n' && q.quote != '`':
		q.quote = 0
	}
	return true
}
