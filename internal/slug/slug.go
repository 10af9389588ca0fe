// Package slug derives URL-safe identifiers for directory records and
// resolves collisions with a counter suffix.
package slug

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrExhausted is returned when no free slug was found within the retry cap.
var ErrExhausted = errors.New("slug candidates exhausted")

// maxAttempts bounds the collision loop so a pathological data set cannot
// spin forever.
const maxAttempts = 10000

// stripMarks decomposes accented characters and drops the combining marks,
// so "Café" slugs the same as "Cafe".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Make transliterates free text into a lowercase hyphenated identifier.
// Apostrophes vanish ("Joe's" becomes "joes"); other runs of
// non-alphanumeric characters collapse into a single hyphen.
func Make(text string) string {
	if folded, _, err := transform.String(stripMarks, text); err == nil {
		text = folded
	}

	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(text) {
		if r == '\'' || r == '’' {
			continue
		}
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pendingHyphen = b.Len() > 0
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Generate produces a slug for text that isTaken reports as free. On a
// collision it appends -1, -2, ... until an untaken candidate is found.
// isTaken is expected to ignore the record being slugged and to treat
// soft-deleted rows as still occupying their slug.
func Generate(text string, isTaken func(candidate string) (bool, error)) (string, error) {
	base := Make(text)

	candidate := base
	for i := 1; i <= maxAttempts; i++ {
		taken, err := isTaken(candidate)
		if err != nil {
			return "", fmt.Errorf("probe slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}

	return "", ErrExhausted
}
