// Package naming derives document names and URL slugs from player display names.
package naming

import (
	"strings"
	"unicode"

	"github.com/gosimple/slug"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultSuffix is appended to the folded name to build a document name.
const DefaultSuffix = "HCP.json"

// Fold strips diacritics and lower-cases name: "Fábio" -> "fabio".
func Fold(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.TrimSpace(name))
	if err != nil {
		folded = strings.TrimSpace(name)
	}
	return strings.ToLower(folded)
}

// DocumentName returns the document file name for a player, e.g. "fabioHCP.json".
// An empty suffix falls back to DefaultSuffix.
func DocumentName(name, suffix string) string {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	return Fold(name) + suffix
}

// Slug returns the URL-safe identifier of a player, e.g. "Ana Maria" -> "ana-maria".
func Slug(name string) string {
	return slug.Make(name)
}

// Matches reports whether ref names the player: an exact name, a case-insensitive
// folded name or the slug.
func Matches(name, ref string) bool {
	if ref == "" {
		return false
	}
	return name == ref || Fold(name) == Fold(ref) || Slug(name) == ref
}
