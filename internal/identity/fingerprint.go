// Package identity derives the anonymous matching key from a declared
// person's name and country.
//
// Two declarations refer to the same person exactly when their fingerprints
// are equal. The normalization is deliberately forgiving about spelling
// variation (case, accents, compound-name punctuation) and deliberately
// strict about everything else: nicknames and transliterations do not match.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fingerprint returns a stable hex digest of the normalized
// (first name, last name, country) tuple.
//
// The digest is SHA-256 over "first|last|country" after normalization, so
// independent clients computing the fingerprint for the same person always
// agree. It is an identity key, not a secret.
func Fingerprint(firstName, lastName, country string) string {
	canonical := NormalizeFirstName(firstName) + "|" + NormalizeLastName(lastName) + "|" + NormalizeCountry(country)
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// NormalizeFirstName keeps only the leading token of a possibly compound
// first name: "Marie-Anne", "Marie Anne" and "Marie" all normalize to
// "marie". Anchoring on the leading token trades precision for recall;
// people rarely use compound first names consistently.
func NormalizeFirstName(name string) string {
	folded := fold(name)
	tokens := strings.FieldsFunc(folded, isSeparator)
	if len(tokens) == 0 {
		return ""
	}
	return tokens[0]
}

// NormalizeLastName treats the surname as atomic: all whitespace and hyphens
// are removed, so "De La Cruz" and "de-la-cruz" both normalize to "delacruz".
// Multi-word surnames must match in full.
func NormalizeLastName(name string) string {
	folded := fold(name)
	return strings.Join(strings.FieldsFunc(folded, isSeparator), "")
}

// NormalizeCountry lowercases and strips diacritics only.
func NormalizeCountry(country string) string {
	return fold(country)
}

func isSeparator(r rune) bool {
	return r == '-' || unicode.IsSpace(r)
}

// fold lowercases, trims, and strips combining marks ("é" -> "e").
func fold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	// A fresh transformer chain per call: chained transformers carry state and
	// are not safe for concurrent reuse.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}
	return folded
}
