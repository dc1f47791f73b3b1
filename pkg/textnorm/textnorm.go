// Package textnorm normaliza texto libre para búsquedas sin distinguir
// mayúsculas ni tildes ("Sillón" == "SILLON").
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold quita marcas diacríticas, pasa a minúsculas y recorta espacios.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// Contains indica si needle aparece en alguno de haystack tras normalizar.
// needle vacío siempre coincide.
func Contains(needle string, haystack ...string) bool {
	n := Fold(needle)
	if n == "" {
		return true
	}
	for _, h := range haystack {
		if strings.Contains(Fold(h), n) {
			return true
		}
	}
	return false
}
