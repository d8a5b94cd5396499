package utils

import "strings"

// NormalizeSector: неразрывные пробелы -> обычные, схлопывание повторов, trim.
// Регистр не меняется: "Granjas" и "granjas" - разные setor.
func NormalizeSector(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\u00a0', '\u2007', '\u202f':
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
