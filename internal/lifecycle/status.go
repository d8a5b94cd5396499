package lifecycle

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"pedidos-system/pkg/constants"
)

// fold убирает пробелы по краям, диакритику и регистр: "  CONCLUÍDO " -> "concluido".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		out = strings.TrimSpace(s)
	}
	return strings.ToLower(out)
}

// NormalizeStatus приводит любое написание "concluido" к каноническому
// "Concluído". Остальные значения возвращаются без изменений.
func NormalizeStatus(s string) string {
	if fold(s) == "concluido" {
		return constants.StatusConcluido
	}
	return s
}
