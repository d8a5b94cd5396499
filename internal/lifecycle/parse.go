package lifecycle

import (
	"math"
	"strconv"
	"strings"
	"time"

	apperrors "pedidos-system/pkg/errors"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

const (
	dateFormat     = "2006-01-02"
	dateTimeFormat = "2006-01-02 15:04:05"
)

// parseDate принимает ISO-8601: дату или дату со временем. Без зоны - UTC.
func parseDate(field, raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperrors.NewValidationError(field, "data inválida: %q", raw)
}

// parseMoney принимает "1234.5", "1234,5" и "1.234,50". Отрицательные суммы
// не допускаются.
func parseMoney(field, raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, apperrors.NewValidationError(field, "valor numérico inválido: %q", raw)
	}
	if v < 0 {
		return 0, apperrors.NewValidationError(field, "valor não pode ser negativo: %q", raw)
	}
	return v, nil
}

func parseQuantidade(raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, apperrors.NewValidationError(FieldQuantidade, "quantidade inválida: %q", raw)
	}
	if v < 1 {
		return 0, apperrors.NewValidationError(FieldQuantidade, "quantidade deve ser maior que zero")
	}
	return v, nil
}
