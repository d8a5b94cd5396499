package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"pedidos-system/internal/lifecycle"
	apperrors "pedidos-system/pkg/errors"
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindScalar
	kindUrgencia
)

type fieldBinding struct {
	kind   fieldKind
	target func(p *lifecycle.Patch) *lifecycle.Optional[string]
}

var orderFields = map[string]fieldBinding{
	lifecycle.FieldDescricao:         {kindText, func(p *lifecycle.Patch) *lifecycle.Optional[string] { return &p.Descricao }},
	lifecycle.FieldQuantidade:        {kindScalar, func(p *lifecycle.Patch) *lifecycle.Optional[string] { return &p.Quantidade }},
	lifecycle.FieldCategoria:         {kindText, func(p *lifecycle.Patch) *lifecycle.Optional[string] { return &p.Categoria }},
	lifecycle.FieldUrgencia:          {kindUrgencia, func(p *lifecycle.Patch) *lifecycle.Optional[string] { return &p.Urgencia }},
	lifecycle.FieldStatus:            {kindText, func(p *lifecycle.Patch) *lifecycle.Optional[string] { return &p.Status }},
	lifecycle.FieldSetor:             {kindText, func(p *lifecycle.Patch) *lifecycle.Optional[string] { return &p.Setor }},
	lifecycle.FieldObservacao:        {kindText, func(p *lifecycle.Patch) *lifecycle.Optional[string] { return &p.Observacao }},
	lifecycle.FieldDeliveryDate:      {kindText, func(p *lifecycle.Patch) *lifecycle.Optional[string] { return &p.DeliveryDate }},
	lifecycle.FieldConclusaoData:     {kindText, func(p *lifecycle.Patch) *lifecycle.Optional[string] { return &p.ConclusaoData }},
	lifecycle.FieldCompletionDate:    {kindScalar, func(p *lifecycle.Patch) *lifecycle.Optional[string] { return &p.CompletionDate }},
	lifecycle.FieldOrcamentoPrevisto: {kindScalar, func(p *lifecycle.Patch) *lifecycle.Optional[string] { return &p.OrcamentoPrevisto }},
	lifecycle.FieldCustoReal:         {kindScalar, func(p *lifecycle.Patch) *lifecycle.Optional[string] { return &p.CustoReal }},
	lifecycle.FieldAnexo:             {kindText, func(p *lifecycle.Patch) *lifecycle.Optional[string] { return &p.Anexo }},
}

// Старые имена полей, которые все еще присылает фронтенд.
var fieldAliases = map[string]string{
	"file":              lifecycle.FieldAnexo,
	"orderDeliveryDate": lifecycle.FieldDeliveryDate,
}

// Неизменяемые поля. Клиент присылает заказ целиком, поэтому они молча
// отбрасываются, а не считаются неизвестными.
var readOnlyFields = map[string]struct{}{
	"id":           {},
	"_id":          {},
	"usuario_nome": {},
	"sender":       {},
	"created_at":   {},
	"updated_at":   {},
}

// DecodeOrderPatch разбирает тело PUT/PATCH. Отличает отсутствующее поле от
// явного null и отклоняет неизвестные ключи.
func DecodeOrderPatch(raw []byte) (lifecycle.Patch, error) {
	var patch lifecycle.Patch

	var sentFields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &sentFields); err != nil {
		return patch, apperrors.NewValidationError("", "corpo da requisição deve ser um objeto JSON: %v", err)
	}

	var unknown []string
	for key, value := range sentFields {
		if _, skip := readOnlyFields[key]; skip {
			continue
		}
		name := key
		if alias, ok := fieldAliases[key]; ok {
			if _, both := sentFields[alias]; both {
				continue
			}
			name = alias
		}
		binding, ok := orderFields[name]
		if !ok {
			unknown = append(unknown, key)
			continue
		}
		opt, err := decodeValue(name, binding.kind, value)
		if err != nil {
			return lifecycle.Patch{}, err
		}
		*binding.target(&patch) = opt
	}

	if len(unknown) > 0 {
		sort.Strings(unknown)
		return lifecycle.Patch{}, apperrors.NewValidationError(unknown[0], "campos desconhecidos: %s", strings.Join(unknown, ", "))
	}
	return patch, nil
}

func decodeValue(field string, kind fieldKind, value json.RawMessage) (lifecycle.Optional[string], error) {
	trimmed := bytes.TrimSpace(value)
	if bytes.Equal(trimmed, []byte("null")) {
		return lifecycle.Null[string](), nil
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return lifecycle.Some(s), nil
	}

	switch kind {
	case kindUrgencia:
		var urgent bool
		if err := json.Unmarshal(trimmed, &urgent); err == nil {
			if urgent {
				return lifecycle.Some("Urgente"), nil
			}
			return lifecycle.Some("Padrão"), nil
		}
	case kindScalar:
		// Числа и прочие значения передаются как есть, разбор в lifecycle.
		return lifecycle.Some(string(trimmed)), nil
	}
	return lifecycle.Optional[string]{}, apperrors.NewValidationError(field, "esperado texto, recebido %s", describe(trimmed))
}

func describe(raw []byte) string {
	if len(raw) == 0 {
		return "vazio"
	}
	switch raw[0] {
	case '{':
		return "objeto"
	case '[':
		return "lista"
	case 't', 'f':
		return "booleano"
	}
	return fmt.Sprintf("%q", string(raw))
}
