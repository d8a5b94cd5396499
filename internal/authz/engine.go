package authz

import (
	"fmt"

	"pedidos-system/internal/entities"
	"pedidos-system/pkg/constants"
)

// Поля, которые comum не может менять ни в каком заказе.
var restrictedFields = map[string]string{
	"setor":        "Setor",
	"deliveryDate": "Data de Entrega",
}

// Дату поставки меняет только admin, gestor тоже не может.
const adminOnlyField = "deliveryDate"

// Action - что актор пытается сделать. Fields заполняется только для
// PedidosEdit: ключи полей, которые патч реально меняет.
type Action struct {
	Verb   string
	Fields []string
}

type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(format string, args ...interface{}) Decision {
	return Decision{Reason: fmt.Sprintf(format, args...)}
}

// Privileged - admin или gestor. Различаются они только в adminOnlyField
// и в управлении пользователями.
func Privileged(actor *entities.User) bool {
	return actor != nil && constants.IsPrivilegedRole(actor.TipoUsuario)
}

// IsOwner - единственное место, где определяется владелец заказа. Сейчас это
// сравнение отображаемого имени создателя.
func IsOwner(order *entities.Order, actor *entities.User) bool {
	return order.UsuarioNome != "" && order.UsuarioNome == actor.Nome
}

type rule func(action Action, actor *entities.User, order *entities.Order) (Decision, bool)

// Evaluator применяет правила по порядку, решает первое сработавшее.
// Побочных эффектов нет.
type Evaluator struct {
	gatekeeper *Gatekeeper
	rules      []rule
}

func NewEvaluator(gatekeeper *Gatekeeper) *Evaluator {
	return &Evaluator{
		gatekeeper: gatekeeper,
		rules: []rule{
			privilegedRule,
			viewRule,
			createRule,
			editRule,
		},
	}
}

func (e *Evaluator) Evaluate(action Action, actor *entities.User, order *entities.Order) Decision {
	if actor == nil {
		return deny("usuário não identificado")
	}
	if !e.gatekeeper.Can(actor, action.Verb) {
		return deny("perfil %q não tem permissão para %s", actor.TipoUsuario, action.Verb)
	}
	if order == nil {
		return deny("pedido não informado")
	}
	for _, r := range e.rules {
		if d, ok := r(action, actor, order); ok {
			return d
		}
	}
	return deny("ação não permitida")
}

func privilegedRule(action Action, actor *entities.User, _ *entities.Order) (Decision, bool) {
	if !Privileged(actor) {
		return Decision{}, false
	}
	if action.Verb == PedidosEdit && actor.TipoUsuario != constants.RoleAdmin {
		for _, f := range action.Fields {
			if f == adminOnlyField {
				return deny("o campo %q só pode ser alterado por admin", restrictedFields[f]), true
			}
		}
	}
	return allow(), true
}

func viewRule(action Action, actor *entities.User, order *entities.Order) (Decision, bool) {
	if action.Verb != PedidosView {
		return Decision{}, false
	}
	if order.Setor != actor.Setor {
		return deny("pedidos do setor %q não são visíveis para o setor %q", order.Setor, actor.Setor), true
	}
	return allow(), true
}

func createRule(action Action, actor *entities.User, order *entities.Order) (Decision, bool) {
	if action.Verb != PedidosCreate {
		return Decision{}, false
	}
	if order.Setor != actor.Setor {
		return deny("só é possível criar pedidos no próprio setor (%s)", actor.Setor), true
	}
	return allow(), true
}

func editRule(action Action, actor *entities.User, order *entities.Order) (Decision, bool) {
	if action.Verb != PedidosEdit {
		return Decision{}, false
	}
	if !IsOwner(order, actor) {
		return deny("apenas o criador do pedido pode editá-lo"), true
	}
	for _, f := range action.Fields {
		if label, ok := restrictedFields[f]; ok {
			if f == adminOnlyField {
				return deny("o campo %q só pode ser alterado por admin", label), true
			}
			return deny("o campo %q só pode ser alterado por gestor ou admin", label), true
		}
	}
	return allow(), true
}
