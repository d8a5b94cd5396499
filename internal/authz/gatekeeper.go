package authz

import "pedidos-system/internal/entities"

// Gatekeeper отвечает на вопрос "есть ли у роли это право вообще", без
// привязки к заказу.
type Gatekeeper struct{}

func NewGatekeeper() *Gatekeeper {
	return &Gatekeeper{}
}

func (g *Gatekeeper) Can(actor *entities.User, permission string) bool {
	if actor == nil {
		return false
	}
	return rolePermissions[actor.TipoUsuario][permission]
}
