package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pedidos-system/internal/entities"
	"pedidos-system/pkg/constants"
)

var (
	ana   = &entities.User{Username: "ana@araldi.com", Nome: "Ana", TipoUsuario: constants.RoleComum, Setor: "Granjas"}
	bruno = &entities.User{Username: "bruno@araldi.com", Nome: "Bruno", TipoUsuario: constants.RoleComum, Setor: "Escritório"}
	carla = &entities.User{Username: "carla@araldi.com", Nome: "Carla", TipoUsuario: constants.RoleGestor, Setor: "Oficina"}
	dani  = &entities.User{Username: "dani@araldi.com", Nome: "Dani", TipoUsuario: constants.RoleAdmin, Setor: "Escritório"}
)

func order10() *entities.Order {
	return &entities.Order{ID: 10, Setor: "Granjas", UsuarioNome: "Ana", Status: constants.StatusPendente}
}

func TestEvaluate(t *testing.T) {
	e := NewEvaluator(NewGatekeeper())

	tests := []struct {
		name    string
		action  Action
		actor   *entities.User
		allowed bool
	}{
		{"owner edits own order", Action{Verb: PedidosEdit, Fields: []string{"status"}}, ana, true},
		{"other comum cannot edit", Action{Verb: PedidosEdit, Fields: []string{"status"}}, bruno, false},
		{"owner cannot move setor", Action{Verb: PedidosEdit, Fields: []string{"descricao", "setor"}}, ana, false},
		{"owner cannot change delivery date", Action{Verb: PedidosEdit, Fields: []string{"deliveryDate"}}, ana, false},
		{"gestor moves setor", Action{Verb: PedidosEdit, Fields: []string{"setor", "status"}}, carla, true},
		{"gestor cannot change delivery date", Action{Verb: PedidosEdit, Fields: []string{"status", "deliveryDate"}}, carla, false},
		{"admin changes delivery date", Action{Verb: PedidosEdit, Fields: []string{"setor", "deliveryDate"}}, dani, true},
		{"comum views own setor", Action{Verb: PedidosView}, ana, true},
		{"comum cannot view other setor", Action{Verb: PedidosView}, bruno, false},
		{"gestor views other setor", Action{Verb: PedidosView}, carla, true},
		{"comum creates in own setor", Action{Verb: PedidosCreate}, ana, true},
		{"comum cannot create in other setor", Action{Verb: PedidosCreate}, bruno, false},
		{"comum cannot list activities", Action{Verb: AtividadesView}, ana, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := e.Evaluate(tt.action, tt.actor, order10())
			assert.Equal(t, tt.allowed, d.Allowed)
			if tt.allowed {
				assert.Empty(t, d.Reason)
			} else {
				assert.NotEmpty(t, d.Reason)
			}
		})
	}
}

func TestDeliveryDateReasonNamesAdmin(t *testing.T) {
	e := NewEvaluator(NewGatekeeper())
	action := Action{Verb: PedidosEdit, Fields: []string{"deliveryDate"}}

	for _, actor := range []*entities.User{ana, carla} {
		d := e.Evaluate(action, actor, order10())
		assert.False(t, d.Allowed)
		assert.Contains(t, d.Reason, "só pode ser alterado por admin")
	}
}

func TestEvaluateNilInputs(t *testing.T) {
	e := NewEvaluator(NewGatekeeper())
	assert.False(t, e.Evaluate(Action{Verb: PedidosView}, nil, order10()).Allowed)
	assert.False(t, e.Evaluate(Action{Verb: PedidosView}, ana, nil).Allowed)
}

func TestEvaluateDoesNotMutate(t *testing.T) {
	e := NewEvaluator(NewGatekeeper())
	order := order10()
	e.Evaluate(Action{Verb: PedidosEdit, Fields: []string{"setor"}}, bruno, order)
	assert.Equal(t, order10(), order)
}

func TestIsOwnerAndPrivileged(t *testing.T) {
	assert.True(t, IsOwner(order10(), ana))
	assert.False(t, IsOwner(order10(), bruno))
	assert.False(t, IsOwner(&entities.Order{}, &entities.User{}))

	assert.True(t, Privileged(carla))
	assert.True(t, Privileged(dani))
	assert.False(t, Privileged(ana))
	assert.False(t, Privileged(nil))
}

func TestGatekeeper(t *testing.T) {
	g := NewGatekeeper()
	assert.True(t, g.Can(carla, UsuariosView))
	assert.False(t, g.Can(ana, UsuariosView))
	assert.True(t, g.Can(dani, UsuariosCreate))
	assert.False(t, g.Can(carla, UsuariosCreate))
	assert.False(t, g.Can(&entities.User{TipoUsuario: "visitante"}, PedidosView))
	assert.False(t, g.Can(nil, PedidosView))
}
