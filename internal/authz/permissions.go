// internal/authz/permissions.go
package authz

import "pedidos-system/pkg/constants"

const (
	// Заказы
	PedidosView   = "pedidos:view"
	PedidosCreate = "pedidos:create"
	PedidosEdit   = "pedidos:edit"

	// Журнал активности
	AtividadesView = "atividades:view"

	// Пользователи
	UsuariosView   = "usuarios:view"
	UsuariosCreate = "usuarios:create"
	UsuariosUpdate = "usuarios:update"
	UsuariosLogs   = "usuarios:logs"
)

// rolePermissions - права роли без учета конкретного заказа. Ограничения по
// setor и владельцу накладывает Evaluator.
var rolePermissions = map[string]map[string]bool{
	constants.RoleAdmin: {
		PedidosView: true, PedidosCreate: true, PedidosEdit: true,
		AtividadesView: true, UsuariosView: true, UsuariosCreate: true,
		UsuariosUpdate: true, UsuariosLogs: true,
	},
	constants.RoleGestor: {
		PedidosView: true, PedidosCreate: true, PedidosEdit: true,
		AtividadesView: true, UsuariosView: true,
	},
	constants.RoleComum: {
		PedidosView: true, PedidosCreate: true, PedidosEdit: true,
	},
}
