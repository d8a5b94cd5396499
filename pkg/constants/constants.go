package constants

// --- СТАТУСЫ ЗАКАЗОВ (совпадают со значениями в БД) ---
const (
	StatusPendente  = "Pendente"
	StatusConcluido = "Concluído"
	StatusCancelado = "Cancelado"
)

var OrderStatuses = []string{StatusPendente, StatusConcluido, StatusCancelado}

// Финальные статусы. Возврат в Pendente разрешен явным патчем.
func IsFinalStatus(status string) bool {
	return status == StatusConcluido || status == StatusCancelado
}

func IsValidStatus(status string) bool {
	return contains(OrderStatuses, status)
}

// --- СРОЧНОСТЬ ---
const (
	UrgenciaPadrao  = "Padrão"
	UrgenciaUrgente = "Urgente"
	UrgenciaCritico = "Crítico"
)

var Urgencias = []string{UrgenciaPadrao, UrgenciaUrgente, UrgenciaCritico}

func IsValidUrgencia(u string) bool {
	return contains(Urgencias, u)
}

// --- РОЛИ ---
const (
	RoleComum  = "comum"
	RoleGestor = "gestor"
	RoleAdmin  = "admin"
)

func IsValidRole(role string) bool {
	return role == RoleComum || role == RoleGestor || role == RoleAdmin
}

func IsPrivilegedRole(role string) bool {
	return role == RoleAdmin || role == RoleGestor
}

// --- SETORES ---
var Setores = []string{"Escritório", "Fábrica de Ração", "Granjas", "Oficina"}

func IsValidSetor(setor string) bool {
	return contains(Setores, setor)
}

// --- ТИПЫ АКТИВНОСТИ ---
const (
	ActivityCriacao      = "criacao"
	ActivityEdicao       = "edicao"
	ActivityConclusao    = "conclusao"
	ActivityCancelamento = "cancelamento"
	ActivityReabertura   = "reabertura"
	ActivityLogin        = "login"
	ActivityUsuarioEdit  = "usuario_editado"
)

// --- ТИПЫ УВЕДОМЛЕНИЙ ---
const (
	NotifyPedidoCriado     = "pedido_criado"
	NotifyPedidoAtualizado = "pedido_atualizado"
	NotifyPedidoConcluido  = "pedido_concluido"
	NotifyPedidoCancelado  = "pedido_cancelado"
)

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
