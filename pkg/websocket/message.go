package websocket

import "time"

const (
	MessageConnectionEstablished = "connection_established"
	MessageNotification          = "notification"
)

// Envelope - "конверт", в котором отправляются сообщения.
// Тип сообщения позволяет фронтенду понять, что делать.
type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

func NewEnvelope(messageType string, payload interface{}) Envelope {
	return Envelope{Type: messageType, Payload: payload, Timestamp: time.Now().UTC()}
}

// NotificationPayload - уведомление об изменении заказа.
type NotificationPayload struct {
	EventID   string       `json:"eventId"`
	Type      string       `json:"type"`
	Title     string       `json:"title"`
	Message   string       `json:"message"`
	Actor     ActorInfo    `json:"actor"`
	Pedido    interface{}  `json:"pedido"`
	Changes   []ChangeInfo `json:"changes,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

type ActorInfo struct {
	Name string `json:"name"`
}

type ChangeInfo struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

type ConnectionStatus struct {
	Status string `json:"status"`
}
