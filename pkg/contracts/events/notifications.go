package events

import "time"

// Mensagem direcionada a um usuário específico. Publicada no tópico
// "user_notifications"; quem entrega (Telegram, push, etc.) é externo.
type UserNotification struct {
	UserID string    `json:"userId"`
	Text   string    `json:"text"`
	Ts     time.Time `json:"ts"`
}

// Mensagem para todos os grupos. Publicada no tópico "broadcast_notifications".
type BroadcastNotification struct {
	Text string    `json:"text"`
	Ts   time.Time `json:"ts"`
}
