package notifier

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/bracket-bet-platform/pkg/contracts/events"
)

// Kafka publica as notificações de liquidação e o evento de torneio
// liquidado em seus respectivos tópicos. A entrega final (Telegram, push)
// é responsabilidade de um consumidor externo.
type Kafka struct {
	Users     *kafka.Writer // user_notifications
	Broadcast *kafka.Writer // broadcast_notifications
	Settled   *kafka.Writer // tournament_settled
}

func NewKafka(users, broadcast, settled *kafka.Writer) *Kafka {
	return &Kafka{Users: users, Broadcast: broadcast, Settled: settled}
}

func (k *Kafka) SendToUser(ctx context.Context, userID, text string) error {
	b, _ := json.Marshal(events.UserNotification{
		UserID: userID,
		Text:   text,
		Ts:     time.Now(),
	})
	return k.Users.WriteMessages(ctx, kafka.Message{Key: []byte(userID), Value: b})
}

func (k *Kafka) BroadcastToGroups(ctx context.Context, text string) error {
	b, _ := json.Marshal(events.BroadcastNotification{
		Text: text,
		Ts:   time.Now(),
	})
	return k.Broadcast.WriteMessages(ctx, kafka.Message{Value: b})
}

func (k *Kafka) PublishTournamentSettled(ctx context.Context, e events.TournamentSettled) error {
	b, _ := json.Marshal(e)
	return k.Settled.WriteMessages(ctx, kafka.Message{Key: []byte(e.TournamentID), Value: b})
}
