package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/bracket-bet-platform/internal/bracket-service/cache"
	"github.com/radieske/bracket-bet-platform/pkg/contracts/events"
)

// StartRedisSubscriber inicia uma goroutine que escuta o canal Redis Pub/Sub
// alimentado pelo bracket-sync-worker e repassa as atualizações para os
// clientes WebSocket conectados via Hub
//
// Funcionamento:
// - Recebe mensagens JSON do canal Redis
// - Desserializa para events.BracketUpdate
// - Invalida o cache de partidas do torneio atualizado
// - Chama hub.Broadcast para os clientes inscritos no torneio
func StartRedisSubscriber(ctx context.Context, r *redis.Client, channel string, hub *Hub, c *cache.Cache) {
	sub := r.Subscribe(ctx, channel)
	ch := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close() // encerra a inscrição ao finalizar o contexto
				return
			case msg := <-ch:
				if msg == nil {
					continue
				}
				var upd events.BracketUpdate
				if err := json.Unmarshal([]byte(msg.Payload), &upd); err != nil {
					log.Printf("ws subscriber unmarshal error: %v", err)
					continue
				}
				if c != nil {
					_ = c.InvalidateMatches(ctx, upd.TournamentID)
				}
				hub.Broadcast(BracketUpdateMsg{
					TournamentID: upd.TournamentID,
					Payload:      upd,
				})
			}
		}
	}()
}
