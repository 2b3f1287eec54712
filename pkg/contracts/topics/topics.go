package topics

const (
	// Apostas
	BetPlaced = "bet_placed"

	// Liquidação
	TournamentSettled = "tournament_settled"

	// Notificações (a entrega final é responsabilidade de consumidores externos)
	UserNotifications      = "user_notifications"
	BroadcastNotifications = "broadcast_notifications"
)
