package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// TournamentID: obrigatório para subscribe/unsubscribe
type ClientMsg struct {
	Type         string `json:"type"`         // subscribe | unsubscribe | ping
	TournamentID string `json:"tournamentId"` // requerido em subscribe/unsubscribe
}

// BracketUpdateMsg representa uma atualização de chave enviada para os
// clientes WebSocket inscritos no torneio
type BracketUpdateMsg struct {
	TournamentID string      `json:"tournamentId"`
	Payload      interface{} `json:"payload"`
}
