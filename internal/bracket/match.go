package bracket

// Slot é uma das duas posições de participante de uma partida.
// Ou carrega um participante fixo (seed) ou referencia a partida
// pré-requisito da qual sai o vencedor/perdedor.
type Slot struct {
	PlayerID      string // preenchido quando o participante é conhecido
	PrereqMatchID string // partida de origem, quando o slot é derivado
	WantsLoser    bool   // true = slot recebe o perdedor da pré-requisito
}

// Fixed indica se o slot já tem participante definido (seed ou resolvido
// pelo provedor).
func (s Slot) Fixed() bool { return s.PlayerID != "" }

// Match é uma partida de eliminação simples. WinnerID fica vazio até o
// resultado real existir.
type Match struct {
	ID           string
	TournamentID string
	Slots        [2]Slot
	WinnerID     string
	Started      bool
}

// Decided indica se a partida já tem resultado real completo: vencedor
// e os dois participantes conhecidos.
func (m Match) Decided() bool {
	return m.WinnerID != "" && m.Slots[0].Fixed() && m.Slots[1].Fixed()
}

// Outcome é o par (vencedor, perdedor) de uma partida, real ou previsto.
type Outcome struct {
	WinnerID string
	LoserID  string
}
