package quotes

import "fmt"

// Entry é uma cotação fixa: multiplicador de payout para candidate
// vencendo opponent. quote(A,B) e quote(B,A) não precisam ser recíprocas.
type Entry struct {
	TournamentID string
	CandidateID  string
	OpponentID   string
	Value        float64
}

// MissingQuoteError indica um par real sem cotação cadastrada. É erro
// fatal de consistência para a liquidação do torneio (não há default
// silencioso).
type MissingQuoteError struct {
	CandidateID string
	OpponentID  string
}

func (e *MissingQuoteError) Error() string {
	return fmt.Sprintf("missing quote for %s vs %s", e.CandidateID, e.OpponentID)
}

// Book é o conjunto de cotações de um torneio, consumido só na liquidação.
// Como as cotações são populadas é pré-condição externa.
type Book struct {
	byCandidate map[string]map[string]float64
}

// NewBook monta o book a partir das entradas persistidas. Valores não
// positivos são rejeitados.
func NewBook(entries []Entry) (*Book, error) {
	b := &Book{byCandidate: make(map[string]map[string]float64)}
	for _, e := range entries {
		if e.Value <= 0 {
			return nil, fmt.Errorf("quote %s vs %s: non-positive value %v", e.CandidateID, e.OpponentID, e.Value)
		}
		m, ok := b.byCandidate[e.CandidateID]
		if !ok {
			m = make(map[string]float64)
			b.byCandidate[e.CandidateID] = m
		}
		m[e.OpponentID] = e.Value
	}
	return b, nil
}

// Quote devolve o multiplicador de candidate vencendo opponent.
func (b *Book) Quote(candidateID, opponentID string) (float64, error) {
	if m, ok := b.byCandidate[candidateID]; ok {
		if v, ok := m[opponentID]; ok {
			return v, nil
		}
	}
	return 0, &MissingQuoteError{CandidateID: candidateID, OpponentID: opponentID}
}

// HasPair verifica se o par tem cotação nas duas direções.
func (b *Book) HasPair(aID, bID string) bool {
	_, err1 := b.Quote(aID, bID)
	_, err2 := b.Quote(bID, aID)
	return err1 == nil && err2 == nil
}
