package engine

import (
	"fmt"

	"github.com/radieske/bracket-bet-platform/internal/bracket"
	"github.com/radieske/bracket-bet-platform/internal/quotes"
)

// Bet e Prediction espelham as linhas persistidas pelo bet-service.
type Bet struct {
	ID             string
	UserID         string
	TournamentID   string
	AmountPerMatch int64
}

type Prediction struct {
	ID           string
	UserID       string
	TournamentID string
	MatchID      string
	WinnerID     string
	LoserID      string
}

// IncompleteResultError: torneio marcado como finalizado mas com partida
// sem vencedor ou sem os dois participantes reais. Fatal para a
// liquidação deste torneio; nova tentativa no próximo passe.
type IncompleteResultError struct {
	MatchID string
}

func (e *IncompleteResultError) Error() string {
	return fmt.Sprintf("finished tournament has undecided match %s", e.MatchID)
}

// Outcome de uma predição na liquidação.
const (
	OutcomeWon    = "WON"
	OutcomeLost   = "LOST"
	OutcomeVoided = "VOIDED"
)

// Item é o efeito de uma predição sobre o saldo do usuário.
type Item struct {
	UserID          string
	MatchID         string
	PredictedWinner string
	PredictedLoser  string
	Outcome         string
	Delta           float64
}

// Result é o efeito líquido da liquidação de um torneio.
type Result struct {
	Deltas map[string]float64 // usuário -> ajuste líquido de saldo
	Items  []Item
	Voided int
}

// Compute aplica as regras de payout sobre as predições armazenadas e os
// resultados reais. Função pura: não toca banco nem rede.
//
// Regras, por predição:
//   - par previsto fora dos jogadores reais da partida -> anulada, sem
//     efeito no saldo (a anulação é por partida, não retroativa);
//   - vencedor previsto == vencedor real -> crédito de
//     stake * quote(perdedor,vencedor) / quote(vencedor,perdedor);
//   - caso contrário -> débito do stake (perda seca, independe de quote).
func Compute(bets []Bet, preds []Prediction, matches map[string]bracket.Match, book *quotes.Book) (*Result, error) {
	amounts := make(map[string]int64, len(bets))
	for _, b := range bets {
		amounts[b.UserID] = b.AmountPerMatch
	}

	// Valida resultados e cotações antes de mexer em qualquer saldo.
	checked := make(map[string]bool, len(preds))
	for _, pr := range preds {
		if checked[pr.MatchID] {
			continue
		}
		checked[pr.MatchID] = true

		m, ok := matches[pr.MatchID]
		if !ok {
			return nil, &IncompleteResultError{MatchID: pr.MatchID}
		}
		if !m.Decided() {
			return nil, &IncompleteResultError{MatchID: pr.MatchID}
		}
		p1, p2 := m.Slots[0].PlayerID, m.Slots[1].PlayerID
		if _, err := book.Quote(p1, p2); err != nil {
			return nil, err
		}
		if _, err := book.Quote(p2, p1); err != nil {
			return nil, err
		}
	}

	res := &Result{Deltas: make(map[string]float64)}
	for _, pr := range preds {
		stake, ok := amounts[pr.UserID]
		if !ok {
			return nil, fmt.Errorf("prediction %s has no matching bet for user %s", pr.ID, pr.UserID)
		}

		m := matches[pr.MatchID]
		p1, p2 := m.Slots[0].PlayerID, m.Slots[1].PlayerID

		item := Item{
			UserID:          pr.UserID,
			MatchID:         pr.MatchID,
			PredictedWinner: pr.WinnerID,
			PredictedLoser:  pr.LoserID,
		}

		// Predição anterior divergiu da realidade: o par previsto não é
		// subconjunto dos jogadores reais desta partida.
		if !inPair(pr.WinnerID, p1, p2) || !inPair(pr.LoserID, p1, p2) {
			item.Outcome = OutcomeVoided
			res.Items = append(res.Items, item)
			res.Voided++
			continue
		}

		if pr.WinnerID == m.WinnerID {
			same, err := book.Quote(pr.WinnerID, pr.LoserID)
			if err != nil {
				return nil, err
			}
			against, err := book.Quote(pr.LoserID, pr.WinnerID)
			if err != nil {
				return nil, err
			}
			item.Outcome = OutcomeWon
			item.Delta = float64(stake) * against / same
		} else {
			item.Outcome = OutcomeLost
			item.Delta = -float64(stake)
		}

		res.Deltas[pr.UserID] += item.Delta
		res.Items = append(res.Items, item)
	}

	return res, nil
}

func inPair(id, a, b string) bool { return id == a || id == b }
