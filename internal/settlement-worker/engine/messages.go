package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/radieske/bracket-bet-platform/internal/quotes"
)

// UserMessages compõe o extrato de liquidação de cada usuário com
// aposta no torneio, incluindo predições anuladas.
func UserMessages(tournamentName string, names map[string]string, res *Result) map[string]string {
	byUser := make(map[string][]Item)
	for _, it := range res.Items {
		byUser[it.UserID] = append(byUser[it.UserID], it)
	}

	out := make(map[string]string, len(byUser))
	for userID, items := range byUser {
		var b strings.Builder
		fmt.Fprintf(&b, "Tournament %q settled. Your results:\n", tournamentName)
		for _, it := range items {
			w := displayName(names, it.PredictedWinner)
			l := displayName(names, it.PredictedLoser)
			switch it.Outcome {
			case OutcomeWon:
				fmt.Fprintf(&b, "  win: %s over %s -> %+.2f\n", w, l, it.Delta)
			case OutcomeLost:
				fmt.Fprintf(&b, "  loss: %s over %s -> %+.2f\n", w, l, it.Delta)
			case OutcomeVoided:
				fmt.Fprintf(&b, "  void: %s over %s -> no effect (bracket diverged from your picks)\n", w, l)
			}
		}
		fmt.Fprintf(&b, "Net result: %+.2f coins", res.Deltas[userID])
		out[userID] = b.String()
	}
	return out
}

// QuoteSummary compõe o resumo de cotações do torneio para broadcast.
func QuoteSummary(tournamentName string, names map[string]string, entries []quotes.Entry) string {
	sorted := make([]quotes.Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].CandidateID != sorted[j].CandidateID {
			return sorted[i].CandidateID < sorted[j].CandidateID
		}
		return sorted[i].OpponentID < sorted[j].OpponentID
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Tournament %q finished and all bets were settled.\nQuotes used:\n", tournamentName)
	for _, e := range sorted {
		fmt.Fprintf(&b, "  %s beats %s: %.2f\n", displayName(names, e.CandidateID), displayName(names, e.OpponentID), e.Value)
	}
	return strings.TrimRight(b.String(), "\n")
}

func displayName(names map[string]string, id string) string {
	if n, ok := names[id]; ok {
		return n
	}
	return id
}
