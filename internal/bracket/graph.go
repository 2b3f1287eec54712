package bracket

import (
	"errors"
	"fmt"
)

var (
	// ErrUnresolvedDependency indica que um slot referencia uma partida
	// ainda sem resultado previsto. Não acontece quando a ordem de
	// travessia é respeitada.
	ErrUnresolvedDependency = errors.New("unresolved prerequisite match")

	// ErrCycle indica que a lista de partidas não forma um DAG.
	ErrCycle = errors.New("match graph has a cycle")
)

// Graph é a visão somente-leitura das partidas de um torneio e das
// dependências entre slots.
type Graph struct {
	order []Match
	byID  map[string]Match
}

// NewGraph monta o grafo a partir da lista completa de partidas de um
// torneio e calcula a ordem de travessia: nenhuma partida aparece antes
// das suas pré-requisito.
func NewGraph(matches []Match) (*Graph, error) {
	byID := make(map[string]Match, len(matches))
	for _, m := range matches {
		byID[m.ID] = m
	}

	placed := make(map[string]bool, len(matches))
	order := make([]Match, 0, len(matches))

	// Varredura repetida preservando a ordem de entrada entre partidas
	// prontas. Brackets são pequenos, não compensa Kahn com fila.
	for len(order) < len(matches) {
		progressed := false
		for _, m := range matches {
			if placed[m.ID] {
				continue
			}
			if ready(m, byID, placed) {
				order = append(order, m)
				placed[m.ID] = true
				progressed = true
			}
		}
		if !progressed {
			return nil, ErrCycle
		}
	}

	return &Graph{order: order, byID: byID}, nil
}

// ready verifica se todas as pré-requisito de m já entraram na ordem.
// Referências a partidas fora da lista contam como satisfeitas (o slot
// nesse caso precisa vir com participante fixo do provedor).
func ready(m Match, byID map[string]Match, placed map[string]bool) bool {
	for _, s := range m.Slots {
		if s.PrereqMatchID == "" {
			continue
		}
		if _, known := byID[s.PrereqMatchID]; !known {
			continue
		}
		if !placed[s.PrereqMatchID] {
			return false
		}
	}
	return true
}

// TraversalOrder devolve uma cópia da ordem de travessia.
func (g *Graph) TraversalOrder() []Match {
	out := make([]Match, len(g.order))
	copy(out, g.order)
	return out
}

// Match devolve a partida pelo id.
func (g *Graph) Match(id string) (Match, bool) {
	m, ok := g.byID[id]
	return m, ok
}

// Len devolve o número de partidas do grafo.
func (g *Graph) Len() int { return len(g.order) }

// ResolveSlot devolve o participante de um slot usando apenas seeds fixos
// e os resultados previstos em predicted — nunca resultados reais, já que
// o usuário prevê antes dos jogos. which é 0 ou 1.
func (g *Graph) ResolveSlot(m Match, which int, predicted map[string]Outcome) (string, error) {
	s := m.Slots[which]
	if s.Fixed() {
		return s.PlayerID, nil
	}
	out, ok := predicted[s.PrereqMatchID]
	if !ok {
		return "", fmt.Errorf("match %s slot %d (prereq %s): %w", m.ID, which, s.PrereqMatchID, ErrUnresolvedDependency)
	}
	if s.WantsLoser {
		return out.LoserID, nil
	}
	return out.WinnerID, nil
}
