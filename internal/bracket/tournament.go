package bracket

// Tournament espelha o estado de um torneio no provedor remoto.
// finished e outcome_computed nunca voltam a false depois de true.
type Tournament struct {
	ID                  string
	Name                string
	SubscriptionsClosed bool
	Started             bool
	Finished            bool
	OutcomeComputed     bool
}

// BetsOpen indica se o torneio ainda aceita novas apostas.
func (t Tournament) BetsOpen() bool {
	return !t.SubscriptionsClosed && !t.Started && !t.Finished
}
