package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// Postgres implementa operações de contas (ledger) em banco
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var ErrNotFound = errors.New("not found")

// Account é o modelo persistido no Postgres. Saldo em ponto flutuante;
// deriva de aritmética natural de float, sem arredondamento extra.
type Account struct {
	ID       string
	UserID   string
	Username string
	Balance  float64
}

// GetOrCreateAccount retorna a conta de um usuário, criando com o saldo
// inicial se não existir. Usa transação para garantir atomicidade e
// serializar contra a liquidação.
func (p *Postgres) GetOrCreateAccount(ctx context.Context, userID, username string, startBalance float64) (Account, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return Account{}, err
	}
	defer tx.Rollback()

	var acc Account
	err = tx.QueryRowContext(ctx,
		`SELECT id, user_id, username, balance FROM accounts WHERE user_id=$1 FOR UPDATE`,
		userID).Scan(&acc.ID, &acc.UserID, &acc.Username, &acc.Balance)
	if err == sql.ErrNoRows {
		acc = Account{ID: uuid.NewString(), UserID: userID, Username: username, Balance: startBalance}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO accounts(id, user_id, username, balance) VALUES($1,$2,$3,$4)`,
			acc.ID, acc.UserID, acc.Username, acc.Balance); err != nil {
			return Account{}, err
		}
	} else if err != nil {
		return Account{}, err
	}

	if err = tx.Commit(); err != nil {
		return Account{}, err
	}
	return acc, nil
}

// GetAccount retorna a conta de um usuário sem criar.
func (p *Postgres) GetAccount(ctx context.Context, userID string) (Account, error) {
	var acc Account
	err := p.db.QueryRowContext(ctx,
		`SELECT id, user_id, username, balance FROM accounts WHERE user_id=$1`,
		userID).Scan(&acc.ID, &acc.UserID, &acc.Username, &acc.Balance)
	if err == sql.ErrNoRows {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, err
	}
	return acc, nil
}

// Ranking retorna as contas ordenadas por saldo decrescente.
func (p *Postgres) Ranking(ctx context.Context, limit int) ([]Account, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, username, balance
		FROM accounts
		ORDER BY balance DESC, user_id ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		var acc Account
		if err := rows.Scan(&acc.ID, &acc.UserID, &acc.Username, &acc.Balance); err != nil {
			return nil, err
		}
		out = append(out, acc)
	}
	return out, rows.Err()
}
