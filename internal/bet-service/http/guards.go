package http

import (
	"context"
	"fmt"

	"github.com/radieske/bracket-bet-platform/internal/bet-service/wallet"
)

// Guard é uma pré-condição aplicada antes do handler principal. Cadeia
// ordenada com curto-circuito: o primeiro erro interrompe a requisição.
type Guard func(ctx context.Context, userID, username string) error

func runGuards(ctx context.Context, userID, username string, guards ...Guard) error {
	for _, g := range guards {
		if err := g(ctx, userID, username); err != nil {
			return err
		}
	}
	return nil
}

// ensureAccount garante que o usuário tem conta no wallet-service
// (criação com saldo inicial acontece lá).
func ensureAccount(wcli *wallet.Client) Guard {
	return func(ctx context.Context, userID, username string) error {
		if _, err := wcli.EnsureAccount(ctx, userID, username); err != nil {
			return fmt.Errorf("ensure account: %w", err)
		}
		return nil
	}
}
