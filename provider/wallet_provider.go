package provider

import (
	"context"
	"fmt"

	"github.com/Digital-Creators-Team/prize-wheel-module/config"
	"github.com/Digital-Creators-Team/prize-wheel-module/httpclient"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// WalletProvider implements providers.WalletProvider against the
// platform points ledger over HTTP
type WalletProvider struct {
	client *httpclient.Client
	logger zerolog.Logger
}

// NewWalletProvider creates a new wallet provider
func NewWalletProvider(cfg *config.Config, logger zerolog.Logger) *WalletProvider {
	return &WalletProvider{
		client: httpclient.New(httpclient.Config{
			BaseURL: cfg.ExternalServices.WalletService.BaseURL,
			Timeout: cfg.ExternalServices.WalletService.Timeout,
			Logger:  logger,
		}),
		logger: logger.With().Str("component", "wallet_provider").Logger(),
	}
}

// GetBalance retrieves a player's point balance from the ledger
func (p *WalletProvider) GetBalance(ctx context.Context, playerID string) (decimal.Decimal, error) {
	// The ledger reports balances as plain JSON numbers.
	var result struct {
		Data struct {
			Balance float64 `json:"balance"`
		} `json:"data"`
	}

	path := fmt.Sprintf("/wallet/balance?player_id=%s", playerID)
	if err := p.client.GetJSON(ctx, path, nil, &result); err != nil {
		return decimal.Zero, fmt.Errorf("failed to get balance: %w", err)
	}

	return decimal.NewFromFloat(result.Data.Balance), nil
}

// Withdraw debits points from a player's balance. The ledger enforces
// the insufficient-balance check atomically with the debit.
func (p *WalletProvider) Withdraw(ctx context.Context, playerID string, amount decimal.Decimal) error {
	return p.post(ctx, "/wallet/withdraw", playerID, amount)
}

// Deposit credits points to a player's balance
func (p *WalletProvider) Deposit(ctx context.Context, playerID string, amount decimal.Decimal) error {
	return p.post(ctx, "/wallet/deposit", playerID, amount)
}

func (p *WalletProvider) post(ctx context.Context, path, playerID string, amount decimal.Decimal) error {
	body := map[string]interface{}{
		"player_id": playerID,
		"amount":    amount.InexactFloat64(),
	}

	resp, err := p.client.Post(ctx, path, body, nil)
	if err != nil {
		return fmt.Errorf("wallet request failed: %w", err)
	}

	if !resp.IsSuccess() {
		p.logger.Warn().
			Str("path", path).
			Str("player_id", playerID).
			Int("status", resp.StatusCode).
			Msg("Wallet operation rejected")
		return fmt.Errorf("wallet operation %s failed with status %d", path, resp.StatusCode)
	}

	return nil
}
