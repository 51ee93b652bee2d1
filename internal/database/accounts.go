package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"courtside-api/internal/shared"
)

func accountCacheKey(id string) string {
	return fmt.Sprintf("v1:account:%s", id)
}

// GetAccount returns nil without an error when the account does not exist.
func (s *Store) GetAccount(ctx context.Context, id string) (*shared.Account, error) {
	var account shared.Account

	cacheKey := accountCacheKey(id)
	cached, err := s.redis.Get(ctx, cacheKey).Result()
	if err == nil {
		if err := json.Unmarshal([]byte(cached), &account); err == nil {
			return &account, nil
		}
		s.log.Errorw("Error unmarshalling account cache", "key", cacheKey)
	}

	err = s.rdb.QueryRowContext(ctx, `
		SELECT id, balance, is_admin
		FROM account
		WHERE id = ?
	`, id).Scan(&account.ID, &account.Balance, &account.IsAdmin)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query account: %w", err)
	}

	go func() {
		payload, err := json.Marshal(account)
		if err != nil {
			return
		}
		s.redis.Set(context.Background(), cacheKey, payload, shared.AccountCacheTTL)
	}()

	return &account, nil
}

// Debit lowers the balance by amount with a zero floor and returns the new
// balance. The floor is applied inside one UPDATE so the stored balance can
// never go negative, even though the admission gate upstream is a racy
// pre-check: two concurrent requests can both pass the gate, and the second
// debit then clamps at zero instead of overdrawing.
func (s *Store) Debit(ctx context.Context, id string, amount float64) (float64, error) {
	_, err := s.wdb.ExecContext(ctx,
		"UPDATE account SET balance = GREATEST(0, balance - ?) WHERE id = ?", amount, id)
	if err != nil {
		return 0, fmt.Errorf("failed to debit account: %w", err)
	}
	return s.reloadBalance(ctx, id)
}

// Credit is the admin top-up path.
func (s *Store) Credit(ctx context.Context, id string, amount float64) (float64, error) {
	res, err := s.wdb.ExecContext(ctx,
		"UPDATE account SET balance = balance + ? WHERE id = ?", amount, id)
	if err != nil {
		return 0, fmt.Errorf("failed to credit account: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return 0, shared.ErrAccountNotFound
	}
	return s.reloadBalance(ctx, id)
}

func (s *Store) reloadBalance(ctx context.Context, id string) (float64, error) {
	s.redis.Del(ctx, accountCacheKey(id))

	var balance float64
	err := s.wdb.QueryRowContext(ctx,
		"SELECT balance FROM account WHERE id = ?", id).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("failed to reload balance: %w", err)
	}
	return balance, nil
}
