package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"courtside-api/internal/billing"
	"courtside-api/internal/shared"
)

const settingsCacheKey = "v1:billing:settings"

// GetSettings falls back to the defaults when no row has been written yet;
// absence is not an error.
func (s *Store) GetSettings(ctx context.Context) (billing.Settings, error) {
	var settings billing.Settings

	cached, err := s.redis.Get(ctx, settingsCacheKey).Result()
	if err == nil {
		if err := json.Unmarshal([]byte(cached), &settings); err == nil {
			return settings, nil
		}
		s.log.Errorw("Error unmarshalling settings cache", "key", settingsCacheKey)
	}

	err = s.rdb.QueryRowContext(ctx, `
		SELECT profit_margin_percent, exchange_rate
		FROM billing_settings
		WHERE id = 1
	`).Scan(&settings.ProfitMarginPercent, &settings.ExchangeRate)
	if err != nil {
		if err == sql.ErrNoRows {
			return billing.DefaultSettings(), nil
		}
		return billing.DefaultSettings(), fmt.Errorf("failed to query billing settings: %w", err)
	}

	go func() {
		payload, err := json.Marshal(settings)
		if err != nil {
			return
		}
		s.redis.Set(context.Background(), settingsCacheKey, payload, shared.SettingsCacheTTL)
	}()

	return settings, nil
}

func (s *Store) PutSettings(ctx context.Context, settings billing.Settings) error {
	_, err := s.wdb.ExecContext(ctx, `
		INSERT INTO billing_settings (id, profit_margin_percent, exchange_rate)
		VALUES (1, ?, ?)
		ON DUPLICATE KEY UPDATE
			profit_margin_percent = VALUES(profit_margin_percent),
			exchange_rate = VALUES(exchange_rate)`,
		settings.ProfitMarginPercent, settings.ExchangeRate,
	)
	if err != nil {
		return fmt.Errorf("failed to save billing settings: %w", err)
	}
	s.redis.Del(ctx, settingsCacheKey)
	return nil
}
