package database

import (
	"context"
	"fmt"

	"courtside-api/internal/shared"

	"github.com/manifold-inc/manifold-sdk/lib/utils"
)

func (s *Store) AppendUsage(ctx context.Context, rec shared.UsageRecord) error {
	_, err := s.wdb.ExecContext(ctx, `
		INSERT INTO usage_record (
			id, account_id, model,
			input_tokens, output_tokens,
			base_cost, billed_cost,
			prompt_preview, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.AccountID, rec.Model,
		rec.InputTokens, rec.OutputTokens,
		rec.BaseCost, rec.BilledCost,
		rec.PromptPreview, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append usage record: %w", err)
	}
	return nil
}

func (s *Store) ListUsage(ctx context.Context, accountID string, limit int) ([]shared.UsageRecord, error) {
	rows, err := s.rdb.QueryContext(ctx, `
		SELECT id, account_id, model,
			input_tokens, output_tokens,
			base_cost, billed_cost,
			prompt_preview, created_at
		FROM usage_record
		WHERE account_id = ?
		ORDER BY created_at DESC
		LIMIT ?`, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage records: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []shared.UsageRecord
	for rows.Next() {
		var rec shared.UsageRecord
		if err := rows.Scan(
			&rec.ID, &rec.AccountID, &rec.Model,
			&rec.InputTokens, &rec.OutputTokens,
			&rec.BaseCost, &rec.BilledCost,
			&rec.PromptPreview, &rec.CreatedAt,
		); err != nil {
			s.log.Warnw("Failed to scan usage record row", "error", err.Error())
			continue
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, utils.Wrap("Error iterating over usage record rows", err)
	}
	return records, nil
}
