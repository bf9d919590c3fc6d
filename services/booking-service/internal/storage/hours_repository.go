package storage

import (
	"context"
	"time"

	"github.com/inkflow/inkflow/libs/db"
	"github.com/inkflow/inkflow/services/booking-service/internal/availability"
)

// HoursRepository persists the weekly business-hours rules. The in-process
// catalog snapshot is authoritative at runtime; this table exists so the
// rules survive a restart.
type HoursRepository struct {
	pool *db.Pool
}

func NewHoursRepository(pool *db.Pool) *HoursRepository {
	return &HoursRepository{pool: pool}
}

func (r *HoursRepository) Load(ctx context.Context) ([]availability.BusinessHoursRule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT weekday, open_minute, close_minute, open
		FROM business_hours
		ORDER BY weekday
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []availability.BusinessHoursRule
	for rows.Next() {
		var rule availability.BusinessHoursRule
		var weekday int
		if err := rows.Scan(&weekday, &rule.OpenMinute, &rule.CloseMinute, &rule.Open); err != nil {
			return nil, err
		}
		rule.Weekday = time.Weekday(weekday)
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// ReplaceWeek swaps the full weekly rule set in one transaction so a reader
// never observes a partially applied week.
func (r *HoursRepository) ReplaceWeek(ctx context.Context, rules []availability.BusinessHoursRule) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM business_hours`); err != nil {
		return err
	}
	for _, rule := range rules {
		if _, err := tx.Exec(ctx, `
			INSERT INTO business_hours (weekday, open_minute, close_minute, open)
			VALUES ($1, $2, $3, $4)
		`, int(rule.Weekday), rule.OpenMinute, rule.CloseMinute, rule.Open); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
