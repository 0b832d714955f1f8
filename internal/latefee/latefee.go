// Package latefee computes overdue charges from a banded fee schedule.
package latefee

import (
	"fmt"
	"time"

	"github.com/nikolayk812/rentals/internal/domain"
	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// OverdueDays counts started days past dueAt. Returns 0 when returnedAt is not after dueAt.
func OverdueDays(dueAt, returnedAt time.Time) int {
	late := returnedAt.Sub(dueAt)
	if late <= 0 {
		return 0
	}

	days := int(late / day)
	if late%day != 0 {
		days++
	}
	return days
}

// Compute returns the late fee of a rental created at createdAt, due at dueAt
// and returned at returnedAt. Every overdue day is charged at the rate of the
// rule whose band (threshold, next threshold] contains it.
func Compute(createdAt, dueAt, returnedAt time.Time, schedule domain.FeeSchedule) (domain.Money, error) {
	if createdAt.IsZero() || dueAt.IsZero() || returnedAt.IsZero() {
		return domain.Money{}, fmt.Errorf("zero timestamp: %w", domain.ErrInvalidDateRange)
	}
	if returnedAt.Before(createdAt) {
		return domain.Money{}, fmt.Errorf("returned %s before created %s: %w",
			returnedAt.Format(time.RFC3339), createdAt.Format(time.RFC3339), domain.ErrInvalidDateRange)
	}

	if err := schedule.Validate(); err != nil {
		return domain.Money{}, fmt.Errorf("schedule.Validate: %w", err)
	}

	fee := domain.ZeroMoney(schedule.Currency)

	overdue := OverdueDays(dueAt, returnedAt)
	if overdue == 0 {
		return fee, nil
	}

	for i, rule := range schedule.Rules {
		if overdue <= rule.ThresholdDays {
			break
		}

		upper := overdue
		if i+1 < len(schedule.Rules) {
			upper = min(overdue, schedule.Rules[i+1].ThresholdDays)
		}

		days := decimal.NewFromInt(int64(upper - rule.ThresholdDays))
		fee.Amount = fee.Amount.Add(rule.DailyRate.Mul(days))
	}

	fee.Amount = fee.Amount.Round(2)
	return fee, nil
}
