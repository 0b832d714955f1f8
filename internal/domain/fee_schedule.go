package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// FeeRule charges DailyRate for every overdue day past ThresholdDays,
// up to the next rule's threshold.
type FeeRule struct {
	ThresholdDays int
	DailyRate     decimal.Decimal
}

// FeeSchedule is the banded late-fee table. An empty schedule charges nothing.
type FeeSchedule struct {
	Currency currency.Unit
	Rules    []FeeRule
}

func (s FeeSchedule) Validate() error {
	if s.Currency == (currency.Unit{}) {
		return fmt.Errorf("currency is empty: %w", ErrInvalidArgument)
	}

	for i, rule := range s.Rules {
		if i == 0 && rule.ThresholdDays != 0 {
			return fmt.Errorf("first rule threshold[%d] must be 0: %w", rule.ThresholdDays, ErrInvalidArgument)
		}
		if i > 0 && rule.ThresholdDays <= s.Rules[i-1].ThresholdDays {
			return fmt.Errorf("rule[%d] threshold[%d] is not ascending: %w", i, rule.ThresholdDays, ErrInvalidArgument)
		}
		if !rule.DailyRate.IsPositive() {
			return fmt.Errorf("rule[%d] rate[%s] must be positive: %w", i, rule.DailyRate, ErrInvalidArgument)
		}
	}

	return nil
}
