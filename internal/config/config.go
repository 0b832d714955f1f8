// Package config reads daemon settings from RENTAL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nikolayk812/rentals/internal/domain"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type StoreKind string

const (
	StorePostgres StoreKind = "postgres"
	StoreMemory   StoreKind = "memory"
)

type Config struct {
	HTTPAddr         string
	GRPCAddr         string
	DatabaseURL      string
	Store            StoreKind
	OperationTimeout time.Duration
	FeeSchedule      domain.FeeSchedule
	Conditions       domain.ConditionSet
	// Tokens maps bearer tokens to the principal they authenticate.
	Tokens map[string]domain.Principal
	LogDev bool
}

const (
	defaultHTTPAddr         = ":8080"
	defaultGRPCAddr         = ":9090"
	defaultOperationTimeout = 5 * time.Second
	defaultFeeCurrency      = "USD"
)

// Load reads the process environment.
func Load() (Config, error) {
	return Parse(os.LookupEnv)
}

// Parse builds a Config from lookup, reporting every invalid variable at once.
func Parse(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	var errs []error

	cfg := Config{
		HTTPAddr:    get("RENTAL_HTTP_ADDR", defaultHTTPAddr),
		GRPCAddr:    get("RENTAL_GRPC_ADDR", defaultGRPCAddr),
		DatabaseURL: get("RENTAL_DATABASE_URL", ""),
		Store:       StoreKind(strings.ToLower(get("RENTAL_STORE", string(StorePostgres)))),
	}

	switch cfg.Store {
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			errs = append(errs, errors.New("RENTAL_DATABASE_URL is required for the postgres store"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("RENTAL_STORE[%s] must be %s or %s", cfg.Store, StorePostgres, StoreMemory))
	}

	timeout, err := time.ParseDuration(get("RENTAL_OPERATION_TIMEOUT", defaultOperationTimeout.String()))
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("RENTAL_OPERATION_TIMEOUT: %w", err))
	case timeout <= 0:
		errs = append(errs, fmt.Errorf("RENTAL_OPERATION_TIMEOUT[%s] must be positive", timeout))
	}
	cfg.OperationTimeout = timeout

	cfg.FeeSchedule, err = ParseFeeSchedule(get("RENTAL_FEE_CURRENCY", defaultFeeCurrency), get("RENTAL_FEE_SCHEDULE", ""))
	if err != nil {
		errs = append(errs, fmt.Errorf("RENTAL_FEE_SCHEDULE: %w", err))
	}

	cfg.Conditions, err = ParseConditions(get("RENTAL_CONDITIONS", ""))
	if err != nil {
		errs = append(errs, fmt.Errorf("RENTAL_CONDITIONS: %w", err))
	}

	cfg.Tokens, err = ParseTokens(get("RENTAL_API_TOKENS", ""))
	if err != nil {
		errs = append(errs, fmt.Errorf("RENTAL_API_TOKENS: %w", err))
	}

	if raw := get("RENTAL_LOG_DEV", ""); raw != "" {
		cfg.LogDev, err = strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("RENTAL_LOG_DEV: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// ParseFeeSchedule reads "days:rate,days:rate", e.g. "0:5.00,7:8.50".
// An empty spec is a schedule without late fees.
func ParseFeeSchedule(currencyCode, spec string) (domain.FeeSchedule, error) {
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return domain.FeeSchedule{}, fmt.Errorf("currency[%s]: %w", currencyCode, err)
	}

	schedule := domain.FeeSchedule{Currency: unit}

	for _, part := range splitList(spec) {
		days, rate, ok := strings.Cut(part, ":")
		if !ok {
			return domain.FeeSchedule{}, fmt.Errorf("rule[%s] is not days:rate", part)
		}

		threshold, err := strconv.Atoi(strings.TrimSpace(days))
		if err != nil {
			return domain.FeeSchedule{}, fmt.Errorf("rule[%s] days: %w", part, err)
		}

		dailyRate, err := decimal.NewFromString(strings.TrimSpace(rate))
		if err != nil {
			return domain.FeeSchedule{}, fmt.Errorf("rule[%s] rate: %w", part, err)
		}

		schedule.Rules = append(schedule.Rules, domain.FeeRule{ThresholdDays: threshold, DailyRate: dailyRate})
	}

	if err := schedule.Validate(); err != nil {
		return domain.FeeSchedule{}, fmt.Errorf("schedule.Validate: %w", err)
	}

	return schedule, nil
}

// ParseConditions reads a comma separated list. Empty means the default set.
func ParseConditions(spec string) (domain.ConditionSet, error) {
	parts := splitList(spec)
	if len(parts) == 0 {
		return domain.DefaultConditions(), nil
	}

	conditions := lo.Map(parts, func(p string, _ int) domain.Condition {
		return domain.Condition(strings.ToUpper(p))
	})

	return domain.NewConditionSet(lo.Uniq(conditions)...), nil
}

// ParseTokens reads "token=ROLE:principalID,...".
func ParseTokens(spec string) (map[string]domain.Principal, error) {
	tokens := map[string]domain.Principal{}

	for _, part := range splitList(spec) {
		token, principal, ok := strings.Cut(part, "=")
		if !ok || token == "" {
			return nil, fmt.Errorf("entry #%d is not token=role:id", len(tokens)+1)
		}

		rawRole, id, ok := strings.Cut(principal, ":")
		if !ok || id == "" {
			return nil, fmt.Errorf("entry #%d is not token=role:id", len(tokens)+1)
		}

		role, err := domain.ToRole(strings.ToUpper(rawRole))
		if err != nil {
			return nil, fmt.Errorf("entry #%d role[%s]: %w", len(tokens)+1, rawRole, err)
		}

		if _, dup := tokens[token]; dup {
			return nil, fmt.Errorf("entry #%d repeats a token", len(tokens)+1)
		}

		tokens[token] = domain.Principal{ID: id, Role: role}
	}

	return tokens, nil
}

func splitList(s string) []string {
	return lo.Compact(lo.Map(strings.Split(s, ","), func(p string, _ int) string {
		return strings.TrimSpace(p)
	}))
}
