package repository_test

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/rentals/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/text/currency"
)

func startPostgres(ctx context.Context) (testcontainers.Container, string, error) {
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithInitScripts(filepath.Join("..", "db", "schema.sql")),
		postgres.WithDatabase("rentals"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return container, "", fmt.Errorf("container.ConnectionString: %w", err)
	}

	return container, connStr, nil
}

// postgresSuite owns one container and pool for all tests of an embedding suite.
type postgresSuite struct {
	suite.Suite

	container testcontainers.Container
	pool      *pgxpool.Pool
}

// before all tests in the suite
func (suite *postgresSuite) SetupSuite() {
	ctx := suite.T().Context()

	var (
		connStr string
		err     error
	)

	suite.container, connStr, err = startPostgres(ctx)
	suite.Require().NoError(err)

	suite.pool, err = pgxpool.New(ctx, connStr)
	suite.Require().NoError(err)
}

// after all tests in the suite
func (suite *postgresSuite) TearDownSuite() {
	ctx := context.Background()

	if suite.pool != nil {
		suite.pool.Close()
	}
	if suite.container != nil {
		suite.NoError(suite.container.Terminate(ctx))
	}
}

func (suite *postgresSuite) deleteAll() {
	_, err := suite.pool.Exec(suite.T().Context(),
		"TRUNCATE TABLE order_events, pickup_documents, rental_orders, products CASCADE")
	suite.NoError(err)
}

func randomProduct() domain.Product {
	total := gofakeit.Number(5, 50)

	return domain.Product{
		VendorID:         gofakeit.UUID(),
		Name:             gofakeit.ProductName(),
		TotalQuantity:    total,
		ReservedQuantity: gofakeit.Number(0, total),
	}
}

func randomOrder(product domain.Product) domain.Order {
	// postgres keeps microseconds
	now := time.Now().UTC().Truncate(time.Microsecond)

	order, err := domain.NewOrder(product,
		gofakeit.UUID(),
		gofakeit.Number(1, 3),
		now.Add(time.Duration(gofakeit.Number(1, 240))*time.Hour),
		now)
	if err != nil {
		panic(err)
	}

	return order
}

func randomMoney() domain.Money {
	return domain.Money{
		Amount:   decimal.NewFromFloat(gofakeit.Price(1, 100)).Round(2),
		Currency: randomCurrency(),
	}
}

func randomCurrency() currency.Unit {
	var (
		result currency.Unit
		err    error
	)

	for {
		// tag is not a recognized currency
		result, err = currency.ParseISO(gofakeit.CurrencyShort())
		if err == nil {
			break
		}
	}

	return result
}

func randomUUID() uuid.UUID {
	return uuid.MustParse(gofakeit.UUID())
}
