// internal/app/app_test.go
package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"biblioteca/internal/circulation"
	"biblioteca/internal/clients"
	"biblioteca/internal/config"
	"biblioteca/internal/logging"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)

// clock is shared between the test and the server goroutines.
type clock struct {
	ns atomic.Int64
}

func newClock(at time.Time) *clock {
	c := &clock{}
	c.Set(at)
	return c
}

func (c *clock) Now() time.Time   { return time.Unix(0, c.ns.Load()).UTC() }
func (c *clock) Set(at time.Time) { c.ns.Store(at.UnixNano()) }

type harness struct {
	app    *App
	client *clients.Client
	clock  *clock
	url    string
}

func testConfig(driver string) config.Config {
	cfg := config.Config{
		Env:       "test",
		LogLevel:  "error",
		Telemetry: config.Telemetry{ServiceName: "biblioteca-test"},
		Overdue:   config.Overdue{ScanInterval: time.Minute},
	}
	cfg.Database.Driver = driver
	switch driver {
	case "sqlite":
		cfg.Database.DSN = ":memory:"
	case "postgres":
		cfg.Database.DSN = os.Getenv("BIBLIOTECA_TEST_DATABASE_URL")
	}
	return cfg
}

// resetPostgres empties a shared postgres database between tests.
func resetPostgres(t *testing.T, a *App) {
	t.Helper()

	_, err := a.db.SQLX().Exec("TRUNCATE TABLE books, users, loans, donations, volunteer_hours, events")
	require.NoError(t, err)
}

func start(t *testing.T, cfg config.Config) *harness {
	t.Helper()

	clk := newClock(t0)
	a, err := New(context.Background(), cfg, logging.Discard(), WithClock(clk.Now))
	require.NoError(t, err)
	if cfg.Database.Driver == "postgres" {
		resetPostgres(t, a)
	}

	srv := httptest.NewServer(a.Handler())
	t.Cleanup(func() {
		srv.Close()
		assert.NoError(t, a.Close(context.Background()))
	})

	return &harness{app: a, client: clients.New(srv.URL), clock: clk, url: srv.URL}
}

// backends runs fn against every storage backend. Postgres joins when
// BIBLIOTECA_TEST_DATABASE_URL points at a disposable database.
func backends(t *testing.T, fn func(t *testing.T, h *harness)) {
	drivers := []string{"memory", "sqlite"}
	if os.Getenv("BIBLIOTECA_TEST_DATABASE_URL") != "" {
		drivers = append(drivers, "postgres")
	}

	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			fn(t, start(t, testConfig(driver)))
		})
	}
}

func apiStatus(t *testing.T, err error) (int, string) {
	t.Helper()

	var apiErr *clients.APIError
	require.True(t, errors.As(err, &apiErr), "expected API error, got %v", err)
	return apiErr.StatusCode, apiErr.Message
}

func TestLendAndReturnScenario(t *testing.T) {
	backends(t, func(t *testing.T, h *harness) {
		ctx := context.Background()

		book, err := h.client.Catalog.CreateBook(ctx, "Clean Architecture", "Robert C. Martin", "978-0134494166")
		require.NoError(t, err)
		joao, err := h.client.Membership.RegisterUser(ctx, "João Silva", "joao@email.com")
		require.NoError(t, err)

		loan, err := h.client.Circulation.LendBook(ctx, book.ID, joao.ID)
		require.NoError(t, err)
		assert.True(t, t0.AddDate(0, 0, 14).Equal(loan.DueAt))

		got, err := h.client.Catalog.GetBook(ctx, book.ID)
		require.NoError(t, err)
		assert.False(t, got.Available)

		maria, err := h.client.Membership.RegisterUser(ctx, "Maria Souza", "maria@email.com")
		require.NoError(t, err)
		_, err = h.client.Circulation.LendBook(ctx, book.ID, maria.ID)
		status, msg := apiStatus(t, err)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "book not available", msg)

		receipt, err := h.client.Circulation.ReturnLoan(ctx, loan.ID)
		require.NoError(t, err)
		assert.Zero(t, receipt.Fee)
		assert.True(t, receipt.FeePaid)
		require.NotNil(t, receipt.Loan.ReturnedAt)

		got, err = h.client.Catalog.GetBook(ctx, book.ID)
		require.NoError(t, err)
		assert.True(t, got.Available)

		_, err = h.client.Circulation.ReturnLoan(ctx, loan.ID)
		status, _ = apiStatus(t, err)
		assert.Equal(t, http.StatusBadRequest, status)

		history, err := h.client.Circulation.LoanHistory(ctx, loan.ID)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, "LoanOpened", history[0].EventType)
		assert.Equal(t, "LoanReturned", history[1].EventType)
	})
}

func TestVolunteerHoursScenario(t *testing.T) {
	backends(t, func(t *testing.T, h *harness) {
		ctx := context.Background()

		user, err := h.client.Membership.RegisterUser(ctx, "Ana Lima", "ana@email.com")
		require.NoError(t, err)

		receipt, err := h.client.Donation.DonateHours(ctx, user.ID, 3, "palestra")
		require.NoError(t, err)
		assert.Equal(t, 30.0, receipt.CreditBalance)

		got, err := h.client.Membership.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, 30.0, got.Credits)

		hours, err := h.client.Donation.ListHours(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, hours, 1)
		assert.Equal(t, "palestra", hours[0].Activity)
	})
}

func TestLateReturnPaidWithDonationCredits(t *testing.T) {
	backends(t, func(t *testing.T, h *harness) {
		ctx := context.Background()

		book, err := h.client.Catalog.CreateBook(ctx, "Pride and Prejudice", "Jane Austen", "9780141439518")
		require.NoError(t, err)
		gift, err := h.client.Catalog.CreateBook(ctx, "The Great Gatsby", "F. Scott Fitzgerald", "9780743273565")
		require.NoError(t, err)
		user, err := h.client.Membership.RegisterUser(ctx, "Pedro Alves", "pedro@email.com")
		require.NoError(t, err)

		donated, err := h.client.Donation.DonateBook(ctx, gift.ID, user.ID)
		require.NoError(t, err)
		assert.Equal(t, 20.0, donated.CreditBalance)

		loan, err := h.client.Circulation.LendBook(ctx, book.ID, user.ID)
		require.NoError(t, err)

		h.clock.Set(t0.AddDate(0, 0, 17))

		overdue, err := h.client.Circulation.ListOverdue(ctx)
		require.NoError(t, err)
		require.Len(t, overdue, 1)
		assert.True(t, overdue[0].Overdue)
		assert.Equal(t, 3, overdue[0].DaysOverdue)

		report, err := h.app.Scanner.Scan(ctx)
		require.NoError(t, err)
		require.Len(t, report, 1)
		assert.Equal(t, loan.ID, report[0].LoanID)

		receipt, err := h.client.Circulation.ReturnLoan(ctx, loan.ID)
		require.NoError(t, err)
		assert.Equal(t, 3.0, receipt.Fee)
		assert.True(t, receipt.FeePaid)
		assert.Equal(t, 17.0, receipt.CreditBalance)

		active, err := h.client.Circulation.ListLoans(ctx, circulation.LoanFilter{UserID: user.ID, ActiveOnly: true})
		require.NoError(t, err)
		assert.Empty(t, active)
	})
}

func TestHealthAndMetrics(t *testing.T) {
	backends(t, func(t *testing.T, h *harness) {
		ctx := context.Background()
		require.NoError(t, h.client.Health(ctx))

		book, err := h.client.Catalog.CreateBook(ctx, "Clean Architecture", "Robert C. Martin", "978-0134494166")
		require.NoError(t, err)
		user, err := h.client.Membership.RegisterUser(ctx, "João Silva", "joao@email.com")
		require.NoError(t, err)
		_, err = h.client.Circulation.LendBook(ctx, book.ID, user.ID)
		require.NoError(t, err)

		resp, err := http.Get(h.url + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), "request_duration_seconds")
		assert.Contains(t, string(body), `route="/emprestimos`)
	})
}

func TestRateLimitedWrites(t *testing.T) {
	cfg := testConfig("memory")
	cfg.RateLimit = config.RateLimit{RPS: 0.001, Burst: 1}
	h := start(t, cfg)
	ctx := context.Background()

	_, err := h.client.Membership.RegisterUser(ctx, "Ana Lima", "ana@email.com")
	require.NoError(t, err)

	_, err = h.client.Membership.RegisterUser(ctx, "Bia Lima", "bia@email.com")
	status, _ := apiStatus(t, err)
	assert.Equal(t, http.StatusTooManyRequests, status)

	users, err := h.client.Membership.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

// Without row locks only the serialized backends guarantee a single winner.
func TestConcurrentLendsPreventDoubleLoan(t *testing.T) {
	for _, driver := range []string{"memory", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			h := start(t, testConfig(driver))
			ctx := context.Background()

			book, err := h.client.Catalog.CreateBook(ctx, "The Great Gatsby", "F. Scott Fitzgerald", "9780743273565")
			require.NoError(t, err)

			var userIDs []uuid.UUID
			for i := 0; i < 10; i++ {
				user, err := h.client.Membership.RegisterUser(ctx, "Leitor", "leitor"+string(rune('a'+i))+"@email.com")
				require.NoError(t, err)
				userIDs = append(userIDs, user.ID)
			}

			var (
				wg        sync.WaitGroup
				successes atomic.Int32
			)
			for _, id := range userIDs {
				wg.Add(1)
				go func(id uuid.UUID) {
					defer wg.Done()
					if _, err := h.client.Circulation.LendBook(ctx, book.ID, id); err == nil {
						successes.Add(1)
					}
				}(id)
			}
			wg.Wait()

			assert.Equal(t, int32(1), successes.Load(), "only one concurrent lend should succeed")

			active, err := h.client.Circulation.ListLoans(ctx, circulation.LoanFilter{BookID: book.ID, ActiveOnly: true})
			require.NoError(t, err)
			assert.Len(t, active, 1)
		})
	}
}
