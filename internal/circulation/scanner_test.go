// internal/circulation/scanner_test.go
package circulation

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverdueScannerScan(t *testing.T) {
	f := newFixture(t, "memory")
	ctx := context.Background()
	book := f.addBook(t, "Clean Architecture", "978-0134494166")
	user := f.addUser(t, "João Silva", "joao@email.com")

	loan, err := f.svc.LendBook(ctx, book.ID, user.ID)
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	f.now = loan.DueAt.AddDate(0, 0, 4).Add(time.Hour)
	scanner := NewOverdueScanner(f.svc, time.Minute, logger, WithScanClock(func() time.Time { return f.now }))

	report, err := scanner.Scan(ctx)
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, loan.ID, report[0].LoanID)
	assert.Equal(t, 4, report[0].DaysOverdue)
	assert.Contains(t, buf.String(), "loan overdue")
	assert.Contains(t, buf.String(), "days_overdue=4")
}

func TestOverdueScannerRunStopsOnCancel(t *testing.T) {
	f := newFixture(t, "memory")
	var buf bytes.Buffer
	scanner := NewOverdueScanner(f.svc, 10*time.Millisecond, slog.New(slog.NewTextHandler(&buf, nil)))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- scanner.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scanner did not stop")
	}
}
