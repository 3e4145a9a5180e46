// internal/circulation/scanner.go
package circulation

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// OverdueLoan is an open loan past its due date.
type OverdueLoan struct {
	LoanID      uuid.UUID `json:"emprestimo_id"`
	BookID      uuid.UUID `json:"livro_id"`
	UserID      uuid.UUID `json:"usuario_id"`
	DueAt       time.Time `json:"data_devolucao_prevista"`
	DaysOverdue int       `json:"dias_atraso"`
}

// OverdueScanner periodically looks for overdue loans and logs each one.
type OverdueScanner struct {
	service  Service
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
	gauge    metric.Int64Gauge
}

// ScannerOption configures an OverdueScanner.
type ScannerOption func(*OverdueScanner)

// WithScanClock replaces time.Now when computing days overdue.
func WithScanClock(now func() time.Time) ScannerOption {
	return func(s *OverdueScanner) {
		s.now = now
	}
}

func NewOverdueScanner(service Service, interval time.Duration, logger *slog.Logger, opts ...ScannerOption) *OverdueScanner {
	gauge, err := otel.Meter("biblioteca/circulation").Int64Gauge("biblioteca.loans.overdue",
		metric.WithDescription("Open loans past their due date at the last scan."))
	if err != nil {
		otel.Handle(err)
	}

	s := &OverdueScanner{
		service:  service,
		interval: interval,
		logger:   logger,
		now:      time.Now,
		gauge:    gauge,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan runs a single pass and returns what it found.
func (s *OverdueScanner) Scan(ctx context.Context) ([]OverdueLoan, error) {
	loans, err := s.service.ListOverdue(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	report := make([]OverdueLoan, 0, len(loans))
	for _, loan := range loans {
		entry := OverdueLoan{
			LoanID:      loan.ID,
			BookID:      loan.BookID,
			UserID:      loan.UserID,
			DueAt:       loan.DueAt,
			DaysOverdue: loan.DaysOverdue(now),
		}
		report = append(report, entry)

		s.logger.WarnContext(ctx, "loan overdue",
			"loan_id", entry.LoanID,
			"book_id", entry.BookID,
			"user_id", entry.UserID,
			"days_overdue", entry.DaysOverdue,
		)
	}

	s.gauge.Record(ctx, int64(len(report)))
	s.logger.InfoContext(ctx, "overdue scan finished", "overdue", len(report))
	return report, nil
}

// Run scans on every tick until ctx is cancelled. Failed scans are logged
// and retried on the next tick.
func (s *OverdueScanner) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.InfoContext(ctx, "overdue scanner started", "interval", s.interval)

	for {
		if _, err := s.Scan(ctx); err != nil && ctx.Err() == nil {
			s.logger.ErrorContext(ctx, "overdue scan failed", "error", err)
		}

		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "overdue scanner stopped")
			return nil
		case <-ticker.C:
		}
	}
}
