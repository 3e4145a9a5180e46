// cmd/overdue/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"biblioteca/internal/app"
	"biblioteca/internal/circulation"
	"biblioteca/internal/clients"
	"biblioteca/internal/config"
	"biblioteca/internal/logging"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// overdue prints a JSON report of open loans past their due date. With -server
// it asks a running API; otherwise it scans the configured database directly.
func main() {
	serverURL := flag.String("server", "", "base URL of a running API, e.g. http://localhost:8080")
	timeout := flag.Duration("timeout", 30*time.Second, "time limit for the scan")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx, cancel = context.WithTimeout(ctx, *timeout)
	defer cancel()

	var (
		report []circulation.OverdueLoan
		err    error
	)
	if *serverURL != "" {
		report, err = fromServer(ctx, *serverURL)
	} else {
		report, err = fromDatabase(ctx)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "overdue:", err)
		os.Exit(1)
	}

	if err := write(os.Stdout, report); err != nil {
		fmt.Fprintln(os.Stderr, "overdue:", err)
		os.Exit(1)
	}
}

func fromServer(ctx context.Context, baseURL string) ([]circulation.OverdueLoan, error) {
	loans, err := clients.New(baseURL).Circulation.ListOverdue(ctx)
	if err != nil {
		return nil, err
	}

	report := make([]circulation.OverdueLoan, 0, len(loans))
	for _, l := range loans {
		report = append(report, circulation.OverdueLoan{
			LoanID:      l.ID,
			BookID:      l.BookID,
			UserID:      l.UserID,
			DueAt:       l.DueAt,
			DaysOverdue: l.DaysOverdue,
		})
	}
	return report, nil
}

func fromDatabase(ctx context.Context) ([]circulation.OverdueLoan, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := logging.New(cfg.Env, cfg.LogLevel, os.Stderr)
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer a.Close(context.Background())

	return a.Scanner.Scan(ctx)
}

func write(w io.Writer, report []circulation.OverdueLoan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
