// Command bookingqa runs offline data-quality checks over the booking store
// and the upstream API and prints the findings as JSON.
//
//	bookingqa conflicts [-from YYYY-MM-DD] [-to YYYY-MM-DD] [-source store|api]
//	bookingqa reconcile [-from YYYY-MM-DD] [-to YYYY-MM-DD]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"booking-dashboard-backend/config"
	"booking-dashboard-backend/internal/booking"
	"booking-dashboard-backend/internal/db"
	"booking-dashboard-backend/internal/stays"
	"booking-dashboard-backend/internal/store"
)

const (
	exitOK       = 0
	exitFindings = 1
	exitError    = 2
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: bookingqa <conflicts|reconcile> [flags]")
}

func main() {
	log.SetOutput(os.Stderr)
	log.SetPrefix("bookingqa ")
	if len(os.Args) < 2 {
		usage()
		os.Exit(exitError)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var code int
	switch os.Args[1] {
	case "conflicts":
		code = runConflicts(ctx, os.Args[2:], os.Stdout)
	case "reconcile":
		code = runReconcile(ctx, os.Args[2:], os.Stdout)
	default:
		usage()
		code = exitError
	}
	os.Exit(code)
}

type windowFlags struct {
	from, to   *string
	configPath *string
	strict     *bool
}

func addWindowFlags(fs *flag.FlagSet) windowFlags {
	return windowFlags{
		from:       fs.String("from", "", "window start (YYYY-MM-DD)"),
		to:         fs.String("to", "", "window end (YYYY-MM-DD)"),
		configPath: fs.String("config", os.Getenv("CONFIG_PATH"), "config file path"),
		strict:     fs.Bool("strict", false, "exit 1 when findings are reported"),
	}
}

// resolve parses the window, filling unset bounds with today -/+ days.
func (w windowFlags) resolve(today booking.Date, days int) (booking.Window, error) {
	win := booking.Window{From: today.AddDays(-days), To: today.AddDays(days)}
	if *w.from != "" {
		d, err := booking.ParseDate(*w.from)
		if err != nil {
			return win, err
		}
		win.From = d
	}
	if *w.to != "" {
		d, err := booking.ParseDate(*w.to)
		if err != nil {
			return win, err
		}
		win.To = d
	}
	if win.From.After(win.To) {
		return win, fmt.Errorf("from %s is after to %s", win.From, win.To)
	}
	return win, nil
}

func today(cfg *config.Config) booking.Date {
	return booking.DateOf(time.Now().In(cfg.Dashboard.Location()))
}

func openStore(cfg *config.Config) (store.Store, error) {
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		return nil, err
	}
	return store.NewGormStore(gormDB), nil
}

func runConflicts(ctx context.Context, args []string, out io.Writer) int {
	fs := flag.NewFlagSet("conflicts", flag.ContinueOnError)
	wf := addWindowFlags(fs)
	source := fs.String("source", "store", "where to read reservations from: store or api")
	if err := fs.Parse(args); err != nil {
		return exitError
	}

	cfg, err := config.Load(*wf.configPath)
	if err != nil {
		log.Printf("failed to load configuration: %v", err)
		return exitError
	}
	win, err := wf.resolve(today(cfg), cfg.Dashboard.PastDays)
	if err != nil {
		log.Printf("invalid window: %v", err)
		return exitError
	}

	var report *booking.ConflictReport
	switch *source {
	case "store":
		s, err := openStore(cfg)
		if err != nil {
			log.Printf("failed to open store: %v", err)
			return exitError
		}
		rows, err := s.FetchIntervals(ctx, win.From, win.To)
		if err != nil {
			log.Printf("failed to read bookings: %v", err)
			return exitError
		}
		report = booking.CheckConflicts(rows, win)
	case "api":
		raw, err := stays.NewClient(&cfg.Stays).FetchBookings(ctx, win.From, win.To)
		if err != nil {
			log.Printf("failed to fetch upstream bookings: %v", err)
			return exitError
		}
		report = booking.CheckConflicts(stays.ToBookings(raw, nil), win)
	default:
		log.Printf("unknown source %q", *source)
		return exitError
	}

	log.Printf("checked %d reservations in %s..%s: %d conflicts, %d rejected",
		report.Checked, win.From, win.To, len(report.Conflicts), len(report.Rejected))
	if err := writeJSON(out, report); err != nil {
		log.Printf("failed to write report: %v", err)
		return exitError
	}
	if *wf.strict && (len(report.Conflicts) > 0 || len(report.Rejected) > 0) {
		return exitFindings
	}
	return exitOK
}

func runReconcile(ctx context.Context, args []string, out io.Writer) int {
	fs := flag.NewFlagSet("reconcile", flag.ContinueOnError)
	wf := addWindowFlags(fs)
	if err := fs.Parse(args); err != nil {
		return exitError
	}

	cfg, err := config.Load(*wf.configPath)
	if err != nil {
		log.Printf("failed to load configuration: %v", err)
		return exitError
	}
	win, err := wf.resolve(today(cfg), 7)
	if err != nil {
		log.Printf("invalid window: %v", err)
		return exitError
	}

	s, err := openStore(cfg)
	if err != nil {
		log.Printf("failed to open store: %v", err)
		return exitError
	}
	rec, err := reconcile(ctx, stays.NewClient(&cfg.Stays), s, win)
	if err != nil {
		log.Printf("reconciliation failed: %v", err)
		return exitError
	}

	log.Printf("upstream %d, store %d, missing %d, extra %d",
		rec.SourceCount, rec.TargetCount, len(rec.Missing), len(rec.Extra))
	if err := writeJSON(out, struct {
		Window booking.Window `json:"window"`
		booking.Reconciliation
	}{win, rec}); err != nil {
		log.Printf("failed to write report: %v", err)
		return exitError
	}
	if *wf.strict && !rec.InSync {
		return exitFindings
	}
	return exitOK
}

func reconcile(ctx context.Context, upstream stays.Fetcher, target booking.IntervalSource, win booking.Window) (booking.Reconciliation, error) {
	source, err := upstream.FetchBookings(ctx, win.From, win.To)
	if err != nil {
		return booking.Reconciliation{}, err
	}
	stored, err := target.FetchIntervals(ctx, win.From, win.To)
	if err != nil {
		return booking.Reconciliation{}, err
	}
	return booking.Reconcile(stays.ToBookings(source, nil), stored), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
