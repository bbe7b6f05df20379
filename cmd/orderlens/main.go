package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/op/go-logging"
	"github.com/spf13/pflag"

	"github.com/spektr-org/orderlens/config"
	"github.com/spektr-org/orderlens/helpers"
	"github.com/spektr-org/orderlens/report"
	"github.com/spektr-org/orderlens/session"
	"github.com/spektr-org/orderlens/store"
)

// ============================================================================
// ORDERLENS CLI — Marketplace order dashboard from CSV extracts
// ============================================================================

const version = "0.3.0"

var log = logging.MustGetLogger("orderlens")

// InitLogger Receives the log level to be set in go-logging as a string. This method
// parses the string and set the level to the logger. If the level string is not
// valid an error is returned
func InitLogger(logLevel string) error {
	baseBackend := logging.NewLogBackend(os.Stderr, "", 0)
	format := logging.MustStringFormatter(
		`%{time:2006-01-02 15:04:05} %{level:.5s} %{module:-9s} %{message}`,
	)
	backendFormatter := logging.NewBackendFormatter(baseBackend, format)

	backendLeveled := logging.AddModuleLevel(backendFormatter)
	logLevelCode, err := logging.LogLevel(logLevel)
	if err != nil {
		return err
	}
	backendLeveled.SetLevel(logLevelCode, "")

	// Set the backends to be used.
	logging.SetBackend(backendLeveled)
	return nil
}

func main() {
	// ── Flags ─────────────────────────────────────────────────────────────
	fs := pflag.NewFlagSet("orderlens", pflag.ExitOnError)
	config.RegisterFlags(fs)
	showVersion := fs.Bool("version", false, "Print version and exit")
	fs.Usage = func() { usage(fs) }
	fs.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("orderlens %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load(fs)
	if err != nil {
		if errors.Is(err, config.ErrNoInput) {
			fmt.Fprintln(os.Stderr, "Error: --file or --dir is required")
			fs.Usage()
			os.Exit(1)
		}
		fatalf("Failed to load config: %v", err)
	}

	if err := InitLogger(cfg.LogLevel); err != nil {
		fatalf("%v", err)
	}
	log.Debugf("Config: %+v", cfg)

	// ── Output writer ─────────────────────────────────────────────────────
	var writer io.Writer = os.Stdout
	if cfg.Out != "" {
		f, err := os.Create(cfg.Out)
		if err != nil {
			fatalf("Failed to create output file: %v", err)
		}
		defer f.Close()
		writer = f
	}

	// ── Load ──────────────────────────────────────────────────────────────
	st, err := loadStore(cfg)
	if err != nil {
		fatalf("Failed to load data: %v", err)
	}
	if st.Len() == 0 {
		log.Warning("No order rows loaded")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := session.New(st, cfg.Options()...)
	req, err := initialRequest(cfg, s)
	if err != nil {
		fatalf("%v", err)
	}

	// ── Interactive mode ──────────────────────────────────────────────────
	if cfg.Interactive {
		repl := &interactive{session: s, out: writer, errOut: os.Stderr, format: cfg.Format}
		if err := repl.run(ctx, os.Stdin, req); err != nil {
			fatalf("%v", err)
		}
		return
	}

	// ── One-shot mode ─────────────────────────────────────────────────────
	d, err := s.Apply(ctx, req)
	if err != nil {
		fatalf("Report failed: %v", err)
	}
	for _, w := range d.Warnings {
		log.Warning(w)
	}
	if err := report.Encode(writer, d, cfg.Format); err != nil {
		fatalf("Failed to write output: %v", err)
	}
	if cfg.Out != "" {
		log.Infof("📄 %s written to %s", cfg.Format, cfg.Out)
	}
}

func loadStore(cfg *config.Config) (*store.Store, error) {
	if cfg.Dir != "" {
		return helpers.LoadDir(cfg.Dir)
	}
	return helpers.LoadFiles(cfg.Files...)
}

// initialRequest builds the first filter. Missing bounds default to the
// first and last purchase day in the data.
func initialRequest(cfg *config.Config, s *session.Session) (session.Request, error) {
	start, err := cfg.StartDate()
	if err != nil {
		return session.Request{}, err
	}
	end, err := cfg.EndDate()
	if err != nil {
		return session.Request{}, err
	}
	if first, last, ok := s.Bounds(); ok {
		start = orDefault(start, first)
		end = orDefault(end, last)
	}
	return session.Request{Start: start, End: end, Categories: cfg.Categories}, nil
}

func orDefault(t, def time.Time) time.Time {
	if t.IsZero() {
		return def
	}
	return t
}

func usage(fs *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `orderlens — Marketplace order dashboard

Usage:
  orderlens --file orders.csv --start 2018-01-01 --end 2018-06-30 --format text
  orderlens --file a.csv --file b.csv --category toys --category books --format csv
  orderlens --dir ./olist --format yaml --out dashboard.yaml
  orderlens --dir ./olist --interactive

Flags:
`)
	fs.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Environment:
  Config keys can be set as ORDERLENS_<KEY>, with dashes and dots as
  underscores: ORDERLENS_FILES, ORDERLENS_LOG_LEVEL, ORDERLENS_LIMITS_SELLERS.

Formats:
  json      Full JSON output (default)
  pretty    Pretty-printed JSON
  yaml      YAML document
  csv       One CSV block per table (ready for Sheets/Excel)
  text      Human-readable summary and tables
`)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
