package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/riskhound/riskhound/internal/config"
	"github.com/riskhound/riskhound/internal/database"
	rhlog "github.com/riskhound/riskhound/internal/log"
	"github.com/riskhound/riskhound/internal/model"
	"github.com/riskhound/riskhound/internal/pipeline"
	"github.com/riskhound/riskhound/internal/report"
	"github.com/riskhound/riskhound/internal/scoring"
	"github.com/riskhound/riskhound/internal/store"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <url> [url...]",
		Short: "Assess the risk of one or more URLs",
		Long: `Scan fetches each target URL and assesses its risk of hosting illegal
or fraudulent content.

For each target it extracts:
- Domain features (entropy, brand similarity, homograph attacks, blacklists)
- WHOIS registration data (age, expiry, registrar)
- Page content (sensitive keywords, login forms, suspicious scripts)
- Certificate details (issuer trust, validity window, name match)
- Network signals (DNS records, availability, security headers)
- Same-origin subpages (per-page mini risk scores)

Bare hosts are assessed over http://.

Examples:
  # Assess a single URL
  riskhound scan example.com

  # Assess several URLs concurrently
  riskhound scan site1.com site2.com site3.com -w 20

  # JSON report to a file
  riskhound scan --json -o report.json example.com

  # Markdown report plus a CSV alongside
  riskhound scan --markdown --csv results.csv example.com`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Fetch behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Page fetch timeout per target")
	cmd.Flags().Duration("subpage-timeout", config.DefaultSubpageTimeout,
		"Fetch timeout per subpage")
	cmd.Flags().Duration("head-timeout", config.DefaultHeadTimeout,
		"Availability probe timeout")
	cmd.Flags().IntP("max-subpages", "p", config.DefaultMaxSubpages,
		"Maximum same-origin subpages crawled per target")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of URLs assessed concurrently")

	// Data source flags
	cmd.Flags().String("blacklist-ips", "",
		"Plain-text IP blacklist file (one address per line)")
	cmd.Flags().String("blacklist-domains", "",
		"Plain-text domain blacklist file (one domain per line)")
	cmd.Flags().String("keywords", "",
		"JSON keyword dictionary file (category -> word list)")
	cmd.Flags().Bool("no-db", false,
		"Disable assessment persistence to the SQLite database")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .riskhound in current or XDG config directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().String("csv", "",
		"Additionally write a CSV report to the specified file")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Structured logging with credential masking.
	logger := rhlog.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Context with signal handling for graceful shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runScan(ctx, cfg, logger)
}

// buildConfig creates a Config from cobra command flags and the
// optional YAML config file. Flag defaults are applied first, then the
// file overlays them, matching the loader's overlay semantics.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if err := config.LoadFile(cfg); err != nil {
		return nil, err
	}

	// Explicit flags win over the file.
	if cmd.Flags().Changed("timeout") {
		if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("subpage-timeout") {
		if cfg.SubpageTimeout, err = cmd.Flags().GetDuration("subpage-timeout"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("head-timeout") {
		if cfg.HeadTimeout, err = cmd.Flags().GetDuration("head-timeout"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("max-subpages") {
		if cfg.MaxSubpages, err = cmd.Flags().GetInt("max-subpages"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("workers") {
		if cfg.Workers, err = cmd.Flags().GetInt("workers"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("blacklist-ips") {
		if cfg.BlacklistIPFile, err = cmd.Flags().GetString("blacklist-ips"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("blacklist-domains") {
		if cfg.BlacklistDomainFile, err = cmd.Flags().GetString("blacklist-domains"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("keywords") {
		if cfg.KeywordFile, err = cmd.Flags().GetString("keywords"); err != nil {
			return nil, err
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}
	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}
	cfg.CSVFile, err = cmd.Flags().GetString("csv")
	if err != nil {
		return nil, err
	}
	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB
	if cfg.DBDir == "" {
		cfg.DBDir = config.XDGDataDir()
	}

	// Backing data files default into the data directory so repeat runs
	// share one refreshed copy.
	if cfg.BlacklistIPFile == "" {
		cfg.BlacklistIPFile = filepath.Join(cfg.DBDir, "blacklist_ips.txt")
	}
	if cfg.BlacklistDomainFile == "" {
		cfg.BlacklistDomainFile = filepath.Join(cfg.DBDir, "blacklist_domains.txt")
	}
	if cfg.KeywordFile == "" {
		cfg.KeywordFile = "keyword.json"
	}

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.Targets = args

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// runScan executes the batch assessment.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if len(cfg.Targets) == 0 {
		return errors.New("no targets provided (specify one or more URLs as arguments)")
	}

	logger.Info("starting scan",
		"targets", len(cfg.Targets),
		"workers", cfg.Workers,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if persistence is enabled.
	var db *database.RiskDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)

		// Refresh the blacklist files from the database feed before
		// anything reads them. A failed refresh keeps the last files.
		ips, domains, err := store.RefreshBlacklistFiles(ctx, db.DB(), cfg.BlacklistIPFile, cfg.BlacklistDomainFile)
		if err != nil {
			logger.Warn("blacklist refresh failed, using existing files", "error", err)
		} else {
			logger.Debug("blacklist files refreshed", "ips", ips, "domains", domains)
		}
	}

	blacklist, err := store.LoadBlacklistFiles(cfg.BlacklistIPFile, cfg.BlacklistDomainFile)
	if err != nil {
		return fmt.Errorf("failed to load blacklist files: %w", err)
	}

	// Keywords come from the database when available, with the JSON
	// file as fallback; without a database the file is the only source.
	source := store.FileKeywordSource(cfg.KeywordFile)
	if db != nil {
		source = store.FallbackKeywordSource(store.DBKeywordSource(db.DB()), source)
	}
	keywords := store.NewKeywordStore(source, cfg.KeywordTTL, logger)

	p := pipeline.DefaultPipeline(cfg, blacklist, keywords, logger)
	orchestrator := pipeline.NewOrchestrator(p, scoring.NewRuleScorer(), keywords, cfg.Workers, logger)

	fmt.Printf("Assessing %d URL(s) (concurrency: %d)...\n", len(cfg.Targets), cfg.Workers)
	startTime := time.Now()

	results, summary := orchestrator.Run(ctx, cfg.Targets)

	elapsed := time.Since(startTime)
	fmt.Printf("Assessment completed in %s\n", elapsed.Round(time.Millisecond))

	if db != nil {
		if err := db.SaveBatch(ctx, results); err != nil {
			logger.Error("failed to save assessments", "error", err)
		} else {
			logger.Info("assessments saved to database", "count", summary.Total)
		}
	}

	if err := outputReport(cfg, results, summary); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	// A cancelled batch still reported whatever it finished; surface
	// the cancellation so the exit code reflects it.
	return ctx.Err()
}

// outputReport writes the batch report in the requested format(s).
func outputReport(cfg *config.Config, results []*model.RiskAssessment, summary model.BatchSummary) error {
	output, closeOutput, err := openReportDestination(cfg.ReportFile)
	if err != nil {
		return err
	}
	defer closeOutput()

	var primary report.Writer
	switch {
	case cfg.JSONReport:
		primary = report.NewJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		primary = report.NewMarkdownWriter(output)
	default:
		primary = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	writers := []report.Writer{primary}

	if cfg.CSVFile != "" {
		csvOut, closeCSV, err := openReportDestination(cfg.CSVFile)
		if err != nil {
			return err
		}
		defer closeCSV()
		writers = append(writers, report.NewCSVWriter(csvOut))
	}

	_, err = report.NewMultiWriter(writers...).Write(results, summary)
	return err
}

// openReportDestination opens the report file for writing, or returns
// stdout when no path is given. Reports may name sensitive sites, so
// files are created owner-readable only.
func openReportDestination(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
