// Command snipper cuts scanned emergency-icon forms into labelled snippets.
//
// Every image under the input directory is binarized, its grid of drawing
// squares located, each row's printed reference icon classified against a
// template library, and the squares of recognised rows saved as
// <label>_<scripter>_<page>_<row>_<col>.png with a .txt sidecar.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"form-snippets/internal/classify"
	"form-snippets/internal/config"
	"form-snippets/internal/crop"
	"form-snippets/internal/dataset"
	"form-snippets/internal/logging"
	"form-snippets/internal/ocr"
	"form-snippets/internal/pipeline"
	"form-snippets/internal/quality"
	"form-snippets/internal/version"
)

func main() {
	envFile := ".env"
	if v, ok := os.LookupEnv("SNIPPER_ENV_FILE"); ok {
		envFile = v
	}

	cfg, err := config.Load(envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	cfg.BindFlags(flag.CommandLine)
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("snipper"))
		return
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	log := logging.New(os.Stderr, level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("run failed", "err", err)
		if errors.Is(err, classify.ErrTemplateMissing) {
			os.Exit(3)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	started := time.Now()

	params := classify.DefaultParams().WithRule(classify.ParseLabelRule(cfg.LabelRule))
	lib, err := classify.LoadLibrary(cfg.TemplateDir, params)
	if err != nil {
		return err
	}
	defer lib.Close()

	paths, err := dataset.Collect(cfg.InputDir)
	if err != nil {
		return err
	}
	log.Info("collected images", "dir", cfg.InputDir, "count", len(paths))

	removed, err := dataset.ResetOutput(cfg.OutputDir)
	if err != nil {
		return err
	}
	log.Info("output reset", "dir", cfg.OutputDir, "removed", removed)

	writer, err := crop.NewWriter(cfg.OutputDir)
	if err != nil {
		return err
	}

	checker := quality.NewChecker()
	opts := pipeline.DefaultOptions(cfg.InputDir)
	opts.ScripterDigits = cfg.ScripterDigits

	p := pipeline.New(opts, classify.New(lib, params, log), writer, checker, dataset.NewRegistry(), log)

	if cfg.UseOCR {
		engine, err := ocr.NewEngine()
		if err != nil {
			return fmt.Errorf("OCR requested: %w", err)
		}
		defer engine.Close()
		p.WithFormReader(engine)
	}

	sum, runErr := p.Run(ctx, paths, cfg.Workers)

	if err := p.Registry().Save(filepath.Join(cfg.OutputDir, dataset.RegistryFile)); err != nil {
		log.Warn("registry not saved", "err", err)
	}

	elapsed := time.Since(started)
	fmt.Printf("\nProcessed %d images (%d skipped, %d failed), %d rows labelled, %d snippets saved\n",
		sum.Images, sum.Skipped, sum.Failed, sum.Labelled, sum.Saved)
	fmt.Println("\n----- QUALITY -----")
	if err := checker.WriteSummary(os.Stdout); err != nil {
		return err
	}
	fmt.Printf("\nElapsed: %s\n", elapsed.Round(time.Millisecond))

	if cfg.ReportPath != "" {
		report := checker.Report(started, elapsed)
		if err := report.Write(cfg.ReportPath); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		log.Info("report written", "path", cfg.ReportPath, "run_id", report.RunID)
	}

	if errors.Is(runErr, context.Canceled) {
		log.Warn("interrupted")
		return nil
	}
	return runErr
}
