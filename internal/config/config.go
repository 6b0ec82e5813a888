// Package config gathers run settings from a .env file, the environment
// and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the settings of a snipper run.
type Config struct {
	InputDir       string // Scanned forms, walked recursively
	OutputDir      string // Snippets and sidecars; wiped at start
	TemplateDir    string // <label>.png and <size>.png templates
	Workers        int    // 1 runs sequentially
	UseOCR         bool   // Read the form number with Tesseract
	ScripterDigits int    // Leading digits of the form number naming the scripter
	ReportPath     string // JSON quality report, empty for none
	LogLevel       string // debug, info, warn or error
	LabelRule      string // joint or ratio-first
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		InputDir:       "donnees",
		OutputDir:      "output",
		TemplateDir:    "base2",
		Workers:        1,
		UseOCR:         false,
		ScripterDigits: 2,
		ReportPath:     "",
		LogLevel:       "info",
		LabelRule:      "joint",
	}
}

// Load reads envFile if it exists, then the environment, over the defaults.
// Malformed numbers and booleans are errors. Ranges are not checked here
// since flags may still override the values; call Validate after parsing.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	d := Default()
	c := Config{
		InputDir:    getEnv("SNIPPER_INPUT_DIR", d.InputDir),
		OutputDir:   getEnv("SNIPPER_OUTPUT_DIR", d.OutputDir),
		TemplateDir: getEnv("SNIPPER_TEMPLATE_DIR", d.TemplateDir),
		ReportPath:  getEnv("SNIPPER_REPORT", d.ReportPath),
		LogLevel:    getEnv("SNIPPER_LOG_LEVEL", d.LogLevel),
		LabelRule:   getEnv("SNIPPER_LABEL_RULE", d.LabelRule),
	}

	var errs []error
	var err error
	if c.Workers, err = getEnvInt("SNIPPER_WORKERS", d.Workers); err != nil {
		errs = append(errs, err)
	}
	if c.UseOCR, err = getEnvBool("SNIPPER_USE_OCR", d.UseOCR); err != nil {
		errs = append(errs, err)
	}
	if c.ScripterDigits, err = getEnvInt("SNIPPER_SCRIPTER_DIGITS", d.ScripterDigits); err != nil {
		errs = append(errs, err)
	}
	return c, errors.Join(errs...)
}

// BindFlags registers flags on fs that override the loaded values.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.InputDir, "input", c.InputDir, "Directory of scanned forms")
	fs.StringVar(&c.OutputDir, "output", c.OutputDir, "Directory for snippets (wiped at start)")
	fs.StringVar(&c.TemplateDir, "templates", c.TemplateDir, "Directory of label and size templates")
	fs.IntVar(&c.Workers, "workers", c.Workers, "Number of images processed concurrently")
	fs.BoolVar(&c.UseOCR, "ocr", c.UseOCR, "Read form numbers with Tesseract")
	fs.IntVar(&c.ScripterDigits, "scripter-digits", c.ScripterDigits, "Digits of the form number naming the scripter")
	fs.StringVar(&c.ReportPath, "report", c.ReportPath, "Write a JSON quality report to this path")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&c.LabelRule, "label-rule", c.LabelRule, "Label selection: joint or ratio-first")
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch {
	case c.InputDir == "":
		return errors.New("input directory is required")
	case c.OutputDir == "":
		return errors.New("output directory is required")
	case c.Workers < 1:
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	case c.ScripterDigits < 0:
		return fmt.Errorf("scripter digits must not be negative, got %d", c.ScripterDigits)
	case c.LabelRule != "joint" && c.LabelRule != "ratio-first":
		return fmt.Errorf("unknown label rule %q", c.LabelRule)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback, nil
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return fallback, fmt.Errorf("%s: %q is not a number", key, value)
	}
	return v, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback, nil
	}
	v, err := strconv.ParseBool(value)
	if err != nil {
		return fallback, fmt.Errorf("%s: %q is not a boolean", key, value)
	}
	return v, nil
}
