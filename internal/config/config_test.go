package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("SNIPPER_INPUT_DIR", "scans")
	t.Setenv("SNIPPER_WORKERS", "4")
	t.Setenv("SNIPPER_USE_OCR", "true")
	t.Setenv("SNIPPER_SCRIPTER_DIGITS", "3")
	t.Setenv("SNIPPER_REPORT", "run.json")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "scans", c.InputDir)
	assert.Equal(t, 4, c.Workers)
	assert.True(t, c.UseOCR)
	assert.Equal(t, 3, c.ScripterDigits)
	assert.Equal(t, "run.json", c.ReportPath)
	assert.Equal(t, "output", c.OutputDir)
}

func TestLoadMalformedValues(t *testing.T) {
	t.Setenv("SNIPPER_WORKERS", "many")
	t.Setenv("SNIPPER_USE_OCR", "maybe")

	_, err := Load("")
	require.Error(t, err)
	assert.ErrorContains(t, err, `SNIPPER_WORKERS: "many" is not a number`)
	assert.ErrorContains(t, err, `SNIPPER_USE_OCR: "maybe" is not a boolean`)
}

func TestLoadEmptyNumberIsMalformed(t *testing.T) {
	t.Setenv("SNIPPER_SCRIPTER_DIGITS", "")

	_, err := Load("")
	assert.ErrorContains(t, err, "SNIPPER_SCRIPTER_DIGITS")
}

func TestFlagsFixInvalidEnvironment(t *testing.T) {
	t.Setenv("SNIPPER_LABEL_RULE", "best")
	t.Setenv("SNIPPER_WORKERS", "0")

	c, err := Load("")
	require.NoError(t, err)
	assert.Error(t, c.Validate())

	fs := flag.NewFlagSet("snipper", flag.ContinueOnError)
	c.BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"-label-rule", "ratio-first", "-workers", "2"}))
	assert.NoError(t, c.Validate())
	assert.Equal(t, "ratio-first", c.LabelRule)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SNIPPER_TEMPLATE_DIR=icons\nSNIPPER_LOG_LEVEL=debug\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("SNIPPER_TEMPLATE_DIR")
		os.Unsetenv("SNIPPER_LOG_LEVEL")
	})

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "icons", c.TemplateDir)
	assert.Equal(t, "debug", c.LogLevel)
}

func TestLoadMissingDotEnv(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), ".env"))
	assert.NoError(t, err)
}

func TestFlagsOverride(t *testing.T) {
	c := Default()
	fs := flag.NewFlagSet("snipper", flag.ContinueOnError)
	c.BindFlags(fs)

	require.NoError(t, fs.Parse([]string{"-workers", "8", "-output", "out2", "-ocr"}))
	assert.Equal(t, 8, c.Workers)
	assert.Equal(t, "out2", c.OutputDir)
	assert.True(t, c.UseOCR)
	assert.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"no input", func(c *Config) { c.InputDir = "" }},
		{"no output", func(c *Config) { c.OutputDir = "" }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"negative digits", func(c *Config) { c.ScripterDigits = -1 }},
		{"bad rule", func(c *Config) { c.LabelRule = "best" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.modify(&c)
			assert.Error(t, c.Validate())
		})
	}
}
