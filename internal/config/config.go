// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes server settings such
// as the allowed document directories, logging, metrics, rate limiting, and
// the external PDF converter timeout.
//
// An optional YAML file (WORD_MCP_CONFIG) can supply the same fields; any
// environment variable that is set takes precedence over the file. This keeps
// ad-hoc stdio launches (env only) and managed deployments (config file) on
// one code path.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultAllowedDir is used when WORD_MCP_ALLOWED_DIRS is unset.
const DefaultAllowedDir = "./documents"

// fileConfig mirrors Config for the optional YAML file.
type fileConfig struct {
	AllowedDirs []string `yaml:"allowed_dirs"`
	LogLevel    string   `yaml:"log_level"`
	LogPretty   bool     `yaml:"log_pretty"`
	MetricsAddr string   `yaml:"metrics_addr"`
	RateRPS     float64  `yaml:"rate_rps"`
	RateBurst   int      `yaml:"rate_burst"`
	PDFTimeout  string   `yaml:"pdf_timeout"`
}

// Config holds all configuration values for the server.
type Config struct {
	// AllowedDirs are the absolute, cleaned directories in which documents
	// may be created or listed.
	AllowedDirs []string

	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool   // pretty console logs in dev (stderr)

	// Observability
	MetricsAddr string // optional addr for /metrics and /healthz; "" disables

	// Rate limiting of tool invocations
	RateRPS   float64 // tokens per second (0 disables limiting)
	RateBurst int     // bucket size (>= 1)

	// External converter
	PDFTimeout time.Duration // LibreOffice conversion timeout
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from the optional YAML file and the environment,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	fc, err := loadFile(os.Getenv("WORD_MCP_CONFIG"))
	if err != nil {
		return Config{}, err
	}

	dirs := fc.AllowedDirs
	if env := splitCSV(os.Getenv("WORD_MCP_ALLOWED_DIRS")); len(env) > 0 {
		dirs = env
	}
	if len(dirs) == 0 {
		dirs = []string{DefaultAllowedDir}
	}

	pdfTimeout := 60 * time.Second
	if fc.PDFTimeout != "" {
		if d, perr := time.ParseDuration(fc.PDFTimeout); perr == nil {
			pdfTimeout = d
		}
	}

	cfg := Config{
		LogLevel:    strings.ToLower(getenv("WORD_MCP_LOG_LEVEL", firstNonEmpty(fc.LogLevel, "info"))),
		LogPretty:   getbool("WORD_MCP_LOG_PRETTY", fc.LogPretty),
		MetricsAddr: getenv("WORD_MCP_METRICS_ADDR", fc.MetricsAddr),
		RateRPS:     getfloat("WORD_MCP_RATE_RPS", fc.RateRPS),
		RateBurst:   getint("WORD_MCP_RATE_BURST", maxInt(fc.RateBurst, 1)),
		PDFTimeout:  getdur("WORD_MCP_PDF_TIMEOUT", pdfTimeout),
	}

	for _, d := range dirs {
		abs, aerr := filepath.Abs(strings.TrimSpace(d))
		if aerr != nil {
			return cfg, fmt.Errorf("allowed directory %q: %w", d, aerr)
		}
		cfg.AllowedDirs = append(cfg.AllowedDirs, filepath.Clean(abs))
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("WORD_MCP_LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("WORD_MCP_RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("WORD_MCP_RATE_BURST must be >= 1")
	}
	if cfg.PDFTimeout <= 0 {
		return cfg, errors.New("WORD_MCP_PDF_TIMEOUT must be a positive duration")
	}

	return cfg, nil
}

// PathAllowed reports whether path falls inside one of the allowed
// directories. Both sides are canonicalized and containment is decided on
// path segments, so "/docs-evil" is not inside "/docs".
func (c Config) PathAllowed(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	abs = filepath.Clean(abs)

	for _, dir := range c.AllowedDirs {
		rel, rerr := filepath.Rel(dir, abs)
		if rerr != nil {
			continue
		}
		if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
			return true
		}
	}
	return false
}

func loadFile(path string) (fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return fc, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("config file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fc, fmt.Errorf("config file %q: %w", path, err)
	}
	return fc, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
