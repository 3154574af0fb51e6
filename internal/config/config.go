package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/pdfoutline/internal/convert"
	"github.com/dgallion1/pdfoutline/internal/hierarchy"
	"github.com/dgallion1/pdfoutline/internal/parser"
	"github.com/dgallion1/pdfoutline/internal/sheet"
	"github.com/dgallion1/pdfoutline/internal/upload"
)

// skipPatternSeparator splits SKIP_LINE_PATTERNS; regexes may contain commas.
const skipPatternSeparator = "||"

type Config struct {
	Port string

	// Storage for per-conversion workspaces
	StorageDir string

	// Auth
	APIKey string

	// Upload limits
	MaxUploadBytes    int64
	AllowedExtensions []string

	// Worker pool
	WorkerCount    int
	MaxQueueSize   int
	MaxConnections int

	// Job state
	JobTTL         time.Duration
	ConvertTimeout time.Duration

	// Hierarchy inference
	IndentUnit     float64
	FontSizeDelta  float64
	SignalPriority string

	// Extraction
	SkipLinePatterns     []string
	PasswordFieldEnabled bool
	PdftotextFallback    bool

	// Spreadsheet
	IndentStyle string
	SheetName   string
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		StorageDir: envOr("STORAGE_DIR", "uploads"),

		APIKey: os.Getenv("API_KEY"),

		MaxUploadBytes:    envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB
		AllowedExtensions: envList("ALLOWED_EXTENSIONS", ",", []string{"pdf"}),

		WorkerCount:    envInt("WORKER_COUNT", 4),
		MaxQueueSize:   envInt("MAX_QUEUE_SIZE", 100),
		MaxConnections: envInt("MAX_CONNECTIONS", 256),

		JobTTL:         envDuration("JOB_TTL", 1*time.Hour),
		ConvertTimeout: envDuration("CONVERT_TIMEOUT", 2*time.Minute),

		IndentUnit:     envFloat("INDENT_UNIT", 18),
		FontSizeDelta:  envFloat("FONT_SIZE_DELTA", 1),
		SignalPriority: envOr("SIGNAL_PRIORITY", "numbering,indent,font"),

		SkipLinePatterns:     envList("SKIP_LINE_PATTERNS", skipPatternSeparator, nil),
		PasswordFieldEnabled: envBool("PDF_PASSWORD_FIELD_ENABLED", true),
		PdftotextFallback:    envBool("PDFTOTEXT_FALLBACK", true),

		IndentStyle: envOr("INDENT_STYLE", string(sheet.IndentAlign)),
		SheetName:   envOr("SHEET_NAME", sheet.DefaultSheetName),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConnections <= 0 {
		cfg.MaxConnections = 256
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.ConvertTimeout <= 0 {
		cfg.ConvertTimeout = 2 * time.Minute
	}

	return cfg
}

func (c Config) Validate() error {
	if c.StorageDir == "" {
		return fmt.Errorf("STORAGE_DIR is required")
	}
	if len(c.AllowedExtensions) == 0 {
		return fmt.Errorf("ALLOWED_EXTENSIONS must list at least one extension")
	}
	if c.IndentUnit <= 0 {
		return fmt.Errorf("INDENT_UNIT must be positive, got %g", c.IndentUnit)
	}
	if c.FontSizeDelta <= 0 {
		return fmt.Errorf("FONT_SIZE_DELTA must be positive, got %g", c.FontSizeDelta)
	}
	if _, err := hierarchy.ParsePriority(c.SignalPriority); err != nil {
		return fmt.Errorf("SIGNAL_PRIORITY: %w", err)
	}
	if _, err := sheet.ParseIndentStyle(c.IndentStyle); err != nil {
		return fmt.Errorf("INDENT_STYLE: %w", err)
	}
	if _, err := parser.New(parser.Options{SkipPatterns: c.SkipLinePatterns}); err != nil {
		return fmt.Errorf("SKIP_LINE_PATTERNS: %w", err)
	}
	return nil
}

// UploadPolicy is the validation applied to every upload.
func (c Config) UploadPolicy() upload.Policy {
	return upload.Policy{MaxBytes: c.MaxUploadBytes, AllowedExtensions: c.AllowedExtensions}
}

// ConvertConfig assembles the pipeline settings. Call Validate first; the
// parse errors it reports are ignored here.
func (c Config) ConvertConfig() convert.Config {
	priority, _ := hierarchy.ParsePriority(c.SignalPriority)
	style, _ := sheet.ParseIndentStyle(c.IndentStyle)
	return convert.Config{
		Parser: parser.Options{
			SkipPatterns:      c.SkipLinePatterns,
			FallbackPdftotext: c.PdftotextFallback,
		},
		Hierarchy: hierarchy.Config{
			IndentUnit:    c.IndentUnit,
			FontSizeDelta: c.FontSizeDelta,
			Priority:      priority,
		},
		Sheet: sheet.Config{SheetName: c.SheetName, IndentStyle: style},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key, sep string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
