package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Segmentation
	QualityThreshold float64
	ConfidenceFloor  float64
	TrimPaddingPx    int
	TwoColumn        bool

	// Rendering and recognition
	RenderDPI    int
	OCRLanguages []string

	// Equation recognition service; empty disables it.
	EquationURL    string
	EquationAPIKey string

	// Result cache
	CachePath string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("MCQ_API_KEY"),

		QualityThreshold: envFloat("QUALITY_THRESHOLD", 50),
		ConfidenceFloor:  envFloat("CONFIDENCE_FLOOR", 30),
		TrimPaddingPx:    envInt("TRIM_PADDING_PX", 10),
		TwoColumn:        envBool("TWO_COLUMN", true),

		RenderDPI:    envInt("RENDER_DPI", 300),
		OCRLanguages: splitList(envOr("OCR_LANGUAGES", "eng")),

		EquationURL:    os.Getenv("EQUATION_URL"),
		EquationAPIKey: os.Getenv("EQUATION_API_KEY"),

		CachePath: envOr("CACHE_PATH", "mcq-cache.db"),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 50),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),
	}

	if cfg.QualityThreshold <= 0 {
		cfg.QualityThreshold = 50
	}
	if cfg.ConfidenceFloor < 0 {
		cfg.ConfidenceFloor = 30
	}
	if cfg.TrimPaddingPx < 0 {
		cfg.TrimPaddingPx = 10
	}
	if cfg.RenderDPI <= 0 {
		cfg.RenderDPI = 300
	}
	if len(cfg.OCRLanguages) == 0 {
		cfg.OCRLanguages = []string{"eng"}
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 50
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("MCQ_API_KEY is required")
	}
	if c.QualityThreshold > 100 {
		return fmt.Errorf("QUALITY_THRESHOLD must be at most 100")
	}
	if c.ConfidenceFloor > 100 {
		return fmt.Errorf("CONFIDENCE_FLOOR must be at most 100")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
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
