package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.QualityThreshold != 50 {
		t.Errorf("quality threshold = %v", cfg.QualityThreshold)
	}
	if cfg.ConfidenceFloor != 30 {
		t.Errorf("confidence floor = %v", cfg.ConfidenceFloor)
	}
	if cfg.RenderDPI != 300 {
		t.Errorf("render dpi = %d", cfg.RenderDPI)
	}
	if cfg.MaxUploadBytes != 52428800 {
		t.Errorf("max upload = %d", cfg.MaxUploadBytes)
	}
	if len(cfg.OCRLanguages) != 1 || cfg.OCRLanguages[0] != "eng" {
		t.Errorf("languages = %v", cfg.OCRLanguages)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("QUALITY_THRESHOLD", "65.5")
	t.Setenv("OCR_LANGUAGES", "eng, hin")
	t.Setenv("JOB_TTL", "30m")
	t.Setenv("TWO_COLUMN", "false")

	cfg := Load()
	if cfg.QualityThreshold != 65.5 {
		t.Errorf("quality threshold = %v", cfg.QualityThreshold)
	}
	if len(cfg.OCRLanguages) != 2 || cfg.OCRLanguages[1] != "hin" {
		t.Errorf("languages = %v", cfg.OCRLanguages)
	}
	if cfg.JobTTL != 30*time.Minute {
		t.Errorf("ttl = %v", cfg.JobTTL)
	}
	if cfg.TwoColumn {
		t.Error("two-column should be disabled")
	}
}

func TestValidate(t *testing.T) {
	cfg := Load()
	cfg.APIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Error("missing API key should fail validation")
	}
	cfg.APIKey = "k"
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
	cfg.QualityThreshold = 150
	if err := cfg.Validate(); err == nil {
		t.Error("out-of-range threshold should fail validation")
	}
}
