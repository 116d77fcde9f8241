package segment

// Config carries the tunable heuristics of the segmentation engine. The
// defaults mirror the values the pipeline was calibrated with; they are
// configurable, not invariants.
type Config struct {
	QualityThreshold float64 // region average confidence below this is low quality
	ConfidenceFloor  float64 // geometric marker tokens at or below this are ignored
	TrimPaddingPx    int     // padding past the marker's right edge when trimming crops
	TopPaddingPx     int     // extra headroom above a question band when cropping
	MinSpanPx        int     // geometric spans shorter than this are noise
	DedupVertPx      int     // vertical window for duplicate marker detections
	DedupHorizPx     int     // horizontal window for duplicate marker detections
}

// DefaultConfig returns the calibrated defaults.
func DefaultConfig() Config {
	return Config{
		QualityThreshold: 50,
		ConfidenceFloor:  30,
		TrimPaddingPx:    10,
		TopPaddingPx:     15,
		MinSpanPx:        20,
		DedupVertPx:      10,
		DedupHorizPx:     20,
	}
}

// Cropper extracts a horizontal band from a region pixel map, removes the
// leading marker area, and trims empty margins. Implemented by the imaging
// package; injected so the engine stays free of image decoding.
type Cropper interface {
	CropBand(pixmap []byte, top, bottom, trimLeft int) ([]byte, error)
}

// Engine runs the staged segmentation pipeline for one region at a time:
// normalize, detect boundaries, resolve, associate, build records, gate.
type Engine struct {
	cfg     Config
	cropper Cropper
}

// NewEngine builds an engine. cropper may be nil, in which case records carry
// no cropped rasters.
func NewEngine(cfg Config, cropper Cropper) *Engine {
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	return &Engine{cfg: cfg, cropper: cropper}
}

// Result is the outcome of processing one region.
type Result struct {
	Questions     []Question
	AvgConfidence float64
	LowQuality    bool
}

// ProcessRegion segments one region into question records. An empty result
// with no questions means no boundaries were found ("no questions detected"),
// which is a normal outcome, never an error.
func (e *Engine) ProcessRegion(r Region) Result {
	text := Normalize(r.Text)
	res := Resolve(text, r.Tokens, r.Height, e.cfg)

	avg, low := GateTokens(r.Tokens, e.cfg.QualityThreshold)
	out := Result{AvgConfidence: avg, LowQuality: low}
	if res.Mode == ModeEmpty {
		return out
	}

	switch res.Mode {
	case ModeGeometric:
		out.Questions = e.buildGeometric(r, res, text, avg)
	default:
		out.Questions = e.buildTextual(r, res, text, avg)
	}
	for i := range out.Questions {
		out.Questions[i].LowQuality = low
	}
	return out
}
