package pipeline

import (
	"context"
	"image"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/nitishgarg26/pdf-mcq/internal/config"
	"github.com/nitishgarg26/pdf-mcq/internal/docgen"
	"github.com/nitishgarg26/pdf-mcq/internal/imaging"
	"github.com/nitishgarg26/pdf-mcq/internal/memo"
	"github.com/nitishgarg26/pdf-mcq/internal/metrics"
	"github.com/nitishgarg26/pdf-mcq/internal/segment"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testWorker(t *testing.T, deps Deps) *Worker {
	t.Helper()
	cfg := config.Load()
	if deps.DocOpts == (docgen.Options{}) {
		deps.DocOpts = docgen.DefaultOptions()
	}
	return NewWorker(deps, metrics.NewLatency(0), cfg, testLogger())
}

func TestProcessServesFromCache(t *testing.T) {
	cache, err := memo.Open(filepath.Join(t.TempDir(), "memo.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer cache.Close()

	upload := []byte("%PDF-1.7 cached upload")
	cached := memo.CachedResult{
		Questions: []segment.Question{{
			Number:  1,
			Stem:    "What is 2+2?",
			Options: []segment.Option{{Label: "A", Text: "4"}},
		}},
		Stats:    segment.Stats{TotalPages: 2, QuestionsFound: 1},
		Warnings: []string{"page 2: sparse text"},
	}
	if err := cache.Put(memo.Key(upload), cached); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	w := testWorker(t, Deps{Cache: cache})
	job := &Job{ID: "cached-job", Status: StatusQueued}
	job.SetFileData(upload)

	w.Process(context.Background(), job)

	if got := job.CurrentStatus(); got != StatusCached {
		t.Fatalf("status = %q, want %q", got, StatusCached)
	}
	questions, stats := job.Result()
	if len(questions) != 1 || questions[0].Stem != "What is 2+2?" {
		t.Errorf("cached questions = %+v", questions)
	}
	if stats.TotalPages != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if len(job.Warnings()) != 1 {
		t.Errorf("warnings = %v", job.Warnings())
	}
	if job.Docx() == nil {
		t.Error("cached job should still produce a document")
	}
}

func TestProcessUnreadableInput(t *testing.T) {
	w := testWorker(t, Deps{Engine: segment.NewEngine(segment.Config{}, nil)})
	job := &Job{ID: "bad-input", Status: StatusQueued}
	job.SetFileData([]byte("not a pdf at all"))

	w.Process(context.Background(), job)

	if got := job.CurrentStatus(); got != StatusFailed {
		t.Fatalf("status = %q, want %q", got, StatusFailed)
	}
	if len(job.Warnings()) == 0 {
		t.Error("expected a warning describing the failure")
	}
}

func TestSplitPixmap(t *testing.T) {
	if out := splitPixmap(nil, 2); out[0] != nil || out[1] != nil {
		t.Error("nil pixmap should yield nil slices")
	}

	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	png, err := imaging.EncodePNG(img)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	if out := splitPixmap(png, 1); string(out[0]) != string(png) {
		t.Error("single region should receive the whole pixmap")
	}

	halves := splitPixmap(png, 2)
	for i, data := range halves {
		half, err := imaging.Decode(data)
		if err != nil {
			t.Fatalf("decode half %d: %v", i, err)
		}
		if half.Bounds().Dx() != 100 || half.Bounds().Dy() != 100 {
			t.Errorf("half %d is %v", i, half.Bounds())
		}
	}
}

type fixedRecognizer struct{ latex string }

func (f fixedRecognizer) Name() string { return "fixed" }

func (f fixedRecognizer) Recognize(context.Context, []byte) (string, error) {
	return f.latex, nil
}

func TestAnnotateEquations(t *testing.T) {
	w := testWorker(t, Deps{Equation: fixedRecognizer{latex: `x^2`}})
	questions := []segment.Question{
		{Number: 1, Stem: "plain text, no crop"},
		{Number: 2, Stem: "(image only)", Crop: []byte("png bytes")},
	}

	w.annotateEquations(context.Background(), questions, testLogger())

	if questions[0].Markup != "" {
		t.Error("question without a crop should not gain markup")
	}
	if questions[1].Markup == "" {
		t.Error("cropped question should gain equation markup")
	}
}

func TestAnnotateEquationsNoRecognizer(t *testing.T) {
	w := testWorker(t, Deps{})
	questions := []segment.Question{{Number: 1, Crop: []byte("png")}}
	w.annotateEquations(context.Background(), questions, testLogger())
	if questions[0].Markup != "" {
		t.Error("no recognizer configured, markup should stay empty")
	}
}
