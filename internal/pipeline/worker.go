package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"

	"github.com/nitishgarg26/pdf-mcq/internal/config"
	"github.com/nitishgarg26/pdf-mcq/internal/docgen"
	"github.com/nitishgarg26/pdf-mcq/internal/equation"
	"github.com/nitishgarg26/pdf-mcq/internal/imaging"
	"github.com/nitishgarg26/pdf-mcq/internal/memo"
	"github.com/nitishgarg26/pdf-mcq/internal/metrics"
	"github.com/nitishgarg26/pdf-mcq/internal/ocr"
	"github.com/nitishgarg26/pdf-mcq/internal/pagesource"
	"github.com/nitishgarg26/pdf-mcq/internal/segment"
)

// A page whose text layer yields fewer characters than this is treated as a
// scan and routed through rasterization plus OCR.
const minTextLayerChars = 40

const ocrContrastFactor = 1.5

// Worker processes one extraction job at a time.
type Worker struct {
	deps    Deps
	ocrStat *metrics.Latency
	cfg     config.Config
	log     *slog.Logger
}

func NewWorker(deps Deps, ocrStat *metrics.Latency, cfg config.Config, log *slog.Logger) *Worker {
	return &Worker{deps: deps, ocrStat: ocrStat, cfg: cfg, log: log}
}

// Process runs the full extraction pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	data := job.FileData()
	job.ContentHash = memo.Key(data)

	if w.serveFromCache(job, log) {
		return
	}

	// Phase 1: open the PDF and read page fragments.
	job.SetStatus(StatusExtracting, "extracting")
	doc, err := pagesource.Open(data)
	if err != nil {
		log.Error("open pdf failed", "error", err)
		job.AddWarning(fmt.Sprintf("open: %s", err))
		job.SetStatus(StatusFailed, "extracting")
		return
	}
	defer doc.Close()
	job.SetTotalPages(doc.PageCount())

	var questions []segment.Question
	lowRegions := 0

	for n := 1; n <= doc.PageCount(); n++ {
		select {
		case <-ctx.Done():
			job.AddWarning("processing canceled")
			job.SetStatus(StatusFailed, "canceled")
			return
		default:
		}

		page, err := doc.Page(n)
		if err != nil {
			log.Warn("page read failed", "page", n, "error", err)
			job.AddWarning(fmt.Sprintf("page %d: %s", n, err))
			continue
		}

		// Phase 2: scanned pages get rasterized and recognized.
		var pixmap []byte
		if w.needsOCR(page) {
			job.SetStatus(StatusRecognizing, "recognizing")
			pixmap = w.recognizePage(ctx, doc.Path(), &page, job, log)
		}

		// Phase 3: segment each column region independently.
		job.SetStatus(StatusSegmenting, "segmenting")
		regions := segment.Columns(page, w.cfg.TwoColumn)
		pixmaps := splitPixmap(pixmap, len(regions))
		for i, region := range regions {
			region.Pixmap = pixmaps[i]
			res, err := w.processRegion(region)
			job.IncrRegionsProcessed()
			if err != nil {
				log.Error("region failed", "page", region.Page, "column", region.Column, "error", err)
				job.AddWarning(fmt.Sprintf("page %d column %d: %s", region.Page, region.Column, err))
				continue
			}
			if res.LowQuality {
				lowRegions++
			}
			questions = append(questions, res.Questions...)
		}
	}

	// Phase 4: number across the whole document and annotate equations.
	job.SetStatus(StatusBuilding, "building")
	for i := range questions {
		questions[i].Number = i + 1
	}
	w.annotateEquations(ctx, questions, log)

	stats := segment.Stats{
		TotalPages:        doc.PageCount(),
		QuestionsFound:    len(questions),
		LowQualityRegions: lowRegions,
	}
	job.SetResult(questions, stats)
	log.Info("segmentation complete", "questions", len(questions), "low_quality_regions", lowRegions)

	// Phase 5: build the Word document and memoize.
	job.SetStatus(StatusExporting, "exporting")
	docxBytes, err := docgen.Generate(questions, w.deps.DocOpts)
	if err != nil {
		log.Error("docx generation failed", "error", err)
		job.AddWarning(fmt.Sprintf("docx: %s", err))
	} else {
		job.SetDocx(docxBytes)
	}

	warnings := job.Warnings()
	if w.deps.Cache != nil {
		cached := memo.CachedResult{Questions: questions, Stats: stats, Warnings: warnings}
		if err := w.deps.Cache.Put(job.ContentHash, cached); err != nil {
			log.Warn("cache write failed", "error", err)
		}
	}

	switch {
	case len(questions) == 0 && len(warnings) > 0:
		job.SetStatus(StatusFailed, "done")
	case len(warnings) > 0:
		job.SetStatus(StatusPartial, "done")
	default:
		job.SetStatus(StatusCompleted, "done")
	}
}

// serveFromCache finishes the job from a previous run of the same bytes.
func (w *Worker) serveFromCache(job *Job, log *slog.Logger) bool {
	if w.deps.Cache == nil {
		return false
	}
	cached, err := w.deps.Cache.Get(job.ContentHash)
	if errors.Is(err, memo.ErrNotFound) {
		return false
	}
	if err != nil {
		log.Warn("cache read failed, reprocessing", "error", err)
		return false
	}

	log.Info("serving cached extraction", "questions", cached.Stats.QuestionsFound)
	for _, warn := range cached.Warnings {
		job.AddWarning(warn)
	}
	job.SetTotalPages(cached.Stats.TotalPages)
	job.SetResult(cached.Questions, cached.Stats)
	if docxBytes, err := docgen.Generate(cached.Questions, w.deps.DocOpts); err == nil {
		job.SetDocx(docxBytes)
	} else {
		log.Warn("docx generation from cache failed", "error", err)
	}
	job.SetStatus(StatusCached, "done")
	return true
}

// needsOCR reports whether a page's text layer is too sparse to segment.
func (w *Worker) needsOCR(page segment.Page) bool {
	if w.deps.Raster == nil || w.deps.OCR == nil {
		return false
	}
	text := strings.TrimSpace(segment.Linearize(page.Fragments))
	return len(text) < minTextLayerChars
}

// recognizePage rasterizes the page and replaces its fragments with OCR word
// tokens. Page dimensions switch to pixel coordinates so token boxes, the
// pixmap, and crop geometry agree. Failures degrade to the text layer.
func (w *Worker) recognizePage(ctx context.Context, pdfPath string, page *segment.Page, job *Job, log *slog.Logger) []byte {
	pixmap, err := w.deps.Raster.Render(ctx, pdfPath, page.Number, w.cfg.RenderDPI)
	if err != nil {
		log.Warn("rasterize failed", "page", page.Number, "error", err)
		job.AddWarning(fmt.Sprintf("page %d: rasterize: %s", page.Number, err))
		return nil
	}

	img, err := imaging.Decode(pixmap)
	if err != nil {
		log.Warn("pixmap decode failed", "page", page.Number, "error", err)
		job.AddWarning(fmt.Sprintf("page %d: pixmap: %s", page.Number, err))
		return nil
	}
	enhanced, err := imaging.EncodePNG(imaging.EnhanceContrast(img, ocrContrastFactor))
	if err != nil {
		enhanced = pixmap
	}

	start := time.Now()
	res, err := w.deps.OCR.Recognize(ctx, ocr.Input{
		Image:     enhanced,
		Format:    "png",
		DPI:       w.cfg.RenderDPI,
		Languages: w.cfg.OCRLanguages,
	})
	if err != nil {
		w.ocrStat.ObserveError()
		log.Warn("ocr failed", "page", page.Number, "error", err)
		job.AddWarning(fmt.Sprintf("page %d: ocr: %s", page.Number, err))
		return pixmap
	}
	w.ocrStat.Observe(time.Since(start))

	page.Width = img.Bounds().Dx()
	page.Height = img.Bounds().Dy()
	page.Fragments = res.Words
	return pixmap
}

// splitPixmap cuts a page pixmap into one slice per column region, in region
// order. A nil pixmap yields all-nil slices.
func splitPixmap(pixmap []byte, n int) [][]byte {
	out := make([][]byte, n)
	if pixmap == nil || n == 0 {
		return out
	}
	if n == 1 {
		out[0] = pixmap
		return out
	}

	img, err := imaging.Decode(pixmap)
	if err != nil {
		return out
	}
	b := img.Bounds()
	mid := b.Min.X + b.Dx()/2
	halves := []image.Rectangle{
		image.Rect(b.Min.X, b.Min.Y, mid, b.Max.Y),
		image.Rect(mid, b.Min.Y, b.Max.X, b.Max.Y),
	}
	for i := 0; i < n && i < len(halves); i++ {
		half, err := imaging.Crop(img, halves[i])
		if err != nil {
			continue
		}
		if data, err := imaging.EncodePNG(half); err == nil {
			out[i] = data
		}
	}
	return out
}

// processRegion isolates engine panics so one bad region cannot take down the
// worker goroutine.
func (w *Worker) processRegion(r segment.Region) (res segment.Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("region panic: %v", p)
		}
	}()
	return w.deps.Engine.ProcessRegion(r), nil
}

// annotateEquations runs formula recognition over cropped question rasters.
// An unavailable recognizer is the normal case and is skipped silently.
func (w *Worker) annotateEquations(ctx context.Context, questions []segment.Question, log *slog.Logger) {
	if w.deps.Equation == nil {
		return
	}
	for i := range questions {
		if len(questions[i].Crop) == 0 {
			continue
		}
		latex, err := w.deps.Equation.Recognize(ctx, questions[i].Crop)
		if errors.Is(err, equation.ErrUnavailable) {
			return
		}
		if err != nil {
			log.Warn("equation recognition failed", "question", questions[i].Number, "error", err)
			continue
		}
		if mathml, err := equation.ToMathML(latex); err == nil && mathml != "" {
			questions[i].Markup = mathml
		}
	}
}
