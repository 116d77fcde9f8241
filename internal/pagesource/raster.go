package pagesource

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
)

// Rasterizer renders one PDF page to an encoded pixel map.
type Rasterizer interface {
	Render(ctx context.Context, pdfPath string, page, dpi int) ([]byte, error)
}

// Pdftoppm renders pages by shelling out to poppler's pdftoppm.
type Pdftoppm struct {
	Binary string
}

// NewPdftoppm returns a rasterizer using the pdftoppm binary on PATH.
func NewPdftoppm() *Pdftoppm {
	return &Pdftoppm{Binary: "pdftoppm"}
}

// Available reports whether the binary can be resolved.
func (p *Pdftoppm) Available() bool {
	_, err := exec.LookPath(p.Binary)
	return err == nil
}

// Render rasterizes the given page to PNG at the requested resolution.
func (p *Pdftoppm) Render(ctx context.Context, pdfPath string, page, dpi int) ([]byte, error) {
	dir, err := os.MkdirTemp("", "mcq-raster-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	prefix := filepath.Join(dir, "page")
	n := strconv.Itoa(page)
	cmd := exec.CommandContext(ctx, p.Binary,
		"-png",
		"-r", strconv.Itoa(dpi),
		"-f", n,
		"-l", n,
		"-singlefile",
		pdfPath, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm page %d: %w: %s", page, err, out)
	}

	data, err := os.ReadFile(prefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("read rendered page %d: %w", page, err)
	}
	return data, nil
}
