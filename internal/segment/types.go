package segment

// ConfidenceUnknown marks a fragment whose recognition confidence was not
// reported. Unknown values are excluded from quality averages.
const ConfidenceUnknown = -1

// Box is a bounding box in pixel (or point) coordinates, origin upper-left.
type Box struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (b Box) Right() int  { return b.Left + b.Width }
func (b Box) Bottom() int { return b.Top + b.Height }

// TextFragment is one piece of recognized or extracted text with its position.
type TextFragment struct {
	Text       string  `json:"text"`
	Box        Box     `json:"box"`
	Confidence float64 `json:"confidence"` // 0-100, ConfidenceUnknown if absent
}

// ImageFragment is an embedded image with its position on the page.
type ImageFragment struct {
	Data      []byte `json:"data"`
	Format    string `json:"format"`
	Box       Box    `json:"box"`
	SourceRef string `json:"source_ref,omitempty"`
}

// Page is the raw per-page content produced by the extraction collaborator.
type Page struct {
	Number    int
	Width     int
	Height    int
	Fragments []TextFragment
	Images    []ImageFragment
}

// Region is one column of one page. Regions are the unit of processing and of
// failure isolation: an error in one region never aborts the others.
type Region struct {
	Page   int
	Column int
	Width  int
	Height int

	// Text is the linearized content of the region, used for textual boundary
	// detection. May be empty for image-only regions.
	Text string

	// Tokens are positioned text fragments (OCR words or extracted glyph runs)
	// used for geometric boundary detection and quality scoring.
	Tokens []TextFragment

	Images []ImageFragment

	// Pixmap is an optional rasterized PNG of the region, used for cropping
	// question bands out of scanned pages.
	Pixmap []byte
}

// Option is a single answer choice. The label is advisory: it reflects what
// was matched in the text, not a verified ordering.
type Option struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Question is one assembled question record. Records are immutable after the
// builder produces them, except for the quality gate's LowQuality annotation.
type Question struct {
	Number     int      `json:"number"`
	Stem       string   `json:"stem"`
	Options    []Option `json:"options"`
	Crop       []byte   `json:"image,omitempty"` // cropped raster of the question band
	Images     []ImageFragment `json:"associated_images,omitempty"`
	Markup     string   `json:"markup,omitempty"` // equation markup, when recognized
	Confidence float64  `json:"confidence"`
	LowQuality bool     `json:"low_quality"`
	Page       int      `json:"page"`
	Column     int      `json:"column"`
}

// Stats aggregates processing counters across a whole document.
type Stats struct {
	TotalPages        int `json:"total_pages"`
	QuestionsFound    int `json:"questions_found"`
	LowQualityRegions int `json:"low_quality_regions"`
}
