package ocr

import (
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/nitishgarg26/pdf-mcq/internal/segment"
)

// ParseHOCR converts hOCR output (the HTML-based OCR interchange format) into
// a Result. Word elements carry their bounding box and confidence in the
// title attribute, e.g. `bbox 12 40 30 54; x_wconf 93`. Engines that only
// emit hOCR plug into the pipeline through this parser.
func ParseHOCR(r io.Reader) (Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Result{}, err
	}

	var res Result
	var line strings.Builder

	flushLine := func() {
		if line.Len() == 0 {
			return
		}
		if res.PlainText != "" {
			res.PlainText += "\n"
		}
		res.PlainText += line.String()
		line.Reset()
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch hocrClass(n) {
			case "ocr_line", "ocr_header", "ocr_textfloat", "ocr_caption":
				defer flushLine()
			case "ocrx_word":
				word := strings.TrimSpace(textContent(n))
				if word != "" {
					box, conf := parseTitle(attr(n, "title"))
					res.Words = append(res.Words, segment.TextFragment{
						Text:       word,
						Box:        box,
						Confidence: conf,
					})
					if line.Len() > 0 {
						line.WriteByte(' ')
					}
					line.WriteString(word)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	flushLine()
	return res, nil
}

func hocrClass(n *html.Node) string {
	for _, c := range strings.Fields(attr(n, "class")) {
		if strings.HasPrefix(c, "ocr") {
			return c
		}
	}
	return ""
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

// parseTitle reads the bbox and x_wconf properties from an hOCR title
// attribute. Missing confidence maps to the unknown sentinel.
func parseTitle(title string) (segment.Box, float64) {
	var box segment.Box
	conf := float64(segment.ConfidenceUnknown)
	for _, prop := range strings.Split(title, ";") {
		fields := strings.Fields(strings.TrimSpace(prop))
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "bbox":
			if len(fields) < 5 {
				continue
			}
			x0, err0 := strconv.Atoi(fields[1])
			y0, err1 := strconv.Atoi(fields[2])
			x1, err2 := strconv.Atoi(fields[3])
			y1, err3 := strconv.Atoi(fields[4])
			if err0 == nil && err1 == nil && err2 == nil && err3 == nil {
				box = segment.Box{Left: x0, Top: y0, Width: x1 - x0, Height: y1 - y0}
			}
		case "x_wconf":
			if len(fields) < 2 {
				continue
			}
			if v, err := strconv.ParseFloat(fields[1], 64); err == nil {
				conf = v
			}
		}
	}
	return box, conf
}
