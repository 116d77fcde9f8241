package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	treeblood "github.com/wyatt915/goldmark-treeblood"

	"github.com/nitishgarg26/pdf-mcq/internal/segment"
)

// previewMarkdown renders through goldmark with the treeblood extension so
// inline $...$ math in recognized stems survives into the preview as MathML.
var previewMarkdown = goldmark.New(goldmark.WithExtensions(treeblood.MathML()))

// Markdown renders the question sequence as a Markdown document.
func Markdown(questions []segment.Question, stats segment.Stats) string {
	var sb strings.Builder
	sb.WriteString("# Extracted Questions\n\n")
	fmt.Fprintf(&sb, "%d questions from %d pages, %d low-quality regions.\n",
		stats.QuestionsFound, stats.TotalPages, stats.LowQualityRegions)

	for _, q := range questions {
		fmt.Fprintf(&sb, "\n## Q%d\n\n", q.Number)
		if q.LowQuality {
			sb.WriteString("*(low quality)*\n\n")
		}
		sb.WriteString(q.Stem)
		sb.WriteString("\n")
		for _, o := range q.Options {
			fmt.Fprintf(&sb, "\n- **%s.** %s", o.Label, o.Text)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// HTMLPreview renders the question sequence to an HTML fragment.
func HTMLPreview(questions []segment.Question, stats segment.Stats) ([]byte, error) {
	var buf bytes.Buffer
	if err := previewMarkdown.Convert([]byte(Markdown(questions, stats)), &buf); err != nil {
		return nil, fmt.Errorf("render preview: %w", err)
	}
	return buf.Bytes(), nil
}
