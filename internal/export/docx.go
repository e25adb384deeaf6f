package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	fontName  = "Times New Roman"
	fontSize  = 13
	fontColor = "000000"
)

var (
	reHeading = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reBold    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBullet  = regexp.MustCompile(`^[\-\*•]\s+(.+)$`)
	reMarker  = regexp.MustCompile(`^\[\d{2,}:00\]$`)
)

// Document is one processed video rendered for download.
type Document struct {
	Title       string
	VideoURL    string
	Transcript  string
	Summary     string
	ProcessedAt time.Time
}

// block is one paragraph of the rendered document.
type block struct {
	Text string
	Bold bool
	Size uint64
	// Rich paragraphs honor **bold** spans inside Text.
	Rich bool
}

// WriteFile renders d as a .docx file at path.
func WriteFile(path string, d Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("create docx: %w", err)
	}

	for _, b := range render(d) {
		p := doc.AddParagraph("")
		if b.Text == "" {
			continue
		}
		if b.Rich {
			addRichText(p, b.Text)
			continue
		}
		addStyledRun(p, b.Text, b.Bold, b.Size)
	}

	if err := doc.SaveTo(path); err != nil {
		return fmt.Errorf("save docx %s: %w", path, err)
	}
	return nil
}

func render(d Document) []block {
	title := d.Title
	if title == "" {
		title = d.VideoURL
	}

	blocks := []block{{Text: title, Bold: true, Size: 16}}
	if d.VideoURL != "" {
		blocks = append(blocks, block{Text: "Source: " + d.VideoURL, Size: fontSize})
	}
	if !d.ProcessedAt.IsZero() {
		blocks = append(blocks, block{Text: "Processed: " + d.ProcessedAt.UTC().Format(time.RFC1123), Size: fontSize})
	}

	blocks = append(blocks, block{}, block{Text: "Summary", Bold: true, Size: 15})
	blocks = append(blocks, summaryBlocks(d.Summary)...)

	blocks = append(blocks, block{}, block{Text: "Transcript", Bold: true, Size: 15})
	blocks = append(blocks, transcriptBlocks(d.Transcript)...)
	return blocks
}

// summaryBlocks renders the markdown-flavored bullets the model returns.
func summaryBlocks(summary string) []block {
	var blocks []block
	for _, line := range strings.Split(summary, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == "---" {
			continue
		}

		if m := reHeading.FindStringSubmatch(trimmed); m != nil {
			blocks = append(blocks, block{Text: m[2], Bold: true, Size: headingSize(len(m[1]))})
			continue
		}
		if m := reBullet.FindStringSubmatch(trimmed); m != nil {
			blocks = append(blocks, block{Text: "• " + m[1], Size: fontSize, Rich: true})
			continue
		}
		blocks = append(blocks, block{Text: trimmed, Size: fontSize, Rich: true})
	}
	return blocks
}

// transcriptBlocks turns minute markers into bold sub-headings.
func transcriptBlocks(transcript string) []block {
	var blocks []block
	for _, line := range strings.Split(transcript, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if reMarker.MatchString(trimmed) {
			blocks = append(blocks, block{Text: trimmed, Bold: true, Size: fontSize})
			continue
		}
		blocks = append(blocks, block{Text: trimmed, Size: fontSize})
	}
	return blocks
}

func headingSize(level int) uint64 {
	switch level {
	case 1:
		return 16
	case 2:
		return 15
	case 3:
		return 14
	default:
		return fontSize
	}
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(cleanMarkdownInline(text)).Font(fontName).Size(size).Color(fontColor)
	if bold {
		run.Bold(true)
	}
}

func addRichText(p *docx.Paragraph, text string) {
	parts := reBold.Split(text, -1)
	matches := reBold.FindAllStringSubmatch(text, -1)

	for i, part := range parts {
		if part != "" {
			p.AddText(cleanMarkdownInline(part)).Font(fontName).Size(fontSize).Color(fontColor)
		}
		if i < len(matches) {
			p.AddText(cleanMarkdownInline(matches[i][1])).Font(fontName).Size(fontSize).Color(fontColor).Bold(true)
		}
	}
}

func cleanMarkdownInline(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}
