package report

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/signintech/gopdf"

	"mindbot-vr/internal/consultation"
)

var ErrFontUnavailable = errors.New("report font unavailable")

// DejaVuSans covers Latin, Cyrillic and Arabic, so patient text renders as typed.
var systemFontPaths = []string{
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

const (
	fontFamily = "DejaVu"

	pageMargin  = 40.0
	pageWidth   = 595.28
	pageHeight  = 841.89
	textWidth   = pageWidth - 2*pageMargin
	bottomLimit = pageHeight - pageMargin
)

type blockStyle struct {
	size       float64
	lineHeight float64
	spaceAbove float64
}

var styles = map[blockKind]blockStyle{
	blockTitle:    {size: 18, lineHeight: 24},
	blockHeading:  {size: 13, lineHeight: 18, spaceAbove: 14},
	blockText:     {size: 10, lineHeight: 14},
	blockFootnote: {size: 8, lineHeight: 11, spaceAbove: 18},
}

type Renderer struct {
	fontPaths  []string
	archiveDir string
	log        zerolog.Logger
	now        func() time.Time
}

// NewRenderer prefers fontPath when set and falls back to the usual DejaVu
// locations. PDFs are copied into archiveDir when it is not empty.
func NewRenderer(fontPath, archiveDir string, log zerolog.Logger) *Renderer {
	paths := systemFontPaths
	if fontPath != "" {
		paths = append([]string{fontPath}, systemFontPaths...)
	}
	return &Renderer{fontPaths: paths, archiveDir: archiveDir, log: log, now: time.Now}
}

func (r *Renderer) Render(data *consultation.ReportData) ([]byte, error) {
	font, err := r.findFont()
	if err != nil {
		return nil, err
	}

	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.SetLeftMargin(pageMargin)
	pdf.SetTopMargin(pageMargin)
	if err := pdf.AddTTFFont(fontFamily, font); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFontUnavailable, font, err)
	}
	pdf.AddPage()

	for _, b := range buildDocument(data) {
		if err := writeBlock(&pdf, b); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	out := buf.Bytes()
	r.archive(data.SessionID, out)
	return out, nil
}

func (r *Renderer) findFont() (string, error) {
	for _, path := range r.fontPaths {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: none of %v exists", ErrFontUnavailable, r.fontPaths)
}

func writeBlock(pdf *gopdf.GoPdf, b block) error {
	style := styles[b.kind]
	if err := pdf.SetFont(fontFamily, "", style.size); err != nil {
		return err
	}
	if b.text == "" {
		return nil
	}
	lines, err := wrapText(pdf.MeasureTextWidth, b.text, textWidth)
	if err != nil {
		return fmt.Errorf("failed to wrap text: %w", err)
	}

	if style.spaceAbove > 0 && pdf.GetY()+style.spaceAbove+style.lineHeight <= bottomLimit {
		pdf.Br(style.spaceAbove)
	}
	for _, line := range lines {
		if pdf.GetY()+style.lineHeight > bottomLimit {
			pdf.AddPage()
		}
		pdf.SetX(pageMargin)
		if line != "" {
			if err := pdf.Cell(nil, line); err != nil {
				return err
			}
		}
		pdf.Br(style.lineHeight)
	}
	return nil
}

// wrapText breaks text into lines no wider than width. Newlines start a new
// line; words wider than a whole line are split between runes.
func wrapText(measure func(string) (float64, error), text string, width float64) ([]string, error) {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		line := ""
		for _, word := range strings.Fields(paragraph) {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			w, err := measure(candidate)
			if err != nil {
				return nil, err
			}
			if w <= width {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
			}
			pieces, err := splitWord(measure, word, width)
			if err != nil {
				return nil, err
			}
			lines = append(lines, pieces[:len(pieces)-1]...)
			line = pieces[len(pieces)-1]
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func splitWord(measure func(string) (float64, error), word string, width float64) ([]string, error) {
	var pieces []string
	var current []rune
	for _, r := range word {
		w, err := measure(string(append(current, r)))
		if err != nil {
			return nil, err
		}
		if w > width && len(current) > 0 {
			pieces = append(pieces, string(current))
			current = current[:0]
		}
		current = append(current, r)
	}
	return append(pieces, string(current)), nil
}

// archive keeps a copy of the PDF on disk. Failures only log.
func (r *Renderer) archive(sessionID string, pdf []byte) {
	if r.archiveDir == "" {
		return
	}
	if err := os.MkdirAll(r.archiveDir, 0o755); err != nil {
		r.log.Warn().Err(err).Str("dir", r.archiveDir).Msg("report archive unavailable")
		return
	}
	name := fmt.Sprintf("%d_%s", r.now().Unix(), FileName(sessionID))
	path := filepath.Join(r.archiveDir, name)
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		r.log.Warn().Err(err).Str("path", path).Msg("failed to archive report")
		return
	}
	r.log.Debug().Str("path", path).Msg("report archived")
}
