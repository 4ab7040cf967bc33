// Package pdfparser turns a PDF statement into row candidates for a
// downstream interpreter. Unlike the delimited-text path this is heuristic:
// it extracts the text layer, splits it into non-blank rows and groups rows
// into per-transaction blocks delimited by date lines.
package pdfparser

import (
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"vkazakov/fintrack/internal/logging"
)

var log = logging.GetLogger()

// SetLogger allows setting a configured logger for this package.
func SetLogger(logger logging.Logger) {
	if logger != nil {
		log = logger
	}
}

// RawRow is one non-blank line of extracted PDF text.
type RawRow struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Page  int    `json:"page"`
	RowNo int    `json:"rowNo"`
}

// Block is a group of consecutive rows belonging to one transaction:
// a date line plus its following detail lines.
type Block struct {
	Rows []RawRow `json:"rows"`
}

// Text joins the block's rows into a single line.
func (b Block) Text() string {
	parts := make([]string, 0, len(b.Rows))
	for _, row := range b.Rows {
		parts = append(parts, row.Text)
	}
	return strings.Join(parts, " ")
}

// PDFExtractor extracts the text layer from a PDF file. The indirection
// keeps the parser testable without pdftotext installed.
type PDFExtractor interface {
	ExtractText(pdfPath string) (string, error)
}

// PdftotextExtractor is the production extractor, shelling out to the
// pdftotext command-line tool.
type PdftotextExtractor struct{}

// NewPdftotextExtractor creates the production extractor.
func NewPdftotextExtractor() *PdftotextExtractor {
	return &PdftotextExtractor{}
}

// ExtractText runs pdftotext in layout mode and returns its output.
func (e *PdftotextExtractor) ExtractText(pdfPath string) (string, error) {
	tempFile := pdfPath + ".txt"

	cmd := exec.Command("pdftotext", "-layout", pdfPath, tempFile)
	if err := cmd.Run(); err != nil {
		log.WithError(err).Error("Failed to run pdftotext command")
		return "", fmt.Errorf("error running pdftotext: %w", err)
	}

	output, err := os.ReadFile(tempFile)
	if err != nil {
		log.WithError(err).Error("Failed to read extracted text")
		return "", fmt.Errorf("error reading extracted text: %w", err)
	}
	os.Remove(tempFile)

	return string(output), nil
}

// MockExtractor returns predefined text for tests.
type MockExtractor struct {
	Text string
	Err  error
}

// ExtractText returns the predefined text or error.
func (e *MockExtractor) ExtractText(pdfPath string) (string, error) {
	if e.Err != nil {
		return "", e.Err
	}
	return e.Text, nil
}

// Rows splits extracted text into non-blank trimmed rows. Pages are
// separated by form feeds in pdftotext output; row ids are "page-row".
func Rows(text string) []RawRow {
	var rows []RawRow
	for pageIdx, page := range strings.Split(text, "\f") {
		rowNo := 0
		for _, line := range strings.Split(page, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			rowNo++
			rows = append(rows, RawRow{
				ID:    fmt.Sprintf("%d-%d", pageIdx+1, rowNo),
				Text:  line,
				Page:  pageIdx + 1,
				RowNo: rowNo,
			})
		}
	}
	return rows
}

var blockStartPattern = regexp.MustCompile(`^\d{2}[./-]\d{2}[./-]\d{2,4}`)

// GroupBlocks groups rows into transaction blocks. A row starting with a
// date opens a new block; rows before the first date line are dropped as
// header noise.
func GroupBlocks(rows []RawRow) []Block {
	var blocks []Block
	var current *Block
	for _, row := range rows {
		if blockStartPattern.MatchString(row.Text) {
			blocks = append(blocks, Block{Rows: []RawRow{row}})
			current = &blocks[len(blocks)-1]
			continue
		}
		if current != nil {
			current.Rows = append(current.Rows, row)
		}
	}
	return blocks
}

// ExtractRows is the convenience entry point: extract text from a PDF and
// split it into rows.
func ExtractRows(extractor PDFExtractor, pdfPath string) ([]RawRow, error) {
	text, err := extractor.ExtractText(pdfPath)
	if err != nil {
		return nil, err
	}
	rows := Rows(text)
	log.Debug("Extracted PDF rows",
		logging.Field{Key: "file", Value: pdfPath},
		logging.Field{Key: "rows", Value: len(rows)})
	return rows, nil
}
