package dataprocessing

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"classpulse/pkg/contracts/domain"
)

// Batch is a parsed score sheet: raw records plus the source column order
type Batch struct {
	Source  string
	Columns []string
	Records []domain.RawRecord
}

// Parser reads CSV and Excel score sheets
type Parser struct {
	logger   *slog.Logger
	subjects []string
}

// headerScanRows is how many leading rows are searched for the header
const headerScanRows = 10

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// NewParser creates a parser that recognises the given subject columns
func NewParser(logger *slog.Logger, subjects []string) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		logger:   logger.With(slog.String("component", "parser")),
		subjects: append([]string(nil), subjects...),
	}
}

// ParseFile opens path and parses it by extension
func (p *Parser) ParseFile(path string) (*Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return p.Parse(filepath.Base(path), f)
}

// Parse dispatches on the extension of name: .csv or .xlsx/.xlsm
func (p *Parser) Parse(name string, r io.Reader) (*Batch, error) {
	var (
		b   *Batch
		err error
	)

	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".csv", ".txt":
		b, err = p.ParseCSV(r)
	case ".xlsx", ".xlsm":
		b, err = p.ParseWorkbook(r)
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q", ErrInvalidFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	b.Source = name
	return b, nil
}

// ParseCSV reads a CSV score sheet. The first non-blank line is the header;
// blank lines are skipped.
func (p *Parser) ParseCSV(r io.Reader) (*Batch, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
		}
		rows = append(rows, row)
	}

	return p.fromRows(rows)
}

// ParseWorkbook reads the first sheet of an Excel workbook that carries a
// recognisable header row.
func (p *Parser) ParseWorkbook(r io.Reader) (*Batch, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	defer f.Close()

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			p.logger.Debug("skipping unreadable sheet",
				slog.String("sheet_name", name),
				slog.String("error", err.Error()))
			continue
		}
		headerRow := p.findHeader(rows)
		if headerRow < 0 {
			continue
		}

		p.logger.Info("found score sheet",
			slog.String("sheet_name", name),
			slog.Int("header_row", headerRow),
			slog.Int("total_rows", len(rows)))
		return p.fromRows(rows[headerRow:])
	}

	return nil, fmt.Errorf("%w: no sheet has a Name column and subject columns", ErrInvalidFormat)
}

// findHeader returns the index of the header row or -1
func (p *Parser) findHeader(rows [][]string) int {
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		if p.isHeader(rows[i]) {
			return i
		}
	}
	return -1
}

func (p *Parser) isHeader(row []string) bool {
	hasName := false
	hasSubject := false

	subjects := make(map[string]bool, len(p.subjects))
	for _, s := range p.subjects {
		subjects[fieldKey(s)] = true
	}

	for _, cell := range row {
		k := fieldKey(cell)
		if k == fieldKey(domain.FieldName) {
			hasName = true
		}
		if subjects[k] {
			hasSubject = true
		}
	}
	return hasName && hasSubject
}

func (p *Parser) fromRows(rows [][]string) (*Batch, error) {
	start := 0
	for start < len(rows) && blank(rows[start]) {
		start++
	}
	if start == len(rows) {
		return nil, fmt.Errorf("%w: file has no header row", ErrInvalidFormat)
	}

	header := make([]string, len(rows[start]))
	seen := make(map[string]bool, len(header))
	for i, h := range rows[start] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Column%d", i+1)
		}
		if seen[h] {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrInvalidFormat, h)
		}
		seen[h] = true
		header[i] = h
	}

	if !p.isHeader(header) {
		return nil, fmt.Errorf("%w: header must contain a Name column and at least one subject column", ErrInvalidFormat)
	}

	b := &Batch{Columns: header}
	for _, row := range rows[start+1:] {
		if blank(row) {
			continue
		}
		rec := make(domain.RawRecord, len(header))
		for j, col := range header {
			if j < len(row) {
				rec[col] = strings.TrimSpace(row[j])
			} else {
				rec[col] = ""
			}
		}
		b.Records = append(b.Records, rec)
	}

	p.logger.Debug("parsed score sheet",
		slog.Int("columns", len(header)),
		slog.Int("records", len(b.Records)))

	return b, nil
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
