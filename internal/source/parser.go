// Package source discovers and parses expense export files (JSON, JSONL and
// CSV) into expenses.
package source

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sravya/xtrack/internal/model"
)

// Uncategorized is assigned to records that carry no category.
const Uncategorized model.Category = "Uncategorized"

// ParseResult holds the output of parsing a single import file.
type ParseResult struct {
	File        DiscoveredFile
	Expenses    []model.Expense
	ParseErrors int
	Err         error

	idBase  string
	records int
}

// importIDSpace namespaces ids derived for records that carry none.
var importIDSpace = uuid.MustParse("6f1c3a52-8f0e-4a4b-9d6e-2b7f4c1e9a30")

// RecordID derives a stable id for the record at position pos (counting
// from 0, damaged records included) of the file at path.
func RecordID(path string, pos int) string {
	return uuid.NewSHA1(importIDSpace, []byte(path+"#"+strconv.Itoa(pos))).String()
}

// ParseFile reads an import file. Damaged records never fail the whole
// file: they are counted in ParseErrors and either skipped or kept with a
// zero amount.
//
// Record handling:
//   - no title, or a date that does not parse -> skipped
//   - amount missing, unparseable or negative -> kept with amount 0
//   - no category                             -> kept as Uncategorized
//   - no id                                   -> RecordID of the file and position
func ParseFile(df DiscoveredFile) ParseResult {
	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{File: df, Err: err}
	}
	defer func() { _ = f.Close() }()

	base, err := filepath.Abs(df.Path)
	if err != nil {
		base = df.Path
	}
	res := ParseResult{idBase: base}
	switch df.Format {
	case FormatJSON:
		res.parseJSON(f)
	case FormatJSONL:
		res.parseJSONL(f)
	case FormatCSV:
		res.parseCSV(f)
	default:
		res.Err = fmt.Errorf("unsupported format %q", df.Format)
	}
	res.File = df
	return res
}

func (res *ParseResult) parseJSON(r io.Reader) {
	var raws []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raws); err != nil {
		if !errors.Is(err, io.EOF) {
			res.Err = fmt.Errorf("decoding json array: %w", err)
		}
		return
	}

	for _, raw := range raws {
		var rec RawRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			res.damaged()
			continue
		}
		res.add(convert(rec))
	}
}

func (res *ParseResult) parseJSONL(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec RawRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			res.damaged()
			continue
		}
		res.add(convert(rec))
	}
	if err := scanner.Err(); err != nil {
		res.Err = err
	}
}

func (res *ParseResult) parseCSV(r io.Reader) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			res.Err = fmt.Errorf("reading csv header: %w", err)
		}
		return
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["title"]; !ok {
		res.Err = errors.New("csv header has no title column")
		return
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			res.damaged()
			continue
		}
		rec := RawRecord{
			ID:       field(row, "id"),
			Title:    field(row, "title"),
			Date:     field(row, "date"),
			Category: field(row, "category"),
		}
		if amt := field(row, "amount"); amt != "" {
			rec.Amount = json.RawMessage(amt)
		}
		res.add(convert(rec))
	}
}

type conversion struct {
	expense model.Expense
	skip    bool
	damaged bool
}

func (res *ParseResult) add(c conversion) {
	pos := res.records
	res.records++
	if c.damaged {
		res.ParseErrors++
	}
	if c.skip {
		return
	}
	if c.expense.ID == "" {
		c.expense.ID = RecordID(res.idBase, pos)
	}
	res.Expenses = append(res.Expenses, c.expense)
}

// damaged counts a record that could not be decoded at all.
func (res *ParseResult) damaged() {
	res.records++
	res.ParseErrors++
}

func convert(rec RawRecord) conversion {
	title := strings.TrimSpace(rec.Title)
	if title == "" {
		return conversion{skip: true, damaged: true}
	}
	date, err := model.ParseDate(rec.Date)
	if err != nil {
		return conversion{skip: true, damaged: true}
	}

	var c conversion
	amount, ok := parseAmount(rec.Amount)
	if !ok {
		amount = decimal.Zero
		c.damaged = true
	}
	cat := model.Category(strings.TrimSpace(rec.Category))
	if cat == "" {
		cat = Uncategorized
	}
	c.expense = model.Expense{
		ID:       strings.TrimSpace(rec.ID),
		Title:    title,
		Amount:   amount,
		Date:     date,
		Category: cat,
	}
	return c
}

// parseAmount accepts a JSON number, a quoted number, or a bare CSV value.
// Currency symbols and thousands separators are stripped.
func parseAmount(raw json.RawMessage) (decimal.Decimal, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return decimal.Zero, false
	}
	if s[0] == '"' {
		var unq string
		if err := json.Unmarshal(raw, &unq); err != nil {
			return decimal.Zero, false
		}
		s = unq
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case ',', ' ', '$', '€', '£', '₹':
			return -1
		}
		return r
	}, s)
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}
