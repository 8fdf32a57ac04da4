package source

import (
	"encoding/json"
	"time"
)

// Format is the encoding of an import file.
type Format string

// Supported import formats.
const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatCSV   Format = "csv"
)

// RawRecord is one expense as it appears in a JSON or JSONL export. Amount
// is kept raw because exports carry it either as a number or as a string.
type RawRecord struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Amount   json.RawMessage `json:"amount"`
	Date     string          `json:"date"`
	Category string          `json:"category"`
}

// DiscoveredFile is an import file found during scanning.
type DiscoveredFile struct {
	Path    string
	Format  Format
	Size    int64
	ModTime time.Time
}
