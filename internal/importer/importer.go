// Package importer turns uploaded CSV files into ledger transactions.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/smartledger/smartledger/internal/apperr"
	enc "github.com/smartledger/smartledger/internal/encoding"
	"github.com/smartledger/smartledger/internal/transaction"
)

// Columns is the header written by the exporter and understood by Parse.
var Columns = []string{"Date", "Type", "Category", "Amount", "Description"}

var requiredColumns = []string{"date", "type", "category", "amount"}

type Importer interface {
	Parse(r io.Reader) ([]transaction.CreateParams, error)
}

// CSV parses comma separated files whose first record names the columns.
// Column order is free and names are matched case-insensitively;
// Description may be omitted.
type CSV struct{}

func NewCSV() *CSV {
	return &CSV{}
}

// colIndex maps lower-cased column names to their position in a record.
type colIndex map[string]int

func (c colIndex) value(record []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(record) {
		return ""
	}

	return strings.TrimSpace(record[i])
}

// Parse reads every record and stops at the first invalid one, naming its
// 1-based line. Nothing is returned unless all records are valid.
func (p *CSV) Parse(r io.Reader) ([]transaction.CreateParams, error) {
	utf8r, _, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detecting encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []transaction.CreateParams{}, nil
	}

	if err != nil {
		return nil, malformed(err)
	}

	cols, err := headerIndex(header)
	if err != nil {
		return nil, err
	}

	params := []transaction.CreateParams{}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, malformed(err)
		}

		line, _ := reader.FieldPos(0)

		item, err := parseRecord(cols, record)
		if err != nil {
			return nil, apperr.Invalid(fmt.Sprintf("line %d: %s", line, apperr.Message(err)))
		}

		params = append(params, item)
	}

	return params, nil
}

func headerIndex(header []string) (colIndex, error) {
	cols := make(colIndex, len(header))

	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, dup := cols[name]; name != "" && !dup {
			cols[name] = i
		}
	}

	var missing []string

	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return nil, apperr.Invalid("missing columns: " + strings.Join(missing, ", "))
	}

	return cols, nil
}

func parseRecord(cols colIndex, record []string) (transaction.CreateParams, error) {
	var p transaction.CreateParams

	date, err := time.Parse(time.DateOnly, cols.value(record, "date"))
	if err != nil {
		return p, apperr.Invalid("date must be formatted YYYY-MM-DD")
	}

	amount, err := decimal.NewFromString(cols.value(record, "amount"))
	if err != nil {
		return p, apperr.Invalid("amount must be a number")
	}

	p = transaction.CreateParams{
		Amount:      amount,
		Type:        transaction.Type(strings.ToLower(cols.value(record, "type"))),
		Category:    cols.value(record, "category"),
		Description: cols.value(record, "description"),
		Date:        date,
	}

	if err := p.Validate(); err != nil {
		return p, err
	}

	return p, nil
}

func malformed(err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return apperr.Wrap(apperr.KindInvalidInput, err, fmt.Sprintf("line %d: malformed csv", parseErr.Line))
	}

	return fmt.Errorf("reading csv: %w", err)
}
