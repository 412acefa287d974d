// Package csv parses one entity's CSV file into a batch of records.Row. The
// reader is configured leniently (variable field counts, lazy quotes) because
// the input is untrusted; structural problems the reader cannot recover from,
// and a header missing a required column, are fatal for the whole file.
//
// Cell coercion is deliberately forgiving: an empty cell becomes nil, a cell
// that coerces cleanly becomes its typed value, and a cell that does not
// stays a raw string so the cleaning pipeline can count it under the right
// invalid_* reason instead of a missing_* one.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"txnetl/internal/records"
)

// Options configures the CSV parser. Zero values give the common defaults.
type Options struct {
	// Comma is the field delimiter; ',' when zero.
	Comma rune

	// TrimSpace trims leading/trailing ASCII space from each cell before
	// coercion.
	TrimSpace bool
}

// Parser reads CSV batches for a fixed field set. Safe to reuse across
// inputs; not safe for concurrent use.
type Parser struct {
	fields []records.Field
	opt    Options
}

// NewParser constructs a Parser for the given entity fields.
func NewParser(fields []records.Field, opt Options) *Parser {
	return &Parser{fields: fields, opt: opt}
}

// Parse reads the whole input: header first, then every data row. It returns
// an error when the input is unreadable or the header lacks any required
// column; individual cell problems never fail the parse.
func (p *Parser) Parse(r io.Reader) ([]records.Row, error) {
	cr := csv.NewReader(r)
	cr.Comma = p.comma()
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty input: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, cell := range header {
		idx[NormalizeHeader(cell)] = i
	}
	for _, f := range p.fields {
		if _, ok := idx[f.Name]; !ok {
			return nil, fmt.Errorf("missing required column %q", f.Name)
		}
	}

	var out []records.Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		row := make(records.Row, len(p.fields))
		for _, f := range p.fields {
			i := idx[f.Name]
			if i >= len(rec) {
				row[f.Name] = nil
				continue
			}
			row[f.Name] = p.coerce(f.Kind, rec[i])
		}
		out = append(out, row)
	}
	return out, nil
}

// coerce maps one raw cell onto its typed value. Failed coercions return the
// raw string unchanged.
func (p *Parser) coerce(kind, raw string) any {
	if p.opt.TrimSpace {
		raw = strings.TrimSpace(raw)
	}
	if raw == "" {
		return nil
	}
	switch kind {
	case records.KindInt:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n
		}
		return raw
	case records.KindAmount:
		if d, err := decimal.NewFromString(raw); err == nil {
			return d
		}
		return raw
	default:
		// dates stay strings; the pipeline's date stage owns format checks
		return raw
	}
}

func (p *Parser) comma() rune {
	if p.opt.Comma != 0 {
		return p.opt.Comma
	}
	return ','
}
