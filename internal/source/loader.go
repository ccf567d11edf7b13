package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"chandana/internal/domain"
	"chandana/internal/httpx"
)

// Loader reads one tabular source from a URL or a local path.
type Loader struct {
	Name   string
	Source string
	Client *http.Client
}

func NewLoader(name, src string) *Loader {
	return &Loader{Name: name, Source: strings.TrimSpace(src), Client: httpx.Client()}
}

// Load fetches and parses the source. Rows whose cells are all null are
// dropped. Callers decide what to substitute on error.
func (l *Loader) Load(ctx context.Context) (domain.Table, error) {
	if l.Source == "" {
		return domain.Table{}, fmt.Errorf("%s source is not configured", l.Name)
	}
	var (
		body []byte
		err  error
	)
	if IsRemote(l.Source) {
		body, err = l.fetch(ctx)
	} else {
		log.Printf("source read start name=%s path=%s", l.Name, l.Source)
		body, err = os.ReadFile(l.Source)
		if err != nil {
			err = fmt.Errorf("reading %s: %w", l.Source, err)
		}
	}
	if err != nil {
		return domain.Table{}, err
	}
	table, err := ParseCSV(bytes.NewReader(body))
	if err != nil {
		return domain.Table{}, fmt.Errorf("parsing %s csv: %w", l.Name, err)
	}
	table = table.DropEmptyRows()
	log.Printf("source load done name=%s rows=%d columns=%d", l.Name, table.Len(), len(table.Header))
	return table, nil
}

func (l *Loader) fetch(ctx context.Context) ([]byte, error) {
	log.Printf("source fetch start name=%s url=%s", l.Name, l.Source)
	body, err := httpx.GetBody(ctx, l.Client, l.Source)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", l.Name, err)
	}
	return body, nil
}

func IsRemote(src string) bool {
	lower := strings.ToLower(src)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

var ErrEmptyCSV = errors.New("no header row")

// ParseCSV reads a comma-delimited body with a header row. Ragged rows are
// accepted; missing trailing fields read as null.
func ParseCSV(r io.Reader) (domain.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return domain.Table{}, ErrEmptyCSV
	}
	if err != nil {
		return domain.Table{}, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	table := domain.Table{Header: header}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return domain.Table{}, err
		}
		row := make([]domain.Cell, len(header))
		for i := range row {
			if i < len(rec) {
				row[i] = domain.NewCell(rec[i])
			} else {
				row[i] = domain.Cell{Null: true}
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}
