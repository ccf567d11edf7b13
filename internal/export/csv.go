package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"chandana/internal/domain"
)

const (
	HPLCPrefix = "hplc_data"
	HPOSPrefix = "hpos_data"
)

// Filename names an export after its dataset and the given day.
func Filename(prefix string, day time.Time) string {
	return fmt.Sprintf("%s_%s.csv", sanitizeFilename(prefix), day.Format("20060102"))
}

// WriteCSV writes the header and every row in order. Null cells are written
// as empty fields.
func WriteCSV(w io.Writer, t domain.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	record := make([]string, len(t.Header))
	for _, row := range t.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) && !row[i].Null {
				record[i] = row[i].Value
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func Bytes(t domain.Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func WriteCSVFile(t domain.Table, outputDir, prefix string, day time.Time) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}
	data, err := Bytes(t)
	if err != nil {
		return "", err
	}
	path := filepath.Join(outputDir, Filename(prefix, day))
	return path, os.WriteFile(path, data, 0644)
}

func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	return replacer.Replace(s)
}
