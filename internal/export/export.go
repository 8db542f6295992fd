// Package export produces downloadable files, including the client-side
// CSV used when the backend PDF export is unavailable.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// utf8BOM lets spreadsheet tools detect UTF-8 / Permet aux tableurs de détecter l'UTF-8
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

const (
	ContentTypeCSV = "text/csv; charset=utf-8"
	ContentTypePDF = "application/pdf"
)

// Column maps one CSV column to a value of T / Associe une colonne CSV à une valeur de T
type Column[T any] struct {
	Header string
	Value  func(T) string
}

// CSVOptions tunes the CSV output / Ajuste la sortie CSV
type CSVOptions struct {
	Separator rune // ';' suits French locale spreadsheets / ';' convient aux tableurs en français
	BOM       bool
	CRLF      bool
}

// DefaultCSVOptions returns separator ';', BOM on, CRLF on.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{Separator: ';', BOM: true, CRLF: true}
}

// File is an export ready to be saved / Fichier d'export prêt à être enregistré
type File struct {
	Name        string
	ContentType string
	Data        []byte
	Fallback    bool // Produced client-side because the backend export failed / Produit côté client suite à l'échec du backend
}

// CSV renders rows with a header line / Produit le CSV avec une ligne d'en-tête
func CSV[T any](rows []T, columns []Column[T], opts CSVOptions) ([]byte, error) {
	var buf bytes.Buffer
	if opts.BOM {
		buf.Write(utf8BOM)
	}

	w := csv.NewWriter(&buf)
	if opts.Separator != 0 {
		w.Comma = opts.Separator
	}
	w.UseCRLF = opts.CRLF

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.Header
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		for i, c := range columns {
			record[i] = c.Value(row)
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName returns "<prefix>_<date>.<ext>" / Retourne "<prefix>_<date>.<ext>"
func FileName(prefix, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", prefix, now.Format("2006-01-02_15-04-05"), strings.TrimPrefix(ext, "."))
}

// Save writes f into dir and returns its path / Écrit f dans dir et retourne son chemin
func Save(dir string, f *File) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	path := filepath.Join(dir, filepath.Base(f.Name))
	if err := os.WriteFile(path, f.Data, 0o644); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}
	return path, nil
}
