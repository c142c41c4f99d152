package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/RMahshie/wigwag/pkg/models"
)

// readCSV decodes a catalog with a header row naming the columns. Extra
// columns are ignored.
func readCSV(r io.Reader) ([]models.SourceRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty csv", ErrCatalogRead)
		}
		return nil, fmt.Errorf("%w: csv header: %v", ErrCatalogRead, err)
	}
	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[strings.TrimSpace(h)] = i
	}
	for _, name := range FieldNames() {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrCatalogRead, name)
		}
	}

	var records []models.SourceRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCatalogRead, err)
		}

		rec := models.SourceRecord{Name: strings.TrimSpace(row[columns[NameField]])}
		for _, f := range fields {
			raw := strings.TrimSpace(row[columns[f.name]])
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %s: %v", ErrCatalogRead, line, f.name, err)
			}
			f.set(&rec, v)
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteCSV encodes records with a header row, in the column order read by
// Read.
func WriteCSV(w io.Writer, records []models.SourceRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(FieldNames()); err != nil {
		return err
	}
	for _, rec := range records {
		row := []string{rec.Name}
		for _, v := range Values(rec) {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
