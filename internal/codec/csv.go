package codec

import (
	"bytes"
	"encoding/csv"
	"io"

	"github.com/recast-io/recast/internal/value"
)

// decodeCSV reads records into an array of objects keyed by the header row,
// or an array of string arrays when noHeaders is set. Cells stay strings.
func decodeCSV(data []byte, noHeaders bool) (value.Value, error) {
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return value.Value{}, err
	}
	if len(records) == 0 {
		return value.Arr(), nil
	}

	if noHeaders {
		rows := make([]value.Value, len(records))
		for i, record := range records {
			cells := make([]value.Value, len(record))
			for j, cell := range record {
				cells[j] = value.Str(cell)
			}
			rows[i] = value.Arr(cells...)
		}
		return value.Arr(rows...), nil
	}

	headers := records[0]
	rows := make([]value.Value, 0, len(records)-1)
	for _, record := range records[1:] {
		row := value.NewObject()
		for j, cell := range record {
			row.Set(headers[j], value.Str(cell))
		}
		rows = append(rows, value.Obj(row))
	}
	return value.Arr(rows...), nil
}

// encodeCSV writes one record per element of the value's array form. Object
// rows take their columns from the first row's keys, missing cells stay
// empty. Other rows stringify their array form cell by cell.
func encodeCSV(w io.Writer, v value.Value, noHeaders bool) error {
	rows := v.ToArray()
	if len(rows) == 0 {
		return nil
	}

	cw := csv.NewWriter(w)
	defer cw.Flush()

	if first, ok := rows[0].AsObject(); ok {
		headers := first.Keys()
		if !noHeaders {
			if err := cw.Write(headers); err != nil {
				return err
			}
		}
		for _, row := range rows {
			record := make([]string, len(headers))
			if obj, ok := row.AsObject(); ok {
				for j, h := range headers {
					if cell, ok := obj.Get(h); ok {
						record[j] = cell.IntoString()
					}
				}
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	}

	for _, row := range rows {
		cells := row.ToArray()
		record := make([]string, len(cells))
		for j, cell := range cells {
			record[j] = cell.IntoString()
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
