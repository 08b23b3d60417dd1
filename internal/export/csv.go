package export

import (
	"encoding/csv"
	"io"
)

// WriteCSV writes the title and generated lines, a blank line, the header
// row and one line per report row.
func WriteCSV(w io.Writer, doc Document) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{doc.Title}); err != nil {
		return err
	}
	if err := cw.Write([]string{doc.Generated}); err != nil {
		return err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}

	if err := cw.Write(doc.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(doc.Rows); err != nil {
		return err
	}
	return cw.Error()
}
