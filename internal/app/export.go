package app

import (
	"encoding/csv"
	"io"
	"strconv"

	"restoreviews/internal/domain"
)

// utf8BOM makes spreadsheet tools detect UTF-8 (Cyrillic text).
const utf8BOM = "\ufeff"

var exportHeader = []string{"restaurant", "author", "rating", "text", "date", "responded"}

// WriteCSV exports reviews with rating, text, date and responded verbatim.
func WriteCSV(w io.Writer, reviews []domain.Review) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, r := range reviews {
		rec := []string{
			r.RestaurantName,
			r.AuthorName,
			strconv.FormatFloat(r.Rating, 'f', -1, 64),
			r.Text,
			r.CreatedAtDisplay,
			strconv.FormatBool(r.Responded),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
