package app_test

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"restoreviews/internal/app"
	"restoreviews/internal/domain"
)

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := app.WriteCSV(&buf, []domain.Review{
		{RestaurantName: "Блинная", AuthorName: "Аноним", Rating: 4.5, Text: "хорошо, но долго", CreatedAtDisplay: "15.03.2024", Responded: true},
		{RestaurantName: "B", AuthorName: "Bob", Rating: 0, Text: "ok", CreatedAtDisplay: domain.NoDate},
	})
	if err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "\ufeff") {
		t.Fatalf("missing BOM")
	}

	rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, "\ufeff"))).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 3 || rows[0][0] != "restaurant" {
		t.Fatalf("rows: %v", rows)
	}
	if got := strings.Join(rows[1], "|"); got != "Блинная|Аноним|4.5|хорошо, но долго|15.03.2024|true" {
		t.Fatalf("row 1: %s", got)
	}
	if got := strings.Join(rows[2], "|"); got != "B|Bob|0|ok|Нет даты|false" {
		t.Fatalf("row 2: %s", got)
	}
}
