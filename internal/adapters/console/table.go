// Package console renders dashboard aggregates as an aligned terminal table.
package console

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"restoreviews/internal/domain"
	"restoreviews/internal/normalize"
)

var header = []string{"#", "Ресторан", "Отзывы", "Рейтинг", "Кухня", "Сервис", "Атм.", "Цена", "Чист.", "Лайки", "Ответы", "Последний"}

// numeric columns are right-aligned
var rightAligned = map[int]bool{0: true, 2: true, 3: true, 4: true, 5: true, 6: true, 7: true, 8: true, 9: true, 10: true}

const maxNameWidth = 32

// WriteTable prints aggs in the given order followed by a totals line.
func WriteTable(w io.Writer, v domain.DashboardView) error {
	rows := make([][]string, 0, len(v.Aggregates))
	for i, a := range v.Aggregates {
		latest := domain.NoDate
		if a.LatestReviewDate != nil {
			latest = a.LatestReviewDate.Format("02.01.2006")
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			runewidth.Truncate(a.Name, maxNameWidth, "…"),
			strconv.Itoa(a.TotalReviews),
			stars(a.AvgRating),
			f1(a.AvgFoodRating),
			f1(a.AvgServiceRating),
			f1(a.AvgAtmosphereRating),
			f1(a.AvgPriceRating),
			f1(a.AvgCleanlinessRating),
			strconv.Itoa(a.TotalLikes),
			f1(a.ResponseRate) + "%",
			latest,
		})
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, r := range rows {
		for i, c := range r {
			if cw := runewidth.StringWidth(c); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	if err := writeRow(w, header, widths); err != nil {
		return err
	}
	sep := make([]string, len(widths))
	for i, wd := range widths {
		sep[i] = strings.Repeat("─", wd)
	}
	if _, err := fmt.Fprintln(w, strings.Join(sep, "─┼─")); err != nil {
		return err
	}
	for _, r := range rows {
		if err := writeRow(w, r, widths); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\nРесторанов: %d  Отзывов: %d  Отброшено: %d  Средний рейтинг: %s  Ответов: %s%%\n",
		v.Restaurants, v.Reviews, v.Dropped, f1(v.AvgRating), f1(v.ResponseRate))
	return err
}

func writeRow(w io.Writer, cells []string, widths []int) error {
	out := make([]string, len(cells))
	for i, c := range cells {
		if rightAligned[i] {
			out[i] = runewidth.FillLeft(c, widths[i])
		} else {
			out[i] = runewidth.FillRight(c, widths[i])
		}
	}
	_, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(out, " │ "), " "))
	return err
}

func f1(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }

func stars(v float64) string {
	n := normalize.Stars(v)
	return f1(v) + " " + strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}
