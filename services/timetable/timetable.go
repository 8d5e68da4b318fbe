// Package timetable reads exam timetables from xlsx workbooks.
//
// The first row of the sheet is a header; columns are matched by name so
// their order does not matter. Recognized headers (english or french):
//
//	subject|matière  date  start|heure  duration|durée  room|salle  class|classe  notes
//
// Dates may be real date cells or text (2006-01-02, 02/01/2006), start times
// real time cells or text (8:30, 08h30), durations are in minutes.
package timetable

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/classpoll/core/school"
)

type field int

const (
	fieldSubject field = iota
	fieldDate
	fieldStart
	fieldDuration
	fieldRoom
	fieldClass
	fieldNotes
)

var headers = map[string]field{
	"subject":    fieldSubject,
	"matière":    fieldSubject,
	"matiere":    fieldSubject,
	"date":       fieldDate,
	"start":      fieldStart,
	"start time": fieldStart,
	"heure":      fieldStart,
	"duration":   fieldDuration,
	"durée":      fieldDuration,
	"duree":      fieldDuration,
	"room":       fieldRoom,
	"salle":      fieldRoom,
	"class":      fieldClass,
	"classe":     fieldClass,
	"notes":      fieldNotes,
}

var required = []field{fieldSubject, fieldDate, fieldStart, fieldDuration, fieldRoom}

var dateLayouts = []string{"2006-01-02", "02/01/2006", "2/1/2006"}

// RowError reports a malformed row; Row is 1-based as shown by spreadsheet apps.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string { return fmt.Sprintf("row %d: %v", e.Row, e.Err) }
func (e *RowError) Unwrap() error { return e.Err }

// Parse reads the exams of sheet (the first sheet when empty). Blank rows are skipped.
// The returned exams are not validated.
func Parse(r io.Reader, sheet string) ([]school.NewExam, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "opening workbook")
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheet")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Wrapf(err, "reading sheet %q", sheet)
	}
	if len(rows) == 0 {
		return nil, errors.Errorf("sheet %q is empty", sheet)
	}

	cols, err := mapHeader(rows[0])
	if err != nil {
		return nil, err
	}

	exams := make([]school.NewExam, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		exam, err := parseRow(row, cols)
		if err != nil {
			return nil, &RowError{Row: i + 2, Err: err}
		}
		exams = append(exams, exam)
	}
	return exams, nil
}

func mapHeader(header []string) (map[field]int, error) {
	cols := make(map[field]int)
	for i, name := range header {
		if fld, ok := headers[strings.ToLower(strings.TrimSpace(name))]; ok {
			cols[fld] = i
		}
	}
	var missing []string
	for _, fld := range required {
		if _, ok := cols[fld]; !ok {
			missing = append(missing, fieldName(fld))
		}
	}
	if len(missing) > 0 {
		return nil, errors.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func fieldName(fld field) string {
	return [...]string{"subject", "date", "start", "duration", "room", "class", "notes"}[fld]
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseRow(row []string, cols map[field]int) (school.NewExam, error) {
	cell := func(fld field) string {
		i, ok := cols[fld]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	date, err := parseDate(cell(fieldDate))
	if err != nil {
		return school.NewExam{}, err
	}
	start, err := parseClock(cell(fieldStart))
	if err != nil {
		return school.NewExam{}, err
	}
	duration, err := strconv.ParseFloat(cell(fieldDuration), 64)
	if err != nil {
		return school.NewExam{}, errors.Errorf("invalid duration %q", cell(fieldDuration))
	}

	return school.NewExam{
		Subject:         cell(fieldSubject),
		Date:            date,
		StartTime:       start,
		DurationMinutes: int(math.Round(duration)),
		Room:            cell(fieldRoom),
		Notes:           cell(fieldNotes),
		TargetClass:     cell(fieldClass),
	}, nil
}

func parseDate(s string) (time.Time, error) {
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, errors.Wrapf(err, "invalid date %q", s)
		}
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("invalid date %q", s)
}

// parseClock returns an HH:MM time from a day fraction (time cells) or text.
func parseClock(s string) (string, error) {
	if frac, err := strconv.ParseFloat(s, 64); err == nil && frac >= 0 && frac < 1 {
		minutes := int(math.Round(frac * 24 * 60))
		return fmt.Sprintf("%02d:%02d", minutes/60%24, minutes%60), nil
	}
	parts := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool { return r == ':' || r == 'h' })
	if len(parts) == 1 && strings.HasSuffix(strings.ToLower(s), "h") {
		parts = append(parts, "0")
	}
	if len(parts) != 2 {
		return "", errors.Errorf("invalid start time %q", s)
	}
	hours, errH := strconv.Atoi(parts[0])
	minutes, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil || hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return "", errors.Errorf("invalid start time %q", s)
	}
	return fmt.Sprintf("%02d:%02d", hours, minutes), nil
}
