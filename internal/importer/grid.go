package importer

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/timetable-scheduler-api/internal/models"
	"github.com/noah-isme/timetable-scheduler-api/internal/scheduler"
)

// LibraryRoom is the room code recorded for library cells.
const LibraryRoom = "Library"

// ErrNoTimeHeader is returned when no row carries at least two time ranges.
var ErrNoTimeHeader = errors.New("could not detect time header row; expected ranges like 09:00 - 10:00")

var (
	timeSeparator = regexp.MustCompile(`\s*[–-]\s*`)
	timeLabel     = regexp.MustCompile(`^(\d{2}:\d{2})-(\d{2}:\d{2})$`)
	cellPattern   = regexp.MustCompile(`^([A-Za-z0-9 &+./-]+?)\s*\(([^)]+)\)\s*-\s*([A-Za-z0-9-]+)$`)
)

// TimeColumn is a header column holding a time range.
type TimeColumn struct {
	Index     int
	StartTime string
	EndTime   string
	Duration  int
}

// GridCell is one filled cell of the timetable grid.
type GridCell struct {
	Day         models.Weekday
	Section     string
	StartTime   string
	EndTime     string
	SubjectName string
	TeacherCode string
	RoomCode    string
	Library     bool
}

// Grid is the scanned content of a timetable sheet.
type Grid struct {
	Columns []TimeColumn
	Cells   []GridCell
	// Skipped counts filled cells in rows without a section label.
	Skipped int

	sections []string
}

// ParseTimeLabel reads "09:00 - 10:00", "09:00-10:00" or an en dash variant.
func ParseTimeLabel(label string) (TimeColumn, bool) {
	norm := timeSeparator.ReplaceAllString(strings.Join(strings.Fields(label), " "), "-")
	m := timeLabel.FindStringSubmatch(strings.TrimSpace(norm))
	if m == nil {
		return TimeColumn{}, false
	}
	start, err := models.ParseClock(m[1])
	if err != nil {
		return TimeColumn{}, false
	}
	end, err := models.ParseClock(m[2])
	if err != nil || end <= start {
		return TimeColumn{}, false
	}
	return TimeColumn{StartTime: m[1], EndTime: m[2], Duration: end - start}, true
}

// ParseCell reads a grid cell such as "DBMS(NMN)-232" or "Library". Text that
// matches neither shape is kept as a subject without teacher or room.
func ParseCell(raw string) (GridCell, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return GridCell{}, false
	}
	if strings.EqualFold(s, "library") {
		return GridCell{SubjectName: "Library", RoomCode: LibraryRoom, Library: true}, true
	}
	if m := cellPattern.FindStringSubmatch(s); m != nil {
		return GridCell{
			SubjectName: strings.TrimSpace(m[1]),
			TeacherCode: strings.TrimSpace(m[2]),
			RoomCode:    strings.TrimSpace(m[3]),
		}, true
	}
	return GridCell{SubjectName: s}, true
}

// ScanGrid reads the first sheet of an xlsx workbook. Column 0 holds the day,
// carried forward over merged cells and defaulting to Monday; column 1 holds
// the section; time columns come from the first row with two or more ranges.
func ScanGrid(r io.Reader) (*Grid, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return scanRows(rows)
}

func scanRows(rows [][]string) (*Grid, error) {
	headerIdx := -1
	var columns []TimeColumn
	for i, row := range rows {
		found := headerColumns(row)
		if len(found) >= 2 {
			headerIdx = i
			columns = found
			break
		}
	}
	if headerIdx < 0 {
		return nil, ErrNoTimeHeader
	}

	grid := &Grid{Columns: columns}
	seenSection := make(map[string]struct{})
	day := models.Monday
	for _, row := range rows[headerIdx+1:] {
		if len(row) == 0 {
			continue
		}
		if parsed, err := models.ParseWeekday(cellAt(row, 0)); err == nil {
			day = parsed
		}
		section := strings.TrimSpace(cellAt(row, 1))
		if section != "" {
			if _, ok := seenSection[section]; !ok {
				seenSection[section] = struct{}{}
				grid.sections = append(grid.sections, section)
			}
		}
		for _, col := range columns {
			cell, ok := ParseCell(cellAt(row, col.Index))
			if !ok {
				continue
			}
			if section == "" {
				grid.Skipped++
				continue
			}
			cell.Day = day
			cell.Section = section
			cell.StartTime = col.StartTime
			cell.EndTime = col.EndTime
			grid.Cells = append(grid.Cells, cell)
		}
	}
	return grid, nil
}

func headerColumns(row []string) []TimeColumn {
	var cols []TimeColumn
	for idx, cell := range row {
		if col, ok := ParseTimeLabel(cell); ok {
			col.Index = idx
			cols = append(cols, col)
		}
	}
	return cols
}

func cellAt(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

// Sections returns the section labels in order of appearance.
func (g *Grid) Sections() []string {
	return append([]string(nil), g.sections...)
}

// TimeSlots returns one Lecture slot per distinct day and time range that
// carries at least one cell, in weekday then start order.
func (g *Grid) TimeSlots() []models.TimeSlot {
	type key struct {
		day        models.Weekday
		start, end string
	}
	durations := make(map[string]int, len(g.Columns))
	for _, col := range g.Columns {
		durations[col.StartTime+"-"+col.EndTime] = col.Duration
	}
	seen := make(map[key]struct{})
	var slots []models.TimeSlot
	for _, cell := range g.Cells {
		k := key{cell.Day, cell.StartTime, cell.EndTime}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		slots = append(slots, models.TimeSlot{
			Day:       cell.Day,
			StartTime: cell.StartTime,
			EndTime:   cell.EndTime,
			Duration:  durations[cell.StartTime+"-"+cell.EndTime],
			SlotType:  models.SlotTypeLecture,
			IsActive:  true,
		})
	}
	scheduler.SortTimeSlots(slots)
	return slots
}

// TeacherCodes returns the distinct teacher codes, sorted.
func (g *Grid) TeacherCodes() []string {
	return distinct(g.Cells, func(c GridCell) string { return c.TeacherCode })
}

// RoomCodes returns the distinct room codes, sorted.
func (g *Grid) RoomCodes() []string {
	return distinct(g.Cells, func(c GridCell) string { return c.RoomCode })
}

func distinct(cells []GridCell, pick func(GridCell) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, cell := range cells {
		v := pick(cell)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
