package importer

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/noah-isme/timetable-scheduler-api/internal/models"
)

// CatalogueCSV decodes catalogue uploads. Columns are matched by the csv
// tags on the model types, so column order is free.
type CatalogueCSV struct {
	Comma rune
}

// NewCatalogueCSV returns a decoder for comma separated files.
func NewCatalogueCSV() *CatalogueCSV {
	return &CatalogueCSV{Comma: ','}
}

func (d *CatalogueCSV) reader(in io.Reader) gocsv.CSVReader {
	r := csv.NewReader(in)
	if d.Comma != 0 {
		r.Comma = d.Comma
	}
	r.TrimLeadingSpace = true
	return r
}

// TimeSlots decodes time slot rows. Rows are returned unvalidated.
func (d *CatalogueCSV) TimeSlots(in io.Reader) ([]*models.TimeSlot, error) {
	var slots []*models.TimeSlot
	if err := gocsv.UnmarshalCSV(d.reader(in), &slots); err != nil {
		return nil, fmt.Errorf("decode time slots: %w", err)
	}
	return slots, nil
}

// Rooms decodes room rows.
func (d *CatalogueCSV) Rooms(in io.Reader) ([]*models.Room, error) {
	var rooms []*models.Room
	if err := gocsv.UnmarshalCSV(d.reader(in), &rooms); err != nil {
		return nil, fmt.Errorf("decode rooms: %w", err)
	}
	return rooms, nil
}

// Labs decodes lab rows.
func (d *CatalogueCSV) Labs(in io.Reader) ([]*models.Lab, error) {
	var labs []*models.Lab
	if err := gocsv.UnmarshalCSV(d.reader(in), &labs); err != nil {
		return nil, fmt.Errorf("decode labs: %w", err)
	}
	return labs, nil
}
