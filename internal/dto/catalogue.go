package dto

// CatalogueKind names an importable catalogue table.
type CatalogueKind string

const (
	CatalogueTimeSlots CatalogueKind = "timeslots"
	CatalogueRooms     CatalogueKind = "rooms"
	CatalogueLabs      CatalogueKind = "labs"
)

// RowError reports a rejected import row. Row numbers are 1-based; for CSV
// uploads they count the header.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// CSVImportResult summarises a catalogue CSV import.
type CSVImportResult struct {
	Kind     CatalogueKind `json:"kind"`
	Imported int           `json:"imported"`
	Rejected []RowError    `json:"rejected"`
}

// GridImportResult summarises a timetable-grid import. The slices hold
// everything found in the sheet; the counts hold what was newly created.
type GridImportResult struct {
	TimeSlots       []string `json:"timeSlots"`
	Teachers        []string `json:"teachers"`
	Rooms           []string `json:"rooms"`
	Sections        []string `json:"sections"`
	Cells           int      `json:"cells"`
	SkippedCells    int      `json:"skippedCells"`
	UpsertedSlots   int      `json:"upsertedSlots"`
	CreatedTeachers int      `json:"createdTeachers"`
	CreatedRooms    int      `json:"createdRooms"`
	CreatedSections int      `json:"createdSections"`
}
