package table

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/echomasterleague/league-bot/internal/record"
	"github.com/echomasterleague/league-bot/internal/sheets"
	"github.com/echomasterleague/league-bot/internal/store"
)

var (
	ErrRecordNotFound      = errors.New("record not found")
	ErrRecordAlreadyExists = errors.New("record already exists")
	ErrRecordNotInserted   = errors.New("record not inserted")
	ErrHeaderMismatch      = errors.New("worksheet header does not cover table fields")
)

// UniqueCheck validates a candidate record against the table's current rows
// before insertion. It returns an error wrapping ErrRecordAlreadyExists when
// the candidate violates a domain uniqueness rule.
type UniqueCheck func(candidate *record.Record, existing []*record.Record) error

// Table binds a worksheet title to a record constructor and a field
// enumeration. It provides create, filtered reads, update, delete and list,
// and enforces the record-id invariant. Cross-table logic does not belong
// here; it lives in the league service.
type Table struct {
	s      *store.Store
	title  string
	fields *record.FieldSet
	unique UniqueCheck

	// colOf maps a field index to its worksheet column, built from the
	// actual header row at Init. Identity for freshly created worksheets;
	// differs when the remote sheet has been reordered or extended.
	colOf []int
	width int
}

// New creates a table. unique may be nil for tables without a domain
// uniqueness rule beyond the record id.
func New(s *store.Store, title string, fields *record.FieldSet, unique UniqueCheck) *Table {
	return &Table{s: s, title: title, fields: fields, unique: unique}
}

// Title returns the worksheet title.
func (t *Table) Title() string { return t.title }

// Fields returns the table's field enumeration.
func (t *Table) Fields() *record.FieldSet { return t.fields }

// Init registers the worksheet with the store (creating it with a header row
// if absent) and binds the field enumeration to the actual header.
func (t *Table) Init(ctx context.Context, sp sheets.Spreadsheet) error {
	if err := t.s.Register(ctx, sp, t.title, t.fields.Header()); err != nil {
		return err
	}
	grid, err := t.s.Grid(ctx, t.title)
	if err != nil {
		return err
	}
	return t.bindHeader(grid[0])
}

// bindHeader builds the field-to-column mapping from the worksheet's header
// row. Every enumeration member must appear in the header; surplus columns
// (added by a newer schema or by operators) are tolerated and preserved.
func (t *Table) bindHeader(header []string) error {
	names := t.fields.Names()
	t.colOf = make([]int, len(names))
	t.width = len(header)
	for f, name := range names {
		col := -1
		for c, cell := range header {
			if strings.EqualFold(strings.TrimSpace(cell), name) {
				col = c
				break
			}
		}
		if col < 0 {
			return fmt.Errorf("%w: %s is missing column %q", ErrHeaderMismatch, t.title, name)
		}
		t.colOf[f] = col
	}
	return nil
}

// CreateRecord builds an unsaved record from a template of domain field
// values, assigning a fresh record id and stamping both timestamps.
func (t *Table) CreateRecord(template map[string]string) *record.Record {
	rec := record.New(t.fields)
	now := strconv.FormatInt(time.Now().Unix(), 10)
	rec.SetRaw(record.FieldRecordID, uuid.NewString())
	rec.SetRaw(record.FieldCreatedAt, now)
	rec.SetRaw(record.FieldUpdatedAt, now)
	for name, value := range template {
		rec.SetRaw(name, value)
	}
	return rec
}

// Insert runs the table's uniqueness check and enqueues an append for the
// record. On success the record's dirty bit is cleared.
func (t *Table) Insert(ctx context.Context, rec *record.Record) error {
	if t.unique != nil {
		existing, err := t.All(ctx)
		if err != nil {
			return err
		}
		if err := t.unique(rec, existing); err != nil {
			return err
		}
	}
	if err := t.s.Insert(t.title, t.rowFor(rec, nil)); err != nil {
		if errors.Is(err, store.ErrDuplicateRecordID) {
			return fmt.Errorf("%w: %s", ErrRecordAlreadyExists, rec.ID())
		}
		return fmt.Errorf("%w: %v", ErrRecordNotInserted, err)
	}
	rec.ClearDirty()
	log.Debug("Inserted record", "table", t.title, "recordID", rec.ID())
	return nil
}

// Create is CreateRecord followed by Insert.
func (t *Table) Create(ctx context.Context, template map[string]string) (*record.Record, error) {
	rec := t.CreateRecord(template)
	if err := t.Insert(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Get returns the record with the given id.
func (t *Table) Get(ctx context.Context, recordID string) (*record.Record, error) {
	grid, err := t.s.Grid(ctx, t.title)
	if err != nil {
		return nil, err
	}
	for _, row := range grid[1:] {
		if len(row) > 0 && row[0] == recordID {
			return t.recordFor(row), nil
		}
	}
	return nil, fmt.Errorf("%w: %s in %s", ErrRecordNotFound, recordID, t.title)
}

// All returns every record in the table.
func (t *Table) All(ctx context.Context) ([]*record.Record, error) {
	return t.Find(ctx, nil)
}

// Find returns the records matching every filter, compared case-insensitively
// on the cell value. A filter with an empty value means "any" and is ignored.
func (t *Table) Find(ctx context.Context, filters map[string]string) ([]*record.Record, error) {
	grid, err := t.s.Grid(ctx, t.title)
	if err != nil {
		return nil, err
	}
	var out []*record.Record
	for _, row := range grid[1:] {
		if len(row) == 0 || row[0] == "" {
			continue
		}
		rec := t.recordFor(row)
		if t.matches(rec, filters) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// FindOne returns the first record matching the filters.
func (t *Table) FindOne(ctx context.Context, filters map[string]string) (*record.Record, error) {
	recs, err := t.Find(ctx, filters)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: %s %v", ErrRecordNotFound, t.title, filters)
	}
	return recs[0], nil
}

// Update enqueues an in-place row replacement keyed by the record's id.
// Worksheet columns outside the field enumeration keep their current values.
func (t *Table) Update(ctx context.Context, rec *record.Record) error {
	grid, err := t.s.Grid(ctx, t.title)
	if err != nil {
		return err
	}
	var base []string
	for _, row := range grid[1:] {
		if len(row) > 0 && row[0] == rec.ID() {
			base = row
			break
		}
	}
	if base == nil {
		return fmt.Errorf("%w: %s in %s", ErrRecordNotFound, rec.ID(), t.title)
	}
	if err := t.s.Update(t.title, rec.ID(), t.rowFor(rec, base)); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s in %s", ErrRecordNotFound, rec.ID(), t.title)
		}
		return err
	}
	rec.ClearDirty()
	return nil
}

// Delete enqueues a row removal and drops it from the in-memory grid.
func (t *Table) Delete(ctx context.Context, recordID string) error {
	if err := t.s.Delete(t.title, recordID); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s in %s", ErrRecordNotFound, recordID, t.title)
		}
		return err
	}
	log.Debug("Deleted record", "table", t.title, "recordID", recordID)
	return nil
}

func (t *Table) matches(rec *record.Record, filters map[string]string) bool {
	for name, want := range filters {
		if want == "" {
			continue
		}
		if !strings.EqualFold(rec.Get(name), want) {
			return false
		}
	}
	return true
}

// recordFor builds a record from a worksheet row via the header mapping.
func (t *Table) recordFor(row []string) *record.Record {
	cells := make([]string, t.fields.Len())
	for f, col := range t.colOf {
		if col < len(row) {
			cells[f] = row[col]
		}
	}
	return record.FromRow(t.fields, cells)
}

// rowFor serializes a record into worksheet column order. base, when given,
// supplies values for columns the enumeration does not know about.
func (t *Table) rowFor(rec *record.Record, base []string) []string {
	row := make([]string, t.width)
	copy(row, base)
	cells := rec.ToRow()
	for f, col := range t.colOf {
		if col >= len(row) {
			continue
		}
		row[col] = cells[f]
	}
	return row
}
