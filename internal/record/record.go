package record

import (
	"strconv"
	"time"
)

// Boolean cells serialize as "Yes"/"No"; an empty cell reads as false.
const (
	boolTrue  = "Yes"
	boolFalse = "No"
)

// Record is one typed row of a worksheet: a mutable list of cell values
// indexed by a FieldSet. Setters stamp updated_at and mark the row dirty.
type Record struct {
	fields *FieldSet
	cells  []string
	dirty  bool
}

// New creates an empty record for the given field set.
func New(fields *FieldSet) *Record {
	return &Record{fields: fields, cells: make([]string, fields.Len())}
}

// FromRow builds a record from a raw worksheet row. Rows shorter than the
// field set (trailing empty cells are trimmed by the backend) are padded;
// longer rows keep their surplus cells so an overwrite does not drop data
// written by a newer schema.
func FromRow(fields *FieldSet, row []string) *Record {
	cells := make([]string, max(len(row), fields.Len()))
	copy(cells, row)
	return &Record{fields: fields, cells: cells}
}

// Fields returns the record's field set.
func (r *Record) Fields() *FieldSet { return r.fields }

// ID returns the record id from column 0.
func (r *Record) ID() string { return r.cells[0] }

// Dirty reports whether a setter has run since the last ClearDirty.
func (r *Record) Dirty() bool { return r.dirty }

// ClearDirty resets the dirty bit, typically after the row is enqueued.
func (r *Record) ClearDirty() { r.dirty = false }

// Get returns the raw cell value of a field.
func (r *Record) Get(name string) string {
	return r.cells[r.fields.mustIndex(name)]
}

// Set writes a raw cell value, stamps updated_at, and marks the row dirty.
func (r *Record) Set(name, value string) {
	i := r.fields.mustIndex(name)
	r.cells[i] = value
	r.dirty = true
	if name != FieldUpdatedAt {
		r.stampUpdated()
	}
}

// SetRaw writes a cell without stamping updated_at or setting the dirty bit.
// Used when materializing system columns at creation time.
func (r *Record) SetRaw(name, value string) {
	r.cells[r.fields.mustIndex(name)] = value
}

// GetBool reads a "Yes"/"No" cell. Empty and unknown values read as false.
func (r *Record) GetBool(name string) bool {
	return r.Get(name) == boolTrue
}

// SetBool writes a boolean as "Yes"/"No".
func (r *Record) SetBool(name string, v bool) {
	if v {
		r.Set(name, boolTrue)
	} else {
		r.Set(name, boolFalse)
	}
}

// GetTime reads a decimal-epoch-seconds cell. An empty or malformed cell
// reads as the zero time.
func (r *Record) GetTime(name string) time.Time {
	raw := r.Get(name)
	if raw == "" {
		return time.Time{}
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}

// SetTime writes a timestamp as decimal epoch seconds. The zero time writes
// an empty cell.
func (r *Record) SetTime(name string, t time.Time) {
	if t.IsZero() {
		r.Set(name, "")
		return
	}
	r.Set(name, strconv.FormatInt(t.Unix(), 10))
}

// GetInt reads an integer cell; empty or malformed cells read as zero.
func (r *Record) GetInt(name string) int {
	n, err := strconv.Atoi(r.Get(name))
	if err != nil {
		return 0
	}
	return n
}

// SetInt writes an integer cell.
func (r *Record) SetInt(name string, v int) {
	r.Set(name, strconv.Itoa(v))
}

// CreatedAt returns the created_at timestamp.
func (r *Record) CreatedAt() time.Time { return r.GetTime(FieldCreatedAt) }

// UpdatedAt returns the updated_at timestamp.
func (r *Record) UpdatedAt() time.Time { return r.GetTime(FieldUpdatedAt) }

// ToRow serializes the record to a flat list of cells.
func (r *Record) ToRow() []string {
	return append([]string(nil), r.cells...)
}

// ToMap returns the record as a field-name to cell-value map. Surplus cells
// beyond the field set are not included.
func (r *Record) ToMap() map[string]string {
	out := make(map[string]string, r.fields.Len())
	for i, name := range r.fields.names {
		out[name] = r.cells[i]
	}
	return out
}

func (r *Record) stampUpdated() {
	r.cells[r.fields.mustIndex(FieldUpdatedAt)] = strconv.FormatInt(time.Now().Unix(), 10)
}
