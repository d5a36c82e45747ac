package record

import "fmt"

// System columns shared by every table. record_id lives in column 0; the two
// timestamp columns follow it. Domain fields start at index 3.
const (
	FieldRecordID  = "record_id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
)

// FieldSet is an ordered enumeration of field names. A member's position is
// its worksheet column index, and its name is the header cell text. That
// three-way binding (member <-> column index <-> header cell) is the central
// invariant of the store.
type FieldSet struct {
	names []string
	index map[string]int
}

// NewFieldSet builds a FieldSet from the domain field names. The three system
// columns are prepended automatically.
func NewFieldSet(domainFields ...string) *FieldSet {
	names := append([]string{FieldRecordID, FieldCreatedAt, FieldUpdatedAt}, domainFields...)
	index := make(map[string]int, len(names))
	for i, name := range names {
		if _, dup := index[name]; dup {
			panic(fmt.Sprintf("record: duplicate field %q", name))
		}
		index[name] = i
	}
	return &FieldSet{names: names, index: index}
}

// Len returns the number of columns.
func (fs *FieldSet) Len() int { return len(fs.names) }

// Names returns the ordered field names.
func (fs *FieldSet) Names() []string { return append([]string(nil), fs.names...) }

// Header returns the header row for a worksheet holding this field set.
func (fs *FieldSet) Header() []string { return fs.Names() }

// Index returns the column index of a field name.
func (fs *FieldSet) Index(name string) (int, bool) {
	i, ok := fs.index[name]
	return i, ok
}

func (fs *FieldSet) mustIndex(name string) int {
	i, ok := fs.index[name]
	if !ok {
		panic(fmt.Sprintf("record: unknown field %q", name))
	}
	return i
}
