// Package forms holds draft values for one record, validates them and turns
// them into request payloads.
package forms

import (
	"sort"
	"strings"
)

type Mode int

const (
	Create Mode = iota
	Edit
)

func (m Mode) String() string {
	if m == Edit {
		return "edit"
	}
	return "create"
}

// FieldErrors maps a field key to a user-facing message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return strings.Join(parts, "; ")
}

type Values map[string]string

// Field describes one input. Format runs while the user types (only when the
// value grows, so deleting is never fought), Blur when focus leaves.
type Field struct {
	Key         string
	Label       string
	Placeholder string
	Secret      bool
	Format      func(string) string
	Blur        func(string) string
}

type Schema struct {
	Fields   []Field
	Validate func(Values) FieldErrors
}

// Form is the draft of one record plus its create/edit mode.
type Form struct {
	schema Schema
	values Values
	mode   Mode
	id     int
	errs   FieldErrors
}

func New(schema Schema) *Form {
	return &Form{schema: schema, values: Values{}}
}

func (f *Form) Fields() []Field { return f.schema.Fields }
func (f *Form) Mode() Mode      { return f.mode }

// EditingID is the identifier of the record being edited.
func (f *Form) EditingID() (int, bool) {
	return f.id, f.mode == Edit
}

func (f *Form) Value(key string) string { return f.values[key] }

func (f *Form) Values() Values {
	out := make(Values, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// Set stores a new value for key and returns what was stored after live
// formatting.
func (f *Form) Set(key, v string) string {
	if fd, ok := f.field(key); ok && fd.Format != nil && len(v) > len(f.values[key]) {
		v = fd.Format(v)
	}
	f.values[key] = v
	return v
}

// Blur applies the field's on-blur transform.
func (f *Form) Blur(key string) string {
	v := f.values[key]
	if fd, ok := f.field(key); ok && fd.Blur != nil && v != "" {
		v = fd.Blur(v)
		f.values[key] = v
	}
	return v
}

// Edit switches to edit mode for record id with its current values.
func (f *Form) Edit(id int, v Values) {
	f.mode = Edit
	f.id = id
	f.values = Values{}
	for k, val := range v {
		f.values[k] = val
	}
	f.errs = nil
}

// Cancel returns to create mode and clears the draft without submitting.
func (f *Form) Cancel() {
	f.mode = Create
	f.id = 0
	f.values = Values{}
	f.errs = nil
}

// Succeeded is called after the service accepted the draft.
func (f *Form) Succeeded() { f.Cancel() }

// Validate runs the schema rules; errors are kept for display.
func (f *Form) Validate() bool {
	f.errs = nil
	if f.schema.Validate == nil {
		return true
	}
	errs := f.schema.Validate(f.Values())
	if len(errs) == 0 {
		return true
	}
	f.errs = errs
	return false
}

func (f *Form) Errors() FieldErrors { return f.errs }

// SetErrors shows errors reported by the service next to their fields.
func (f *Form) SetErrors(errs FieldErrors) {
	if len(errs) == 0 {
		f.errs = nil
		return
	}
	f.errs = errs
}

func (f *Form) field(key string) (Field, bool) {
	for _, fd := range f.schema.Fields {
		if fd.Key == key {
			return fd, true
		}
	}
	return Field{}, false
}
