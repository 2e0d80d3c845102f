package hpack

// Headers is an ordered header collection. Add keeps arrival order and
// never deduplicates; names may repeat with distinct values.
type Headers struct {
	fields []HeaderField
}

// NewHeaders makes a collection from the given fields, in order.
func NewHeaders(fields ...HeaderField) *Headers {
	h := &Headers{}
	h.fields = append(h.fields, fields...)
	return h
}

// Add appends a field.
func (h *Headers) Add(name string, value string) {
	h.fields = append(h.fields, HeaderField{Name: name, Value: value})
}

// AddSensitive appends a field that must only travel as a never-indexed
// literal.
func (h *Headers) AddSensitive(name string, value string) {
	h.fields = append(h.fields, HeaderField{Name: name, Value: value, Sensitive: true})
}

// Len is the number of fields.
func (h *Headers) Len() int {
	return len(h.fields)
}

// Fields returns the fields in arrival order. The slice is shared; don't
// modify it.
func (h *Headers) Fields() []HeaderField {
	return h.fields
}

// Values collects every value recorded for a name, in arrival order.
func (h *Headers) Values(name string) []string {
	var values []string
	for _, f := range h.fields {
		if f.Name == name {
			values = append(values, f.Value)
		}
	}
	return values
}

// NamedValues is one name with all of its values.
type NamedValues struct {
	Name   string
	Values []string
}

// ByName groups values per name, names ordered by first appearance.
func (h *Headers) ByName() []NamedValues {
	var grouped []NamedValues
	position := map[string]int{}
	for _, f := range h.fields {
		i, seen := position[f.Name]
		if !seen {
			i = len(grouped)
			position[f.Name] = i
			grouped = append(grouped, NamedValues{Name: f.Name})
		}
		grouped[i].Values = append(grouped[i].Values, f.Value)
	}
	return grouped
}
