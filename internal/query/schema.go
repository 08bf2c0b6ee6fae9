package query

// Schema maps the JSON field names a client may reference to database
// columns. Anything outside the map is rejected as a bad query instead of
// being interpolated into SQL.
type Schema struct {
	columns map[string]string
	sets    map[string]bool
}

func NewSchema(columns map[string]string) Schema {
	return Schema{columns: columns, sets: map[string]bool{}}
}

// WithSetFields marks fields whose column stores a comma-joined set of
// values. An `in` filter on a set field matches rows whose set contains any
// of the requested values, not rows whose column equals one of them.
func (s Schema) WithSetFields(fields ...string) Schema {
	for _, f := range fields {
		s.sets[f] = true
	}
	return s
}

func (s Schema) Column(field string) (string, bool) {
	col, ok := s.columns[field]
	return col, ok
}

func (s Schema) IsSet(field string) bool {
	return s.sets[field]
}
