package testutil

import "time"

// rowData holds the fields of a person row before it is built.
type rowData struct {
	id     string
	name   string
	age    float64
	joined time.Time
	color  string
	status string
	city   string
	tags   []string
	extra  map[string]any
}

// defaultRow returns a rowData with sensible defaults.
func defaultRow(id string) rowData {
	return rowData{
		id:     id,
		name:   id, // Default name is the ID
		age:    30,
		joined: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		status: "active",
	}
}

// RowOption configures a row during builder setup.
type RowOption func(*rowData)

func Name(name string) RowOption {
	return func(r *rowData) { r.name = name }
}

// Age is stored as float64, the type JSON decoding produces.
func Age(age int) RowOption {
	return func(r *rowData) { r.age = float64(age) }
}

// Joined is stored as an RFC 3339 string, as it appears in a dataset file.
func Joined(t time.Time) RowOption {
	return func(r *rowData) { r.joined = t }
}

func Color(c string) RowOption {
	return func(r *rowData) { r.color = c }
}

func Status(s string) RowOption {
	return func(r *rowData) { r.status = s }
}

// City sets the nested address.city property.
func City(c string) RowOption {
	return func(r *rowData) { r.city = c }
}

// Tags adds tags to the row (nested option).
func Tags(tags ...string) RowOption {
	return func(r *rowData) { r.tags = append(r.tags, tags...) }
}

// Field sets an arbitrary top-level property.
func Field(property string, v any) RowOption {
	return func(r *rowData) {
		if r.extra == nil {
			r.extra = make(map[string]any)
		}
		r.extra[property] = v
	}
}
