package models

// CourseRecord is one CSV data line keyed by header.
type CourseRecord map[string]string

// Get returns the first non-empty value among the given columns.
func (r CourseRecord) Get(columns ...string) string {
	for _, c := range columns {
		if v := r[c]; v != "" {
			return v
		}
	}
	return ""
}

type CourseTable struct {
	Headers []string       `json:"headers"`
	Rows    []CourseRecord `json:"rows"`
}
