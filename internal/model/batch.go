package model

import "time"

// Batch is a named group of records imported together.
type Batch struct {
	ImportedAt  time.Time
	Name        string
	Sources     []string // Files the records were read from, if known
	RecordCount int
}
