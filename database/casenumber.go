package database

import (
	"fmt"
	"time"
)

// NextCaseNumber formats the case number for the next report created in the
// month of t, given the number of reports already created that month. The
// count+1 sequence can collide under concurrent creation; the insert path
// relies on the unique key on case_number and retries with a bumped
// sequence.
func NextCaseNumber(t time.Time, countThisMonth int) string {
	return fmt.Sprintf("ENV-%04d%02d-%04d", t.Year(), int(t.Month()), countThisMonth+1)
}
