package repository

import (
	"fmt"
	"time"
)

// statusTimeLayout is fixed-width so that lexicographic order in SQL (MAX
// over a volume's issues) matches chronological order.
const statusTimeLayout = "2006-01-02 15:04:05.000"

func formatStatusTime(t time.Time) string {
	return t.UTC().Format(statusTimeLayout)
}

func parseStatusTime(raw string) (time.Time, error) {
	t, err := time.Parse(statusTimeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse status timestamp %q: %w", raw, err)
	}
	return t, nil
}
