package dataprocessing

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ErrWeekNotDetected is returned when a progress filename carries no usable
// week marker such as "w52".
var ErrWeekNotDetected = errors.New("week could not be detected from filename")

var weekPattern = regexp.MustCompile(`w(\d{1,2})`)

// MaxWeek is the highest ISO week number.
const MaxWeek = 53

// DetectWeek extracts the report week from a progress filename
// ("Top_100_progress_OHL_w52.xlsx" gives 52 and 51). Week 1 compares against
// week 52 of the previous year. Only the base name is inspected.
func DetectWeek(filename string) (week, previous int, err error) {
	name := strings.ToLower(filepath.Base(filename))

	m := weekPattern.FindStringSubmatch(name)
	if m == nil {
		return 0, 0, ErrWeekNotDetected
	}

	week, _ = strconv.Atoi(m[1])
	if week < 1 || week > MaxWeek {
		return 0, 0, fmt.Errorf("%w: week %d out of range", ErrWeekNotDetected, week)
	}

	previous = week - 1
	if week == 1 {
		previous = 52
	}
	return week, previous, nil
}
