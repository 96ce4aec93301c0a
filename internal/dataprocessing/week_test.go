package dataprocessing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectWeek(t *testing.T) {
	tests := []struct {
		filename string
		week     int
		previous int
		wantErr  bool
	}{
		{filename: "Top_100_progress_OHL_w52.xlsx", week: 52, previous: 51},
		{filename: "Top_100_progress_OHL_w01.xlsx", week: 1, previous: 52},
		{filename: "Top_100_progress_OHL_w1.xlsx", week: 1, previous: 52},
		{filename: "PROGRESS_W5.XLSX", week: 5, previous: 4},
		{filename: "progress_w12_final_w13.xlsx", week: 12, previous: 11},
		{filename: "progress_w53.csv", week: 53, previous: 52},
		{filename: "/data/w9/progress_w3.xlsx", week: 3, previous: 2},
		{filename: "progress.xlsx", wantErr: true},
		{filename: "progress_w00.xlsx", wantErr: true},
		{filename: "progress_w54.xlsx", wantErr: true},
		{filename: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			week, prev, err := DetectWeek(tt.filename)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrWeekNotDetected))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.week, week)
			assert.Equal(t, tt.previous, prev)
		})
	}
}
