package domain

import (
	"encoding/json"
	"fmt"
)

// ProgressRow represents one seller's record in the weekly progress file.
// GMS and parity values are nil when the source cell was empty or could not
// be parsed.
type ProgressRow struct {
	MerchantName    string   `json:"merchant_name"`
	CurrentGMS      *float64 `json:"gms_current,omitempty"`
	PreviousGMS     *float64 `json:"gms_previous,omitempty"`
	SAS             bool     `json:"sas"`
	SelectionParity *float64 `json:"selection_parity,omitempty"`
}

// Diff returns current minus previous GMS. The second return value is false
// when either side is missing.
func (r ProgressRow) Diff() (float64, bool) {
	if r.CurrentGMS == nil || r.PreviousGMS == nil {
		return 0, false
	}
	return *r.CurrentGMS - *r.PreviousGMS, true
}

// SellerDelta is a ranked seller with its week-over-week GMS movement.
type SellerDelta struct {
	Name        string  `json:"sp_name"`
	CurrentGMS  float64 `json:"gms_current"`
	PreviousGMS float64 `json:"gms_previous"`
	Diff        float64 `json:"diff"`
}

// Ranking groups the top sellers of one direction by SAS flag.
type Ranking struct {
	SAS    []SellerDelta `json:"sas"`
	NonSAS []SellerDelta `json:"non_sas"`
}

// RankingGroup is a labelled slice of a Ranking, in display order.
type RankingGroup struct {
	Label   string
	Sellers []SellerDelta
}

// Groups returns the ranking groups in the order they are rendered.
func (r Ranking) Groups() []RankingGroup {
	return []RankingGroup{
		{Label: "SAS", Sellers: r.SAS},
		{Label: "Non-SAS", Sellers: r.NonSAS},
	}
}

// ParityEntry is a seller whose selection parity crossed a reporting threshold.
type ParityEntry struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
}

// Label formats the percentage truncated toward zero, e.g. "-92%".
func (p ParityEntry) Label() string {
	return fmt.Sprintf("%d%%", int(p.Percent))
}

// ParityMapping is an insertion-ordered seller name to percentage label map.
type ParityMapping struct {
	keys   []string
	values map[string]string
}

// Set stores label for name. A repeated name keeps its original position and
// takes the new label.
func (m *ParityMapping) Set(name, label string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[name]; !ok {
		m.keys = append(m.keys, name)
	}
	m.values[name] = label
}

// Get returns the label stored for name.
func (m ParityMapping) Get(name string) (string, bool) {
	v, ok := m.values[name]
	return v, ok
}

// Len returns the number of distinct sellers.
func (m ParityMapping) Len() int {
	return len(m.keys)
}

// Each calls fn for every entry in insertion order.
func (m ParityMapping) Each(fn func(name, label string)) {
	for _, k := range m.keys {
		fn(k, m.values[k])
	}
}

// MarshalJSON encodes the mapping as a JSON object preserving order.
func (m ParityMapping) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, k := range m.keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, val...)
	}
	return append(buf, '}'), nil
}

// WeeklyAnalysis is the result of comparing two consecutive weeks of the
// Top-100 progress file. It is consumed by the document renderer and returned
// as JSON by the API.
type WeeklyAnalysis struct {
	Week                  int           `json:"week"`
	PreviousWeek          int           `json:"previous_week"`
	Contributors          Ranking       `json:"contributors"`
	Detractors            Ranking       `json:"detractors"`
	FromZeroSelection     []string      `json:"from_zero_selection"`
	FromZeroSelectionText string        `json:"from_zero_selection_text"`
	ParityIncrease        []ParityEntry `json:"wow_parity_increase"`
	ParityIncreaseText    string        `json:"wow_parity_increase_text"`
	ParityDecrease        ParityMapping `json:"wow_parity_decrease"`
	RowsAnalyzed          int           `json:"rows_analyzed"`
}

// CurrentColumn returns the progress-file column holding this week's GMS.
func (a *WeeklyAnalysis) CurrentColumn() string {
	return GMSColumn(a.Week)
}

// PreviousColumn returns the progress-file column holding last week's GMS.
func (a *WeeklyAnalysis) PreviousColumn() string {
	return GMSColumn(a.PreviousWeek)
}

// GMSColumn returns the normalized GMS column name for a week number.
func GMSColumn(week int) string {
	return fmt.Sprintf("gms_%d", week)
}
