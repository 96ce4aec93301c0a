package exporter

import (
	"weeklyreport/pkg/contracts/domain"
)

func sampleAnalysis() *domain.WeeklyAnalysis {
	a := &domain.WeeklyAnalysis{
		Week:         12,
		PreviousWeek: 11,
		Contributors: domain.Ranking{
			SAS: []domain.SellerDelta{
				{Name: "Alpha", CurrentGMS: 1500, PreviousGMS: 500, Diff: 1000},
				{Name: "", CurrentGMS: 300.5, PreviousGMS: 100, Diff: 200.5},
			},
			NonSAS: []domain.SellerDelta{},
		},
		Detractors: domain.Ranking{
			SAS: []domain.SellerDelta{
				{Name: "Gamma", CurrentGMS: 100, PreviousGMS: 400, Diff: -300},
			},
			NonSAS: []domain.SellerDelta{
				{Name: "Delta", CurrentGMS: 10, PreviousGMS: 20, Diff: -10},
			},
		},
		FromZeroSelection:     []string{"X", "W"},
		FromZeroSelectionText: "X\nW",
		ParityIncrease: []domain.ParityEntry{
			{Name: "Beta", Percent: 45},
			{Name: "Alpha", Percent: 35},
		},
		ParityIncreaseText: "Beta\t45%\nAlpha\t35%",
		RowsAnalyzed:       6,
	}
	a.ParityDecrease.Set("Foxtrot", "-92%")
	a.ParityDecrease.Set("Echo", "-60%")
	return a
}

func emptyAnalysis() *domain.WeeklyAnalysis {
	return &domain.WeeklyAnalysis{
		Week:                  1,
		PreviousWeek:          52,
		Contributors:          domain.Ranking{SAS: []domain.SellerDelta{}, NonSAS: []domain.SellerDelta{}},
		Detractors:            domain.Ranking{SAS: []domain.SellerDelta{}, NonSAS: []domain.SellerDelta{}},
		FromZeroSelection:     []string{},
		FromZeroSelectionText: "N/A.",
		ParityIncrease:        []domain.ParityEntry{},
		ParityIncreaseText:    "N/A.",
	}
}
