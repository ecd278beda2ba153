package reporting

import (
	"github.com/shopspring/decimal"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
)

// StageCount is the number of leads in one pipeline stage
type StageCount struct {
	Stage domain.LeadStage
	Count int
	Value decimal.Decimal
}

// PipelineStats summarises the lead pipeline
type PipelineStats struct {
	Stages    []StageCount
	Total     int
	Open      int
	OpenValue decimal.Decimal
	Won       int
	Lost      int
	// ConversionRate is won divided by closed leads, zero when none are closed
	ConversionRate decimal.Decimal
}

// ComputePipelineStats counts leads per stage in pipeline order
func ComputePipelineStats(leads []domain.Lead) PipelineStats {
	idx := make(map[domain.LeadStage]int, len(domain.LeadStages))
	stats := PipelineStats{
		Stages:         make([]StageCount, len(domain.LeadStages)),
		OpenValue:      decimal.Zero,
		ConversionRate: decimal.Zero,
	}
	for i, st := range domain.LeadStages {
		idx[st] = i
		stats.Stages[i] = StageCount{Stage: st, Value: decimal.Zero}
	}

	for _, l := range leads {
		i, ok := idx[l.Stage]
		if !ok {
			continue
		}
		stats.Total++
		stats.Stages[i].Count++
		stats.Stages[i].Value = stats.Stages[i].Value.Add(l.EstimatedBudget)
		switch l.Stage {
		case domain.LeadStageWon:
			stats.Won++
		case domain.LeadStageLost:
			stats.Lost++
		default:
			stats.Open++
			stats.OpenValue = stats.OpenValue.Add(l.EstimatedBudget)
		}
	}

	stats.ConversionRate = ratio(decimal.NewFromInt(int64(stats.Won)), decimal.NewFromInt(int64(stats.Won+stats.Lost)))
	return stats
}
