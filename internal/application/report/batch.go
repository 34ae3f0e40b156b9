package report

import (
	"context"
	"time"

	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/errors"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/types/common"
)

// BatchInput is one report in a batch submission.
type BatchInput struct {
	Text     string `json:"text"`
	Filename string `json:"filename,omitempty"`
}

// BatchItemResult is the per-report outcome. Failed items carry Error and no
// Result.
type BatchItemResult struct {
	Index  int                 `json:"index"`
	Result *ProcessResult      `json:"result,omitempty"`
	Error  *common.ErrorDetail `json:"error,omitempty"`
}

// BatchReport is the consolidated outcome of one batch run.
type BatchReport struct {
	Items     []BatchItemResult          `json:"items"`
	Total     int                        `json:"total"`
	Succeeded int                        `json:"succeeded"`
	Failed    int                        `json:"failed"`
	ByRisk    map[common.RiskLevel]int   `json:"by_risk"`
	Elapsed   time.Duration              `json:"elapsed"`
}

// ProcessBatch runs the pipeline over several reports concurrently. One bad
// report fails its own slot only.
func (s *Service) ProcessBatch(ctx context.Context, inputs []BatchInput) (*BatchReport, error) {
	if len(inputs) == 0 {
		return nil, errors.New(errors.CodeInvalidParam, "report: batch must contain at least one report")
	}

	run := s.batch.Process(ctx, inputs, func(ctx context.Context, in BatchInput) (*ProcessResult, error) {
		return s.Process(ctx, in.Text, in.Filename)
	})

	report := &BatchReport{
		Items:   make([]BatchItemResult, 0, len(run.Results)),
		Total:   len(inputs),
		ByRisk:  make(map[common.RiskLevel]int),
		Elapsed: run.Elapsed,
	}
	for _, item := range run.Results {
		out := BatchItemResult{Index: item.Index}
		if item.Err != nil {
			report.Failed++
			out.Error = &common.ErrorDetail{
				Code:    string(errors.GetCode(item.Err)),
				Message: item.Err.Error(),
			}
		} else {
			report.Succeeded++
			out.Result = item.Result
			if item.Result != nil && item.Result.Record != nil {
				report.ByRisk[item.Result.Record.RiskLevel]++
			}
		}
		report.Items = append(report.Items, out)
	}
	return report, nil
}
