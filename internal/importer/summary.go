package importer

import (
	"time"
)

// Status classifies the result of one imported title.
type Status string

const (
	StatusCreated          Status = "created"
	StatusUpdated          Status = "updated"
	StatusSkippedDuplicate Status = "skipped_duplicate"
	StatusFailed           Status = "failed"
)

// Outcome is the per-title result of a run. Failures carry a reason; the
// other statuses do not.
type Outcome struct {
	ExternalID int64
	Status     Status
	Reason     string
}

// Failure pairs a failed external id with its reason for the summary.
type Failure struct {
	ExternalID int64  `json:"externalId"`
	Reason     string `json:"reason"`
}

// Summary aggregates the outcomes of one run. Callers always receive a
// summary, even for a fully failed run; the failure list is the primary
// diagnostic surface. Failure order is not significant.
type Summary struct {
	RunID     string        `json:"runId"`
	Mode      Mode          `json:"mode"`
	Attempted int           `json:"attempted"`
	Created   int           `json:"created"`
	Updated   int           `json:"updated"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Failures  []Failure     `json:"failures"`
	Duration  time.Duration `json:"-"`
	Cancelled bool          `json:"cancelled"`
}

func summarize(runID string, mode Mode, outcomes []Outcome, duration time.Duration, cancelled bool) Summary {
	summary := Summary{
		RunID:     runID,
		Mode:      mode,
		Attempted: len(outcomes),
		Failures:  make([]Failure, 0),
		Duration:  duration,
		Cancelled: cancelled,
	}
	for _, outcome := range outcomes {
		switch outcome.Status {
		case StatusCreated:
			summary.Created++
		case StatusUpdated:
			summary.Updated++
		case StatusSkippedDuplicate:
			summary.Skipped++
		case StatusFailed:
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{ExternalID: outcome.ExternalID, Reason: outcome.Reason})
		}
	}
	return summary
}
