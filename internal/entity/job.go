package entity

import (
	"slices"
	"time"

	"github.com/joseph-ayodele/rspl-generator/constants"
)

// Job represents an RSPL generation job for data transfer between layers.
type Job struct {
	ID                 string              `json:"id"`
	Brand              string              `json:"brand"`
	EquipmentType      string              `json:"equipment_type"`
	SourceDocumentName string              `json:"source_document_name,omitempty"`
	Status             constants.JobStatus `json:"status"`
	Progress           int                 `json:"progress"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
	FinishedAt         *time.Time          `json:"finished_at,omitempty"`
	Results            []PartRecord        `json:"results"`
	Error              *string             `json:"error,omitempty"`
}

// Clone returns a deep copy so callers can never mutate stored state.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	out := *j
	out.Results = slices.Clone(j.Results)
	if out.Results == nil {
		out.Results = []PartRecord{}
	}
	if j.FinishedAt != nil {
		t := *j.FinishedAt
		out.FinishedAt = &t
	}
	if j.Error != nil {
		e := *j.Error
		out.Error = &e
	}
	return &out
}
