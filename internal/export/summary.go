package export

import (
	"github.com/joseph-ayodele/rspl-generator/constants"
	"github.com/joseph-ayodele/rspl-generator/internal/entity"
)

// Summary counts a job's results by kind.
type Summary struct {
	Parts      int `json:"parts"`
	Preventive int `json:"preventive"`
	Corrective int `json:"corrective"`
	Consumable int `json:"consumable"`
}

func Summarize(job *entity.Job) Summary {
	var s Summary
	if job == nil {
		return s
	}
	for _, r := range job.Results {
		s.Parts++
		switch r.Classification {
		case constants.Preventive:
			s.Preventive++
		case constants.Corrective:
			s.Corrective++
		case constants.Consumable:
			s.Consumable++
		}
	}
	return s
}
