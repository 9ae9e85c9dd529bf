package notice

import (
	"math"
	"strings"

	"sitterboard/internal/common"
)

const defaultDuration = "TBD"

func (f Fields) normalized() Fields {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.Date = strings.TrimSpace(f.Date)
	f.Time = strings.TrimSpace(f.Time)
	f.Address = strings.TrimSpace(f.Address)
	f.Location = strings.TrimSpace(f.Location)
	f.Duration = strings.TrimSpace(f.Duration)
	f.AgeGroup = strings.TrimSpace(f.AgeGroup)
	if f.Duration == "" {
		f.Duration = defaultDuration
	}
	return f
}

// Validate checks presence and shape of the descriptive payload and reports
// every offending field at once.
func (f Fields) Validate() error {
	f = f.normalized()
	fields := map[string]string{}
	required := map[string]string{
		"title":       f.Title,
		"description": f.Description,
		"date":        f.Date,
		"time":        f.Time,
		"address":     f.Address,
		"location":    f.Location,
		"ageGroup":    f.AgeGroup,
	}
	for name, value := range required {
		if value == "" {
			fields[name] = name + " is required"
		}
	}
	if math.IsNaN(f.PayRate) || math.IsInf(f.PayRate, 0) || f.PayRate <= 0 {
		fields["payRate"] = "payRate must be a positive number"
	}
	if len(fields) > 0 {
		return common.NewValidationError("invalid notice", fields)
	}
	return nil
}
