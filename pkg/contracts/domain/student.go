package domain

import (
	"encoding/json"
	"fmt"
)

// RawRecord is one row from an upstream source keyed by field name.
// Values are strings when read from files and numbers when decoded from JSON.
type RawRecord map[string]any

// Gender values accepted on a StudentRecord
const (
	GenderMale   = "M"
	GenderFemale = "F"
)

// Identity field names recognised in raw records
const (
	FieldStudentID = "StudentID"
	FieldName      = "Name"
	FieldGender    = "Gender"
	FieldStream    = "Stream"
)

// StudentRecord is a validated, normalized input row
type StudentRecord struct {
	StudentID string             `json:"StudentID" validate:"required"`
	Name      string             `json:"Name" validate:"required"`
	Gender    string             `json:"Gender" validate:"required,oneof=M F"`
	Stream    string             `json:"Stream"`
	Scores    map[string]float64 `json:"scores"`
	Extra     map[string]string  `json:"extra,omitempty"`
}

// Score returns the score for subject and whether it is present
func (r StudentRecord) Score(subject string) (float64, bool) {
	v, ok := r.Scores[subject]
	return v, ok
}

// ProcessedStudent is a StudentRecord enriched with derived fields.
// Values are created once per processing call and not mutated afterwards.
// In JSON every subject score and extra column is a top-level key next to
// the identity and derived fields, e.g. {"StudentID":"S1","English":80,...}.
type ProcessedStudent struct {
	StudentRecord
	Average        float64 `json:"Average"`
	TotalMarks     float64 `json:"TotalMarks"`
	TotalPoints    int     `json:"TotalPoints"`
	FailedSubjects int     `json:"FailedSubjects"`
	OverallGrade   string  `json:"OverallGrade"`
	Position       int     `json:"Position"`
}

// Field names of the derived values on a ProcessedStudent
const (
	FieldAverage        = "Average"
	FieldTotalMarks     = "TotalMarks"
	FieldTotalPoints    = "TotalPoints"
	FieldFailedSubjects = "FailedSubjects"
	FieldOverallGrade   = "OverallGrade"
	FieldPosition       = "Position"
)

// MarshalJSON flattens scores and extra columns into the student object.
// Identity and derived fields win over an extra column of the same name.
func (s ProcessedStudent) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Scores)+len(s.Extra)+10)
	for k, v := range s.Extra {
		out[k] = v
	}
	for k, v := range s.Scores {
		out[k] = v
	}
	out[FieldStudentID] = s.StudentID
	out[FieldName] = s.Name
	out[FieldGender] = s.Gender
	out[FieldStream] = s.Stream
	out[FieldAverage] = s.Average
	out[FieldTotalMarks] = s.TotalMarks
	out[FieldTotalPoints] = s.TotalPoints
	out[FieldFailedSubjects] = s.FailedSubjects
	out[FieldOverallGrade] = s.OverallGrade
	out[FieldPosition] = s.Position
	return json.Marshal(out)
}

// UnmarshalJSON reads the flat shape written by MarshalJSON. Unknown numeric
// keys become scores and unknown string keys become extra columns.
func (s *ProcessedStudent) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	known := map[string]any{
		FieldStudentID:      &s.StudentID,
		FieldName:           &s.Name,
		FieldGender:         &s.Gender,
		FieldStream:         &s.Stream,
		FieldAverage:        &s.Average,
		FieldTotalMarks:     &s.TotalMarks,
		FieldTotalPoints:    &s.TotalPoints,
		FieldFailedSubjects: &s.FailedSubjects,
		FieldOverallGrade:   &s.OverallGrade,
		FieldPosition:       &s.Position,
	}

	s.Scores = make(map[string]float64)
	s.Extra = nil
	for k, raw := range fields {
		if dst, ok := known[k]; ok {
			if err := json.Unmarshal(raw, dst); err != nil {
				return fmt.Errorf("field %s: %w", k, err)
			}
			continue
		}

		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("field %s: %w", k, err)
		}
		switch v := v.(type) {
		case float64:
			s.Scores[k] = v
		case string:
			if s.Extra == nil {
				s.Extra = make(map[string]string)
			}
			s.Extra[k] = v
		case nil:
		default:
			return fmt.Errorf("field %s: unsupported value %s", k, raw)
		}
	}
	return nil
}

// DefaultSubjects returns the nine Junior School subjects in report order
func DefaultSubjects() []string {
	return []string{
		"English",
		"Kiswahili",
		"Mathematics",
		"IntegratedScience",
		"SocialStudies",
		"ReligiousEducation",
		"CreativeArtsAndSports",
		"PreTechnicalStudies",
		"AgricultureAndNutrition",
	}
}
