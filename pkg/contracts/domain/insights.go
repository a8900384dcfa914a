package domain

// GradeBand describes one band of a grading scale
type GradeBand struct {
	Label     string  `json:"label"`
	Threshold float64 `json:"threshold"`
	Points    int     `json:"points"`
	Remark    string  `json:"remark"`
}

// GradingKey is the public description of a grading scale
type GradingKey struct {
	Name     string      `json:"name"`
	PassMark float64     `json:"passMark"`
	Bands    []GradeBand `json:"bands"`
}

// Insights highlights the strongest and weakest subjects of a cohort
type Insights struct {
	WeakestSubject   SubjectStats           `json:"weakestSubject"`
	StrongestSubject SubjectStats           `json:"strongestSubject"`
	OverallMean      float64                `json:"overallMean"`
	PassingStudents  int                    `json:"passingStudents"`
	Remediation      []RemediationCandidate `json:"remediation"`
}

// FailedSubject is a subject scored below the pass mark
type FailedSubject struct {
	Subject string  `json:"subject"`
	Score   float64 `json:"score"`
	Grade   string  `json:"grade"`
}

// RemediationCandidate is a student on the remediation watch-list
type RemediationCandidate struct {
	StudentID string          `json:"StudentID"`
	Name      string          `json:"Name"`
	Stream    string          `json:"Stream"`
	Position  int             `json:"Position"`
	Average   float64         `json:"Average"`
	Failed    []FailedSubject `json:"failed"`
}

// ReportCardLine is one subject row of a report card
type ReportCardLine struct {
	Subject string  `json:"subject"`
	Score   float64 `json:"score"`
	Grade   string  `json:"grade"`
	Points  int     `json:"points"`
	Remark  string  `json:"remark"`
}

// ReportCard is a single student's per-subject breakdown
type ReportCard struct {
	Student      ProcessedStudent `json:"student"`
	Lines        []ReportCardLine `json:"lines"`
	CohortSize   int              `json:"cohortSize"`
	OverallGrade string           `json:"overallGrade"`
	Remark       string           `json:"remark"`
	Key          GradingKey       `json:"gradingKey"`
}
