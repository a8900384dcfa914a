package domain

// GenderDistribution counts students by gender
type GenderDistribution struct {
	M int `json:"M"`
	F int `json:"F"`
}

// StreamStats summarises one stream (class group)
type StreamStats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
}

// SubjectStats holds descriptive statistics for one subject.
// GradeDistribution always carries every label of the grading scale.
type SubjectStats struct {
	Name              string         `json:"name"`
	Mean              float64        `json:"mean"`
	PassRate          float64        `json:"passRate"`
	Min               float64        `json:"min"`
	Max               float64        `json:"max"`
	GradeDistribution map[string]int `json:"gradeDistribution"`
}

// AnalyticsResult is the full report produced for one batch
type AnalyticsResult struct {
	TotalStudents        int                    `json:"totalStudents"`
	GenderDistribution   GenderDistribution     `json:"genderDistribution"`
	StreamStats          map[string]StreamStats `json:"streamStats"`
	SubjectStats         []SubjectStats         `json:"subjectStats"`
	// Top10 and Bottom10 hold the first and last N ranked students, where N
	// is the analytics top_n setting (default 10)
	Top10                []ProcessedStudent     `json:"top10"`
	Bottom10             []ProcessedStudent     `json:"bottom10"`
	StudentsFailing2Plus []ProcessedStudent     `json:"studentsFailing2Plus"`
	OverallMean          float64                `json:"overallMean"`
	ProcessedData        []ProcessedStudent     `json:"processedData"`

	// Subjects is the ordered subject list the batch was graded against
	Subjects []string `json:"subjects"`
	// Columns is the source field order, when known
	Columns []string `json:"columns,omitempty"`
}

// Student returns the processed student with the given ID
func (r *AnalyticsResult) Student(id string) (ProcessedStudent, bool) {
	for _, s := range r.ProcessedData {
		if s.StudentID == id {
			return s, true
		}
	}
	return ProcessedStudent{}, false
}

// Subject returns the stats for the named subject
func (r *AnalyticsResult) Subject(name string) (SubjectStats, bool) {
	for _, s := range r.SubjectStats {
		if s.Name == name {
			return s, true
		}
	}
	return SubjectStats{}, false
}
