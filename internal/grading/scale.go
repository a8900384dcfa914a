// Package grading implements banded grading scales that map a numeric score
// to a grade label, points and a descriptive remark.
package grading

import (
	"errors"
	"fmt"

	"classpulse/pkg/contracts/domain"
)

// Grade labels of the KJSEA scale, highest first
const (
	EE1 = "EE1"
	EE2 = "EE2"
	ME1 = "ME1"
	ME2 = "ME2"
	AE1 = "AE1"
	AE2 = "AE2"
	BE1 = "BE1"
	BE2 = "BE2"
)

// DefaultPassMark is the inclusive pass threshold of the KJSEA scale
const DefaultPassMark = 41.0

// Band is one grade band. A score falls in the first band, scanning from
// the highest threshold down, whose Threshold it meets or exceeds.
type Band struct {
	Label     string
	Threshold float64
	Points    int
	Remark    string
}

// Scale is an immutable grading scale. The last band is the catch-all and
// its threshold is ignored.
type Scale struct {
	name     string
	bands    []Band
	passMark float64
	index    map[string]int
}

var (
	// ErrNoBands is returned when a scale is built without bands
	ErrNoBands = errors.New("grading scale requires at least one band")
	// ErrBandOrder is returned when thresholds are not strictly descending
	ErrBandOrder = errors.New("grading bands must have strictly descending thresholds")
	// ErrDuplicateLabel is returned when two bands share a label
	ErrDuplicateLabel = errors.New("grading band labels must be unique")
)

// NewScale validates bands and returns a scale
func NewScale(name string, bands []Band, passMark float64) (*Scale, error) {
	if len(bands) == 0 {
		return nil, ErrNoBands
	}

	index := make(map[string]int, len(bands))
	for i, b := range bands {
		if _, dup := index[b.Label]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateLabel, b.Label)
		}
		index[b.Label] = i
		if i > 0 && i < len(bands)-1 && b.Threshold >= bands[i-1].Threshold {
			return nil, fmt.Errorf("%w: %s (%.0f) after %s (%.0f)",
				ErrBandOrder, b.Label, b.Threshold, bands[i-1].Label, bands[i-1].Threshold)
		}
	}

	cp := make([]Band, len(bands))
	copy(cp, bands)

	return &Scale{name: name, bands: cp, passMark: passMark, index: index}, nil
}

var kjsea = mustScale(NewScale("KJSEA", []Band{
	{Label: EE1, Threshold: 90, Points: 8, Remark: "Exceptional"},
	{Label: EE2, Threshold: 75, Points: 7, Remark: "Very Good"},
	{Label: ME1, Threshold: 58, Points: 6, Remark: "Good"},
	{Label: ME2, Threshold: 41, Points: 5, Remark: "Fair"},
	{Label: AE1, Threshold: 31, Points: 4, Remark: "Needs Improvement"},
	{Label: AE2, Threshold: 21, Points: 3, Remark: "Below Average"},
	{Label: BE1, Threshold: 11, Points: 2, Remark: "Well Below Average"},
	{Label: BE2, Threshold: 0, Points: 1, Remark: "Minimal"},
}, DefaultPassMark))

func mustScale(s *Scale, err error) *Scale {
	if err != nil {
		panic(err)
	}
	return s
}

// KJSEA returns the eight-band Kenya Junior School Education Assessment scale
func KJSEA() *Scale {
	return kjsea
}

// Name returns the scale name
func (s *Scale) Name() string {
	return s.name
}

func (s *Scale) band(score float64) Band {
	last := len(s.bands) - 1
	for _, b := range s.bands[:last] {
		if score >= b.Threshold {
			return b
		}
	}
	return s.bands[last]
}

// Grade returns the label of the band containing score
func (s *Scale) Grade(score float64) string {
	return s.band(score).Label
}

// Points returns the points awarded for score
func (s *Scale) Points(score float64) int {
	return s.band(score).Points
}

// Remark returns the remark for a label, or "" for an unknown label
func (s *Scale) Remark(label string) string {
	i, ok := s.index[label]
	if !ok {
		return ""
	}
	return s.bands[i].Remark
}

// PassMark returns the inclusive pass threshold
func (s *Scale) PassMark() float64 {
	return s.passMark
}

// Passing reports whether score meets the pass mark
func (s *Scale) Passing(score float64) bool {
	return score >= s.passMark
}

// Labels returns every label, highest band first
func (s *Scale) Labels() []string {
	labels := make([]string, len(s.bands))
	for i, b := range s.bands {
		labels[i] = b.Label
	}
	return labels
}

// Key describes the scale for display
func (s *Scale) Key() domain.GradingKey {
	key := domain.GradingKey{
		Name:     s.name,
		PassMark: s.passMark,
		Bands:    make([]domain.GradeBand, len(s.bands)),
	}
	for i, b := range s.bands {
		threshold := b.Threshold
		if i == len(s.bands)-1 {
			threshold = 0
		}
		key.Bands[i] = domain.GradeBand{
			Label:     b.Label,
			Threshold: threshold,
			Points:    b.Points,
			Remark:    b.Remark,
		}
	}
	return key
}
