package dataprocessing

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"classpulse/pkg/contracts/domain"
)

// Normalizer validates raw records against a subject list and produces
// StudentRecords. It never modifies its input.
type Normalizer struct {
	subjects []string
	validate *validator.Validate
}

// NewNormalizer creates a normalizer for the given subjects
func NewNormalizer(subjects []string) *Normalizer {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Normalizer{
		subjects: append([]string(nil), subjects...),
		validate: v,
	}
}

// fieldKey folds a header so "Integrated Science", "integrated_science" and
// "IntegratedScience" compare equal.
func fieldKey(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch r {
		case ' ', '_', '-', '\t':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// lookup resolves a field by exact name first, then by folded name
type lookup struct {
	raw    domain.RawRecord
	folded map[string]string
	used   map[string]bool
}

func newLookup(raw domain.RawRecord) *lookup {
	l := &lookup{
		raw:    raw,
		folded: make(map[string]string, len(raw)),
		used:   make(map[string]bool, len(raw)),
	}
	for _, k := range slices.Sorted(maps.Keys(raw)) {
		fk := fieldKey(k)
		// headers folding together resolve to one already in folded form,
		// else to the first in sorted order
		if _, exists := l.folded[fk]; !exists || k == fk {
			l.folded[fk] = k
		}
	}
	return l
}

func (l *lookup) get(name string) (any, bool) {
	if v, ok := l.raw[name]; ok {
		l.used[name] = true
		return v, true
	}
	if k, ok := l.folded[fieldKey(name)]; ok {
		l.used[k] = true
		return l.raw[k], true
	}
	return nil, false
}

func (l *lookup) text(name string) string {
	v, ok := l.get(name)
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(stringify(v))
}

// Normalize converts one raw record. row is the 1-based position used in
// error reports.
func (n *Normalizer) Normalize(row int, raw domain.RawRecord) (domain.StudentRecord, error) {
	l := newLookup(raw)

	rec := domain.StudentRecord{
		StudentID: l.text(domain.FieldStudentID),
		Name:      l.text(domain.FieldName),
		Gender:    normalizeGender(l.text(domain.FieldGender)),
		Stream:    l.text(domain.FieldStream),
		Scores:    make(map[string]float64, len(n.subjects)),
	}

	for _, subject := range n.subjects {
		v, ok := l.get(subject)
		if !ok {
			return domain.StudentRecord{}, &MalformedRecordError{
				Row: row, StudentID: rec.StudentID, Field: subject, Reason: "missing subject score",
			}
		}
		score, err := coerceScore(v)
		if err != nil {
			return domain.StudentRecord{}, &MalformedRecordError{
				Row: row, StudentID: rec.StudentID, Field: subject, Reason: err.Error(),
			}
		}
		rec.Scores[subject] = score
	}

	if err := n.validate.Struct(rec); err != nil {
		return domain.StudentRecord{}, n.identityError(row, rec.StudentID, err)
	}

	for k, v := range raw {
		if l.used[k] {
			continue
		}
		if rec.Extra == nil {
			rec.Extra = make(map[string]string)
		}
		rec.Extra[k] = stringify(v)
	}

	return rec, nil
}

// Check verifies that an already structured record carries every subject
// with a finite score and valid identity fields.
func (n *Normalizer) Check(row int, rec domain.StudentRecord) error {
	for _, subject := range n.subjects {
		v, ok := rec.Scores[subject]
		if !ok {
			return &MalformedRecordError{Row: row, StudentID: rec.StudentID, Field: subject, Reason: "missing subject score"}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &MalformedRecordError{Row: row, StudentID: rec.StudentID, Field: subject, Reason: "score is not a finite number"}
		}
	}
	if err := n.validate.Struct(rec); err != nil {
		return n.identityError(row, rec.StudentID, err)
	}
	return nil
}

func (n *Normalizer) identityError(row int, id string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &MalformedRecordError{Row: row, StudentID: id, Field: "record", Reason: err.Error()}
	}

	fe := verrs[0]
	reason := fmt.Sprintf("failed %s validation", fe.Tag())
	switch fe.Tag() {
	case "required":
		reason = "is required"
	case "oneof":
		reason = fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fmt.Sprint(fe.Value()))
	}
	return &MalformedRecordError{Row: row, StudentID: id, Field: fe.Field(), Reason: reason}
}

func normalizeGender(g string) string {
	switch strings.ToUpper(strings.TrimSpace(g)) {
	case "M", "MALE":
		return domain.GenderMale
	case "F", "FEMALE":
		return domain.GenderFemale
	default:
		return strings.TrimSpace(g)
	}
}

func coerceScore(v any) (float64, error) {
	var f float64

	switch x := v.(type) {
	case nil:
		return 0, errors.New("score is empty")
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, errors.New("score is empty")
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("score %q is not numeric", x)
		}
		f = parsed
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("score %q is not numeric", x.String())
		}
		f = parsed
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int8:
		f = float64(x)
	case int16:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint8:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	default:
		return 0, fmt.Errorf("score of type %T is not numeric", v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("score is not a finite number")
	}
	return f, nil
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case json.Number:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}
