// Package schema describes, per event type, which fields a creator fills
// in, which optional costs exist and who may register. Each type is a
// variant with a static field list and a typed setter; Fill walks that list
// instead of inspecting live objects.
package schema

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Eursukkul/group-events/internal/apperror"
	"github.com/Eursukkul/group-events/internal/models"
)

type Kind string

const (
	KindSoccerGame     Kind = "soccer_game"
	KindMountainHiking Kind = "mountain_hiking"
	KindCinema         Kind = "cinema"
)

type FieldType string

const (
	FieldString   FieldType = "string"
	FieldInt      FieldType = "int"
	FieldAmount   FieldType = "amount"
	FieldTime     FieldType = "time"
	FieldDuration FieldType = "duration"
	FieldEnum     FieldType = "enum"
)

// CostFieldPrefix marks form fields carrying an optional cost amount.
const CostFieldPrefix = "cost_"

// Field describes one form field.
type Field struct {
	Name      string    `json:"name"`
	Type      FieldType `json:"type"`
	Mandatory bool      `json:"mandatory"`
	Options   []string  `json:"options,omitempty"`
}

// Draft collects parsed form values before an event record exists.
type Draft struct {
	Kind                   Kind
	Title                  string
	ParticipantsMin        int
	Surplus                int
	RegistrationDeadline   time.Time
	DeregistrationDeadline *time.Time
	StartDate              time.Time
	EndDate                *time.Time
	Duration               *time.Duration
	BaseCost               float64
	OptionalCosts          map[string]float64
	Attributes             map[string]string
}

// Schema is implemented by every event type variant.
type Schema interface {
	Kind() Kind
	Fields() []Field
	OptionalCostNames() []string
	Eligible(ev *models.Event, p models.Profile, now time.Time) bool
	Set(d *Draft, field, raw string) error
}

var registry = map[Kind]Schema{
	KindSoccerGame:     SoccerGame{},
	KindMountainHiking: MountainHiking{},
	KindCinema:         Cinema{},
}

// Lookup returns the schema registered for kind.
func Lookup(kind string) (Schema, error) {
	s, ok := registry[Kind(kind)]
	if !ok {
		return nil, apperror.WithMetadata(apperror.InvalidInput, "unknown event type", map[string]string{"type": kind})
	}
	return s, nil
}

// Kinds lists the registered event types in name order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Fill builds a draft from raw form values by walking s.Fields(). Unknown
// fields and missing mandatory fields fail with InvalidInput.
func Fill(s Schema, values map[string]string) (*Draft, error) {
	fields := s.Fields()
	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f.Name] = true
	}
	for name := range values {
		if !known[name] {
			return nil, invalidField(name, "unknown field")
		}
	}

	d := &Draft{
		Kind:          s.Kind(),
		OptionalCosts: map[string]float64{},
		Attributes:    map[string]string{},
	}
	for _, f := range fields {
		raw := strings.TrimSpace(values[f.Name])
		if raw == "" {
			if f.Mandatory {
				return nil, invalidField(f.Name, "field is required")
			}
			continue
		}
		if f.Type == FieldEnum && !contains(f.Options, raw) {
			return nil, invalidField(f.Name, "value must be one of "+strings.Join(f.Options, ", "))
		}
		if err := s.Set(d, f.Name, raw); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// commonFields are shared by every event type.
var commonFields = []Field{
	{Name: "title", Type: FieldString, Mandatory: true},
	{Name: "participants_min", Type: FieldInt, Mandatory: true},
	{Name: "surplus", Type: FieldInt},
	{Name: "registration_deadline", Type: FieldTime, Mandatory: true},
	{Name: "deregistration_deadline", Type: FieldTime},
	{Name: "start_date", Type: FieldTime, Mandatory: true},
	{Name: "end_date", Type: FieldTime},
	{Name: "duration", Type: FieldDuration},
	{Name: "base_cost", Type: FieldAmount, Mandatory: true},
}

func fieldsFor(specific []Field, costNames []string) []Field {
	out := make([]Field, 0, len(commonFields)+len(specific)+len(costNames))
	out = append(out, commonFields...)
	out = append(out, specific...)
	for _, name := range costNames {
		out = append(out, Field{Name: CostFieldPrefix + name, Type: FieldAmount})
	}
	return out
}

// setCommon handles the shared and cost fields. It reports false when the
// field belongs to the variant.
func setCommon(d *Draft, costNames []string, field, raw string) (bool, error) {
	var err error
	switch field {
	case "title":
		d.Title = raw
	case "participants_min":
		d.ParticipantsMin, err = parseInt(field, raw)
	case "surplus":
		d.Surplus, err = parseInt(field, raw)
	case "registration_deadline":
		d.RegistrationDeadline, err = parseTime(field, raw)
	case "deregistration_deadline":
		var t time.Time
		if t, err = parseTime(field, raw); err == nil {
			d.DeregistrationDeadline = &t
		}
	case "start_date":
		d.StartDate, err = parseTime(field, raw)
	case "end_date":
		var t time.Time
		if t, err = parseTime(field, raw); err == nil {
			d.EndDate = &t
		}
	case "duration":
		var dur time.Duration
		if dur, err = time.ParseDuration(raw); err != nil {
			err = invalidField(field, "expected a duration such as 90m")
		} else if dur < 0 {
			err = invalidField(field, "must not be negative")
		} else {
			d.Duration = &dur
		}
	case "base_cost":
		d.BaseCost, err = parseAmount(field, raw)
	default:
		name, ok := strings.CutPrefix(field, CostFieldPrefix)
		if !ok || !contains(costNames, name) {
			return false, nil
		}
		var amount float64
		if amount, err = parseAmount(field, raw); err == nil {
			d.OptionalCosts[name] = amount
		}
	}
	return true, err
}

func parseInt(field, raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidField(field, "expected an integer")
	}
	if n < 0 {
		return 0, invalidField(field, "must not be negative")
	}
	return n, nil
}

func parseAmount(field, raw string) (float64, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, invalidField(field, "expected an amount")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, invalidField(field, "must be a finite amount")
	}
	return f, nil
}

func parseTime(field, raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, invalidField(field, "expected an RFC 3339 timestamp")
	}
	return t.UTC(), nil
}

func invalidField(field, msg string) error {
	return apperror.WithMetadata(apperror.InvalidInput, field+": "+msg, map[string]string{"field": field})
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// attrInt reads an integer attribute stored on the event; absent or
// malformed values report ok == false.
func attrInt(ev *models.Event, name string) (int, bool) {
	s, ok := ev.Attribute(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}
