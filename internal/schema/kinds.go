package schema

import (
	"time"

	"github.com/Eursukkul/group-events/internal/models"
)

// SoccerGame restricts registration by sex and age.
type SoccerGame struct{}

var soccerFields = []Field{
	{Name: "allowed_sex", Type: FieldEnum, Mandatory: true, Options: []string{"any", string(models.SexFemale), string(models.SexMale)}},
	{Name: "min_age", Type: FieldInt},
	{Name: "max_age", Type: FieldInt},
}

func (SoccerGame) Kind() Kind { return KindSoccerGame }
func (SoccerGame) OptionalCostNames() []string { return []string{"jersey_rental", "shower"} }

func (s SoccerGame) Fields() []Field {
	return fieldsFor(soccerFields, s.OptionalCostNames())
}

func (s SoccerGame) Set(d *Draft, field, raw string) error {
	if ok, err := setCommon(d, s.OptionalCostNames(), field, raw); ok {
		return err
	}
	switch field {
	case "allowed_sex":
		d.Attributes[field] = raw
	case "min_age", "max_age":
		if _, err := parseInt(field, raw); err != nil {
			return err
		}
		d.Attributes[field] = raw
	default:
		return invalidField(field, "unknown field")
	}
	return nil
}

func (SoccerGame) Eligible(ev *models.Event, p models.Profile, now time.Time) bool {
	if sex, ok := ev.Attribute("allowed_sex"); ok && sex != "any" && sex != string(p.Sex) {
		return false
	}
	return ageWithin(ev, p, now)
}

// MountainHiking requires adults on hard tours.
type MountainHiking struct{}

// hardTourMinAge is the minimum age for difficulty "hard".
const hardTourMinAge = 18

var hikingFields = []Field{
	{Name: "difficulty", Type: FieldEnum, Mandatory: true, Options: []string{"easy", "medium", "hard"}},
	{Name: "altitude_difference", Type: FieldInt},
	{Name: "min_age", Type: FieldInt},
}

func (MountainHiking) Kind() Kind { return KindMountainHiking }
func (MountainHiking) OptionalCostNames() []string { return []string{"transport", "guide", "lunch"} }

func (h MountainHiking) Fields() []Field {
	return fieldsFor(hikingFields, h.OptionalCostNames())
}

func (h MountainHiking) Set(d *Draft, field, raw string) error {
	if ok, err := setCommon(d, h.OptionalCostNames(), field, raw); ok {
		return err
	}
	switch field {
	case "difficulty":
		d.Attributes[field] = raw
	case "altitude_difference", "min_age":
		if _, err := parseInt(field, raw); err != nil {
			return err
		}
		d.Attributes[field] = raw
	default:
		return invalidField(field, "unknown field")
	}
	return nil
}

func (MountainHiking) Eligible(ev *models.Event, p models.Profile, now time.Time) bool {
	if d, _ := ev.Attribute("difficulty"); d == "hard" && p.AgeAt(now) < hardTourMinAge {
		return false
	}
	return ageWithin(ev, p, now)
}

// Cinema only checks the film's age rating.
type Cinema struct{}

var cinemaFields = []Field{
	{Name: "film", Type: FieldString, Mandatory: true},
	{Name: "min_age", Type: FieldInt},
}

func (Cinema) Kind() Kind { return KindCinema }
func (Cinema) OptionalCostNames() []string { return []string{"popcorn", "drink"} }

func (c Cinema) Fields() []Field {
	return fieldsFor(cinemaFields, c.OptionalCostNames())
}

func (c Cinema) Set(d *Draft, field, raw string) error {
	if ok, err := setCommon(d, c.OptionalCostNames(), field, raw); ok {
		return err
	}
	switch field {
	case "film":
		d.Attributes[field] = raw
	case "min_age":
		if _, err := parseInt(field, raw); err != nil {
			return err
		}
		d.Attributes[field] = raw
	default:
		return invalidField(field, "unknown field")
	}
	return nil
}

func (Cinema) Eligible(ev *models.Event, p models.Profile, now time.Time) bool {
	return ageWithin(ev, p, now)
}

func ageWithin(ev *models.Event, p models.Profile, now time.Time) bool {
	age := p.AgeAt(now)
	if lo, ok := attrInt(ev, "min_age"); ok && age < lo {
		return false
	}
	if hi, ok := attrInt(ev, "max_age"); ok && age > hi {
		return false
	}
	return true
}
