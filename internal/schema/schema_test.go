package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eursukkul/group-events/internal/apperror"
	"github.com/Eursukkul/group-events/internal/models"
)

func hikingValues() map[string]string {
	return map[string]string{
		"title":                 "Zugspitze",
		"participants_min":      "4",
		"surplus":               "2",
		"registration_deadline": "2026-06-01T18:00:00Z",
		"start_date":            "2026-06-05T06:00:00+02:00",
		"duration":              "10h",
		"base_cost":             "25",
		"difficulty":            "hard",
		"altitude_difference":   "1200",
		"cost_guide":            "40",
	}
}

func TestLookup(t *testing.T) {
	s, err := Lookup("mountain_hiking")
	require.NoError(t, err)
	assert.Equal(t, KindMountainHiking, s.Kind())

	_, err = Lookup("chess")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestKinds_Sorted(t *testing.T) {
	assert.Equal(t, []Kind{KindCinema, KindMountainHiking, KindSoccerGame}, Kinds())
}

func TestFields_IncludeCommonAndCostFields(t *testing.T) {
	fields := Cinema{}.Fields()

	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	assert.Contains(t, names, "title")
	assert.Contains(t, names, "film")
	assert.Contains(t, names, "cost_popcorn")
	assert.Contains(t, names, "cost_drink")
}

func TestFill_Hiking(t *testing.T) {
	d, err := Fill(MountainHiking{}, hikingValues())
	require.NoError(t, err)

	assert.Equal(t, KindMountainHiking, d.Kind)
	assert.Equal(t, "Zugspitze", d.Title)
	assert.Equal(t, 4, d.ParticipantsMin)
	assert.Equal(t, 2, d.Surplus)
	assert.Equal(t, time.Date(2026, 6, 5, 4, 0, 0, 0, time.UTC), d.StartDate)
	require.NotNil(t, d.Duration)
	assert.Equal(t, 10*time.Hour, *d.Duration)
	assert.Nil(t, d.EndDate)
	assert.Nil(t, d.DeregistrationDeadline)
	assert.InDelta(t, 25, d.BaseCost, 1e-9)
	assert.Equal(t, map[string]float64{"guide": 40}, d.OptionalCosts)
	assert.Equal(t, map[string]string{"difficulty": "hard", "altitude_difference": "1200"}, d.Attributes)
}

func TestFill_Errors(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(v map[string]string)
		field string
	}{
		{name: "missing mandatory", edit: func(v map[string]string) { delete(v, "title") }, field: "title"},
		{name: "blank mandatory", edit: func(v map[string]string) { v["difficulty"] = "  " }, field: "difficulty"},
		{name: "unknown field", edit: func(v map[string]string) { v["allowed_sex"] = "any" }, field: "allowed_sex"},
		{name: "cost for another type", edit: func(v map[string]string) { v["cost_popcorn"] = "3" }, field: "cost_popcorn"},
		{name: "enum outside options", edit: func(v map[string]string) { v["difficulty"] = "extreme" }, field: "difficulty"},
		{name: "bad integer", edit: func(v map[string]string) { v["participants_min"] = "four" }, field: "participants_min"},
		{name: "negative integer", edit: func(v map[string]string) { v["surplus"] = "-1" }, field: "surplus"},
		{name: "bad time", edit: func(v map[string]string) { v["start_date"] = "tomorrow" }, field: "start_date"},
		{name: "bad duration", edit: func(v map[string]string) { v["duration"] = "long" }, field: "duration"},
		{name: "bad amount", edit: func(v map[string]string) { v["cost_guide"] = "free" }, field: "cost_guide"},
		{name: "negative duration", edit: func(v map[string]string) { v["duration"] = "-48h" }, field: "duration"},
		{name: "NaN base cost", edit: func(v map[string]string) { v["base_cost"] = "NaN" }, field: "base_cost"},
		{name: "infinite base cost", edit: func(v map[string]string) { v["base_cost"] = "Inf" }, field: "base_cost"},
		{name: "infinite optional cost", edit: func(v map[string]string) { v["cost_lunch"] = "+Inf" }, field: "cost_lunch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := hikingValues()
			tt.edit(v)

			_, err := Fill(MountainHiking{}, v)

			assert.ErrorIs(t, err, apperror.ErrInvalidInput)
			var ae *apperror.Error
			if assert.ErrorAs(t, err, &ae) {
				assert.Equal(t, tt.field, ae.Metadata["field"])
			}
		})
	}
}

func TestFill_NegativeAmountIsLeftToLegality(t *testing.T) {
	v := hikingValues()
	v["base_cost"] = "-5"

	d, err := Fill(MountainHiking{}, v)

	require.NoError(t, err)
	assert.InDelta(t, -5, d.BaseCost, 1e-9)
}

func eventWith(attrs map[string]any) *models.Event {
	return &models.Event{Attributes: attrs}
}

func profile(sex models.Sex, birth string) models.Profile {
	b, _ := time.Parse("2006-01-02", birth)
	return models.Profile{UserID: "u1", Sex: sex, BirthDate: b}
}

func TestEligible(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		schema Schema
		attrs  map[string]any
		p      models.Profile
		want   bool
	}{
		{"soccer any sex", SoccerGame{}, map[string]any{"allowed_sex": "any"}, profile(models.SexMale, "1990-01-01"), true},
		{"soccer wrong sex", SoccerGame{}, map[string]any{"allowed_sex": "female"}, profile(models.SexMale, "1990-01-01"), false},
		{"soccer right sex", SoccerGame{}, map[string]any{"allowed_sex": "female"}, profile(models.SexFemale, "1990-01-01"), true},
		{"soccer too old", SoccerGame{}, map[string]any{"allowed_sex": "any", "max_age": "35"}, profile(models.SexMale, "1980-01-01"), false},
		{"soccer birthday tomorrow", SoccerGame{}, map[string]any{"allowed_sex": "any", "min_age": "18"}, profile(models.SexMale, "2008-06-02"), false},
		{"soccer birthday today", SoccerGame{}, map[string]any{"allowed_sex": "any", "min_age": "18"}, profile(models.SexMale, "2008-06-01"), true},
		{"hard hike minor", MountainHiking{}, map[string]any{"difficulty": "hard"}, profile(models.SexFemale, "2012-03-03"), false},
		{"easy hike minor", MountainHiking{}, map[string]any{"difficulty": "easy"}, profile(models.SexFemale, "2012-03-03"), true},
		{"hard hike adult", MountainHiking{}, map[string]any{"difficulty": "hard"}, profile(models.SexFemale, "1999-03-03"), true},
		{"cinema rated", Cinema{}, map[string]any{"film": "Alien", "min_age": "16"}, profile(models.SexOther, "2014-01-01"), false},
		{"cinema unrated", Cinema{}, map[string]any{"film": "Up"}, profile(models.SexOther, "2020-01-01"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.schema.Eligible(eventWith(tt.attrs), tt.p, now))
		})
	}
}
