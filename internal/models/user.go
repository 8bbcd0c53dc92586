package models

import "time"

type Sex string

const (
	SexFemale Sex = "female"
	SexMale   Sex = "male"
	SexOther  Sex = "other"
)

// User is the directory view of an account. Credentials live elsewhere.
type User struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Username  string    `gorm:"not null;uniqueIndex" json:"username"`
	Sex       Sex       `gorm:"type:varchar(10)" json:"sex,omitempty"`
	BirthDate time.Time `json:"birth_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Favorites []FavoriteCategory `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"favorites,omitempty"`
}

type FavoriteCategory struct {
	UserID   string `gorm:"primaryKey;type:varchar(36)" json:"user_id"`
	Category string `gorm:"primaryKey;type:varchar(50);index" json:"category"`
}

// Profile is the subset of a user that eligibility predicates look at.
type Profile struct {
	UserID    string
	Sex       Sex
	BirthDate time.Time
}

// AgeAt returns the completed years between the birth date and t.
func (p Profile) AgeAt(t time.Time) int {
	if p.BirthDate.IsZero() {
		return 0
	}
	years := t.Year() - p.BirthDate.Year()
	if t.Month() < p.BirthDate.Month() || (t.Month() == p.BirthDate.Month() && t.Day() < p.BirthDate.Day()) {
		years--
	}
	return years
}
