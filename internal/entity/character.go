package entity

import "time"

// CharacterStatus is the life status reported by the catalog.
type CharacterStatus string

const (
	StatusAlive   CharacterStatus = "Alive"
	StatusDead    CharacterStatus = "Dead"
	StatusUnknown CharacterStatus = "unknown"
)

// CharacterStatuses lists statuses in the order the search form offers them.
var CharacterStatuses = []CharacterStatus{StatusAlive, StatusDead, StatusUnknown}

func (s CharacterStatus) Valid() bool {
	for _, v := range CharacterStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// CharacterGender is the gender reported by the catalog.
type CharacterGender string

const (
	GenderFemale     CharacterGender = "Female"
	GenderMale       CharacterGender = "Male"
	GenderGenderless CharacterGender = "Genderless"
	GenderUnknown    CharacterGender = "unknown"
)

// CharacterGenders lists genders in the order the search form offers them.
var CharacterGenders = []CharacterGender{GenderFemale, GenderMale, GenderGenderless, GenderUnknown}

func (g CharacterGender) Valid() bool {
	for _, v := range CharacterGenders {
		if v == g {
			return true
		}
	}
	return false
}

// Location is a name plus the catalog URL of the place it refers to.
type Location struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Character mirrors the catalog's character resource.
type Character struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Status   CharacterStatus `json:"status"`
	Species  string          `json:"species"`
	Type     string          `json:"type"` // empty for most characters
	Gender   CharacterGender `json:"gender"`
	Origin   Location        `json:"origin"`
	Location Location        `json:"location"`
	Image    string          `json:"image"`
	Episode  []string        `json:"episode"`
	URL      string          `json:"url"`
	Created  time.Time       `json:"created"`
}
