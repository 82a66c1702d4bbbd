package models

import (
	"slices"
	"strings"
)

// ProfileFields is the phase 2 request body (profile completion).
type ProfileFields struct {
	Name        string   `json:"name"`
	School      string   `json:"school"`
	Year        string   `json:"year"`
	Interests   []string `json:"interests"`
	HeightCM    *int     `json:"height_cm"`
	WeightKG    *int     `json:"weight_kg"`
	Nationality *string  `json:"nationality"`
	Ethnicity   *string  `json:"ethnicity"`
	Photos      []string `json:"photos"`
}

// Clone returns a deep copy of f.
func (f ProfileFields) Clone() ProfileFields {
	c := f
	c.Interests = slices.Clone(f.Interests)
	c.Photos = slices.Clone(f.Photos)
	c.HeightCM = clonePtr(f.HeightCM)
	c.WeightKG = clonePtr(f.WeightKG)
	c.Nationality = clonePtr(f.Nationality)
	c.Ethnicity = clonePtr(f.Ethnicity)
	return c
}

// ProfileUpdate is the PUT /api/users/me body. Nil fields are left unchanged
// by the server.
type ProfileUpdate struct {
	Name        *string  `json:"name,omitempty"`
	School      *string  `json:"school,omitempty"`
	Year        *string  `json:"year,omitempty"`
	Interests   []string `json:"interests,omitempty"`
	AvatarURL   *string  `json:"avatar_url,omitempty"`
	HeightCM    *int     `json:"height_cm,omitempty"`
	WeightKG    *int     `json:"weight_kg,omitempty"`
	Nationality *string  `json:"nationality,omitempty"`
	Ethnicity   *string  `json:"ethnicity,omitempty"`
	Photos      []string `json:"photos,omitempty"`
}

// ParseInterests splits a comma separated list, trimming blanks and
// dropping empty items.
func ParseInterests(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
