// Package models defines the wire shapes exchanged with the campus backend.
package models

import (
	"slices"
	"time"
)

// Identity is the authenticated user's profile snapshot as returned by
// GET/PUT /api/users/me.
type Identity struct {
	ID               int64     `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	School           string    `json:"school"`
	Year             string    `json:"year"`
	Interests        []string  `json:"interests"`
	HeightCM         *int      `json:"height_cm"`
	WeightKG         *int      `json:"weight_kg"`
	Nationality      *string   `json:"nationality"`
	Ethnicity        *string   `json:"ethnicity"`
	Photos           []string  `json:"photos"`
	AvatarURL        *string   `json:"avatar_url"`
	ProfileCompleted bool      `json:"profile_completed"`
	IsVerified       bool      `json:"is_verified"`
	CreatedAt        time.Time `json:"created_at"`
}

// Clone returns a deep copy so callers can never mutate a cached identity.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	c.Interests = slices.Clone(i.Interests)
	c.Photos = slices.Clone(i.Photos)
	c.HeightCM = clonePtr(i.HeightCM)
	c.WeightKG = clonePtr(i.WeightKG)
	c.Nationality = clonePtr(i.Nationality)
	c.Ethnicity = clonePtr(i.Ethnicity)
	c.AvatarURL = clonePtr(i.AvatarURL)
	return &c
}

// Resolved reports whether i names a user. A 2xx body missing both id and
// email decodes to an Identity that does not.
func (i *Identity) Resolved() bool {
	return i != nil && (i.ID != 0 || i.Email != "")
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
