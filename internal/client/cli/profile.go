package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/campusmatch/internal/client/apperr"
	"github.com/dmitrijs2005/campusmatch/internal/client/models"
	"github.com/dmitrijs2005/campusmatch/internal/client/routegate"
)

const (
	msgProfileUpdated = "Profile updated successfully!"
	msgUpdateFailed   = "Failed to update profile"
)

// Profile shows the current identity, refreshed from the server.
func (a *App) Profile(ctx context.Context) error {
	if !a.navigate(routegate.PathProfile) {
		return errNotRendered
	}

	identity, err := a.profile.Current(ctx)
	if err != nil {
		a.println("Could not load profile:", apperr.UserMessage(err))
		return err
	}
	a.printIdentity(identity)
	return nil
}

// EditProfile prompts for changes; blank answers keep the current value.
func (a *App) EditProfile(ctx context.Context) error {
	if !a.navigate(routegate.PathProfile) {
		return errNotRendered
	}
	current := a.sessions.Snapshot().Identity
	if current == nil {
		return errNotRendered
	}

	var upd models.ProfileUpdate
	prompts := []struct {
		label string
		cur   string
		dst   **string
	}{
		{"Name", current.Name, &upd.Name},
		{"School", current.School, &upd.School},
		{"Year", current.Year, &upd.Year},
		{"Avatar URL", deref(current.AvatarURL), &upd.AvatarURL},
	}
	for _, p := range prompts {
		v, err := GetWithDefault(a.reader, p.label, p.cur, a.out)
		if err != nil {
			return err
		}
		if v != p.cur {
			*p.dst = &v
		}
	}

	interests, err := GetWithDefault(a.reader, "Interests (comma separated)", strings.Join(current.Interests, ", "), a.out)
	if err != nil {
		return err
	}
	if parsed := models.ParseInterests(interests); !slices.Equal(parsed, current.Interests) {
		upd.Interests = parsed
	}

	identity, err := a.profile.Update(ctx, upd)
	if err != nil {
		msg := apperr.UserMessage(err)
		if apperr.KindOf(err) == apperr.KindUnknown {
			msg = msgUpdateFailed
		}
		a.println(msg)
		return err
	}
	a.println(msgProfileUpdated)
	a.printIdentity(identity)
	return nil
}

// Go opens an arbitrary view through the route gate.
func (a *App) Go(_ context.Context, path string) error {
	if path == "" {
		a.println("Usage: go <path>")
		return nil
	}
	if a.navigate(path) {
		a.println("Now at", a.currentLocation())
	}
	return nil
}

// Status prints the session status, server reachability and current view.
func (a *App) Status(_ context.Context) error {
	snap := a.sessions.Snapshot()
	a.println("Session:", snap.Status)
	if snap.Authenticated() {
		a.println("Signed in as:", snap.Identity.Email)
	}
	mode := a.currentMode()
	if mode == "" {
		mode = "unknown"
	}
	a.println("Server:", mode)
	a.println("View:", a.currentLocation())
	return nil
}

func (a *App) printIdentity(i *models.Identity) {
	a.println("Email:     ", i.Email)
	a.println("Name:      ", i.Name)
	a.println("School:    ", i.School)
	a.println("Year:      ", i.Year)
	a.println("Interests: ", strings.Join(i.Interests, ", "))
	if i.HeightCM != nil {
		a.println("Height:    ", fmt.Sprintf("%d cm", *i.HeightCM))
	}
	if i.WeightKG != nil {
		a.println("Weight:    ", fmt.Sprintf("%d kg", *i.WeightKG))
	}
	verified := "no"
	if i.IsVerified {
		verified = "yes"
	}
	a.println("Verified:  ", verified)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
