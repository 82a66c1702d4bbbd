package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/campusmatch/internal/client/apperr"
	"github.com/dmitrijs2005/campusmatch/internal/client/models"
	"github.com/dmitrijs2005/campusmatch/internal/client/registration"
	"github.com/dmitrijs2005/campusmatch/internal/client/routegate"
	"github.com/dmitrijs2005/campusmatch/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and opens a session. On success the user
// lands on the matches view. The password is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	a.navigate(routegate.PathLogin)

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	identity, err := a.auth.Login(ctx, email, password)
	if err != nil {
		a.println("Login failed:", apperr.UserMessage(err))
		return err
	}

	a.println("Login successful. Welcome, " + nameOrEmail(identity) + "!")
	a.navigate(routegate.PathMatches)
	return nil
}

// Logout leaves any protected view and ends the session.
func (a *App) Logout(ctx context.Context) error {
	a.navigate(routegate.PathHome)
	a.auth.Logout(ctx)
	a.println("Logged out")
	return nil
}

// Register walks through both registration phases. Phase 1 failures end the
// command (run it again to retry); phase 2 failures offer a retry that keeps
// the entered profile.
func (a *App) Register(ctx context.Context) error {
	a.navigate(routegate.PathRegister)
	flow := a.auth.NewRegistration()

	if err := a.registerAccount(ctx, flow); err != nil {
		return err
	}

	fields, err := a.readProfile(flow.Profile())
	if err != nil {
		return err
	}

	for {
		err := flow.SubmitProfile(ctx, fields)
		if err == nil {
			break
		}
		a.println("Registration failed:", apperr.UserMessage(err))
		if flow.State() != registration.StateCollectingProfile {
			return err
		}
		again, rerr := getSimpleText(a.reader, "Retry? (y/n)", a.out)
		if rerr != nil {
			return rerr
		}
		if !strings.EqualFold(again, "y") {
			return err
		}
	}

	a.println("Registration complete. Welcome, " + nameOrEmail(flow.Identity()) + "!")
	a.navigate(routegate.PathMatches)
	return nil
}

func (a *App) registerAccount(ctx context.Context, flow *registration.Flow) error {
	email, err := getSimpleText(a.reader, "Enter university email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	confirm, err := getPassword("Confirm password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if err := flow.SubmitAccount(ctx, email, string(password), string(confirm)); err != nil {
		a.println("Registration failed:", apperr.UserMessage(err))
		return err
	}
	a.println("Account created. Now tell us about yourself.")
	return nil
}

// readProfile collects the phase 2 fields, offering draft values as defaults.
func (a *App) readProfile(draft models.ProfileFields) (models.ProfileFields, error) {
	f := draft.Clone()
	var err error

	if f.Name, err = GetWithDefault(a.reader, "Full name", f.Name, a.out); err != nil {
		return f, err
	}
	if f.School, err = GetWithDefault(a.reader, "School", f.School, a.out); err != nil {
		return f, err
	}
	if f.Year, err = GetWithDefault(a.reader, "Year (Freshman, Sophomore, Junior, Senior, Graduate)", f.Year, a.out); err != nil {
		return f, err
	}
	interests, err := getSimpleText(a.reader, "Interests (comma separated)", a.out)
	if err != nil {
		return f, err
	}
	f.Interests = models.ParseInterests(interests)

	if f.HeightCM, err = a.readOptionalInt("Height in cm (optional)"); err != nil {
		return f, err
	}
	if f.WeightKG, err = a.readOptionalInt("Weight in kg (optional)"); err != nil {
		return f, err
	}
	nationality, err := getSimpleText(a.reader, "Nationality (optional)", a.out)
	if err != nil {
		return f, err
	}
	f.Nationality = optionalString(nationality)
	ethnicity, err := getSimpleText(a.reader, "Ethnicity (optional)", a.out)
	if err != nil {
		return f, err
	}
	f.Ethnicity = optionalString(ethnicity)
	return f, nil
}

// readOptionalInt re-prompts until the answer is blank or a positive number.
func (a *App) readOptionalInt(prompt string) (*int, error) {
	for {
		s, err := getSimpleText(a.reader, prompt, a.out)
		if err != nil {
			return nil, err
		}
		n, perr := parseOptionalInt(s)
		if perr == nil {
			return n, nil
		}
		a.println(perr.Error())
	}
}

// Verify confirms an email verification token given as an argument or
// read from the prompt.
func (a *App) Verify(ctx context.Context, token string) error {
	a.navigate(routegate.PathVerifyEmail)

	if token == "" {
		var err error
		if token, err = getSimpleText(a.reader, "Enter verification token", a.out); err != nil {
			return err
		}
	}

	msg, err := a.auth.VerifyEmail(ctx, token)
	if err != nil {
		a.println("Verification failed:", apperr.UserMessage(err))
		return err
	}
	a.println(msg)
	return nil
}

func nameOrEmail(identity *models.Identity) string {
	if identity == nil {
		return ""
	}
	if identity.Name != "" {
		return identity.Name
	}
	return identity.Email
}
