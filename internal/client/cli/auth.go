package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/guia-app/guia/internal/client/auth"
	"github.com/guia-app/guia/internal/client/models"
	"github.com/guia-app/guia/internal/client/router"
	"github.com/guia-app/guia/internal/client/validate"
)

// getSimpleText, getPassword and getConfirm are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getConfirm    = GetConfirm
)

// Login opens the sign-in page.
func (a *App) Login(ctx context.Context) error {
	return a.Go(ctx, router.PathLogin)
}

// Register opens the sign-up page.
func (a *App) Register(ctx context.Context) error {
	return a.Go(ctx, router.Build(router.RouteRegister))
}

// Profile shows the signed-in user and offers to edit it.
func (a *App) Profile(ctx context.Context) error {
	return a.Go(ctx, router.Build(router.RouteProfile))
}

func (a *App) login(ctx context.Context) error {
	identifier, err := getSimpleText(a.in, "Email or username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.in, "Password", a.out)
	if err != nil {
		return err
	}

	res := a.auth.Login(ctx, identifier, password)
	if err := a.report(res); err != nil {
		return err
	}
	a.say("Welcome back, %s!", res.User.DisplayName())
	return nil
}

func (a *App) register(ctx context.Context) error {
	var f validate.RegisterForm
	prompts := []struct {
		label string
		dst   *string
	}{
		{"Username", &f.Username},
		{"Email", &f.Email},
		{"First name", &f.FirstName},
		{"Last name", &f.LastName},
	}
	for _, p := range prompts {
		v, err := getSimpleText(a.in, p.label, a.out)
		if err != nil {
			return err
		}
		*p.dst = v
	}

	kind, err := getSimpleText(a.in, "Account type (normal, company)", a.out)
	if err != nil {
		return err
	}
	f.Type = models.AccountType(strings.ToLower(kind))
	if f.Type == models.AccountCompany {
		if f.CompanyName, err = getSimpleText(a.in, "Company name", a.out); err != nil {
			return err
		}
	}

	if f.Password, err = getPassword(a.in, "Password", a.out); err != nil {
		return err
	}
	if f.ConfirmPassword, err = getPassword(a.in, "Confirm password", a.out); err != nil {
		return err
	}

	res := a.auth.Register(ctx, f)
	if err := a.report(res); err != nil {
		return err
	}
	a.say("Account created. Welcome, %s!", res.User.DisplayName())
	return nil
}

// Logout signs out locally even when the server cannot be reached.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		a.say("You are not signed in.")
		return auth.ErrNotAuthenticated
	}
	a.auth.Logout(ctx)
	a.say("Signed out.")
	return nil
}

// Whoami prints the session state.
func (a *App) Whoami(context.Context) error {
	s := a.auth.Session()
	switch {
	case s.IsLoading:
		a.say("Session is loading.")
	case s.IsAuthenticated && s.User != nil:
		caps := make([]string, 0, 3)
		for _, c := range s.User.Type.Capabilities() {
			caps = append(caps, c.String())
		}
		a.say("%s (@%s, %s) id %s, capabilities: %s", s.User.DisplayName(), s.User.Username,
			s.User.Type, s.User.ID, strings.Join(caps, ", "))
	default:
		a.say("Not signed in.")
	}
	if s.Error != "" {
		a.say("Last error: %s", s.Error)
	}
	return nil
}

type profileField struct {
	label   string
	current string
	dst     **string
}

func (a *App) showProfile(ctx context.Context) error {
	s := a.auth.Session()
	if s.User == nil {
		return auth.ErrNotAuthenticated
	}
	a.say("%s", formatUser(*s.User))

	edit, err := getConfirm(a.in, "Edit profile?", a.out)
	if err != nil || !edit {
		return err
	}

	var update models.ProfileUpdate
	fields := []profileField{
		{"First name", s.User.FirstName, &update.FirstName},
		{"Last name", s.User.LastName, &update.LastName},
		{"Bio", s.User.Bio, &update.Bio},
		{"Location", s.User.Location, &update.Location},
		{"Website", s.User.Website, &update.Website},
	}
	if s.User.Type == models.AccountCompany {
		fields = append(fields, profileField{"Company name", s.User.CompanyName, &update.CompanyName})
	}
	for _, f := range fields {
		v, err := getSimpleText(a.in, fmt.Sprintf("%s [%s] (empty keeps it)", f.label, f.current), a.out)
		if err != nil {
			return err
		}
		if v != "" && v != f.current {
			*f.dst = &v
		}
	}

	res := a.auth.UpdateProfile(ctx, update)
	if err := a.report(res); err != nil {
		return err
	}
	a.say("Profile updated.")
	return nil
}

// Passwd changes the password of the signed-in user.
func (a *App) Passwd(ctx context.Context) error {
	if err := a.allow(router.Build(router.RouteSettings)); err != nil {
		return err
	}

	var change models.PasswordChange
	var err error
	if change.Current, err = getPassword(a.in, "Current password", a.out); err != nil {
		return err
	}
	if change.New, err = getPassword(a.in, "New password", a.out); err != nil {
		return err
	}
	if change.Confirm, err = getPassword(a.in, "Confirm new password", a.out); err != nil {
		return err
	}

	res := a.auth.ChangePassword(ctx, change)
	if err := a.report(res); err != nil {
		return err
	}
	a.say("Password changed.")
	return nil
}

// Refresh exchanges the refresh token for a new access token.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.allow(router.Build(router.RouteSettings)); err != nil {
		return err
	}
	res := a.auth.Refresh(ctx)
	if err := a.report(res); err != nil {
		return err
	}
	a.say("Session refreshed.")
	return nil
}

// report prints a failed Result and turns it into an error.
func (a *App) report(res auth.Result) error {
	if res.Success {
		return nil
	}
	if len(res.Fields) > 0 {
		names := make([]string, 0, len(res.Fields))
		for name := range res.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			a.say("  %s: %s", name, res.Fields[name])
		}
	} else {
		a.say("Error: %s", res.Error)
	}
	if res.Err != nil {
		return res.Err
	}
	return errors.New(res.Error)
}
