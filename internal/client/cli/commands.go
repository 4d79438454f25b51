package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

var errUsage = errors.New("usage")

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (a *App) runCommand(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "register":
		return a.Register(ctx, args)
	case "login":
		return a.Login(ctx, args)
	case "otp":
		return a.OTP(ctx, args)
	case "whoami":
		return a.WhoAmI(ctx, args)
	case "ping":
		return a.Ping(ctx)
	case "logout":
		return a.Logout(ctx)
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

// promptIfEmpty returns v, or asks for it when v is empty.
func (a *App) promptIfEmpty(v, prompt string) (string, error) {
	if v != "" {
		return v, nil
	}
	return GetSimpleText(a.reader, prompt, a.out)
}

func (a *App) Register(ctx context.Context, args []string) error {
	fs := newFlagSet("register")
	email := fs.String("email", "", "email")
	first := fs.String("first", "", "first name")
	last := fs.String("last", "", "last name")
	twoFactor := fs.Bool("2fa", false, "enable one-time password second factor")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	var err error
	interactive := *email == ""

	if *email, err = a.promptIfEmpty(*email, "Enter email"); err != nil {
		return err
	}
	if interactive {
		if *first, err = GetSimpleText(a.reader, "Enter first name", a.out); err != nil {
			return err
		}
		if *last, err = GetSimpleText(a.reader, "Enter last name", a.out); err != nil {
			return err
		}
		if *twoFactor, err = GetYesNo(a.reader, "Enable two-factor authentication?", a.out); err != nil {
			return err
		}
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	id, err := a.client.Register(ctx, client.RegisterInput{
		Email:            *email,
		Password:         string(password),
		FirstName:        *first,
		LastName:         *last,
		TwoFactorEnabled: *twoFactor,
	})
	if err != nil {
		return err
	}

	a.printf("Registered, id=%s\n", id)
	return nil
}

func (a *App) Login(ctx context.Context, args []string) error {
	fs := newFlagSet("login")
	email := fs.String("email", "", "email")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	var err error
	if *email, err = a.promptIfEmpty(*email, "Enter email"); err != nil {
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.client.Login(ctx, *email, string(password))
	if err != nil {
		return err
	}

	a.email = *email
	a.accessToken, a.challengeToken = "", ""

	if tokenType(res.Token) == tokenTypeOTP {
		a.challengeToken = res.Token
		a.printf("A one-time password was sent to %s. Confirm it with: otp\n", *email)
		a.printf("Challenge token: %s\n", res.Token)
		return nil
	}

	a.accessToken = res.Token
	a.printf("Login successful\n")
	a.printf("Access token: %s\n", res.Token)
	return nil
}

func (a *App) OTP(ctx context.Context, args []string) error {
	fs := newFlagSet("otp")
	token := fs.String("token", "", "challenge token (defaults to the one from the last login)")
	code := fs.String("code", "", "one-time password")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	if *token == "" {
		*token = a.challengeToken
	}
	if *token == "" {
		return fmt.Errorf("%w: no pending login, run login first or pass -token", errUsage)
	}

	var err error
	if *code, err = a.promptIfEmpty(*code, "Enter one-time password"); err != nil {
		return err
	}

	res, err := a.client.VerifyOTP(ctx, *token, *code)
	if err != nil {
		return err
	}

	a.challengeToken = ""
	a.accessToken = res.Token
	a.printf("Login successful\n")
	a.printf("Access token: %s\n", res.Token)
	return nil
}

func (a *App) WhoAmI(ctx context.Context, args []string) error {
	fs := newFlagSet("whoami")
	token := fs.String("token", "", "access token (defaults to the current session)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	if *token == "" {
		*token = a.accessToken
	}
	if *token == "" {
		return fmt.Errorf("%w: not logged in, run login first or pass -token", errUsage)
	}

	u, err := a.client.WhoAmI(ctx, *token)
	if err != nil {
		return err
	}

	a.printf("id:         %s\n", u.ID)
	a.printf("email:      %s\n", u.Email)
	a.printf("name:       %s %s\n", u.FirstName, u.LastName)
	a.printf("two-factor: %t\n", u.TwoFactorEnabled)
	return nil
}

func (a *App) Ping(ctx context.Context) error {
	if err := a.client.Ping(ctx); err != nil {
		return err
	}
	a.printf("Server is up\n")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.email, a.accessToken, a.challengeToken = "", "", ""
	a.printf("Logged out\n")
	return nil
}
