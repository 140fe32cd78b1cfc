package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/vimesta/internal/client/models"
	"github.com/dmitrijs2005/vimesta/internal/common"
	"github.com/dmitrijs2005/vimesta/internal/sizex"
)

// getSimpleText and getSecret are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getSecret     = GetSecret
)

// Login runs the Telegram OTP flow: the phone number comes from args or a
// prompt, the code is read without echo.
func (a *App) Login(ctx context.Context, args []string) error {
	var phone string
	if len(args) > 0 {
		phone = args[0]
	} else {
		p, err := getSimpleText(a.reader, "Enter phone number", a.out)
		if err != nil {
			return err
		}
		phone = p
	}

	phone, err := a.auth.RequestOTP(ctx, phone)
	if err != nil {
		return err
	}
	a.printf("Code sent to %s via Telegram\n", phone)

	code, err := getSecret(a.reader, "Enter the 6-digit code", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(code)

	user, err := a.auth.VerifyOTP(ctx, phone, string(code))
	if err != nil {
		return err
	}
	a.printf("Welcome, %s!\n", user.DisplayName())
	return nil
}

// LoginTelegram logs in with a JSON payload saved from the Telegram login
// widget.
func (a *App) LoginTelegram(ctx context.Context, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	var payload models.TelegramLogin
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse telegram payload: %w", err)
	}

	user, err := a.auth.TelegramLogin(ctx, payload)
	if err != nil {
		return err
	}
	a.printf("Welcome, %s!\n", user.DisplayName())
	return nil
}

func (a *App) Logout(ctx context.Context, _ []string) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	a.println("Logged out")
	return nil
}

func (a *App) WhoAmI(ctx context.Context, _ []string) error {
	u, err := a.auth.Verify(ctx)
	if err != nil {
		return err
	}
	if u == nil {
		u = a.auth.CurrentUser()
	}

	a.printf("Name:     %s\n", u.DisplayName())
	if u.TelegramUsername != "" {
		a.printf("Telegram: @%s\n", u.TelegramUsername)
	}
	if u.PhoneNumber != "" {
		a.printf("Phone:    %s\n", u.PhoneNumber)
	}
	if u.AccountType != "" {
		a.printf("Account:  %s\n", u.AccountType)
	}
	a.printf("Storage:  %s\n", sizex.Format(u.StorageUsed))
	return nil
}
