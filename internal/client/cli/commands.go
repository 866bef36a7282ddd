package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

// getSimpleText and getPassword are swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var genders = []string{"MALE", "FEMALE", "OTHERS"}

func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}

	if err := a.auth.Login(ctx, username, password); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

func (a *App) Info(ctx context.Context) error {
	info, err := a.auth.Info(ctx)
	if err != nil {
		return err
	}

	signAt := "never"
	if info.SignAt != nil {
		signAt = info.SignAt.Local().Format(time.DateTime)
	}

	fmt.Fprintf(a.out, "ID:        %s\n", info.ID)
	fmt.Fprintf(a.out, "Username:  %s\n", info.Username)
	fmt.Fprintf(a.out, "Nickname:  %s\n", info.Nickname)
	fmt.Fprintf(a.out, "Gender:    %s\n", info.Gender)
	fmt.Fprintf(a.out, "Role:      %s\n", info.Role)
	fmt.Fprintf(a.out, "Last sign: %s\n", signAt)
	return nil
}

func (a *App) Nickname(ctx context.Context) error {
	nickname, err := getSimpleText(a.reader, "Enter nickname", a.out)
	if err != nil {
		return err
	}
	gender, err := getSimpleText(a.reader, "Enter gender ("+strings.Join(genders, "/")+")", a.out)
	if err != nil {
		return err
	}

	if err := a.auth.UpdateInfo(ctx, nickname, strings.ToUpper(gender)); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Profile updated")
	return nil
}

func (a *App) Passwd(ctx context.Context) error {
	origin, err := getPassword("Current password", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("New password", a.out)
	if err != nil {
		return err
	}
	confirm, err := getPassword("Repeat new password", a.out)
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	err = a.auth.ChangePassword(ctx, origin, password)
	switch client.CodeOf(err) {
	case common.CodePasswordIsCurrent:
		return fmt.Errorf("new password must differ from the current one")
	case common.CodePasswordIsPrevious:
		return fmt.Errorf("new password must differ from the previous one")
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password changed")
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	if err := a.auth.Refresh(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Access token refreshed")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) Withdraw(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, "This deletes your account. Type 'yes' to confirm", a.out)
	if err != nil {
		return err
	}
	if answer != "yes" {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	if err := a.auth.Withdraw(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Account withdrawn")
	return nil
}
