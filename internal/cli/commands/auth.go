package commands

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"HealthMate/internal/cli/api"
	"HealthMate/internal/cli/bootstrap"
	"HealthMate/internal/config"
)

type loginCmd struct{}

func (loginCmd) Name() string        { return "login" }
func (loginCmd) Description() string { return "Login and store the auth token" }
func (loginCmd) Usage() string       { return "login <email> <password>" }

func (loginCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	return withApp(ctx, cfg, "/login", func(app *bootstrap.App) error {
		out, err := app.Auth.Login(ctx, args[0], args[1])
		if errors.Is(err, api.ErrNotVerified) {
			fmt.Fprintf(Out, "Please verify your email first: hmcli verify-otp %s <otp>\n", args[0])
			return err
		}
		if err != nil {
			return err
		}
		name := out.User.Name
		if name == "" {
			name = out.User.Email
		}
		fmt.Fprintf(Out, "Logged in as %s\n", name)
		return nil
	})
}

type registerCmd struct{}

func (registerCmd) Name() string        { return "register" }
func (registerCmd) Description() string { return "Create an account; an OTP is sent by email" }
func (registerCmd) Usage() string       { return "register <name> <email> <password> [cnic]" }

func (registerCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 3 || len(args) > 4 {
		return ErrUsage
	}
	in := api.RegisterRequest{Name: args[0], Email: args[1], Password: args[2]}
	if len(args) == 4 {
		in.CNIC = args[3]
	}
	return withApp(ctx, cfg, "/register", func(app *bootstrap.App) error {
		msg, err := app.Auth.Register(ctx, in)
		if err != nil {
			return err
		}
		printMessage(msg, "Registered. Check your email for the OTP")
		return nil
	})
}

type verifyOTPCmd struct{}

func (verifyOTPCmd) Name() string        { return "verify-otp" }
func (verifyOTPCmd) Description() string { return "Confirm the email with the one-time code" }
func (verifyOTPCmd) Usage() string       { return "verify-otp <email> <otp>" }

func (verifyOTPCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	return withApp(ctx, cfg, "/otp", func(app *bootstrap.App) error {
		msg, err := app.Auth.VerifyOTP(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		printMessage(msg, "Email verified, you can login now")
		return nil
	})
}

type forgetPasswordCmd struct{}

func (forgetPasswordCmd) Name() string        { return "forget-password" }
func (forgetPasswordCmd) Description() string { return "Send a password reset link" }
func (forgetPasswordCmd) Usage() string       { return "forget-password <email>" }

func (forgetPasswordCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	return withApp(ctx, cfg, "/forget-password", func(app *bootstrap.App) error {
		msg, err := app.Auth.ForgetPassword(ctx, args[0])
		if err != nil {
			return err
		}
		printMessage(msg, "Reset link sent")
		return nil
	})
}

type resetPasswordCmd struct{}

func (resetPasswordCmd) Name() string        { return "reset-password" }
func (resetPasswordCmd) Description() string { return "Set a new password with the token from the reset link" }
func (resetPasswordCmd) Usage() string       { return "reset-password <token> <password>" }

func (resetPasswordCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	return withApp(ctx, cfg, "/resetpassword/"+url.PathEscape(args[0]), func(app *bootstrap.App) error {
		msg, err := app.Auth.ResetPassword(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		printMessage(msg, "Password changed")
		return nil
	})
}

type logoutCmd struct{}

func (logoutCmd) Name() string        { return "logout" }
func (logoutCmd) Description() string { return "Forget the stored auth token" }
func (logoutCmd) Usage() string       { return "logout" }

func (logoutCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	return withApp(ctx, cfg, "", func(app *bootstrap.App) error {
		if err := app.Auth.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(Out, "Logged out")
		return nil
	})
}

type whoamiCmd struct{}

func (whoamiCmd) Name() string        { return "whoami" }
func (whoamiCmd) Description() string { return "Show the signed-in user" }
func (whoamiCmd) Usage() string       { return "whoami" }

func (whoamiCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	return withApp(ctx, cfg, "/profile", func(app *bootstrap.App) error {
		id, err := app.Auth.CurrentUser()
		if err != nil {
			return err
		}
		fmt.Fprintf(Out, "id:       %s\n", id.ID)
		fmt.Fprintf(Out, "name:     %s\n", id.Name)
		fmt.Fprintf(Out, "email:    %s\n", id.Email)
		fmt.Fprintf(Out, "verified: %t\n", id.IsVerified)
		return nil
	})
}

func printMessage(msg, fallback string) {
	if msg == "" {
		msg = fallback
	}
	fmt.Fprintln(Out, msg)
}

func init() {
	RegisterCmd(loginCmd{})
	RegisterCmd(registerCmd{})
	RegisterCmd(verifyOTPCmd{})
	RegisterCmd(forgetPasswordCmd{})
	RegisterCmd(resetPasswordCmd{})
	RegisterCmd(logoutCmd{})
	RegisterCmd(whoamiCmd{})
}
