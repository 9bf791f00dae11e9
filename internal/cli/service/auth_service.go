package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"HealthMate/internal/cli/api"
	"HealthMate/internal/cli/model"
	"HealthMate/internal/cli/session"
)

// ErrNotSignedIn is returned by CurrentUser when there is no identity.
var ErrNotSignedIn = errors.New("not signed in")

// AuthService описывает юзкейс-уровень аутентификации для CLI.
type AuthService interface {
	// Login логирование пользователя; при успехе сессия переходит в Authenticated.
	Login(ctx context.Context, email, password string) (*api.LoginResponse, error)

	// Register создаёт аккаунт, сервер отправляет OTP на почту.
	Register(ctx context.Context, in api.RegisterRequest) (string, error)

	VerifyOTP(ctx context.Context, email, otp string) (string, error)
	ForgetPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, password string) (string, error)

	// Logout очищает локальный контекст аутентификации.
	Logout() error

	// CurrentUser возвращает текущего пользователя, если он установлен.
	CurrentUser() (model.Identity, error)
}

// AuthAPI is the identity lifecycle part of the backend.
type AuthAPI interface {
	Login(ctx context.Context, in api.LoginRequest) (*api.LoginResponse, error)
	Register(ctx context.Context, in api.RegisterRequest) (string, error)
	VerifyOTP(ctx context.Context, email, otp string) (string, error)
	ForgetPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, password string) (string, error)
}

// Sessions is the part of session.Gate used by the auth service.
type Sessions interface {
	State() session.State
	SignIn(id model.Identity, token string) error
	SignOut() error
}

type authService struct {
	api     AuthAPI
	session Sessions
	log     *zap.SugaredLogger
}

// NewAuthService wires the backend and the session gate.
func NewAuthService(a AuthAPI, s Sessions, log *zap.SugaredLogger) AuthService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &authService{api: a, session: s, log: log}
}

func (s *authService) Login(ctx context.Context, email, password string) (*api.LoginResponse, error) {
	out, err := s.api.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	if err := s.session.SignIn(*out.User, out.Token); err != nil {
		// сессия в памяти установлена, не сохранился только токен
		s.log.Warnw("login: credential not persisted", "err", err)
	}
	return out, nil
}

func (s *authService) Register(ctx context.Context, in api.RegisterRequest) (string, error) {
	return s.api.Register(ctx, in)
}

func (s *authService) VerifyOTP(ctx context.Context, email, otp string) (string, error) {
	return s.api.VerifyOTP(ctx, email, otp)
}

func (s *authService) ForgetPassword(ctx context.Context, email string) (string, error) {
	return s.api.ForgetPassword(ctx, email)
}

func (s *authService) ResetPassword(ctx context.Context, token, password string) (string, error) {
	return s.api.ResetPassword(ctx, token, password)
}

func (s *authService) Logout() error {
	return s.session.SignOut()
}

func (s *authService) CurrentUser() (model.Identity, error) {
	id, ok := s.session.State().Identity()
	if !ok {
		return model.Identity{}, ErrNotSignedIn
	}
	return id, nil
}
