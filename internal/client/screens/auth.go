package screens

import (
	"context"
	"sync/atomic"
)

// LoginScreen signs an existing user in.
type LoginScreen struct {
	deps    Deps
	loading atomic.Bool
}

func NewLoginScreen(d Deps) *LoginScreen {
	return &LoginScreen{deps: d}
}

// Loading reports whether a sign-in request is in flight.
func (s *LoginScreen) Loading() bool { return s.loading.Load() }

// SignIn validates the form locally, then asks the backend. It reports
// whether the user is now signed in.
func (s *LoginScreen) SignIn(ctx context.Context, email, password string) bool {
	if email == "" || password == "" {
		s.deps.fail(msgFillAllFields)
		return false
	}

	s.loading.Store(true)
	defer s.loading.Store(false)

	if _, err := s.deps.Backend.SignIn(ctx, email, password); err != nil {
		s.deps.Logger.Warn(ctx, "sign-in failed", "error", err)
		s.deps.fail(errorText(err, errSignIn))
		return false
	}

	s.deps.Nav.Replace(RouteLists, nil)
	return true
}

func (s *LoginScreen) GoToRegister() {
	s.deps.Nav.Push(RouteRegister, nil)
}

// RegisterScreen creates a new account.
type RegisterScreen struct {
	deps    Deps
	loading atomic.Bool
}

func NewRegisterScreen(d Deps) *RegisterScreen {
	return &RegisterScreen{deps: d}
}

func (s *RegisterScreen) Loading() bool { return s.loading.Load() }

// SignUp requires every field and matching passwords before contacting the
// backend. The account still has to be confirmed, so the user is sent back
// to sign-in afterwards.
func (s *RegisterScreen) SignUp(ctx context.Context, name, email, password, confirm string) bool {
	if name == "" || email == "" || password == "" || confirm == "" {
		s.deps.fail(msgFillAllFields)
		return false
	}
	if password != confirm {
		s.deps.fail(msgPasswordMismatch)
		return false
	}

	s.loading.Store(true)
	defer s.loading.Store(false)

	if _, err := s.deps.Backend.SignUp(ctx, email, password, map[string]any{"name": name}); err != nil {
		s.deps.Logger.Warn(ctx, "sign-up failed", "error", err)
		s.deps.fail(errorText(err, errSignUp))
		return false
	}

	s.deps.success(msgSignUpDone)
	s.deps.Nav.Replace(RouteLogin, nil)
	return true
}

func (s *RegisterScreen) GoToLogin() {
	s.deps.Nav.Push(RouteLogin, nil)
}
