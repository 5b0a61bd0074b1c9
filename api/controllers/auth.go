package controllers

import (
	"context"
	"net/http"

	"github.com/dreamcandylab/candylab-backend/api/responses"
	"github.com/dreamcandylab/candylab-backend/api/validators"
	"github.com/dreamcandylab/candylab-backend/internal/auth"
	pkgerrors "github.com/dreamcandylab/candylab-backend/pkg/errors"
	"github.com/dreamcandylab/candylab-backend/pkg/logger"
)

var errAuthUnavailable = pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")

// authHandler decodes T, runs call and writes its result with status. A
// struct{} T reads no body.
func authHandler[T, R any](logg *logger.Logger, ready bool, status int, call func(context.Context, *http.Request, T) (R, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !ready {
			responses.WriteError(r.Context(), logg, w, errAuthUnavailable)
			return
		}
		var body T
		if _, bodyless := any(body).(struct{}); !bodyless {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		out, err := call(r.Context(), r, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, status, out)
	}
}

func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return authHandler(logg, svc != nil, http.StatusOK,
		func(ctx context.Context, _ *http.Request, body auth.LoginRequest) (*auth.LoginResponse, error) {
			return svc.Login(ctx, body)
		})
}

// AuthRegister creates the account and then signs it in.
func AuthRegister(reg auth.RegisterService, svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return authHandler(logg, reg != nil && svc != nil, http.StatusCreated,
		func(ctx context.Context, _ *http.Request, body auth.RegisterRequest) (*auth.LoginResponse, error) {
			if _, err := reg.Register(ctx, body); err != nil {
				return nil, err
			}
			return svc.Login(ctx, auth.LoginRequest{Email: body.Email, Password: body.Password})
		})
}

// AuthRefresh takes the possibly expired access token from Authorization and
// the refresh token from the body.
func AuthRefresh(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return authHandler(logg, svc != nil, http.StatusOK,
		func(ctx context.Context, r *http.Request, body auth.RefreshRequest) (*auth.TokenPair, error) {
			token, err := validators.BearerToken(r)
			if err != nil {
				return nil, err
			}
			body.AccessToken = token
			return svc.Refresh(ctx, body)
		})
}

func AuthLogout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return authHandler(logg, svc != nil, http.StatusOK,
		func(ctx context.Context, r *http.Request, _ struct{}) (map[string]string, error) {
			token, err := validators.BearerToken(r)
			if err != nil {
				return nil, err
			}
			if err := svc.Logout(ctx, token); err != nil {
				return nil, err
			}
			return map[string]string{"status": "logged_out"}, nil
		})
}
