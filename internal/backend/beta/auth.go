package beta

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/FairForge/backplane/internal/provider"
)

var _ provider.Auth = (*Auth)(nil)

// Auth implements the auth contract over the shared client handle.
type Auth struct {
	provider.UnimplementedAuth
	client *Client
}

// NewAuth binds the auth capability to the shared handle.
func NewAuth(client *Client) *Auth {
	return &Auth{client: client}
}

type signInResponse struct {
	IDToken   string `json:"idToken"`
	LocalID   string `json:"localId"`
	Email     string `json:"email"`
	ExpiresIn string `json:"expiresIn"`
}

type lookupResponse struct {
	Users []struct {
		LocalID       string `json:"localId"`
		Email         string `json:"email"`
		DisplayName   string `json:"displayName"`
		EmailVerified bool   `json:"emailVerified"`
		CreatedAt     string `json:"createdAt"`
	} `json:"users"`
}

func (a *Auth) Login(ctx context.Context, email, password string) (*provider.Session, error) {
	body := map[string]any{"email": email, "password": password, "returnSecureToken": true}
	var resp signInResponse
	if err := a.client.call(ctx, http.MethodPost, "/v1/accounts:signInWithPassword", body, &resp); err != nil {
		return nil, err
	}
	a.client.setToken(resp.IDToken)

	session := &provider.Session{ID: resp.IDToken, UserID: resp.LocalID}

	// The token itself carries the authoritative expiry; the service has
	// already verified it, so an unverified parse is enough here.
	if claims := parseClaims(resp.IDToken); claims != nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			session.ExpiresAt = exp.Time
		}
		if sub, err := claims.GetSubject(); err == nil && sub != "" {
			session.UserID = sub
		}
	}
	if session.ExpiresAt.IsZero() {
		if secs, err := strconv.ParseInt(resp.ExpiresIn, 10, 64); err == nil {
			session.ExpiresAt = time.Now().Add(time.Duration(secs) * time.Second)
		}
	}
	return session, nil
}

func (a *Auth) CurrentUser(ctx context.Context) (*provider.User, error) {
	token := a.client.token()
	if token == "" {
		return nil, provider.ErrUnauthenticated
	}

	body := map[string]string{"idToken": token}
	var resp lookupResponse
	if err := a.client.call(ctx, http.MethodPost, "/v1/accounts:lookup", body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Users) == 0 {
		return nil, provider.ErrUnauthenticated
	}

	u := resp.Users[0]
	created := time.Time{}
	if ms, err := strconv.ParseInt(u.CreatedAt, 10, 64); err == nil {
		created = time.UnixMilli(ms)
	}
	return &provider.User{
		ID:            u.LocalID,
		Email:         u.Email,
		Name:          u.DisplayName,
		EmailVerified: u.EmailVerified,
		CreatedAt:     created,
	}, nil
}

// Logout discards the local token; the service keeps no server-side session.
func (a *Auth) Logout(_ context.Context) error {
	a.client.setToken("")
	return nil
}

func (a *Auth) Register(ctx context.Context, email, password, name string) (*provider.User, error) {
	body := map[string]any{
		"email":             email,
		"password":          password,
		"displayName":       name,
		"returnSecureToken": true,
	}
	var resp signInResponse
	if err := a.client.call(ctx, http.MethodPost, "/v1/accounts:signUp", body, &resp); err != nil {
		return nil, err
	}
	a.client.setToken(resp.IDToken)
	return &provider.User{ID: resp.LocalID, Email: email, Name: name}, nil
}

func (a *Auth) SendPasswordRecovery(ctx context.Context, email, redirectURL string) error {
	body := map[string]string{
		"requestType": "PASSWORD_RESET",
		"email":       email,
		"continueUrl": redirectURL,
	}
	return a.client.call(ctx, http.MethodPost, "/v1/accounts:sendOobCode", body, nil)
}

// ConfirmPasswordRecovery redeems the out-of-band code. The code identifies
// the account, so userID is accepted for contract parity and unused.
func (a *Auth) ConfirmPasswordRecovery(ctx context.Context, _, secret, newPassword string) error {
	body := map[string]string{"oobCode": secret, "newPassword": newPassword}
	return a.client.call(ctx, http.MethodPost, "/v1/accounts:resetPassword", body, nil)
}

func (a *Auth) SendVerification(ctx context.Context, redirectURL string) error {
	token := a.client.token()
	if token == "" {
		return provider.ErrUnauthenticated
	}
	body := map[string]string{
		"requestType": "VERIFY_EMAIL",
		"idToken":     token,
		"continueUrl": redirectURL,
	}
	return a.client.call(ctx, http.MethodPost, "/v1/accounts:sendOobCode", body, nil)
}

func (a *Auth) ConfirmVerification(ctx context.Context, _, secret string) error {
	body := map[string]string{"oobCode": secret}
	return a.client.call(ctx, http.MethodPost, "/v1/accounts:update", body, nil)
}

func parseClaims(token string) jwt.MapClaims {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims
}
