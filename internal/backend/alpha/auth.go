package alpha

import (
	"context"
	"net/http"

	"github.com/FairForge/backplane/internal/provider"
)

var _ provider.Auth = (*Auth)(nil)

// Auth implements the auth contract over the shared client handle. Each
// operation is exactly one service call.
type Auth struct {
	provider.UnimplementedAuth
	client *Client
}

// NewAuth binds the auth capability to the shared handle.
func NewAuth(client *Client) *Auth {
	return &Auth{client: client}
}

type accountResponse struct {
	ID        string `json:"$id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Verified  bool   `json:"emailVerification"`
	CreatedAt string `json:"$createdAt"`
}

type sessionResponse struct {
	ID     string `json:"$id"`
	UserID string `json:"userId"`
	Secret string `json:"secret"`
	Expire string `json:"expire"`
}

func (a *Auth) CurrentUser(ctx context.Context) (*provider.User, error) {
	var resp accountResponse
	if err := a.client.do(ctx, http.MethodGet, "/v1/account", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.toUser(), nil
}

func (a *Auth) Login(ctx context.Context, email, password string) (*provider.Session, error) {
	body := map[string]string{"email": email, "password": password}
	var resp sessionResponse
	if err := a.client.do(ctx, http.MethodPost, "/v1/account/sessions/email", nil, body, &resp); err != nil {
		return nil, err
	}
	a.client.setSession(resp.Secret)
	return &provider.Session{
		ID:        resp.ID,
		UserID:    resp.UserID,
		ExpiresAt: parseTime(resp.Expire),
	}, nil
}

func (a *Auth) Logout(ctx context.Context) error {
	if err := a.client.do(ctx, http.MethodDelete, "/v1/account/sessions/current", nil, nil, nil); err != nil {
		return err
	}
	a.client.setSession("")
	return nil
}

func (a *Auth) Register(ctx context.Context, email, password, name string) (*provider.User, error) {
	body := map[string]string{
		"userId":   provider.AutoID,
		"email":    email,
		"password": password,
		"name":     name,
	}
	var resp accountResponse
	if err := a.client.do(ctx, http.MethodPost, "/v1/account", nil, body, &resp); err != nil {
		return nil, err
	}
	return resp.toUser(), nil
}

func (a *Auth) SendPasswordRecovery(ctx context.Context, email, redirectURL string) error {
	body := map[string]string{"email": email, "url": redirectURL}
	return a.client.do(ctx, http.MethodPost, "/v1/account/recovery", nil, body, nil)
}

func (a *Auth) ConfirmPasswordRecovery(ctx context.Context, userID, secret, newPassword string) error {
	body := map[string]string{"userId": userID, "secret": secret, "password": newPassword}
	return a.client.do(ctx, http.MethodPut, "/v1/account/recovery", nil, body, nil)
}

func (a *Auth) SendVerification(ctx context.Context, redirectURL string) error {
	body := map[string]string{"url": redirectURL}
	return a.client.do(ctx, http.MethodPost, "/v1/account/verification", nil, body, nil)
}

func (a *Auth) ConfirmVerification(ctx context.Context, userID, secret string) error {
	body := map[string]string{"userId": userID, "secret": secret}
	return a.client.do(ctx, http.MethodPut, "/v1/account/verification", nil, body, nil)
}

func (r *accountResponse) toUser() *provider.User {
	return &provider.User{
		ID:            r.ID,
		Email:         r.Email,
		Name:          r.Name,
		EmailVerified: r.Verified,
		CreatedAt:     parseTime(r.CreatedAt),
	}
}
