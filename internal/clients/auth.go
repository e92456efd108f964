package clients

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/andreasstove999/ecommerce-system/pos-terminal-go/internal/session"
)

// Error codes the auth endpoints put in "detail".
const (
	detailBadCredentials = "LOGIN_BAD_CREDENTIALS"
	detailUserExists     = "REGISTER_USER_ALREADY_EXISTS"
)

type AuthClient struct{ c *Client }

func NewAuthClient(c *Client) *AuthClient { return &AuthClient{c: c} }

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for a bearer token. The endpoint takes an
// OAuth2 password form, so the email travels as "username".
func (ac *AuthClient) Login(ctx context.Context, email, password string) (string, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var out tokenResponse
	if err := ac.c.sendForm(ctx, "/auth/jwt/login", form, &out); err != nil {
		if apiDetail(err) == detailBadCredentials {
			return "", session.ErrInvalidCredentials
		}
		return "", err
	}
	if out.AccessToken == "" {
		return "", errors.New("login response carried no access token")
	}
	return out.AccessToken, nil
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (ac *AuthClient) Register(ctx context.Context, email, password string) (session.User, error) {
	var out session.User
	err := ac.c.sendJSON(ctx, http.MethodPost, "/auth/register", registerRequest{Email: email, Password: password}, &out)
	if err != nil {
		if apiDetail(err) == detailUserExists {
			return session.User{}, session.ErrUserExists
		}
		return session.User{}, err
	}
	return out, nil
}

// Me resolves the profile for token, which may not be the one the client
// currently carries.
func (ac *AuthClient) Me(ctx context.Context, token string) (session.User, error) {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)

	var out session.User
	if err := ac.c.roundTrip(ctx, http.MethodGet, "/users/me", "", nil, h, &out); err != nil {
		return session.User{}, err
	}
	return out, nil
}

func apiDetail(err error) string {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Detail
	}
	return ""
}
