package adapthttp

import (
	"context"
	"errors"
	"net/http"

	"fieldsync/internal/domain"
)

// AuthClient calls the authentication endpoint.
type AuthClient struct {
	gw *Gateway
}

var _ domain.Authenticator = (*AuthClient)(nil)

// NewAuthClient returns an AuthClient using gw.
func NewAuthClient(gw *Gateway) *AuthClient {
	return &AuthClient{gw: gw}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	JWT      string      `json:"jwt"`
	ID       int64       `json:"id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

// Login exchanges credentials for a token. A 401 here means the credentials
// were wrong, not that a session expired.
func (c *AuthClient) Login(ctx context.Context, username, password string) (domain.LoginResult, error) {
	var resp loginResponse
	err := c.gw.Do(ctx, http.MethodPost, "/auth/login", loginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		var e *domain.Error
		if errors.As(err, &e) && e.Kind == domain.KindAuthorizationExpired {
			remapped := *e
			remapped.Kind = domain.KindAuthenticationRejected
			return domain.LoginResult{}, &remapped
		}
		return domain.LoginResult{}, err
	}
	return domain.LoginResult{
		Token: resp.JWT,
		User:  domain.SessionUser{ID: resp.ID, Username: resp.Username, Role: resp.Role},
	}, nil
}
