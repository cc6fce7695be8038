// Package domain contains the core client-side entities and the ports the
// application layer depends on.
package domain

import (
	"context"
	"strconv"
)

// Role is the access role the backend assigns to an account.
type Role string

// Known roles.
const (
	RoleSuperUser     Role = "SUPER_USER"
	RolePoliceStation Role = "POLICE_STATION"
	RoleOfficer       Role = "OFFICER"
	RoleFieldAgent    Role = "FIELD_AGENT"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperUser, RolePoliceStation, RoleOfficer, RoleFieldAgent:
		return true
	}
	return false
}

// SessionUser is the profile snapshot stored alongside the token.
type SessionUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Session is the current user's credential. Token and User are either both
// set or both empty.
type Session struct {
	Token string
	User  *SessionUser
}

// Authenticated reports whether the session carries a token.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// IdentityHeaders returns the per-request identity headers derived from s.
// It returns nil when the session is not authenticated.
func (s Session) IdentityHeaders() map[string]string {
	if !s.Authenticated() {
		return nil
	}
	return map[string]string{
		HeaderUserID:   strconv.FormatInt(s.User.ID, 10),
		HeaderUserRole: string(s.User.Role),
	}
}

// Identity header names expected by the backend.
const (
	HeaderUserID   = "X-User-Id"
	HeaderUserRole = "X-User-Role"
)

// LoginResult is what the authentication endpoint returns on success.
type LoginResult struct {
	Token string
	User  SessionUser
}

// Authenticator is the port for the authentication endpoint.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (LoginResult, error)
}

// CredentialStore is the port for durable session persistence. Save must be
// all-or-nothing as seen by a later Load; Load reports ok=false for a
// missing or unreadable credential instead of failing.
type CredentialStore interface {
	Save(ctx context.Context, token string, user SessionUser) error
	Load(ctx context.Context) (token string, user SessionUser, ok bool, err error)
	Clear(ctx context.Context) error
}

// SessionHandle is what the request pipeline needs from the session owner.
type SessionHandle interface {
	Current() Session
	Logout(ctx context.Context) error
}

// Navigator is the port through which the request pipeline redirects the
// user after an authentication failure.
type Navigator interface {
	Current() string
	Redirect(path string)
}
