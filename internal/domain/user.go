package domain

import "strings"

// UserAccount is a dashboard account as listed by the users resource.
type UserAccount struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Phone       string `json:"phone,omitempty"`
	BadgeNumber string `json:"badgeNumber,omitempty"`
	CreatedBy   *int64 `json:"createdBy,omitempty"`
	Active      bool   `json:"active"`
}

// RecordID implements Record.
func (u UserAccount) RecordID() int64 { return u.ID }

// UserInput is the create/update payload for an account.
type UserInput struct {
	Username    string `json:"username"`
	Password    string `json:"password,omitempty"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Phone       string `json:"phone,omitempty"`
	BadgeNumber string `json:"badgeNumber,omitempty"`
}

// Validate implements Input.
func (in UserInput) Validate() error {
	const op = "user"
	if strings.TrimSpace(in.Username) == "" {
		return Invalid(op, "username is required")
	}
	if !strings.Contains(in.Email, "@") {
		return Invalid(op, "a valid email is required")
	}
	if !in.Role.Valid() {
		return Invalid(op, "unknown role %q", in.Role)
	}
	return nil
}
