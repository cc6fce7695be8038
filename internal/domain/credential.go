package domain

import (
	"bytes"
	"encoding/json"
)

// Names of the two durable slots a CredentialStore keeps.
const (
	SlotToken = "token"
	SlotUser  = "user"
)

// EncodeUser serializes the user profile for the user slot.
func EncodeUser(u SessionUser) ([]byte, error) {
	return json.Marshal(u)
}

// DecodeUser parses a stored user profile. Empty, "null" or malformed data
// yields ok=false.
func DecodeUser(data []byte) (SessionUser, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return SessionUser{}, false
	}
	var u SessionUser
	if err := json.Unmarshal(data, &u); err != nil {
		return SessionUser{}, false
	}
	return u, true
}
