// ABOUTME: Request and response types for the learning platform backend
// ABOUTME: Mirrors the JSON shapes of the auth and users endpoints

package client

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RegisterRequest is the body of POST /auth/register/
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse echoes the created account
type RegisterResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TokenPair is the credential pair issued by POST /auth/token/
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// EmailResponse is returned by the password endpoints
type EmailResponse struct {
	Email string `json:"email"`
}

// User is a read-only snapshot of a backend user record
type User struct {
	ID       UserID `json:"id,omitempty"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// UserPage is one page of GET /users/
type UserPage struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []User  `json:"results"`
}

// ErrorBody is the structured error document sent with non-2xx responses
type ErrorBody struct {
	Type   string        `json:"type"`
	Errors []ErrorDetail `json:"errors"`
}

// ErrorDetail is a single entry of ErrorBody.Errors
type ErrorDetail struct {
	Attr   *string `json:"attr"`
	Code   string  `json:"code"`
	Detail string  `json:"detail"`
}

// UserID accepts both string and numeric ids from the backend
type UserID string

func (id *UserID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("user id must be a string or number: %w", err)
	}
	*id = UserID(n.String())
	return nil
}

func (id UserID) String() string {
	return string(id)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access string `json:"access"`
}

type resetPasswordRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	Email           string `json:"email"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}
