package user

import "encoding/json"

// Account is a registered user. Age keeps the caller's numeric
// representation via json.Number. The password is never serialized.
type Account struct {
	ID       string      `json:"id,omitempty"`
	Name     string      `json:"name"`
	Phone    string      `json:"phone"`
	Age      json.Number `json:"age"`
	Gender   string      `json:"gender"`
	Email    string      `json:"email"`
	Username string      `json:"username"`
	Password string      `json:"-"`
}
