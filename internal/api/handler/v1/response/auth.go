package response

import "github.com/credenciamento/event-api/internal/domain"

type LoginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type OperatorLoginResponse struct {
	Token    string          `json:"token"`
	Operator domain.Operator `json:"operator"`
}
