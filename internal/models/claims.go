package models

import "github.com/golang-jwt/jwt/v5"

// OperatorClaims is the access token payload of a plant operator allowed to write records.
type OperatorClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}
