package jwthandling

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Information a session token encodes
type AccountUserClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func GenerateNewAccountUserToken(
	expiresIn time.Duration,
	accountID string,
	role string,
	secretKey string,
) (tokenString string, err error) {
	claims := AccountUserClaims{
		role,
		jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   accountID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err = token.SignedString([]byte(secretKey))
	return
}

func ValidateAccountUserToken(tokenString string, secretKey string) (claims *AccountUserClaims, valid bool, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccountUserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if token == nil {
		return
	}
	claims, valid = token.Claims.(*AccountUserClaims)
	valid = valid && token.Valid
	return
}
