package services

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"barterhub/internal/models"
)

var ErrInvalidToken = errors.New("invalid token claims")

type CustomClaims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

type Authentication struct {
	secret []byte
}

func NewAuthentication(secret string) (*Authentication, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &Authentication{[]byte(secret)}, nil
}

func (authentication *Authentication) CreateToken(principal models.Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := CustomClaims{
		Role: principal.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(principal.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(authentication.secret)
}

func (authentication *Authentication) Validate(token string) (*models.Principal, error) {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		return authentication.secret, nil
	}
	jwtToken, err := jwt.ParseWithClaims(token, &CustomClaims{}, keyFunc, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := jwtToken.Claims.(*CustomClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return nil, ErrInvalidToken
	}
	if claims.Role != models.RoleCreator && claims.Role != models.RoleBrand {
		return nil, ErrInvalidToken
	}

	return &models.Principal{ID: id, Role: claims.Role}, nil
}
