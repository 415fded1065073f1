package service

import (
	"errors"
	"strconv"
	"time"

	"github.com/editalgen/editalgen/config"
	"github.com/editalgen/editalgen/database/model"

	"github.com/golang-jwt/jwt/v5"
)

const tokenTTL = 72 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
)

// Claims identifies an API caller.
type Claims struct {
	jwt.RegisteredClaims
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
}

// AuthService issues and verifies bearer tokens for the JSON API.
type AuthService struct {
	userService    UserService
	settingService SettingService
}

func (s *AuthService) secret() ([]byte, error) {
	if secret := config.GetJWTSecret(); secret != "" {
		return []byte(secret), nil
	}
	secret, err := s.settingService.GetSecret()
	if err != nil {
		return nil, err
	}
	return secret, nil
}

// Login checks the credentials and returns a signed token.
func (s *AuthService) Login(username, password string) (string, *model.User, error) {
	user := s.userService.CheckUser(username, password)
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.GenerateToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) GenerateToken(user *model.User) (string, error) {
	key, err := s.secret()
	if err != nil {
		return "", err
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.Id),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
		Username: user.Username,
		Role:     user.Role,
	})
	return token.SignedString(key)
}

// ParseToken verifies the token and loads its user, so deleted users and
// role changes take effect immediately.
func (s *AuthService) ParseToken(tokenString string) (*model.User, error) {
	key, err := s.secret()
	if err != nil {
		return nil, err
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	id, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.userService.GetUser(id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidToken
	}
	return user, err
}
