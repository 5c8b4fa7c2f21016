package auth

import (
	"context"
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkandawire/explotrack-backend/internal/modules/user"
)

type service struct {
	userRepo   user.Repository
	jwtSecret  []byte
	tokenHours int
}

// NewService creates a new auth service.
func NewService(userRepo user.Repository, jwtSecret string, tokenHours int) Service {
	return &service{userRepo: userRepo, jwtSecret: []byte(jwtSecret), tokenHours: tokenHours}
}

func (s *service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", errors.New("invalid credentials")
	}

	expirationTime := time.Now().Add(time.Duration(s.tokenHours) * time.Hour)
	claims := &jwt.StandardClaims{
		Subject:   u.ID.String(),
		Audience:  string(u.Role),
		ExpiresAt: expirationTime.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}
