package httpapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"digistock/backend/internal/domain"
	"digistock/backend/internal/store"
	"digistock/backend/internal/validation"
)

var errInvalidCredentials = errors.New("nome ou senha inválidos")

// UserStore is the slice of the repository the auth manager needs.
type UserStore interface {
	CreateUser(ctx context.Context, name string, passwordHash string) error
	GetUserByName(ctx context.Context, name string) (*domain.UserAccount, error)
}

// AuthManager issues and verifies the HS256 bearer tokens used by the
// mutating endpoints when AUTH_REQUIRED is on. Passwords are bcrypt hashes
// stored in usuario_tb.
type AuthManager struct {
	secret   []byte
	tokenTTL time.Duration
	users    UserStore
}

type stockClaims struct {
	jwtlib.RegisteredClaims
}

func NewAuthManager(secret string, tokenTTL time.Duration, users UserStore) *AuthManager {
	if secret == "" {
		secret = "dev-change-me"
	}
	if tokenTTL <= 0 {
		tokenTTL = 8 * time.Hour
	}
	return &AuthManager{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		users:    users,
	}
}

func (a *AuthManager) Register(ctx context.Context, req domain.RegisterRequest) error {
	if errs := validation.Struct(req); errs != nil {
		return fmt.Errorf("%w: %s", store.ErrInvalidInput, validation.Message(errs))
	}
	name := strings.ToLower(strings.TrimSpace(req.Name))
	if strings.ContainsAny(name, " \t\r\n") {
		return fmt.Errorf("%w: nome não pode conter espaços", store.ErrInvalidInput)
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return err
	}
	return a.users.CreateUser(ctx, name, hash)
}

func (a *AuthManager) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	name := strings.ToLower(strings.TrimSpace(req.Name))
	user, err := a.users.GetUserByName(ctx, name)
	if err != nil {
		// Same message whether the user is missing or the password is wrong.
		return domain.LoginResponse{}, errInvalidCredentials
	}
	if !verifyPassword(user.Password, req.Password) {
		return domain.LoginResponse{}, errInvalidCredentials
	}

	expiresAt := time.Now().UTC().Add(a.tokenTTL)
	token, err := a.sign(user.Name, expiresAt)
	if err != nil {
		return domain.LoginResponse{}, err
	}
	return domain.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
	}, nil
}

func (a *AuthManager) ParseToken(tokenStr string) (domain.Actor, error) {
	claims := &stockClaims{}
	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return domain.Actor{}, errors.New("token inválido ou expirado")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return domain.Actor{}, errors.New("token sem sujeito")
	}
	return domain.Actor{Name: sub}, nil
}

func (a *AuthManager) sign(name string, expiresAt time.Time) (string, error) {
	claims := stockClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   name,
			IssuedAt:  jwtlib.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			Issuer:    "digistock",
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func verifyPassword(stored string, input string) bool {
	if stored == "" || strings.TrimSpace(input) == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(input)) == nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}
