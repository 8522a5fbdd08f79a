// README: Identity service: registration, login, JWT issue and verify.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"revline/internal/types"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("username already taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user is inactive")
	ErrBadRequest         = errors.New("bad request")
)

type Store interface {
	CreateUser(ctx context.Context, u *User) error
	UserByUsername(ctx context.Context, username string) (*User, error)
	UserByID(ctx context.Context, id types.ID) (*User, error)
}

type Service struct {
	store     Store
	jwtSecret []byte
	tokenExp  time.Duration
}

func NewService(store Store, jwtSecret string, tokenExp time.Duration) *Service {
	if tokenExp <= 0 {
		tokenExp = 24 * time.Hour
	}
	return &Service{store: store, jwtSecret: []byte(jwtSecret), tokenExp: tokenExp}
}

type RegisterCommand struct {
	Username string
	Email    string
	Password string
	Role     Role
}

func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*User, error) {
	if len(cmd.Username) < 3 {
		return nil, fmt.Errorf("%w: username must be at least 3 characters", ErrBadRequest)
	}
	if !strings.Contains(cmd.Email, "@") {
		return nil, fmt.Errorf("%w: invalid email", ErrBadRequest)
	}
	if len(cmd.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrBadRequest)
	}
	if cmd.Role == "" {
		cmd.Role = RoleClient
	}
	if _, err := ParseRole(string(cmd.Role)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	if existing, err := s.store.UserByUsername(ctx, cmd.Username); err == nil && existing != nil {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &User{
		ID:           types.NewID(),
		Username:     cmd.Username,
		Email:        cmd.Email,
		PasswordHash: string(hash),
		Role:         cmd.Role,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login checks credentials and returns a signed token plus the user record.
func (s *Service) Login(ctx context.Context, username, password string) (string, *User, error) {
	u, err := s.store.UserByUsername(ctx, username)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !u.Active {
		return "", nil, ErrUserInactive
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.issueToken(u)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func (s *Service) issueToken(u *User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  string(u.ID),
		"username": u.Username,
		"role":     string(u.Role),
		"iat":      now.Unix(),
		"exp":      now.Add(s.tokenExp).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// VerifyToken validates a bearer token and returns the caller's claims.
func (s *Service) VerifyToken(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpiredToken
		}
		return Claims{}, ErrInvalidToken
	}
	if !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	userID, ok := mc["user_id"].(string)
	if !ok || userID == "" {
		return Claims{}, ErrInvalidToken
	}
	username, _ := mc["username"].(string)
	roleStr, ok := mc["role"].(string)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	role, err := ParseRole(roleStr)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	exp, _ := mc["exp"].(float64)
	return Claims{
		UserID:   types.ID(userID),
		Username: username,
		Role:     role,
		Exp:      int64(exp),
	}, nil
}
