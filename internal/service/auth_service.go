package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/ceb/config"
	"github.com/d60-Lab/ceb/internal/model"
	"github.com/d60-Lab/ceb/internal/repository"
	"github.com/d60-Lab/ceb/pkg/logger"
)

const minPasswordLen = 8

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserExists         = errors.New("username already exists")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", minPasswordLen)
)

// Claims 会话令牌载荷
type Claims struct {
	Username string `json:"username"`
	Staff    bool   `json:"staff"`
	jwt.RegisteredClaims
}

// AuthService 登录与令牌
type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
	CreateUser(ctx context.Context, username, password string, staff bool) (*model.User, error)
	IssueToken(u *model.User) (string, time.Time, error)
	ParseToken(token string) (*Claims, error)
}

type authService struct {
	users  repository.UserRepository
	secret []byte
	expire time.Duration
	now    func() time.Time
}

// NewAuthService secret 为空时生成进程内随机密钥（重启后旧令牌失效）
func NewAuthService(users repository.UserRepository, cfg config.JWTConfig) AuthService {
	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			panic(err)
		}
		logger.Warn("jwt.secret not set, using an ephemeral key")
	}
	expire := cfg.Expire
	if expire <= 0 {
		expire = 24 * time.Hour
	}
	return &authService{users: users, secret: secret, expire: expire, now: time.Now}
}

func (s *authService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *authService) CreateUser(ctx context.Context, username, password string, staff bool) (*model.User, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if len(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{Username: username, PasswordHash: string(hash), IsStaff: staff}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return u, nil
}

func (s *authService) IssueToken(u *model.User) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.expire)
	claims := Claims{
		Username: u.Username,
		Staff:    u.IsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(u.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (s *authService) ParseToken(token string) (*Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
