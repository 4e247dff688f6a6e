package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"recipegram-backend/internal/models"
	"recipegram-backend/internal/types"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("username or email already taken")
	ErrTokenRevoked       = errors.New("token has been revoked")
)

const tokenTTL = 24 * time.Hour

// AuthService handles registration, login and token validation. Revoked
// tokens are tracked in redis until they would have expired anyway.
type AuthService struct {
	db        *gorm.DB
	redis     *redis.Client
	logger    *zap.Logger
	jwtSecret string
}

// NewAuthService creates a new AuthService instance. The redis client may be
// nil, in which case logout revocation is disabled.
func NewAuthService(db *gorm.DB, redisClient *redis.Client, logger *zap.Logger, jwtSecret string) *AuthService {
	return &AuthService{
		db:        db,
		redis:     redisClient,
		logger:    logger,
		jwtSecret: jwtSecret,
	}
}

// Register creates a user with a bcrypt-hashed password and returns a signed
// token for the new account.
func (s *AuthService) Register(ctx context.Context, username, email, firstName, lastName, password string) (string, *models.User, error) {
	var existing models.User
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", username, email).
		First(&existing).Error
	if err == nil {
		return "", nil, ErrUserExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, err
	}

	user := models.User{
		Username:     username,
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: string(hash),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", nil, ErrUserExists
		}
		return "", nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))

	token, err := s.generateToken(&user)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

// Login checks the password and returns a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.generateToken(&user)
}

// Logout revokes the token by placing it on the redis denylist for the
// remainder of its lifetime.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s.redis == nil {
		return nil
	}
	claims, err := s.parseToken(token)
	if err != nil {
		return err
	}
	ttl := tokenTTL
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		ttl = time.Until(exp.Time)
		if ttl <= 0 {
			return nil
		}
	}
	return s.redis.Set(ctx, denylistKey(token), "1", ttl).Err()
}

// ValidateToken verifies the signature, expiry and revocation status of a
// token and returns its claims.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return nil, err
	}
	if s.redis != nil {
		revoked, err := s.redis.Exists(ctx, denylistKey(token)).Result()
		if err != nil {
			return nil, err
		}
		if revoked > 0 {
			return nil, ErrTokenRevoked
		}
	}
	return claims, nil
}

func (s *AuthService) generateToken(user *models.User) (string, error) {
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
		},
		UserID:   user.ID,
		Username: user.Username,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) parseToken(token string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.UserID == uuid.Nil {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func denylistKey(token string) string {
	return "auth:denylist:" + token
}
