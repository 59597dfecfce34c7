package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/frahmantamala/attendance-tracking/internal/core/events"
	"github.com/frahmantamala/attendance-tracking/internal/devicelock"
	"github.com/frahmantamala/attendance-tracking/internal/user"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the slice of the user store the auth service needs.
type UserRepository interface {
	GetByID(id int64) (*user.User, error)
	GetByUsername(username string) (*user.User, error)
	UpdateLastLogin(id int64) error
}

// DeviceGuard verifies/binds the presented device at login.
type DeviceGuard interface {
	Verify(ctx context.Context, u *user.User, fingerprint, ip string) devicelock.Result
}

// CheckoutFunc force-closes an open attendance record; wired to the
// attendance service so logout implies check-out without an import cycle.
type CheckoutFunc func(ctx context.Context, u *user.User, ip string) error

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service performs authentication business logic.
type Service struct {
	users          UserRepository
	tokenGenerator TokenGenerator
	guard          DeviceGuard
	logoutCheckout CheckoutFunc
	bus            EventPublisher
	logger         *slog.Logger
}

func NewService(users UserRepository, tokenGen TokenGenerator, guard DeviceGuard, logoutCheckout CheckoutFunc, bus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		users:          users,
		tokenGenerator: tokenGen,
		guard:          guard,
		logoutCheckout: logoutCheckout,
		bus:            bus,
		logger:         logger,
	}
}

func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 24 * 7 * time.Hour
	}
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
	}
}

// Login validates credentials, runs the device-lock guard for lockable
// roles and returns a token pair. A flagged device never blocks the login
// that triggered it.
func (s *Service) Login(ctx context.Context, dto LoginDTO, userAgent, ip string) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	u, err := s.users.GetByUsername(dto.Username)
	if err != nil || u == nil {
		return AuthTokens{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(dto.Password)); err != nil {
		return AuthTokens{}, ErrInvalidCredentials
	}

	if s.guard != nil {
		fingerprint := devicelock.Fingerprint(userAgent, ip)
		result := s.guard.Verify(ctx, u, fingerprint, ip)
		if result.Flagged {
			s.logger.Warn("login from flagged device", "user_id", u.ID, "reason", result.Reason)
		}
	}

	if err := s.users.UpdateLastLogin(u.ID); err != nil {
		s.logger.Error("failed to update last login", "error", err, "user_id", u.ID)
	}

	accessToken, err := s.tokenGenerator.GenerateAccessToken(u.ID, u.Role)
	if err != nil {
		return AuthTokens{}, err
	}

	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(u.ID, u.Role)
	if err != nil {
		return AuthTokens{}, err
	}

	if u.Role.Auditable() && s.bus != nil {
		_ = s.bus.Publish(ctx, events.NewLoggedInEvent(u.ID, u.Username, ip))
	}

	s.logger.Info("user logged in", "user_id", u.ID, "username", u.Username)
	return AuthTokens{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Logout forces an implicit check-out when an open attendance record
// exists, then discards the session on the client side (tokens are
// stateless).
func (s *Service) Logout(ctx context.Context, u *user.User, ip string) error {
	if s.logoutCheckout != nil {
		if err := s.logoutCheckout(ctx, u, ip); err != nil {
			s.logger.Error("implicit check-out on logout failed", "error", err, "user_id", u.ID)
		}
	}

	if u.Role.Auditable() && s.bus != nil {
		_ = s.bus.Publish(ctx, events.NewLoggedOutEvent(u.ID, u.Username, ip))
	}

	s.logger.Info("user logged out", "user_id", u.ID, "username", u.Username)
	return nil
}

// RefreshTokens validates the refresh token and returns a new pair.
func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	uid, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return AuthTokens{}, ErrInvalidToken
	}

	u, err := s.users.GetByID(uid)
	if err != nil || u == nil {
		return AuthTokens{}, ErrInvalidToken
	}

	accessToken, err := s.tokenGenerator.GenerateAccessToken(u.ID, u.Role)
	if err != nil {
		return AuthTokens{}, err
	}

	newRefreshToken, err := s.tokenGenerator.GenerateRefreshToken(u.ID, u.Role)
	if err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{AccessToken: accessToken, RefreshToken: newRefreshToken}, nil
}

// ValidateAccessToken validates the token and loads the account.
func (s *Service) ValidateAccessToken(tokenString string) (*user.User, error) {
	claims, err := s.tokenGenerator.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	uid, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	u, err := s.users.GetByID(uid)
	if err != nil || u == nil {
		return nil, ErrInvalidToken
	}
	return u, nil
}

func (j *JWTTokenGenerator) generate(userID int64, role user.Role, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: strconv.FormatInt(userID, 10),
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   strconv.FormatInt(userID, 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (j *JWTTokenGenerator) GenerateAccessToken(userID int64, role user.Role) (string, error) {
	return j.generate(userID, role, j.AccessTokenSecret, j.AccessTokenTTL)
}

func (j *JWTTokenGenerator) GenerateRefreshToken(userID int64, role user.Role) (string, error) {
	return j.generate(userID, role, j.RefreshTokenSecret, j.RefreshTokenTTL)
}

// ValidateToken validates a JWT token and returns claims
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		// long-lived tokens were signed with the refresh secret
		if claims, ok := token.Claims.(*Claims); ok {
			if time.Until(claims.ExpiresAt.Time) > j.AccessTokenTTL {
				return j.RefreshTokenSecret, nil
			}
		}
		return j.AccessTokenSecret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
