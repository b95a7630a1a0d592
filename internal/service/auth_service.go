package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusworks/examportal-backend/internal/model"
)

// Claims is the JWT payload for access tokens.
type Claims struct {
	UserID uuid.UUID  `json:"uid"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

// SessionStore tracks live refresh-token sessions by jti. A missing jti
// means the session was revoked or expired.
type SessionStore interface {
	PutSession(ctx context.Context, jti string, userID uuid.UUID, ttl time.Duration) error
	GetSession(ctx context.Context, jti string) (uuid.UUID, bool, error)
	DeleteSession(ctx context.Context, jti string) error
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int         `json:"expires_in"`
	User         *model.User `json:"user,omitempty"`
}

// AuthService handles registration, login and token rotation.
type AuthService struct {
	users      UserStore
	sessions   SessionStore
	log        zerolog.Logger
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	bcryptCost int
	now        func() time.Time
}

func NewAuthService(users UserStore, sessions SessionStore, log zerolog.Logger, secret string, accessTTL, refreshTTL time.Duration, bcryptCost int) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   sessions,
		log:        log.With().Str("component", "auth_service").Logger(),
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	taken, err := s.users.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := model.RoleStudent
	if req.Role != "" {
		role = model.Role(req.Role)
	}

	user := &model.User{
		ID:                 uuid.New(),
		Name:               req.Name,
		Email:              req.Email,
		PasswordHash:       string(hash),
		Role:               role,
		RegistrationNumber: req.RegistrationNumber,
		Department:         req.Department,
		Semester:           req.Semester,
		IsActive:           true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID.String()).Str("role", string(user.Role)).Msg("user registered")
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, s.now()); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to record last login")
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	pair.User = user
	return pair, nil
}

// Refresh rotates a refresh token: the presented jti is revoked and a new
// session is opened, so each refresh token works exactly once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.parseToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefresh
	}

	userID, ok, err := s.sessions.GetSession(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	if !ok || userID != claims.UserID {
		return nil, ErrInvalidRefresh
	}
	if err := s.sessions.DeleteSession(ctx, claims.ID); err != nil {
		return nil, fmt.Errorf("failed to revoke session: %w", err)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, ErrInvalidRefresh
	}
	return s.issueTokens(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.parseToken(refreshToken)
	if err != nil {
		return ErrInvalidRefresh
	}
	return s.sessions.DeleteSession(ctx, claims.ID)
}

func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// ParseAccessToken validates an access token and returns its claims. Used
// by the auth middleware.
func (s *AuthService) ParseAccessToken(token string) (*Claims, error) {
	return s.parseToken(token)
}

func (s *AuthService) issueTokens(ctx context.Context, user *model.User) (*TokenPair, error) {
	now := s.now()

	access, err := s.signToken(user, uuid.NewString(), now, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshJTI := uuid.NewString()
	refresh, err := s.signToken(user, refreshJTI, now, s.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	if err := s.sessions.PutSession(ctx, refreshJTI, user.ID, s.refreshTTL); err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(s.accessTTL.Seconds()),
	}, nil
}

func (s *AuthService) signToken(user *model.User, jti string, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *AuthService) parseToken(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
