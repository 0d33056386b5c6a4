package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/openauthstack/user-auth-service/internal/config"
	"github.com/openauthstack/user-auth-service/internal/database/repository"
	"github.com/openauthstack/user-auth-service/internal/models"
	"github.com/openauthstack/user-auth-service/internal/services/audit"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Terminal auth outcomes, mapped to HTTP statuses by the handlers
var (
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrInactiveAccount    = errors.New("account is inactive")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenNotFound      = errors.New("refresh token not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrPasswordIncorrect  = errors.New("current password is incorrect")
)

// AuthService owns the credential and token lifecycle: password hashing,
// access token issuance/verification, and refresh token persistence with
// revocation. Access tokens are stateless; logout only revokes refresh tokens.
type AuthService struct {
	users         repository.UserStore
	refreshTokens repository.RefreshTokenStore
	audit         *audit.Publisher

	secret          []byte
	signingMethod   jwt.SigningMethod
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

func NewAuthService(users repository.UserStore, refreshTokens repository.RefreshTokenStore, settings *config.Settings, auditPub *audit.Publisher) *AuthService {
	return &AuthService{
		users:           users,
		refreshTokens:   refreshTokens,
		audit:           auditPub,
		secret:          []byte(settings.SecretKey),
		signingMethod:   signingMethodFor(settings.Algorithm),
		accessTokenTTL:  settings.AccessTokenTTL(),
		refreshTokenTTL: settings.RefreshTokenTTL(),
	}
}

func signingMethodFor(alg string) jwt.SigningMethod {
	switch alg {
	case "HS384":
		return jwt.SigningMethodHS384
	case "HS512":
		return jwt.SigningMethodHS512
	default:
		return jwt.SigningMethodHS256
	}
}

// AccessTokenTTL returns the configured access token lifetime
func (s *AuthService) AccessTokenTTL() time.Duration {
	return s.accessTokenTTL
}

// HashPassword hashes a plaintext password with bcrypt. The result encodes
// algorithm, cost, and salt, so verification is self-contained.
func (s *AuthService) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword verifies a plaintext password against a stored hash.
// Malformed hashes verify as false, never as an error.
func (s *AuthService) CheckPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// CreateAccessToken issues a signed JWT for the given username. An optional
// TTL overrides the configured default.
func (s *AuthService) CreateAccessToken(username string, ttl ...time.Duration) (string, error) {
	expiry := s.accessTokenTTL
	if len(ttl) > 0 {
		expiry = ttl[0]
	}

	now := time.Now()
	claims := &models.AccessClaims{
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	token := jwt.NewWithClaims(s.signingMethod, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// DecodeAccessToken verifies signature and expiry and returns the claims.
// Any malformed, tampered, or expired token maps to ErrInvalidToken.
func (s *AuthService) DecodeAccessToken(tokenString string) (*models.AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*models.AccessClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// CreateRefreshToken generates an opaque URL-safe token with 32 bytes of
// entropy and persists it. The raw string is the credential; it is returned
// once and never derivable from the row again.
func (s *AuthService) CreateRefreshToken(userID uint, userAgent, ipAddress string) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(tokenBytes)

	refreshToken := &models.RefreshToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().Add(s.refreshTokenTTL),
	}
	if userAgent != "" {
		refreshToken.UserAgent = &userAgent
	}
	if ipAddress != "" {
		refreshToken.IPAddress = &ipAddress
	}

	if err := s.refreshTokens.Create(refreshToken); err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}
	return token, nil
}

// VerifyRefreshToken returns the owning user id for a usable token. Unknown,
// revoked, and expired tokens are indistinguishable to the caller.
func (s *AuthService) VerifyRefreshToken(token string) (uint, error) {
	refreshToken, err := s.refreshTokens.GetValidByToken(token)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, ErrInvalidToken
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up refresh token: %w", err)
	}
	return refreshToken.UserID, nil
}

// RevokeRefreshToken marks a token revoked. Reports whether a row matched;
// an already-revoked token still matches and is re-stamped.
func (s *AuthService) RevokeRefreshToken(token, reason string) (bool, error) {
	revoked, err := s.refreshTokens.Revoke(token, reason)
	if err != nil {
		return false, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return revoked, nil
}

// RevokeAllRefreshTokens revokes every active token of a user and returns the
// number of tokens actually revoked
func (s *AuthService) RevokeAllRefreshTokens(userID uint, reason string) (int64, error) {
	count, err := s.refreshTokens.RevokeAllForUser(userID, reason)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return count, nil
}

// Authenticate verifies credentials against a user found by email or
// username. It returns the user even when inactive; callers decide how to
// surface inactivity, so a disabled account is distinguishable from bad
// credentials only after the password checks out.
func (s *AuthService) Authenticate(identifier, password string) (*models.User, error) {
	user, err := s.users.GetByIdentifier(identifier)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !s.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Register creates a new user account
func (s *AuthService) Register(req *models.RegisterRequest) (*models.User, error) {
	if err := s.checkConflict(req.Email, req.Username); err != nil {
		return nil, err
	}

	hashed, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hashed,
		IsActive:     true,
	}

	if err := s.users.Create(user); err != nil {
		// Two concurrent registrations can pass the pre-check; the store
		// rejects the second insert and we translate it back to a conflict.
		if repository.IsUniqueViolation(err) {
			if cerr := s.checkConflict(req.Email, req.Username); cerr != nil {
				return nil, cerr
			}
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.publish("user.registered", user.ID, map[string]interface{}{"username": user.Username})
	return user, nil
}

func (s *AuthService) checkConflict(email, username string) error {
	existing, err := s.users.FindConflicting(email, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing.Email == email {
		return ErrEmailTaken
	}
	return ErrUsernameTaken
}

// Login authenticates and issues tokens. A refresh token is created only when
// rememberMe is set; userAgent and ipAddress are captured on it at issuance.
func (s *AuthService) Login(identifier, password string, rememberMe bool, userAgent, ipAddress string) (*models.TokenResponse, error) {
	user, err := s.Authenticate(identifier, password)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInactiveAccount
	}

	accessToken, err := s.CreateAccessToken(user.Username)
	if err != nil {
		return nil, err
	}

	resp := &models.TokenResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.accessTokenTTL.Seconds()),
	}

	if rememberMe {
		refreshToken, err := s.CreateRefreshToken(user.ID, userAgent, ipAddress)
		if err != nil {
			return nil, err
		}
		resp.RefreshToken = refreshToken
	}

	s.publish("user.login", user.ID, map[string]interface{}{"remember_me": rememberMe})
	return resp, nil
}

// Refresh exchanges a valid refresh token for a new access token. The refresh
// token itself stays usable until it expires or is revoked.
func (s *AuthService) Refresh(refreshToken string) (*models.TokenResponse, error) {
	userID, err := s.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInactiveAccount
	}

	accessToken, err := s.CreateAccessToken(user.Username)
	if err != nil {
		return nil, err
	}

	s.publish("token.refreshed", user.ID, nil)
	return &models.TokenResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.accessTokenTTL.Seconds()),
	}, nil
}

// Logout revokes a single refresh token. Issued access tokens remain valid
// until natural expiry.
func (s *AuthService) Logout(refreshToken string) error {
	revoked, err := s.RevokeRefreshToken(refreshToken, "logout")
	if err != nil {
		return err
	}
	if !revoked {
		return ErrTokenNotFound
	}
	s.publish("user.logout", 0, nil)
	return nil
}

// LogoutAll revokes every active refresh token of a user and returns the count
func (s *AuthService) LogoutAll(userID uint) (int64, error) {
	count, err := s.RevokeAllRefreshTokens(userID, "logout_all")
	if err != nil {
		return 0, err
	}
	s.publish("user.logout_all", userID, map[string]interface{}{"revoked": count})
	return count, nil
}

// ChangePassword verifies the current password, stores the new hash, and
// revokes all refresh tokens for the user
func (s *AuthService) ChangePassword(userID uint, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if !s.CheckPassword(currentPassword, user.PasswordHash) {
		return ErrPasswordIncorrect
	}

	hashed, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hashed
	if err := s.users.Update(user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if _, err := s.RevokeAllRefreshTokens(userID, "password_change"); err != nil {
		return err
	}

	s.publish("user.password_changed", userID, nil)
	return nil
}

// DeleteAccount revokes all refresh tokens and deletes the user row. Token
// rows are removed by the store's cascade.
func (s *AuthService) DeleteAccount(userID uint) error {
	if _, err := s.RevokeAllRefreshTokens(userID, "account_deleted"); err != nil {
		return err
	}
	if err := s.users.Delete(userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.publish("user.deleted", userID, nil)
	return nil
}

// GetUserByUsername loads a user for bearer authentication
func (s *AuthService) GetUserByUsername(username string) (*models.User, error) {
	user, err := s.users.GetByUsername(username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user, nil
}

// GetUserByID loads a user by primary key
func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	user, err := s.users.GetByID(id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user, nil
}

// CountActiveSessions counts the user's refresh tokens that are neither
// revoked nor expired
func (s *AuthService) CountActiveSessions(userID uint) (int64, error) {
	count, err := s.refreshTokens.CountActiveForUser(userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count refresh tokens: %w", err)
	}
	return count, nil
}

func (s *AuthService) publish(event string, userID uint, extra map[string]interface{}) {
	if s.audit == nil {
		return
	}
	s.audit.Publish(event, userID, extra)
}
