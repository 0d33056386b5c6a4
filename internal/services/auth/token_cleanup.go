package auth

import (
	"time"

	"github.com/openauthstack/user-auth-service/internal/database/repository"

	"github.com/sirupsen/logrus"
)

// TokenCleanupService periodically deletes expired and revoked refresh token
// rows. Validity never depends on it; it only keeps the table small.
type TokenCleanupService struct {
	refreshTokens repository.RefreshTokenStore
	interval      time.Duration
	stopChan      chan struct{}
}

func NewTokenCleanupService(refreshTokens repository.RefreshTokenStore) *TokenCleanupService {
	return &TokenCleanupService{
		refreshTokens: refreshTokens,
		interval:      24 * time.Hour,
		stopChan:      make(chan struct{}),
	}
}

// Start starts the cleanup loop
func (s *TokenCleanupService) Start() {
	go s.run()
	logrus.Info("Token cleanup service started")
}

// Stop stops the cleanup loop
func (s *TokenCleanupService) Stop() {
	close(s.stopChan)
	logrus.Info("Token cleanup service stopped")
}

func (s *TokenCleanupService) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopChan:
			return
		}
	}
}

func (s *TokenCleanupService) cleanup() {
	if err := s.refreshTokens.CleanupStale(); err != nil {
		logrus.Errorf("Failed to clean up refresh tokens: %v", err)
		return
	}
	logrus.Debug("Refresh token cleanup completed")
}

// SetInterval sets the cleanup interval
func (s *TokenCleanupService) SetInterval(interval time.Duration) {
	s.interval = interval
}
