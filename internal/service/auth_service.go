package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"omcounter/internal/models"
	"omcounter/internal/repository"
	"omcounter/internal/security"
	"omcounter/internal/validation"

	"github.com/google/uuid"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo        *repository.UserRepository
	statsRepo       *repository.StatsRepository
	sessionDuration time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, statsRepo *repository.StatsRepository, sessionDuration time.Duration) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		statsRepo:       statsRepo,
		sessionDuration: sessionDuration,
	}
}

// Register creates a new user account with zero-default practice stats
func (s *AuthService) Register(ctx context.Context, emailService *EmailService, email, password, name string) (*models.User, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	existingUser, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.CreateUser(uuid.New().String(), email, passwordHash, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if _, err := s.statsRepo.EnsureStats(user.ID); err != nil {
		// Stats can be created lazily on first sign-in instead
		log.Printf("Warning: failed to create stats for user %s: %v", user.ID, err)
	}

	if emailService != nil && emailService.IsEnabled() {
		if err := emailService.SendWelcomeEmail(ctx, user.Email, user.Name); err != nil {
			log.Printf("Warning: failed to send welcome email to %s: %v", user.Email, err)
		}
	}

	return user, nil
}

// Login authenticates a user, creates a session and reconciles the
// streak against the clock
func (s *AuthService) Login(email, password string) (*models.Session, *models.User, error) {
	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.startSession(user)
	if err != nil {
		return nil, nil, err
	}

	return session, user, nil
}

// startSession creates a session and runs the once-per-sign-in
// bookkeeping: last-login touch, stats row creation, streak reset when
// the last chanted date is neither today nor yesterday.
func (s *AuthService) startSession(user *models.User) (*models.Session, error) {
	sessionID := security.GenerateSessionID()
	expiresAt := time.Now().Add(s.sessionDuration)

	session, err := s.userRepo.CreateSession(sessionID, user.ID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err := s.userRepo.TouchLastLogin(user.ID); err != nil {
		log.Printf("Warning: failed to record last login for user %s: %v", user.ID, err)
	}

	stats, err := s.statsRepo.EnsureStats(user.ID)
	if err != nil {
		log.Printf("Warning: failed to load stats for user %s: %v", user.ID, err)
		return session, nil
	}

	if broken := streakOnSignIn(stats.StreakDays, stats.LastChantedDate, localDate(time.Now())); broken != stats.StreakDays {
		stats.StreakDays = broken
		if err := s.statsRepo.SaveStats(stats); err != nil {
			log.Printf("Warning: failed to reset streak for user %s: %v", user.ID, err)
		}
	}

	return session, nil
}

// ValidateSession checks if a session is valid and returns the associated user
func (s *AuthService) ValidateSession(sessionID string) (*models.User, error) {
	session, err := s.userRepo.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if session.IsExpired() {
		_ = s.userRepo.DeleteSession(sessionID)
		return nil, ErrSessionExpired
	}

	user, err := s.userRepo.GetUserByID(session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrSessionNotFound
	}

	return user, nil
}

// Logout invalidates a session
func (s *AuthService) Logout(sessionID string) error {
	if err := s.userRepo.DeleteSession(sessionID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes expired sessions from the database
func (s *AuthService) CleanupExpiredSessions() error {
	if err := s.userRepo.DeleteExpiredSessions(); err != nil {
		return fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	return nil
}

// OAuthLogin authenticates or creates a user using an OAuth provider
func (s *AuthService) OAuthLogin(provider, subject, email, name string) (*models.Session, *models.User, error) {
	if provider == "" || subject == "" {
		return nil, nil, errors.New("missing oauth provider information")
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.GetUserByOAuth(provider, subject)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lookup oauth user: %w", err)
	}

	if user == nil {
		existingUser, err := s.userRepo.GetUserByEmail(email)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to check existing user: %w", err)
		}
		if existingUser != nil {
			if existingUser.OAuthProvider != "" && existingUser.OAuthProvider != provider {
				return nil, nil, ErrEmailTaken
			}
			if err := s.userRepo.LinkOAuthProvider(existingUser.ID, provider, subject); err != nil {
				return nil, nil, fmt.Errorf("failed to link oauth provider: %w", err)
			}
			user = existingUser
		} else {
			if name == "" {
				name = strings.Split(email, "@")[0]
			}
			randomPasswordHash, err := security.HashPassword(security.GenerateSessionID())
			if err != nil {
				return nil, nil, fmt.Errorf("failed to generate oauth password hash: %w", err)
			}
			newUser, err := s.userRepo.CreateUser(uuid.New().String(), email, randomPasswordHash, name)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create oauth user: %w", err)
			}
			if err := s.userRepo.LinkOAuthProvider(newUser.ID, provider, subject); err != nil {
				return nil, nil, fmt.Errorf("failed to link oauth provider: %w", err)
			}
			user = newUser
		}
	}

	session, err := s.startSession(user)
	if err != nil {
		return nil, nil, err
	}

	return session, user, nil
}

// UpdateName changes the user's display name. Group rosters keep the
// denormalized copy taken at join time.
func (s *AuthService) UpdateName(userID, name string) error {
	if err := validation.ValidateName(name); err != nil {
		return err
	}
	if err := s.userRepo.UpdateName(userID, name); err != nil {
		return fmt.Errorf("failed to update name: %w", err)
	}
	return nil
}
