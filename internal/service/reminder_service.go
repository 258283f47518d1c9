package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"omcounter/internal/models"
	"omcounter/internal/repository"
	"omcounter/internal/validation"
)

// ReminderService owns daily practice reminders: per-user settings and
// the polling loop that fires them. Firing writes an in-app
// notification and, when enabled, sends an email; each channel is
// best-effort and failures never block the other.
type ReminderService struct {
	reminderRepo *repository.ReminderRepository
	statsRepo    *repository.StatsRepository
	userRepo     *repository.UserRepository
	emailService *EmailService
	pollInterval time.Duration
}

// NewReminderService creates a new reminder service
func NewReminderService(reminderRepo *repository.ReminderRepository, statsRepo *repository.StatsRepository, userRepo *repository.UserRepository, emailService *EmailService, pollInterval time.Duration) *ReminderService {
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	return &ReminderService{
		reminderRepo: reminderRepo,
		statsRepo:    statsRepo,
		userRepo:     userRepo,
		emailService: emailService,
		pollInterval: pollInterval,
	}
}

// GetSettings returns the user's reminder settings, defaulting to a
// disabled 07:00 reminder when none are stored
func (s *ReminderService) GetSettings(userID string) (*models.ReminderSettings, error) {
	settings, err := s.reminderRepo.GetSettings(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reminder settings: %w", err)
	}
	if settings == nil {
		settings = &models.ReminderSettings{
			UserID:    userID,
			Enabled:   false,
			TimeOfDay: "07:00",
		}
	}
	return settings, nil
}

// UpdateSettings validates and persists reminder settings
func (s *ReminderService) UpdateSettings(userID string, enabled bool, timeOfDay string, emailEnabled bool) (*models.ReminderSettings, error) {
	if err := validation.ValidateReminderTime(timeOfDay); err != nil {
		return nil, err
	}

	settings := &models.ReminderSettings{
		UserID:       userID,
		Enabled:      enabled,
		TimeOfDay:    timeOfDay,
		EmailEnabled: emailEnabled,
	}
	if err := s.reminderRepo.SaveSettings(settings); err != nil {
		return nil, fmt.Errorf("failed to save reminder settings: %w", err)
	}
	return settings, nil
}

// ListNotifications returns the user's unread in-app notifications
func (s *ReminderService) ListNotifications(userID string) ([]models.Notification, error) {
	notifications, err := s.reminderRepo.ListUnreadNotifications(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkNotificationsRead marks all of the user's notifications as read
func (s *ReminderService) MarkNotificationsRead(userID string) error {
	if err := s.reminderRepo.MarkNotificationsRead(userID); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

// Run polls the clock until ctx is cancelled, firing due reminders.
// The poll interval is well under a minute, so the fired-minute guard
// in the store keeps each reminder to at most one firing per matching
// minute.
func (s *ReminderService) Run(ctx context.Context) {
	log.Printf("Reminder scheduler started (poll interval %s)", s.pollInterval)
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Reminder scheduler stopped")
			return
		case now := <-ticker.C:
			s.fireDue(ctx, now)
		}
	}
}

// fireDue fires every reminder whose configured time matches the
// current minute and has not fired during it yet
func (s *ReminderService) fireDue(ctx context.Context, now time.Time) {
	minute := now.Format("15:04")
	date := localDate(now)

	due, err := s.reminderRepo.ListDue(minute)
	if err != nil {
		log.Printf("Reminder poll failed: %v", err)
		return
	}

	for _, settings := range due {
		if settings.FiredThisMinute(date, minute) {
			continue
		}
		// Mark before delivering so a slow or failing channel cannot
		// cause a refire on the next poll
		if err := s.reminderRepo.MarkFired(settings.UserID, minute, date); err != nil {
			log.Printf("Failed to mark reminder fired for user %s: %v", settings.UserID, err)
			continue
		}
		s.deliver(ctx, settings)
	}
}

// deliver fans a fired reminder out to its channels independently
func (s *ReminderService) deliver(ctx context.Context, settings models.ReminderSettings) {
	streakDays := 0
	if stats, err := s.statsRepo.GetStats(settings.UserID); err != nil {
		log.Printf("Failed to load stats for reminder to user %s: %v", settings.UserID, err)
	} else if stats != nil {
		streakDays = stats.StreakDays
	}

	message := "Time for your daily practice. One chant keeps the streak alive."
	if streakDays > 0 {
		message = fmt.Sprintf("Time for your daily practice. Your %d day streak is waiting.", streakDays)
	}
	if err := s.reminderRepo.CreateNotification(settings.UserID, "reminder", message); err != nil {
		log.Printf("Failed to create reminder notification for user %s: %v", settings.UserID, err)
	}

	if settings.EmailEnabled && s.emailService != nil && s.emailService.IsEnabled() {
		user, err := s.userRepo.GetUserByID(settings.UserID)
		if err != nil || user == nil {
			log.Printf("Failed to load user %s for reminder email: %v", settings.UserID, err)
			return
		}
		if err := s.emailService.SendReminderEmail(ctx, user.Email, user.Name, streakDays); err != nil {
			log.Printf("Failed to send reminder email to %s: %v", user.Email, err)
		}
	}
}
