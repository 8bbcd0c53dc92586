package service

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/Eursukkul/group-events/internal/apperror"
	"github.com/Eursukkul/group-events/internal/models"
	"github.com/Eursukkul/group-events/internal/repository"
	"github.com/Eursukkul/group-events/internal/schema"
)

// UserService maintains the directory profiles the lifecycle reads and
// exposes each user's stored notifications.
type UserService interface {
	UpsertUser(ctx context.Context, user *models.User) error
	Notifications(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
}

type userService struct {
	users         repository.UserRepository
	notifications repository.NotificationRepository
	log           zerolog.Logger
}

func NewUserService(users repository.UserRepository, notifications repository.NotificationRepository, log zerolog.Logger) UserService {
	return &userService{users: users, notifications: notifications, log: log}
}

func (s *userService) UpsertUser(ctx context.Context, user *models.User) error {
	if user.ID == "" || user.Username == "" {
		return apperror.New(apperror.InvalidInput, "user id and username are required")
	}

	// Favorites must name a known event type; duplicates collapse.
	seen := make(map[string]bool, len(user.Favorites))
	favorites := make([]models.FavoriteCategory, 0, len(user.Favorites))
	for _, f := range user.Favorites {
		if _, err := schema.Lookup(f.Category); err != nil {
			return err
		}
		if seen[f.Category] {
			continue
		}
		seen[f.Category] = true
		favorites = append(favorites, models.FavoriteCategory{UserID: user.ID, Category: f.Category})
	}
	sort.Slice(favorites, func(i, j int) bool { return favorites[i].Category < favorites[j].Category })
	user.Favorites = favorites

	if err := s.users.Upsert(ctx, user); err != nil {
		return err
	}
	s.log.Info().Str("user_id", user.ID).Int("favorites", len(favorites)).Msg("user upserted")
	return nil
}

func (s *userService) Notifications(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	return s.notifications.ListByRecipient(ctx, userID, unreadOnly)
}

func (s *userService) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.notifications.MarkRead(ctx, userID, notificationID)
}
