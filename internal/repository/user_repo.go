package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Eursukkul/group-events/internal/models"
)

// UserRepository is the directory of users the lifecycle driver consults
// for recipients and eligibility.
type UserRepository interface {
	UsernameOf(ctx context.Context, userID string) (string, error)
	ProfileOf(ctx context.Context, userID string) (models.Profile, error)
	UserIDsByFavoriteCategory(ctx context.Context, category string) ([]string, error)
	UserIDsWithPriorRegistration(ctx context.Context, creatorID, category string) ([]string, error)
	Upsert(ctx context.Context, user *models.User) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) UsernameOf(ctx context.Context, userID string) (string, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Select("id", "username").First(&user, "id = ?", userID).Error; err != nil {
		return "", storageErr("find username", err)
	}
	return user.Username, nil
}

func (r *userRepository) ProfileOf(ctx context.Context, userID string) (models.Profile, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return models.Profile{}, storageErr("find profile", err)
	}
	return models.Profile{UserID: user.ID, Sex: user.Sex, BirthDate: user.BirthDate}, nil
}

func (r *userRepository) UserIDsByFavoriteCategory(ctx context.Context, category string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.FavoriteCategory{}).
		Where("category = ?", category).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, storageErr("list users by favorite category", err)
	}
	return ids, nil
}

// UserIDsWithPriorRegistration returns everyone who registered for an
// earlier event of the same creator and category.
func (r *userRepository) UserIDsWithPriorRegistration(ctx context.Context, creatorID, category string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.Registration{}).
		Distinct("registrations.participant_id").
		Joins("JOIN events ON events.id = registrations.event_id").
		Where("events.creator_id = ? AND events.type = ?", creatorID, category).
		Where("registrations.participant_id <> ?", creatorID).
		Order("registrations.participant_id ASC").
		Pluck("registrations.participant_id", &ids).Error
	if err != nil {
		return nil, storageErr("list users with prior registration", err)
	}
	return ids, nil
}

func (r *userRepository) Upsert(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(user).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.FavoriteCategory{}).Error; err != nil {
			return err
		}
		for i := range user.Favorites {
			user.Favorites[i].UserID = user.ID
		}
		if len(user.Favorites) == 0 {
			return nil
		}
		return tx.Create(&user.Favorites).Error
	})
	return storageErr("upsert user", err)
}
