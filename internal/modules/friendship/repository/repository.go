package repository

import (
	"context"
	"time"

	"anoa.com/alumnihub/internal/entity"
	"anoa.com/alumnihub/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FriendshipRepository interface {
	// Find returns the directed edge userID -> friendID.
	Find(ctx context.Context, userID, friendID uuid.UUID) (*entity.Friendship, error)
	Create(ctx context.Context, f *entity.Friendship) error
	// Accept confirms the pending edge friendID -> userID and stores the
	// reciprocal edge. It returns gorm.ErrRecordNotFound when no request exists.
	Accept(ctx context.Context, userID, friendID uuid.UUID) error
	ListAccepted(ctx context.Context, userID uuid.UUID) ([]*entity.User, error)
	ListPending(ctx context.Context, userID uuid.UUID) ([]*entity.User, error)
	ListSent(ctx context.Context, userID uuid.UUID) ([]*entity.User, error)
	Suggest(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.User, error)
}

type friendshipRepository struct {
	h database.Handle
}

func NewFriendshipRepository(h database.Handle) FriendshipRepository {
	return &friendshipRepository{h: h}
}

func withDetail(db *gorm.DB) *gorm.DB {
	return db.Preload("Detail").Preload("Detail.Department").Preload("Detail.Dormitory")
}

func (r *friendshipRepository) Find(ctx context.Context, userID, friendID uuid.UUID) (*entity.Friendship, error) {
	db, cancel := r.h.WithContext(ctx)
	defer cancel()

	var f entity.Friendship
	if err := db.Where("user_id = ? AND friend_id = ?", userID, friendID).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *friendshipRepository) Create(ctx context.Context, f *entity.Friendship) error {
	db, cancel := r.h.WithContext(ctx)
	defer cancel()

	return db.Create(f).Error
}

func (r *friendshipRepository) Accept(ctx context.Context, userID, friendID uuid.UUID) error {
	db, cancel := r.h.WithContext(ctx)
	defer cancel()

	return db.Transaction(func(tx *gorm.DB) error {
		var request entity.Friendship
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND friend_id = ?", friendID, userID).
			First(&request).Error; err != nil {
			return err
		}

		now := time.Now()
		if !request.Accepted {
			if err := tx.Model(&entity.Friendship{}).
				Where("user_id = ? AND friend_id = ?", friendID, userID).
				Updates(map[string]interface{}{"accepted": true, "updated_at": now}).Error; err != nil {
				return err
			}
		}

		reciprocal := entity.Friendship{UserID: userID, FriendID: friendID, Accepted: true}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "friend_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"accepted": true, "updated_at": now}),
		}).Create(&reciprocal).Error
	})
}

func (r *friendshipRepository) listUsers(ctx context.Context, cond string, args ...interface{}) ([]*entity.User, error) {
	db, cancel := r.h.WithContext(ctx)
	defer cancel()

	var users []*entity.User
	if err := withDetail(db).Where(cond, args...).Order("name ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ListAccepted counts an accepted edge in either direction.
func (r *friendshipRepository) ListAccepted(ctx context.Context, userID uuid.UUID) ([]*entity.User, error) {
	return r.listUsers(ctx, `id IN (SELECT friend_id FROM friendships WHERE user_id = ? AND accepted = true)
		OR id IN (SELECT user_id FROM friendships WHERE friend_id = ? AND accepted = true)`, userID, userID)
}

// ListPending returns incoming requests the user has not answered. A pending
// request the user sent the other way does not hide it.
func (r *friendshipRepository) ListPending(ctx context.Context, userID uuid.UUID) ([]*entity.User, error) {
	return r.listUsers(ctx, `id IN (SELECT f.user_id FROM friendships f
		WHERE f.friend_id = ? AND f.accepted = false
		AND NOT EXISTS (SELECT 1 FROM friendships r
			WHERE r.user_id = ? AND r.friend_id = f.user_id AND r.accepted = true))`, userID, userID)
}

func (r *friendshipRepository) ListSent(ctx context.Context, userID uuid.UUID) ([]*entity.User, error) {
	return r.listUsers(ctx, `id IN (SELECT friend_id FROM friendships WHERE user_id = ? AND accepted = false)`, userID)
}

// Suggest returns friends of friends the user has no edge with in either
// direction.
func (r *friendshipRepository) Suggest(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.User, error) {
	db, cancel := r.h.WithContext(ctx)
	defer cancel()

	var users []*entity.User
	err := withDetail(db).
		Where(`id IN (SELECT f2.friend_id FROM friendships f1
			JOIN friendships f2 ON f2.user_id = f1.friend_id AND f2.accepted = true
			WHERE f1.user_id = ? AND f1.accepted = true)`, userID).
		Where("id <> ?", userID).
		Where(`NOT EXISTS (SELECT 1 FROM friendships x
			WHERE (x.user_id = ? AND x.friend_id = users.id) OR (x.user_id = users.id AND x.friend_id = ?))`, userID, userID).
		Order("name ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
