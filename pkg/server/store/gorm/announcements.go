package gorm

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/model"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/server/store"
)

// Ensure AnnouncementsStore implements store.AnnouncementsStore
var _ store.AnnouncementsStore = (*AnnouncementsStore)(nil)

// AnnouncementsStore implements store.AnnouncementsStore using GORM
type AnnouncementsStore struct {
	db *gorm.DB
}

// NewAnnouncementsStore creates a new AnnouncementsStore
func NewAnnouncementsStore(db *gorm.DB) *AnnouncementsStore {
	return &AnnouncementsStore{db: db}
}

func (s *AnnouncementsStore) ListAnnouncements(ctx context.Context, limit, offset int) ([]model.Announcement, error) {
	var list []model.Announcement
	query := s.db.WithContext(ctx).Order("pinned DESC, created_at DESC, id")
	if err := paginate(query, limit, offset).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	return list, nil
}

func (s *AnnouncementsStore) CreateAnnouncement(ctx context.Context, a *model.Announcement) error {
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}
