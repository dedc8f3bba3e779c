package store

import (
	"context"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/model"
)

// AnnouncementsStore abstracts announcement storage
type AnnouncementsStore interface {
	// ListAnnouncements returns pinned announcements first, then newest.
	ListAnnouncements(ctx context.Context, limit, offset int) ([]model.Announcement, error)

	CreateAnnouncement(ctx context.Context, a *model.Announcement) error
}
