package store

import (
	"context"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/audit"
)

type AuditLogsStore interface {
	// List returns persisted audit messages, newest first.
	List(ctx context.Context, opts audit.ListOptions) ([]audit.Message, error)
}
