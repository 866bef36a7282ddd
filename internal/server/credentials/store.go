// Package credentials is the session cache: active access records with a
// per-subject index, and refresh records each holding a copy of the access
// record they are paired with.
//
// Lookups of absent entries return common.ErrorNotFound. Deletes are
// idempotent. Entry TTLs are enforced by the backend.
package credentials

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

type AccessStore interface {
	Put(ctx context.Context, rec models.AccessRecord, ttl time.Duration) error
	GetByID(ctx context.Context, id string) (models.AccessRecord, error)
	GetBySubject(ctx context.Context, subjectID string) (models.AccessRecord, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteBySubject(ctx context.Context, subjectID string) error
}

type RefreshStore interface {
	Put(ctx context.Context, rec models.RefreshRecord, ttl time.Duration) error
	GetByID(ctx context.Context, id string) (models.RefreshRecord, error)
	Delete(ctx context.Context, id string) error
	// DeleteByAccess removes the refresh record currently paired with the
	// given access record id.
	DeleteByAccess(ctx context.Context, accessID string) error
}
