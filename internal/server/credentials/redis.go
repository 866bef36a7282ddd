package credentials

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/cache"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/redis/go-redis/v9"
)

// Key layout:
//
//	gophauth:access:<token>            AccessRecord JSON
//	gophauth:access-subject:<subject>  access token
//	gophauth:refresh:<token>           RefreshRecord JSON
//	gophauth:refresh-access:<access>   refresh token
func accessKey(id string) string { return cache.Key("access", id) }
func subjectKey(subject string) string { return cache.Key("access-subject", subject) }
func refreshKey(id string) string { return cache.Key("refresh", id) }
func refreshIndexKey(access string) string { return cache.Key("refresh-access", access) }

type RedisAccessStore struct {
	client redis.UniversalClient
}

func NewRedisAccessStore(c redis.UniversalClient) *RedisAccessStore {
	return &RedisAccessStore{client: c}
}

func (s *RedisAccessStore) Put(ctx context.Context, rec models.AccessRecord, ttl time.Duration) error {
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if err := cache.SetJSON(ctx, p, accessKey(rec.ID), rec, ttl); err != nil {
			return err
		}
		return p.Set(ctx, subjectKey(rec.SubjectID), rec.ID, ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("put access record: %w", err)
	}
	return nil
}

func (s *RedisAccessStore) GetByID(ctx context.Context, id string) (models.AccessRecord, error) {
	var rec models.AccessRecord
	if err := cache.GetJSON(ctx, s.client, accessKey(id), &rec); err != nil {
		return models.AccessRecord{}, err
	}
	return rec, nil
}

func (s *RedisAccessStore) GetBySubject(ctx context.Context, subjectID string) (models.AccessRecord, error) {
	id, err := cache.GetString(ctx, s.client, subjectKey(subjectID))
	if err != nil {
		return models.AccessRecord{}, err
	}
	return s.GetByID(ctx, id)
}

func (s *RedisAccessStore) DeleteByID(ctx context.Context, id string) error {
	rec, err := s.GetByID(ctx, id)
	if errors.Is(err, common.ErrorNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.client.Del(ctx, accessKey(id)).Err(); err != nil {
		return fmt.Errorf("delete access record: %w", err)
	}
	if _, err := cache.DeleteIfEquals(ctx, s.client, subjectKey(rec.SubjectID), id); err != nil {
		return err
	}
	return nil
}

func (s *RedisAccessStore) DeleteBySubject(ctx context.Context, subjectID string) error {
	id, err := cache.GetString(ctx, s.client, subjectKey(subjectID))
	if errors.Is(err, common.ErrorNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.client.Del(ctx, accessKey(id), subjectKey(subjectID)).Err(); err != nil {
		return fmt.Errorf("delete access record: %w", err)
	}
	return nil
}

type RedisRefreshStore struct {
	client redis.UniversalClient
}

func NewRedisRefreshStore(c redis.UniversalClient) *RedisRefreshStore {
	return &RedisRefreshStore{client: c}
}

func (s *RedisRefreshStore) Put(ctx context.Context, rec models.RefreshRecord, ttl time.Duration) error {
	prev, err := s.GetByID(ctx, rec.ID)
	switch {
	case err == nil && prev.Access.ID != rec.Access.ID:
		if _, err := cache.DeleteIfEquals(ctx, s.client, refreshIndexKey(prev.Access.ID), rec.ID); err != nil {
			return err
		}
	case err != nil && !errors.Is(err, common.ErrorNotFound):
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if err := cache.SetJSON(ctx, p, refreshKey(rec.ID), rec, ttl); err != nil {
			return err
		}
		return p.Set(ctx, refreshIndexKey(rec.Access.ID), rec.ID, ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("put refresh record: %w", err)
	}
	return nil
}

func (s *RedisRefreshStore) GetByID(ctx context.Context, id string) (models.RefreshRecord, error) {
	var rec models.RefreshRecord
	if err := cache.GetJSON(ctx, s.client, refreshKey(id), &rec); err != nil {
		return models.RefreshRecord{}, err
	}
	return rec, nil
}

func (s *RedisRefreshStore) Delete(ctx context.Context, id string) error {
	rec, err := s.GetByID(ctx, id)
	if errors.Is(err, common.ErrorNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.client.Del(ctx, refreshKey(id)).Err(); err != nil {
		return fmt.Errorf("delete refresh record: %w", err)
	}
	if _, err := cache.DeleteIfEquals(ctx, s.client, refreshIndexKey(rec.Access.ID), id); err != nil {
		return err
	}
	return nil
}

func (s *RedisRefreshStore) DeleteByAccess(ctx context.Context, accessID string) error {
	id, err := cache.GetString(ctx, s.client, refreshIndexKey(accessID))
	if errors.Is(err, common.ErrorNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.client.Del(ctx, refreshKey(id), refreshIndexKey(accessID)).Err(); err != nil {
		return fmt.Errorf("delete refresh record: %w", err)
	}
	return nil
}
