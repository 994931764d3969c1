package event

import (
	"context"

	"lever/core"
	"lever/store"

	"github.com/fox-one/pkg/store/db"
)

type eventStore struct {
	db *db.DB
}

// New new event store
func New(db *db.DB) core.IEventStore {
	return &eventStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		return db.Update().Model(core.Event{}).AutoMigrate(core.Event{}).Error
	})
}

func (s *eventStore) Create(ctx context.Context, event *core.Event) error {
	return store.Update(ctx, s.db).Create(event).Error
}

func (s *eventStore) List(ctx context.Context, fromID uint64, limit int) ([]*core.Event, error) {
	var events []*core.Event
	if err := store.View(ctx, s.db).
		Where("id > ?", fromID).
		Order("id").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (s *eventStore) ListByUser(ctx context.Context, userID string, fromID uint64, limit int) ([]*core.Event, error) {
	var events []*core.Event
	if err := store.View(ctx, s.db).
		Where("user_id = ? and id > ?", userID, fromID).
		Order("id").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
