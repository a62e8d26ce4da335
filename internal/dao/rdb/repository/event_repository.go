package repository

import (
	"context"

	"family_hub_server/internal/model"

	"gorm.io/gorm"
)

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository 创建日程 Repository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) FindByID(ctx context.Context, id string) (*model.Event, error) {
	var event model.Event
	if err := r.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		return nil, wrapDBErrorf(err, "find event id=%s", id)
	}
	return &event, nil
}

func (r *eventRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Event, error) {
	var events []model.Event
	if len(ids) == 0 {
		return events, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&events).Error; err != nil {
		return nil, wrapDBError(err, "find events by ids")
	}
	return events, nil
}

// ListByFamily 按开始时间升序返回家庭日程，From/To 作用于 start_date
func (r *eventRepository) ListByFamily(ctx context.Context, familyID string, filter EventFilter) ([]model.Event, error) {
	var events []model.Event
	query := r.db.WithContext(ctx).Where("family_id = ?", familyID)
	if filter.From != nil {
		query = query.Where("start_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("start_date <= ?", *filter.To)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if err := query.Order("start_date ASC").Find(&events).Error; err != nil {
		return nil, wrapDBError(err, "list family events")
	}
	return events, nil
}

func (r *eventRepository) ListIDsByFamily(ctx context.Context, familyID string) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&model.Event{}).Where("family_id = ?", familyID).Pluck("id", &ids).Error; err != nil {
		return nil, wrapDBError(err, "list event ids of family")
	}
	return ids, nil
}

func (r *eventRepository) Create(ctx context.Context, event *model.Event) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return wrapDBError(err, "create event")
	}
	return nil
}

func (r *eventRepository) Update(ctx context.Context, id string, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(&model.Event{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return wrapDBError(err, "update event")
	}
	return nil
}

func (r *eventRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.Event{}).Error; err != nil {
		return wrapDBError(err, "delete events")
	}
	return nil
}
