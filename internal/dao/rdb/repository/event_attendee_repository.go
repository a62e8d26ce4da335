package repository

import (
	"context"
	"time"

	"family_hub_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type eventAttendeeRepository struct {
	db *gorm.DB
}

// NewEventAttendeeRepository 创建出席记录 Repository
func NewEventAttendeeRepository(db *gorm.DB) EventAttendeeRepository {
	return &eventAttendeeRepository{db: db}
}

func (r *eventAttendeeRepository) Find(ctx context.Context, eventID, userID string) (*model.EventAttendee, error) {
	var attendee model.EventAttendee
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		First(&attendee).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "find attendee event=%s user=%s", eventID, userID)
	}
	return &attendee, nil
}

func (r *eventAttendeeRepository) ListByEvent(ctx context.Context, eventID string) ([]model.EventAttendee, error) {
	var attendees []model.EventAttendee
	if err := r.db.WithContext(ctx).Where("event_id = ?", eventID).Order("created_at ASC").Find(&attendees).Error; err != nil {
		return nil, wrapDBError(err, "list attendees")
	}
	return attendees, nil
}

func (r *eventAttendeeRepository) CreateBatch(ctx context.Context, attendees []model.EventAttendee) error {
	if len(attendees) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).CreateInBatches(attendees, 100).Error; err != nil {
		return wrapDBError(err, "create attendees")
	}
	return nil
}

func (r *eventAttendeeRepository) Upsert(ctx context.Context, eventID, userID, status string) error {
	attendee := model.EventAttendee{
		EventID:   eventID,
		UserID:    userID,
		Status:    status,
		UpdatedAt: time.Now(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(&attendee).Error
	if err != nil {
		return wrapDBError(err, "upsert attendee")
	}
	return nil
}

func (r *eventAttendeeRepository) DeleteByEvents(ctx context.Context, eventIDs []string) error {
	if len(eventIDs) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Where("event_id IN ?", eventIDs).Delete(&model.EventAttendee{}).Error; err != nil {
		return wrapDBError(err, "delete attendees of events")
	}
	return nil
}

func (r *eventAttendeeRepository) DeleteByUser(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.EventAttendee{}).Error; err != nil {
		return wrapDBError(err, "delete attendee rows of user")
	}
	return nil
}
