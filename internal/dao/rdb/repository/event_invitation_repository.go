package repository

import (
	"context"

	"family_hub_server/internal/model"

	"gorm.io/gorm"
)

type eventInvitationRepository struct {
	db *gorm.DB
}

// NewEventInvitationRepository 创建日程邀请 Repository
func NewEventInvitationRepository(db *gorm.DB) EventInvitationRepository {
	return &eventInvitationRepository{db: db}
}

func (r *eventInvitationRepository) FindByID(ctx context.Context, id string) (*model.EventInvitation, error) {
	var invitation model.EventInvitation
	if err := r.db.WithContext(ctx).First(&invitation, "id = ?", id).Error; err != nil {
		return nil, wrapDBErrorf(err, "find invitation id=%s", id)
	}
	return &invitation, nil
}

func (r *eventInvitationRepository) FindByEventAndUser(ctx context.Context, eventID, userID string) (*model.EventInvitation, error) {
	var invitation model.EventInvitation
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Order("created_at DESC").
		First(&invitation).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "find invitation event=%s user=%s", eventID, userID)
	}
	return &invitation, nil
}

func (r *eventInvitationRepository) ListByEvent(ctx context.Context, eventID string) ([]model.EventInvitation, error) {
	var invitations []model.EventInvitation
	if err := r.db.WithContext(ctx).Where("event_id = ?", eventID).Order("created_at ASC").Find(&invitations).Error; err != nil {
		return nil, wrapDBError(err, "list invitations of event")
	}
	return invitations, nil
}

func (r *eventInvitationRepository) ListByUser(ctx context.Context, userID string) ([]model.EventInvitation, error) {
	var invitations []model.EventInvitation
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&invitations).Error; err != nil {
		return nil, wrapDBError(err, "list invitations of user")
	}
	return invitations, nil
}

func (r *eventInvitationRepository) Create(ctx context.Context, invitation *model.EventInvitation) error {
	if err := r.db.WithContext(ctx).Create(invitation).Error; err != nil {
		return wrapDBError(err, "create invitation")
	}
	return nil
}

func (r *eventInvitationRepository) UpdateStatus(ctx context.Context, id, status string) error {
	if err := r.db.WithContext(ctx).Model(&model.EventInvitation{}).Where("id = ?", id).Update("status", status).Error; err != nil {
		return wrapDBError(err, "update invitation status")
	}
	return nil
}

func (r *eventInvitationRepository) DeleteByEvents(ctx context.Context, eventIDs []string) error {
	if len(eventIDs) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Where("event_id IN ?", eventIDs).Delete(&model.EventInvitation{}).Error; err != nil {
		return wrapDBError(err, "delete invitations of events")
	}
	return nil
}

func (r *eventInvitationRepository) DeleteByUser(ctx context.Context, userID string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? OR invited_by = ?", userID, userID).
		Delete(&model.EventInvitation{}).Error
	if err != nil {
		return wrapDBError(err, "delete invitations of user")
	}
	return nil
}
