package repository

import (
	"context"

	"family_hub_server/internal/model"

	"gorm.io/gorm"
)

type familyRepository struct {
	db *gorm.DB
}

// NewFamilyRepository 创建家庭 Repository
func NewFamilyRepository(db *gorm.DB) FamilyRepository {
	return &familyRepository{db: db}
}

func (r *familyRepository) FindByID(ctx context.Context, id string) (*model.Family, error) {
	var family model.Family
	if err := r.db.WithContext(ctx).First(&family, "id = ?", id).Error; err != nil {
		return nil, wrapDBErrorf(err, "find family id=%s", id)
	}
	return &family, nil
}

func (r *familyRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Family, error) {
	var families []model.Family
	if len(ids) == 0 {
		return families, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&families).Error; err != nil {
		return nil, wrapDBError(err, "find families by ids")
	}
	return families, nil
}

func (r *familyRepository) FindByMember(ctx context.Context, userID string) ([]model.Family, error) {
	var families []model.Family
	err := r.db.WithContext(ctx).
		Select("families.*").
		Joins("JOIN family_members ON family_members.family_id = families.id").
		Where("family_members.user_id = ?", userID).
		Order("families.created_at ASC").
		Find(&families).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "find families of user=%s", userID)
	}
	return families, nil
}

func (r *familyRepository) FindIDsByCreator(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&model.Family{}).Where("created_by = ?", userID).Pluck("id", &ids).Error; err != nil {
		return nil, wrapDBError(err, "find families by creator")
	}
	return ids, nil
}

func (r *familyRepository) Create(ctx context.Context, family *model.Family) error {
	if err := r.db.WithContext(ctx).Create(family).Error; err != nil {
		return wrapDBError(err, "create family")
	}
	return nil
}

func (r *familyRepository) Update(ctx context.Context, id string, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(&model.Family{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return wrapDBError(err, "update family")
	}
	return nil
}

func (r *familyRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Family{}).Error; err != nil {
		return wrapDBError(err, "delete family")
	}
	return nil
}
