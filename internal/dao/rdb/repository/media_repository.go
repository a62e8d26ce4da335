package repository

import (
	"context"

	"family_hub_server/internal/model"

	"gorm.io/gorm"
)

type mediaRepository struct {
	db *gorm.DB
}

// NewMediaRepository 创建媒体 Repository
func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) FindByID(ctx context.Context, id string) (*model.Media, error) {
	var media model.Media
	if err := r.db.WithContext(ctx).First(&media, "id = ?", id).Error; err != nil {
		return nil, wrapDBErrorf(err, "find media id=%s", id)
	}
	return &media, nil
}

func (r *mediaRepository) ListByUploader(ctx context.Context, userID string, filter MediaFilter) ([]model.Media, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Media{}).Where("uploaded_by_id = ?", userID)
	return r.list(query, filter, "list media of user")
}

func (r *mediaRepository) ListForFamily(ctx context.Context, familyID string, urls []string, filter MediaFilter) ([]model.Media, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Media{})
	if len(urls) > 0 {
		query = query.Where("(family_id = ? OR url IN ?)", familyID, urls)
	} else {
		query = query.Where("family_id = ?", familyID)
	}
	return r.list(query, filter, "list media of family")
}

func (r *mediaRepository) list(query *gorm.DB, filter MediaFilter, msg string) ([]model.Media, int64, error) {
	var (
		items []model.Media
		total int64
	)
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapDBError(err, msg)
	}
	if err := query.Order("created_at DESC").Scopes(paginate(filter.Page)).Find(&items).Error; err != nil {
		return nil, 0, wrapDBError(err, msg)
	}
	return items, total, nil
}

func (r *mediaRepository) Create(ctx context.Context, media *model.Media) error {
	if err := r.db.WithContext(ctx).Create(media).Error; err != nil {
		return wrapDBError(err, "create media")
	}
	return nil
}

func (r *mediaRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Media{}).Error; err != nil {
		return wrapDBError(err, "delete media")
	}
	return nil
}

func (r *mediaRepository) DeleteByUploader(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Where("uploaded_by_id = ?", userID).Delete(&model.Media{}).Error; err != nil {
		return wrapDBError(err, "delete media of user")
	}
	return nil
}

// ClearFamily 家庭被删除后解除媒体与家庭的关联，文件本身保留给上传者
func (r *mediaRepository) ClearFamily(ctx context.Context, familyID string) error {
	err := r.db.WithContext(ctx).Model(&model.Media{}).
		Where("family_id = ?", familyID).
		Update("family_id", nil).Error
	if err != nil {
		return wrapDBError(err, "detach media from family")
	}
	return nil
}
