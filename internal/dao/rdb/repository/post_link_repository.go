package repository

import (
	"context"

	"family_hub_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type postFamilyRepository struct {
	db *gorm.DB
}

// NewPostFamilyRepository 创建动态-家庭关联 Repository
func NewPostFamilyRepository(db *gorm.DB) PostFamilyRepository {
	return &postFamilyRepository{db: db}
}

// CreateBatch 重复的关联会被忽略
func (r *postFamilyRepository) CreateBatch(ctx context.Context, links []model.PostFamily) error {
	if len(links) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error; err != nil {
		return wrapDBError(err, "link post to families")
	}
	return nil
}

func (r *postFamilyRepository) FamilyIDsByPost(ctx context.Context, postID string) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&model.PostFamily{}).Where("post_id = ?", postID).Pluck("family_id", &ids).Error; err != nil {
		return nil, wrapDBError(err, "list families of post")
	}
	return ids, nil
}

// FamilyIDsByPosts 批量查询动态关联的家庭，key 为动态 ID
func (r *postFamilyRepository) FamilyIDsByPosts(ctx context.Context, postIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	var links []model.PostFamily
	if err := r.db.WithContext(ctx).Where("post_id IN ?", postIDs).Find(&links).Error; err != nil {
		return nil, wrapDBError(err, "list families of posts")
	}
	for _, l := range links {
		out[l.PostID] = append(out[l.PostID], l.FamilyID)
	}
	return out, nil
}

func (r *postFamilyRepository) DeleteByPosts(ctx context.Context, postIDs []string) error {
	if len(postIDs) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Where("post_id IN ?", postIDs).Delete(&model.PostFamily{}).Error; err != nil {
		return wrapDBError(err, "unlink posts from families")
	}
	return nil
}

func (r *postFamilyRepository) DeleteByFamily(ctx context.Context, familyID string) error {
	if err := r.db.WithContext(ctx).Where("family_id = ?", familyID).Delete(&model.PostFamily{}).Error; err != nil {
		return wrapDBError(err, "unlink family posts")
	}
	return nil
}

type postEventRepository struct {
	db *gorm.DB
}

// NewPostEventRepository 创建动态-日程关联 Repository
func NewPostEventRepository(db *gorm.DB) PostEventRepository {
	return &postEventRepository{db: db}
}

func (r *postEventRepository) CreateBatch(ctx context.Context, links []model.PostEvent) error {
	if len(links) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error; err != nil {
		return wrapDBError(err, "link post to events")
	}
	return nil
}

func (r *postEventRepository) EventIDsByPost(ctx context.Context, postID string) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&model.PostEvent{}).Where("post_id = ?", postID).Pluck("event_id", &ids).Error; err != nil {
		return nil, wrapDBError(err, "list events of post")
	}
	return ids, nil
}

// EventIDsByPosts 批量查询动态关联的日程，key 为动态 ID
func (r *postEventRepository) EventIDsByPosts(ctx context.Context, postIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	var links []model.PostEvent
	if err := r.db.WithContext(ctx).Where("post_id IN ?", postIDs).Find(&links).Error; err != nil {
		return nil, wrapDBError(err, "list events of posts")
	}
	for _, l := range links {
		out[l.PostID] = append(out[l.PostID], l.EventID)
	}
	return out, nil
}

func (r *postEventRepository) DeleteByPosts(ctx context.Context, postIDs []string) error {
	if len(postIDs) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Where("post_id IN ?", postIDs).Delete(&model.PostEvent{}).Error; err != nil {
		return wrapDBError(err, "unlink posts from events")
	}
	return nil
}

func (r *postEventRepository) DeleteByEvents(ctx context.Context, eventIDs []string) error {
	if len(eventIDs) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Where("event_id IN ?", eventIDs).Delete(&model.PostEvent{}).Error; err != nil {
		return wrapDBError(err, "unlink event posts")
	}
	return nil
}
