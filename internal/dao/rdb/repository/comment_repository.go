package repository

import (
	"context"

	"family_hub_server/internal/model"

	"gorm.io/gorm"
)

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository 创建评论 Repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) FindByID(ctx context.Context, id string) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.WithContext(ctx).First(&comment, "id = ?", id).Error; err != nil {
		return nil, wrapDBErrorf(err, "find comment id=%s", id)
	}
	return &comment, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	var comments []model.Comment
	if err := r.db.WithContext(ctx).Where("post_id = ?", postID).Order("created_at ASC").Find(&comments).Error; err != nil {
		return nil, wrapDBError(err, "list comments of post")
	}
	return comments, nil
}

func (r *commentRepository) ListIDsByPosts(ctx context.Context, postIDs []string) ([]string, error) {
	return r.pluckIDs(ctx, "post_id IN ?", postIDs)
}

func (r *commentRepository) ListIDsByUser(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&model.Comment{}).Where("user_id = ?", userID).Pluck("id", &ids).Error; err != nil {
		return nil, wrapDBError(err, "list comment ids of user")
	}
	return ids, nil
}

func (r *commentRepository) ListIDsByParents(ctx context.Context, parentIDs []string) ([]string, error) {
	return r.pluckIDs(ctx, "parent_id IN ?", parentIDs)
}

func (r *commentRepository) pluckIDs(ctx context.Context, cond string, values []string) ([]string, error) {
	var ids []string
	if len(values) == 0 {
		return ids, nil
	}
	if err := r.db.WithContext(ctx).Model(&model.Comment{}).Where(cond, values).Pluck("id", &ids).Error; err != nil {
		return nil, wrapDBError(err, "list comment ids")
	}
	return ids, nil
}

func (r *commentRepository) CountByPosts(ctx context.Context, postIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		PostID string
		Total  int64
	}
	err := r.db.WithContext(ctx).Model(&model.Comment{}).
		Select("post_id, COUNT(*) AS total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapDBError(err, "count comments")
	}
	for _, row := range rows {
		counts[row.PostID] = row.Total
	}
	return counts, nil
}

func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return wrapDBError(err, "create comment")
	}
	return nil
}

func (r *commentRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.Comment{}).Error; err != nil {
		return wrapDBError(err, "delete comments")
	}
	return nil
}
