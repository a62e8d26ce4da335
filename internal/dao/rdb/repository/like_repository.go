package repository

import (
	"context"

	"family_hub_server/internal/model"

	"gorm.io/gorm"
)

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository 创建点赞 Repository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Find(ctx context.Context, userID string, target model.LikeTarget) (*model.Like, error) {
	var like model.Like
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, target.Kind, target.ID).
		First(&like).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "find like %s/%s", target.Kind, target.ID)
	}
	return &like, nil
}

func (r *likeRepository) CountByTarget(ctx context.Context, target model.LikeTarget) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Like{}).
		Where("target_type = ? AND target_id = ?", target.Kind, target.ID).
		Count(&count).Error
	if err != nil {
		return 0, wrapDBError(err, "count likes")
	}
	return count, nil
}

func (r *likeRepository) CountByTargets(ctx context.Context, kind model.TargetKind, ids []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}
	var rows []struct {
		TargetID string
		Total    int64
	}
	err := r.db.WithContext(ctx).Model(&model.Like{}).
		Select("target_id, COUNT(*) AS total").
		Where("target_type = ? AND target_id IN ?", kind, ids).
		Group("target_id").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapDBError(err, "count likes by targets")
	}
	for _, row := range rows {
		counts[row.TargetID] = row.Total
	}
	return counts, nil
}

func (r *likeRepository) ReactionsByUser(ctx context.Context, userID string, kind model.TargetKind, ids []string) (map[string]string, error) {
	reactions := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return reactions, nil
	}
	var likes []model.Like
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND target_type = ? AND target_id IN ?", userID, kind, ids).
		Find(&likes).Error
	if err != nil {
		return nil, wrapDBError(err, "find user reactions")
	}
	for _, like := range likes {
		reactions[like.TargetID] = like.Reaction
	}
	return reactions, nil
}

func (r *likeRepository) Create(ctx context.Context, like *model.Like) error {
	if err := r.db.WithContext(ctx).Create(like).Error; err != nil {
		return wrapDBError(err, "create like")
	}
	return nil
}

func (r *likeRepository) UpdateReaction(ctx context.Context, id, reaction string) error {
	if err := r.db.WithContext(ctx).Model(&model.Like{}).Where("id = ?", id).Update("reaction", reaction).Error; err != nil {
		return wrapDBError(err, "update like reaction")
	}
	return nil
}

func (r *likeRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Like{}).Error; err != nil {
		return wrapDBError(err, "delete like")
	}
	return nil
}

func (r *likeRepository) DeleteByTargets(ctx context.Context, kind model.TargetKind, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Where("target_type = ? AND target_id IN ?", kind, ids).
		Delete(&model.Like{}).Error
	if err != nil {
		return wrapDBError(err, "delete likes of targets")
	}
	return nil
}

func (r *likeRepository) DeleteByUser(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Like{}).Error; err != nil {
		return wrapDBError(err, "delete likes of user")
	}
	return nil
}
