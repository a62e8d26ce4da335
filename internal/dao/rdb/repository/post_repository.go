package repository

import (
	"context"

	"family_hub_server/internal/model"

	"gorm.io/gorm"
)

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository 创建动态 Repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) FindByID(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	if err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, wrapDBErrorf(err, "find post id=%s", id)
	}
	return &post, nil
}

// ListByFamily 家庭下的动态，只返回查看者可见的
func (r *postRepository) ListByFamily(ctx context.Context, familyID, viewerID string, page Page) ([]model.Post, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Post{}).
		Joins("JOIN post_families ON post_families.post_id = posts.id").
		Where("post_families.family_id = ?", familyID).
		Scopes(visibleTo(viewerID))
	return r.listJoined(query, page, "list family posts")
}

func (r *postRepository) ListByEvent(ctx context.Context, eventID, viewerID string, page Page) ([]model.Post, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Post{}).
		Joins("JOIN post_events ON post_events.post_id = posts.id").
		Where("post_events.event_id = ?", eventID).
		Scopes(visibleTo(viewerID))
	return r.listJoined(query, page, "list event posts")
}

// visibleTo 与单条查看的规则一致：创建者、public，或 family 且查看者属于动态关联的任一家庭
func visibleTo(viewerID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(`(posts.created_by = ? OR posts.privacy = ? OR (posts.privacy = ? AND EXISTS (
			SELECT 1 FROM post_families pf
			JOIN family_members fm ON fm.family_id = pf.family_id
			WHERE pf.post_id = posts.id AND fm.user_id = ?)))`,
			viewerID, model.PrivacyPublic, model.PrivacyFamily, viewerID)
	}
}

// listJoined 统计总数后按创建时间倒序分页
func (r *postRepository) listJoined(query *gorm.DB, page Page, msg string) ([]model.Post, int64, error) {
	var (
		posts []model.Post
		total int64
	)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapDBError(err, msg)
	}
	err := query.Select("posts.*").
		Order("posts.created_at DESC").
		Scopes(paginate(page)).
		Find(&posts).Error
	if err != nil {
		return nil, 0, wrapDBError(err, msg)
	}
	return posts, total, nil
}

func (r *postRepository) ListIDsByCreator(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&model.Post{}).Where("created_by = ?", userID).Pluck("id", &ids).Error; err != nil {
		return nil, wrapDBError(err, "list post ids by creator")
	}
	return ids, nil
}

func (r *postRepository) MediaURLsByFamily(ctx context.Context, familyID string) ([]string, error) {
	var posts []model.Post
	err := r.db.WithContext(ctx).
		Select("posts.id", "posts.media_urls").
		Joins("JOIN post_families ON post_families.post_id = posts.id").
		Where("post_families.family_id = ? AND posts.privacy <> ?", familyID, model.PrivacyPrivate).
		Find(&posts).Error
	if err != nil {
		return nil, wrapDBError(err, "collect family media urls")
	}

	seen := make(map[string]struct{})
	urls := make([]string, 0)
	for _, post := range posts {
		for _, url := range post.MediaURLs {
			if _, ok := seen[url]; ok || url == "" {
				continue
			}
			seen[url] = struct{}{}
			urls = append(urls, url)
		}
	}
	return urls, nil
}

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return wrapDBError(err, "create post")
	}
	return nil
}

func (r *postRepository) Update(ctx context.Context, id string, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(&model.Post{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return wrapDBError(err, "update post")
	}
	return nil
}

func (r *postRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.Post{}).Error; err != nil {
		return wrapDBError(err, "delete posts")
	}
	return nil
}
