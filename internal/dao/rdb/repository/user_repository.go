package repository

import (
	"context"
	"strings"

	"family_hub_server/internal/model"

	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户 Repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, wrapDBErrorf(err, "find user id=%s", id)
	}
	return &user, nil
}

// FindByEmail 邮箱统一按小写存储和查询
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	email = strings.ToLower(strings.TrimSpace(email))
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, wrapDBErrorf(err, "find user email=%s", email)
	}
	return &user, nil
}

func (r *userRepository) FindByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	var users []model.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, wrapDBError(err, "find users by ids")
	}
	return users, nil
}

func (r *userRepository) List(ctx context.Context, search string, page Page) ([]model.User, int64, error) {
	var (
		users []model.User
		total int64
	)
	query := r.db.WithContext(ctx).Model(&model.User{})
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR email LIKE ?)", like, like)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapDBError(err, "count users")
	}
	if err := query.Order("created_at DESC").Scopes(paginate(page)).Find(&users).Error; err != nil {
		return nil, 0, wrapDBError(err, "list users")
	}
	return users, total, nil
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return wrapDBError(err, "create user")
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return wrapDBError(err, "update user")
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.User{}).Error; err != nil {
		return wrapDBError(err, "delete user")
	}
	return nil
}
