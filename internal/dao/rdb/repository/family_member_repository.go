package repository

import (
	"context"

	"family_hub_server/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type familyMemberRepository struct {
	db *gorm.DB
}

// NewFamilyMemberRepository 创建家庭成员 Repository
func NewFamilyMemberRepository(db *gorm.DB) FamilyMemberRepository {
	return &familyMemberRepository{db: db}
}

func (r *familyMemberRepository) Find(ctx context.Context, familyID, userID string) (*model.FamilyMember, error) {
	var member model.FamilyMember
	err := r.db.WithContext(ctx).
		Where("family_id = ? AND user_id = ?", familyID, userID).
		First(&member).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "find member family=%s user=%s", familyID, userID)
	}
	return &member, nil
}

func (r *familyMemberRepository) FindInFamilies(ctx context.Context, familyIDs []string, userID string) ([]model.FamilyMember, error) {
	var members []model.FamilyMember
	if len(familyIDs) == 0 {
		return members, nil
	}
	err := r.db.WithContext(ctx).
		Where("family_id IN ? AND user_id = ?", familyIDs, userID).
		Find(&members).Error
	if err != nil {
		return nil, wrapDBError(err, "find memberships in families")
	}
	return members, nil
}

func (r *familyMemberRepository) ListByFamily(ctx context.Context, familyID string) ([]model.FamilyMember, error) {
	var members []model.FamilyMember
	err := r.db.WithContext(ctx).
		Where("family_id = ?", familyID).
		Order("joined_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, wrapDBError(err, "list family members")
	}
	return members, nil
}

func (r *familyMemberRepository) ListUserIDs(ctx context.Context, familyID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.FamilyMember{}).
		Where("family_id = ?", familyID).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, wrapDBError(err, "list family member ids")
	}
	return ids, nil
}

func (r *familyMemberRepository) ListUserIDsInFamilies(ctx context.Context, familyIDs []string) ([]string, error) {
	var ids []string
	if len(familyIDs) == 0 {
		return ids, nil
	}
	err := r.db.WithContext(ctx).Model(&model.FamilyMember{}).
		Where("family_id IN ?", familyIDs).
		Distinct().
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, wrapDBError(err, "list member ids in families")
	}
	return ids, nil
}

func (r *familyMemberRepository) CountByRole(ctx context.Context, familyID, role string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.FamilyMember{}).
		Where("family_id = ? AND role = ?", familyID, role).
		Count(&count).Error
	if err != nil {
		return 0, wrapDBError(err, "count family members by role")
	}
	return count, nil
}

// CountByFamilies 统计每个家庭的成员数
func (r *familyMemberRepository) CountByFamilies(ctx context.Context, familyIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(familyIDs))
	if len(familyIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		FamilyID string
		Total    int64
	}
	err := r.db.WithContext(ctx).Model(&model.FamilyMember{}).
		Select("family_id, COUNT(*) AS total").
		Where("family_id IN ?", familyIDs).
		Group("family_id").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapDBError(err, "count family members")
	}
	for _, row := range rows {
		counts[row.FamilyID] = row.Total
	}
	return counts, nil
}

func (r *familyMemberRepository) Create(ctx context.Context, member *model.FamilyMember) error {
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		return wrapDBError(err, "create family member")
	}
	return nil
}

// UpdateRole 修改角色时同步重置权限集合
func (r *familyMemberRepository) UpdateRole(ctx context.Context, familyID, userID, role string) error {
	err := r.db.WithContext(ctx).Model(&model.FamilyMember{}).
		Where("family_id = ? AND user_id = ?", familyID, userID).
		Updates(map[string]any{
			"role":        role,
			"permissions": datatypes.JSONSlice[string](model.PermissionsForRole(role)),
		}).Error
	if err != nil {
		return wrapDBError(err, "update member role")
	}
	return nil
}

func (r *familyMemberRepository) Delete(ctx context.Context, familyID, userID string) error {
	err := r.db.WithContext(ctx).
		Where("family_id = ? AND user_id = ?", familyID, userID).
		Delete(&model.FamilyMember{}).Error
	if err != nil {
		return wrapDBError(err, "delete family member")
	}
	return nil
}

func (r *familyMemberRepository) DeleteByFamily(ctx context.Context, familyID string) error {
	if err := r.db.WithContext(ctx).Where("family_id = ?", familyID).Delete(&model.FamilyMember{}).Error; err != nil {
		return wrapDBError(err, "delete members of family")
	}
	return nil
}

func (r *familyMemberRepository) DeleteByUser(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.FamilyMember{}).Error; err != nil {
		return wrapDBError(err, "delete memberships of user")
	}
	return nil
}
