package request

// CreatePostRequest 发布动态
type CreatePostRequest struct {
	Content   string   `json:"content"`
	MediaURLs []string `json:"mediaUrls" binding:"omitempty,max=20"`
	Type      string   `json:"type" binding:"omitempty,oneof=text photo video event mixed"`
	Privacy   string   `json:"privacy" binding:"omitempty,oneof=family public private"`
	Tags      []string `json:"tags"`
	Location  string   `json:"location" binding:"max=255"`
	FamilyIDs []string `json:"familyIds"`
	EventIDs  []string `json:"eventIds"`
}

// UpdatePostRequest 更新动态，关联的家庭和日程不可修改
type UpdatePostRequest struct {
	Content   *string   `json:"content"`
	MediaURLs *[]string `json:"mediaUrls"`
	Type      *string   `json:"type" binding:"omitempty,oneof=text photo video event mixed"`
	Privacy   *string   `json:"privacy" binding:"omitempty,oneof=family public private"`
	Tags      *[]string `json:"tags"`
	Location  *string   `json:"location" binding:"omitempty,max=255"`
}

// LikeRequest 点赞，Reaction 为空时使用默认表情
type LikeRequest struct {
	Reaction string `json:"reaction" binding:"max=20"`
}

// AddCommentRequest 发表评论，ParentID 不为空时为回复
type AddCommentRequest struct {
	Content  string  `json:"content" binding:"max=5000"`
	MediaURL string  `json:"mediaUrl" binding:"max=512"`
	ParentID *string `json:"parentId"`
}
