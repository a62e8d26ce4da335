package respond

import "family_hub_server/internal/model"

// PostRespond 动态详情，附带实时点赞数和当前用户的表情
type PostRespond struct {
	model.Post
	FamilyIDs    []string   `json:"familyIds"`
	EventIDs     []string   `json:"eventIds"`
	Author       *UserBrief `json:"author,omitempty"`
	LikeCount    int64      `json:"likeCount"`
	CommentCount int64      `json:"commentCount"`
	UserReaction *string    `json:"userReaction"`
}

// PostListRespond 动态分页列表
type PostListRespond struct {
	Posts      []PostRespond `json:"posts"`
	Pagination Pagination    `json:"pagination"`
}

// CommentRespond 评论，Replies 为直接回复
type CommentRespond struct {
	model.Comment
	Author       *UserBrief        `json:"author,omitempty"`
	LikeCount    int64             `json:"likeCount"`
	UserReaction *string           `json:"userReaction"`
	Replies      []*CommentRespond `json:"replies"`
}

// LikeRespond 点赞结果
type LikeRespond struct {
	Liked     bool    `json:"liked"`
	Reaction  *string `json:"reaction"`
	LikeCount int64   `json:"likeCount"`
}
