package request

// MediaListQuery 媒体列表过滤
type MediaListQuery struct {
	PageQuery
	Type string `form:"type" binding:"omitempty,oneof=image video audio document"`
}
