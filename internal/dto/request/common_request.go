// Package request 定义 HTTP 请求体和查询参数
package request

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PageQuery 分页参数，page 从 1 开始
type PageQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1"`
}

// Normalize 填充默认值并限制每页条数
func (q PageQuery) Normalize() (page, limit int) {
	page, limit = q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}
