package handler

import (
	"family_hub_server/internal/dto/request"
	"family_hub_server/internal/service"

	"github.com/gin-gonic/gin"
)

// PostHandler 动态、评论和点赞请求处理器
type PostHandler struct {
	postSvc service.PostService
}

// NewPostHandler 创建动态处理器实例
func NewPostHandler(postSvc service.PostService) *PostHandler {
	return &PostHandler{postSvc: postSvc}
}

// CreatePost 发布动态
// POST /api/posts
// 请求体: request.CreatePostRequest
// 响应: 201 { post }
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req request.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	post, err := h.postSvc.CreatePost(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleCreated(c, gin.H{"post": post})
}

// GetPost GET /api/posts/:id
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.postSvc.GetPost(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"post": post})
}

// UpdatePost PUT /api/posts/:id
func (h *PostHandler) UpdatePost(c *gin.Context) {
	var req request.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	post, err := h.postSvc.UpdatePost(c.Request.Context(), c.Param("id"), currentUserID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"post": post})
}

// DeletePost DELETE /api/posts/:id
func (h *PostHandler) DeletePost(c *gin.Context) {
	if err := h.postSvc.DeletePost(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		HandleError(c, err)
		return
	}
	HandleMessage(c, "Post deleted")
}

// LikePost 点赞或取消点赞
// POST /api/posts/:id/like
// 请求体: request.LikeRequest（可为空）
// 响应: { liked, reaction, likeCount }
func (h *PostHandler) LikePost(c *gin.Context) {
	req, ok := bindLike(c)
	if !ok {
		return
	}
	data, err := h.postSvc.LikePost(c.Request.Context(), c.Param("id"), currentUserID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"liked": data.Liked, "reaction": data.Reaction, "likeCount": data.LikeCount})
}

// AddComment POST /api/posts/:id/comments
func (h *PostHandler) AddComment(c *gin.Context) {
	var req request.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	comment, err := h.postSvc.AddComment(c.Request.Context(), c.Param("id"), currentUserID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleCreated(c, gin.H{"comment": comment})
}

// GetComments GET /api/posts/:id/comments
func (h *PostHandler) GetComments(c *gin.Context) {
	comments, err := h.postSvc.GetComments(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"comments": comments})
}

// LikeComment POST /api/comments/:id/like
func (h *PostHandler) LikeComment(c *gin.Context) {
	req, ok := bindLike(c)
	if !ok {
		return
	}
	data, err := h.postSvc.LikeComment(c.Request.Context(), c.Param("id"), currentUserID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"liked": data.Liked, "reaction": data.Reaction, "likeCount": data.LikeCount})
}

// DeleteComment DELETE /api/comments/:id
func (h *PostHandler) DeleteComment(c *gin.Context) {
	if err := h.postSvc.DeleteComment(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		HandleError(c, err)
		return
	}
	HandleMessage(c, "Comment deleted")
}

// ListFamilyPosts GET /api/families/:id/posts?page=1&limit=20
func (h *PostHandler) ListFamilyPosts(c *gin.Context) {
	var query request.PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.postSvc.ListFamilyPosts(c.Request.Context(), c.Param("id"), currentUserID(c), query)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"posts": data.Posts, "pagination": data.Pagination})
}

// ListEventPosts GET /api/events/:id/posts?page=1&limit=20
func (h *PostHandler) ListEventPosts(c *gin.Context) {
	var query request.PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.postSvc.ListEventPosts(c.Request.Context(), c.Param("id"), currentUserID(c), query)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"posts": data.Posts, "pagination": data.Pagination})
}

// bindLike 点赞请求体可以为空
func bindLike(c *gin.Context) (request.LikeRequest, bool) {
	var req request.LikeRequest
	if c.Request.ContentLength == 0 {
		return req, true
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return req, false
	}
	return req, true
}
