// Package post 实现家庭动态、评论和点赞
package post

import (
	"context"
	"strings"

	"family_hub_server/internal/dao/rdb/repository"
	"family_hub_server/internal/dto/request"
	"family_hub_server/internal/dto/respond"
	"family_hub_server/internal/infrastructure/mq"
	"family_hub_server/internal/model"
	"family_hub_server/internal/service/access"
	"family_hub_server/internal/service/cascade"
	"family_hub_server/internal/service/feed"
	"family_hub_server/pkg/errorx"

	"gorm.io/datatypes"
)

// postService 动态业务逻辑实现
type postService struct {
	repos    *repository.Repositories
	notifier *feed.Notifier
}

// NewPostService 构造函数，注入所有依赖
func NewPostService(repos *repository.Repositories, notifier *feed.Notifier) *postService {
	return &postService{repos: repos, notifier: notifier}
}

// CreatePost 发布动态
// 调用者必须是每个关联家庭的成员，以及每个关联日程所属家庭的成员
func (s *postService) CreatePost(ctx context.Context, userID string, req request.CreatePostRequest) (*respond.PostRespond, error) {
	content := strings.TrimSpace(req.Content)
	mediaURLs := compact(req.MediaURLs)
	if content == "" && len(mediaURLs) == 0 {
		return nil, errorx.BadRequest("Post content or media is required")
	}

	privacy := req.Privacy
	if privacy == "" {
		privacy = model.PrivacyFamily
	}
	postType := req.Type
	if postType == "" {
		postType = model.PostTypeText
		if len(mediaURLs) > 0 {
			postType = model.PostTypePhoto
		}
	}

	familyIDs := compact(req.FamilyIDs)
	eventIDs := compact(req.EventIDs)
	if privacy == model.PrivacyFamily && len(familyIDs) == 0 {
		return nil, errorx.BadRequest("Family posts must be shared with at least one family")
	}
	for _, familyID := range familyIDs {
		if !model.IsValidID(familyID) {
			return nil, errorx.Forbidden(access.MsgNotMember)
		}
		if _, err := access.RequireMember(ctx, s.repos, familyID, userID); err != nil {
			return nil, err
		}
	}
	for _, eventID := range eventIDs {
		event, err := access.FindEvent(ctx, s.repos, eventID)
		if err != nil {
			return nil, err
		}
		if _, err := access.RequireMember(ctx, s.repos, event.FamilyID, userID); err != nil {
			if errorx.GetCode(err) == errorx.CodeForbidden {
				return nil, errorx.Forbidden(access.MsgEventDenied)
			}
			return nil, err
		}
	}

	post := &model.Post{
		Content:   content,
		MediaURLs: datatypes.JSONSlice[string](mediaURLs),
		Type:      postType,
		Privacy:   privacy,
		Tags:      datatypes.JSONSlice[string](compact(req.Tags)),
		Location:  req.Location,
		CreatedBy: userID,
	}
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Post.Create(ctx, post); err != nil {
			return err
		}
		familyLinks := make([]model.PostFamily, 0, len(familyIDs))
		for _, id := range familyIDs {
			familyLinks = append(familyLinks, model.PostFamily{PostID: post.ID, FamilyID: id})
		}
		if err := tx.PostFamily.CreateBatch(ctx, familyLinks); err != nil {
			return err
		}
		eventLinks := make([]model.PostEvent, 0, len(eventIDs))
		for _, id := range eventIDs {
			eventLinks = append(eventLinks, model.PostEvent{PostID: post.ID, EventID: id})
		}
		return tx.PostEvent.CreateBatch(ctx, eventLinks)
	})
	if err != nil {
		return nil, err
	}

	if privacy != model.PrivacyPrivate {
		for _, familyID := range familyIDs {
			s.notifier.Notify(ctx, &mq.Activity{
				Type:       mq.ActivityPostCreated,
				ActorID:    userID,
				FamilyID:   familyID,
				Recipients: feed.FamilyRecipients(ctx, s.repos, familyID),
				Payload:    map[string]any{"postId": post.ID, "type": post.Type},
			})
		}
	}

	out, err := s.decorate(ctx, []model.Post{*post}, userID)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// GetPost 查看动态，附带点赞数、评论数和当前用户的表情
func (s *postService) GetPost(ctx context.Context, postID, userID string) (*respond.PostRespond, error) {
	post, _, err := access.RequirePostView(ctx, s.repos, postID, userID)
	if err != nil {
		return nil, err
	}
	out, err := s.decorate(ctx, []model.Post{*post}, userID)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// UpdatePost 更新动态，仅创建者
func (s *postService) UpdatePost(ctx context.Context, postID, userID string, req request.UpdatePostRequest) (*respond.PostRespond, error) {
	post, err := access.FindPost(ctx, s.repos, postID)
	if err != nil {
		return nil, err
	}
	if post.CreatedBy != userID {
		return nil, errorx.Forbidden("Only the post creator can update this post")
	}

	updates := make(map[string]any)
	content, mediaURLs := post.Content, []string(post.MediaURLs)
	if req.Content != nil {
		content = strings.TrimSpace(*req.Content)
		updates["content"] = content
	}
	if req.MediaURLs != nil {
		mediaURLs = compact(*req.MediaURLs)
		updates["media_urls"] = datatypes.JSONSlice[string](mediaURLs)
	}
	if content == "" && len(mediaURLs) == 0 {
		return nil, errorx.BadRequest("Post content or media is required")
	}
	if req.Type != nil {
		updates["type"] = *req.Type
	}
	if req.Privacy != nil {
		if *req.Privacy == model.PrivacyFamily {
			familyIDs, err := s.repos.PostFamily.FamilyIDsByPost(ctx, post.ID)
			if err != nil {
				return nil, err
			}
			if len(familyIDs) == 0 {
				return nil, errorx.BadRequest("Family posts must be shared with at least one family")
			}
		}
		updates["privacy"] = *req.Privacy
	}
	if req.Tags != nil {
		updates["tags"] = datatypes.JSONSlice[string](compact(*req.Tags))
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}

	if err := s.repos.Post.Update(ctx, post.ID, updates); err != nil {
		return nil, err
	}
	return s.GetPost(ctx, post.ID, userID)
}

// DeletePost 删除动态，创建者或任一关联家庭的管理员
func (s *postService) DeletePost(ctx context.Context, postID, userID string) error {
	post, err := access.FindPost(ctx, s.repos, postID)
	if err != nil {
		return err
	}
	if post.CreatedBy != userID {
		familyIDs, err := s.repos.PostFamily.FamilyIDsByPost(ctx, post.ID)
		if err != nil {
			return err
		}
		admin, err := access.IsAdminOfAny(ctx, s.repos, familyIDs, userID)
		if err != nil {
			return err
		}
		if !admin {
			return errorx.Forbidden("Only the post creator or a family admin can delete this post")
		}
	}
	return s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		return cascade.DeletePosts(ctx, tx, []string{post.ID})
	})
}

// LikePost 对动态点赞，重复相同表情取消，不同表情覆盖
func (s *postService) LikePost(ctx context.Context, postID, userID string, req request.LikeRequest) (*respond.LikeRespond, error) {
	post, _, err := access.RequirePostView(ctx, s.repos, postID, userID)
	if err != nil {
		return nil, err
	}
	return s.toggleLike(ctx, userID, model.PostTarget(post.ID), req.Reaction)
}

// LikeComment 对评论点赞，规则同 LikePost
func (s *postService) LikeComment(ctx context.Context, commentID, userID string, req request.LikeRequest) (*respond.LikeRespond, error) {
	comment, err := s.findComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if _, _, err := access.RequirePostView(ctx, s.repos, comment.PostID, userID); err != nil {
		return nil, err
	}
	return s.toggleLike(ctx, userID, model.CommentTarget(comment.ID), req.Reaction)
}

func (s *postService) toggleLike(ctx context.Context, userID string, target model.LikeTarget, reaction string) (*respond.LikeRespond, error) {
	reaction = strings.TrimSpace(reaction)
	if reaction == "" {
		reaction = model.DefaultReaction
	}

	rsp := &respond.LikeRespond{}
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		existing, err := tx.Like.Find(ctx, userID, target)
		switch {
		case errorx.IsNotFound(err):
			if err := tx.Like.Create(ctx, &model.Like{
				UserID:     userID,
				TargetType: target.Kind,
				TargetID:   target.ID,
				Reaction:   reaction,
			}); err != nil {
				return err
			}
			rsp.Liked, rsp.Reaction = true, &reaction
		case err != nil:
			return err
		case existing.Reaction == reaction:
			if err := tx.Like.Delete(ctx, existing.ID); err != nil {
				return err
			}
		default:
			if err := tx.Like.UpdateReaction(ctx, existing.ID, reaction); err != nil {
				return err
			}
			rsp.Liked, rsp.Reaction = true, &reaction
		}
		rsp.LikeCount, err = tx.Like.CountByTarget(ctx, target)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rsp, nil
}

// AddComment 发表评论或回复，父评论必须属于同一条动态
func (s *postService) AddComment(ctx context.Context, postID, userID string, req request.AddCommentRequest) (*respond.CommentRespond, error) {
	post, familyIDs, err := access.RequirePostView(ctx, s.repos, postID, userID)
	if err != nil {
		return nil, err
	}
	content := strings.TrimSpace(req.Content)
	mediaURL := strings.TrimSpace(req.MediaURL)
	if content == "" && mediaURL == "" {
		return nil, errorx.BadRequest("Comment content is required")
	}

	comment := &model.Comment{PostID: post.ID, UserID: userID, Content: content, MediaURL: mediaURL}
	recipients := []string{post.CreatedBy}
	if req.ParentID != nil && *req.ParentID != "" {
		parent, err := s.findComment(ctx, *req.ParentID)
		if err != nil || parent.PostID != post.ID {
			if err != nil && !errorx.IsNotFound(err) {
				return nil, err
			}
			return nil, errorx.BadRequest("Parent comment not found on this post")
		}
		comment.ParentID = &parent.ID
		recipients = append(recipients, parent.UserID)
	}
	if err := s.repos.Comment.Create(ctx, comment); err != nil {
		return nil, err
	}

	familyID := ""
	if len(familyIDs) > 0 {
		familyID = familyIDs[0]
	}
	s.notifier.Notify(ctx, &mq.Activity{
		Type:       mq.ActivityCommentAdded,
		ActorID:    userID,
		FamilyID:   familyID,
		Recipients: recipients,
		Payload:    map[string]any{"postId": post.ID, "commentId": comment.ID},
	})

	author, err := s.repos.User.FindByID(ctx, userID)
	if err != nil && !errorx.IsNotFound(err) {
		return nil, err
	}
	return &respond.CommentRespond{
		Comment: *comment,
		Author:  respond.NewUserBrief(author),
		Replies: make([]*respond.CommentRespond, 0),
	}, nil
}

// GetComments 返回评论树：顶层评论按时间正序，回复嵌套在父评论下
func (s *postService) GetComments(ctx context.Context, postID, userID string) ([]*respond.CommentRespond, error) {
	post, _, err := access.RequirePostView(ctx, s.repos, postID, userID)
	if err != nil {
		return nil, err
	}
	comments, err := s.repos.Comment.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(comments))
	authorIDs := make([]string, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.ID)
		authorIDs = append(authorIDs, c.UserID)
	}
	counts, err := s.repos.Like.CountByTargets(ctx, model.TargetComment, ids)
	if err != nil {
		return nil, err
	}
	reactions, err := s.repos.Like.ReactionsByUser(ctx, userID, model.TargetComment, ids)
	if err != nil {
		return nil, err
	}
	authors, err := s.usersByID(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	nodes := make(map[string]*respond.CommentRespond, len(comments))
	for _, c := range comments {
		node := &respond.CommentRespond{
			Comment:   c,
			Author:    respond.NewUserBrief(authors[c.UserID]),
			LikeCount: counts[c.ID],
			Replies:   make([]*respond.CommentRespond, 0),
		}
		if r, ok := reactions[c.ID]; ok {
			node.UserReaction = &r
		}
		nodes[c.ID] = node
	}

	roots := make([]*respond.CommentRespond, 0)
	for _, c := range comments {
		node := nodes[c.ID]
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots, nil
}

// DeleteComment 删除评论及其回复，评论作者或动态创建者
func (s *postService) DeleteComment(ctx context.Context, commentID, userID string) error {
	comment, err := s.findComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		post, err := access.FindPost(ctx, s.repos, comment.PostID)
		if err != nil {
			return err
		}
		if post.CreatedBy != userID {
			return errorx.Forbidden("Only the comment author or the post creator can delete this comment")
		}
	}
	return s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		return cascade.DeleteComments(ctx, tx, []string{comment.ID})
	})
}

// ListFamilyPosts 家庭动态列表，仅成员可见
func (s *postService) ListFamilyPosts(ctx context.Context, familyID, userID string, query request.PageQuery) (*respond.PostListRespond, error) {
	family, err := access.FindFamily(ctx, s.repos, familyID)
	if err != nil {
		return nil, err
	}
	if _, err := access.RequireMember(ctx, s.repos, family.ID, userID); err != nil {
		return nil, err
	}
	page, limit := query.Normalize()
	posts, total, err := s.repos.Post.ListByFamily(ctx, family.ID, userID, repository.Page{Page: page, PageSize: limit})
	if err != nil {
		return nil, err
	}
	return s.list(ctx, posts, total, page, limit, userID)
}

// ListEventPosts 日程动态列表，权限同查看日程
func (s *postService) ListEventPosts(ctx context.Context, eventID, userID string, query request.PageQuery) (*respond.PostListRespond, error) {
	event, err := access.FindEvent(ctx, s.repos, eventID)
	if err != nil {
		return nil, err
	}
	if _, err := access.RequireEventReach(ctx, s.repos, event, userID); err != nil {
		return nil, err
	}
	page, limit := query.Normalize()
	posts, total, err := s.repos.Post.ListByEvent(ctx, event.ID, userID, repository.Page{Page: page, PageSize: limit})
	if err != nil {
		return nil, err
	}
	return s.list(ctx, posts, total, page, limit, userID)
}

func (s *postService) list(ctx context.Context, posts []model.Post, total int64, page, limit int, userID string) (*respond.PostListRespond, error) {
	items, err := s.decorate(ctx, posts, userID)
	if err != nil {
		return nil, err
	}
	return &respond.PostListRespond{Posts: items, Pagination: respond.NewPagination(total, page, limit)}, nil
}

// decorate 批量补充作者、关联、点赞数、评论数和当前用户的表情
func (s *postService) decorate(ctx context.Context, posts []model.Post, userID string) ([]respond.PostRespond, error) {
	ids := make([]string, 0, len(posts))
	authorIDs := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
		authorIDs = append(authorIDs, p.CreatedBy)
	}
	families, err := s.repos.PostFamily.FamilyIDsByPosts(ctx, ids)
	if err != nil {
		return nil, err
	}
	events, err := s.repos.PostEvent.EventIDsByPosts(ctx, ids)
	if err != nil {
		return nil, err
	}
	likeCounts, err := s.repos.Like.CountByTargets(ctx, model.TargetPost, ids)
	if err != nil {
		return nil, err
	}
	commentCounts, err := s.repos.Comment.CountByPosts(ctx, ids)
	if err != nil {
		return nil, err
	}
	reactions, err := s.repos.Like.ReactionsByUser(ctx, userID, model.TargetPost, ids)
	if err != nil {
		return nil, err
	}
	authors, err := s.usersByID(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	out := make([]respond.PostRespond, 0, len(posts))
	for _, p := range posts {
		item := respond.PostRespond{
			Post:         p,
			FamilyIDs:    orEmpty(families[p.ID]),
			EventIDs:     orEmpty(events[p.ID]),
			Author:       respond.NewUserBrief(authors[p.CreatedBy]),
			LikeCount:    likeCounts[p.ID],
			CommentCount: commentCounts[p.ID],
		}
		if r, ok := reactions[p.ID]; ok {
			item.UserReaction = &r
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *postService) findComment(ctx context.Context, commentID string) (*model.Comment, error) {
	if !model.IsValidID(commentID) {
		return nil, errorx.NotFound("Comment not found")
	}
	comment, err := s.repos.Comment.FindByID(ctx, commentID)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.NotFound("Comment not found")
		}
		return nil, err
	}
	return comment, nil
}

func (s *postService) usersByID(ctx context.Context, ids []string) (map[string]*model.User, error) {
	users, err := s.repos.User.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	return byID, nil
}

// compact 去掉空白项和重复项，保持原有顺序
func compact(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func orEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
