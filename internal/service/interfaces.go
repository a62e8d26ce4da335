// Package service 定义业务层接口
// 本文件定义所有 Service 接口，供 Handler 层调用
package service

import (
	"context"

	"family_hub_server/internal/dto/request"
	"family_hub_server/internal/dto/respond"
	"family_hub_server/internal/model"
	"family_hub_server/internal/service/media"
)

// UserService 用户业务接口
// 处理注册、登录、会话和个人资料
type UserService interface {
	// Register 注册并直接登录
	Register(ctx context.Context, req request.RegisterRequest) (*respond.AuthRespond, error)
	// Login 邮箱密码登录
	Login(ctx context.Context, req request.LoginRequest) (*respond.AuthRespond, error)
	// RefreshToken 刷新 Access Token
	RefreshToken(ctx context.Context, req request.RefreshTokenRequest) (*respond.TokenRespond, error)
	// Logout 注销会话
	Logout(ctx context.Context, userID string) error
	GetProfile(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, req request.UpdateProfileRequest) (*model.User, error)
	// DeleteAccount 注销账号，级联删除用户数据
	DeleteAccount(ctx context.Context, userID string) error
	// ListUsers 平台管理员查询用户
	ListUsers(ctx context.Context, callerID string, query request.ListUsersQuery) (*respond.UserListRespond, error)
}

// FamilyService 家庭业务接口
type FamilyService interface {
	CreateFamily(ctx context.Context, userID string, req request.CreateFamilyRequest) (*model.Family, error)
	GetFamily(ctx context.Context, familyID, userID string) (*respond.FamilyDetail, error)
	ListMyFamilies(ctx context.Context, userID string) ([]respond.FamilySummary, error)
	UpdateFamily(ctx context.Context, familyID, userID string, req request.UpdateFamilyRequest) (*model.Family, error)
	DeleteFamily(ctx context.Context, familyID, userID string) error
	ListMembers(ctx context.Context, familyID, userID string) ([]respond.MemberRespond, error)
	AddMember(ctx context.Context, familyID, userID string, req request.AddMemberRequest) (*respond.MemberRespond, error)
	UpdateMemberRole(ctx context.Context, familyID, userID, targetID string, req request.UpdateMemberRoleRequest) (*respond.MemberRespond, error)
	RemoveMember(ctx context.Context, familyID, userID, targetID string) error
	// LeaveFamily 成员主动退出家庭
	LeaveFamily(ctx context.Context, familyID, userID string) error
}

// EventService 日程业务接口
// 包括出席状态和日程邀请
type EventService interface {
	CreateEvent(ctx context.Context, familyID, userID string, req request.CreateEventRequest) (*respond.EventDetail, error)
	ListFamilyEvents(ctx context.Context, familyID, userID string, query request.EventListQuery) ([]model.Event, error)
	GetEvent(ctx context.Context, eventID, userID string) (*respond.EventDetail, error)
	UpdateEvent(ctx context.Context, eventID, userID string, req request.UpdateEventRequest) (*respond.EventDetail, error)
	DeleteEvent(ctx context.Context, eventID, userID string) error
	ManageAttendance(ctx context.Context, eventID, userID string, req request.ManageAttendanceRequest) (*respond.AttendeeRespond, error)
	ListAttendees(ctx context.Context, eventID, userID string) ([]respond.AttendeeRespond, error)
	SendInvitation(ctx context.Context, eventID, userID string, req request.SendInvitationRequest) (*respond.InvitationRespond, error)
	ListEventInvitations(ctx context.Context, eventID, userID string) ([]respond.InvitationRespond, error)
	// RespondInvitation 被邀请人接受或拒绝
	RespondInvitation(ctx context.Context, eventID, invitationID, userID string, req request.UpdateInvitationRequest) (*respond.InvitationRespond, error)
	ListMyInvitations(ctx context.Context, userID string) ([]respond.InvitationRespond, error)
}

// PostService 动态业务接口
// 处理动态、评论和点赞
type PostService interface {
	CreatePost(ctx context.Context, userID string, req request.CreatePostRequest) (*respond.PostRespond, error)
	GetPost(ctx context.Context, postID, userID string) (*respond.PostRespond, error)
	UpdatePost(ctx context.Context, postID, userID string, req request.UpdatePostRequest) (*respond.PostRespond, error)
	DeletePost(ctx context.Context, postID, userID string) error
	LikePost(ctx context.Context, postID, userID string, req request.LikeRequest) (*respond.LikeRespond, error)
	AddComment(ctx context.Context, postID, userID string, req request.AddCommentRequest) (*respond.CommentRespond, error)
	GetComments(ctx context.Context, postID, userID string) ([]*respond.CommentRespond, error)
	LikeComment(ctx context.Context, commentID, userID string, req request.LikeRequest) (*respond.LikeRespond, error)
	DeleteComment(ctx context.Context, commentID, userID string) error
	ListFamilyPosts(ctx context.Context, familyID, userID string, query request.PageQuery) (*respond.PostListRespond, error)
	ListEventPosts(ctx context.Context, eventID, userID string, query request.PageQuery) (*respond.PostListRespond, error)
}

// MediaService 媒体业务接口
type MediaService interface {
	// Upload 保存上传文件并记录元数据
	Upload(ctx context.Context, userID string, file media.UploadFile) (*model.Media, error)
	GetMedia(ctx context.Context, mediaID, userID string) (*respond.MediaRespond, error)
	DeleteMedia(ctx context.Context, mediaID, userID string) error
	ListMyMedia(ctx context.Context, userID string, query request.MediaListQuery) (*respond.MediaListRespond, error)
	ListFamilyMedia(ctx context.Context, familyID, userID string, query request.MediaListQuery) (*respond.MediaListRespond, error)
}
