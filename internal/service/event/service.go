// Package event 实现家庭日程、出席状态和日程邀请
package event

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"family_hub_server/internal/dao/rdb/repository"
	myredis "family_hub_server/internal/dao/redis"
	"family_hub_server/internal/dto/request"
	"family_hub_server/internal/dto/respond"
	"family_hub_server/internal/infrastructure/mailer"
	"family_hub_server/internal/infrastructure/mq"
	"family_hub_server/internal/model"
	"family_hub_server/internal/service/access"
	"family_hub_server/internal/service/cascade"
	"family_hub_server/internal/service/feed"
	"family_hub_server/pkg/errorx"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// eventService 日程业务逻辑实现
type eventService struct {
	repos    *repository.Repositories
	cache    myredis.AsyncCacheService
	mailer   mailer.Mailer
	notifier *feed.Notifier
}

// NewEventService 构造函数，注入所有依赖
func NewEventService(
	repos *repository.Repositories,
	cache myredis.AsyncCacheService,
	mail mailer.Mailer,
	notifier *feed.Notifier,
) *eventService {
	return &eventService{repos: repos, cache: cache, mailer: mail, notifier: notifier}
}

// CreateEvent 创建日程
// 创建者自动标记为 attending，其他家庭成员批量标记为 pending
func (s *eventService) CreateEvent(ctx context.Context, familyID, userID string, req request.CreateEventRequest) (*respond.EventDetail, error) {
	family, err := access.FindFamily(ctx, s.repos, familyID)
	if err != nil {
		return nil, err
	}
	if _, err := access.RequireMember(ctx, s.repos, family.ID, userID); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, errorx.BadRequest("Event title is required")
	}
	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		return nil, errorx.BadRequest("End date must not be before start date")
	}

	event := &model.Event{
		FamilyID:    family.ID,
		Title:       title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Location:    req.Location,
		Category:    req.Category,
		Recurring:   encodeJSON(req.Recurring, "null"),
		Reminders:   encodeJSON(req.Reminders, "[]"),
		CreatedBy:   userID,
	}

	var memberIDs []string
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Event.Create(ctx, event); err != nil {
			return err
		}
		ids, err := tx.FamilyMember.ListUserIDs(ctx, family.ID)
		if err != nil {
			return err
		}
		memberIDs = ids
		attendees := make([]model.EventAttendee, 0, len(ids))
		for _, id := range ids {
			status := model.AttendeePending
			if id == userID {
				status = model.AttendeeAttending
			}
			attendees = append(attendees, model.EventAttendee{EventID: event.ID, UserID: id, Status: status})
		}
		return tx.EventAttendee.CreateBatch(ctx, attendees)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, &mq.Activity{
		Type:       mq.ActivityEventCreated,
		ActorID:    userID,
		FamilyID:   family.ID,
		Recipients: memberIDs,
		Payload: map[string]any{
			"eventId":   event.ID,
			"title":     event.Title,
			"startDate": event.StartDate,
		},
	})
	return s.detail(ctx, event, userID)
}

// ListFamilyEvents 家庭日程列表，仅成员可见
func (s *eventService) ListFamilyEvents(ctx context.Context, familyID, userID string, query request.EventListQuery) ([]model.Event, error) {
	family, err := access.FindFamily(ctx, s.repos, familyID)
	if err != nil {
		return nil, err
	}
	if _, err := access.RequireMember(ctx, s.repos, family.ID, userID); err != nil {
		return nil, err
	}

	filter := repository.EventFilter{Category: strings.TrimSpace(query.Category)}
	if query.From != "" {
		from, _, err := parseDate(query.From)
		if err != nil {
			return nil, errorx.BadRequest("Invalid from date")
		}
		filter.From = &from
	}
	if query.To != "" {
		to, dateOnly, err := parseDate(query.To)
		if err != nil {
			return nil, errorx.BadRequest("Invalid to date")
		}
		// 只给日期时包含当天全部日程
		if dateOnly {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		filter.To = &to
	}

	events, err := s.repos.Event.ListByFamily(ctx, family.ID, filter)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = make([]model.Event, 0)
	}
	return events, nil
}

// GetEvent 日程详情，家庭成员或已接受邀请的用户可见
func (s *eventService) GetEvent(ctx context.Context, eventID, userID string) (*respond.EventDetail, error) {
	event, err := access.FindEvent(ctx, s.repos, eventID)
	if err != nil {
		return nil, err
	}
	if _, err := access.RequireEventReach(ctx, s.repos, event, userID); err != nil {
		return nil, err
	}
	return s.detail(ctx, event, userID)
}

// UpdateEvent 更新日程，仅创建者或家庭管理员
func (s *eventService) UpdateEvent(ctx context.Context, eventID, userID string, req request.UpdateEventRequest) (*respond.EventDetail, error) {
	event, err := access.FindEvent(ctx, s.repos, eventID)
	if err != nil {
		return nil, err
	}
	if _, err := access.RequireEventManager(ctx, s.repos, event, userID); err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, errorx.BadRequest("Event title cannot be empty")
		}
		updates["title"] = title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	start, end := event.StartDate, event.EndDate
	if req.StartDate != nil {
		start = *req.StartDate
		updates["start_date"] = start
	}
	if req.EndDate != nil {
		end = req.EndDate
		updates["end_date"] = *req.EndDate
	}
	if end != nil && end.Before(start) {
		return nil, errorx.BadRequest("End date must not be before start date")
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Recurring != nil {
		updates["recurring"] = encodeJSON(req.Recurring, "null")
	}
	if req.Reminders != nil {
		updates["reminders"] = encodeJSON(*req.Reminders, "[]")
	}

	if err := s.repos.Event.Update(ctx, event.ID, updates); err != nil {
		return nil, err
	}
	updated, err := access.FindEvent(ctx, s.repos, event.ID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, updated, userID)
}

// DeleteEvent 删除日程及其出席记录、邀请和动态关联
func (s *eventService) DeleteEvent(ctx context.Context, eventID, userID string) error {
	event, err := access.FindEvent(ctx, s.repos, eventID)
	if err != nil {
		return err
	}
	if _, err := access.RequireEventManager(ctx, s.repos, event, userID); err != nil {
		return err
	}
	return s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		return cascade.DeleteEvents(ctx, tx, []string{event.ID})
	})
}

// ManageAttendance 设置出席状态
// 修改自己：需要能访问日程；修改他人：需要是创建者或管理员，且对方能访问日程
func (s *eventService) ManageAttendance(ctx context.Context, eventID, userID string, req request.ManageAttendanceRequest) (*respond.AttendeeRespond, error) {
	event, err := access.FindEvent(ctx, s.repos, eventID)
	if err != nil {
		return nil, err
	}
	status, ok := model.NormalizeAttendeeStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if !ok {
		return nil, errorx.BadRequest("Invalid attendance status")
	}

	callerReach, err := access.RequireEventReach(ctx, s.repos, event, userID)
	if err != nil {
		return nil, err
	}

	targetID := userID
	if req.UserID != "" && req.UserID != userID {
		if !callerReach.CanManage(event, userID) {
			return nil, errorx.Forbidden("Only the event creator or a family admin can update other attendees")
		}
		target, err := access.FindUser(ctx, s.repos, req.UserID)
		if err != nil {
			return nil, err
		}
		targetReach, err := access.ResolveEventReach(ctx, s.repos, event, target.ID)
		if err != nil {
			return nil, err
		}
		if !targetReach.Allowed() {
			return nil, errorx.BadRequest("User is not a family member or invited to this event")
		}
		targetID = target.ID
	}

	if err := s.repos.EventAttendee.Upsert(ctx, event.ID, targetID, status); err != nil {
		return nil, err
	}
	attendee, err := s.repos.EventAttendee.Find(ctx, event.ID, targetID)
	if err != nil {
		return nil, err
	}
	user, err := s.repos.User.FindByID(ctx, targetID)
	if err != nil && !errorx.IsNotFound(err) {
		return nil, err
	}
	return &respond.AttendeeRespond{EventAttendee: *attendee, User: respond.NewUserBrief(user)}, nil
}

// ListAttendees 出席列表，权限同查看日程
func (s *eventService) ListAttendees(ctx context.Context, eventID, userID string) ([]respond.AttendeeRespond, error) {
	event, err := access.FindEvent(ctx, s.repos, eventID)
	if err != nil {
		return nil, err
	}
	if _, err := access.RequireEventReach(ctx, s.repos, event, userID); err != nil {
		return nil, err
	}
	return s.attendeeResponds(ctx, event.ID)
}

// SendInvitation 邀请家庭外的用户参加日程，仅创建者或管理员
func (s *eventService) SendInvitation(ctx context.Context, eventID, userID string, req request.SendInvitationRequest) (*respond.InvitationRespond, error) {
	event, err := access.FindEvent(ctx, s.repos, eventID)
	if err != nil {
		return nil, err
	}
	if _, err := access.RequireEventManager(ctx, s.repos, event, userID); err != nil {
		return nil, err
	}

	target, err := s.findInvitee(ctx, req)
	if err != nil {
		return nil, err
	}
	member, err := access.Membership(ctx, s.repos, event.FamilyID, target.ID)
	if err != nil {
		return nil, err
	}
	if member != nil {
		return nil, errorx.BadRequest("User is already a member of this family")
	}
	if _, err := s.repos.EventInvitation.FindByEventAndUser(ctx, event.ID, target.ID); err == nil {
		return nil, errorx.BadRequest("User has already been invited to this event")
	} else if !errorx.IsNotFound(err) {
		return nil, err
	}

	invitation := &model.EventInvitation{
		EventID:   event.ID,
		UserID:    target.ID,
		InvitedBy: userID,
		Message:   req.Message,
		Status:    model.InvitationPending,
	}
	if err := s.repos.EventInvitation.Create(ctx, invitation); err != nil {
		return nil, err
	}

	inviter, err := s.repos.User.FindByID(ctx, userID)
	if err != nil && !errorx.IsNotFound(err) {
		return nil, err
	}
	s.sendInvitationMail(target, inviter, event, req.Message)
	s.notifier.Notify(ctx, &mq.Activity{
		Type:       mq.ActivityEventInvited,
		ActorID:    userID,
		FamilyID:   event.FamilyID,
		Recipients: []string{target.ID},
		Payload: map[string]any{
			"eventId":      event.ID,
			"invitationId": invitation.ID,
			"title":        event.Title,
		},
	})

	return &respond.InvitationRespond{
		EventInvitation: *invitation,
		User:            respond.NewUserBrief(target),
		Inviter:         respond.NewUserBrief(inviter),
		Event:           eventBrief(event),
	}, nil
}

// ListEventInvitations 家庭成员可见全部邀请，其他用户只能看到自己的邀请
func (s *eventService) ListEventInvitations(ctx context.Context, eventID, userID string) ([]respond.InvitationRespond, error) {
	event, err := access.FindEvent(ctx, s.repos, eventID)
	if err != nil {
		return nil, err
	}
	member, err := access.Membership(ctx, s.repos, event.FamilyID, userID)
	if err != nil {
		return nil, err
	}

	var invitations []model.EventInvitation
	if member != nil {
		if invitations, err = s.repos.EventInvitation.ListByEvent(ctx, event.ID); err != nil {
			return nil, err
		}
	} else {
		own, err := s.repos.EventInvitation.FindByEventAndUser(ctx, event.ID, userID)
		if err != nil {
			if errorx.IsNotFound(err) {
				return nil, errorx.Forbidden(access.MsgEventDenied)
			}
			return nil, err
		}
		invitations = []model.EventInvitation{*own}
	}
	return s.invitationResponds(ctx, invitations, map[string]*model.Event{event.ID: event})
}

// RespondInvitation 被邀请人接受或拒绝邀请
// 接受时写入唯一一条 attending 出席记录；拒绝不会新建出席记录
func (s *eventService) RespondInvitation(ctx context.Context, eventID, invitationID, userID string, req request.UpdateInvitationRequest) (*respond.InvitationRespond, error) {
	event, err := access.FindEvent(ctx, s.repos, eventID)
	if err != nil {
		return nil, err
	}
	if !model.IsValidID(invitationID) {
		return nil, errorx.NotFound("Invitation not found")
	}
	invitation, err := s.repos.EventInvitation.FindByID(ctx, invitationID)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.NotFound("Invitation not found")
		}
		return nil, err
	}
	if invitation.EventID != event.ID {
		return nil, errorx.NotFound("Invitation not found")
	}
	if invitation.UserID != userID {
		return nil, errorx.Forbidden("Only the invited user can respond to this invitation")
	}

	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.EventInvitation.UpdateStatus(ctx, invitation.ID, req.Status); err != nil {
			return err
		}
		if req.Status == model.InvitationAccepted {
			return tx.EventAttendee.Upsert(ctx, event.ID, userID, model.AttendeeAttending)
		}
		if _, err := tx.EventAttendee.Find(ctx, event.ID, userID); err != nil {
			if errorx.IsNotFound(err) {
				return nil
			}
			return err
		}
		return tx.EventAttendee.Upsert(ctx, event.ID, userID, model.AttendeeDeclined)
	})
	if err != nil {
		return nil, err
	}

	invitation.Status = req.Status
	out, err := s.invitationResponds(ctx, []model.EventInvitation{*invitation}, map[string]*model.Event{event.ID: event})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// ListMyInvitations 当前用户收到的全部邀请，附带日程摘要
func (s *eventService) ListMyInvitations(ctx context.Context, userID string) ([]respond.InvitationRespond, error) {
	invitations, err := s.repos.EventInvitation.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	eventIDs := make([]string, 0, len(invitations))
	for _, inv := range invitations {
		eventIDs = append(eventIDs, inv.EventID)
	}
	events, err := s.repos.Event.FindByIDs(ctx, eventIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.Event, len(events))
	for i := range events {
		byID[events[i].ID] = &events[i]
	}
	return s.invitationResponds(ctx, invitations, byID)
}

func (s *eventService) findInvitee(ctx context.Context, req request.SendInvitationRequest) (*model.User, error) {
	switch {
	case req.UserID != "":
		return access.FindUser(ctx, s.repos, req.UserID)
	case req.Email != "":
		user, err := s.repos.User.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
		if err != nil {
			if errorx.IsNotFound(err) {
				return nil, errorx.NotFound("User not found")
			}
			return nil, err
		}
		return user, nil
	}
	return nil, errorx.BadRequest("userId or email is required")
}

// sendInvitationMail 异步发送邀请邮件，失败只记录日志
func (s *eventService) sendInvitationMail(target, inviter *model.User, event *model.Event, message string) {
	mail := mailer.InvitationMail{
		ToEmail:    target.Email,
		ToName:     target.Name,
		EventID:    event.ID,
		EventTitle: event.Title,
		Message:    message,
	}
	if inviter != nil {
		mail.InviterName = inviter.Name
	}
	s.cache.SubmitTask(func() {
		if err := s.mailer.SendEventInvitation(context.Background(), mail); err != nil {
			zap.L().Warn("send invitation email failed", zap.String("event_id", mail.EventID), zap.Error(err))
		}
	})
}

func (s *eventService) detail(ctx context.Context, event *model.Event, userID string) (*respond.EventDetail, error) {
	attendees, err := s.attendeeResponds(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	detail := &respond.EventDetail{Event: *event, Attendees: attendees}
	for _, a := range attendees {
		if a.UserID == userID {
			detail.UserStatus = a.Status
		}
		if a.UserID == event.CreatedBy && a.User != nil {
			detail.Creator = a.User
		}
	}
	if detail.Creator == nil {
		creator, err := s.repos.User.FindByID(ctx, event.CreatedBy)
		if err != nil && !errorx.IsNotFound(err) {
			return nil, err
		}
		detail.Creator = respond.NewUserBrief(creator)
	}
	return detail, nil
}

func (s *eventService) attendeeResponds(ctx context.Context, eventID string) ([]respond.AttendeeRespond, error) {
	attendees, err := s.repos.EventAttendee.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(attendees))
	for _, a := range attendees {
		ids = append(ids, a.UserID)
	}
	users, err := s.usersByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]respond.AttendeeRespond, 0, len(attendees))
	for _, a := range attendees {
		out = append(out, respond.AttendeeRespond{EventAttendee: a, User: respond.NewUserBrief(users[a.UserID])})
	}
	return out, nil
}

func (s *eventService) invitationResponds(ctx context.Context, invitations []model.EventInvitation, events map[string]*model.Event) ([]respond.InvitationRespond, error) {
	ids := make([]string, 0, len(invitations)*2)
	for _, inv := range invitations {
		ids = append(ids, inv.UserID, inv.InvitedBy)
	}
	users, err := s.usersByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]respond.InvitationRespond, 0, len(invitations))
	for _, inv := range invitations {
		out = append(out, respond.InvitationRespond{
			EventInvitation: inv,
			User:            respond.NewUserBrief(users[inv.UserID]),
			Inviter:         respond.NewUserBrief(users[inv.InvitedBy]),
			Event:           eventBrief(events[inv.EventID]),
		})
	}
	return out, nil
}

func (s *eventService) usersByID(ctx context.Context, ids []string) (map[string]*model.User, error) {
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

func eventBrief(e *model.Event) *respond.EventBrief {
	if e == nil {
		return nil
	}
	return &respond.EventBrief{ID: e.ID, FamilyID: e.FamilyID, Title: e.Title, StartDate: e.StartDate, EndDate: e.EndDate}
}

// parseDate 支持 RFC3339 和 2006-01-02 两种格式，第二个返回值表示是否只有日期
func parseDate(s string) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	return t, true, err
}

// encodeJSON 序列化可选的 JSON 列，nil 时写入 fallback
func encodeJSON(v any, fallback string) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil || string(raw) == "null" {
		return datatypes.JSON(fallback)
	}
	return datatypes.JSON(raw)
}
