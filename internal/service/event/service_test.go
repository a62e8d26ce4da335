package event

import (
	"context"
	"testing"
	"time"

	"family_hub_server/internal/dto/request"
	"family_hub_server/internal/infrastructure/mq"
	"family_hub_server/internal/model"
	"family_hub_server/internal/service/feed"
	"family_hub_server/internal/service/servicetest"
	"family_hub_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc    *eventService
	env    *servicetest.Env
	alice  *model.User // 家庭创建者（管理员）
	bob    *model.User // 普通成员
	guest  *model.User // 家庭外用户
	family *model.Family
}

func setup(t *testing.T) *fixture {
	env := servicetest.New(t)
	f := &fixture{
		svc:   NewEventService(env.Repos, env.Cache, env.Mailer, feed.NewNotifier(env.Publisher)),
		env:   env,
		alice: env.CreateUser(t, "Alice", "alice@example.com"),
		bob:   env.CreateUser(t, "Bob", "bob@example.com"),
		guest: env.CreateUser(t, "Grace", "grace@example.com"),
	}
	f.family = env.CreateFamily(t, "Smiths", f.alice, f.bob)
	return f
}

func (f *fixture) createEvent(t *testing.T, by *model.User) string {
	t.Helper()
	detail, err := f.svc.CreateEvent(context.Background(), f.family.ID, by.ID, request.CreateEventRequest{
		Title:     "Picnic",
		StartDate: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
		Category:  "outing",
		Reminders: []request.Reminder{{Type: "notification", Offset: 30}},
	})
	require.NoError(t, err)
	return detail.ID
}

func statusOf(t *testing.T, f *fixture, eventID, userID string) string {
	t.Helper()
	a, err := f.env.Repos.EventAttendee.Find(context.Background(), eventID, userID)
	if errorx.IsNotFound(err) {
		return ""
	}
	require.NoError(t, err)
	return a.Status
}

func TestCreateEventEnrollsFamily(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	detail, err := f.svc.CreateEvent(ctx, f.family.ID, f.bob.ID, request.CreateEventRequest{
		Title:     "Dinner",
		StartDate: time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, model.AttendeeAttending, detail.UserStatus)
	require.Len(t, detail.Attendees, 2)
	assert.Equal(t, model.AttendeeAttending, statusOf(t, f, detail.ID, f.bob.ID))
	assert.Equal(t, model.AttendeePending, statusOf(t, f, detail.ID, f.alice.ID))
	require.NotNil(t, detail.Creator)
	assert.Equal(t, f.bob.ID, detail.Creator.ID)

	activities := f.env.Publisher.OfType(mq.ActivityEventCreated)
	require.Len(t, activities, 1)
	assert.Equal(t, []string{f.alice.ID}, activities[0].Recipients)

	_, err = f.svc.CreateEvent(ctx, f.family.ID, f.guest.ID, request.CreateEventRequest{Title: "x", StartDate: time.Now()})
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	end := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	_, err = f.svc.CreateEvent(ctx, f.family.ID, f.bob.ID, request.CreateEventRequest{
		Title: "bad", StartDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), EndDate: &end,
	})
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))
}

func TestListFamilyEventsFilters(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.createEvent(t, f.alice)
	_, err := f.svc.CreateEvent(ctx, f.family.ID, f.alice.ID, request.CreateEventRequest{
		Title: "Dentist", StartDate: time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC), Category: "health",
	})
	require.NoError(t, err)

	all, err := f.svc.ListFamilyEvents(ctx, f.family.ID, f.bob.ID, request.EventListQuery{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Picnic", all[0].Title)

	health, err := f.svc.ListFamilyEvents(ctx, f.family.ID, f.bob.ID, request.EventListQuery{Category: "health"})
	require.NoError(t, err)
	require.Len(t, health, 1)
	assert.Equal(t, "Dentist", health[0].Title)

	_, err = f.svc.ListFamilyEvents(ctx, f.family.ID, f.bob.ID, request.EventListQuery{From: "yesterday"})
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))

	_, err = f.svc.ListFamilyEvents(ctx, f.family.ID, f.guest.ID, request.EventListQuery{})
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))
}

func TestUpdateAndDeleteRequireCreatorOrAdmin(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ev := f.createEvent(t, f.alice)

	title := "Beach day"
	_, err := f.svc.UpdateEvent(ctx, ev, f.bob.ID, request.UpdateEventRequest{Title: &title})
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	bobEvent := f.createEvent(t, f.bob)
	updated, err := f.svc.UpdateEvent(ctx, bobEvent, f.bob.ID, request.UpdateEventRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Beach day", updated.Title)

	// 管理员可以修改和删除别人创建的日程
	_, err = f.svc.UpdateEvent(ctx, bobEvent, f.alice.ID, request.UpdateEventRequest{Title: &title})
	require.NoError(t, err)

	err = f.svc.DeleteEvent(ctx, ev, f.bob.ID)
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))
	require.NoError(t, f.svc.DeleteEvent(ctx, bobEvent, f.alice.ID))
	_, err = f.svc.GetEvent(ctx, bobEvent, f.alice.ID)
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))
	attendees, err := f.env.Repos.EventAttendee.ListByEvent(ctx, bobEvent)
	require.NoError(t, err)
	assert.Empty(t, attendees)
}

func TestManageAttendance(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ev := f.createEvent(t, f.alice)

	_, err := f.svc.ManageAttendance(ctx, ev, f.bob.ID, request.ManageAttendanceRequest{Status: "sleeping"})
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))

	a, err := f.svc.ManageAttendance(ctx, ev, f.bob.ID, request.ManageAttendanceRequest{Status: "accepted"})
	require.NoError(t, err)
	assert.Equal(t, model.AttendeeAttending, a.Status)

	_, err = f.svc.ManageAttendance(ctx, ev, f.guest.ID, request.ManageAttendanceRequest{Status: "maybe"})
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	// 普通成员不能修改别人的状态
	_, err = f.svc.ManageAttendance(ctx, ev, f.bob.ID, request.ManageAttendanceRequest{Status: "maybe", UserID: f.alice.ID})
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	// 创建者修改无法访问日程的用户
	_, err = f.svc.ManageAttendance(ctx, ev, f.alice.ID, request.ManageAttendanceRequest{Status: "maybe", UserID: f.guest.ID})
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))

	a, err = f.svc.ManageAttendance(ctx, ev, f.alice.ID, request.ManageAttendanceRequest{Status: "declined", UserID: f.bob.ID})
	require.NoError(t, err)
	assert.Equal(t, model.AttendeeDeclined, a.Status)
	assert.Equal(t, model.AttendeeDeclined, statusOf(t, f, ev, f.bob.ID))
}

func TestInvitationFlow(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ev := f.createEvent(t, f.alice)

	_, err := f.svc.SendInvitation(ctx, ev, f.bob.ID, request.SendInvitationRequest{UserID: f.guest.ID})
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	_, err = f.svc.SendInvitation(ctx, ev, f.alice.ID, request.SendInvitationRequest{Email: f.bob.Email})
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))

	_, err = f.svc.SendInvitation(ctx, ev, f.alice.ID, request.SendInvitationRequest{Email: "ghost@example.com"})
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))

	inv, err := f.svc.SendInvitation(ctx, ev, f.alice.ID, request.SendInvitationRequest{Email: f.guest.Email, Message: "Join us"})
	require.NoError(t, err)
	assert.Equal(t, model.InvitationPending, inv.Status)
	require.NotNil(t, inv.Event)
	assert.Equal(t, "Picnic", inv.Event.Title)

	_, err = f.svc.SendInvitation(ctx, ev, f.alice.ID, request.SendInvitationRequest{UserID: f.guest.ID})
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))

	require.Eventually(t, func() bool { return f.env.Mailer.InvitationCount() == 1 }, time.Second, 10*time.Millisecond)
	require.Len(t, f.env.Publisher.OfType(mq.ActivityEventInvited), 1)

	// 被邀请人在接受前无法查看日程
	_, err = f.svc.GetEvent(ctx, ev, f.guest.ID)
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	own, err := f.svc.ListEventInvitations(ctx, ev, f.guest.ID)
	require.NoError(t, err)
	require.Len(t, own, 1)

	_, err = f.svc.RespondInvitation(ctx, ev, inv.ID, f.alice.ID, request.UpdateInvitationRequest{Status: "accepted"})
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	_, err = f.svc.RespondInvitation(ctx, ev, inv.ID, f.guest.ID, request.UpdateInvitationRequest{Status: "accepted"})
	require.NoError(t, err)
	_, err = f.svc.RespondInvitation(ctx, ev, inv.ID, f.guest.ID, request.UpdateInvitationRequest{Status: "accepted"})
	require.NoError(t, err)

	attendees, err := f.env.Repos.EventAttendee.ListByEvent(ctx, ev)
	require.NoError(t, err)
	var guestRows int
	for _, a := range attendees {
		if a.UserID == f.guest.ID {
			guestRows++
			assert.Equal(t, model.AttendeeAttending, a.Status)
		}
	}
	assert.Equal(t, 1, guestRows)

	detail, err := f.svc.GetEvent(ctx, ev, f.guest.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AttendeeAttending, detail.UserStatus)

	mine, err := f.svc.ListMyInvitations(ctx, f.guest.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, model.InvitationAccepted, mine[0].Status)
}

func TestDecliningNeverCreatesAttendee(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ev := f.createEvent(t, f.alice)

	inv, err := f.svc.SendInvitation(ctx, ev, f.alice.ID, request.SendInvitationRequest{UserID: f.guest.ID})
	require.NoError(t, err)

	_, err = f.svc.RespondInvitation(ctx, ev, inv.ID, f.guest.ID, request.UpdateInvitationRequest{Status: "declined"})
	require.NoError(t, err)
	assert.Equal(t, "", statusOf(t, f, ev, f.guest.ID))

	// 接受后再拒绝，已有的出席记录改为 declined
	_, err = f.svc.RespondInvitation(ctx, ev, inv.ID, f.guest.ID, request.UpdateInvitationRequest{Status: "accepted"})
	require.NoError(t, err)
	_, err = f.svc.RespondInvitation(ctx, ev, inv.ID, f.guest.ID, request.UpdateInvitationRequest{Status: "declined"})
	require.NoError(t, err)
	assert.Equal(t, model.AttendeeDeclined, statusOf(t, f, ev, f.guest.ID))
}
