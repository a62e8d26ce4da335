package family

import (
	"context"
	"sync"
	"testing"
	"time"

	myredis "family_hub_server/internal/dao/redis"
	"family_hub_server/internal/dto/request"
	"family_hub_server/internal/infrastructure/mq"
	"family_hub_server/internal/model"
	"family_hub_server/internal/service/feed"
	"family_hub_server/internal/service/servicetest"
	"family_hub_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*familyService, *servicetest.Env) {
	env := servicetest.New(t)
	return NewFamilyService(env.Repos, env.Cache, feed.NewNotifier(env.Publisher)), env
}

func TestCreateFamilyMakesCreatorAdmin(t *testing.T) {
	svc, env := newService(t)
	ctx := context.Background()
	alice := env.CreateUser(t, "Alice", "alice@example.com")

	family, err := svc.CreateFamily(ctx, alice.ID, request.CreateFamilyRequest{Name: "Smiths"})
	require.NoError(t, err)

	members, err := env.Repos.FamilyMember.ListByFamily(ctx, family.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, alice.ID, members[0].UserID)
	assert.Equal(t, model.FamilyRoleAdmin, members[0].Role)
	assert.ElementsMatch(t, model.PermissionsForRole(model.FamilyRoleAdmin), []string(members[0].Permissions))
	assert.JSONEq(t, "{}", string(family.Settings))
}

func TestCreateFamilyRequiresName(t *testing.T) {
	svc, env := newService(t)
	alice := env.CreateUser(t, "Alice", "alice@example.com")

	_, err := svc.CreateFamily(context.Background(), alice.ID, request.CreateFamilyRequest{Name: "   "})
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))
}

func TestGetFamilyGates(t *testing.T) {
	svc, env := newService(t)
	ctx := context.Background()
	alice := env.CreateUser(t, "Alice", "alice@example.com")
	bob := env.CreateUser(t, "Bob", "bob@example.com")
	eve := env.CreateUser(t, "Eve", "eve@example.com")
	family := env.CreateFamily(t, "Smiths", alice, bob)

	detail, err := svc.GetFamily(ctx, family.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, model.FamilyRoleMember, detail.UserRole)
	assert.Len(t, detail.Members, 2)
	require.NotNil(t, detail.Members[0].User)

	_, err = svc.GetFamily(ctx, family.ID, eve.ID)
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	_, err = svc.GetFamily(ctx, "not-a-uuid", alice.ID)
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))
}

func TestUpdateFamilyAdminOnly(t *testing.T) {
	svc, env := newService(t)
	ctx := context.Background()
	alice := env.CreateUser(t, "Alice", "alice@example.com")
	bob := env.CreateUser(t, "Bob", "bob@example.com")
	family := env.CreateFamily(t, "Smiths", alice, bob)

	name := "The Smiths"
	_, err := svc.UpdateFamily(ctx, family.ID, bob.ID, request.UpdateFamilyRequest{Name: &name})
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	updated, err := svc.UpdateFamily(ctx, family.ID, alice.ID, request.UpdateFamilyRequest{
		Name:     &name,
		Settings: map[string]any{"timezone": "UTC"},
	})
	require.NoError(t, err)
	assert.Equal(t, "The Smiths", updated.Name)
	assert.JSONEq(t, `{"timezone":"UTC"}`, string(updated.Settings))
}

func TestAddMember(t *testing.T) {
	svc, env := newService(t)
	ctx := context.Background()
	alice := env.CreateUser(t, "Alice", "alice@example.com")
	bob := env.CreateUser(t, "Bob", "bob@example.com")
	carol := env.CreateUser(t, "Carol", "carol@example.com")
	family := env.CreateFamily(t, "Smiths", alice, bob)

	_, err := svc.AddMember(ctx, family.ID, bob.ID, request.AddMemberRequest{Email: carol.Email})
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	_, err = svc.AddMember(ctx, family.ID, alice.ID, request.AddMemberRequest{Email: "nobody@example.com"})
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))

	_, err = svc.AddMember(ctx, family.ID, alice.ID, request.AddMemberRequest{Email: bob.Email})
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))

	added, err := svc.AddMember(ctx, family.ID, alice.ID, request.AddMemberRequest{Email: "CAROL@example.com"})
	require.NoError(t, err)
	assert.Equal(t, carol.ID, added.UserID)
	assert.Equal(t, model.FamilyRoleMember, added.Role)
	assert.ElementsMatch(t, model.PermissionsForRole(model.FamilyRoleMember), []string(added.Permissions))

	activities := env.Publisher.OfType(mq.ActivityMemberAdded)
	require.Len(t, activities, 1)
	assert.ElementsMatch(t, []string{bob.ID, carol.ID}, activities[0].Recipients)
}

func TestRemoveCreatorIsRejected(t *testing.T) {
	svc, env := newService(t)
	ctx := context.Background()
	alice := env.CreateUser(t, "Alice", "alice@example.com")
	bob := env.CreateUser(t, "Bob", "bob@example.com")
	family := env.CreateFamily(t, "Smiths", alice, bob)
	_, err := svc.UpdateMemberRole(ctx, family.ID, alice.ID, bob.ID, request.UpdateMemberRoleRequest{Role: model.FamilyRoleAdmin})
	require.NoError(t, err)

	err = svc.RemoveMember(ctx, family.ID, bob.ID, alice.ID)
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))

	err = svc.LeaveFamily(ctx, family.ID, alice.ID)
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))
}

func TestLastAdminIsProtected(t *testing.T) {
	svc, env := newService(t)
	ctx := context.Background()
	alice := env.CreateUser(t, "Alice", "alice@example.com")
	bob := env.CreateUser(t, "Bob", "bob@example.com")
	family := env.CreateFamily(t, "Smiths", alice, bob)

	// bob 成为管理员后把创建者降级，bob 成为唯一的管理员
	_, err := svc.UpdateMemberRole(ctx, family.ID, alice.ID, bob.ID, request.UpdateMemberRoleRequest{Role: model.FamilyRoleAdmin})
	require.NoError(t, err)
	_, err = svc.UpdateMemberRole(ctx, family.ID, bob.ID, alice.ID, request.UpdateMemberRoleRequest{Role: model.FamilyRoleMember})
	require.NoError(t, err)

	err = svc.RemoveMember(ctx, family.ID, bob.ID, bob.ID)
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))

	err = svc.LeaveFamily(ctx, family.ID, bob.ID)
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))

	_, err = svc.UpdateMemberRole(ctx, family.ID, bob.ID, bob.ID, request.UpdateMemberRoleRequest{Role: model.FamilyRoleMember})
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))

	admins, err := env.Repos.FamilyMember.CountByRole(ctx, family.ID, model.FamilyRoleAdmin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, admins)
}

func TestRemoveMember(t *testing.T) {
	svc, env := newService(t)
	ctx := context.Background()
	alice := env.CreateUser(t, "Alice", "alice@example.com")
	bob := env.CreateUser(t, "Bob", "bob@example.com")
	carol := env.CreateUser(t, "Carol", "carol@example.com")
	family := env.CreateFamily(t, "Smiths", alice, bob)

	err := svc.RemoveMember(ctx, family.ID, bob.ID, alice.ID)
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	err = svc.RemoveMember(ctx, family.ID, alice.ID, carol.ID)
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))

	require.NoError(t, svc.RemoveMember(ctx, family.ID, alice.ID, bob.ID))
	_, err = svc.GetFamily(ctx, family.ID, bob.ID)
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))
}

func TestListMyFamiliesCacheIsInvalidated(t *testing.T) {
	svc, env := newService(t)
	ctx := context.Background()
	alice := env.CreateUser(t, "Alice", "alice@example.com")
	bob := env.CreateUser(t, "Bob", "bob@example.com")
	family := env.CreateFamily(t, "Smiths", alice)

	list, err := svc.ListMyFamilies(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
	require.Eventually(t, func() bool {
		key, err := myredis.FamilyListKey(ctx, env.Cache, bob.ID)
		if err != nil {
			return false
		}
		v, _ := env.Cache.Get(ctx, key)
		return v != ""
	}, time.Second, 10*time.Millisecond)

	_, err = svc.AddMember(ctx, family.ID, alice.ID, request.AddMemberRequest{Email: bob.Email})
	require.NoError(t, err)

	list, err = svc.ListMyFamilies(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, family.ID, list[0].ID)
	assert.Equal(t, model.FamilyRoleMember, list[0].Role)
	assert.Equal(t, 2, list[0].MemberCount)
}

// deferredCache 只把异步任务排队，由测试决定何时执行
type deferredCache struct {
	*myredis.LocalCache
	mu    sync.Mutex
	tasks []func()
}

func (c *deferredCache) SubmitTask(action func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = append(c.tasks, action)
}

func (c *deferredCache) runTasks() {
	c.mu.Lock()
	tasks := c.tasks
	c.tasks = nil
	c.mu.Unlock()
	for _, task := range tasks {
		task()
	}
}

func TestListMyFamiliesIgnoresLateWriteBack(t *testing.T) {
	env := servicetest.New(t)
	cache := &deferredCache{LocalCache: env.Cache}
	svc := NewFamilyService(env.Repos, cache, feed.NewNotifier(env.Publisher))
	ctx := context.Background()
	alice := env.CreateUser(t, "Alice", "alice@example.com")
	bob := env.CreateUser(t, "Bob", "bob@example.com")
	family := env.CreateFamily(t, "Smiths", alice)

	// 写回排队期间成员关系发生变化
	list, err := svc.ListMyFamilies(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
	adminList, err := svc.ListMyFamilies(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, adminList, 1)
	assert.Equal(t, 1, adminList[0].MemberCount)
	_, err = svc.AddMember(ctx, family.ID, alice.ID, request.AddMemberRequest{Email: bob.Email})
	require.NoError(t, err)
	cache.runTasks()

	list, err = svc.ListMyFamilies(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, family.ID, list[0].ID)
	adminList, err = svc.ListMyFamilies(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, adminList, 1)
	assert.Equal(t, 2, adminList[0].MemberCount)

	cache.runTasks()
	list, err = svc.ListMyFamilies(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NoError(t, svc.RemoveMember(ctx, family.ID, alice.ID, bob.ID))
	cache.runTasks()

	list, err = svc.ListMyFamilies(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDeleteFamilyCascades(t *testing.T) {
	svc, env := newService(t)
	ctx := context.Background()
	alice := env.CreateUser(t, "Alice", "alice@example.com")
	bob := env.CreateUser(t, "Bob", "bob@example.com")
	family := env.CreateFamily(t, "Smiths", alice, bob)

	event := &model.Event{FamilyID: family.ID, Title: "Picnic", StartDate: time.Now(), CreatedBy: alice.ID}
	require.NoError(t, env.Repos.Event.Create(ctx, event))
	require.NoError(t, env.Repos.EventAttendee.Upsert(ctx, event.ID, bob.ID, model.AttendeePending))
	post := &model.Post{Content: "hello", Type: model.PostTypeText, Privacy: model.PrivacyFamily, CreatedBy: alice.ID}
	require.NoError(t, env.Repos.Post.Create(ctx, post))
	require.NoError(t, env.Repos.PostFamily.CreateBatch(ctx, []model.PostFamily{{PostID: post.ID, FamilyID: family.ID}}))

	err := svc.DeleteFamily(ctx, family.ID, bob.ID)
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	require.NoError(t, svc.DeleteFamily(ctx, family.ID, alice.ID))

	_, err = env.Repos.Family.FindByID(ctx, family.ID)
	assert.True(t, errorx.IsNotFound(err))
	members, err := env.Repos.FamilyMember.ListByFamily(ctx, family.ID)
	require.NoError(t, err)
	assert.Empty(t, members)
	_, err = env.Repos.Event.FindByID(ctx, event.ID)
	assert.True(t, errorx.IsNotFound(err))
	attendees, err := env.Repos.EventAttendee.ListByEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Empty(t, attendees)
	links, err := env.Repos.PostFamily.FamilyIDsByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, links)
	_, err = env.Repos.Post.FindByID(ctx, post.ID)
	assert.NoError(t, err)
}
