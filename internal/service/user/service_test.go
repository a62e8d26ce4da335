package user

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	myredis "family_hub_server/internal/dao/redis"
	"family_hub_server/internal/dto/request"
	"family_hub_server/internal/model"
	"family_hub_server/internal/service/auth"
	"family_hub_server/internal/service/servicetest"
	"family_hub_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*userService, *servicetest.Env) {
	env := servicetest.New(t)
	svc := NewUserService(env.Repos, env.Cache, auth.NewAuthService(env.Cache), env.Mailer, env.Storage)
	return svc, env
}

func strPtr(s string) *string { return &s }

func TestRegisterAndLogin(t *testing.T) {
	svc, env := newService(t)
	ctx := context.Background()

	rsp, err := svc.Register(ctx, request.RegisterRequest{Name: " Alice ", Email: "Alice@Example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", rsp.User.Name)
	assert.Equal(t, "alice@example.com", rsp.User.Email)
	assert.Equal(t, model.UserRoleUser, rsp.User.Role)
	assert.NotEmpty(t, rsp.Token)
	assert.NotEmpty(t, rsp.RefreshToken)
	require.Eventually(t, func() bool { return env.Mailer.WelcomeCount() == 1 }, time.Second, 10*time.Millisecond)

	_, err = svc.Register(ctx, request.RegisterRequest{Name: "Other", Email: "alice@example.com", Password: "secret123"})
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))

	_, err = svc.Login(ctx, request.LoginRequest{Email: "alice@example.com", Password: "wrong"})
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))
	_, err = svc.Login(ctx, request.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))

	logged, err := svc.Login(ctx, request.LoginRequest{Email: "ALICE@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, rsp.User.ID, logged.User.ID)
}

func TestRefreshTokenSingleSession(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, request.RegisterRequest{Name: "Alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	token, err := svc.RefreshToken(ctx, request.RefreshTokenRequest{RefreshToken: first.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
	assert.True(t, token.ExpiresAt.After(time.Now()))

	// 新的登录使旧的 Refresh Token 失效
	second, err := svc.Login(ctx, request.LoginRequest{Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	_, err = svc.RefreshToken(ctx, request.RefreshTokenRequest{RefreshToken: first.RefreshToken})
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))

	// Access Token 不能当作 Refresh Token 使用
	_, err = svc.RefreshToken(ctx, request.RefreshTokenRequest{RefreshToken: second.Token})
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))

	require.NoError(t, svc.Logout(ctx, second.User.ID))
	_, err = svc.RefreshToken(ctx, request.RefreshTokenRequest{RefreshToken: second.RefreshToken})
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))
}

func TestUpdateProfile(t *testing.T) {
	svc, env := newService(t)
	ctx := context.Background()
	alice := env.CreateUser(t, "Alice", "alice@example.com")
	env.CreateUser(t, "Bob", "bob@example.com")

	_, err := svc.UpdateProfile(ctx, alice.ID, request.UpdateProfileRequest{Email: strPtr("BOB@example.com")})
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))

	_, err = svc.UpdateProfile(ctx, alice.ID, request.UpdateProfileRequest{Name: strPtr("  ")})
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))

	updated, err := svc.UpdateProfile(ctx, alice.ID, request.UpdateProfileRequest{
		Name:     strPtr("Alice Smith"),
		Email:    strPtr("alice.smith@example.com"),
		Avatar:   strPtr("http://files.test/uploads/media/a.png"),
		Password: strPtr("newsecret"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", updated.Name)
	assert.Equal(t, "alice.smith@example.com", updated.Email)

	profile, err := svc.GetProfile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "http://files.test/uploads/media/a.png", profile.Avatar)

	_, err = svc.Login(ctx, request.LoginRequest{Email: "alice.smith@example.com", Password: "newsecret"})
	require.NoError(t, err)
	_, err = svc.Login(ctx, request.LoginRequest{Email: "alice.smith@example.com", Password: "secret123"})
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))
}

func TestListUsersRequiresPlatformAdmin(t *testing.T) {
	svc, env := newService(t)
	ctx := context.Background()
	alice := env.CreateUser(t, "Alice", "alice@example.com")
	env.CreateUser(t, "Bob", "bob@example.com")
	admin := &model.User{Name: "Root", Email: "root@example.com", RawPassword: "secret123", Role: model.UserRoleAdmin}
	require.NoError(t, env.Repos.User.Create(ctx, admin))

	_, err := svc.ListUsers(ctx, alice.ID, request.ListUsersQuery{})
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	all, err := svc.ListUsers(ctx, admin.ID, request.ListUsersQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.Pagination.Total)

	found, err := svc.ListUsers(ctx, admin.ID, request.ListUsersQuery{Search: "bob"})
	require.NoError(t, err)
	require.Len(t, found.Users, 1)
	assert.Equal(t, "bob@example.com", found.Users[0].Email)
}

func TestDeleteAccountCascades(t *testing.T) {
	svc, env := newService(t)
	ctx := context.Background()
	alice := env.CreateUser(t, "Alice", "alice@example.com")
	bob := env.CreateUser(t, "Bob", "bob@example.com")
	ownFamily := env.CreateFamily(t, "Smiths", alice, bob)
	bobsFamily := env.CreateFamily(t, "Joneses", bob, alice)

	// alice 在 bob 的家庭里发的动态，以及对 bob 动态的评论和点赞
	alicePost := &model.Post{Content: "mine", Type: model.PostTypeText, Privacy: model.PrivacyFamily, CreatedBy: alice.ID}
	require.NoError(t, env.Repos.Post.Create(ctx, alicePost))
	bobPost := &model.Post{Content: "bob's", Type: model.PostTypeText, Privacy: model.PrivacyFamily, CreatedBy: bob.ID}
	require.NoError(t, env.Repos.Post.Create(ctx, bobPost))
	require.NoError(t, env.Repos.PostFamily.CreateBatch(ctx, []model.PostFamily{
		{PostID: alicePost.ID, FamilyID: bobsFamily.ID},
		{PostID: bobPost.ID, FamilyID: ownFamily.ID},
	}))
	comment := &model.Comment{PostID: bobPost.ID, UserID: alice.ID, Content: "hi"}
	require.NoError(t, env.Repos.Comment.Create(ctx, comment))
	require.NoError(t, env.Repos.Like.Create(ctx, &model.Like{
		UserID: alice.ID, TargetType: model.TargetPost, TargetID: bobPost.ID, Reaction: model.DefaultReaction,
	}))

	url, err := env.Storage.Put(ctx, "media/alice.png", strings.NewReader("png"), 3, "image/png")
	require.NoError(t, err)
	require.NoError(t, env.Repos.Media.Create(ctx, &model.Media{
		URL: url, StorageKey: "media/alice.png", Type: model.MediaImage, UploadedByID: alice.ID,
	}))

	authSvc := auth.NewAuthService(env.Cache)
	_, refresh, err := authSvc.IssueTokens(ctx, alice.ID)
	require.NoError(t, err)
	bobListKey, err := myredis.FamilyListKey(ctx, env.Cache, bob.ID)
	require.NoError(t, err)
	require.NoError(t, env.Cache.Set(ctx, bobListKey, "[]", time.Minute))

	require.NoError(t, svc.DeleteAccount(ctx, alice.ID))

	_, err = svc.GetProfile(ctx, alice.ID)
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))
	_, err = env.Repos.Family.FindByID(ctx, ownFamily.ID)
	assert.True(t, errorx.IsNotFound(err))

	members, err := env.Repos.FamilyMember.ListUserIDs(ctx, bobsFamily.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{bob.ID}, members)

	_, err = env.Repos.Post.FindByID(ctx, alicePost.ID)
	assert.True(t, errorx.IsNotFound(err))
	_, err = env.Repos.Post.FindByID(ctx, bobPost.ID)
	require.NoError(t, err)
	comments, err := env.Repos.Comment.ListByPost(ctx, bobPost.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
	likes, err := env.Repos.Like.CountByTarget(ctx, model.PostTarget(bobPost.ID))
	require.NoError(t, err)
	assert.Zero(t, likes)

	_, statErr := os.Stat(filepath.Join(env.Storage.Root(), "media", "alice.png"))
	assert.True(t, os.IsNotExist(statErr))

	_, err = svc.RefreshToken(ctx, request.RefreshTokenRequest{RefreshToken: refresh})
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))
	currentKey, err := myredis.FamilyListKey(ctx, env.Cache, bob.ID)
	require.NoError(t, err)
	assert.NotEqual(t, bobListKey, currentKey)
	cached, err := env.Cache.Get(ctx, currentKey)
	require.NoError(t, err)
	assert.Empty(t, cached)
}
