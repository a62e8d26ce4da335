// Package servicetest 为 Service 层测试准备内存数据库、进程内缓存、临时目录存储以及可记录的邮件和动态发布器
package servicetest

import (
	"context"
	"sync"
	"testing"

	"family_hub_server/internal/dao/rdb/rdbtest"
	"family_hub_server/internal/dao/rdb/repository"
	myredis "family_hub_server/internal/dao/redis"
	"family_hub_server/internal/infrastructure/mailer"
	"family_hub_server/internal/infrastructure/mq"
	"family_hub_server/internal/model"
	"family_hub_server/internal/storage"
	"family_hub_server/pkg/util/jwt"

	"github.com/stretchr/testify/require"
)

// Env 一组相互独立的测试依赖
type Env struct {
	Repos     *repository.Repositories
	Cache     *myredis.LocalCache
	Storage   *storage.LocalStorage
	Mailer    *RecordingMailer
	Publisher *CapturePublisher
}

// New 创建测试依赖，测试结束时自动释放
func New(t *testing.T) *Env {
	t.Helper()
	jwt.Init("test-secret", 15, 24)

	cache := myredis.NewLocalCache(2, 16)
	t.Cleanup(cache.Close)

	store, err := storage.NewLocalStorage(t.TempDir(), "http://files.test")
	require.NoError(t, err)

	return &Env{
		Repos:     rdbtest.Open(t),
		Cache:     cache,
		Storage:   store,
		Mailer:    &RecordingMailer{},
		Publisher: &CapturePublisher{},
	}
}

// CreateUser 直接写库创建用户，密码固定为 "secret123"
func (e *Env) CreateUser(t *testing.T, name, email string) *model.User {
	t.Helper()
	user := &model.User{Name: name, Email: email, RawPassword: "secret123"}
	require.NoError(t, e.Repos.User.Create(context.Background(), user))
	return user
}

// CreateFamily 直接写库创建家庭，creator 为管理员，members 为普通成员
func (e *Env) CreateFamily(t *testing.T, name string, creator *model.User, members ...*model.User) *model.Family {
	t.Helper()
	ctx := context.Background()
	family := &model.Family{Name: name, CreatedBy: creator.ID}
	require.NoError(t, e.Repos.Family.Create(ctx, family))
	require.NoError(t, e.Repos.FamilyMember.Create(ctx, &model.FamilyMember{
		FamilyID: family.ID, UserID: creator.ID, Role: model.FamilyRoleAdmin,
	}))
	for _, m := range members {
		require.NoError(t, e.Repos.FamilyMember.Create(ctx, &model.FamilyMember{
			FamilyID: family.ID, UserID: m.ID, Role: model.FamilyRoleMember,
		}))
	}
	return family
}

// RecordingMailer 记录所有发送请求
type RecordingMailer struct {
	mu          sync.Mutex
	Welcomes    []string
	Invitations []mailer.InvitationMail
}

func (m *RecordingMailer) SendWelcome(_ context.Context, toEmail, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Welcomes = append(m.Welcomes, toEmail)
	return nil
}

func (m *RecordingMailer) SendEventInvitation(_ context.Context, mail mailer.InvitationMail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Invitations = append(m.Invitations, mail)
	return nil
}

// WelcomeCount / InvitationCount 并发安全地读取记录数
func (m *RecordingMailer) WelcomeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Welcomes)
}

func (m *RecordingMailer) InvitationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Invitations)
}

// CapturePublisher 记录发布的动态
type CapturePublisher struct {
	mu  sync.Mutex
	got []*mq.Activity
}

func (p *CapturePublisher) Publish(_ context.Context, a *mq.Activity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, a)
	return nil
}

// OfType 返回指定类型的动态
func (p *CapturePublisher) OfType(activityType string) []*mq.Activity {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*mq.Activity
	for _, a := range p.got {
		if a.Type == activityType {
			out = append(out, a)
		}
	}
	return out
}
