package media

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"mime/multipart"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"family_hub_server/internal/dto/request"
	"family_hub_server/internal/model"
	"family_hub_server/internal/service/servicetest"
	"family_hub_server/pkg/errorx"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileHeader 通过 multipart 编解码得到一个真实的 FileHeader
func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func storedFiles(t *testing.T, env *servicetest.Env) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(env.Storage.Root(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	require.NoError(t, err)
	return files
}

func TestUploadImageCreatesThumbnail(t *testing.T) {
	env := servicetest.New(t)
	svc := NewMediaService(env.Repos, env.Storage, 15*time.Minute)
	alice := env.CreateUser(t, "Alice", "alice@example.com")
	family := env.CreateFamily(t, "Smiths", alice)

	media, err := svc.Upload(context.Background(), alice.ID, UploadFile{
		Header:   fileHeader(t, "beach.png", pngBytes(t, 600, 400)),
		FamilyID: family.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, model.MediaImage, media.Type)
	assert.Equal(t, "image/png", media.MimeType)
	assert.Equal(t, "beach.png", media.OriginalName)
	assert.True(t, strings.HasPrefix(media.URL, "http://files.test/uploads/media/"))
	assert.True(t, strings.HasSuffix(media.StorageKey, ".png"))
	require.NotNil(t, media.FamilyID)
	assert.Equal(t, family.ID, *media.FamilyID)

	require.NotEmpty(t, media.ThumbKey)
	assert.True(t, strings.HasPrefix(media.ThumbURL, "http://files.test/uploads/media/thumbs/"))
	thumb, err := imaging.Open(filepath.Join(env.Storage.Root(), filepath.FromSlash(media.ThumbKey)))
	require.NoError(t, err)
	assert.Equal(t, 300, thumb.Bounds().Dx())
	assert.Equal(t, 200, thumb.Bounds().Dy())

	var meta map[string]int
	require.NoError(t, json.Unmarshal(media.Metadata, &meta))
	assert.Equal(t, 600, meta["width"])
	assert.Equal(t, 400, meta["height"])
	assert.Len(t, storedFiles(t, env), 2)
}

func TestUploadRejectsUnsupportedAndOutsiders(t *testing.T) {
	env := servicetest.New(t)
	svc := NewMediaService(env.Repos, env.Storage, 15*time.Minute)
	alice := env.CreateUser(t, "Alice", "alice@example.com")
	carol := env.CreateUser(t, "Carol", "carol@example.com")
	family := env.CreateFamily(t, "Smiths", alice)
	ctx := context.Background()

	_, err := svc.Upload(ctx, alice.ID, UploadFile{Header: fileHeader(t, "notes.txt", []byte("just some words"))})
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))

	_, err = svc.Upload(ctx, carol.ID, UploadFile{
		Header:   fileHeader(t, "x.png", pngBytes(t, 10, 10)),
		FamilyID: family.ID,
	})
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	_, err = svc.Upload(ctx, alice.ID, UploadFile{})
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))
	assert.Empty(t, storedFiles(t, env))
}

func TestUploadRemovesBlobsWhenSaveFails(t *testing.T) {
	env := servicetest.New(t)
	svc := NewMediaService(env.Repos, env.Storage, 15*time.Minute)
	alice := env.CreateUser(t, "Alice", "alice@example.com")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Upload(ctx, alice.ID, UploadFile{Header: fileHeader(t, "a.png", pngBytes(t, 20, 20))})
	require.Error(t, err)
	assert.Empty(t, storedFiles(t, env))
}

func TestGetAndDeleteMedia(t *testing.T) {
	env := servicetest.New(t)
	svc := NewMediaService(env.Repos, env.Storage, 15*time.Minute)
	alice := env.CreateUser(t, "Alice", "alice@example.com")
	bob := env.CreateUser(t, "Bob", "bob@example.com")
	carol := env.CreateUser(t, "Carol", "carol@example.com")
	family := env.CreateFamily(t, "Smiths", alice, bob)
	ctx := context.Background()

	media, err := svc.Upload(ctx, bob.ID, UploadFile{
		Header:   fileHeader(t, "doc.png", pngBytes(t, 32, 32)),
		MimeType: "image/png",
		FamilyID: family.ID,
	})
	require.NoError(t, err)

	detail, err := svc.GetMedia(ctx, media.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, media.URL, detail.DownloadURL)

	_, err = svc.GetMedia(ctx, media.ID, carol.ID)
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	err = svc.DeleteMedia(ctx, media.ID, alice.ID)
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	require.NoError(t, svc.DeleteMedia(ctx, media.ID, bob.ID))
	assert.Empty(t, storedFiles(t, env))
	_, err = svc.GetMedia(ctx, media.ID, bob.ID)
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))
}

func TestListMedia(t *testing.T) {
	env := servicetest.New(t)
	svc := NewMediaService(env.Repos, env.Storage, 15*time.Minute)
	alice := env.CreateUser(t, "Alice", "alice@example.com")
	bob := env.CreateUser(t, "Bob", "bob@example.com")
	carol := env.CreateUser(t, "Carol", "carol@example.com")
	family := env.CreateFamily(t, "Smiths", alice, bob)
	ctx := context.Background()

	tagged, err := svc.Upload(ctx, bob.ID, UploadFile{Header: fileHeader(t, "a.png", pngBytes(t, 8, 8)), FamilyID: family.ID})
	require.NoError(t, err)
	shared, err := svc.Upload(ctx, alice.ID, UploadFile{Header: fileHeader(t, "b.png", pngBytes(t, 8, 8))})
	require.NoError(t, err)
	personal, err := svc.Upload(ctx, alice.ID, UploadFile{Header: fileHeader(t, "c.png", pngBytes(t, 8, 8))})
	require.NoError(t, err)

	// 被家庭动态引用的媒体也属于家庭媒体，private 动态引用的不算
	post := &model.Post{Content: "look", MediaURLs: []string{shared.URL}, Type: model.PostTypePhoto, Privacy: model.PrivacyFamily, CreatedBy: alice.ID}
	require.NoError(t, env.Repos.Post.Create(ctx, post))
	note := &model.Post{Content: "mine", MediaURLs: []string{personal.URL}, Type: model.PostTypePhoto, Privacy: model.PrivacyPrivate, CreatedBy: alice.ID}
	require.NoError(t, env.Repos.Post.Create(ctx, note))
	require.NoError(t, env.Repos.PostFamily.CreateBatch(ctx, []model.PostFamily{
		{PostID: post.ID, FamilyID: family.ID},
		{PostID: note.ID, FamilyID: family.ID},
	}))

	familyMedia, err := svc.ListFamilyMedia(ctx, family.ID, bob.ID, request.MediaListQuery{})
	require.NoError(t, err)
	ids := make([]string, 0, len(familyMedia.Media))
	for _, m := range familyMedia.Media {
		ids = append(ids, m.ID)
	}
	assert.ElementsMatch(t, []string{tagged.ID, shared.ID}, ids)
	assert.EqualValues(t, 2, familyMedia.Pagination.Total)

	_, err = svc.ListFamilyMedia(ctx, family.ID, carol.ID, request.MediaListQuery{})
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	// 列表里出现的媒体，成员也能查看详情
	detail, err := svc.GetMedia(ctx, shared.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, shared.URL, detail.DownloadURL)
	_, err = svc.GetMedia(ctx, shared.ID, carol.ID)
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))
	_, err = svc.GetMedia(ctx, personal.ID, bob.ID)
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))

	mine, err := svc.ListMyMedia(ctx, alice.ID, request.MediaListQuery{Type: model.MediaImage})
	require.NoError(t, err)
	assert.Len(t, mine.Media, 2)

	videos, err := svc.ListMyMedia(ctx, alice.ID, request.MediaListQuery{Type: model.MediaVideo})
	require.NoError(t, err)
	assert.Empty(t, videos.Media)
}
