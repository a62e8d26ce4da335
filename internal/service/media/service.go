// Package media 实现文件上传、缩略图生成和媒体管理
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"family_hub_server/internal/dao/rdb/repository"
	"family_hub_server/internal/dto/request"
	"family_hub_server/internal/dto/respond"
	"family_hub_server/internal/model"
	"family_hub_server/internal/service/access"
	"family_hub_server/internal/storage"
	"family_hub_server/pkg/errorx"
	"family_hub_server/pkg/util/snowflake"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const (
	thumbnailSize = 300
	keyPrefix     = "media/"
	thumbPrefix   = "media/thumbs/"
)

// UploadFile 一次上传的文件信息，MimeType 由上传中间件嗅探得到
type UploadFile struct {
	Header   *multipart.FileHeader
	MimeType string
	FamilyID string
}

// mediaService 媒体业务逻辑实现
type mediaService struct {
	repos         *repository.Repositories
	storage       storage.Storage
	presignExpiry time.Duration
}

// NewMediaService 构造函数，注入所有依赖
func NewMediaService(repos *repository.Repositories, store storage.Storage, presignExpiry time.Duration) *mediaService {
	return &mediaService{repos: repos, storage: store, presignExpiry: presignExpiry}
}

// Upload 保存上传文件，图片额外生成不超过 300px 的 JPEG 缩略图
// 元数据写库失败时删除已写入的文件
func (s *mediaService) Upload(ctx context.Context, userID string, file UploadFile) (*model.Media, error) {
	if file.Header == nil {
		return nil, errorx.BadRequest("No file uploaded")
	}
	var familyID *string
	if file.FamilyID != "" {
		family, err := access.FindFamily(ctx, s.repos, file.FamilyID)
		if err != nil {
			return nil, err
		}
		if _, err := access.RequireMember(ctx, s.repos, family.ID, userID); err != nil {
			return nil, err
		}
		familyID = &family.ID
	}

	mimeType, err := s.detectMIME(file)
	if err != nil {
		return nil, err
	}
	mediaType := model.MediaTypeFromMIME(mimeType)
	if mediaType == "" {
		return nil, errorx.BadRequest("Unsupported file type")
	}

	name := snowflake.GenerateIDString()
	key := keyPrefix + name + extension(mimeType, file.Header.Filename)
	src, err := file.Header.Open()
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "open uploaded file")
	}
	url, err := s.storage.Put(ctx, key, src, file.Header.Size, mimeType)
	_ = src.Close()
	if err != nil {
		return nil, err
	}

	media := &model.Media{
		URL:          url,
		StorageKey:   key,
		Type:         mediaType,
		MimeType:     mimeType,
		Size:         file.Header.Size,
		OriginalName: filepath.Base(file.Header.Filename),
		UploadedByID: userID,
		FamilyID:     familyID,
	}
	if mediaType == model.MediaImage {
		s.attachThumbnail(ctx, media, file.Header, name)
	}

	if err := s.repos.Media.Create(ctx, media); err != nil {
		s.deleteBlobs(ctx, media)
		return nil, err
	}
	return media, nil
}

// GetMedia 媒体详情，可见范围与家庭媒体列表一致
func (s *mediaService) GetMedia(ctx context.Context, mediaID, userID string) (*respond.MediaRespond, error) {
	media, err := s.findMedia(ctx, mediaID)
	if err != nil {
		return nil, err
	}
	ok, err := s.canView(ctx, media, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errorx.Forbidden("Not authorized to access this media")
	}

	downloadURL, err := s.storage.SignedURL(ctx, media.StorageKey, s.presignExpiry)
	if err != nil {
		return nil, err
	}
	return &respond.MediaRespond{Media: *media, DownloadURL: downloadURL}, nil
}

// canView 上传者、媒体所属家庭的成员，或引用了该媒体的家庭动态所在家庭的成员
func (s *mediaService) canView(ctx context.Context, media *model.Media, userID string) (bool, error) {
	if media.UploadedByID == userID {
		return true, nil
	}
	if media.FamilyID != nil {
		member, err := access.Membership(ctx, s.repos, *media.FamilyID, userID)
		if err != nil {
			return false, err
		}
		if member != nil {
			return true, nil
		}
	}
	families, err := s.repos.Family.FindByMember(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, f := range families {
		urls, err := s.repos.Post.MediaURLsByFamily(ctx, f.ID)
		if err != nil {
			return false, err
		}
		if slices.Contains(urls, media.URL) {
			return true, nil
		}
	}
	return false, nil
}

// DeleteMedia 删除媒体，仅上传者；存储删除失败只记录日志
func (s *mediaService) DeleteMedia(ctx context.Context, mediaID, userID string) error {
	media, err := s.findMedia(ctx, mediaID)
	if err != nil {
		return err
	}
	if media.UploadedByID != userID {
		return errorx.Forbidden("Only the uploader can delete this media")
	}
	s.deleteBlobs(ctx, media)
	return s.repos.Media.Delete(ctx, media.ID)
}

// ListMyMedia 当前用户上传的媒体
func (s *mediaService) ListMyMedia(ctx context.Context, userID string, query request.MediaListQuery) (*respond.MediaListRespond, error) {
	page, limit := query.Normalize()
	items, total, err := s.repos.Media.ListByUploader(ctx, userID, mediaFilter(query.Type, page, limit))
	if err != nil {
		return nil, err
	}
	return listRespond(items, total, page, limit), nil
}

// ListFamilyMedia 家庭媒体：被家庭动态引用的，或上传时指定了该家庭的
func (s *mediaService) ListFamilyMedia(ctx context.Context, familyID, userID string, query request.MediaListQuery) (*respond.MediaListRespond, error) {
	family, err := access.FindFamily(ctx, s.repos, familyID)
	if err != nil {
		return nil, err
	}
	if _, err := access.RequireMember(ctx, s.repos, family.ID, userID); err != nil {
		return nil, err
	}
	urls, err := s.repos.Post.MediaURLsByFamily(ctx, family.ID)
	if err != nil {
		return nil, err
	}
	page, limit := query.Normalize()
	items, total, err := s.repos.Media.ListForFamily(ctx, family.ID, urls, mediaFilter(query.Type, page, limit))
	if err != nil {
		return nil, err
	}
	return listRespond(items, total, page, limit), nil
}

// detectMIME 优先使用中间件嗅探结果，否则读取文件头判断
func (s *mediaService) detectMIME(file UploadFile) (string, error) {
	if file.MimeType != "" {
		return file.MimeType, nil
	}
	src, err := file.Header.Open()
	if err != nil {
		return "", errorx.Wrap(err, errorx.CodeServerBusy, "open uploaded file")
	}
	defer src.Close()
	detected, err := mimetype.DetectReader(src)
	if err != nil {
		return "", errorx.BadRequest("Unable to detect file type")
	}
	return detected.String(), nil
}

// attachThumbnail 生成缩略图并写入存储，失败时只记录日志，原图照常保存
func (s *mediaService) attachThumbnail(ctx context.Context, media *model.Media, header *multipart.FileHeader, name string) {
	src, err := header.Open()
	if err != nil {
		zap.L().Warn("open image for thumbnail failed", zap.Error(err))
		return
	}
	defer src.Close()

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		zap.L().Info("skip thumbnail, image not decodable", zap.String("mime", media.MimeType), zap.Error(err))
		return
	}
	bounds := img.Bounds()
	thumb := imaging.Fit(img, thumbnailSize, thumbnailSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		zap.L().Warn("encode thumbnail failed", zap.Error(err))
		return
	}
	thumbKey := thumbPrefix + name + ".jpg"
	size := int64(buf.Len())
	thumbURL, err := s.storage.Put(ctx, thumbKey, &buf, size, "image/jpeg")
	if err != nil {
		zap.L().Warn("store thumbnail failed", zap.String("key", thumbKey), zap.Error(err))
		return
	}
	media.ThumbURL = thumbURL
	media.ThumbKey = thumbKey

	raw, _ := json.Marshal(map[string]int{"width": bounds.Dx(), "height": bounds.Dy()})
	media.Metadata = datatypes.JSON(raw)
}

func (s *mediaService) deleteBlobs(ctx context.Context, media *model.Media) {
	for _, key := range []string{media.StorageKey, media.ThumbKey} {
		if key == "" {
			continue
		}
		if err := s.storage.Delete(ctx, key); err != nil {
			zap.L().Warn("delete media blob failed", zap.String("key", key), zap.Error(err))
		}
	}
}

func (s *mediaService) findMedia(ctx context.Context, mediaID string) (*model.Media, error) {
	if !model.IsValidID(mediaID) {
		return nil, errorx.NotFound("Media not found")
	}
	media, err := s.repos.Media.FindByID(ctx, mediaID)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.NotFound("Media not found")
		}
		return nil, err
	}
	return media, nil
}

func mediaFilter(mediaType string, page, limit int) repository.MediaFilter {
	return repository.MediaFilter{Type: mediaType, Page: repository.Page{Page: page, PageSize: limit}}
}

func listRespond(items []model.Media, total int64, page, limit int) *respond.MediaListRespond {
	if items == nil {
		items = make([]model.Media, 0)
	}
	return &respond.MediaListRespond{Media: items, Pagination: respond.NewPagination(total, page, limit)}
}

// extension 优先使用 MIME 对应的扩展名，识别不了时沿用原文件名的扩展名
func extension(mimeType, filename string) string {
	if m := mimetype.Lookup(mimeType); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	return strings.ToLower(filepath.Ext(filename))
}
