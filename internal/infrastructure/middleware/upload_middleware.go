package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"family_hub_server/internal/model"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// ContextUploadMIME 嗅探得到的上传文件 MIME 类型
const ContextUploadMIME = "upload_mime"

// multipartOverhead 预留给 multipart 边界和其他表单字段
const multipartOverhead = 1 << 20

// UploadFilter 限制上传文件大小，并按文件内容而不是扩展名校验类型
// 只接受图片、视频、音频、PDF 和 Word 文档
func UploadFilter(maxMB int) gin.HandlerFunc {
	maxBytes := int64(maxMB) << 20
	tooLarge := fmt.Sprintf("File too large, max %d MB", maxMB)

	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes+multipartOverhead {
			abort(c, http.StatusBadRequest, tooLarge)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartOverhead)

		fileHeader, err := c.FormFile("file")
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				abort(c, http.StatusBadRequest, tooLarge)
				return
			}
			abort(c, http.StatusBadRequest, "No file uploaded")
			return
		}
		if fileHeader.Size > maxBytes {
			abort(c, http.StatusBadRequest, tooLarge)
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			abort(c, http.StatusBadRequest, "Cannot read uploaded file")
			return
		}
		mtype, err := mimetype.DetectReader(file)
		_ = file.Close()
		if err != nil {
			abort(c, http.StatusBadRequest, "Cannot read uploaded file")
			return
		}

		detected := allowedMIME(mtype)
		if detected == "" {
			abort(c, http.StatusBadRequest, "Unsupported file type: "+mtype.String())
			return
		}
		c.Set(ContextUploadMIME, detected)
		c.Next()
	}
}

// allowedMIME 沿 mimetype 的继承链查找受支持的类型
func allowedMIME(mtype *mimetype.MIME) string {
	for m := mtype; m != nil; m = m.Parent() {
		if model.MediaTypeFromMIME(m.String()) != "" {
			return m.String()
		}
	}
	return ""
}
