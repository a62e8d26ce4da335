package handler

import (
	"errors"
	"net/http"

	"family_hub_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// HandleSuccess 返回 200，payload 的字段平铺在 success 旁边
//
//	HandleSuccess(c, gin.H{"family": family})
//	// => {"success": true, "family": {...}}
func HandleSuccess(c *gin.Context, payload gin.H) {
	respond(c, http.StatusOK, payload)
}

// HandleCreated 返回 201
func HandleCreated(c *gin.Context, payload gin.H) {
	respond(c, http.StatusCreated, payload)
}

// HandleMessage 只带提示信息的成功响应，用于删除等无返回数据的操作
func HandleMessage(c *gin.Context, message string) {
	respond(c, http.StatusOK, gin.H{"message": message})
}

func respond(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// HandleError 通用错误处理方法
// 业务错误按错误码映射 HTTP 状态；其余错误记录日志后返回 500
func HandleError(c *gin.Context, err error) {
	var codeErr *errorx.CodeError
	if errors.As(err, &codeErr) {
		status := errorx.HTTPStatus(codeErr.Code)
		if status != http.StatusInternalServerError {
			c.JSON(status, gin.H{"success": false, "message": codeErr.Msg})
			return
		}
	}

	zap.L().Error("request failed",
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"message": "Server error",
		"error":   err.Error(),
	})
}

// HandleParamError 处理参数绑定错误（带 validator 翻译支持）
func HandleParamError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && trans != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request parameters",
			"errors":  translateErrors(validationErrs),
		})
		return
	}

	// 非 validator 错误（如 JSON 格式错误）
	zap.L().Debug("param bind error", zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": "Invalid request parameters",
	})
}
