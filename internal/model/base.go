// Package model 定义数据库实体模型
// 所有主键均为 UUID 字符串，在 BeforeCreate 钩子中生成
package model

import (
	"github.com/google/uuid"
)

// ensureID 为空主键填充新的 UUID
func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// IsValidID 判断字符串是否为合法的 UUID
// 路径参数不合法时直接按 "不存在" 处理，不会打到数据库
func IsValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
