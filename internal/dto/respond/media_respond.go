package respond

import "family_hub_server/internal/model"

// MediaRespond 媒体信息，DownloadURL 仅在详情接口返回
type MediaRespond struct {
	model.Media
	DownloadURL string `json:"downloadUrl,omitempty"`
}

// MediaListRespond 媒体分页列表
type MediaListRespond struct {
	Media      []model.Media `json:"media"`
	Pagination Pagination    `json:"pagination"`
}
