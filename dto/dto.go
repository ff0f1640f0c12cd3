package dto

import (
	"github.com/google/uuid"
	"vidgate/constant"
)

type UploadResponse struct {
	VideoId uuid.UUID `json:"videoId"`
}

type VideoItem struct {
	VideoId   uuid.UUID `json:"videoId"`
	Name      string    `json:"name"`
	Public    bool      `json:"public"`
	FetchURL  string    `json:"fetchUrl"`
	Thumbnail []byte    `json:"thumbnail,omitempty"`
}

type ListResponse struct {
	Videos []VideoItem `json:"videos"`
}

type VideoEventMessage struct {
	Event    constant.VideoEvent `json:"event"`
	VideoId  uuid.UUID           `json:"videoId"`
	Uploader string              `json:"uploader"`
	Name     string              `json:"name,omitempty"`
}
