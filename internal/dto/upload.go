package dto

import (
	"resumeapi/internal/models"
	"time"
)

type UploadResponse struct {
	Message       string               `json:"message"`
	Filename      string               `json:"filename"`
	FileID        string               `json:"file_id"`
	FileName      string               `json:"file_name"`
	ViewLink      string               `json:"view_link"`
	DownloadLink  string               `json:"download_link,omitempty"`
	Size          int64                `json:"size"`
	Storage       string               `json:"storage"`
	Deduplicated  bool                 `json:"deduplicated"`
	WebhookStatus models.WebhookStatus `json:"webhook_status"`
}

func NewUploadResponse(res *models.UploadResult) UploadResponse {
	return UploadResponse{
		Message:       "Resume uploaded successfully",
		Filename:      res.Filename,
		FileID:        res.Reference.RemoteID,
		FileName:      res.Reference.Name,
		ViewLink:      res.Reference.ViewLink,
		DownloadLink:  res.Reference.DownloadLink,
		Size:          res.Reference.Size,
		Storage:       res.Reference.Backend,
		Deduplicated:  res.Deduplicated,
		WebhookStatus: res.Webhook,
	}
}

type PolicyResponse struct {
	AllowedExtensions []string `json:"allowed_extensions"`
	MaxSize           int64    `json:"max_size"`
	Storage           string   `json:"storage"`
}

type FileResponse struct {
	FileID       string    `json:"file_id"`
	FileName     string    `json:"file_name"`
	ViewLink     string    `json:"view_link"`
	DownloadLink string    `json:"download_link,omitempty"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type,omitempty"`
	Storage      string    `json:"storage"`
	CreatedAt    time.Time `json:"created_at,omitzero"`
}

func NewFileResponse(ref *models.StorageReference) FileResponse {
	return FileResponse{
		FileID:       ref.RemoteID,
		FileName:     ref.Name,
		ViewLink:     ref.ViewLink,
		DownloadLink: ref.DownloadLink,
		Size:         ref.Size,
		ContentType:  ref.ContentType,
		Storage:      ref.Backend,
		CreatedAt:    ref.CreatedAt,
	}
}

type DeleteResponse struct {
	FileID  string `json:"file_id"`
	Deleted bool   `json:"deleted"`
}
