package models

import "time"

const (
	WebhookStatusSuccess = "success"
	WebhookStatusWarning = "warning"
	WebhookStatusError   = "error"
	WebhookStatusSkipped = "skipped"
)

// UploadedFile is the transient in-memory form of a received document.
type UploadedFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

func (f *UploadedFile) Size() int64 {
	return int64(len(f.Content))
}

// StorageReference identifies an object stored by one of the storage backends.
type StorageReference struct {
	RemoteID     string    `json:"file_id"`
	Name         string    `json:"file_name"`
	ViewLink     string    `json:"view_link"`
	DownloadLink string    `json:"download_link,omitempty"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type,omitempty"`
	Backend      string    `json:"storage"`
	CreatedAt    time.Time `json:"created_at,omitzero"`
}

type WebhookPayload struct {
	FileID           string    `json:"file_id"`
	FileName         string    `json:"file_name"`
	ViewLink         string    `json:"view_link"`
	DownloadLink     string    `json:"download_link,omitempty"`
	FileSize         int64     `json:"file_size"`
	ContentType      string    `json:"content_type,omitempty"`
	Storage          string    `json:"storage"`
	OriginalFilename string    `json:"original_filename"`
	UploadedAt       time.Time `json:"uploaded_at"`
}

type WebhookStatus struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code,omitempty"`
}

func (s WebhookStatus) OK() bool {
	return s.Status == WebhookStatusSuccess
}

type UploadResult struct {
	Filename     string
	Reference    *StorageReference
	Webhook      WebhookStatus
	Deduplicated bool
}

type UploadPolicy struct {
	AllowedExtensions []string
	MaxSize           int64
	Backend           string
}
