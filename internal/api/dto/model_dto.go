package dto

import "time"

// CreateModelRequest payload.
type CreateModelRequest struct {
	Title        *string  `json:"title"`
	Description  *string  `json:"description"`
	FileURL      *string  `json:"file_url"`
	ThumbnailURL *string  `json:"thumbnail_url"`
	IsPublic     *bool    `json:"is_public"`
	Tags         []string `json:"tags"`
}

// UpdateModelRequest payload. An absent tags field leaves tags unchanged.
type UpdateModelRequest struct {
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	FileURL      *string   `json:"file_url"`
	ThumbnailURL *string   `json:"thumbnail_url"`
	IsPublic     *bool     `json:"is_public"`
	Tags         *[]string `json:"tags"`
}

// ModelResponse describes a model.
type ModelResponse struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	FileURL       string    `json:"file_url"`
	ThumbnailURL  string    `json:"thumbnail_url"`
	IsPublic      bool      `json:"is_public"`
	DownloadCount int64     `json:"download_count"`
	LikeCount     int64     `json:"like_count"`
	Tags          []string  `json:"tags"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PaginationResponse accompanies list results.
type PaginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// TagRequest payload for admin tag endpoints.
type TagRequest struct {
	Name string `json:"name"`
}

// TagResponse describes a tag.
type TagResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	UsageCount int64     `json:"usage_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// LikeResponse is the caller's like state.
type LikeResponse struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}
