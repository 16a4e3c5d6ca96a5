package domain

import "time"

// Model is a shared facial-expression model entry.
type Model struct {
	ID            string
	OwnerID       string
	Title         string
	Description   string
	FileURL       string
	ThumbnailURL  string
	IsPublic      bool
	DownloadCount int64
	LikeCount     int64
	Tags          []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ModelSort selects list ordering.
type ModelSort string

const (
	ModelSortLatest  ModelSort = "latest"
	ModelSortPopular ModelSort = "popular"
)

// Tag labels models.
type Tag struct {
	ID         string
	Name       string
	UsageCount int64
	CreatedAt  time.Time
}

// Stats summarises site content for the admin dashboard.
type Stats struct {
	Users       int64
	Models      int64
	Tags        int64
	Likes       int64
	UsersByRole map[Role]int64
}
