package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/vrcface/server/internal/api/dto"
	"github.com/vrcface/server/internal/auth"
	"github.com/vrcface/server/internal/domain"
	"github.com/vrcface/server/internal/service"
)

func actorFrom(c *fiber.Ctx) service.Actor {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return service.Actor{}
	}
	return service.Actor{ID: principal.ID(), Role: principal.Role}
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func pageFrom(c *fiber.Ctx) domain.Page {
	return domain.NewPage(parseInt(c.Query("page"), 1), parseInt(c.Query("limit"), 0))
}

func paginationResponse(p domain.Pagination) dto.PaginationResponse {
	return dto.PaginationResponse{Page: p.Page, Limit: p.Limit, Total: p.Total, TotalPages: p.TotalPages}
}

func accountResponse(a *domain.Account) dto.AccountResponse {
	return dto.AccountResponse{
		ID:          a.ID,
		Username:    a.Username,
		DisplayName: a.DisplayName,
		AvatarURL:   a.AvatarURL,
		Bio:         a.Bio,
		IsVerified:  a.IsVerified,
		Role:        a.Role.Effective(),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func accountResponses(accounts []domain.Account) []dto.AccountResponse {
	items := make([]dto.AccountResponse, 0, len(accounts))
	for i := range accounts {
		items = append(items, accountResponse(&accounts[i]))
	}
	return items
}

func profileResponse(p *domain.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{
		ID:             p.Account.ID,
		Username:       p.Account.Username,
		DisplayName:    p.Account.DisplayName,
		AvatarURL:      p.Account.AvatarURL,
		Bio:            p.Account.Bio,
		IsVerified:     p.Account.IsVerified,
		CreatedAt:      p.Account.CreatedAt,
		FollowerCount:  p.FollowerCount,
		FollowingCount: p.FollowingCount,
		ModelCount:     p.ModelCount,
	}
}

func modelResponse(m *domain.Model) dto.ModelResponse {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	return dto.ModelResponse{
		ID:            m.ID,
		OwnerID:       m.OwnerID,
		Title:         m.Title,
		Description:   m.Description,
		FileURL:       m.FileURL,
		ThumbnailURL:  m.ThumbnailURL,
		IsPublic:      m.IsPublic,
		DownloadCount: m.DownloadCount,
		LikeCount:     m.LikeCount,
		Tags:          tags,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func modelResponses(models []domain.Model) []dto.ModelResponse {
	items := make([]dto.ModelResponse, 0, len(models))
	for i := range models {
		items = append(items, modelResponse(&models[i]))
	}
	return items
}

func tagResponse(t *domain.Tag) dto.TagResponse {
	return dto.TagResponse{ID: t.ID, Name: t.Name, UsageCount: t.UsageCount, CreatedAt: t.CreatedAt}
}
