// AngelaMos | 2026
// dto.go

package profile

import (
	"time"
)

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name,omitempty"  validate:"omitempty,min=1,max=100"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

type ProfileResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ProfileWithEmailResponse struct {
	ProfileResponse
	Email string `json:"email"`
}

type ListParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
	Role     string `json:"role"`
}

func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToProfileResponse(p *Profile) ProfileResponse {
	return ProfileResponse{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Role:      p.Role,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func ToProfileWithEmailList(
	profiles []ProfileWithEmail,
) []ProfileWithEmailResponse {
	responses := make([]ProfileWithEmailResponse, 0, len(profiles))
	for _, p := range profiles {
		responses = append(responses, ProfileWithEmailResponse{
			ProfileResponse: ToProfileResponse(&p.Profile),
			Email:           p.Email,
		})
	}
	return responses
}
