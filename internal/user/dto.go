package user

import (
	"strings"

	"github.com/frahmantamala/catalog-management/internal"
	"github.com/frahmantamala/catalog-management/internal/core/common/pagination"
	"github.com/frahmantamala/catalog-management/internal/core/common/validation"
)

type RoleDTO struct {
	ID        int64  `json:"id"`
	Authority string `json:"authority,omitempty"`
}

type UserDTO struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Roles     []RoleDTO `json:"roles"`
}

// UserUpdateRequest is the body of PUT /users/{id}. The password cannot be changed here.
type UserUpdateRequest struct {
	FirstName string    `json:"firstName" validate:"required,max=60"`
	LastName  string    `json:"lastName" validate:"max=60"`
	Email     string    `json:"email" validate:"required,email"`
	Roles     []RoleDTO `json:"roles"`
}

type UserInsertRequest struct {
	FirstName string    `json:"firstName" validate:"required,max=60"`
	LastName  string    `json:"lastName" validate:"max=60"`
	Email     string    `json:"email" validate:"required,email"`
	Password  string    `json:"password" validate:"required,min=6"`
	Roles     []RoleDTO `json:"roles"`
}

func (r UserUpdateRequest) normalize() UserUpdateRequest {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.TrimSpace(r.Email)
	return r
}

func (r UserInsertRequest) profile() UserUpdateRequest {
	return UserUpdateRequest{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Roles:     r.Roles,
	}.normalize()
}

func (r UserInsertRequest) Validate() *internal.AppError {
	normalized := r
	profile := r.profile()
	normalized.FirstName, normalized.LastName, normalized.Email = profile.FirstName, profile.LastName, profile.Email
	return validation.Struct(normalized)
}

func (r UserUpdateRequest) Validate() *internal.AppError {
	return validation.Struct(r.normalize())
}

func roleIDs(roles []RoleDTO) []int64 {
	ids := make([]int64, 0, len(roles))
	seen := make(map[int64]bool, len(roles))
	for _, r := range roles {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		ids = append(ids, r.ID)
	}
	return ids
}

var PageDefaults = pagination.Defaults{
	Size:      20,
	Sort:      "id",
	Direction: pagination.DirectionASC,
	Sortable: map[string]string{
		"id":        "id",
		"firstName": "first_name",
		"email":     "email",
	},
}
