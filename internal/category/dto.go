package category

import (
	"strings"

	"github.com/frahmantamala/catalog-management/internal"
	"github.com/frahmantamala/catalog-management/internal/core/common/pagination"
	"github.com/frahmantamala/catalog-management/internal/core/common/validation"
)

type CategoryDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type CategoryRequest struct {
	Name string `json:"name"`
}

// Validate checks the name: required, 3 to 60 characters.
func (r CategoryRequest) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", strings.TrimSpace(r.Name)).
		Required().
		MinLength(3).
		MaxLength(60)
	return v.Validate()
}

var PageDefaults = pagination.Defaults{
	Size:      20,
	Sort:      "id",
	Direction: pagination.DirectionASC,
	Sortable: map[string]string{
		"id":        "id",
		"name":      "name",
		"createdAt": "created_at",
	},
}
