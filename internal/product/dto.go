package product

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/catalog-management/internal"
	"github.com/frahmantamala/catalog-management/internal/category"
	"github.com/frahmantamala/catalog-management/internal/core/common/pagination"
	"github.com/frahmantamala/catalog-management/internal/core/common/validation"
)

type ProductDTO struct {
	ID          int64                  `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Price       float64                `json:"price"`
	ImgURL      string                 `json:"imgUrl"`
	Date        time.Time              `json:"date"`
	Categories  []category.CategoryDTO `json:"categories"`
}

// ProductRequest is the body of POST and PUT. Categories are referenced by id; a
// name sent along with the id is ignored.
type ProductRequest struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Price       *float64               `json:"price"`
	ImgURL      string                 `json:"imgUrl"`
	Date        *time.Time             `json:"date"`
	Categories  []category.CategoryDTO `json:"categories"`
}

func (r ProductRequest) CategoryIDs() []int64 {
	ids := make([]int64, 0, len(r.Categories))
	seen := make(map[int64]bool, len(r.Categories))
	for _, c := range r.Categories {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		ids = append(ids, c.ID)
	}
	return ids
}

func (r ProductRequest) Validate(now func() time.Time) *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", strings.TrimSpace(r.Name)).
		Required().
		MinLength(5).
		MaxLength(60)
	v.Field("price", r.Price).
		Required().
		Positive()
	v.Field("date", r.Date).
		Required().
		NotFuture(now)
	v.Field("categories", r.CategoryIDs()).
		NotEmpty()
	return v.Validate()
}

// Filter narrows the product listing. Zero values match everything.
type Filter struct {
	Name       string
	CategoryID int64
}

// ParseFilter reads name and categoryId from the query string.
func ParseFilter(q url.Values) (Filter, *internal.AppError) {
	f := Filter{Name: strings.TrimSpace(q.Get("name"))}
	if raw := q.Get("categoryId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 0 {
			return f, internal.NewValidationFieldError("categoryId", "categoryId must be a non-negative integer", internal.ErrCodeInvalidRequest)
		}
		f.CategoryID = id
	}
	return f, nil
}

var PageDefaults = pagination.Defaults{
	Size:      12,
	Sort:      "name",
	Direction: pagination.DirectionASC,
	Sortable: map[string]string{
		"id":    "id",
		"name":  "name",
		"price": "price",
		"date":  "date",
	},
}
