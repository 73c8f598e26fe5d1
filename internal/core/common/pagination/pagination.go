package pagination

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/frahmantamala/catalog-management/internal"
)

const (
	DirectionASC  = "ASC"
	DirectionDESC = "DESC"

	MaxPageSize = 100
)

// PageRequest is a zero-based page of a sorted result set.
type PageRequest struct {
	Page      int
	Size      int
	Sort      string
	Direction string
}

// Defaults describes the page a resource returns when the client sends no paging
// parameters, plus the columns it may be sorted by.
type Defaults struct {
	Size      int
	Sort      string
	Direction string
	// Sortable maps the public field name to its column.
	Sortable map[string]string
}

// Parse reads page, size (or linesPerPage) and sort=field,dir (or orderBy and
// direction) from the query string.
func Parse(q url.Values, d Defaults) (PageRequest, *apperrors.AppError) {
	req := PageRequest{
		Page:      0,
		Size:      d.Size,
		Sort:      d.Sort,
		Direction: d.Direction,
	}
	if req.Direction == "" {
		req.Direction = DirectionASC
	}

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 0 {
			return req, apperrors.NewValidationFieldError("page", "page must be a non-negative integer", apperrors.ErrCodeInvalidRequest)
		}
		req.Page = page
	}

	rawSize := q.Get("size")
	if rawSize == "" {
		rawSize = q.Get("linesPerPage")
	}
	if rawSize != "" {
		size, err := strconv.Atoi(rawSize)
		if err != nil || size < 1 {
			return req, apperrors.NewValidationFieldError("size", "size must be a positive integer", apperrors.ErrCodeInvalidRequest)
		}
		if size > MaxPageSize {
			size = MaxPageSize
		}
		req.Size = size
	}

	if raw := q.Get("sort"); raw != "" {
		parts := strings.SplitN(raw, ",", 2)
		req.Sort = strings.TrimSpace(parts[0])
		if len(parts) == 2 {
			req.Direction = strings.TrimSpace(parts[1])
		}
	} else {
		if raw := q.Get("orderBy"); raw != "" {
			req.Sort = raw
		}
		if raw := q.Get("direction"); raw != "" {
			req.Direction = raw
		}
	}

	req.Direction = strings.ToUpper(req.Direction)
	if req.Direction != DirectionASC && req.Direction != DirectionDESC {
		return req, apperrors.NewValidationFieldError("direction", "direction must be ASC or DESC", apperrors.ErrCodeInvalidRequest)
	}

	if _, ok := d.Sortable[req.Sort]; !ok {
		return req, apperrors.NewValidationFieldError("sort", fmt.Sprintf("cannot sort by %q", req.Sort), apperrors.ErrCodeInvalidRequest)
	}

	return req, nil
}

func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// OrderClause renders the ORDER BY expression, resolving the public field name
// through the whitelist. Unknown fields fall back to the primary key.
func (p PageRequest) OrderClause(sortable map[string]string) string {
	column, ok := sortable[p.Sort]
	if !ok {
		column = "id"
	}
	direction := DirectionASC
	if strings.EqualFold(p.Direction, DirectionDESC) {
		direction = DirectionDESC
	}
	return column + " " + direction
}

// Paginate applies LIMIT, OFFSET and ORDER BY.
func Paginate(p PageRequest, sortable map[string]string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(p.OrderClause(sortable)).Offset(p.Offset()).Limit(p.Size)
	}
}

type Page[T any] struct {
	Content          []T   `json:"content"`
	TotalElements    int64 `json:"totalElements"`
	TotalPages       int   `json:"totalPages"`
	Number           int   `json:"number"`
	Size             int   `json:"size"`
	NumberOfElements int   `json:"numberOfElements"`
	First            bool  `json:"first"`
	Last             bool  `json:"last"`
	Empty            bool  `json:"empty"`
}

func NewPage[T any](content []T, req PageRequest, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if req.Size > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(req.Size)))
	}
	return Page[T]{
		Content:          content,
		TotalElements:    total,
		TotalPages:       totalPages,
		Number:           req.Page,
		Size:             req.Size,
		NumberOfElements: len(content),
		First:            req.Page == 0,
		Last:             req.Page >= totalPages-1,
		Empty:            len(content) == 0,
	}
}

// Map converts the content of a page, keeping its metadata.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, 0, len(p.Content))
	for _, item := range p.Content {
		out = append(out, fn(item))
	}
	return Page[U]{
		Content:          out,
		TotalElements:    p.TotalElements,
		TotalPages:       p.TotalPages,
		Number:           p.Number,
		Size:             p.Size,
		NumberOfElements: p.NumberOfElements,
		First:            p.First,
		Last:             p.Last,
		Empty:            p.Empty,
	}
}
