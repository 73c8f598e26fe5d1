package product

import (
	"time"

	"github.com/frahmantamala/catalog-management/internal/category"
	categoryDatamodel "github.com/frahmantamala/catalog-management/internal/core/datamodel/category"
	productDatamodel "github.com/frahmantamala/catalog-management/internal/core/datamodel/product"
)

type Product struct {
	ID          int64
	Name        string
	Description string
	Price       float64
	ImgURL      string
	Date        time.Time
	Categories  []category.Category
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p *Product) ToDTO() ProductDTO {
	categories := make([]category.CategoryDTO, 0, len(p.Categories))
	for i := range p.Categories {
		categories = append(categories, p.Categories[i].ToDTO())
	}
	return ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImgURL:      p.ImgURL,
		Date:        p.Date,
		Categories:  categories,
	}
}

// Apply copies the request fields onto p, replacing its category set.
func (p *Product) Apply(req ProductRequest, categories []category.Category) {
	p.Name = req.Name
	p.Description = req.Description
	if req.Price != nil {
		p.Price = *req.Price
	}
	p.ImgURL = req.ImgURL
	if req.Date != nil {
		p.Date = req.Date.UTC()
	}
	p.Categories = categories
	p.UpdatedAt = time.Now()
}

func ToDataModel(p *Product) *productDatamodel.Product {
	categories := make([]categoryDatamodel.Category, 0, len(p.Categories))
	for i := range p.Categories {
		categories = append(categories, *category.ToDataModel(&p.Categories[i]))
	}
	return &productDatamodel.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImgURL:      p.ImgURL,
		Date:        p.Date,
		Categories:  categories,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func FromDataModel(p *productDatamodel.Product) *Product {
	categories := make([]category.Category, 0, len(p.Categories))
	for i := range p.Categories {
		categories = append(categories, *category.FromDataModel(&p.Categories[i]))
	}
	return &Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImgURL:      p.ImgURL,
		Date:        p.Date,
		Categories:  categories,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
