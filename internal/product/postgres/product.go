package postgres

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/frahmantamala/catalog-management/internal"
	"github.com/frahmantamala/catalog-management/internal/core/common/dberr"
	"github.com/frahmantamala/catalog-management/internal/core/common/pagination"
	categoryDatamodel "github.com/frahmantamala/catalog-management/internal/core/datamodel/category"
	productDatamodel "github.com/frahmantamala/catalog-management/internal/core/datamodel/product"
	"github.com/frahmantamala/catalog-management/internal/product"
)

const productCategoryTable = "tb_product_category"

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) product.RepositoryAPI {
	return &ProductRepository{db: db}
}

// filterScope matches names case-insensitively and restricts to one category
// through a subquery, so a product linked to several categories is returned once.
func (r *ProductRepository) filterScope(filter product.Filter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.Name != "" {
			db = db.Where("UPPER(name) LIKE ?", "%"+strings.ToUpper(filter.Name)+"%")
		}
		if filter.CategoryID != 0 {
			sub := r.db.Table(productCategoryTable).Select("product_id").Where("category_id = ?", filter.CategoryID)
			db = db.Where("id IN (?)", sub)
		}
		return db
	}
}

func (r *ProductRepository) FindAll(ctx context.Context, filter product.Filter, page pagination.PageRequest) ([]*productDatamodel.Product, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&productDatamodel.Product{}).
		Scopes(r.filterScope(filter)).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var products []*productDatamodel.Product
	err = r.db.WithContext(ctx).
		Scopes(r.filterScope(filter), pagination.Paginate(page, product.PageDefaults.Sortable)).
		Preload("Categories", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Find(&products).Error
	return products, total, err
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*productDatamodel.Product, error) {
	var p productDatamodel.Product
	err := r.db.WithContext(ctx).
		Preload("Categories", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, internal.ErrResourceNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) FindCategories(ctx context.Context, ids []int64) ([]categoryDatamodel.Category, error) {
	var categories []categoryDatamodel.Category
	if len(ids) == 0 {
		return categories, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&categories).Error
	return categories, err
}

// Create inserts the product and its links. Categories must already exist.
func (r *ProductRepository) Create(ctx context.Context, p *productDatamodel.Product) error {
	return r.db.WithContext(ctx).Omit("Categories.*").Create(p).Error
}

// Update saves the columns and replaces the category links with p.Categories.
func (r *ProductRepository) Update(ctx context.Context, p *productDatamodel.Product) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit("Categories").Save(p).Error; err != nil {
		return err
	}
	return db.Model(p).Association("Categories").Replace(p.Categories)
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	db := r.db.WithContext(ctx)
	target := &productDatamodel.Product{ID: id}

	var exists int64
	if err := db.Model(&productDatamodel.Product{}).Where("id = ?", id).Count(&exists).Error; err != nil {
		return err
	}
	if exists == 0 {
		return internal.ErrResourceNotFound
	}

	if err := db.Model(target).Association("Categories").Clear(); err != nil {
		return err
	}
	if err := db.Delete(target).Error; err != nil {
		if dberr.IsForeignKeyViolation(err) {
			return internal.ErrIntegrityViolation.WithCause(err)
		}
		return err
	}
	return nil
}

func (r *ProductRepository) WithinTransaction(ctx context.Context, fn func(repo product.RepositoryAPI) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ProductRepository{db: tx})
	})
}
