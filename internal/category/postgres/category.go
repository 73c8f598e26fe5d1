package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/frahmantamala/catalog-management/internal"
	"github.com/frahmantamala/catalog-management/internal/category"
	"github.com/frahmantamala/catalog-management/internal/core/common/dberr"
	"github.com/frahmantamala/catalog-management/internal/core/common/pagination"
	categoryDatamodel "github.com/frahmantamala/catalog-management/internal/core/datamodel/category"
)

const productCategoryTable = "tb_product_category"

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) category.RepositoryAPI {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) FindAll(ctx context.Context, page pagination.PageRequest) ([]*categoryDatamodel.Category, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&categoryDatamodel.Category{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var categories []*categoryDatamodel.Category
	err := r.db.WithContext(ctx).
		Scopes(pagination.Paginate(page, category.PageDefaults.Sortable)).
		Find(&categories).Error
	return categories, total, err
}

func (r *CategoryRepository) FindByID(ctx context.Context, id int64) (*categoryDatamodel.Category, error) {
	var cat categoryDatamodel.Category
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&cat).Error
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, internal.ErrResourceNotFound
		}
		return nil, err
	}
	return &cat, nil
}

func (r *CategoryRepository) Create(ctx context.Context, cat *categoryDatamodel.Category) error {
	return r.db.WithContext(ctx).Create(cat).Error
}

func (r *CategoryRepository) Update(ctx context.Context, cat *categoryDatamodel.Category) error {
	return r.db.WithContext(ctx).Save(cat).Error
}

func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	var refs int64
	err := r.db.WithContext(ctx).Table(productCategoryTable).Where("category_id = ?", id).Count(&refs).Error
	if err != nil {
		return err
	}
	if refs > 0 {
		return internal.ErrIntegrityViolation
	}

	result := r.db.WithContext(ctx).Delete(&categoryDatamodel.Category{}, id)
	if result.Error != nil {
		if dberr.IsForeignKeyViolation(result.Error) {
			return internal.ErrIntegrityViolation.WithCause(result.Error)
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrResourceNotFound
	}
	return nil
}

func (r *CategoryRepository) WithinTransaction(ctx context.Context, fn func(repo category.RepositoryAPI) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&CategoryRepository{db: tx})
	})
}
