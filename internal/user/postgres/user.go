package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/frahmantamala/catalog-management/internal"
	"github.com/frahmantamala/catalog-management/internal/core/common/dberr"
	"github.com/frahmantamala/catalog-management/internal/core/common/pagination"
	userDatamodel "github.com/frahmantamala/catalog-management/internal/core/datamodel/user"
	"github.com/frahmantamala/catalog-management/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func rolesByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

func (r *UserRepository) FindAll(ctx context.Context, page pagination.PageRequest) ([]*userDatamodel.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []*userDatamodel.User
	err := r.db.WithContext(ctx).
		Scopes(pagination.Paginate(page, user.PageDefaults.Sortable)).
		Preload("Roles", rolesByID).
		Find(&users).Error
	return users, total, err
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*userDatamodel.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UserRepository) first(ctx context.Context, query string, arg interface{}) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Preload("Roles", rolesByID).Where(query, arg).First(&u).Error
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, internal.ErrResourceNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindRoles(ctx context.Context, ids []int64) ([]userDatamodel.Role, error) {
	var roles []userDatamodel.Role
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&roles).Error
	return roles, err
}

func (r *UserRepository) Create(ctx context.Context, u *userDatamodel.User) error {
	err := r.db.WithContext(ctx).Omit("Roles.*").Create(u).Error
	if dberr.IsUniqueViolation(err) {
		return user.NewDuplicateEmailError(err)
	}
	return err
}

// Update saves the profile columns and replaces the role links. The stored password
// digest is left as it is.
func (r *UserRepository) Update(ctx context.Context, u *userDatamodel.User) error {
	db := r.db.WithContext(ctx)
	err := db.Model(&userDatamodel.User{ID: u.ID}).
		Select("first_name", "last_name", "email", "updated_at").
		Updates(u).Error
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return user.NewDuplicateEmailError(err)
		}
		return err
	}
	return db.Model(&userDatamodel.User{ID: u.ID}).Association("Roles").Replace(u.Roles)
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	db := r.db.WithContext(ctx)

	var exists int64
	if err := db.Model(&userDatamodel.User{}).Where("id = ?", id).Count(&exists).Error; err != nil {
		return err
	}
	if exists == 0 {
		return internal.ErrResourceNotFound
	}

	target := &userDatamodel.User{ID: id}
	if err := db.Model(target).Association("Roles").Clear(); err != nil {
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

func (r *UserRepository) WithinTransaction(ctx context.Context, fn func(repo user.RepositoryAPI) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UserRepository{db: tx})
	})
}
