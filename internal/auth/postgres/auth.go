package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/frahmantamala/catalog-management/internal"
	"github.com/frahmantamala/catalog-management/internal/auth"
	"github.com/frahmantamala/catalog-management/internal/core/common/dberr"
	userDatamodel "github.com/frahmantamala/catalog-management/internal/core/datamodel/user"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

// FindUserByEmail loads the user with its roles. Emails are compared case sensitively.
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*auth.UserCredentials, error) {
	var user userDatamodel.User
	err := r.db.WithContext(ctx).
		Preload("Roles").
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, internal.ErrResourceNotFound
		}
		return nil, err
	}

	return &auth.UserCredentials{
		ID:           user.ID,
		Email:        user.Email,
		FirstName:    user.FirstName,
		PasswordHash: user.PasswordHash,
		Authorities:  user.Authorities(),
	}, nil
}
