package user

import (
	"time"

	userDatamodel "github.com/frahmantamala/catalog-management/internal/core/datamodel/user"
)

type Role struct {
	ID        int64
	Authority string
}

type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Roles        []Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ToDTO never carries the password digest.
func (u *User) ToDTO() UserDTO {
	roles := make([]RoleDTO, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, RoleDTO{ID: r.ID, Authority: r.Authority})
	}
	return UserDTO{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Roles:     roles,
	}
}

func (u *User) ApplyProfile(firstName, lastName, email string, roles []Role) {
	u.FirstName = firstName
	u.LastName = lastName
	u.Email = email
	u.Roles = roles
	u.UpdatedAt = time.Now()
}

func ToDataModel(u *User) *userDatamodel.User {
	roles := make([]userDatamodel.Role, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, userDatamodel.Role{ID: r.ID, Authority: r.Authority})
	}
	return &userDatamodel.User{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Roles:        roles,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	roles := make([]Role, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, Role{ID: r.ID, Authority: r.Authority})
	}
	return &User{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Roles:        roles,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
