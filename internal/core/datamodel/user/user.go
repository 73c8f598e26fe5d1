package user

import "time"

type User struct {
	ID           int64     `gorm:"primaryKey"`
	FirstName    string    `gorm:"column:first_name;not null"`
	LastName     string    `gorm:"column:last_name"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password;not null"`
	Roles        []Role    `gorm:"many2many:tb_user_role;joinForeignKey:user_id;joinReferences:role_id"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "tb_user"
}

type Role struct {
	ID        int64  `gorm:"primaryKey"`
	Authority string `gorm:"column:authority;uniqueIndex;not null"`
}

func (Role) TableName() string {
	return "tb_role"
}

// Authorities returns the role names in storage order.
func (u User) Authorities() []string {
	out := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		out = append(out, r.Authority)
	}
	return out
}
