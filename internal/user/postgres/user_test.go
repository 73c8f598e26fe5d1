package postgres_test

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/frahmantamala/catalog-management/internal"
	"github.com/frahmantamala/catalog-management/internal/core/common/pagination"
	"github.com/frahmantamala/catalog-management/internal/core/common/testdb"
	userDatamodel "github.com/frahmantamala/catalog-management/internal/core/datamodel/user"
	"github.com/frahmantamala/catalog-management/internal/user"
	userPostgres "github.com/frahmantamala/catalog-management/internal/user/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestUserPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Postgres Suite")
}

var _ = Describe("User PostgreSQL Repository", func() {
	var (
		db    *gorm.DB
		repo  user.RepositoryAPI
		ctx   context.Context
		roles []userDatamodel.Role
	)

	BeforeEach(func() {
		var err error
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		repo = userPostgres.NewUserRepository(db)
		ctx = context.Background()

		roles, err = testdb.SeedRoles(db)
		Expect(err).NotTo(HaveOccurred())

		Expect(repo.Create(ctx, &userDatamodel.User{
			FirstName:    "Alex",
			LastName:     "Brown",
			Email:        "alex@gmail.com",
			PasswordHash: "digest-1",
			Roles:        []userDatamodel.Role{roles[0]},
		})).To(Succeed())
		Expect(repo.Create(ctx, &userDatamodel.User{
			FirstName:    "Maria",
			LastName:     "Green",
			Email:        "maria@gmail.com",
			PasswordHash: "digest-2",
			Roles:        roles,
		})).To(Succeed())
	})

	AfterEach(func() {
		testdb.Close(db)
	})

	It("should find a user by email with roles", func() {
		u, err := repo.FindByEmail(ctx, "maria@gmail.com")

		Expect(err).NotTo(HaveOccurred())
		Expect(u.ID).To(Equal(int64(2)))
		Expect(u.Authorities()).To(Equal([]string{"ROLE_OPERATOR", "ROLE_ADMIN"}))
	})

	It("should report an unknown email as not found", func() {
		_, err := repo.FindByEmail(ctx, "nobody@gmail.com")

		Expect(err).To(MatchError(internal.ErrResourceNotFound))
	})

	It("should page users", func() {
		rows, total, err := repo.FindAll(ctx, pagination.PageRequest{Page: 0, Size: 1, Sort: "email", Direction: pagination.DirectionDESC})

		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(int64(2)))
		Expect(rows).To(HaveLen(1))
		Expect(rows[0].Email).To(Equal("maria@gmail.com"))
	})

	It("should report a duplicate email from the unique index", func() {
		err := repo.Create(ctx, &userDatamodel.User{FirstName: "Other", Email: "alex@gmail.com", PasswordHash: "x"})

		Expect(err).To(MatchError(ContainSubstring("duplicate email")))
	})

	It("should update the profile and roles without touching the password", func() {
		Expect(repo.Update(ctx, &userDatamodel.User{
			ID:        1,
			FirstName: "Alexander",
			Email:     "alexander@gmail.com",
			Roles:     []userDatamodel.Role{roles[1]},
		})).To(Succeed())

		u, err := repo.FindByID(ctx, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(u.FirstName).To(Equal("Alexander"))
		Expect(u.Email).To(Equal("alexander@gmail.com"))
		Expect(u.PasswordHash).To(Equal("digest-1"))
		Expect(u.Authorities()).To(Equal([]string{"ROLE_ADMIN"}))
	})

	It("should delete a user and its role links", func() {
		Expect(repo.Delete(ctx, 2)).To(Succeed())

		_, err := repo.FindByID(ctx, 2)
		Expect(err).To(MatchError(internal.ErrResourceNotFound))

		var links int64
		Expect(db.Table("tb_user_role").Where("user_id = ?", 2).Count(&links).Error).To(Succeed())
		Expect(links).To(BeZero())
	})

	It("should report a missing id on delete", func() {
		Expect(repo.Delete(ctx, 1000)).To(MatchError(internal.ErrResourceNotFound))
	})
})
