package user_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi"
	"gorm.io/gorm"

	"github.com/frahmantamala/catalog-management/internal/auth"
	"github.com/frahmantamala/catalog-management/internal/core/common/testdb"
	userDatamodel "github.com/frahmantamala/catalog-management/internal/core/datamodel/user"
	"github.com/frahmantamala/catalog-management/internal/transport"
	"github.com/frahmantamala/catalog-management/internal/user"
	userPostgres "github.com/frahmantamala/catalog-management/internal/user/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("User Handler Integration", func() {
	var (
		db     *gorm.DB
		router chi.Router
	)

	BeforeEach(func() {
		var err error
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())

		roles, err := testdb.SeedRoles(db)
		Expect(err).NotTo(HaveOccurred())
		Expect(db.Omit("Roles.*").Create(&userDatamodel.User{
			FirstName:    "Maria",
			LastName:     "Green",
			Email:        "maria@gmail.com",
			PasswordHash: "digest",
			Roles:        roles,
		}).Error).To(Succeed())

		service := user.NewService(userPostgres.NewUserRepository(db), fakeHasher{}, nil, testLogger)
		handler := user.NewHandler(transport.NewBaseHandler(testLogger), service)

		router = chi.NewRouter()
		router.Get("/me", handler.GetCurrentUser)
		router.Get("/users", handler.GetUsers)
		router.Get("/users/{id}", handler.GetUser)
		router.Post("/users", handler.CreateUser)
		router.Put("/users/{id}", handler.UpdateUser)
		router.Delete("/users/{id}", handler.DeleteUser)
	})

	AfterEach(func() {
		testdb.Close(db)
	})

	serveCtx := func(ctx context.Context, method, path, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, path, nil)
		} else {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req.WithContext(ctx))
		return w
	}

	serve := func(method, path, body string) *httptest.ResponseRecorder {
		return serveCtx(context.Background(), method, path, body)
	}

	It("should never expose the password digest", func() {
		w := serve(http.MethodGet, "/users/1", "")

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).NotTo(ContainSubstring("password"))
		Expect(w.Body.String()).NotTo(ContainSubstring("digest"))
		Expect(w.Body.String()).To(ContainSubstring(`"authority":"ROLE_ADMIN"`))
	})

	It("should create a user and point at it", func() {
		body := `{"firstName":"Bob","lastName":"Brown","email":"bob@gmail.com","password":"123456","roles":[{"id":1}]}`

		w := serve(http.MethodPost, "/users", body)

		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(w.Header().Get("Location")).To(Equal("/users/2"))
		var dto user.UserDTO
		Expect(json.NewDecoder(w.Body).Decode(&dto)).To(Succeed())
		Expect(dto.Roles).To(Equal([]user.RoleDTO{{ID: 1, Authority: "ROLE_OPERATOR"}}))
	})

	It("should answer 400 with an email field error for a taken address", func() {
		body := `{"firstName":"Bob","email":"maria@gmail.com","password":"123456","roles":[]}`

		w := serve(http.MethodPost, "/users", body)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring(`"field":"email"`))
		Expect(w.Body.String()).To(ContainSubstring("EMAIL_ALREADY_EXISTS"))
	})

	It("should let a user keep their own email on update", func() {
		body := `{"firstName":"Maria","lastName":"Brown","email":"maria@gmail.com","roles":[{"id":2}]}`

		w := serve(http.MethodPut, "/users/1", body)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"lastName":"Brown"`))
	})

	It("should refuse a password in an update body", func() {
		body := `{"firstName":"Maria","email":"maria@gmail.com","password":"changed"}`

		w := serve(http.MethodPut, "/users/1", body)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should delete a user", func() {
		Expect(serve(http.MethodDelete, "/users/1", "").Code).To(Equal(http.StatusNoContent))
		Expect(serve(http.MethodGet, "/users/1", "").Code).To(Equal(http.StatusNotFound))
	})

	Describe("GET /me", func() {
		It("should return the authenticated user", func() {
			ctx := auth.ContextWithPrincipal(context.Background(), &auth.Principal{Subject: "maria@gmail.com", UserID: 1})

			w := serveCtx(ctx, http.MethodGet, "/me", "")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`"email":"maria@gmail.com"`))
		})

		It("should answer 401 without a principal", func() {
			w := serve(http.MethodGet, "/me", "")

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})
	})
})
