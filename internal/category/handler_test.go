package category_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi"
	"gorm.io/gorm"

	"github.com/frahmantamala/catalog-management/internal/category"
	categoryPostgres "github.com/frahmantamala/catalog-management/internal/category/postgres"
	"github.com/frahmantamala/catalog-management/internal/core/common/pagination"
	"github.com/frahmantamala/catalog-management/internal/core/common/testdb"
	"github.com/frahmantamala/catalog-management/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Category Handler Integration", func() {
	var (
		db      *gorm.DB
		handler *category.Handler
		router  chi.Router
	)

	BeforeEach(func() {
		var err error
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())

		_, err = testdb.SeedCategories(db, "Livros", "Eletrônicos", "Computadores")
		Expect(err).NotTo(HaveOccurred())

		service := category.NewService(categoryPostgres.NewCategoryRepository(db), nil, testLogger)
		handler = category.NewHandler(transport.NewBaseHandler(testLogger), service)

		router = chi.NewRouter()
		router.Get("/categories", handler.GetCategories)
		router.Get("/categories/{id}", handler.GetCategory)
		router.Post("/categories", handler.CreateCategory)
		router.Put("/categories/{id}", handler.UpdateCategory)
		router.Delete("/categories/{id}", handler.DeleteCategory)
	})

	AfterEach(func() {
		testdb.Close(db)
	})

	serve := func(method, path, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, path, nil)
		} else {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	Describe("GET /categories", func() {
		It("should return the first page sorted by id", func() {
			w := serve(http.MethodGet, "/categories", "")

			Expect(w.Code).To(Equal(http.StatusOK))
			var page pagination.Page[category.CategoryDTO]
			Expect(json.NewDecoder(w.Body).Decode(&page)).To(Succeed())
			Expect(page.TotalElements).To(Equal(int64(3)))
			Expect(page.Content[0].Name).To(Equal("Livros"))
		})

		It("should honour sort and size", func() {
			w := serve(http.MethodGet, "/categories?sort=name,asc&size=2", "")

			Expect(w.Code).To(Equal(http.StatusOK))
			var page pagination.Page[category.CategoryDTO]
			Expect(json.NewDecoder(w.Body).Decode(&page)).To(Succeed())
			Expect(page.Content).To(HaveLen(2))
			Expect(page.Content[0].Name).To(Equal("Computadores"))
			Expect(page.TotalPages).To(Equal(2))
		})

		It("should reject an unknown sort field", func() {
			w := serve(http.MethodGet, "/categories?sort=password", "")

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /categories/{id}", func() {
		It("should return 404 for a missing id", func() {
			w := serve(http.MethodGet, "/categories/1000", "")

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("should return 400 for a non numeric id", func() {
			w := serve(http.MethodGet, "/categories/abc", "")

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("POST /categories", func() {
		It("should create the category and point at it", func() {
			w := serve(http.MethodPost, "/categories", `{"name":"Games"}`)

			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(w.Header().Get("Location")).To(Equal("/categories/4"))
			var dto category.CategoryDTO
			Expect(json.NewDecoder(w.Body).Decode(&dto)).To(Succeed())
			Expect(dto.ID).To(Equal(int64(4)))
		})

		It("should reject unknown fields", func() {
			w := serve(http.MethodPost, "/categories", `{"name":"Games","color":"red"}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("PUT /categories/{id}", func() {
		It("should rename the category", func() {
			w := serve(http.MethodPut, "/categories/1", `{"name":"Books"}`)

			Expect(w.Code).To(Equal(http.StatusOK))
			w = serve(http.MethodGet, "/categories/1", "")
			Expect(w.Body.String()).To(ContainSubstring(`"name":"Books"`))
		})

		It("should return 404 for a missing id", func() {
			w := serve(http.MethodPut, "/categories/1000", `{"name":"Books"}`)

			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(w.Body.String()).To(ContainSubstring("Id not found 1000"))
		})
	})

	Describe("DELETE /categories/{id}", func() {
		It("should return 204 and remove the row", func() {
			w := serve(http.MethodDelete, "/categories/3", "")

			Expect(w.Code).To(Equal(http.StatusNoContent))
			Expect(serve(http.MethodGet, "/categories/3", "").Code).To(Equal(http.StatusNotFound))
		})

		It("should return 404 for a missing id", func() {
			w := serve(http.MethodDelete, "/categories/1000", "")

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})
})
