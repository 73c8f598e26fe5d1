package product_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"gorm.io/gorm"

	"github.com/frahmantamala/catalog-management/internal/core/common/pagination"
	"github.com/frahmantamala/catalog-management/internal/core/common/testdb"
	categoryDatamodel "github.com/frahmantamala/catalog-management/internal/core/datamodel/category"
	productDatamodel "github.com/frahmantamala/catalog-management/internal/core/datamodel/product"
	"github.com/frahmantamala/catalog-management/internal/product"
	productPostgres "github.com/frahmantamala/catalog-management/internal/product/postgres"
	"github.com/frahmantamala/catalog-management/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Product Handler Integration", func() {
	var (
		db     *gorm.DB
		router chi.Router
	)

	BeforeEach(func() {
		var err error
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())

		categories, err := testdb.SeedCategories(db, "Livros", "Eletrônicos", "Computadores")
		Expect(err).NotTo(HaveOccurred())

		date := time.Date(2020, 7, 13, 20, 50, 7, 0, time.UTC)
		for _, p := range []productDatamodel.Product{
			{Name: "The Lord of the Rings", Price: 90.5, Date: date, Categories: []categoryDatamodel.Category{categories[0]}},
			{Name: "Smart TV", Price: 2190.0, Date: date, Categories: []categoryDatamodel.Category{categories[1], categories[2]}},
			{Name: "PC Gamer", Price: 1200.0, Date: date, Categories: []categoryDatamodel.Category{categories[2]}},
		} {
			p := p
			Expect(db.Omit("Categories.*").Create(&p).Error).To(Succeed())
		}

		service := product.NewService(productPostgres.NewProductRepository(db), nil, testLogger)
		handler := product.NewHandler(transport.NewBaseHandler(testLogger), service)

		router = chi.NewRouter()
		router.Get("/products", handler.GetProducts)
		router.Get("/products/{id}", handler.GetProduct)
		router.Post("/products", handler.CreateProduct)
		router.Put("/products/{id}", handler.UpdateProduct)
		router.Delete("/products/{id}", handler.DeleteProduct)
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

	decodePage := func(w *httptest.ResponseRecorder) pagination.Page[product.ProductDTO] {
		var page pagination.Page[product.ProductDTO]
		Expect(json.NewDecoder(w.Body).Decode(&page)).To(Succeed())
		return page
	}

	It("should list products sorted by name with the default page size", func() {
		w := serve(http.MethodGet, "/products?page=0", "")

		Expect(w.Code).To(Equal(http.StatusOK))
		page := decodePage(w)
		Expect(page.Size).To(Equal(12))
		Expect(page.TotalElements).To(Equal(int64(3)))
		Expect(page.Content[0].Name).To(Equal("PC Gamer"))
	})

	It("should accept the linesPerPage, orderBy and direction parameters", func() {
		w := serve(http.MethodGet, "/products?linesPerPage=2&orderBy=price&direction=DESC", "")

		Expect(w.Code).To(Equal(http.StatusOK))
		page := decodePage(w)
		Expect(page.Content).To(HaveLen(2))
		Expect(page.Content[0].Name).To(Equal("Smart TV"))
		Expect(page.TotalPages).To(Equal(2))
	})

	It("should filter by category and name", func() {
		w := serve(http.MethodGet, "/products?categoryId=3&name=tv", "")

		page := decodePage(w)
		Expect(page.TotalElements).To(Equal(int64(1)))
		Expect(page.Content[0].Categories).To(HaveLen(2))
	})

	It("should reject a malformed categoryId", func() {
		w := serve(http.MethodGet, "/products?categoryId=x", "")

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should create a product and return its location", func() {
		body := `{"name":"Macbook Pro","description":"Laptop","price":1250.0,"imgUrl":"","date":"2020-07-14T10:00:00Z","categories":[{"id":3}]}`

		w := serve(http.MethodPost, "/products", body)

		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(w.Header().Get("Location")).To(Equal("/products/4"))
		var dto product.ProductDTO
		Expect(json.NewDecoder(w.Body).Decode(&dto)).To(Succeed())
		Expect(dto.Categories[0].Name).To(Equal("Computadores"))
	})

	It("should answer 400 with field errors for an invalid body", func() {
		w := serve(http.MethodPost, "/products", `{"name":"PC","price":0,"date":"2020-07-14T10:00:00Z","categories":[]}`)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring(`"field":"name"`))
		Expect(w.Body.String()).To(ContainSubstring(`"field":"price"`))
		Expect(w.Body.String()).To(ContainSubstring(`"field":"categories"`))
	})

	It("should answer 404 when updating a missing product", func() {
		body := `{"name":"Macbook Pro","price":1250.0,"date":"2020-07-14T10:00:00Z","categories":[{"id":3}]}`

		w := serve(http.MethodPut, "/products/1000", body)

		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("should delete an existing product", func() {
		Expect(serve(http.MethodDelete, "/products/1", "").Code).To(Equal(http.StatusNoContent))
		Expect(serve(http.MethodGet, "/products/1", "").Code).To(Equal(http.StatusNotFound))
	})
})
