package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/catalog-management/internal/transport"
)

var _ = ginkgo.Describe("Token Handler", func() {
	var (
		handler *Handler
		now     time.Time
	)

	ginkgo.BeforeEach(func() {
		now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		hasher := NewBcryptHasher(bcrypt.MinCost)
		svc := NewService(newMockCredentialStore(hasher), hasher,
			NewJWTTokenGenerator(testSecret, time.Hour, fixedClock(now)), testClient(), testLogger, nil)
		handler = &Handler{BaseHandler: transport.NewBaseHandler(testLogger), Service: svc}
	})

	formRequest := func(values url.Values) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/oauth/token", strings.NewReader(values.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req
	}

	ginkgo.It("should issue a token for a form request with basic client auth", func() {
		req := formRequest(url.Values{
			"grant_type": {"password"},
			"username":   {"a@x.com"},
			"password":   {"correct_password"},
		})
		req.SetBasicAuth("dscatalog", "dscatalog123")
		w := httptest.NewRecorder()

		handler.Token(w, req)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(w.Header().Get("Cache-Control")).To(gomega.Equal("no-store"))

		var resp AccessTokenResponse
		gomega.Expect(json.NewDecoder(w.Body).Decode(&resp)).To(gomega.Succeed())
		gomega.Expect(resp.AccessToken).ToNot(gomega.BeEmpty())
		gomega.Expect(resp.TokenType).To(gomega.Equal("bearer"))
		gomega.Expect(resp.ExpiresIn).To(gomega.Equal(int64(3600)))
		gomega.Expect(resp.Scope).To(gomega.Equal("read write"))
		gomega.Expect(resp.UserID).To(gomega.Equal(int64(1)))
		gomega.Expect(resp.UserFirstName).To(gomega.Equal("Alex"))
		gomega.Expect(resp.JTI).ToNot(gomega.BeEmpty())
	})

	ginkgo.It("should accept client credentials in a JSON body", func() {
		body := `{"grant_type":"password","username":"operator@x.com","password":"correct_password","client_id":"dscatalog","client_secret":"dscatalog123"}`
		req := httptest.NewRequest(http.MethodPost, "/oauth/token", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		handler.Token(w, req)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
	})

	ginkgo.It("should answer 401 with a generic message for bad credentials", func() {
		req := formRequest(url.Values{
			"grant_type": {"password"},
			"username":   {"a@x.com"},
			"password":   {"wrong"},
		})
		req.SetBasicAuth("dscatalog", "dscatalog123")
		w := httptest.NewRecorder()

		handler.Token(w, req)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
		var body errorBody
		gomega.Expect(json.NewDecoder(w.Body).Decode(&body)).To(gomega.Succeed())
		gomega.Expect(body.Error.Message).To(gomega.Equal("Bad credentials"))
	})

	ginkgo.It("should answer 401 with a Basic challenge for a bad client", func() {
		req := formRequest(url.Values{
			"grant_type": {"password"},
			"username":   {"a@x.com"},
			"password":   {"correct_password"},
		})
		req.SetBasicAuth("dscatalog", "wrong")
		w := httptest.NewRecorder()

		handler.Token(w, req)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
		gomega.Expect(w.Header().Values("WWW-Authenticate")).To(gomega.ContainElement(gomega.ContainSubstring("Basic")))
	})

	ginkgo.It("should answer 400 for an unsupported grant type", func() {
		req := formRequest(url.Values{"grant_type": {"client_credentials"}})
		req.SetBasicAuth("dscatalog", "dscatalog123")
		w := httptest.NewRecorder()

		handler.Token(w, req)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusBadRequest))
	})
})
