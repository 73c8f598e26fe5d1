package auth

import (
	"net/http"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Policy", func() {
	var (
		policy   *Policy
		admin    *Principal
		operator *Principal
		noRoles  *Principal
	)

	ginkgo.BeforeEach(func() {
		policy = NewCatalogPolicy("/metrics")
		admin = &Principal{Subject: "a@x.com", Authorities: []string{RoleAdmin}}
		operator = &Principal{Subject: "o@x.com", Authorities: []string{RoleOperator}}
		noRoles = &Principal{Subject: "n@x.com"}
	})

	ginkgo.DescribeTable("Authorize",
		func(method, path string, who func() *Principal, allowed bool, reason DenyReason) {
			decision := policy.Authorize(method, path, who())

			gomega.Expect(decision.Allowed).To(gomega.Equal(allowed))
			gomega.Expect(decision.Reason).To(gomega.Equal(reason))
		},
		ginkgo.Entry("token endpoint is public", http.MethodPost, "/oauth/token", func() *Principal { return nil }, true, DenyNone),
		ginkgo.Entry("health is public", http.MethodGet, "/health", func() *Principal { return nil }, true, DenyNone),
		ginkgo.Entry("extra public pattern", http.MethodGet, "/metrics", func() *Principal { return nil }, true, DenyNone),
		ginkgo.Entry("swagger assets are public", http.MethodGet, "/swagger/index.html", func() *Principal { return nil }, true, DenyNone),

		ginkgo.Entry("GET products without principal", http.MethodGet, "/products", func() *Principal { return nil }, true, DenyNone),
		ginkgo.Entry("GET product by id without principal", http.MethodGet, "/products/1", func() *Principal { return nil }, true, DenyNone),
		ginkgo.Entry("GET categories with a role-less principal", http.MethodGet, "/categories/3", func() *Principal { return noRoles }, true, DenyNone),

		ginkgo.Entry("PUT product as operator", http.MethodPut, "/products/1", func() *Principal { return operator }, true, DenyNone),
		ginkgo.Entry("PUT product as admin", http.MethodPut, "/products/1", func() *Principal { return admin }, true, DenyNone),
		ginkgo.Entry("PUT product with no roles", http.MethodPut, "/products/1", func() *Principal { return noRoles }, false, DenyForbidden),
		ginkgo.Entry("PUT product without principal", http.MethodPut, "/products/1", func() *Principal { return nil }, false, DenyUnauthenticated),
		ginkgo.Entry("POST categories as operator", http.MethodPost, "/categories", func() *Principal { return operator }, true, DenyNone),
		ginkgo.Entry("DELETE category with no roles", http.MethodDelete, "/categories/2", func() *Principal { return noRoles }, false, DenyForbidden),

		ginkgo.Entry("GET users as admin", http.MethodGet, "/users", func() *Principal { return admin }, true, DenyNone),
		ginkgo.Entry("DELETE user as admin", http.MethodDelete, "/users/5", func() *Principal { return admin }, true, DenyNone),
		ginkgo.Entry("GET users as operator", http.MethodGet, "/users/5", func() *Principal { return operator }, false, DenyForbidden),
		ginkgo.Entry("GET users without principal", http.MethodGet, "/users", func() *Principal { return nil }, false, DenyUnauthenticated),

		ginkgo.Entry("other path with principal", http.MethodGet, "/reports", func() *Principal { return noRoles }, true, DenyNone),
		ginkgo.Entry("other path without principal", http.MethodGet, "/reports", func() *Principal { return nil }, false, DenyUnauthenticated),
	)

	ginkgo.It("should evaluate by rule kind regardless of registration order", func() {
		reversed := NewPolicy(
			Rule{Kind: RuleAuthenticated, Patterns: []string{"/**"}},
			Rule{Kind: RuleWriteRestricted, Patterns: []string{"/products/**"}, Authorities: []string{RoleOperator}},
			Rule{Kind: RulePublicRead, Patterns: []string{"/products/**"}},
		)

		gomega.Expect(reversed.Authorize(http.MethodGet, "/products", nil).Allowed).To(gomega.BeTrue())
		gomega.Expect(reversed.Authorize(http.MethodPost, "/products", noRoles).Reason).To(gomega.Equal(DenyForbidden))
	})

	ginkgo.It("should not treat admin as an implicit operator", func() {
		operatorOnly := NewPolicy(
			Rule{Kind: RuleRestricted, Patterns: []string{"/ops/**"}, Authorities: []string{RoleOperator}},
		)

		decision := operatorOnly.Authorize(http.MethodGet, "/ops/run", admin)

		gomega.Expect(decision.Allowed).To(gomega.BeFalse())
		gomega.Expect(decision.Reason).To(gomega.Equal(DenyForbidden))
	})

	ginkgo.Describe("MatchPattern", func() {
		ginkgo.It("should match the base path and every sub-path of a /** pattern", func() {
			gomega.Expect(MatchPattern("/products/**", "/products")).To(gomega.BeTrue())
			gomega.Expect(MatchPattern("/products/**", "/products/1")).To(gomega.BeTrue())
			gomega.Expect(MatchPattern("/products/**", "/products/1/images")).To(gomega.BeTrue())
		})

		ginkgo.It("should not match a path that only shares a prefix", func() {
			gomega.Expect(MatchPattern("/products/**", "/productsx")).To(gomega.BeFalse())
			gomega.Expect(MatchPattern("/users/**", "/users-export")).To(gomega.BeFalse())
		})

		ginkgo.It("should match exact patterns exactly", func() {
			gomega.Expect(MatchPattern("/oauth/token", "/oauth/token")).To(gomega.BeTrue())
			gomega.Expect(MatchPattern("/oauth/token", "/oauth/token/x")).To(gomega.BeFalse())
		})
	})
})
