package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func tamperSignature(token string) string {
	parts := strings.Split(token, ".")
	sig := []byte(parts[2])
	// the first character only carries signature bits, unlike the padded last one
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	parts[2] = string(sig)
	return strings.Join(parts, ".")
}

var _ = ginkgo.Describe("JWTTokenGenerator", func() {
	var (
		issuedAt time.Time
		gen      *JWTTokenGenerator
		user     *UserCredentials
	)

	ginkgo.BeforeEach(func() {
		issuedAt = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		gen = NewJWTTokenGenerator(testSecret, time.Hour, fixedClock(issuedAt))
		user = &UserCredentials{
			ID:          5,
			Email:       "a@x.com",
			FirstName:   "Alex",
			Authorities: []string{RoleAdmin},
		}
	})

	ginkgo.Describe("Generate", func() {
		ginkgo.It("should use the client validity for the expiry", func() {
			client := testClient()
			client.Validity = 30 * time.Minute

			token, err := gen.Generate(user, client)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(token.ExpiresAt).To(gomega.BeTemporally("==", issuedAt.Add(30*time.Minute)))
		})

		ginkgo.It("should write the custom claim names", func() {
			token, err := gen.Generate(user, testClient())
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			claims := jwt.MapClaims{}
			_, _, err = jwt.NewParser().ParseUnverified(token.Value, claims)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims).To(gomega.HaveKeyWithValue("sub", "a@x.com"))
			gomega.Expect(claims).To(gomega.HaveKeyWithValue("userId", float64(5)))
			gomega.Expect(claims).To(gomega.HaveKeyWithValue("userFirstName", "Alex"))
			gomega.Expect(claims).To(gomega.HaveKeyWithValue("client_id", "dscatalog"))
			gomega.Expect(claims).To(gomega.HaveKey("jti"))
			gomega.Expect(claims).To(gomega.HaveKey("iat"))
			gomega.Expect(claims["authorities"]).To(gomega.ConsistOf(RoleAdmin))
			gomega.Expect(claims["scope"]).To(gomega.ConsistOf("read", "write"))
		})

		ginkgo.It("should fail for a nil user", func() {
			_, err := gen.Generate(nil, testClient())
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("Validate", func() {
		ginkgo.Context("with a token issued by the same key", func() {
			ginkgo.It("should return the principal embedded at issuance", func() {
				token, err := gen.Generate(user, testClient())
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				principal, err := gen.Validate(token.Value)

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(principal.Subject).To(gomega.Equal("a@x.com"))
				gomega.Expect(principal.UserID).To(gomega.Equal(int64(5)))
				gomega.Expect(principal.FirstName).To(gomega.Equal("Alex"))
				gomega.Expect(principal.Authorities).To(gomega.Equal([]string{RoleAdmin}))
				gomega.Expect(principal.Scopes).To(gomega.Equal([]string{"read", "write"}))
				gomega.Expect(principal.ClientID).To(gomega.Equal("dscatalog"))
				gomega.Expect(principal.ExpiresAt).To(gomega.BeTemporally("==", issuedAt.Add(time.Hour)))
			})

			ginkgo.It("should still accept the token one second before expiry", func() {
				token, _ := gen.Generate(user, testClient())
				late := NewJWTTokenGenerator(testSecret, time.Hour, fixedClock(issuedAt.Add(time.Hour-time.Second)))

				_, err := late.Validate(token.Value)

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
			})
		})

		ginkgo.Context("with an expired token", func() {
			ginkgo.It("should return ErrTokenExpired one second after expiry", func() {
				token, _ := gen.Generate(user, testClient())
				later := NewJWTTokenGenerator(testSecret, time.Hour, fixedClock(issuedAt.Add(time.Hour+time.Second)))

				_, err := later.Validate(token.Value)

				gomega.Expect(err).To(gomega.MatchError(ErrTokenExpired))
			})

			ginkgo.It("should return ErrTokenExpired exactly at expiry", func() {
				token, _ := gen.Generate(user, testClient())
				atExpiry := NewJWTTokenGenerator(testSecret, time.Hour, fixedClock(issuedAt.Add(time.Hour)))

				_, err := atExpiry.Validate(token.Value)

				gomega.Expect(err).To(gomega.MatchError(ErrTokenExpired))
			})
		})

		ginkgo.Context("with an altered signature", func() {
			ginkgo.It("should return ErrBadSignature", func() {
				token, _ := gen.Generate(user, testClient())

				_, err := gen.Validate(tamperSignature(token.Value))

				gomega.Expect(err).To(gomega.MatchError(ErrBadSignature))
			})

			ginkgo.It("should return ErrBadSignature for a token signed with another key", func() {
				other := NewJWTTokenGenerator("another-secret-that-is-32-bytes-long", time.Hour, fixedClock(issuedAt))
				token, _ := other.Generate(user, testClient())

				_, err := gen.Validate(token.Value)

				gomega.Expect(err).To(gomega.MatchError(ErrBadSignature))
			})

			ginkgo.It("should return ErrBadSignature for an unexpected algorithm", func() {
				claims := &Claims{
					RegisteredClaims: jwt.RegisteredClaims{
						Subject:   "a@x.com",
						ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
					},
				}
				signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				_, err = gen.Validate(signed)

				gomega.Expect(err).To(gomega.MatchError(ErrBadSignature))
			})
		})

		ginkgo.Context("with a malformed token", func() {
			ginkgo.It("should return ErrMalformedToken for garbage", func() {
				_, err := gen.Validate("not-a-token")
				gomega.Expect(err).To(gomega.MatchError(ErrMalformedToken))
			})

			ginkgo.It("should return ErrMalformedToken for an empty string", func() {
				_, err := gen.Validate("")
				gomega.Expect(err).To(gomega.MatchError(ErrMalformedToken))
			})

			ginkgo.It("should not confuse token kinds", func() {
				_, err := gen.Validate("not-a-token")
				gomega.Expect(err).ToNot(gomega.MatchError(ErrTokenExpired))
				gomega.Expect(err).ToNot(gomega.MatchError(ErrBadSignature))
			})
		})
	})
})
