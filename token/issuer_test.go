package token_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/susom/smartdata-worker/token"
	"net/http"
	"net/http/httptest"
	"net/url"
)

var _ = Describe("Issuer", func() {
	var server *httptest.Server
	var received url.Values
	var status int
	var body string

	BeforeEach(func() {
		received = nil
		status = http.StatusOK
		body = `{"access_token":"abc","token_type":"Bearer","expires_in":3600}`
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.Method).To(Equal(http.MethodPost))
			Expect(r.ParseForm()).To(Succeed())
			received = r.PostForm
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	newIssuer := func(config token.Config) token.Issuer {
		config.TokenURL = server.URL
		issuer, err := token.NewIssuer(config, resty.New())
		Expect(err).ToNot(HaveOccurred())
		return issuer
	}

	It("requests a token with the client secret", func() {
		issuer := newIssuer(token.Config{ClientId: "client", ClientSecret: "secret"})

		result, err := issuer.Authenticate(context.Background())
		Expect(err).ToNot(HaveOccurred())
		Expect(result).To(Equal("abc"))
		Expect(received.Get("grant_type")).To(Equal("client_credentials"))
		Expect(received.Get("client_id")).To(Equal("client"))
		Expect(received.Get("client_secret")).To(Equal("secret"))
		Expect(received.Get("client_assertion")).To(BeEmpty())
	})

	It("requests a token with a signed assertion when a private key is configured", func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		Expect(err).ToNot(HaveOccurred())
		pemKey := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})

		issuer := newIssuer(token.Config{ClientId: "client", PrivateKeyPem: string(pemKey), KeyId: "key-1"})

		result, err := issuer.Authenticate(context.Background())
		Expect(err).ToNot(HaveOccurred())
		Expect(result).To(Equal("abc"))
		Expect(received.Get("client_secret")).To(BeEmpty())
		Expect(received.Get("client_assertion_type")).To(Equal("urn:ietf:params:oauth:client-assertion-type:jwt-bearer"))

		claims := jwt.MapClaims{}
		parsed, err := jwt.ParseWithClaims(received.Get("client_assertion"), claims, func(t *jwt.Token) (interface{}, error) {
			return &key.PublicKey, nil
		}, jwt.WithValidMethods([]string{"RS384"}))
		Expect(err).ToNot(HaveOccurred())
		Expect(parsed.Header["kid"]).To(Equal("key-1"))
		Expect(claims["iss"]).To(Equal("client"))
		Expect(claims["sub"]).To(Equal("client"))
		Expect(claims["aud"]).To(Equal(server.URL))
		Expect(claims["jti"]).ToNot(BeEmpty())
	})

	It("rejects an invalid private key", func() {
		_, err := token.NewIssuer(token.Config{PrivateKeyPem: "not a key"}, resty.New())
		Expect(err).To(HaveOccurred())
	})

	It("fails when the response has no access token", func() {
		body = `{"token_type":"Bearer"}`
		issuer := newIssuer(token.Config{ClientId: "client", ClientSecret: "secret"})

		_, err := issuer.Authenticate(context.Background())
		var authErr *token.AuthenticationError
		Expect(errors.As(err, &authErr)).To(BeTrue())
		Expect(authErr.Status).To(Equal(http.StatusOK))
	})

	It("fails when the identity provider returns an error", func() {
		status = http.StatusUnauthorized
		body = `{"error":"invalid_client"}`
		issuer := newIssuer(token.Config{ClientId: "client", ClientSecret: "wrong"})

		_, err := issuer.Authenticate(context.Background())
		var authErr *token.AuthenticationError
		Expect(errors.As(err, &authErr)).To(BeTrue())
		Expect(authErr.Status).To(Equal(http.StatusUnauthorized))
		Expect(authErr.Body).To(ContainSubstring("invalid_client"))
	})

	It("fails when the identity provider is unreachable", func() {
		issuer := newIssuer(token.Config{ClientId: "client", ClientSecret: "secret"})
		server.Close()

		_, err := issuer.Authenticate(context.Background())
		var authErr *token.AuthenticationError
		Expect(errors.As(err, &authErr)).To(BeTrue())
		Expect(authErr.Err).To(HaveOccurred())
	})
})
