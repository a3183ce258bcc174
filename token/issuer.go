package token

import (
	"context"
	"crypto/rsa"
	"fmt"
	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"time"
)

const (
	grantTypeClientCredentials = "client_credentials"
	clientAssertionType        = "urn:ietf:params:oauth:client-assertion-type:jwt-bearer"
	assertionExpiration        = 5 * time.Minute
)

// Issuer obtains a new bearer token from the identity provider
type Issuer interface {
	Authenticate(ctx context.Context) (string, error)
}

type AuthenticationError struct {
	Status int
	Body   string
	Err    error
}

func (a *AuthenticationError) Error() string {
	if a.Err != nil {
		return fmt.Sprintf("authentication failed: %v", a.Err)
	}
	return fmt.Sprintf("authentication failed: %d %s", a.Status, a.Body)
}

func (a *AuthenticationError) Unwrap() error {
	return a.Err
}

type issuerResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type issuer struct {
	config      Config
	restyClient *resty.Client
	privateKey  *rsa.PrivateKey
}

// NewIssuer returns a client credentials issuer. When a private key is configured the client
// authenticates with a signed JWT assertion instead of the client secret.
func NewIssuer(config Config, restyClient *resty.Client) (Issuer, error) {
	iss := &issuer{
		config:      config,
		restyClient: restyClient,
	}

	if config.PrivateKeyPem != "" {
		privateKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(config.PrivateKeyPem))
		if err != nil {
			return nil, fmt.Errorf("unable to parse private key: %w", err)
		}
		iss.privateKey = privateKey
	}

	return iss, nil
}

func (i *issuer) Authenticate(ctx context.Context) (string, error) {
	formData := map[string]string{
		"grant_type": grantTypeClientCredentials,
		"client_id":  i.config.ClientId,
	}

	if i.privateKey != nil {
		assertion, err := i.getSignedAssertion()
		if err != nil {
			return "", &AuthenticationError{Err: fmt.Errorf("unable to sign assertion: %w", err)}
		}
		formData["client_assertion_type"] = clientAssertionType
		formData["client_assertion"] = assertion
	} else {
		formData["client_secret"] = i.config.ClientSecret
	}

	result := &issuerResponse{}
	resp, err := i.restyClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetHeader("Accept", "application/json").
		SetFormData(formData).
		SetResult(result).
		Post(i.config.TokenURL)

	if err != nil {
		return "", &AuthenticationError{Err: err}
	}
	if resp.IsError() || result.AccessToken == "" {
		return "", &AuthenticationError{Status: resp.StatusCode(), Body: resp.String()}
	}

	return result.AccessToken, nil
}

func (i *issuer) getSignedAssertion() (string, error) {
	now := time.Now()
	nonce, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}

	assertion := jwt.NewWithClaims(jwt.SigningMethodRS384, jwt.MapClaims{
		"iss": i.config.ClientId,
		"sub": i.config.ClientId,
		"aud": i.config.TokenURL,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": now.Add(assertionExpiration).Unix(),
		"jti": nonce.String(),
	})
	if i.config.KeyId != "" {
		assertion.Header["kid"] = i.config.KeyId
	}

	return assertion.SignedString(i.privateKey)
}
