package shipping

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/marcosvbento/storefront-backend/internal/apperr"
)

// ZipCodeInfo is the result of a postal-code lookup.
type ZipCodeInfo struct {
	Valid        bool   `json:"valid"`
	ZipCode      string `json:"zipCode"`
	Street       string `json:"street,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
}

// ZipCodeClient resolves a postal code into address information. Valid=false
// with a nil error means the code does not exist; errors are upstream
// failures.
type ZipCodeClient interface {
	Lookup(ctx context.Context, zipCode string) (ZipCodeInfo, error)
}

// ViaCEPClient looks postal codes up against the ViaCEP API.
type ViaCEPClient struct {
	baseURL string
	http    *http.Client
}

func NewViaCEPClient(baseURL string) *ViaCEPClient {
	return &ViaCEPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type viaCEPResponse struct {
	Logradouro string `json:"logradouro"`
	Bairro     string `json:"bairro"`
	Localidade string `json:"localidade"`
	UF         string `json:"uf"`
	// ViaCEP signals an unknown code with an `erro` field whose type has
	// changed across API versions, so it is decoded loosely.
	Erro any `json:"erro"`
}

func (c *ViaCEPClient) Lookup(ctx context.Context, zipCode string) (ZipCodeInfo, error) {
	clean := CleanZipCode(zipCode)
	if len(clean) != 8 {
		return ZipCodeInfo{Valid: false, ZipCode: zipCode}, nil
	}

	url := fmt.Sprintf("%s/ws/%s/json/", c.baseURL, clean)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ZipCodeInfo{}, apperr.Upstream("zip code lookup failed", err)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return ZipCodeInfo{}, apperr.Upstream("zip code lookup failed", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return ZipCodeInfo{}, apperr.Upstream(fmt.Sprintf("zip code lookup returned status %d", res.StatusCode), nil)
	}

	var body viaCEPResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return ZipCodeInfo{}, apperr.Upstream("zip code lookup returned malformed response", err)
	}

	if body.Erro != nil {
		return ZipCodeInfo{Valid: false, ZipCode: zipCode}, nil
	}

	return ZipCodeInfo{
		Valid:        true,
		ZipCode:      zipCode,
		Street:       body.Logradouro,
		Neighborhood: body.Bairro,
		City:         body.Localidade,
		State:        body.UF,
	}, nil
}

// CleanZipCode strips everything but digits.
func CleanZipCode(zipCode string) string {
	var b strings.Builder
	for _, r := range zipCode {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CachedZipCodeClient wraps a ZipCodeClient with a Redis read-through cache.
// Cache failures are ignored so Redis being down never breaks lookups.
type CachedZipCodeClient struct {
	inner ZipCodeClient
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedZipCodeClient(inner ZipCodeClient, rdb *redis.Client) *CachedZipCodeClient {
	return &CachedZipCodeClient{inner: inner, rdb: rdb, ttl: 24 * time.Hour}
}

func (c *CachedZipCodeClient) Lookup(ctx context.Context, zipCode string) (ZipCodeInfo, error) {
	key := "zipcode:" + CleanZipCode(zipCode)

	if raw, err := c.rdb.Get(ctx, key).Result(); err == nil {
		var info ZipCodeInfo
		if json.Unmarshal([]byte(raw), &info) == nil {
			info.ZipCode = zipCode
			return info, nil
		}
	}

	info, err := c.inner.Lookup(ctx, zipCode)
	if err != nil {
		return ZipCodeInfo{}, err
	}

	if data, err := json.Marshal(info); err == nil {
		c.rdb.Set(ctx, key, data, c.ttl)
	}
	return info, nil
}
