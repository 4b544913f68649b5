package cart

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/shopspring/decimal"

	"github.com/marcosvbento/storefront-backend/internal/product"
)

func newTestApp(products ...product.Product) *fiber.App {
	s, _ := newTestService(products...)
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{
			"user_id": testUserID,
			"role":    "USER",
		}})
		return c.Next()
	})
	NewHandler(s).RegisterProtectedRoutes(app)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) *http.Response {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeCart(t *testing.T, resp *http.Response) Cart {
	t.Helper()
	var c Cart
	if err := json.NewDecoder(resp.Body).Decode(&c); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	return c
}

func TestCartEndpoints(t *testing.T) {
	app := newTestApp(product.Product{ID: "prod-1", Title: "Ceramic Mug", Price: decimal.NewFromInt(40), Stock: 10})

	resp := doJSON(t, app, http.MethodGet, "/api/v1/cart", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET cart status = %d", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodPost, "/api/v1/cart/items", `{"productId":"prod-1","quantity":2}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST item status = %d", resp.StatusCode)
	}
	c := decodeCart(t, resp)
	if len(c.Items) != 1 || c.Items[0].Quantity != 2 {
		t.Fatalf("unexpected cart: %+v", c)
	}
	if !c.Total.Equal(decimal.NewFromInt(80)) {
		t.Errorf("total = %s, want 80", c.Total)
	}

	itemID := c.Items[0].ID
	resp = doJSON(t, app, http.MethodPut, "/api/v1/cart/items/"+itemID, `{"quantity":5}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT item status = %d", resp.StatusCode)
	}
	c = decodeCart(t, resp)
	if c.Items[0].Quantity != 5 {
		t.Errorf("quantity = %d, want 5", c.Items[0].Quantity)
	}

	resp = doJSON(t, app, http.MethodDelete, "/api/v1/cart/items/"+itemID, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("DELETE item status = %d", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodDelete, "/api/v1/cart", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE cart status = %d", resp.StatusCode)
	}
}

func TestCartEndpointErrors(t *testing.T) {
	app := newTestApp(product.Product{ID: "prod-1", Title: "Ceramic Mug", Price: decimal.NewFromInt(40), Stock: 1})

	resp := doJSON(t, app, http.MethodPost, "/api/v1/cart/items", `{"productId":"ghost","quantity":1}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown product status = %d, want 404", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodPost, "/api/v1/cart/items", `{"productId":"prod-1","quantity":5}`)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("insufficient stock status = %d, want 409", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodPost, "/api/v1/cart/items", `{"productId":"prod-1","quantity":0}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("zero quantity status = %d, want 400", resp.StatusCode)
	}
}
