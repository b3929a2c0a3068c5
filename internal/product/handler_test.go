package product

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func makeAppWithProductHandler(h *Handler) *fiber.App {
	app := fiber.New()
	h.RegisterPublicRoutes(app)
	h.RegisterAdminRoutes(app.Group("/api/v1/admin"))
	return app
}

func TestProductRoutes_Public(t *testing.T) {
	app := makeAppWithProductHandler(NewHandler(NewService(NewInMemoryRepository(seedCatalog()))))

	routes := map[string]bool{}
	for _, grp := range app.Stack() {
		for _, r := range grp {
			routes[r.Path] = true
		}
	}
	if !routes["/api/v1/product/:id<[0-9]+>"] || !routes["/api/v1/admin/variants/:id<[0-9]+>"] {
		t.Fatalf("expected product routes registered, got %v", routes)
	}

	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/products?category=T-Shirts", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), "Crew Tee") || strings.Contains(string(b), "Zip Hoodie") {
		t.Fatalf("category filter not applied: %s", b)
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/product/1", nil))
	b, _ = io.ReadAll(res.Body)
	if res.StatusCode != fiber.StatusOK || !strings.Contains(string(b), `"variants"`) {
		t.Fatalf("unexpected product detail %d %s", res.StatusCode, b)
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/product/3", nil))
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for inactive product, got %d", res.StatusCode)
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/product/1/image", nil))
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 without image, got %d", res.StatusCode)
	}
}

func TestProductRoutes_AdminStockAndUpdate(t *testing.T) {
	app := makeAppWithProductHandler(NewHandler(NewService(NewInMemoryRepository(seedCatalog()))))

	req := httptest.NewRequest("PATCH", "/api/v1/admin/variants/11", strings.NewReader(`{"stock":4}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ := app.Test(req)
	b, _ := io.ReadAll(res.Body)
	if res.StatusCode != fiber.StatusOK || !strings.Contains(string(b), `"isAvailable":true`) {
		t.Fatalf("stock patch failed: %d %s", res.StatusCode, b)
	}

	req = httptest.NewRequest("PATCH", "/api/v1/admin/variants/11", strings.NewReader(`{"stock":-1}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for negative stock, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("PATCH", "/api/v1/admin/products/2", strings.NewReader(`{"price":1100,"isActive":false}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ = app.Test(req)
	b, _ = io.ReadAll(res.Body)
	if res.StatusCode != fiber.StatusOK || !strings.Contains(string(b), `"price":1100`) || !strings.Contains(string(b), `"name":"Zip Hoodie"`) {
		t.Fatalf("product patch failed: %d %s", res.StatusCode, b)
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/admin/products", nil))
	b, _ = io.ReadAll(res.Body)
	if !strings.Contains(string(b), "Retired Polo") {
		t.Fatalf("admin list must include inactive products: %s", b)
	}
}

func TestProductRoutes_ImageUpload(t *testing.T) {
	app := makeAppWithProductHandler(NewHandler(NewService(NewInMemoryRepository(seedCatalog()))))

	post := func(contentType string, data []byte) int {
		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="front.png"`)
		h.Set("Content-Type", contentType)
		part, _ := w.CreatePart(h)
		_, _ = part.Write(data)
		_ = w.Close()

		req := httptest.NewRequest("POST", "/api/v1/admin/products/1/image", &body)
		req.Header.Set("Content-Type", w.FormDataContentType())
		res, err := app.Test(req)
		if err != nil {
			t.Fatalf("upload failed: %v", err)
		}
		return res.StatusCode
	}

	if code := post("application/pdf", []byte("%PDF")); code != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for pdf, got %d", code)
	}
	if code := post("image/png", []byte("\x89PNG\r\n")); code != fiber.StatusOK {
		t.Fatalf("expected 200 for png, got %d", code)
	}

	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/product/1/image", nil))
	if res.StatusCode != fiber.StatusOK || res.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("expected stored image, got %d %s", res.StatusCode, res.Header.Get("Content-Type"))
	}
}
