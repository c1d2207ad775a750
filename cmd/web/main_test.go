package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"khojstudio.pk/khoj-web/internal/api"
	"khojstudio.pk/khoj-web/internal/config"
)

// stubBackend plays the remote API: envelope responses, cookie-based
// refresh that always fails (anonymous visitor), and a recorded order log.
type stubBackend struct {
	mu        sync.Mutex
	orders    []api.CreateOrderRequest
	orderFail string // when set, order creation answers 400 with this message
}

func (b *stubBackend) failNextOrders(msg string) {
	b.mu.Lock()
	b.orderFail = msg
	b.mu.Unlock()
}

func (b *stubBackend) recordedOrders() []api.CreateOrderRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]api.CreateOrderRequest(nil), b.orders...)
}

func envelope(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	raw, _ := json.Marshal(data)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"code":    status,
		"data":    json.RawMessage(raw),
		"message": message,
	})
}

func stubProduct() api.Product {
	return api.Product{
		ID:       "p1",
		Name:     "Oversized White Poplin Shirt",
		Price:    3000,
		Category: "shirts",
		Sizes:    []string{"S", "M", "L"},
		InStock:  true,
		Images:   []api.ProductImage{{URL: "https://cdn.khoj.test/p1.jpg"}},
	}
}

func (b *stubBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, http.StatusUnauthorized, nil, "No refresh session")
	})
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req api.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password == "wrong" {
			envelope(w, http.StatusUnauthorized, nil, "Invalid email or password")
			return
		}
		role := "user"
		if strings.HasPrefix(req.Email, "admin@") {
			role = "admin"
		}
		envelope(w, http.StatusOK, api.AuthResponse{
			User:   api.User{ID: "u1", Name: "Ayesha", Email: req.Email, Role: role},
			Tokens: api.AuthTokens{AccessToken: "tok-" + role},
		}, "ok")
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, http.StatusOK, nil, "ok")
	})
	mux.HandleFunc("GET /content/homepage", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, http.StatusOK, map[string]any{}, "ok")
	})
	mux.HandleFunc("GET /products/featured", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, http.StatusOK, []api.Product{stubProduct()}, "ok")
	})
	mux.HandleFunc("GET /products/categories", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, http.StatusOK, []api.CategoryInfo{{Slug: "shirts", Name: "Shirts", Count: 1}}, "ok")
	})
	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, http.StatusOK, api.Paginated[api.Product]{
			Items: []api.Product{stubProduct()}, Total: 1, Page: 1, TotalPages: 1,
		}, "ok")
	})
	mux.HandleFunc("GET /products/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "p1" {
			envelope(w, http.StatusNotFound, nil, "Product not found")
			return
		}
		envelope(w, http.StatusOK, stubProduct(), "ok")
	})
	mux.HandleFunc("GET /collections", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, http.StatusOK, []api.Collection{}, "ok")
	})
	mux.HandleFunc("GET /addresses", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, http.StatusOK, []api.Address{}, "ok")
	})
	mux.HandleFunc("GET /user/profile", func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			envelope(w, http.StatusUnauthorized, nil, "Unauthorized")
			return
		}
		role := strings.TrimPrefix(auth, "Bearer tok-")
		envelope(w, http.StatusOK, api.UserProfile{ID: "u1", Name: "Ayesha", Email: "a@khoj.pk", Role: role}, "ok")
	})
	mux.HandleFunc("POST /newsletter/subscribe", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, http.StatusOK, nil, "ok")
	})
	mux.HandleFunc("POST /checkout/with-items", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		fail := b.orderFail
		b.mu.Unlock()
		if fail != "" {
			envelope(w, http.StatusBadRequest, nil, fail)
			return
		}
		var req api.CreateOrderRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		b.orders = append(b.orders, req)
		b.mu.Unlock()
		envelope(w, http.StatusCreated, api.CreateOrderResponse{OrderID: "o1", OrderNumber: "KHJ-1042"}, "ok")
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, http.StatusNotFound, nil, "Not found")
	})
	return mux
}

type webFixture struct {
	srv     *httptest.Server
	backend *stubBackend
	client  *http.Client
}

func newWebFixture(t *testing.T) *webFixture {
	t.Helper()
	backend := &stubBackend{}
	backendSrv := httptest.NewServer(backend.handler())
	t.Cleanup(backendSrv.Close)

	cfg := config.Config{
		Server: config.ServerConfig{
			Env:          "test",
			TemplatesDir: "../../templates",
			PublicDir:    "../../public",
		},
		API:     config.APIConfig{BaseURL: backendSrv.URL},
		Session: config.SessionConfig{SigningKey: "test-signing-key", TTL: time.Hour},
		Shop: config.ShopConfig{
			FreeShippingThreshold: 5000,
			FlatShippingFee:       250,
			Currency:              "PKR",
			Provinces:             []string{"Punjab", "Sindh"},
			PaymentMethods: []config.PaymentMethodOption{
				{ID: "cod", Label: "Cash on Delivery"},
				{ID: "easypaisa", Label: "Easypaisa"},
			},
		},
	}
	a, err := newApp(cfg, zap.NewNop())
	require.NoError(t, err)

	srv := httptest.NewServer(a.routes())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &webFixture{srv: srv, backend: backend, client: client}
}

func (f *webFixture) get(t *testing.T, path string) *http.Response {
	t.Helper()
	res, err := f.client.Get(f.srv.URL + path)
	require.NoError(t, err)
	return res
}

// postForm sends a form post with the CSRF token attached, optionally
// marked as an HTMX request.
func (f *webFixture) postForm(t *testing.T, path string, form url.Values, htmx bool) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, f.srv.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-CSRF-Token", f.csrfToken(t))
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	res, err := f.client.Do(req)
	require.NoError(t, err)
	return res
}

func (f *webFixture) csrfToken(t *testing.T) string {
	t.Helper()
	u, err := url.Parse(f.srv.URL)
	require.NoError(t, err)
	for _, c := range f.client.Jar.Cookies(u) {
		if c.Name == "csrf_token" {
			return c.Value
		}
	}
	return ""
}

func body(t *testing.T, res *http.Response) string {
	t.Helper()
	defer res.Body.Close()
	var sb strings.Builder
	_, err := io.Copy(&sb, res.Body)
	require.NoError(t, err)
	return sb.String()
}

func TestHealthz(t *testing.T) {
	f := newWebFixture(t)
	res := f.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "ok", body(t, res))
}

func TestHomeRendersWithFallbackContent(t *testing.T) {
	f := newWebFixture(t)
	res := f.get(t, "/")
	require.Equal(t, http.StatusOK, res.StatusCode)

	html := body(t, res)
	assert.Contains(t, html, "The Collection")
	assert.Contains(t, html, "Oversized White Poplin Shirt")
	assert.Contains(t, html, "PKR 3,000")
	assert.Contains(t, html, "application/ld+json")

	var visitCookie bool
	for _, c := range res.Cookies() {
		if c.Name == "khoj_visit" {
			visitCookie = true
			assert.True(t, c.HttpOnly)
		}
	}
	assert.True(t, visitCookie, "first response should mint the visit cookie")
}

func TestStaticPageRendersMarkdown(t *testing.T) {
	f := newWebFixture(t)
	res := f.get(t, "/pages/shipping-returns")
	require.Equal(t, http.StatusOK, res.StatusCode)

	html := body(t, res)
	assert.Contains(t, html, "Shipping &amp; Returns")
	assert.Contains(t, html, "<strong>PKR 250</strong>")

	res = f.get(t, "/pages/no-such-page")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	_ = body(t, res)
}

func TestUnknownProductIs404(t *testing.T) {
	f := newWebFixture(t)
	res := f.get(t, "/shop/ghost")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Contains(t, body(t, res), "Page not found")
}

func TestCartAddWithoutCSRFTokenIsRejected(t *testing.T) {
	f := newWebFixture(t)
	_ = body(t, f.get(t, "/")) // mint the visit

	form := url.Values{"product_id": {"p1"}, "size": {"M"}, "quantity": {"1"}}
	req, err := http.NewRequest(http.MethodPost, f.srv.URL+"/cart/items", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res, err := f.client.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	_ = body(t, res)
}

func TestCartAddRendersDrawerAndBadgeTrigger(t *testing.T) {
	f := newWebFixture(t)
	_ = body(t, f.get(t, "/"))

	res := f.postForm(t, "/cart/items", url.Values{
		"product_id": {"p1"}, "size": {"M"}, "quantity": {"2"},
	}, true)
	require.Equal(t, http.StatusOK, res.StatusCode)

	assert.Contains(t, res.Header.Get("HX-Trigger"), `"cart:changed"`)
	html := body(t, res)
	assert.Contains(t, html, "Oversized White Poplin Shirt")
	assert.Contains(t, html, "PKR 6,000")
	assert.Contains(t, html, "drawer open")
}

func TestAccountRedirectsAnonymousToLogin(t *testing.T) {
	f := newWebFixture(t)
	res := f.get(t, "/account")
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/login?next=/account", res.Header.Get("Location"))
	_ = body(t, res)
}

func TestLoginRoutesByRole(t *testing.T) {
	t.Run("admin lands on the console", func(t *testing.T) {
		f := newWebFixture(t)
		_ = body(t, f.get(t, "/"))
		res := f.postForm(t, "/login", url.Values{
			"email": {"admin@khoj.pk"}, "password": {"secret"},
		}, false)
		require.Equal(t, http.StatusSeeOther, res.StatusCode)
		assert.Equal(t, "/admin", res.Header.Get("Location"))
		_ = body(t, res)
	})

	t.Run("shopper lands on the account page", func(t *testing.T) {
		f := newWebFixture(t)
		_ = body(t, f.get(t, "/"))
		res := f.postForm(t, "/login", url.Values{
			"email": {"ayesha@khoj.pk"}, "password": {"secret"},
		}, false)
		require.Equal(t, http.StatusSeeOther, res.StatusCode)
		assert.Equal(t, "/account", res.Header.Get("Location"))
		_ = body(t, res)
	})

	t.Run("bad credentials re-render the form", func(t *testing.T) {
		f := newWebFixture(t)
		_ = body(t, f.get(t, "/"))
		res := f.postForm(t, "/login", url.Values{
			"email": {"ayesha@khoj.pk"}, "password": {"wrong"},
		}, false)
		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Contains(t, body(t, res), "Invalid email or password")
	})
}

func TestAdminConsoleForbidsShoppers(t *testing.T) {
	f := newWebFixture(t)
	_ = body(t, f.get(t, "/"))
	res := f.postForm(t, "/login", url.Values{
		"email": {"ayesha@khoj.pk"}, "password": {"secret"},
	}, false)
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	_ = body(t, res)

	res = f.get(t, "/admin/products")
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	_ = body(t, res)
}

func TestEmptyCartCheckoutRedirectsToCart(t *testing.T) {
	f := newWebFixture(t)
	res := f.get(t, "/checkout")
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/cart", res.Header.Get("Location"))
	_ = body(t, res)
}

func TestCheckoutWizardEndToEnd(t *testing.T) {
	f := newWebFixture(t)
	_ = body(t, f.get(t, "/"))

	// One shirt at 3000 sits under the free-shipping threshold.
	res := f.postForm(t, "/cart/items", url.Values{
		"product_id": {"p1"}, "size": {"M"}, "quantity": {"1"},
	}, true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	_ = body(t, res)

	res = f.get(t, "/checkout")
	require.Equal(t, http.StatusOK, res.StatusCode)
	html := body(t, res)
	assert.Contains(t, html, `name="fullName"`)
	assert.Contains(t, html, "PKR 250")
	assert.Contains(t, html, "PKR 3,250")

	// A blank submit stays on shipping with per-field messages.
	res = f.postForm(t, "/checkout/shipping", url.Values{}, true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	html = body(t, res)
	assert.Contains(t, html, "Full name is required")
	assert.Contains(t, html, `name="fullName"`)

	res = f.postForm(t, "/checkout/shipping", url.Values{
		"fullName":     {"Ayesha Khan"},
		"email":        {"ayesha@example.com"},
		"phone":        {"03001234567"},
		"addressLine1": {"14-B Model Town"},
		"city":         {"Lahore"},
		"province":     {"Punjab"},
		"postalCode":   {"54000"},
	}, true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	html = body(t, res)
	assert.Contains(t, html, `name="payment_method"`)

	res = f.postForm(t, "/checkout/payment", url.Values{"payment_method": {"easypaisa"}}, true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	html = body(t, res)
	assert.Contains(t, html, "Place Order")
	assert.Contains(t, html, "Ayesha Khan")
	assert.Contains(t, html, "Easypaisa")

	res = f.postForm(t, "/checkout/place-order", url.Values{}, true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	html = body(t, res)
	assert.Contains(t, html, "KHJ-1042")
	assert.Contains(t, html, "Thank you, Ayesha Khan")

	orders := f.backend.recordedOrders()
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, api.OrderLine{ProductID: "p1", Size: "M", Quantity: 1}, orders[0].Items[0])
	assert.Equal(t, "easypaisa", orders[0].PaymentMethod)
	assert.Equal(t, "Lahore", orders[0].Address.City)

	res = f.get(t, "/cart/drawer")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body(t, res), "Your bag is empty")
}

func TestNewAppRejectsBlankAPIBaseURL(t *testing.T) {
	cfg := config.Config{
		Server: config.ServerConfig{
			Env:          "test",
			TemplatesDir: "../../templates",
			PublicDir:    "../../public",
		},
	}
	_, err := newApp(cfg, zap.NewNop())
	require.Error(t, err)
}

func TestNewBagAfterConfirmationStartsFreshCheckout(t *testing.T) {
	f := newWebFixture(t)
	_ = body(t, f.get(t, "/"))

	res := f.postForm(t, "/cart/items", url.Values{
		"product_id": {"p1"}, "size": {"M"}, "quantity": {"1"},
	}, true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	_ = body(t, res)

	res = f.postForm(t, "/checkout/shipping", url.Values{
		"fullName":     {"Ayesha Khan"},
		"email":        {"ayesha@example.com"},
		"phone":        {"03001234567"},
		"addressLine1": {"14-B Model Town"},
		"city":         {"Lahore"},
		"province":     {"Punjab"},
		"postalCode":   {"54000"},
	}, true)
	_ = body(t, res)
	res = f.postForm(t, "/checkout/payment", url.Values{"payment_method": {"cod"}}, true)
	_ = body(t, res)
	res = f.postForm(t, "/checkout/place-order", url.Values{}, true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body(t, res), "KHJ-1042")

	// Revisiting with the bag still empty keeps the confirmation page.
	res = f.get(t, "/checkout")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body(t, res), "KHJ-1042")

	// A second purchase begins a fresh wizard, not the stale confirmation.
	res = f.postForm(t, "/cart/items", url.Values{
		"product_id": {"p1"}, "size": {"L"}, "quantity": {"1"},
	}, true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	_ = body(t, res)

	res = f.get(t, "/checkout")
	require.Equal(t, http.StatusOK, res.StatusCode)
	html := body(t, res)
	assert.Contains(t, html, `name="fullName"`)
	assert.NotContains(t, html, "KHJ-1042")
	assert.NotContains(t, html, "Ayesha Khan")

	res = f.postForm(t, "/checkout/shipping", url.Values{
		"fullName":     {"Bilal Ahmed"},
		"email":        {"bilal@example.com"},
		"phone":        {"03217654321"},
		"addressLine1": {"House 9, F-7"},
		"city":         {"Islamabad"},
		"province":     {"Islamabad Capital Territory"},
		"postalCode":   {"44000"},
	}, true)
	_ = body(t, res)
	res = f.postForm(t, "/checkout/payment", url.Values{"payment_method": {"cod"}}, true)
	_ = body(t, res)
	res = f.postForm(t, "/checkout/place-order", url.Values{}, true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body(t, res), "Thank you, Bilal Ahmed")

	orders := f.backend.recordedOrders()
	require.Len(t, orders, 2)
	assert.Equal(t, api.OrderLine{ProductID: "p1", Size: "L", Quantity: 1}, orders[1].Items[0])
	assert.Equal(t, "Islamabad", orders[1].Address.City)
}

func TestPlaceOrderFailureKeepsBagAndStep(t *testing.T) {
	f := newWebFixture(t)
	_ = body(t, f.get(t, "/"))

	res := f.postForm(t, "/cart/items", url.Values{
		"product_id": {"p1"}, "size": {"M"}, "quantity": {"1"},
	}, true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	_ = body(t, res)

	res = f.postForm(t, "/checkout/shipping", url.Values{
		"fullName":     {"Ayesha Khan"},
		"email":        {"ayesha@example.com"},
		"phone":        {"03001234567"},
		"addressLine1": {"14-B Model Town"},
		"city":         {"Lahore"},
		"province":     {"Punjab"},
		"postalCode":   {"54000"},
	}, true)
	_ = body(t, res)
	res = f.postForm(t, "/checkout/payment", url.Values{"payment_method": {"cod"}}, true)
	_ = body(t, res)

	f.backend.failNextOrders("Size M is out of stock")
	res = f.postForm(t, "/checkout/place-order", url.Values{}, true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	html := body(t, res)
	assert.Contains(t, html, "Size M is out of stock")
	assert.Contains(t, html, "Place Order")

	res = f.get(t, "/cart/drawer")
	assert.Contains(t, body(t, res), "Oversized White Poplin Shirt")
}

func TestLogoutDiscardsVisitState(t *testing.T) {
	f := newWebFixture(t)
	_ = body(t, f.get(t, "/"))

	res := f.postForm(t, "/cart/items", url.Values{
		"product_id": {"p1"}, "size": {"M"}, "quantity": {"1"},
	}, true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	_ = body(t, res)

	res = f.postForm(t, "/logout", url.Values{}, false)
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/", res.Header.Get("Location"))
	_ = body(t, res)

	res = f.get(t, "/cart/drawer")
	assert.Contains(t, body(t, res), "Your bag is empty")
}

func TestNewsletterSubscribeSwapsFragment(t *testing.T) {
	f := newWebFixture(t)
	_ = body(t, f.get(t, "/"))

	res := f.postForm(t, "/newsletter", url.Values{"email": {"ayesha@example.com"}}, true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body(t, res), "Thanks for subscribing")
}
