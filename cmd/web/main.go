package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"khojstudio.pk/khoj-web/internal/api"
	"khojstudio.pk/khoj-web/internal/cart"
	"khojstudio.pk/khoj-web/internal/checkout"
	"khojstudio.pk/khoj-web/internal/cms"
	"khojstudio.pk/khoj-web/internal/config"
	"khojstudio.pk/khoj-web/internal/format"
	mw "khojstudio.pk/khoj-web/internal/middleware"
	"khojstudio.pk/khoj-web/internal/session"
)

type app struct {
	cfg      config.Config
	logger   *zap.Logger
	registry *mw.Registry
	content  *cms.Service

	devMode      bool
	templatesDir string
	tmpl         *template.Template
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	var logger *zap.Logger
	if cfg.Server.IsProd() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	a, err := newApp(cfg, logger)
	if err != nil {
		logger.Fatal("startup", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go a.registry.Sweep(ctx, time.Minute)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           a.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("web listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Server.Env),
			zap.String("api", cfg.API.BaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func newApp(cfg config.Config, logger *zap.Logger) (*app, error) {
	a := &app{
		cfg:          cfg,
		logger:       logger,
		devMode:      cfg.Server.Env == "dev",
		templatesDir: cfg.Server.TemplatesDir,
	}

	if !a.devMode {
		tc, err := a.parseTemplates()
		if err != nil {
			return nil, fmt.Errorf("parse templates: %w", err)
		}
		a.tmpl = tc
	}

	contentClient, err := api.NewClient(cfg.API.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("content client: %w", err)
	}
	a.content = cms.NewService(contentClient, filepath.Join(cfg.Server.PublicDir, "pages"), 5*time.Minute, logger.Named("cms"))

	mint := func() (*session.Session, *cart.Cart, *checkout.Checkout) {
		client, err := api.NewClient(cfg.API.BaseURL)
		if err != nil {
			// The same base URL already built the content client above,
			// so this cannot fail; Recoverer maps the panic to a 500.
			panic(fmt.Sprintf("visitor client: %v", err))
		}
		rule := checkout.Rule{
			FreeShippingThreshold: cfg.Shop.FreeShippingThreshold,
			FlatFee:               cfg.Shop.FlatShippingFee,
		}
		return session.New(client, logger.Named("session")),
			cart.New(),
			checkout.New(rule, cfg.Shop.PaymentMethodIDs())
	}
	signKey := []byte(cfg.Session.SigningKey)
	if len(signKey) == 0 {
		signKey = make([]byte, 32)
		_, _ = rand.Read(signKey)
		logger.Warn("using ephemeral session signing key; set KHOJ_WEB_SESSION_SIGNING_KEY for production")
	}
	a.registry = mw.NewRegistry(
		signKey,
		cfg.Server.IsProd(),
		cfg.Session.TTL,
		mint,
		logger.Named("visits"),
	)
	return a, nil
}

func (a *app) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(chimid.RealIP)
	r.Use(a.registry.Middleware)
	r.Use(mw.HTMX)
	r.Use(mw.CSRF)
	r.Use(mw.RequestLogger(a.logger))
	r.Use(chimid.Recoverer)
	r.Use(chimid.Compress(5))
	r.Use(chimid.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	static := http.StripPrefix("/static", mw.AssetsWithCache("/static", filepath.Join(a.cfg.Server.PublicDir, "static")))
	r.Handle("/static/*", static)

	r.Get("/", a.HomeHandler)
	r.Get("/shop", a.ShopHandler)
	r.Get("/shop/grid", a.ShopGridFrag)
	r.Get("/shop/{productID}", a.ProductHandler)
	r.Get("/collections", a.CollectionsHandler)
	r.Get("/pages/{slug}", a.StaticPageHandler)
	r.Get("/about", a.AboutHandler)
	r.Post("/newsletter", a.NewsletterSubscribeHandler)

	r.Get("/cart", a.CartHandler)
	r.Get("/cart/drawer", a.CartDrawerFrag)
	r.Post("/cart/drawer/close", a.CartDrawerCloseHandler)
	r.Post("/cart/items", a.CartAddHandler)
	r.Post("/cart/items/update", a.CartUpdateHandler)
	r.Post("/cart/items/remove", a.CartRemoveHandler)

	r.Get("/login", a.LoginPageHandler)
	r.Post("/login", a.LoginSubmitHandler)
	r.Get("/register", a.RegisterPageHandler)
	r.Post("/register", a.RegisterSubmitHandler)
	r.Post("/logout", a.LogoutHandler)

	r.Route("/checkout", func(r chi.Router) {
		r.Get("/", a.CheckoutHandler)
		r.Post("/shipping", a.CheckoutShippingSubmitHandler)
		r.Post("/address/select", a.CheckoutAddressSelectHandler)
		r.Post("/address/new", a.CheckoutAddressNewHandler)
		r.Post("/payment", a.CheckoutPaymentSubmitHandler)
		r.Post("/back", a.CheckoutBackHandler)
		r.Post("/place-order", a.CheckoutPlaceOrderHandler)
		r.Get("/confirmation", a.CheckoutConfirmationHandler)
	})

	r.Route("/account", func(r chi.Router) {
		r.Use(a.requireAuth)
		r.Get("/", a.AccountHandler)
		r.Post("/profile", a.AccountProfileHandler)
		r.Get("/orders", a.AccountOrdersHandler)
		r.Get("/orders/{orderID}", a.AccountOrderHandler)
		r.Post("/addresses", a.AddressCreateHandler)
		r.Post("/addresses/{addressID}", a.AddressUpdateHandler)
		r.Post("/addresses/{addressID}/delete", a.AddressDeleteHandler)
		r.Post("/addresses/{addressID}/default", a.AddressDefaultHandler)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(a.requireAdmin)
		r.Get("/", a.AdminProductsHandler)
		r.Get("/products", a.AdminProductsHandler)
		r.Get("/products/new", a.AdminProductNewHandler)
		r.Post("/products", a.AdminProductCreateHandler)
		r.Get("/products/{productID}/edit", a.AdminProductEditHandler)
		r.Post("/products/{productID}", a.AdminProductUpdateHandler)
		r.Post("/products/{productID}/delete", a.AdminProductDeleteHandler)
		r.Get("/collections", a.AdminCollectionsHandler)
		r.Post("/collections", a.AdminCollectionCreateHandler)
		r.Post("/collections/{collectionID}", a.AdminCollectionUpdateHandler)
		r.Post("/collections/{collectionID}/delete", a.AdminCollectionDeleteHandler)
		r.Get("/content", a.AdminContentHandler)
		r.Post("/content", a.AdminContentUpdateHandler)
		r.Post("/upload", a.AdminUploadHandler)
	})

	r.NotFound(a.NotFoundHandler)
	return r
}

// requireAuth hydrates the visitor's session once per visit and turns
// unauthenticated requests into a login redirect.
func (a *app) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v := mw.VisitFrom(r)
		if v == nil || v.Session == nil {
			redirectToLogin(w, r)
			return
		}
		v.Session.Bootstrap(r.Context())
		if !v.Session.IsAuthenticated() {
			redirectToLogin(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *app) requireAdmin(next http.Handler) http.Handler {
	return a.requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v := mw.VisitFrom(r)
		user := v.Session.CurrentUser()
		if user == nil || !user.IsAdmin() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := "/login?next=" + r.URL.Path
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (a *app) parseTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"now":   time.Now,
		"price": format.Price,
		"date":  format.Date,
		"add":   func(a, b int) int { return a + b },
		"sub":   func(a, b int) int { return a - b },
	}
	var files []string
	if err := filepath.WalkDir(a.templatesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found under %s", a.templatesDir)
	}
	return template.New("_root").Funcs(funcMap).ParseFiles(files...)
}

func (a *app) template(w http.ResponseWriter) *template.Template {
	if a.devMode {
		tc, err := a.parseTemplates()
		if err != nil {
			http.Error(w, fmt.Sprintf("template parse error: %v", err), http.StatusInternalServerError)
			return nil
		}
		return tc
	}
	if a.tmpl == nil {
		http.Error(w, "templates not initialized", http.StatusInternalServerError)
		return nil
	}
	return a.tmpl
}

// renderPage executes the base layout with the given page view model.
func (a *app) renderPage(w http.ResponseWriter, r *http.Request, data PageData) {
	t := a.template(w)
	if t == nil {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		a.logger.Error("render page", zap.String("page", data.Page), zap.Error(err))
	}
}

// renderFrag executes a named fragment template, used for HTMX swaps.
func (a *app) renderFrag(w http.ResponseWriter, r *http.Request, name string, data any) {
	t := a.template(w)
	if t == nil {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, name, data); err != nil {
		a.logger.Error("render fragment", zap.String("fragment", name), zap.Error(err))
	}
}

// hxRedirect issues an HTMX client redirect for fragment requests and a
// standard 303 otherwise.
func hxRedirect(w http.ResponseWriter, r *http.Request, target string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
