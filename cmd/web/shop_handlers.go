package main

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"khojstudio.pk/khoj-web/internal/api"
	"khojstudio.pk/khoj-web/internal/cms"
	"khojstudio.pk/khoj-web/internal/seo"
)

// ShopHandler renders the product catalog with filters applied.
func (a *app) ShopHandler(w http.ResponseWriter, r *http.Request) {
	view := a.buildShopView(r)

	vm := a.pageData(r, "shop", "Shop")
	vm.SEO.Description = "Browse the full KHOJ collection of minimalist apparel."
	vm.Data = view
	a.renderPage(w, r, vm)
}

// ShopGridFrag re-renders only the product grid for filter changes.
func (a *app) ShopGridFrag(w http.ResponseWriter, r *http.Request) {
	view := a.buildShopView(r)
	push := "/shop"
	if view.Query != "" {
		push += "?" + view.Query
	}
	w.Header().Set("HX-Push-Url", push)
	a.renderFrag(w, r, "frag_shop_grid", view)
}

// ProductHandler renders a product detail page.
func (a *app) ProductHandler(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	view, err := a.buildProductView(r, productID)
	if err != nil {
		if api.IsNotFound(err) {
			a.NotFoundHandler(w, r)
			return
		}
		a.logger.Error("product detail", zap.String("product", productID), zap.Error(err))
		http.Error(w, "something went wrong", http.StatusBadGateway)
		return
	}

	vm := a.pageData(r, "product", view.Name)
	vm.SEO.Description = view.Description
	vm.SEO.OG.Image = view.Image
	vm.SEO.OG.Type = "product"
	vm.SEO.JSONLD = []template.JS{
		seo.JSON(seo.Product(view.Name, view.Description, "/shop/"+view.ID, view.Image, view.RawPrice, !view.SoldOut)),
	}
	vm.Data = view
	a.renderPage(w, r, vm)
}

// CollectionsHandler renders the curated collections index.
func (a *app) CollectionsHandler(w http.ResponseWriter, r *http.Request) {
	view := a.buildCollectionsView(r)
	vm := a.pageData(r, "collections", "Collections")
	vm.SEO.Description = "Seasonal edits and curated drops from KHOJ."
	vm.Data = view
	a.renderPage(w, r, vm)
}

// StaticPageHandler serves markdown-backed pages such as shipping and
// privacy.
func (a *app) StaticPageHandler(w http.ResponseWriter, r *http.Request) {
	a.renderStaticPage(w, r, chi.URLParam(r, "slug"))
}

// AboutHandler is a fixed route onto the about page.
func (a *app) AboutHandler(w http.ResponseWriter, r *http.Request) {
	a.renderStaticPage(w, r, "about")
}

func (a *app) renderStaticPage(w http.ResponseWriter, r *http.Request, slug string) {
	page, err := a.content.Page(slug)
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			a.NotFoundHandler(w, r)
			return
		}
		a.logger.Error("static page", zap.String("slug", slug), zap.Error(err))
		http.Error(w, "something went wrong", http.StatusInternalServerError)
		return
	}
	vm := a.pageData(r, "static_page", page.Title)
	vm.SEO.Description = page.Summary
	vm.Data = page
	a.renderPage(w, r, vm)
}
