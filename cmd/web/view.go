package main

import (
	"net/http"

	"khojstudio.pk/khoj-web/internal/api"
	mw "khojstudio.pk/khoj-web/internal/middleware"
	"khojstudio.pk/khoj-web/internal/nav"
	"khojstudio.pk/khoj-web/internal/seo"
)

const brandName = "KHOJ"

// PageData is the view model every full page hands to the base layout.
type PageData struct {
	Page  string
	Title string
	Path  string
	SEO   seo.Meta

	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb
	CSRFToken   string

	User       *api.User
	CartCount  int
	DrawerOpen bool
	Drawer     CartDrawerView

	// Per-page payload.
	Data any
}

// pageData fills the layout fields shared by every page.
func (a *app) pageData(r *http.Request, page, title string) PageData {
	vm := PageData{
		Page:        page,
		Title:       title,
		Path:        r.URL.Path,
		Nav:         nav.Build(nav.Main, r.URL.Path),
		Breadcrumbs: nav.Breadcrumbs(r.URL.Path),
	}
	vm.SEO.Title = title + " | " + brandName
	vm.SEO.OG.Title = vm.SEO.Title
	vm.SEO.OG.Type = "website"

	if v := mw.VisitFrom(r); v != nil {
		vm.CSRFToken = v.CSRFToken
		if v.Session != nil {
			v.Session.Bootstrap(r.Context())
			vm.User = v.Session.CurrentUser()
		}
		if v.Cart != nil {
			vm.CartCount = v.Cart.TotalItems()
			vm.DrawerOpen = v.Cart.DrawerOpen()
			vm.Drawer = buildCartDrawerView(v.Cart)
		}
	}
	return vm
}

// visitClient returns the visitor's API client so authenticated calls
// carry their token and refresh cookie.
func (a *app) visitClient(r *http.Request) *api.Client {
	if v := mw.VisitFrom(r); v != nil && v.Session != nil {
		return v.Session.Client()
	}
	// Requests outside the visit middleware fall back to an anonymous
	// client; public endpoints accept it.
	client, _ := api.NewClient(a.cfg.API.BaseURL)
	return client
}

func messageOf(err error) string {
	return api.Message(err)
}

// adminPageData swaps the storefront navigation for the console sidebar.
func (a *app) adminPageData(r *http.Request, page, title string) PageData {
	vm := a.pageData(r, page, title)
	vm.Nav = nav.Build(nav.Admin, r.URL.Path)
	vm.Breadcrumbs = nil
	return vm
}
