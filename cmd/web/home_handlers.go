package main

import (
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"khojstudio.pk/khoj-web/internal/seo"
)

// HomeHandler renders the landing page.
func (a *app) HomeHandler(w http.ResponseWriter, r *http.Request) {
	view := a.buildHomeView(r)

	vm := a.pageData(r, "home", "Minimalist Apparel from Pakistan")
	vm.SEO.Description = view.Content.Hero.Description
	vm.SEO.OG.Description = vm.SEO.Description
	vm.SEO.OG.Image = view.Content.Hero.Image
	vm.SEO.JSONLD = []template.JS{
		seo.JSON(seo.Organization(brandName, "https://khojstudio.pk", "/static/img/logo.png")),
	}
	vm.Data = view
	a.renderPage(w, r, vm)
}

// NewsletterSubscribeHandler records a newsletter signup and swaps in a
// confirmation fragment.
func (a *app) NewsletterSubscribeHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	email := r.FormValue("email")
	view := NewsletterView{Email: email}

	client := a.visitClient(r)
	if err := client.SubscribeNewsletter(r.Context(), email); err != nil {
		a.logger.Warn("newsletter subscribe", zap.Error(err))
		view.Error = messageOf(err)
	} else {
		view.Subscribed = true
	}
	a.renderFrag(w, r, "frag_newsletter", view)
}

// NotFoundHandler renders the storefront 404 page.
func (a *app) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	vm := a.pageData(r, "not_found", "Page Not Found")
	t := a.template(w)
	if t == nil {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_ = t.ExecuteTemplate(w, "base", vm)
}
