package main

import (
	"net/http"
	"strings"

	"khojstudio.pk/khoj-web/internal/api"
	mw "khojstudio.pk/khoj-web/internal/middleware"
)

// AuthFormView backs the login and register pages.
type AuthFormView struct {
	Email string
	Name  string
	Phone string
	Next  string
	Error string
}

// LoginPageHandler renders the login form.
func (a *app) LoginPageHandler(w http.ResponseWriter, r *http.Request) {
	v := mw.VisitFrom(r)
	v.Session.Bootstrap(r.Context())
	if v.Session.IsAuthenticated() {
		http.Redirect(w, r, "/account", http.StatusSeeOther)
		return
	}
	vm := a.pageData(r, "login", "Sign In")
	vm.Data = AuthFormView{Next: safeNext(r.URL.Query().Get("next"))}
	a.renderPage(w, r, vm)
}

// LoginSubmitHandler authenticates and redirects admins to the console.
func (a *app) LoginSubmitHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	v := mw.VisitFrom(r)
	outcome := v.Session.Login(r.Context(), r.FormValue("email"), r.FormValue("password"))
	if !outcome.Success {
		view := AuthFormView{
			Email: r.FormValue("email"),
			Next:  safeNext(r.FormValue("next")),
			Error: outcome.Message,
		}
		a.renderAuthResult(w, r, "login", "Sign In", view)
		return
	}
	target := outcome.RedirectTo
	if next := safeNext(r.FormValue("next")); next != "" {
		target = next
	}
	hxRedirect(w, r, target)
}

// RegisterPageHandler renders the account creation form.
func (a *app) RegisterPageHandler(w http.ResponseWriter, r *http.Request) {
	vm := a.pageData(r, "register", "Create Account")
	vm.Data = AuthFormView{}
	a.renderPage(w, r, vm)
}

// RegisterSubmitHandler creates the account and signs the visitor in.
func (a *app) RegisterSubmitHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	v := mw.VisitFrom(r)
	req := api.RegisterRequest{
		Name:     r.FormValue("name"),
		Email:    r.FormValue("email"),
		Phone:    r.FormValue("phone"),
		Password: r.FormValue("password"),
	}
	outcome := v.Session.Register(r.Context(), req)
	if !outcome.Success {
		view := AuthFormView{
			Name:  req.Name,
			Email: req.Email,
			Phone: req.Phone,
			Error: outcome.Message,
		}
		a.renderAuthResult(w, r, "register", "Create Account", view)
		return
	}
	hxRedirect(w, r, outcome.RedirectTo)
}

// LogoutHandler revokes the backend session and discards all visitor
// state, cart included.
func (a *app) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	v := mw.VisitFrom(r)
	v.Session.Logout(r.Context())
	a.registry.Reset(w, r)
	hxRedirect(w, r, "/")
}

// renderAuthResult re-renders the form with errors: as a fragment for
// HTMX submissions, as a full page otherwise.
func (a *app) renderAuthResult(w http.ResponseWriter, r *http.Request, page, title string, view AuthFormView) {
	if mw.IsHTMX(r.Context()) {
		a.renderFrag(w, r, "frag_auth_form_"+page, view)
		return
	}
	vm := a.pageData(r, page, title)
	vm.Data = view
	a.renderPage(w, r, vm)
}

// safeNext only allows same-site relative redirect targets.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return ""
	}
	return next
}
