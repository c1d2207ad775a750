package main

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"khojstudio.pk/khoj-web/internal/api"
	mw "khojstudio.pk/khoj-web/internal/middleware"
)

// AccountHandler renders the profile overview with the address book.
func (a *app) AccountHandler(w http.ResponseWriter, r *http.Request) {
	view, err := a.buildAccountView(r)
	if err != nil {
		a.accountError(w, r, err)
		return
	}
	vm := a.pageData(r, "account", "My Account")
	vm.Data = view
	a.renderPage(w, r, vm)
}

// AccountProfileHandler applies name and phone edits.
func (a *app) AccountProfileHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	client, err := a.authedClient(r)
	if err != nil {
		redirectToLogin(w, r)
		return
	}
	name := r.FormValue("name")
	phone := r.FormValue("phone")
	req := api.UpdateProfileRequest{}
	if name != "" {
		req.Name = &name
	}
	if phone != "" {
		req.Phone = &phone
	}
	if _, err := client.UpdateProfile(r.Context(), req); err != nil {
		a.accountError(w, r, err)
		return
	}
	hxRedirect(w, r, "/account")
}

// AccountOrdersHandler lists the visitor's orders.
func (a *app) AccountOrdersHandler(w http.ResponseWriter, r *http.Request) {
	client, err := a.authedClient(r)
	if err != nil {
		redirectToLogin(w, r)
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	res, err := client.ListOrders(r.Context(), page, 10)
	if err != nil {
		a.accountError(w, r, err)
		return
	}
	vm := a.pageData(r, "account_orders", "Order History")
	vm.Data = buildOrdersView(res)
	a.renderPage(w, r, vm)
}

// AccountOrderHandler shows one order with tracking.
func (a *app) AccountOrderHandler(w http.ResponseWriter, r *http.Request) {
	client, err := a.authedClient(r)
	if err != nil {
		redirectToLogin(w, r)
		return
	}
	orderID := chi.URLParam(r, "orderID")
	order, err := client.GetOrder(r.Context(), orderID)
	if err != nil {
		if api.IsNotFound(err) {
			a.NotFoundHandler(w, r)
			return
		}
		a.accountError(w, r, err)
		return
	}
	vm := a.pageData(r, "account_order", "Order "+order.OrderNumber)
	vm.Data = buildOrderView(order)
	a.renderPage(w, r, vm)
}

// AddressCreateHandler adds an address-book entry.
func (a *app) AddressCreateHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	client, err := a.authedClient(r)
	if err != nil {
		redirectToLogin(w, r)
		return
	}
	req := api.CreateAddressRequest{
		Label:        r.FormValue("label"),
		FullName:     r.FormValue("fullName"),
		Phone:        r.FormValue("phone"),
		AddressLine1: r.FormValue("addressLine1"),
		AddressLine2: r.FormValue("addressLine2"),
		City:         r.FormValue("city"),
		Province:     r.FormValue("province"),
		PostalCode:   r.FormValue("postalCode"),
		IsDefault:    r.FormValue("isDefault") == "on",
	}
	if _, err := client.CreateAddress(r.Context(), req); err != nil {
		a.accountError(w, r, err)
		return
	}
	hxRedirect(w, r, "/account")
}

// AddressUpdateHandler applies partial edits to one entry.
func (a *app) AddressUpdateHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	client, err := a.authedClient(r)
	if err != nil {
		redirectToLogin(w, r)
		return
	}
	req := api.UpdateAddressRequest{}
	set := func(dst **string, field string) {
		if r.Form.Has(field) {
			val := r.FormValue(field)
			*dst = &val
		}
	}
	set(&req.Label, "label")
	set(&req.FullName, "fullName")
	set(&req.Phone, "phone")
	set(&req.AddressLine1, "addressLine1")
	set(&req.AddressLine2, "addressLine2")
	set(&req.City, "city")
	set(&req.Province, "province")
	set(&req.PostalCode, "postalCode")

	addressID := chi.URLParam(r, "addressID")
	if _, err := client.UpdateAddress(r.Context(), addressID, req); err != nil {
		a.accountError(w, r, err)
		return
	}
	hxRedirect(w, r, "/account")
}

// AddressDeleteHandler removes one entry.
func (a *app) AddressDeleteHandler(w http.ResponseWriter, r *http.Request) {
	client, err := a.authedClient(r)
	if err != nil {
		redirectToLogin(w, r)
		return
	}
	if err := client.DeleteAddress(r.Context(), chi.URLParam(r, "addressID")); err != nil {
		a.accountError(w, r, err)
		return
	}
	hxRedirect(w, r, "/account")
}

// AddressDefaultHandler marks one entry as the default.
func (a *app) AddressDefaultHandler(w http.ResponseWriter, r *http.Request) {
	client, err := a.authedClient(r)
	if err != nil {
		redirectToLogin(w, r)
		return
	}
	if err := client.SetDefaultAddress(r.Context(), chi.URLParam(r, "addressID")); err != nil {
		a.accountError(w, r, err)
		return
	}
	hxRedirect(w, r, "/account")
}

func (a *app) authedClient(r *http.Request) (*api.Client, error) {
	v := mw.VisitFrom(r)
	return v.Session.Authed()
}

// accountError maps an expired session to a login redirect and anything
// else to a rendered error.
func (a *app) accountError(w http.ResponseWriter, r *http.Request, err error) {
	if api.IsSessionExpired(err) || api.IsUnauthorized(err) {
		if v := mw.VisitFrom(r); v != nil {
			v.Session.Expire()
		}
		redirectToLogin(w, r)
		return
	}
	a.logger.Error("account request", zap.Error(err))
	http.Error(w, messageOf(err), http.StatusBadGateway)
}
