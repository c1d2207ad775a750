package main

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"khojstudio.pk/khoj-web/internal/api"
	"khojstudio.pk/khoj-web/internal/checkout"
	mw "khojstudio.pk/khoj-web/internal/middleware"
)

// CheckoutHandler renders whichever wizard step the visitor is on. A
// visitor returning with a fresh bag after a confirmed order starts a
// new wizard session.
func (a *app) CheckoutHandler(w http.ResponseWriter, r *http.Request) {
	v := mw.VisitFrom(r)
	if v.Checkout.Step() == checkout.StepConfirmation && !v.Cart.IsEmpty() {
		v.Checkout.Reset()
	}
	if v.Cart.IsEmpty() && v.Checkout.Step() != checkout.StepConfirmation {
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}

	view := a.buildCheckoutView(r, v)
	vm := a.pageData(r, "checkout", "Checkout")
	vm.Data = view
	a.renderPage(w, r, vm)
}

// CheckoutShippingSubmitHandler validates the address form and advances
// to payment, or re-renders the form with field errors.
func (a *app) CheckoutShippingSubmitHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	v := mw.VisitFrom(r)
	form := checkout.ShippingForm{
		FullName:     r.FormValue("fullName"),
		Email:        r.FormValue("email"),
		Phone:        r.FormValue("phone"),
		AddressLine1: r.FormValue("addressLine1"),
		AddressLine2: r.FormValue("addressLine2"),
		City:         r.FormValue("city"),
		Province:     r.FormValue("province"),
		PostalCode:   r.FormValue("postalCode"),
	}
	v.Checkout.SubmitShipping(form)
	a.renderStep(w, r, v)
}

// CheckoutAddressSelectHandler fills the form from a saved address.
func (a *app) CheckoutAddressSelectHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	v := mw.VisitFrom(r)
	addressID := r.FormValue("address_id")

	addr, err := a.savedAddress(r, v, addressID)
	if err != nil {
		a.logger.Warn("saved address lookup", zap.String("address", addressID), zap.Error(err))
		a.renderStep(w, r, v)
		return
	}
	email := v.Checkout.Form().Email
	if user := v.Session.CurrentUser(); user != nil && email == "" {
		email = user.Email
	}
	v.Checkout.SelectSavedAddress(addr, email)
	a.renderStep(w, r, v)
}

// CheckoutAddressNewHandler switches back to a blank manual form.
func (a *app) CheckoutAddressNewHandler(w http.ResponseWriter, r *http.Request) {
	v := mw.VisitFrom(r)
	v.Checkout.UseNewAddress(v.Checkout.Form().Email)
	a.renderStep(w, r, v)
}

// CheckoutPaymentSubmitHandler records the method and moves to review.
func (a *app) CheckoutPaymentSubmitHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	v := mw.VisitFrom(r)
	if method := r.FormValue("payment_method"); method != "" {
		v.Checkout.SelectPaymentMethod(method)
	}
	v.Checkout.ContinueToReview()
	a.renderStep(w, r, v)
}

// CheckoutBackHandler steps the wizard backwards.
func (a *app) CheckoutBackHandler(w http.ResponseWriter, r *http.Request) {
	v := mw.VisitFrom(r)
	v.Checkout.Back()
	a.renderStep(w, r, v)
}

// CheckoutPlaceOrderHandler submits the order atomically. On success the
// bag is cleared and the confirmation step renders; on failure the
// review step re-renders with the backend's message and the bag intact.
func (a *app) CheckoutPlaceOrderHandler(w http.ResponseWriter, r *http.Request) {
	v := mw.VisitFrom(r)
	_, err := v.Checkout.PlaceOrder(r.Context(), v.Session.Client(), v.Cart)
	if err != nil {
		if errors.Is(err, checkout.ErrEmptyBag) {
			hxRedirect(w, r, "/cart")
			return
		}
		a.logger.Warn("place order", zap.Error(err))
		view := a.buildCheckoutView(r, v)
		view.SubmitError = messageOf(err)
		a.renderCheckoutResult(w, r, view)
		return
	}
	a.renderStep(w, r, v)
}

// CheckoutConfirmationHandler shows the order number after success.
func (a *app) CheckoutConfirmationHandler(w http.ResponseWriter, r *http.Request) {
	v := mw.VisitFrom(r)
	if v.Checkout.Step() != checkout.StepConfirmation {
		http.Redirect(w, r, "/checkout", http.StatusSeeOther)
		return
	}
	view := a.buildCheckoutView(r, v)
	vm := a.pageData(r, "checkout", "Order Confirmed")
	vm.Data = view
	a.renderPage(w, r, vm)
}

// renderStep swaps the wizard fragment for HTMX requests and redirects
// full-page submissions back onto /checkout.
func (a *app) renderStep(w http.ResponseWriter, r *http.Request, v *mw.Visit) {
	if mw.IsHTMX(r.Context()) {
		a.renderFrag(w, r, "frag_checkout_step", a.buildCheckoutView(r, v))
		return
	}
	http.Redirect(w, r, "/checkout", http.StatusSeeOther)
}

func (a *app) renderCheckoutResult(w http.ResponseWriter, r *http.Request, view CheckoutView) {
	if mw.IsHTMX(r.Context()) {
		a.renderFrag(w, r, "frag_checkout_step", view)
		return
	}
	vm := a.pageData(r, "checkout", "Checkout")
	vm.Data = view
	a.renderPage(w, r, vm)
}

func (a *app) savedAddress(r *http.Request, v *mw.Visit, addressID string) (api.Address, error) {
	client, err := v.Session.Authed()
	if err != nil {
		return api.Address{}, err
	}
	addrs, err := client.ListAddresses(r.Context())
	if err != nil {
		return api.Address{}, err
	}
	for _, addr := range addrs {
		if addr.ID == addressID {
			return addr, nil
		}
	}
	return api.Address{}, errAddressNotFound
}

var errAddressNotFound = errors.New("address not in the visitor's address book")
