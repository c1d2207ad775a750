package main

import (
	"net/http"

	"khojstudio.pk/khoj-web/internal/checkout"
	"khojstudio.pk/khoj-web/internal/config"
	"khojstudio.pk/khoj-web/internal/format"
	mw "khojstudio.pk/khoj-web/internal/middleware"
)

// CheckoutView backs the wizard page and its step fragment.
type CheckoutView struct {
	Step        checkout.Step
	Form        checkout.ShippingForm
	FieldErrors map[string]string
	SubmitError string

	Provinces      []string
	SavedAddresses []SavedAddressView
	SelectedID     string

	PaymentMethods []PaymentMethodView
	PaymentMethod  string

	Lines    []CartLineView
	Subtotal string
	Shipping string
	Total    string

	OrderNumber string
}

// SavedAddressView is one address-book entry on the shipping step.
type SavedAddressView struct {
	ID       string
	Label    string
	Summary  string
	Default  bool
	Selected bool
}

// PaymentMethodView is one selectable payment option.
type PaymentMethodView struct {
	ID          string
	Label       string
	Description string
	Selected    bool
}

func (a *app) buildCheckoutView(r *http.Request, v *mw.Visit) CheckoutView {
	wizard := v.Checkout
	totals := wizard.Totals(v.Cart)

	view := CheckoutView{
		Step:        wizard.Step(),
		Form:        wizard.Form(),
		FieldErrors: wizard.FieldErrors(),
		Provinces:   a.cfg.Shop.Provinces,
		SelectedID:  wizard.SelectedAddressID(),

		PaymentMethod: wizard.PaymentMethod(),
		Lines:         cartLines(v.Cart),
		Subtotal:      format.Price(totals.Subtotal),
		Total:         format.Price(totals.Total),
		OrderNumber:   wizard.OrderNumber(),
	}
	if totals.ShippingFee == 0 {
		view.Shipping = "Free"
	} else {
		view.Shipping = format.Price(totals.ShippingFee)
	}

	view.PaymentMethods = paymentMethodViews(a.cfg.Shop.PaymentMethods, view.PaymentMethod)

	// The address book only renders for signed-in visitors.
	if client, err := v.Session.Authed(); err == nil {
		if addrs, err := client.ListAddresses(r.Context()); err == nil {
			for _, addr := range addrs {
				view.SavedAddresses = append(view.SavedAddresses, SavedAddressView{
					ID:       addr.ID,
					Label:    addr.Label,
					Summary:  addr.FullName + ", " + addr.AddressLine1 + ", " + addr.City,
					Default:  addr.IsDefault,
					Selected: addr.ID == view.SelectedID,
				})
			}
		}
	}
	return view
}

func paymentMethodViews(methods []config.PaymentMethodOption, selected string) []PaymentMethodView {
	out := make([]PaymentMethodView, 0, len(methods))
	for _, m := range methods {
		out = append(out, PaymentMethodView{
			ID:          m.ID,
			Label:       m.Label,
			Description: m.Description,
			Selected:    m.ID == selected,
		})
	}
	return out
}
