package main

import (
	"khojstudio.pk/khoj-web/internal/cart"
	"khojstudio.pk/khoj-web/internal/checkout"
	"khojstudio.pk/khoj-web/internal/format"
)

// CartLineView is one rendered bag line.
type CartLineView struct {
	ProductID string
	Name      string
	Size      string
	Quantity  int
	UnitPrice string
	LineTotal string
	Image     string
}

// CartDrawerView backs the slide-over drawer fragment.
type CartDrawerView struct {
	Open     bool
	Lines    []CartLineView
	Count    int
	Subtotal string
	Empty    bool
}

// CartPageView backs the full cart page with shipping context.
type CartPageView struct {
	Lines    []CartLineView
	Count    int
	Empty    bool
	Subtotal string

	ShippingFee  string
	FreeShipping bool
	// Amount still needed to reach free shipping, empty once reached.
	FreeShippingGap string
	Total           string
}

func cartLines(bag *cart.Cart) []CartLineView {
	items := bag.Items()
	lines := make([]CartLineView, 0, len(items))
	for _, it := range items {
		lines = append(lines, CartLineView{
			ProductID: it.Product.ID,
			Name:      it.Product.Name,
			Size:      it.Size,
			Quantity:  it.Quantity,
			UnitPrice: format.Price(it.Product.UnitPrice),
			LineTotal: format.Price(it.Product.UnitPrice * int64(it.Quantity)),
			Image:     it.Product.ImageURL,
		})
	}
	return lines
}

func buildCartDrawerView(bag *cart.Cart) CartDrawerView {
	if bag == nil {
		return CartDrawerView{Empty: true}
	}
	return CartDrawerView{
		Open:     bag.DrawerOpen(),
		Lines:    cartLines(bag),
		Count:    bag.TotalItems(),
		Subtotal: format.Price(bag.Subtotal()),
		Empty:    bag.IsEmpty(),
	}
}

func buildCartPageView(bag *cart.Cart, rule checkout.Rule) CartPageView {
	view := CartPageView{
		Lines:    cartLines(bag),
		Count:    bag.TotalItems(),
		Empty:    bag.IsEmpty(),
		Subtotal: format.Price(bag.Subtotal()),
	}
	totals := rule.Compute(bag.Subtotal())
	view.Total = format.Price(totals.Total)
	if totals.ShippingFee == 0 {
		view.FreeShipping = true
		view.ShippingFee = "Free"
	} else {
		view.ShippingFee = format.Price(totals.ShippingFee)
		view.FreeShippingGap = format.Price(rule.FreeShippingThreshold - bag.Subtotal())
	}
	return view
}

func (a *app) shippingRule() checkout.Rule {
	return checkout.Rule{
		FreeShippingThreshold: a.cfg.Shop.FreeShippingThreshold,
		FlatFee:               a.cfg.Shop.FlatShippingFee,
	}
}
