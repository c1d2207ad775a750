package main

import (
	"net/http"
	"time"

	"khojstudio.pk/khoj-web/internal/api"
	"khojstudio.pk/khoj-web/internal/format"
)

// AccountView backs the profile overview page.
type AccountView struct {
	Name      string
	Email     string
	Phone     string
	Addresses []api.Address
	Provinces []string
}

// OrdersView backs the order history page.
type OrdersView struct {
	Orders     []OrderSummaryView
	Page       int
	TotalPages int
}

// OrderSummaryView is one row in the history table.
type OrderSummaryView struct {
	ID          string
	OrderNumber string
	Placed      string
	Status      string
	Total       string
	Items       int
}

// OrderView backs the order detail page.
type OrderView struct {
	OrderNumber       string
	Placed            string
	Status            string
	PaymentStatus     string
	PaymentMethod     string
	EstimatedDelivery string

	Items    []OrderItemView
	Subtotal string
	Shipping string
	Discount string
	Total    string

	Address  api.Address
	Tracking []api.OrderTracking
}

// OrderItemView is one fulfilled line.
type OrderItemView struct {
	Name     string
	Size     string
	Quantity int
	Price    string
	Image    string
}

func (a *app) buildAccountView(r *http.Request) (AccountView, error) {
	client, err := a.authedClient(r)
	if err != nil {
		return AccountView{}, err
	}
	profile, err := client.Profile(r.Context())
	if err != nil {
		return AccountView{}, err
	}
	return AccountView{
		Name:      profile.Name,
		Email:     profile.Email,
		Phone:     profile.Phone,
		Addresses: profile.Addresses,
		Provinces: a.cfg.Shop.Provinces,
	}, nil
}

func buildOrdersView(res api.Paginated[api.Order]) OrdersView {
	view := OrdersView{Page: res.Page, TotalPages: res.TotalPages}
	for _, o := range res.Items {
		count := 0
		for _, it := range o.Items {
			count += it.Quantity
		}
		view.Orders = append(view.Orders, OrderSummaryView{
			ID:          o.ID,
			OrderNumber: o.OrderNumber,
			Placed:      orderDate(o.CreatedAt),
			Status:      o.Status,
			Total:       format.Price(o.Total),
			Items:       count,
		})
	}
	return view
}

func buildOrderView(o api.Order) OrderView {
	view := OrderView{
		OrderNumber:       o.OrderNumber,
		Placed:            orderDate(o.CreatedAt),
		Status:            o.Status,
		PaymentStatus:     o.PaymentStatus,
		PaymentMethod:     o.PaymentMethod,
		EstimatedDelivery: o.EstimatedDelivery,
		Subtotal:          format.Price(o.Subtotal),
		Total:             format.Price(o.Total),
		Address:           o.ShippingAddress,
		Tracking:          o.Tracking,
	}
	if o.ShippingFee == 0 {
		view.Shipping = "Free"
	} else {
		view.Shipping = format.Price(o.ShippingFee)
	}
	if o.Discount > 0 {
		view.Discount = format.Price(o.Discount)
	}
	for _, it := range o.Items {
		view.Items = append(view.Items, OrderItemView{
			Name:     it.ProductName,
			Size:     it.Size,
			Quantity: it.Quantity,
			Price:    format.Price(it.TotalPrice),
			Image:    it.ProductImage,
		})
	}
	return view
}

func orderDate(raw string) string {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return format.Date(t)
	}
	return raw
}
