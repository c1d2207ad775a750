package main

import (
	"net/http"

	"go.uber.org/zap"

	"khojstudio.pk/khoj-web/internal/api"
	"khojstudio.pk/khoj-web/internal/format"
)

// HomeView is the landing page payload: managed copy plus the featured
// product rail.
type HomeView struct {
	Content  api.HomepageContent
	Featured []ProductCard
}

// ProductCard is the grid and rail representation of a product.
type ProductCard struct {
	ID       string
	Name     string
	Category string
	Price    string
	Image    string
	SoldOut  bool
}

// NewsletterView backs the signup fragment.
type NewsletterView struct {
	Email      string
	Subscribed bool
	Error      string
}

func (a *app) buildHomeView(r *http.Request) HomeView {
	view := HomeView{Content: a.content.Homepage(r.Context())}

	client := a.visitClient(r)
	featured, err := client.FeaturedProducts(r.Context())
	if err != nil {
		a.logger.Warn("featured products", zap.Error(err))
		return view
	}
	for _, p := range featured {
		view.Featured = append(view.Featured, productCard(p))
	}
	return view
}

func productCard(p api.Product) ProductCard {
	return ProductCard{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Price:    format.Price(p.Price),
		Image:    p.MainImage(),
		SoldOut:  !p.InStock,
	}
}
