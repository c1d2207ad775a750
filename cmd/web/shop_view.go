package main

import (
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"khojstudio.pk/khoj-web/internal/api"
	"khojstudio.pk/khoj-web/internal/format"
)

const shopPageSize = 12

// ShopView backs the catalog page and its grid fragment.
type ShopView struct {
	Products   []ProductCard
	Categories []api.CategoryInfo
	Category   string
	Collection string
	Search     string
	Sort       string
	Query      string

	Page       int
	TotalPages int
	Total      int
	PrevQuery  string
	NextQuery  string
}

// ProductView backs the detail page.
type ProductView struct {
	ID             string
	Name           string
	Price          string
	RawPrice       int64
	CompareAtPrice string
	Category       string
	Description    string
	Fabric         string
	Details        []string
	Image          string
	Images         []api.ProductImage
	Sizes          []SizeOption
	SizeGuide      []api.SizeGuideEntry
	SoldOut        bool
}

// SizeOption marks per-size availability on the detail page.
type SizeOption struct {
	Size      string
	Available bool
}

// CollectionsView backs the collections index.
type CollectionsView struct {
	Collections []api.Collection
}

func (a *app) buildShopView(r *http.Request) ShopView {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	params := api.ProductListParams{
		Page:       page,
		Limit:      shopPageSize,
		Category:   q.Get("category"),
		Collection: q.Get("collection"),
		Sort:       q.Get("sort"),
		Search:     q.Get("q"),
	}

	view := ShopView{
		Category:   params.Category,
		Collection: params.Collection,
		Search:     params.Search,
		Sort:       params.Sort,
		Page:       page,
	}

	client := a.visitClient(r)
	res, err := client.ListProducts(r.Context(), params)
	if err != nil {
		a.logger.Warn("list products", zap.Error(err))
	} else {
		for _, p := range res.Items {
			view.Products = append(view.Products, productCard(p))
		}
		view.Total = res.Total
		view.TotalPages = res.TotalPages
	}

	if cats, err := client.Categories(r.Context()); err == nil {
		view.Categories = cats
	}

	view.Query = shopQuery(params, page)
	if page > 1 {
		view.PrevQuery = shopQuery(params, page-1)
	}
	if page < view.TotalPages {
		view.NextQuery = shopQuery(params, page+1)
	}
	return view
}

func shopQuery(params api.ProductListParams, page int) string {
	q := url.Values{}
	if params.Category != "" {
		q.Set("category", params.Category)
	}
	if params.Collection != "" {
		q.Set("collection", params.Collection)
	}
	if params.Sort != "" {
		q.Set("sort", params.Sort)
	}
	if params.Search != "" {
		q.Set("q", params.Search)
	}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	return q.Encode()
}

func (a *app) buildProductView(r *http.Request, productID string) (ProductView, error) {
	client := a.visitClient(r)
	p, err := client.GetProduct(r.Context(), productID)
	if err != nil {
		return ProductView{}, err
	}

	view := ProductView{
		ID:          p.ID,
		Name:        p.Name,
		Price:       format.Price(p.Price),
		RawPrice:    p.Price,
		Category:    p.Category,
		Description: p.Description,
		Fabric:      p.Fabric,
		Details:     p.Details,
		Image:       p.MainImage(),
		Images:      p.Images,
		SizeGuide:   p.SizeGuide,
		SoldOut:     !p.InStock,
	}
	if p.CompareAtPrice > p.Price {
		view.CompareAtPrice = format.Price(p.CompareAtPrice)
	}
	for _, size := range p.Sizes {
		avail := p.InStock
		if stock, ok := p.StockBySize[size]; ok {
			avail = stock > 0
		}
		view.Sizes = append(view.Sizes, SizeOption{Size: size, Available: avail})
	}
	return view, nil
}

func (a *app) buildCollectionsView(r *http.Request) CollectionsView {
	client := a.visitClient(r)
	cols, err := client.ListCollections(r.Context())
	if err != nil {
		a.logger.Warn("list collections", zap.Error(err))
	}
	return CollectionsView{Collections: cols}
}
