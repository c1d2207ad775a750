package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"khojstudio.pk/khoj-web/internal/api"
	"khojstudio.pk/khoj-web/internal/format"
)

var defaultSizes = []string{"XS", "S", "M", "L", "XL"}

// AdminProductsView backs the management product table.
type AdminProductsView struct {
	Products []AdminProductRow
	Total    int
}

// AdminProductRow is one management table row.
type AdminProductRow struct {
	ID       string
	Name     string
	Category string
	Price    string
	InStock  bool
	Image    string
}

// AdminProductFormView primes the product editor.
type AdminProductFormView struct {
	ID             string
	Name           string
	Slug           string
	Price          int64
	CompareAtPrice int64
	Category       string
	Description    string
	Fabric         string
	InStock        bool
	Sizes          []string
	SizesCSV       string
	DetailsText    string
	TagsCSV        string
	Images         []api.ProductImage
	StockBySize    map[string]int
}

// AdminCollectionsView backs the collection manager.
type AdminCollectionsView struct {
	Collections []api.Collection
}

// AdminContentView backs the homepage content editor.
type AdminContentView struct {
	Content api.HomepageContent
}

func buildAdminProductsView(res api.Paginated[api.Product]) AdminProductsView {
	view := AdminProductsView{Total: res.Total}
	for _, p := range res.Items {
		view.Products = append(view.Products, AdminProductRow{
			ID:       p.ID,
			Name:     p.Name,
			Category: p.Category,
			Price:    format.Price(p.Price),
			InStock:  p.InStock,
			Image:    p.MainImage(),
		})
	}
	return view
}

func buildAdminProductFormView(p api.Product) AdminProductFormView {
	return AdminProductFormView{
		ID:             p.ID,
		Name:           p.Name,
		Slug:           p.Slug,
		Price:          p.Price,
		CompareAtPrice: p.CompareAtPrice,
		Category:       p.Category,
		Description:    p.Description,
		Fabric:         p.Fabric,
		InStock:        p.InStock,
		Sizes:          p.Sizes,
		SizesCSV:       strings.Join(p.Sizes, ", "),
		DetailsText:    strings.Join(p.Details, "\n"),
		TagsCSV:        strings.Join(p.Tags, ", "),
		Images:         p.Images,
		StockBySize:    p.StockBySize,
	}
}

// productInputFromForm maps the editor form onto the create/update
// payload. Price fields are whole rupees.
func productInputFromForm(r *http.Request) (api.ProductInput, error) {
	if err := r.ParseForm(); err != nil {
		return api.ProductInput{}, fmt.Errorf("invalid form")
	}
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		return api.ProductInput{}, fmt.Errorf("name is required")
	}
	price, err := strconv.ParseInt(r.FormValue("price"), 10, 64)
	if err != nil || price < 0 {
		return api.ProductInput{}, fmt.Errorf("price must be a non-negative amount")
	}
	compareAt, _ := strconv.ParseInt(r.FormValue("compareAtPrice"), 10, 64)

	in := api.ProductInput{
		Name:           name,
		Slug:           strings.TrimSpace(r.FormValue("slug")),
		Price:          price,
		CompareAtPrice: compareAt,
		Category:       strings.TrimSpace(r.FormValue("category")),
		Description:    r.FormValue("description"),
		Fabric:         strings.TrimSpace(r.FormValue("fabric")),
		InStock:        r.FormValue("inStock") == "on",
		Sizes:          splitCSV(r.FormValue("sizes")),
		Details:        splitLines(r.FormValue("details")),
		Tags:           splitCSV(r.FormValue("tags")),
	}
	for _, u := range r.Form["images"] {
		if u = strings.TrimSpace(u); u != "" {
			in.Images = append(in.Images, api.ProductImage{URL: u})
		}
	}
	for _, size := range in.Sizes {
		raw := r.FormValue("stock_" + size)
		if raw == "" {
			continue
		}
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			if in.StockBySize == nil {
				in.StockBySize = map[string]int{}
			}
			in.StockBySize[size] = n
		}
	}
	return in, nil
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func splitLines(raw string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
