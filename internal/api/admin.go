package api

import (
	"context"
	"io"
	"net/url"
)

// Admin endpoints require an admin-role bearer token; the backend enforces
// the role, this client only routes the calls.

// ProductInput is the create/update payload for the admin product editor.
type ProductInput struct {
	Name           string           `json:"name"`
	Slug           string           `json:"slug,omitempty"`
	Price          int64            `json:"price"`
	CompareAtPrice int64            `json:"compareAtPrice,omitempty"`
	Category       string           `json:"category"`
	CollectionIDs  []string         `json:"collectionIds,omitempty"`
	Description    string           `json:"description,omitempty"`
	Fabric         string           `json:"fabric,omitempty"`
	InStock        bool             `json:"inStock"`
	Images         []ProductImage   `json:"images,omitempty"`
	Details        []string         `json:"details,omitempty"`
	Sizes          []string         `json:"sizes,omitempty"`
	SizeGuide      []SizeGuideEntry `json:"sizeGuide,omitempty"`
	Tags           []string         `json:"tags,omitempty"`
	StockBySize    map[string]int   `json:"stockBySize,omitempty"`
}

// AdminListProducts pages the catalog including unpublished entries.
func (c *Client) AdminListProducts(ctx context.Context) (Paginated[Product], error) {
	var res Paginated[Product]
	err := c.get(ctx, "/admin/products", &res)
	return res, err
}

// AdminGetProduct fetches one product for editing.
func (c *Client) AdminGetProduct(ctx context.Context, id string) (Product, error) {
	var res Product
	err := c.get(ctx, "/admin/products/"+url.PathEscape(id), &res)
	return res, err
}

// AdminCreateProduct creates a catalog entry.
func (c *Client) AdminCreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	var res Product
	err := c.post(ctx, "/admin/products", in, &res)
	return res, err
}

// AdminUpdateProduct applies edits to a catalog entry.
func (c *Client) AdminUpdateProduct(ctx context.Context, id string, in ProductInput) (Product, error) {
	var res Product
	err := c.patch(ctx, "/admin/products/"+url.PathEscape(id), in, &res)
	return res, err
}

// AdminDeleteProduct removes a catalog entry.
func (c *Client) AdminDeleteProduct(ctx context.Context, id string) error {
	return c.delete(ctx, "/admin/products/"+url.PathEscape(id), nil)
}

// CollectionInput is the create/update payload for collections.
type CollectionInput struct {
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Image     string `json:"image"`
	SortOrder int    `json:"sortOrder"`
}

// AdminListCollections lists all collections for management.
func (c *Client) AdminListCollections(ctx context.Context) ([]Collection, error) {
	var res []Collection
	err := c.get(ctx, "/admin/collections", &res)
	return res, err
}

// AdminCreateCollection creates a collection.
func (c *Client) AdminCreateCollection(ctx context.Context, in CollectionInput) (Collection, error) {
	var res Collection
	err := c.post(ctx, "/admin/collections", in, &res)
	return res, err
}

// AdminUpdateCollection edits a collection.
func (c *Client) AdminUpdateCollection(ctx context.Context, id string, in CollectionInput) (Collection, error) {
	var res Collection
	err := c.patch(ctx, "/admin/collections/"+url.PathEscape(id), in, &res)
	return res, err
}

// AdminDeleteCollection removes a collection.
func (c *Client) AdminDeleteCollection(ctx context.Context, id string) error {
	return c.delete(ctx, "/admin/collections/"+url.PathEscape(id), nil)
}

// ContentUpdate is one key/value homepage content edit.
type ContentUpdate struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// AdminGetContent fetches the editable homepage content.
func (c *Client) AdminGetContent(ctx context.Context) (HomepageContent, error) {
	var res HomepageContent
	err := c.get(ctx, "/admin/content", &res)
	return res, err
}

// AdminUpdateContent applies homepage content edits.
func (c *Client) AdminUpdateContent(ctx context.Context, updates []ContentUpdate) (HomepageContent, error) {
	body := map[string][]ContentUpdate{"updates": updates}
	var res HomepageContent
	err := c.patch(ctx, "/admin/content", body, &res)
	return res, err
}

// UploadResult is the stored location of an uploaded image.
type UploadResult struct {
	URL string `json:"url"`
}

// AdminUploadImage uploads a product or content image as multipart form data.
func (c *Client) AdminUploadImage(ctx context.Context, filename string, file io.Reader) (UploadResult, error) {
	var res UploadResult
	err := c.upload(ctx, "/admin/upload", "file", filename, file, &res)
	return res, err
}
