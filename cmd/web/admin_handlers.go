package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"khojstudio.pk/khoj-web/internal/api"
)

// AdminProductsHandler lists the catalog for management.
func (a *app) AdminProductsHandler(w http.ResponseWriter, r *http.Request) {
	client, err := a.authedClient(r)
	if err != nil {
		redirectToLogin(w, r)
		return
	}
	res, err := client.AdminListProducts(r.Context())
	if err != nil {
		a.accountError(w, r, err)
		return
	}
	vm := a.adminPageData(r, "admin_products", "Products")
	vm.Data = buildAdminProductsView(res)
	a.renderPage(w, r, vm)
}

// AdminProductNewHandler renders a blank product editor.
func (a *app) AdminProductNewHandler(w http.ResponseWriter, r *http.Request) {
	vm := a.adminPageData(r, "admin_product_edit", "New Product")
	vm.Data = AdminProductFormView{Sizes: defaultSizes}
	a.renderPage(w, r, vm)
}

// AdminProductCreateHandler creates a catalog entry from the editor form.
func (a *app) AdminProductCreateHandler(w http.ResponseWriter, r *http.Request) {
	client, err := a.authedClient(r)
	if err != nil {
		redirectToLogin(w, r)
		return
	}
	input, err := productInputFromForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := client.AdminCreateProduct(r.Context(), input); err != nil {
		a.adminActionError(w, r, err)
		return
	}
	hxRedirect(w, r, "/admin/products")
}

// AdminProductEditHandler renders the editor primed with one product.
func (a *app) AdminProductEditHandler(w http.ResponseWriter, r *http.Request) {
	client, err := a.authedClient(r)
	if err != nil {
		redirectToLogin(w, r)
		return
	}
	productID := chi.URLParam(r, "productID")
	p, err := client.AdminGetProduct(r.Context(), productID)
	if err != nil {
		if api.IsNotFound(err) {
			a.NotFoundHandler(w, r)
			return
		}
		a.accountError(w, r, err)
		return
	}
	vm := a.adminPageData(r, "admin_product_edit", "Edit "+p.Name)
	vm.Data = buildAdminProductFormView(p)
	a.renderPage(w, r, vm)
}

// AdminProductUpdateHandler applies editor changes.
func (a *app) AdminProductUpdateHandler(w http.ResponseWriter, r *http.Request) {
	client, err := a.authedClient(r)
	if err != nil {
		redirectToLogin(w, r)
		return
	}
	input, err := productInputFromForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	productID := chi.URLParam(r, "productID")
	if _, err := client.AdminUpdateProduct(r.Context(), productID, input); err != nil {
		a.adminActionError(w, r, err)
		return
	}
	hxRedirect(w, r, "/admin/products")
}

// AdminProductDeleteHandler removes a catalog entry.
func (a *app) AdminProductDeleteHandler(w http.ResponseWriter, r *http.Request) {
	client, err := a.authedClient(r)
	if err != nil {
		redirectToLogin(w, r)
		return
	}
	productID := chi.URLParam(r, "productID")
	if err := client.AdminDeleteProduct(r.Context(), productID); err != nil {
		a.adminActionError(w, r, err)
		return
	}
	hxRedirect(w, r, "/admin/products")
}

// AdminCollectionsHandler lists collections for management.
func (a *app) AdminCollectionsHandler(w http.ResponseWriter, r *http.Request) {
	client, err := a.authedClient(r)
	if err != nil {
		redirectToLogin(w, r)
		return
	}
	cols, err := client.AdminListCollections(r.Context())
	if err != nil {
		a.accountError(w, r, err)
		return
	}
	vm := a.adminPageData(r, "admin_collections", "Collections")
	vm.Data = AdminCollectionsView{Collections: cols}
	a.renderPage(w, r, vm)
}

// AdminCollectionCreateHandler creates a collection.
func (a *app) AdminCollectionCreateHandler(w http.ResponseWriter, r *http.Request) {
	a.collectionMutation(w, r, func(client *api.Client, in api.CollectionInput) error {
		_, err := client.AdminCreateCollection(r.Context(), in)
		return err
	})
}

// AdminCollectionUpdateHandler edits a collection.
func (a *app) AdminCollectionUpdateHandler(w http.ResponseWriter, r *http.Request) {
	collectionID := chi.URLParam(r, "collectionID")
	a.collectionMutation(w, r, func(client *api.Client, in api.CollectionInput) error {
		_, err := client.AdminUpdateCollection(r.Context(), collectionID, in)
		return err
	})
}

// AdminCollectionDeleteHandler removes a collection.
func (a *app) AdminCollectionDeleteHandler(w http.ResponseWriter, r *http.Request) {
	client, err := a.authedClient(r)
	if err != nil {
		redirectToLogin(w, r)
		return
	}
	collectionID := chi.URLParam(r, "collectionID")
	if err := client.AdminDeleteCollection(r.Context(), collectionID); err != nil {
		a.adminActionError(w, r, err)
		return
	}
	hxRedirect(w, r, "/admin/collections")
}

func (a *app) collectionMutation(w http.ResponseWriter, r *http.Request, do func(*api.Client, api.CollectionInput) error) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	client, err := a.authedClient(r)
	if err != nil {
		redirectToLogin(w, r)
		return
	}
	sortOrder, _ := strconv.Atoi(r.FormValue("sortOrder"))
	in := api.CollectionInput{
		Name:      r.FormValue("name"),
		Slug:      r.FormValue("slug"),
		Image:     r.FormValue("image"),
		SortOrder: sortOrder,
	}
	if err := do(client, in); err != nil {
		a.adminActionError(w, r, err)
		return
	}
	hxRedirect(w, r, "/admin/collections")
}

// AdminContentHandler renders the homepage content editor.
func (a *app) AdminContentHandler(w http.ResponseWriter, r *http.Request) {
	client, err := a.authedClient(r)
	if err != nil {
		redirectToLogin(w, r)
		return
	}
	content, err := client.AdminGetContent(r.Context())
	if err != nil {
		a.accountError(w, r, err)
		return
	}
	vm := a.adminPageData(r, "admin_content", "Homepage Content")
	vm.Data = AdminContentView{Content: content}
	a.renderPage(w, r, vm)
}

// AdminContentUpdateHandler applies key/value content edits and busts
// the storefront cache.
func (a *app) AdminContentUpdateHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	client, err := a.authedClient(r)
	if err != nil {
		redirectToLogin(w, r)
		return
	}
	var updates []api.ContentUpdate
	for key, vals := range r.PostForm {
		if !strings.Contains(key, ".") || len(vals) == 0 {
			continue
		}
		updates = append(updates, api.ContentUpdate{Key: key, Value: vals[0]})
	}
	if _, err := client.AdminUpdateContent(r.Context(), updates); err != nil {
		a.adminActionError(w, r, err)
		return
	}
	a.content.Invalidate()
	hxRedirect(w, r, "/admin/content")
}

// AdminUploadHandler relays a multipart image upload to the backend and
// answers with the stored URL for the editor to consume.
func (a *app) AdminUploadHandler(w http.ResponseWriter, r *http.Request) {
	client, err := a.authedClient(r)
	if err != nil {
		redirectToLogin(w, r)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	res, err := client.AdminUploadImage(r.Context(), header.Filename, file)
	if err != nil {
		a.adminActionError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(res)
}

func (a *app) adminActionError(w http.ResponseWriter, r *http.Request, err error) {
	if api.IsSessionExpired(err) || api.IsUnauthorized(err) {
		redirectToLogin(w, r)
		return
	}
	a.logger.Warn("admin action", zap.Error(err))
	http.Error(w, messageOf(err), http.StatusBadGateway)
}
