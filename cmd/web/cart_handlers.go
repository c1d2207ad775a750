package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"khojstudio.pk/khoj-web/internal/cart"
	mw "khojstudio.pk/khoj-web/internal/middleware"
)

// CartHandler renders the full cart page.
func (a *app) CartHandler(w http.ResponseWriter, r *http.Request) {
	v := mw.VisitFrom(r)
	view := buildCartPageView(v.Cart, a.shippingRule())

	vm := a.pageData(r, "cart", "Your Cart")
	vm.Data = view
	a.renderPage(w, r, vm)
}

// CartDrawerFrag renders the slide-over drawer contents.
func (a *app) CartDrawerFrag(w http.ResponseWriter, r *http.Request) {
	v := mw.VisitFrom(r)
	a.renderFrag(w, r, "frag_cart_drawer", buildCartDrawerView(v.Cart))
}

// CartDrawerCloseHandler closes the drawer without touching the items.
func (a *app) CartDrawerCloseHandler(w http.ResponseWriter, r *http.Request) {
	v := mw.VisitFrom(r)
	v.Cart.CloseDrawer()
	a.renderFrag(w, r, "frag_cart_drawer", buildCartDrawerView(v.Cart))
}

// CartAddHandler puts a product size into the bag and opens the drawer.
func (a *app) CartAddHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	productID := r.FormValue("product_id")
	size := r.FormValue("size")
	qty, _ := strconv.Atoi(r.FormValue("quantity"))

	if productID == "" || size == "" {
		http.Error(w, "product and size are required", http.StatusBadRequest)
		return
	}

	client := a.visitClient(r)
	product, err := client.GetProduct(r.Context(), productID)
	if err != nil {
		a.logger.Warn("cart add lookup", zap.String("product", productID), zap.Error(err))
		http.Error(w, messageOf(err), http.StatusBadGateway)
		return
	}

	v := mw.VisitFrom(r)
	v.Cart.AddItem(cart.Snapshot(product), size, qty)

	a.cartChanged(w, v)
	a.renderFrag(w, r, "frag_cart_drawer", buildCartDrawerView(v.Cart))
}

// CartUpdateHandler sets a line's quantity; zero or less removes it.
func (a *app) CartUpdateHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	qty, _ := strconv.Atoi(r.FormValue("quantity"))
	v := mw.VisitFrom(r)
	v.Cart.UpdateQuantity(r.FormValue("product_id"), r.FormValue("size"), qty)

	a.cartChanged(w, v)
	a.renderCartTarget(w, r, v)
}

// CartRemoveHandler drops a line entirely.
func (a *app) CartRemoveHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	v := mw.VisitFrom(r)
	v.Cart.RemoveItem(r.FormValue("product_id"), r.FormValue("size"))

	a.cartChanged(w, v)
	a.renderCartTarget(w, r, v)
}

// renderCartTarget re-renders the fragment the form came from: the cart
// page table when on /cart, the drawer otherwise.
func (a *app) renderCartTarget(w http.ResponseWriter, r *http.Request, v *mw.Visit) {
	if r.FormValue("from") == "page" {
		a.renderFrag(w, r, "frag_cart_table", buildCartPageView(v.Cart, a.shippingRule()))
		return
	}
	a.renderFrag(w, r, "frag_cart_drawer", buildCartDrawerView(v.Cart))
}

// cartChanged tells the header badge to refresh.
func (a *app) cartChanged(w http.ResponseWriter, v *mw.Visit) {
	payload := map[string]any{
		"cart:changed": map[string]int{"count": v.Cart.TotalItems()},
	}
	if raw, err := json.Marshal(payload); err == nil {
		w.Header().Set("HX-Trigger", string(raw))
	}
}
