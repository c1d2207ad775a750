package api

// Types in this file mirror the backend's wire shapes. Field names follow the
// backend's camelCase JSON exactly; the envelope itself is handled in client.go.

// User is the authenticated account attached to a session.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	AvatarURL string `json:"avatarUrl"`
	Role      string `json:"role"`
}

// IsAdmin reports whether the user may reach the admin console.
func (u User) IsAdmin() bool { return u.Role == "admin" }

// AuthTokens is the credential pair minted on login/register. RefreshToken is
// informational only; the usable copy lives in the HTTP-only cookie.
type AuthTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResponse is the payload of login and register.
type AuthResponse struct {
	User   User       `json:"user"`
	Tokens AuthTokens `json:"tokens"`
}

// ProductImage is one catalog image.
type ProductImage struct {
	ID  string `json:"id"`
	URL string `json:"url"`
	Alt string `json:"alt"`
}

// SizeGuideEntry is one row of a product's measurement table.
type SizeGuideEntry struct {
	Size     string `json:"size"`
	Chest    string `json:"chest"`
	Waist    string `json:"waist"`
	Hips     string `json:"hips"`
	Length   string `json:"length"`
	Shoulder string `json:"shoulder"`
}

// Product is a full catalog entry.
type Product struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Slug           string           `json:"slug"`
	Price          int64            `json:"price"`
	CompareAtPrice int64            `json:"compareAtPrice"`
	Category       string           `json:"category"`
	Collections    []string         `json:"collections"`
	Tags           []string         `json:"tags"`
	Images         []ProductImage   `json:"images"`
	Description    string           `json:"description"`
	Fabric         string           `json:"fabric"`
	Details        []string         `json:"details"`
	Sizes          []string         `json:"sizes"`
	SizeGuide      []SizeGuideEntry `json:"sizeGuide"`
	InStock        bool             `json:"inStock"`
	StockBySize    map[string]int   `json:"stockBySize"`
	CreatedAt      string           `json:"createdAt"`
}

// MainImage returns the first image URL, or empty when the product has none.
func (p Product) MainImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}

// Paginated wraps list endpoints that page their results.
type Paginated[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// CategoryInfo summarises one shop category.
type CategoryInfo struct {
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Count int    `json:"count"`
	Image string `json:"image"`
}

// Collection is a merchandised product grouping.
type Collection struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Image     string `json:"image"`
	SortOrder int    `json:"sortOrder"`
	Count     int    `json:"count"`
}

// Address is a saved address-book entry.
type Address struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	FullName     string `json:"fullName"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city"`
	Province     string `json:"province"`
	PostalCode   string `json:"postalCode"`
	IsDefault    bool   `json:"isDefault"`
}

// CreateAddressRequest carries a new address, inline at checkout or into the
// address book.
type CreateAddressRequest struct {
	Label        string `json:"label,omitempty"`
	FullName     string `json:"fullName"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	Province     string `json:"province"`
	PostalCode   string `json:"postalCode"`
	IsDefault    bool   `json:"isDefault,omitempty"`
}

// UpdateAddressRequest carries partial address-book edits.
type UpdateAddressRequest struct {
	Label        *string `json:"label,omitempty"`
	FullName     *string `json:"fullName,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	AddressLine1 *string `json:"addressLine1,omitempty"`
	AddressLine2 *string `json:"addressLine2,omitempty"`
	City         *string `json:"city,omitempty"`
	Province     *string `json:"province,omitempty"`
	PostalCode   *string `json:"postalCode,omitempty"`
	IsDefault    *bool   `json:"isDefault,omitempty"`
}

// OrderLine is one productId/size/quantity triple submitted at checkout.
// Prices are deliberately absent: the backend recomputes authoritative
// pricing from the catalog.
type OrderLine struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderRequest is the single atomic order-creation payload.
type CreateOrderRequest struct {
	Address       CreateAddressRequest `json:"address"`
	Items         []OrderLine          `json:"items"`
	PaymentMethod string               `json:"paymentMethod"`
}

// CreateOrderResponse identifies the order the backend created.
type CreateOrderResponse struct {
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
}

// OrderItem is one fulfilled line on a placed order.
type OrderItem struct {
	ID           string `json:"id"`
	ProductID    string `json:"productId"`
	ProductName  string `json:"productName"`
	ProductImage string `json:"productImage"`
	Size         string `json:"size"`
	Quantity     int    `json:"quantity"`
	UnitPrice    int64  `json:"unitPrice"`
	TotalPrice   int64  `json:"totalPrice"`
}

// OrderTracking is one fulfillment timeline event.
type OrderTracking struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Description string `json:"description"`
}

// Order is a placed order with its fulfillment state.
type Order struct {
	ID                string          `json:"id"`
	OrderNumber       string          `json:"orderNumber"`
	Items             []OrderItem     `json:"items"`
	Subtotal          int64           `json:"subtotal"`
	ShippingFee       int64           `json:"shippingFee"`
	Tax               int64           `json:"tax"`
	Discount          int64           `json:"discount"`
	Total             int64           `json:"total"`
	Status            string          `json:"status"`
	PaymentStatus     string          `json:"paymentStatus"`
	PaymentMethod     string          `json:"paymentMethod"`
	ShippingAddress   Address         `json:"shippingAddress"`
	Tracking          []OrderTracking `json:"tracking"`
	EstimatedDelivery string          `json:"estimatedDelivery"`
	CreatedAt         string          `json:"createdAt"`
}

// UserProfile is the account page payload.
type UserProfile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	AvatarURL string    `json:"avatarUrl"`
	Role      string    `json:"role"`
	Addresses []Address `json:"addresses"`
	CreatedAt string    `json:"createdAt"`
}

// HomepageContent is the CMS-managed landing page copy.
type HomepageContent struct {
	Hero struct {
		Image       string `json:"image"`
		Subtitle    string `json:"subtitle"`
		Title       string `json:"title"`
		Description string `json:"description"`
		CTAText     string `json:"ctaText"`
		CTAHref     string `json:"ctaHref"`
	} `json:"hero"`
	Lookbook struct {
		Image   string `json:"image"`
		Season  string `json:"season"`
		Title   string `json:"title"`
		CTAText string `json:"ctaText"`
		CTAHref string `json:"ctaHref"`
	} `json:"lookbook"`
	Brand struct {
		Subtitle string `json:"subtitle"`
		Title    string `json:"title"`
		Tagline  string `json:"tagline"`
	} `json:"brand"`
	CategoryImages  []CategoryImage `json:"categoryImages"`
	BackgroundColor string          `json:"backgroundColor"`
}

// CategoryImage pairs a category slug with its tile image.
type CategoryImage struct {
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Image string `json:"image"`
}
