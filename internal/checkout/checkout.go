// Package checkout drives the four-step order wizard: shipping, payment,
// review, confirmation. Steps are strictly ordered; moving forward requires
// the current step's validation to pass, while moving back is always
// allowed. The wizard itself is ephemeral per visit and never persisted.
package checkout

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"khojstudio.pk/khoj-web/internal/api"
	"khojstudio.pk/khoj-web/internal/cart"
)

// Step is a wizard position.
type Step string

const (
	StepShipping     Step = "shipping"
	StepPayment      Step = "payment"
	StepReview       Step = "review"
	StepConfirmation Step = "confirmation"
)

// DefaultPaymentMethod is preselected for every checkout session.
const DefaultPaymentMethod = "cod"

// basic local@domain.tld shape; the backend re-validates on its side.
var emailShape = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// ShippingForm is the manual address entry. All fields except AddressLine2
// are required.
type ShippingForm struct {
	FullName     string
	Email        string
	Phone        string
	AddressLine1 string
	AddressLine2 string
	City         string
	Province     string
	PostalCode   string
}

// Rule is the shipping-fee policy: free at or above the threshold, a flat
// fee below it.
type Rule struct {
	FreeShippingThreshold int64
	FlatFee               int64
}

// Totals is the money summary computed from the live cart at review time.
type Totals struct {
	Subtotal    int64
	ShippingFee int64
	Tax         int64
	Total       int64
}

// Compute evaluates the fee rule for a subtotal. Tax is carried but
// always zero today.
func (r Rule) Compute(subtotal int64) Totals {
	fee := r.FlatFee
	if subtotal >= r.FreeShippingThreshold {
		fee = 0
	}
	var tax int64
	return Totals{
		Subtotal:    subtotal,
		ShippingFee: fee,
		Tax:         tax,
		Total:       subtotal + fee + tax,
	}
}

// Checkout is one visitor's wizard state.
type Checkout struct {
	rule    Rule
	methods []string

	mu                sync.Mutex
	step              Step
	form              ShippingForm
	fieldErrors       map[string]string
	selectedAddressID string
	paymentMethod     string
	orderNumber       string
}

// New starts a wizard at the shipping step with cash-on-delivery
// preselected. allowedMethods defaults to cod-only when empty.
func New(rule Rule, allowedMethods []string) *Checkout {
	if len(allowedMethods) == 0 {
		allowedMethods = []string{DefaultPaymentMethod}
	}
	return &Checkout{
		rule:          rule,
		methods:       allowedMethods,
		step:          StepShipping,
		paymentMethod: DefaultPaymentMethod,
	}
}

// Step returns the current wizard position.
func (c *Checkout) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// Form returns the current shipping form values.
func (c *Checkout) Form() ShippingForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// SetForm stores draft form values without validating or advancing.
func (c *Checkout) SetForm(f ShippingForm) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = trimmed(f)
}

// FieldErrors returns per-field messages from the last failed shipping
// submission.
func (c *Checkout) FieldErrors() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.fieldErrors))
	for k, v := range c.fieldErrors {
		out[k] = v
	}
	return out
}

// SelectedAddressID returns the saved-address selection, if any.
func (c *Checkout) SelectedAddressID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedAddressID
}

// PaymentMethod returns the chosen payment method.
func (c *Checkout) PaymentMethod() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paymentMethod
}

// OrderNumber returns the backend-assigned number once confirmed.
func (c *Checkout) OrderNumber() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orderNumber
}

// Rule exposes the fee policy for summary rendering.
func (c *Checkout) Rule() Rule { return c.rule }

// SelectSavedAddress overwrites the shipping form from an address-book entry
// and records the selection. Selecting a saved address and manual entry are
// mutually exclusive.
func (c *Checkout) SelectSavedAddress(addr api.Address, email string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectedAddressID = addr.ID
	c.form = ShippingForm{
		FullName:     addr.FullName,
		Email:        firstNonEmpty(strings.TrimSpace(email), c.form.Email),
		Phone:        addr.Phone,
		AddressLine1: addr.AddressLine1,
		AddressLine2: addr.AddressLine2,
		City:         addr.City,
		Province:     addr.Province,
		PostalCode:   addr.PostalCode,
	}
	c.fieldErrors = nil
}

// UseNewAddress clears the saved-address selection and the form, preserving
// only the authenticated user's email when known.
func (c *Checkout) UseNewAddress(email string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectedAddressID = ""
	c.form = ShippingForm{Email: strings.TrimSpace(email)}
	c.fieldErrors = nil
}

// SubmitShipping validates the form and advances to payment when every
// required field passes. On failure the step does not move and per-field
// messages are recorded; there is no partial advance.
func (c *Checkout) SubmitShipping(f ShippingForm) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step != StepShipping {
		return false
	}
	f = trimmed(f)
	errs := validateShipping(f)
	c.form = f
	if len(errs) > 0 {
		c.fieldErrors = errs
		return false
	}
	c.fieldErrors = nil
	c.step = StepPayment
	return true
}

// SelectPaymentMethod records the method when it is one of the configured
// options; unknown values keep the previous selection.
func (c *Checkout) SelectPaymentMethod(method string) bool {
	method = strings.ToLower(strings.TrimSpace(method))
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range c.methods {
		if m == method {
			c.paymentMethod = method
			return true
		}
	}
	return false
}

// ContinueToReview advances payment to review. A method is always selected,
// so this transition carries no guard.
func (c *Checkout) ContinueToReview() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step != StepPayment {
		return false
	}
	c.step = StepReview
	return true
}

// Reset returns the wizard to a fresh shipping step. Called when a
// visitor starts a new checkout after a confirmed order; confirmation
// itself stays terminal.
func (c *Checkout) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.step = StepShipping
	c.form = ShippingForm{}
	c.fieldErrors = nil
	c.selectedAddressID = ""
	c.paymentMethod = DefaultPaymentMethod
	c.orderNumber = ""
}

// Back steps the wizard backward: payment to shipping, review to payment.
// Other positions are unchanged.
func (c *Checkout) Back() {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.step {
	case StepPayment:
		c.step = StepShipping
	case StepReview:
		c.step = StepPayment
	}
}

// PlaceOrder issues the single atomic order-creation call from the review
// step. The cart is read at the moment of submission. On success the cart
// is cleared exactly once and the wizard lands on confirmation; on failure
// nothing changes and the caller surfaces the message.
func (c *Checkout) PlaceOrder(ctx context.Context, client *api.Client, bag *cart.Cart) (string, error) {
	c.mu.Lock()
	if c.step != StepReview {
		c.mu.Unlock()
		return "", ErrNotAtReview
	}
	req := api.CreateOrderRequest{
		Address: api.CreateAddressRequest{
			FullName:     c.form.FullName,
			Phone:        c.form.Phone,
			AddressLine1: c.form.AddressLine1,
			AddressLine2: c.form.AddressLine2,
			City:         c.form.City,
			Province:     c.form.Province,
			PostalCode:   c.form.PostalCode,
		},
		PaymentMethod: c.paymentMethod,
	}
	c.mu.Unlock()

	req.Items = bag.OrderLines()
	if len(req.Items) == 0 {
		return "", ErrEmptyBag
	}

	res, err := client.CreateOrder(ctx, req)
	if err != nil {
		return "", err
	}

	bag.Clear()
	c.mu.Lock()
	c.step = StepConfirmation
	c.orderNumber = res.OrderNumber
	c.mu.Unlock()
	return res.OrderNumber, nil
}

// Totals evaluates the fee rule against the live cart subtotal.
func (c *Checkout) Totals(bag *cart.Cart) Totals {
	return c.rule.Compute(bag.Subtotal())
}

func validateShipping(f ShippingForm) map[string]string {
	errs := map[string]string{}
	if f.FullName == "" {
		errs["fullName"] = "Full name is required"
	}
	switch {
	case f.Email == "":
		errs["email"] = "Email is required"
	case !emailShape.MatchString(f.Email):
		errs["email"] = "Enter a valid email"
	}
	if f.Phone == "" {
		errs["phone"] = "Phone number is required"
	}
	if f.AddressLine1 == "" {
		errs["addressLine1"] = "Address is required"
	}
	if f.City == "" {
		errs["city"] = "City is required"
	}
	if f.Province == "" {
		errs["province"] = "Province is required"
	}
	if f.PostalCode == "" {
		errs["postalCode"] = "Postal code is required"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func trimmed(f ShippingForm) ShippingForm {
	f.FullName = strings.TrimSpace(f.FullName)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.AddressLine1 = strings.TrimSpace(f.AddressLine1)
	f.AddressLine2 = strings.TrimSpace(f.AddressLine2)
	f.City = strings.TrimSpace(f.City)
	f.Province = strings.TrimSpace(f.Province)
	f.PostalCode = strings.TrimSpace(f.PostalCode)
	return f
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
