package donation

import (
	"net/url"
	"strings"
	"time"
)

// AnonymousDonor is recorded when the donor leaves the name blank.
const AnonymousDonor = "Anónimo"

// ItemTitle is the line item shown on the checkout page.
const ItemTitle = "Donacion Llave de Sol"

// CheckoutBaseURL is the MercadoPago redirect checkout for Chile.
const CheckoutBaseURL = "https://www.mercadopago.cl/checkout/v1/redirect"

// Page sizes the treasury table accepts.
var PageSizes = []int{10, 20, 50, 100}

// DefaultPageSize matches the backend paginator.
const DefaultPageSize = 10

// Donation is one recorded payment attempt.
type Donation struct {
	ID           int64
	DonorName    string
	Amount       string // decimal as sent by the backend
	PreferenceID string
	PaymentID    string
	Status       string
	Date         time.Time
}

// Page is one page of the backend's donation list.
type Page struct {
	Count   int
	Results []Donation
}

// Pledge is the public donation form.
type Pledge struct {
	Amount    int
	DonorName string
}

// Normalize coerces the pledge the way the donation form does:
// non-positive amounts become 1 and a blank name becomes AnonymousDonor.
// POST: Amount >= 1, DonorName non-empty
func (p *Pledge) Normalize() {
	if p.Amount <= 0 {
		p.Amount = 1
	}
	p.DonorName = strings.TrimSpace(p.DonorName)
	if p.DonorName == "" {
		p.DonorName = AnonymousDonor
	}
}

// CheckoutURL returns the redirect URL for a created preference.
func CheckoutURL(preferenceID string) string {
	return CheckoutBaseURL + "?pref_id=" + url.QueryEscape(preferenceID)
}

// NormalizePageSize returns n if it is an accepted size, DefaultPageSize otherwise.
func NormalizePageSize(n int) int {
	for _, s := range PageSizes {
		if n == s {
			return n
		}
	}
	return DefaultPageSize
}
