// Package payment builds UPI payment intents and checks signed payment
// notifications before they reach the order lifecycle.
package payment

import (
	"errors"
	"net/url"
	"strings"

	"github.com/junaidrashid-git/canteen-api/money"
)

// UPI identifies the payee every intent is addressed to.
type UPI struct {
	ID   string // payee VPA, e.g. canteen@okaxis
	Name string
}

var ErrUPINotConfigured = errors.New("payment: UPI_ID is not configured")

// Link returns the upi://pay intent for amount against orderID. Parameters
// keep the pa, pn, am, cu, tn order that UPI apps expect.
func (u UPI) Link(orderID string, amount money.Money) (string, error) {
	if u.ID == "" {
		return "", ErrUPINotConfigured
	}
	if amount <= 0 {
		return "", errors.New("payment: amount must be positive")
	}

	params := [][2]string{
		{"pa", u.ID},
		{"pn", u.Name},
		{"am", amount.String()},
		{"cu", "INR"},
		{"tn", Note(orderID)},
	}
	var b strings.Builder
	b.WriteString("upi://pay?")
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p[0])
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p[1]))
	}
	return b.String(), nil
}

// Note is the transaction note shown in the payer's UPI app.
func Note(orderID string) string {
	return "Canteen Order " + orderID
}
