// Package paymentlinks builds prefilled Venmo and PayPal URLs. Nothing here
// talks to the providers; the links are opened by the payer's client.
package paymentlinks

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/NomadCrew/crewtrip-backend/pkg/valueobjects"
	"github.com/NomadCrew/crewtrip-backend/types"
)

// ErrNoHandle is returned when the payee has no handle for the method.
var ErrNoHandle = errors.New("payee has no handle for this payment method")

// Link is a provider deep link with an optional web fallback.
type Link struct {
	AppURL string
	WebURL string
}

// NormalizeVenmoHandle strips whitespace and a leading @.
func NormalizeVenmoHandle(h string) string {
	return strings.TrimPrefix(strings.TrimSpace(h), "@")
}

// Build returns the link for paying payee amount via method. Cash yields an
// empty link.
func Build(method types.PaymentMethod, payee *types.User, amount valueobjects.Amount, memo string) (Link, error) {
	switch method {
	case types.PaymentMethodCash:
		return Link{}, nil
	case types.PaymentMethodVenmo:
		handle := ""
		if payee != nil {
			handle = NormalizeVenmoHandle(payee.VenmoHandle)
		}
		if handle == "" {
			return Link{}, ErrNoHandle
		}
		return Venmo(handle, amount, memo), nil
	case types.PaymentMethodPaypal:
		email := ""
		if payee != nil {
			email = strings.TrimSpace(payee.PaypalEmail)
		}
		if email == "" {
			return Link{}, ErrNoHandle
		}
		return PayPal(email, amount, memo), nil
	default:
		return Link{}, fmt.Errorf("unsupported payment method %q", method)
	}
}

func Venmo(handle string, amount valueobjects.Amount, memo string) Link {
	app := url.Values{}
	app.Set("txn", "pay")
	app.Set("recipients", handle)
	app.Set("amount", amount.String())
	app.Set("note", memo)

	web := url.Values{}
	web.Set("txn", "pay")
	web.Set("amount", amount.String())
	web.Set("note", memo)

	return Link{
		AppURL: "venmo://paycharge?" + app.Encode(),
		WebURL: "https://venmo.com/" + url.PathEscape(handle) + "?" + web.Encode(),
	}
}

func PayPal(email string, amount valueobjects.Amount, memo string) Link {
	q := url.Values{}
	q.Set("cmd", "_xclick")
	q.Set("business", email)
	q.Set("amount", amount.String())
	q.Set("currency_code", string(valueobjects.DefaultCurrency))
	q.Set("item_name", memo)
	u := "https://www.paypal.com/cgi-bin/webscr?" + q.Encode()
	return Link{AppURL: u, WebURL: u}
}

// AvailableMethods lists the methods a payee can receive. Cash is always last.
func AvailableMethods(payee *types.User) []types.PaymentMethod {
	methods := make([]types.PaymentMethod, 0, 3)
	if payee != nil && NormalizeVenmoHandle(payee.VenmoHandle) != "" {
		methods = append(methods, types.PaymentMethodVenmo)
	}
	if payee != nil && strings.TrimSpace(payee.PaypalEmail) != "" {
		methods = append(methods, types.PaymentMethodPaypal)
	}
	return append(methods, types.PaymentMethodCash)
}
