// Package checkout validates the shipping and card form submitted with an
// order. Card data is checked for shape only and never leaves this package
// except through Form itself.
package checkout

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Validation messages, in the order the rules run.
const (
	MsgAddress    = "Introduce una dirección válida."
	MsgCity       = "La ciudad solo debe contener letras."
	MsgPostalCode = "El código postal debe contener entre 1 y 6 dígitos."
	MsgBank       = "Debes seleccionar un banco."
	MsgCardName   = "El nombre en la tarjeta parece muy corto."
	MsgCardNumber = "El número de tarjeta debe tener 16 dígitos."
	MsgExpiry     = "La fecha de expiración debe tener el formato MM/AA."
	MsgCVV        = "El CVV debe tener 3 o 4 dígitos."
)

const (
	minAddressLen  = 5
	minCardNameLen = 3
)

var (
	cityPattern       = regexp.MustCompile(`^[a-zA-ZáéíóúÁÉÍÓÚñÑ\s]+$`)
	postalCodePattern = regexp.MustCompile(`^\d{1,6}$`)
	cardNumberPattern = regexp.MustCompile(`^\d{16}$`)
	expiryPattern     = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvvPattern        = regexp.MustCompile(`^\d{3,4}$`)
)

// Form is the checkout form as submitted.
type Form struct {
	Address    string
	City       string
	PostalCode string
	Bank       string
	CardName   string
	CardNumber string
	Expiry     string
	CVV        string
}

// Normalize trims every field and composes the city to NFC so that accented
// letters typed as base letter + combining mark match the city rule.
func (f Form) Normalize() Form {
	return Form{
		Address:    strings.TrimSpace(f.Address),
		City:       norm.NFC.String(strings.TrimSpace(f.City)),
		PostalCode: strings.TrimSpace(f.PostalCode),
		Bank:       strings.TrimSpace(f.Bank),
		CardName:   strings.TrimSpace(f.CardName),
		CardNumber: strings.TrimSpace(f.CardNumber),
		Expiry:     strings.TrimSpace(f.Expiry),
		CVV:        strings.TrimSpace(f.CVV),
	}
}

// WithoutCard returns a copy with the card number and CVV cleared, suitable
// for re-rendering the form.
func (f Form) WithoutCard() Form {
	f.CardNumber = ""
	f.CVV = ""
	return f
}

// Result holds every message produced by Validate.
type Result struct {
	Errors []string
}

// OK reports whether the form passed every rule.
func (r Result) OK() bool {
	return len(r.Errors) == 0
}

// Validate normalizes f and runs all rules, collecting every failure rather
// than stopping at the first.
func Validate(f Form) Result {
	f = f.Normalize()

	var r Result
	check := func(ok bool, msg string) {
		if !ok {
			r.Errors = append(r.Errors, msg)
		}
	}

	check(utf8.RuneCountInString(f.Address) >= minAddressLen, MsgAddress)
	check(cityPattern.MatchString(f.City), MsgCity)
	check(postalCodePattern.MatchString(f.PostalCode), MsgPostalCode)
	check(f.Bank != "", MsgBank)
	check(utf8.RuneCountInString(f.CardName) >= minCardNameLen, MsgCardName)
	check(cardNumberPattern.MatchString(strings.ReplaceAll(f.CardNumber, " ", "")), MsgCardNumber)
	check(expiryPattern.MatchString(f.Expiry), MsgExpiry)
	check(cvvPattern.MatchString(f.CVV), MsgCVV)

	return r
}
