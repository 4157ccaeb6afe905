package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() Form {
	return Form{
		Address:    "Av. Siempre Viva 742",
		City:       "Bogotá",
		PostalCode: "110111",
		Bank:       "Banco Nación",
		CardName:   "Ana Pérez",
		CardNumber: "1234 5678 9012 3456",
		Expiry:     "01/26",
		CVV:        "123",
	}
}

func TestValidate_Valid(t *testing.T) {
	r := Validate(validForm())
	require.True(t, r.OK(), "unexpected errors: %v", r.Errors)
}

func TestValidate_SingleRule(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Form)
		want   string
	}{
		{"short address", func(f *Form) { f.Address = "Av 1" }, MsgAddress},
		{"address only spaces", func(f *Form) { f.Address = "        " }, MsgAddress},
		{"city with digits", func(f *Form) { f.City = "Madrid 2" }, MsgCity},
		{"empty city", func(f *Form) { f.City = "" }, MsgCity},
		{"postal too long", func(f *Form) { f.PostalCode = "1234567" }, MsgPostalCode},
		{"postal letters", func(f *Form) { f.PostalCode = "AB12" }, MsgPostalCode},
		{"no bank", func(f *Form) { f.Bank = "  " }, MsgBank},
		{"short card name", func(f *Form) { f.CardName = "Al" }, MsgCardName},
		{"card 12 digits", func(f *Form) { f.CardNumber = "1234 5678 9012" }, MsgCardNumber},
		{"card with dashes", func(f *Form) { f.CardNumber = "1234-5678-9012-3456" }, MsgCardNumber},
		{"month 13", func(f *Form) { f.Expiry = "13/25" }, MsgExpiry},
		{"month 00", func(f *Form) { f.Expiry = "00/25" }, MsgExpiry},
		{"four digit year", func(f *Form) { f.Expiry = "01/2026" }, MsgExpiry},
		{"cvv too short", func(f *Form) { f.CVV = "12" }, MsgCVV},
		{"cvv letters", func(f *Form) { f.CVV = "12a" }, MsgCVV},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.modify(&f)
			r := Validate(f)
			assert.Equal(t, []string{tt.want}, r.Errors)
		})
	}
}

func TestValidate_Accepts(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Form)
	}{
		{"card without spaces", func(f *Form) { f.CardNumber = "1234567890123456" }},
		{"december", func(f *Form) { f.Expiry = "12/30" }},
		{"four digit cvv", func(f *Form) { f.CVV = "1234" }},
		{"city with ñ and spaces", func(f *Form) { f.City = "La Coruña del Sur" }},
		{"decomposed accent", func(f *Form) { f.City = "Bogota\u0301" }},
		{"surrounding whitespace", func(f *Form) { f.PostalCode = " 1234 " }},
		{"accented address counted in runes", func(f *Form) { f.Address = "Ñuñoa" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.modify(&f)
			r := Validate(f)
			assert.True(t, r.OK(), "unexpected errors: %v", r.Errors)
		})
	}
}

func TestValidate_CollectsAll(t *testing.T) {
	r := Validate(Form{})
	assert.Equal(t, []string{
		MsgAddress,
		MsgCity,
		MsgPostalCode,
		MsgBank,
		MsgCardName,
		MsgCardNumber,
		MsgExpiry,
		MsgCVV,
	}, r.Errors)
}

func TestForm_WithoutCard(t *testing.T) {
	f := validForm().WithoutCard()
	assert.Empty(t, f.CardNumber)
	assert.Empty(t, f.CVV)
	assert.Equal(t, "Ana Pérez", f.CardName)
}
