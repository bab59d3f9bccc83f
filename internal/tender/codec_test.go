package tender

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode_EmptyDescriptorIsAllCash(t *testing.T) {
	b := Decode("", 150.75)

	assert.Equal(t, 150.75, b.Amounts[Cash], "Expected full amount on cash")
	assert.False(t, b.Fallback, "Empty descriptor is a normal cash sale, not a fallback")
	assert.True(t, b.Sums(150.75))
}

func TestDecode_SimpleForm(t *testing.T) {
	cases := []struct {
		descriptor string
		want       Type
	}{
		{"cash", Cash},
		{"CASH", Cash},
		{"credit", CreditCard},
		{"creditcard", CreditCard},
		{"debit", DebitCard},
		{"pix", Pix},
		{"paymentlink", PaymentLink},
		{"link", PaymentLink},
	}

	for _, tc := range cases {
		t.Run(tc.descriptor, func(t *testing.T) {
			b := Decode(tc.descriptor, 200.00)
			assert.Equal(t, 200.00, b.Amounts[tc.want])
			assert.False(t, b.Fallback)
		})
	}
}

// Documented legacy behavior: an unknown token never fails the sale, the
// full amount degrades to cash. This test exists so that any future change
// here is intentional, not accidental.
func TestDecode_UnknownTokenFallsBackToCash(t *testing.T) {
	b := Decode("voucher", 80.00)

	assert.Equal(t, 80.00, b.Amounts[Cash], "Expected full amount assigned to cash")
	assert.True(t, b.Fallback, "Expected the fallback flag so audits can spot it")
}

func TestDecode_SimpleFormWithTaxaIsPaymentLink(t *testing.T) {
	b := Decode("paymentlink:taxa_10%", 1800.00)

	assert.Equal(t, 1800.00, b.Amounts[PaymentLink], "Final amount already embeds the fee")
	assert.Equal(t, 10.0, b.Fees[PaymentLink], "taxa is metadata only")
	assert.True(t, b.Sums(1800.00))
}

func TestDecode_CompositeForm(t *testing.T) {
	b := Decode("cash:2000.00|debit:700.00", 2700.00)

	assert.Equal(t, 2000.00, b.Amounts[Cash])
	assert.Equal(t, 700.00, b.Amounts[DebitCard])
	assert.True(t, b.Sums(2700.00))
	assert.Equal(t, 2, b.ActiveTenders())
}

func TestDecode_CompositeAmountsAreLiteral(t *testing.T) {
	// Segment amounts are taken as written, never re-derived from the
	// sale total, even when they disagree with it.
	b := Decode("cash:100.00|pix:50.00", 999.00)

	assert.Equal(t, 100.00, b.Amounts[Cash])
	assert.Equal(t, 50.00, b.Amounts[Pix])
	assert.False(t, b.Sums(999.00))
}

func TestDecode_CompositeWithPerSegmentTaxa(t *testing.T) {
	b := Decode("cash:300.00|paymentlink:500.00:taxa_5%", 800.00)

	assert.Equal(t, 300.00, b.Amounts[Cash])
	assert.Equal(t, 500.00, b.Amounts[PaymentLink])
	assert.Equal(t, 5.0, b.Fees[PaymentLink])
	assert.Empty(t, b.Fees[Cash])
}

func TestDecode_RepeatedTendersAccumulate(t *testing.T) {
	b := Decode("cash:100.00|cash:50.00", 150.00)

	assert.Equal(t, 150.00, b.Amounts[Cash])
}

func TestDecode_UnknownTokenInCompositeGoesToCash(t *testing.T) {
	b := Decode("voucher:120.00|debit:80.00", 200.00)

	assert.Equal(t, 120.00, b.Amounts[Cash])
	assert.Equal(t, 80.00, b.Amounts[DebitCard])
	assert.True(t, b.Fallback)
}

func TestDecode_MalformedNumbersParseAsZero(t *testing.T) {
	b := Decode("cash:abc|debit:700.00", 700.00)

	assert.Equal(t, 0.0, b.Amounts[Cash])
	assert.Equal(t, 700.00, b.Amounts[DebitCard])
}

func TestDecode_MalformedTaxaParsesAsZero(t *testing.T) {
	b := Decode("paymentlink:taxa_x%", 500.00)

	assert.Equal(t, 500.00, b.Amounts[PaymentLink])
	assert.Equal(t, 0.0, b.Fees[PaymentLink])
}

func TestDecode_NeverPanics(t *testing.T) {
	for _, d := range []string{
		"|", "::", "cash:", ":100", "|||", "cash:100:taxa", "taxa_5%",
		"a:b:c:d", "   ", "pix|", ":taxa_1%",
	} {
		assert.NotPanics(t, func() { Decode(d, 10.0) }, "descriptor %q", d)
	}
}

func TestEncode_CanonicalOrder(t *testing.T) {
	b := Decode("debit:700.00|cash:2000.00", 2700.00)

	assert.Equal(t, "cash:2000.00|debit:700.00", Encode(b))
}

func TestEncode_IncludesTaxaMetadata(t *testing.T) {
	b := Decode("cash:300.00|paymentlink:500.00:taxa_5%", 800.00)

	assert.Equal(t, "cash:300.00|paymentlink:500.00:taxa_5%", Encode(b))
}

// Round-trip stability: re-decoding an encoded breakdown reproduces the
// same amounts and fees.
func TestRoundTrip_CompositeDescriptors(t *testing.T) {
	descriptors := []struct {
		d     string
		total float64
	}{
		{"cash:2000.00|debit:700.00", 2700.00},
		{"cash:300.00|paymentlink:500.00:taxa_5%", 800.00},
		{"pix:150.00", 150.00},
		{"cash:100.00|credit:50.00|debit:25.00|pix:12.50|link:12.50", 200.00},
	}

	for _, tc := range descriptors {
		t.Run(tc.d, func(t *testing.T) {
			first := Decode(tc.d, tc.total)
			second := Decode(Encode(first), tc.total)

			assert.Equal(t, first.Amounts, second.Amounts)
			assert.Equal(t, first.Fees, second.Fees)
		})
	}
}
