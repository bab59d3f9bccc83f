package tender

import (
	"strconv"
	"strings"
)

// Type identifies a payment method accepted at the register.
type Type string

const (
	Cash        Type = "cash"
	CreditCard  Type = "credit"
	DebitCard   Type = "debit"
	Pix         Type = "pix"
	PaymentLink Type = "paymentlink"
)

// Order is the canonical tender order. Encode emits segments in this
// order and report tie-breaks resolve to the earliest entry.
var Order = []Type{Cash, CreditCard, DebitCard, Pix, PaymentLink}

// Aliases aceptados en los descriptores persistidos (case-insensitive).
var aliases = map[string]Type{
	"cash":        Cash,
	"credit":      CreditCard,
	"creditcard":  CreditCard,
	"debit":       DebitCard,
	"debitcard":   DebitCard,
	"pix":         Pix,
	"paymentlink": PaymentLink,
	"link":        PaymentLink,
}

// ParseType resolves a descriptor token to a tender type.
func ParseType(token string) (Type, bool) {
	t, ok := aliases[strings.ToLower(strings.TrimSpace(token))]
	return t, ok
}

// Breakdown is the decoded form of a sale's tender descriptor: how much
// of the final amount was paid with each tender, plus the taxa metadata
// recorded for payment links. It is derived data, recomputed from the
// descriptor on demand and never persisted on its own.
type Breakdown struct {
	Amounts map[Type]float64 `json:"amounts"`
	// Fees holds the informational taxa_N% percentage per tender. The
	// amounts above already embed the fee; it is never re-derived.
	Fees map[Type]float64 `json:"fees,omitempty"`
	// Fallback marks that at least one token was not recognized and its
	// amount was assigned to Cash. Legacy behavior: a descriptor never
	// fails a sale, but audits need to tell this apart from a real cash
	// payment.
	Fallback bool `json:"fallback,omitempty"`
}

func newBreakdown() Breakdown {
	return Breakdown{
		Amounts: map[Type]float64{},
		Fees:    map[Type]float64{},
	}
}

// Total returns the sum of all decoded tender amounts.
func (b Breakdown) Total() float64 {
	var sum float64
	for _, v := range b.Amounts {
		sum += v
	}
	return sum
}

// Epsilon for money comparisons.
const Epsilon = 0.01

// Sums reports whether the breakdown adds up to the sale's final amount.
func (b Breakdown) Sums(finalAmount float64) bool {
	diff := b.Total() - finalAmount
	if diff < 0 {
		diff = -diff
	}
	return diff <= Epsilon
}

// ActiveTenders counts tenders with a positive decoded amount.
func (b Breakdown) ActiveTenders() int {
	n := 0
	for _, v := range b.Amounts {
		if v > 0 {
			n++
		}
	}
	return n
}

// Decode parses a tender descriptor against the sale's final amount.
//
// Grammar (wire format, must stay backward compatible):
//
//	""                          -> everything on cash
//	"pix"                       -> everything on that tender
//	"paymentlink:taxa_10%"      -> everything on paymentlink, taxa metadata
//	"cash:2000.00|debit:700.00" -> literal per-segment amounts, an optional
//	                               third "taxa_N%" piece per segment
//
// Decode is total: it never returns an error. Unknown tokens degrade to
// cash (Fallback=true) and malformed numbers parse as 0.
func Decode(descriptor string, finalAmount float64) Breakdown {
	b := newBreakdown()

	d := strings.TrimSpace(descriptor)
	if d == "" {
		b.Amounts[Cash] = finalAmount
		return b
	}

	segments := strings.Split(d, "|")

	if len(segments) == 1 {
		parts := strings.SplitN(segments[0], ":", 3)
		switch {
		case len(parts) == 1:
			// Simple form: a bare tender token.
			t, ok := ParseType(parts[0])
			if !ok {
				t = Cash
				b.Fallback = true
			}
			b.Amounts[t] = finalAmount
			return b
		case len(parts) == 2 && isFeeToken(parts[1]):
			// Simple form with taxa: by definition a payment link. The
			// final amount already embeds the fee, so it is assigned in
			// full; the percentage is metadata only.
			b.Amounts[PaymentLink] = finalAmount
			b.Fees[PaymentLink] = parseFee(parts[1])
			return b
		}
		// Single "type:amount" segment: composite with one entry.
	}

	for _, seg := range segments {
		parts := strings.SplitN(seg, ":", 3)
		t, ok := ParseType(parts[0])
		if !ok {
			t = Cash
			b.Fallback = true
		}
		var amount float64
		if len(parts) >= 2 {
			if isFeeToken(parts[1]) {
				b.Fees[t] = parseFee(parts[1])
			} else {
				amount = parseAmount(parts[1])
			}
		}
		if len(parts) == 3 && isFeeToken(parts[2]) {
			b.Fees[t] = parseFee(parts[2])
		}
		// Repeated tenders accumulate instead of overwriting.
		b.Amounts[t] += amount
	}
	return b
}

// Encode serializes a breakdown back to the composite descriptor form,
// segments in canonical tender order. It is the inverse of Decode for
// composite descriptors: Decode(Encode(b), total) reproduces b's amounts
// and fees.
func Encode(b Breakdown) string {
	var segs []string
	for _, t := range Order {
		amount, hasAmount := b.Amounts[t]
		fee, hasFee := b.Fees[t]
		if !hasAmount && !hasFee {
			continue
		}
		seg := string(t) + ":" + strconv.FormatFloat(amount, 'f', 2, 64)
		if hasFee {
			seg += ":taxa_" + strconv.FormatFloat(fee, 'f', -1, 64) + "%"
		}
		segs = append(segs, seg)
	}
	return strings.Join(segs, "|")
}

// IsComposite reports whether the descriptor uses the composite form,
// i.e. carries literal per-segment amounts that must add up to the
// sale's final amount.
func IsComposite(descriptor string) bool {
	d := strings.TrimSpace(descriptor)
	if d == "" {
		return false
	}
	segments := strings.Split(d, "|")
	if len(segments) > 1 {
		return true
	}
	parts := strings.SplitN(segments[0], ":", 3)
	return len(parts) >= 2 && !isFeeToken(parts[1])
}

// IsMixed reports whether the descriptor explicitly declares more than
// one tender segment.
func IsMixed(descriptor string) bool {
	return len(strings.Split(strings.TrimSpace(descriptor), "|")) > 1
}

func isFeeToken(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.HasPrefix(s, "taxa_") && strings.HasSuffix(s, "%")
}

func parseFee(s string) float64 {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "taxa_")
	s = strings.TrimSuffix(s, "%")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseAmount(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
