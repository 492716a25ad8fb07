package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pfrederiksen/event-ingest/internal/event"
)

var (
	amountPattern   = regexp.MustCompile(`([$€£])?\s?(\d{1,3}(?:,\d{3})+|\d+)(\.\d{2})?`)
	currencyPattern = regexp.MustCompile(`\b(USD|EUR|GBP|CAD|AUD)\b`)

	currencySymbols = map[string]string{
		"$": "USD",
		"€": "EUR",
		"£": "GBP",
	}
)

// Price extracts the cost of attending. Pages with no price information are
// assumed to be free.
func (x *Extractor) Price(src Source) *event.Price {
	price, _ := first(
		func() (*event.Price, bool) {
			if src.Data == nil {
				return nil, false
			}
			if src.Data.FreeEntry {
				return event.Free(), true
			}
			offer, ok := src.Data.FirstOffer()
			if !ok || !offer.HasPrice {
				return nil, false
			}
			return event.Paid(offer.Price, offer.Currency), true
		},
		func() (*event.Price, bool) {
			for _, sel := range x.Selectors.Price {
				if p, ok := ParsePrice(src.Doc.Text(sel)); ok {
					return p, true
				}
			}
			return nil, false
		},
		constant(event.Free()),
	)
	return price
}

// ParsePrice interprets human-readable price text. Any mention of "free"
// yields a free price; otherwise the first amount in the text is used. It
// reports false when the text carries no price information.
func ParsePrice(text string) (*event.Price, bool) {
	if text == "" {
		return nil, false
	}
	if strings.Contains(strings.ToLower(text), "free") {
		return event.Free(), true
	}

	m := amountPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(m[2], ",", "")+m[3], 64)
	if err != nil {
		return nil, false
	}

	currency := currencySymbols[m[1]]
	if currency == "" {
		if c := currencyPattern.FindString(strings.ToUpper(text)); c != "" {
			currency = c
		}
	}
	return event.Paid(amount, currency), true
}
