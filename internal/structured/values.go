package structured

import (
	"strconv"
	"strings"
)

// Place is one entry of an event's location
type Place struct {
	Type    string // Place, VirtualLocation, or "" for a plain string
	Name    string
	URL     string
	Address string // street address, or the whole address when given as text
	City    string
	Region  string
	Country string
}

// Virtual reports whether the entry is an online location
func (p Place) Virtual() bool {
	return p.Type == "VirtualLocation"
}

// Places returns the event's locations. A single object, a string, or an
// array of either are accepted.
func (d *Data) Places() []Place {
	var out []Place
	for _, v := range list(d.Location) {
		switch loc := v.(type) {
		case string:
			if s := strings.TrimSpace(loc); s != "" {
				out = append(out, Place{Name: s})
			}
		case map[string]interface{}:
			p := Place{
				Type: typeName(stringField(loc, "@type")),
				Name: stringField(loc, "name"),
				URL:  stringField(loc, "url"),
			}
			switch addr := loc["address"].(type) {
			case string:
				p.Address = strings.TrimSpace(addr)
			case map[string]interface{}:
				p.Address = stringField(addr, "streetAddress")
				p.City = stringField(addr, "addressLocality")
				p.Region = stringField(addr, "addressRegion")
				p.Country = countryName(addr["addressCountry"])
			}
			out = append(out, p)
		}
	}
	return out
}

// countryName unwraps addressCountry, which may be a plain string or a
// Country object with a name
func countryName(v interface{}) string {
	switch c := v.(type) {
	case string:
		return strings.TrimSpace(c)
	case map[string]interface{}:
		if name := stringField(c, "name"); name != "" {
			return name
		}
		return stringField(c, "@id")
	}
	return ""
}

// Org is one organizer entry
type Org struct {
	Name  string
	URL   string
	Email string
	Phone string
}

// Organizers returns the event's organizers. Objects, plain names, and arrays
// of either are accepted.
func (d *Data) Organizers() []Org {
	var out []Org
	for _, v := range list(d.Organizer) {
		switch org := v.(type) {
		case string:
			out = append(out, Org{Name: strings.TrimSpace(org)})
		case map[string]interface{}:
			out = append(out, Org{
				Name:  stringField(org, "name"),
				URL:   stringField(org, "url"),
				Email: strings.TrimPrefix(stringField(org, "email"), "mailto:"),
				Phone: stringField(org, "telephone"),
			})
		}
	}
	return out
}

// Offer is the first ticket offer of an event
type Offer struct {
	Price    float64
	HasPrice bool
	Currency string
}

// FirstOffer returns the first entry of offers, if any
func (d *Data) FirstOffer() (Offer, bool) {
	items := list(d.Offers)
	if len(items) == 0 {
		return Offer{}, false
	}
	m, ok := items[0].(map[string]interface{})
	if !ok {
		return Offer{}, false
	}

	o := Offer{Currency: stringField(m, "priceCurrency")}
	price := stringField(m, "price")
	if price == "" {
		price = stringField(m, "lowPrice")
	}
	if price != "" {
		if f, err := strconv.ParseFloat(strings.TrimPrefix(price, "$"), 64); err == nil {
			o.Price = f
			o.HasPrice = true
		}
	}
	return o, true
}

// ImageURL returns the event image: a string, the first element of an array,
// or an ImageObject's url
func (d *Data) ImageURL() string {
	img := d.Image
	if arr, ok := img.([]interface{}); ok {
		if len(arr) == 0 {
			return ""
		}
		img = arr[0]
	}
	switch v := img.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]interface{}:
		if u := stringField(v, "url"); u != "" {
			return u
		}
		return stringField(v, "contentUrl")
	}
	return ""
}

// KeywordList returns the event keywords, given either as a comma separated
// string or as an array
func (d *Data) KeywordList() []string {
	switch v := d.Keywords.(type) {
	case string:
		return strings.Split(v, ",")
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s := stringValue(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// list wraps a single value in a slice; nil yields nil
func list(v interface{}) []interface{} {
	switch x := v.(type) {
	case nil:
		return nil
	case []interface{}:
		return x
	default:
		return []interface{}{x}
	}
}
