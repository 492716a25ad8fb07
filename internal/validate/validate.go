// Package validate is the gate between a draft extraction and an accepted
// event.
package validate

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pfrederiksen/event-ingest/internal/event"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	val.RegisterStructValidation(priceConsistency, event.Price{})
	return val
}

// priceConsistency requires amount and currency on paid prices and forbids
// them on free ones
func priceConsistency(sl validator.StructLevel) {
	p := sl.Current().Interface().(event.Price)
	if p.IsFree {
		if p.Amount != nil {
			sl.ReportError(p.Amount, "amount", "Amount", "free_without_amount", "")
		}
		if p.Currency != "" {
			sl.ReportError(p.Currency, "currency", "Currency", "free_without_currency", "")
		}
		return
	}
	if p.Amount == nil || *p.Amount <= 0 {
		sl.ReportError(p.Amount, "amount", "Amount", "paid_amount", "")
	}
	if p.Currency == "" {
		sl.ReportError(p.Currency, "currency", "Currency", "paid_currency", "")
	}
}

// Event reports whether e has every required field. It has no side effects.
func Event(e *event.Event) bool {
	return len(Errors(e)) == 0
}

// Errors lists the fields of e that failed validation, as JSON paths such as
// "organizer.name". A nil event reports a single "event" entry.
func Errors(e *event.Event) []string {
	if e == nil {
		return []string{"event"}
	}

	var fields []string
	if strings.TrimSpace(e.Title) == "" && e.Title != "" {
		fields = append(fields, "title")
	}
	if strings.TrimSpace(e.Description) == "" && e.Description != "" {
		fields = append(fields, "description")
	}

	err := v.Struct(e)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			ns := fe.Namespace()
			if i := strings.IndexByte(ns, '.'); i >= 0 {
				ns = ns[i+1:]
			}
			fields = append(fields, ns)
		}
	} else if err != nil {
		fields = append(fields, err.Error())
	}
	return fields
}
