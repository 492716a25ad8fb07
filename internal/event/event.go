package event

import (
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Platform identifies which parser produced an event
type Platform string

const (
	PlatformMeetup   Platform = "meetup"
	PlatformFacebook Platform = "facebook"
	PlatformWebsite  Platform = "website"
	PlatformOther    Platform = "other"
)

// LocationType is the kind of venue an event takes place at
type LocationType string

const (
	LocationPhysical LocationType = "physical"
	LocationVirtual  LocationType = "virtual"
	LocationHybrid   LocationType = "hybrid"
)

// idNamespace scopes the name-based UUIDs generated for events.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/pfrederiksen/event-ingest"))

// Dates holds the schedule of an event
type Dates struct {
	Start    time.Time  `json:"start" validate:"required"`
	End      *time.Time `json:"end,omitempty"`
	Timezone string     `json:"timezone,omitempty"`
}

// Location is a tagged variant over physical, virtual and hybrid venues.
// Venue and address fields apply to physical and hybrid locations, URL to
// virtual and hybrid ones.
type Location struct {
	Type    LocationType `json:"type" validate:"required,oneof=physical virtual hybrid"`
	Venue   string       `json:"venue,omitempty"`
	Address string       `json:"address,omitempty"`
	City    string       `json:"city,omitempty"`
	State   string       `json:"state,omitempty"`
	Country string       `json:"country,omitempty"`
	URL     string       `json:"url,omitempty"`
}

// Organizer describes who runs an event
type Organizer struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Price describes the cost of attending. Amount and Currency are only set
// when IsFree is false.
type Price struct {
	IsFree   bool     `json:"isFree"`
	Amount   *float64 `json:"amount,omitempty"`
	Currency string   `json:"currency,omitempty"`
}

// Event is the normalized record extracted from an event page
type Event struct {
	ID          string    `json:"id" validate:"required"`
	StableKey   string    `json:"-"` // Same for every extraction of one URL; derived, never serialized
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description" validate:"required"`
	Dates       Dates     `json:"dates"`
	Location    Location  `json:"location"`
	Organizer   Organizer `json:"organizer"`
	Price       *Price    `json:"price" validate:"required"`
	Tags        []string  `json:"tags"`
	Categories  []string  `json:"categories,omitempty"`
	Platform    Platform  `json:"platform" validate:"required,oneof=meetup facebook website other"`
	SourceURL   string    `json:"sourceUrl" validate:"required"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt" validate:"required"`
	UpdatedAt   time.Time `json:"updatedAt" validate:"required"`
}

// GenerateID creates an identifier for one extraction of sourceURL. It is
// deterministic in its inputs, so two extractions at different instants get
// different IDs.
func GenerateID(platform Platform, sourceURL string, createdAt time.Time) string {
	name := string(platform) + "|" + sourceURL + "|" + createdAt.UTC().Format(time.RFC3339Nano)
	return fmt.Sprintf("%s-%s", platform, uuid.NewSHA1(idNamespace, []byte(name)))
}

// GenerateStableKey creates an identifier that only depends on the platform
// and source URL
func GenerateStableKey(platform Platform, sourceURL string) string {
	h := sha1.New()
	h.Write([]byte(string(platform) + "|" + sourceURL))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// UnmarshalJSON decodes an event and derives StableKey from its platform and
// source URL.
func (e *Event) UnmarshalJSON(data []byte) error {
	type plain Event
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = Event(p)
	if e.SourceURL != "" {
		e.StableKey = GenerateStableKey(e.Platform, e.SourceURL)
	}
	return nil
}

// NewDraft creates an unvalidated Event with ID, StableKey and timestamps
// populated
func NewDraft(platform Platform, sourceURL string, now time.Time) *Event {
	now = now.UTC()
	return &Event{
		ID:        GenerateID(platform, sourceURL, now),
		StableKey: GenerateStableKey(platform, sourceURL),
		Platform:  platform,
		SourceURL: sourceURL,
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Free returns a Price for a free event
func Free() *Price {
	return &Price{IsFree: true}
}

// Paid returns a Price for a paid event. A non-positive amount is treated as
// free.
func Paid(amount float64, currency string) *Price {
	if amount <= 0 {
		return Free()
	}
	if currency == "" {
		currency = "USD"
	}
	return &Price{IsFree: false, Amount: &amount, Currency: currency}
}

// Clone returns a deep copy of the event
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	c := *e
	if e.Dates.End != nil {
		end := *e.Dates.End
		c.Dates.End = &end
	}
	if e.Price != nil {
		p := *e.Price
		if e.Price.Amount != nil {
			amount := *e.Price.Amount
			p.Amount = &amount
		}
		c.Price = &p
	}
	if e.Tags != nil {
		c.Tags = append([]string{}, e.Tags...)
	}
	if e.Categories != nil {
		c.Categories = append([]string{}, e.Categories...)
	}
	return &c
}
