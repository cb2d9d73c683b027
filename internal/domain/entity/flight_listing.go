package entity

import "time"

// ListingHeader is the fixed column layout of the listing table
var ListingHeader = []string{
	"Search_URL",
	"Price",
	"Outbound_Timing",
	"Outbound_Airline",
	"Outbound_Stops",
	"Outbound_Layover_Airport",
	"Outbound_Total_Duration",
	"Return_Timing",
	"Return_Airline",
	"Return_Stops",
	"Return_Layover_Airport",
	"Return_Total_Duration",
}

// Leg is one direction of an itinerary as shown on the result page
type Leg struct {
	Timing   string
	Airline  string
	Stops    string
	Layover  string
	Duration string
}

// FlightListingRecord is one result item of a search page
type FlightListingRecord struct {
	SearchURL string
	Price     string
	Outbound  Leg
	Return    *Leg
	ScrapedAt time.Time
}

// Row flattens the record into the 12 listing columns.
// Return columns are blank for one-way items.
func (r FlightListingRecord) Row() []string {
	row := make([]string, 0, len(ListingHeader))
	row = append(row, r.SearchURL, r.Price)
	row = append(row, r.Outbound.fields()...)
	if r.Return != nil {
		row = append(row, r.Return.fields()...)
	} else {
		row = append(row, "", "", "", "", "")
	}
	return row
}

func (l Leg) fields() []string {
	return []string{l.Timing, l.Airline, l.Stops, l.Layover, l.Duration}
}
