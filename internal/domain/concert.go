package domain

import "time"

// Concert is one show listing. Date is an ISO calendar date and Time a local
// 24h clock string, kept as stored so the front end renders them verbatim.
type Concert struct {
	ID           string `json:"id"`
	Venue        string `json:"venue"`
	City         string `json:"city"`
	Country      string `json:"country"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	TicketURL    string `json:"ticket_url"`
	SoldOut      bool   `json:"sold_out,omitempty"`
	FestivalName string `json:"festival_name,omitempty"`
	Description  string `json:"description,omitempty"`
	Image        string `json:"image,omitempty"`
}

// Upcoming reports whether the concert date is on or after now's calendar day.
func (c *Concert) Upcoming(now time.Time) bool {
	d, err := time.Parse("2006-01-02", c.Date)
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return !d.Before(today)
}
