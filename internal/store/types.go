package store

// ApiListing represents a single listing record from the upstream API.
type ApiListing struct {
	ID           string `json:"_id"`
	ShortID      string `json:"id"`
	InternalName string `json:"internalName"`
	Status       string `json:"status"`
}

// ApiBooking represents a single reservation record from the upstream API.
type ApiBooking struct {
	ID           string  `json:"_id"`
	Code         string  `json:"id"`
	ListingID    string  `json:"_idlisting"`
	Type         string  `json:"type"`
	Status       string  `json:"status"`
	CheckInDate  string  `json:"checkInDate"`
	CheckInTime  *string `json:"checkInTime"`
	CheckOutDate string  `json:"checkOutDate"`
	CheckOutTime *string `json:"checkOutTime"`
	Source       string  `json:"source"`

	Listing *struct {
		InternalName string `json:"internalName"`
	} `json:"listing"`
	Partner *struct {
		Name string `json:"name"`
	} `json:"partner"`
	Guests *struct {
		Adults   int `json:"adults"`
		Children int `json:"children"`
		Infants  int `json:"infants"`
	} `json:"guests"`
	GuestsDetails *struct {
		Name string `json:"name"`
		List []struct {
			Email  string `json:"email"`
			Phones []struct {
				ISO string `json:"iso"`
			} `json:"phones"`
		} `json:"list"`
	} `json:"guestsDetails"`
	Price *struct {
		Currency string   `json:"currency"`
		Total    *float64 `json:"_f_total"`
	} `json:"price"`
	Stats *struct {
		NightsCount int `json:"nightsCount"`
	} `json:"stats"`
}
