// Package items is the domain client for the Afazer /items endpoints:
// to-dos, shopping items, and country reference records, all sharing one
// backend shape distinguished by the type field.
package items

// Item types as stored by the backend.
const (
	TypeTask        = "task"
	TypeSupermarket = "supermarket"
	TypeCountry     = "country"
)

// Categories.
const (
	CategoryPriority    = "PRIORITY"
	CategoryOn          = "ON"
	CategoryOff         = "OFF"
	CategoryPay         = "PAY"
	CategorySupermarket = "SUPERMARKET"
	CategoryCountry     = "COUNTRY"
)

// Colors.
const (
	ColorBlue  = "BLUE"
	ColorGreen = "GREEN"
	ColorPink  = "PINK"
	ColorBrown = "BROWN"
)

// Dynamics carries the per-type extra fields. Shopping items use
// quantity/unit/price, countries use capital/population/language; notes is
// shared. Pointers keep absent fields out of the JSON payload.
type Dynamics struct {
	Quantity   *float64 `json:"quantity,omitempty"`
	Unit       *string  `json:"unit,omitempty"`
	Price      *float64 `json:"price,omitempty"`
	Notes      *string  `json:"notes,omitempty"`
	Capital    *string  `json:"capital,omitempty"`
	Population *int64   `json:"population,omitempty"`
	Language   *string  `json:"language,omitempty"`
}

// Item is the backend's unified record.
type Item struct {
	ID        string    `json:"id,omitempty"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt int64     `json:"createdAt"` // unix milliseconds
	Category  string    `json:"category"`
	Color     string    `json:"color"`
	Type      string    `json:"type"`
	Dynamics  *Dynamics `json:"dynamics,omitempty"`
}
