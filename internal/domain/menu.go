package domain

// MenuItem is a static catalog record. Price is kept as text exactly as the
// catalog supplies it; it is validated when the item is added to a basket.
type MenuItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	ImageURL    string `json:"image_url"`
	Popular     bool   `json:"popular"`
}

// MenuExtra is an add-on that can be ordered with any menu item.
type MenuExtra struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

// Menu is the whole catalog as served to the presentation layer.
type Menu struct {
	Items  []MenuItem  `json:"items"`
	Extras []MenuExtra `json:"extras"`
}
