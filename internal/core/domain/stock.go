package domain

// StockItem is a manually maintained inventory line. Writes are
// last-write-wins with no reservation protocol: whichever actor saved last
// owns the values. Order is a display rank only.
type StockItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
	Order       int    `json:"order"`
}

func (s *StockItem) Validate() error {
	if s.Name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if s.Quantity < 0 {
		return &ValidationError{Field: "quantity", Reason: "must not be negative"}
	}
	return nil
}
