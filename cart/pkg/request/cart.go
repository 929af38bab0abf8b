package request

// AddItem adds Quantity more units of ProductID to the cart.
type AddItem struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

// UpdateQuantity sets the cart quantity of ProductID to exactly Quantity.
// Zero removes the line.
type UpdateQuantity struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}
