package models

// CartLineItem is one equipment entry in a cart or in a quote's item snapshot.
// Equipment is a copy taken when the line was added, not a live reference.
type CartLineItem struct {
	Equipment Equipment `json:"equipment"`
	Quantity  int       `json:"quantity"`
}

// CartResponse represents the cart as returned to the storefront
type CartResponse struct {
	Items      []CartLineItem `json:"items"`
	TotalItems int            `json:"totalItems"`
}

// AddCartItemRequest is the body of POST /cart/items
// Example: {"equipmentId": 12}
type AddCartItemRequest struct {
	EquipmentID int64 `json:"equipmentId"`
}

// UpdateCartItemRequest is the body of PUT /cart/items/{id}
// Example: {"quantity": 3}
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}
