package model

// Order is a request to consume stock. ID is caller-supplied correlation
// only, it is not a key into any stored record.
type Order struct {
	ID    int64       `json:"id"`
	Items []OrderItem `json:"items"`
}

// OrderItem references a stored product by its surrogate identifier and
// carries the requested quantity, not the stored one.
type OrderItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}
