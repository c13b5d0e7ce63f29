package testsupport

// ProductDoc returns raw product fields the way the remote stores them.
// Prices are float64 because JSON round-trips numbers as float64.
func ProductDoc(name string, price float64, category string) map[string]any {
	return map[string]any{
		"name":     name,
		"price":    price,
		"category": category,
	}
}

// CartItemDoc returns raw cart line-item fields for owner uid.
func CartItemDoc(owner, productID string, unitPrice float64, quantity int) map[string]any {
	return map[string]any{
		"ownerId":   owner,
		"productId": productID,
		"unitPrice": unitPrice,
		// Stored as float64 to match what a JSON decode would produce.
		"quantity": float64(quantity),
	}
}
