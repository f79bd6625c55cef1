package cart

// ComputeTotal sums price times quantity over items in order. The raw
// floating point sum is kept; rounding is left to whoever displays it.
func ComputeTotal(items []Item) float64 {
	var total float64
	for _, it := range items {
		total += it.Product.Price * float64(it.Quantity)
	}
	return total
}
