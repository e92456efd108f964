package cart

import "fmt"

// StockExceededError is a recoverable notice: the requested quantity was
// more than the product's stock. Max is what the cart allows.
type StockExceededError struct {
	ProductID int64
	Max       int
}

func (e *StockExceededError) Error() string {
	return fmt.Sprintf("stock exceeded for product %d: max %d", e.ProductID, e.Max)
}
