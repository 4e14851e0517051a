package orders

import (
	"context"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/db/models"
)

// RestoreStock returns every line's quantity to its variant or product. The
// restorer must be bound to the transaction that cancels the order.
func RestoreStock(ctx context.Context, stock StockRestorer, items []models.OrderItem) error {
	for _, item := range items {
		if err := stock.IncrementStock(ctx, item.ProductID, item.VariantID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}
