package response

import (
	"time"

	"github.com/google/uuid"

	"github.com/Alturino/salesrep/order/pkg/request"
)

func (c Cart) Order(id uuid.UUID, customerID string, orderDate time.Time) request.CreateOrder {
	orderItems := make([]request.OrderItem, len(c.CartItems))
	for i, item := range c.CartItems {
		orderItems[i] = request.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Subtotal:  item.Subtotal,
			Quantity:  item.Quantity,
		}
	}
	return request.CreateOrder{
		ID:         id,
		CustomerID: customerID,
		OrderDate:  orderDate,
		Total:      c.Total,
		OrderItems: orderItems,
	}
}
