package storefront

import (
	"context"

	"github.com/afandal/storeadmin/app/models"
	khttp "github.com/afandal/storeadmin/pkg/http"
)

func (c *Client) ListOrders(ctx context.Context, sess Session) ([]models.Order, error) {
	env, err := c.do(ctx, sess, "orders.list", authRequired,
		khttp.Post(c.url("/api/order/list")).Body(map[string]any{}))
	if err != nil {
		return nil, err
	}
	if env.Orders == nil {
		return []models.Order{}, nil
	}
	return env.Orders, nil
}

// UpdateOrderStatus sets an order's status code.
func (c *Client) UpdateOrderStatus(ctx context.Context, sess Session, orderID, status string) (string, error) {
	env, err := c.do(ctx, sess, "orders.status", authRequired,
		khttp.Post(c.url("/api/order/status")).Body(map[string]string{
			"orderId": orderID,
			"status":  status,
		}))
	if err != nil {
		return "", err
	}
	return messageOr(env, "Status updated"), nil
}
