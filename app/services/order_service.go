package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/afandal/storeadmin/app/models"
	"github.com/afandal/storeadmin/app/orderstatus"
	"github.com/afandal/storeadmin/app/storefront"
	"github.com/afandal/storeadmin/pkg/event"
	"github.com/afandal/storeadmin/pkg/logger"
	"github.com/afandal/storeadmin/pkg/metrics"
	"github.com/afandal/storeadmin/pkg/reqid"
	"github.com/afandal/storeadmin/pkg/validate"
)

// EventStatusChanged is fired with a StatusChange after a successful update.
const EventStatusChanged = "order.status.changed"

// OrderView is an order decorated for the dashboard.
type OrderView struct {
	models.Order
	StatusLabel    string                `json:"statusLabel"`
	Indicator      orderstatus.Indicator `json:"indicator"`
	SelectedOption string                `json:"selectedOption"`
	PreviewImage   string                `json:"previewImage"`
	CustomerName   string                `json:"customerName"`
}

func NewOrderView(o models.Order) OrderView {
	return OrderView{
		Order:          o,
		StatusLabel:    orderstatus.DisplayLabelFor(o.Status),
		Indicator:      orderstatus.IndicatorFor(o.Status),
		SelectedOption: orderstatus.SelectedOption(o.Status),
		PreviewImage:   o.PreviewImage(),
		CustomerName:   o.Address.FullName(),
	}
}

// StatusChange describes one applied status update.
type StatusChange struct {
	OrderID    string    `json:"orderId"`
	From       string    `json:"from,omitempty"`
	To         string    `json:"to"`
	Label      string    `json:"label"`
	Regression bool      `json:"regression"`
	RequestID  string    `json:"requestId,omitempty"`
	At         time.Time `json:"at"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,max=40"`
}

type OrderService struct {
	client *storefront.Client
	audit  Auditor
	now    func() time.Time
}

const previousLookupTimeout = 3 * time.Second

func NewOrderService(client *storefront.Client, audit Auditor) *OrderService {
	return &OrderService{client: client, audit: audit, now: time.Now}
}

func (s *OrderService) List(ctx context.Context, sess storefront.Session) ([]OrderView, error) {
	orders, err := s.client.ListOrders(ctx, sess)
	if err != nil {
		return nil, err
	}
	views := make([]OrderView, len(orders))
	for i, o := range orders {
		views[i] = NewOrderView(o)
	}
	return views, nil
}

// UpdateStatus sets an order's status from a label or code. Any transition
// is allowed; moving out of delivered or cancelled is logged as a warning.
// The previous status is looked up first on a best-effort basis: a failed
// lookup never blocks the change.
func (s *OrderService) UpdateStatus(ctx context.Context, sess storefront.Session, orderID string, in StatusRequest) (*OrderView, error) {
	if err := check(&in); err != nil {
		return nil, err
	}
	if !validate.ObjectID(orderID) {
		return nil, invalid("orderId", "The orderId must be a valid id.")
	}
	code := orderstatus.CanonicalCodeFor(in.Status)
	log := logger.WithCtx(ctx)

	current, err := s.previous(ctx, sess, orderID)
	if errors.Is(err, storefront.ErrUnauthorized) {
		record(ctx, s.audit, ActionOrderStatus, orderID, err)
		return nil, err
	}
	if err != nil {
		log.Warn("order status: previous status unknown", "order_id", orderID, "error", err)
	}

	from := current.Status
	regression := from != "" && orderstatus.IsRegression(from, code)
	if regression {
		log.Warn("order status leaves a terminal state", "order_id", orderID, "from", from, "to", code)
	}
	statusLabel := code
	if _, known := orderstatus.Parse(code); !known {
		log.Warn("order status is not a known code", "order_id", orderID, "status", code)
		statusLabel = "other"
	}

	_, err = s.client.UpdateOrderStatus(ctx, sess, orderID, code)
	record(ctx, s.audit, ActionOrderStatus, orderID, err)
	if err != nil {
		return nil, err
	}

	metrics.StatusUpdates.WithLabelValues(statusLabel, strconv.FormatBool(regression)).Inc()
	current.Status = code
	view := NewOrderView(current)

	event.EmitAsync(ctx, EventStatusChanged, StatusChange{
		OrderID:    orderID,
		From:       from,
		To:         code,
		Label:      view.StatusLabel,
		Regression: regression,
		RequestID:  reqid.FromCtx(ctx),
		At:         s.now().UTC(),
	})
	return &view, nil
}

// previous finds orderID in the order list. Orders missing from the list,
// or a failed list, yield an order carrying only the id.
func (s *OrderService) previous(ctx context.Context, sess storefront.Session, orderID string) (models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, previousLookupTimeout)
	defer cancel()

	current := models.Order{ID: orderID}
	orders, err := s.client.ListOrders(ctx, sess)
	if err != nil {
		return current, err
	}
	for _, o := range orders {
		if o.ID == orderID {
			return o, nil
		}
	}
	return current, nil
}
