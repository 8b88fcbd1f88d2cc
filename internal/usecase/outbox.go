package usecase

import (
	"encoding/json"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/google/uuid"
)

// OutboxStatus — состояние события в таблице outbox_events.
type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

// OutboxEventType — тип доменного события заказа.
type OutboxEventType string

const (
	OrderCreated       OutboxEventType = "order.created"
	OrderStatusChanged OutboxEventType = "order.status_changed"
)

// OutboxEvent — событие, записанное в той же транзакции, что и изменение заказа.
// Воркер outbox позже отправляет Payload в Kafka с ключом AggregateID.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   OutboxEventType
	AggregateID int64
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// OrderItemPayload — позиция заказа в событии.
type OrderItemPayload struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

// OrderCreatedPayload — тело события order.created.
type OrderCreatedPayload struct {
	EventID       string             `json:"event_id"`
	EventType     OutboxEventType    `json:"event_type"`
	OrderID       int64              `json:"order_id"`
	CustomerEmail string             `json:"customer_email"`
	Status        domain.OrderStatus `json:"status"`
	TotalAmount   string             `json:"total_amount"`
	TotalItems    int                `json:"total_items"`
	Items         []OrderItemPayload `json:"items"`
	OccurredAt    time.Time          `json:"occurred_at"`
}

// OrderStatusChangedPayload — тело события order.status_changed.
type OrderStatusChangedPayload struct {
	EventID    string             `json:"event_id"`
	EventType  OutboxEventType    `json:"event_type"`
	OrderID    int64              `json:"order_id"`
	OldStatus  domain.OrderStatus `json:"old_status"`
	NewStatus  domain.OrderStatus `json:"new_status"`
	OccurredAt time.Time          `json:"occurred_at"`
}

func NewOrderCreatedEvent(order *domain.Order, now time.Time) (*OutboxEvent, error) {
	eventID := uuid.NewString()

	items := make([]OrderItemPayload, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemPayload{
			ProductID: item.ProductID,
			Name:      item.ProductName,
			Quantity:  item.Quantity,
			Price:     item.Price.StringFixed(2),
		})
	}

	payload, err := json.Marshal(OrderCreatedPayload{
		EventID:       eventID,
		EventType:     OrderCreated,
		OrderID:       order.ID,
		CustomerEmail: order.CustomerEmail,
		Status:        order.Status,
		TotalAmount:   order.TotalAmount().StringFixed(2),
		TotalItems:    order.TotalItems(),
		Items:         items,
		OccurredAt:    now,
	})
	if err != nil {
		return nil, err
	}

	return newOutboxEvent(eventID, OrderCreated, order.ID, payload, now), nil
}

func NewOrderStatusChangedEvent(orderID int64, oldStatus, newStatus domain.OrderStatus, now time.Time) (*OutboxEvent, error) {
	eventID := uuid.NewString()

	payload, err := json.Marshal(OrderStatusChangedPayload{
		EventID:    eventID,
		EventType:  OrderStatusChanged,
		OrderID:    orderID,
		OldStatus:  oldStatus,
		NewStatus:  newStatus,
		OccurredAt: now,
	})
	if err != nil {
		return nil, err
	}

	return newOutboxEvent(eventID, OrderStatusChanged, orderID, payload, now), nil
}

func newOutboxEvent(eventID string, eventType OutboxEventType, aggregateID int64, payload []byte, now time.Time) *OutboxEvent {
	return &OutboxEvent{
		EventID:     eventID,
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     payload,
		Status:      Pending,
		CreatedAt:   now,
	}
}
