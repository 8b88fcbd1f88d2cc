package usecase

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

// OrderUseCase реализует просмотр заказов и смену их статуса сотрудниками.
type OrderUseCase struct {
	orderRepo  OrderRepository
	outboxRepo OutboxRepository
	txManager  TxManager
	metrics    ShopMetrics
	logger     logger.Logger
	pageSize   int
	now        func() time.Time
}

func NewOrderUC(
	orderRepo OrderRepository,
	outboxRepo OutboxRepository,
	txManager TxManager,
	metrics ShopMetrics,
	logger logger.Logger,
	pageSize int,
) *OrderUseCase {
	return &OrderUseCase{
		orderRepo:  orderRepo,
		outboxRepo: outboxRepo,
		txManager:  txManager,
		metrics:    metrics,
		logger:     logger,
		pageSize:   pageSize,
		now:        time.Now,
	}
}

// ChangeStatus перезаписывает статус заказа. Переходы между статусами не ограничены.
func (o *OrderUseCase) ChangeStatus(ctx context.Context, orderID string, newStatus string) (*StatusChange, error) {
	const op = "OrderUseCase.ChangeStatus"

	orderID = strings.TrimSpace(orderID)
	newStatus = strings.TrimSpace(newStatus)
	if orderID == "" || newStatus == "" {
		return nil, e.Wrap(op, e.ErrMissingParameter)
	}

	status := domain.OrderStatus(newStatus)
	if !status.IsValid() {
		return nil, e.Wrap(op, e.ErrInvalidStatus)
	}

	id, err := strconv.ParseInt(orderID, 10, 64)
	if err != nil || id <= 0 {
		return nil, e.Wrap(op, e.ErrOrderNotFound)
	}

	var change *StatusChange
	err = o.txManager.Do(ctx, func(ctx context.Context) error {
		oldStatus, err := o.orderRepo.UpdateStatus(ctx, id, status)
		if err != nil {
			return err
		}

		change = &StatusChange{OrderID: id, OldStatus: oldStatus, NewStatus: status}
		return o.writeStatusEvent(ctx, *change)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	o.metrics.OrderStatusChanged(change.OldStatus, change.NewStatus)
	o.logger.Infof("order %d status changed from %s to %s", id, change.OldStatus, change.NewStatus)

	return change, nil
}

// BulkChangeStatus меняет статус нескольких заказов в одной транзакции.
// Несуществующие ID пропускаются.
func (o *OrderUseCase) BulkChangeStatus(ctx context.Context, orderIDs []int64, newStatus string) ([]StatusChange, error) {
	const op = "OrderUseCase.BulkChangeStatus"

	if len(orderIDs) == 0 || strings.TrimSpace(newStatus) == "" {
		return nil, e.Wrap(op, e.ErrMissingParameter)
	}

	status := domain.OrderStatus(strings.TrimSpace(newStatus))
	if !status.IsValid() {
		return nil, e.Wrap(op, e.ErrInvalidStatus)
	}

	ids := slices.Clone(orderIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	var changes []StatusChange
	err := o.txManager.Do(ctx, func(ctx context.Context) error {
		old, err := o.orderRepo.UpdateStatuses(ctx, ids, status)
		if err != nil {
			return err
		}

		for _, id := range ids {
			oldStatus, ok := old[id]
			if !ok {
				continue
			}

			change := StatusChange{OrderID: id, OldStatus: oldStatus, NewStatus: status}
			if err := o.writeStatusEvent(ctx, change); err != nil {
				return err
			}
			changes = append(changes, change)
		}

		return nil
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	for _, change := range changes {
		o.metrics.OrderStatusChanged(change.OldStatus, change.NewStatus)
	}
	o.logger.Infof("%d orders marked as %s", len(changes), status)

	return changes, nil
}

func (o *OrderUseCase) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	const op = "OrderUseCase.GetOrder"

	order, err := o.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return order, nil
}

// ListOrders возвращает страницу заказов, новые сверху.
func (o *OrderUseCase) ListOrders(ctx context.Context, filter OrderFilter) (*OrderPage, error) {
	const op = "OrderUseCase.ListOrders"

	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, e.Wrap(op, e.ErrInvalidStatus)
	}
	if filter.Limit <= 0 {
		filter.Limit = o.pageSize
	}
	filter.Search = strings.TrimSpace(filter.Search)

	total, err := o.orderRepo.Count(ctx, filter)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	filter.Page = normalizePage(filter.Page, total, filter.Limit)

	orders, err := o.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &OrderPage{
		Orders: orders,
		Total:  total,
		Page:   filter.Page,
		Pages:  pages(total, filter.Limit),
	}, nil
}

func (o *OrderUseCase) writeStatusEvent(ctx context.Context, change StatusChange) error {
	event, err := NewOrderStatusChangedEvent(change.OrderID, change.OldStatus, change.NewStatus, o.now())
	if err != nil {
		return err
	}

	_, err = o.outboxRepo.Create(ctx, event)
	return err
}
