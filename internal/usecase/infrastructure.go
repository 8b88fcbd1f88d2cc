package usecase

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// TxManager выполняет fn в одной транзакции: все записи внутри fn фиксируются вместе или не фиксируются вовсе.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type ImagesInfra interface {
	UploadImage(ctx context.Context, req *UploadImageReq) (string, error)
	CleanupImages(keys []string)
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}

// ShopMetrics собирает бизнес-метрики магазина.
type ShopMetrics interface {
	CartChanged(operation string, success bool)
	OrderPlaced(total decimal.Decimal, items int)
	CheckoutFailed(reason string)
	OrderStatusChanged(from, to domain.OrderStatus)
}

// NopMetrics — реализация ShopMetrics, которая ничего не делает.
type NopMetrics struct{}

func (NopMetrics) CartChanged(string, bool) {}
func (NopMetrics) OrderPlaced(decimal.Decimal, int) {}
func (NopMetrics) CheckoutFailed(string) {}
func (NopMetrics) OrderStatusChanged(domain.OrderStatus, domain.OrderStatus) {}
