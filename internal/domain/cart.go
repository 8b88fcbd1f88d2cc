package domain

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"strconv"

	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/shopspring/decimal"
)

// Cart — содержимое корзины покупателя: ID товара (строкой) -> запрошенное количество.
// Корзина хранится в сессии, а не в БД. Все методы возвращают новую корзину и не меняют исходную.
type Cart map[string]int

func NewCart() Cart {
	return Cart{}
}

// InsufficientStockError возвращается, когда запрошенное количество превышает остаток на складе.
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (err *InsufficientStockError) Error() string {
	return fmt.Sprintf("only %d items available in stock (product %d, requested %d)", err.Available, err.ProductID, err.Requested)
}

func (err *InsufficientStockError) Unwrap() error {
	return e.ErrInsufficientStock
}

// CartKey переводит ID товара в ключ корзины.
func CartKey(productID int64) string {
	return strconv.FormatInt(productID, 10)
}

// ValidateQuantity проверяет, что количество строго положительное.
func ValidateQuantity(quantity int) error {
	if quantity <= 0 {
		return e.ErrInvalidQuantity
	}
	return nil
}

func (c Cart) Clone() Cart {
	if c == nil {
		return NewCart()
	}
	return maps.Clone(c)
}

// Quantity возвращает количество товара в корзине (0, если товара нет).
func (c Cart) Quantity(productID int64) int {
	return c[CartKey(productID)]
}

// Count — суммарное количество единиц во всех записях корзины без сверки с каталогом.
func (c Cart) Count() int {
	count := 0
	for _, q := range c {
		count += q
	}
	return count
}

func (c Cart) IsEmpty() bool {
	return len(c) == 0
}

// Add увеличивает количество товара в корзине.
// Итоговое количество не может превышать текущий остаток товара.
func (c Cart) Add(product *Product, quantity int) (Cart, error) {
	if err := ValidateQuantity(quantity); err != nil {
		return c, err
	}
	if product == nil || !product.IsActive {
		return c, e.ErrProductNotFound
	}

	newQuantity := c.Quantity(product.ID) + quantity
	if newQuantity > product.Stock {
		return c, &InsufficientStockError{ProductID: product.ID, Requested: newQuantity, Available: product.Stock}
	}

	res := c.Clone()
	res[CartKey(product.ID)] = newQuantity
	return res, nil
}

// Update устанавливает количество товара в корзине (не суммируя с предыдущим).
func (c Cart) Update(product *Product, quantity int) (Cart, error) {
	if err := ValidateQuantity(quantity); err != nil {
		return c, err
	}
	if product == nil || !product.IsActive {
		return c, e.ErrProductNotFound
	}

	if quantity > product.Stock {
		return c, &InsufficientStockError{ProductID: product.ID, Requested: quantity, Available: product.Stock}
	}

	res := c.Clone()
	res[CartKey(product.ID)] = quantity
	return res, nil
}

// Remove удаляет запись из корзины по ключу.
func (c Cart) Remove(key string) (Cart, error) {
	if _, ok := c[key]; !ok {
		return c, e.ErrItemNotFound
	}

	res := c.Clone()
	delete(res, key)
	return res, nil
}

func (c Cart) Clear() Cart {
	return NewCart()
}

// ProductIDs возвращает отсортированные ID товаров из корзины.
// Ключи, которые не удалось разобрать, возвращаются отдельно.
func (c Cart) ProductIDs() (ids []int64, invalidKeys []string) {
	for key := range c {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil || id <= 0 {
			invalidKeys = append(invalidKeys, key)
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	slices.Sort(invalidKeys)
	return ids, invalidKeys
}

// CartLine — позиция корзины, сверенная с актуальными данными товара.
type CartLine struct {
	Product   *Product
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// CartView — материализованная корзина.
type CartView struct {
	lines []CartLine
	Total decimal.Decimal
	Count int
}

// Lines возвращает позиции корзины. Последовательность можно обходить повторно.
func (v *CartView) Lines() iter.Seq[CartLine] {
	return func(yield func(CartLine) bool) {
		for _, line := range v.lines {
			if !yield(line) {
				return
			}
		}
	}
}

func (v *CartView) Len() int {
	return len(v.lines)
}

func (v *CartView) IsEmpty() bool {
	return len(v.lines) == 0
}

// Materialize сверяет корзину с актуальными товарами.
//
// Записи, чей товар не найден или деактивирован, удаляются из возвращаемой корзины.
// Записи, для которых остаток стал меньше запрошенного количества, скрываются из представления,
// но остаются в корзине. Флаг swept сообщает, изменилась ли корзина.
func Materialize(cart Cart, products map[int64]*Product) (view *CartView, cleaned Cart, swept bool) {
	view = &CartView{Total: decimal.Zero}
	cleaned = cart.Clone()

	ids, invalidKeys := cart.ProductIDs()
	for _, key := range invalidKeys {
		delete(cleaned, key)
		swept = true
	}

	for _, id := range ids {
		key := CartKey(id)
		quantity := cart[key]

		product, ok := products[id]
		if !ok || product == nil || !product.IsActive || quantity <= 0 {
			delete(cleaned, key)
			swept = true
			continue
		}

		if product.Stock < quantity {
			continue
		}

		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(quantity)))
		view.lines = append(view.lines, CartLine{
			Product:   product,
			Quantity:  quantity,
			UnitPrice: product.Price,
			LineTotal: lineTotal,
		})
		view.Total = view.Total.Add(lineTotal)
		view.Count += quantity
	}

	return view, cleaned, swept
}
