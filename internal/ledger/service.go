package ledger

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"

	"github.com/wardrobe-api/wardrobe-shop-service/internal/auth"
	"github.com/wardrobe-api/wardrobe-shop-service/internal/shop"
)

// Notifier is the best-effort notification and activity sink. Implementations
// must never fail the calling mutation.
type Notifier interface {
	Notify(userID uint, title, message, category string, referenceID uint)
	RecordActivity(shopID uint, activityType, description string)
}

type LineItemRequest struct {
	ProductID uint `json:"product" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

type SaleRequest struct {
	ShopID        uint              `json:"shop" binding:"required"`
	Items         []LineItemRequest `json:"items" binding:"required"`
	ModeOfPayment string            `json:"mode_of_payment"`
}

type OrderRequest struct {
	ShopID           uint              `json:"shop" binding:"required"`
	CustomerName     string            `json:"customer_name"`
	CustomerPhone    string            `json:"customer_phone" binding:"required"`
	CustomerLocation string            `json:"customer_location"`
	Items            []LineItemRequest `json:"items" binding:"required"`
}

type ShopSummary struct {
	ShopID    uint    `json:"shop"`
	ItemsSold int     `json:"sales"`
	Revenue   float64 `json:"revenue"`
}

type LedgerService interface {
	CreateSale(actor auth.Actor, req SaleRequest) (*Sale, error)
	GetSale(id uint) (*Sale, error)
	ListSales(shopID uint) ([]Sale, error)

	CreateOrder(actor auth.Actor, req OrderRequest) (*Order, error)
	GetOrder(id uint) (*Order, error)
	ListOrders(shopID uint) ([]Order, error)
	AdvanceOrderStatus(actor auth.Actor, orderID uint, status string) (*Order, error)

	ShopSummary(shopID uint) (*ShopSummary, error)
}

type ledgerService struct {
	storage  Storage
	notifier Notifier
	logger   *logrus.Entry
}

func NewService(storage Storage, notifier Notifier, log *logrus.Entry) LedgerService {
	return &ledgerService{
		storage:  storage,
		notifier: notifier,
		logger:   log,
	}
}

func (s *ledgerService) CreateSale(actor auth.Actor, req SaleRequest) (*Sale, error) {
	if !auth.Allow(actor, auth.CapRecordSale) {
		return nil, ErrUnauthorized
	}
	if actor.Role == auth.RoleAttendant && (actor.ShopID == nil || *actor.ShopID != req.ShopID) {
		return nil, ErrWrongShop
	}
	if _, err := s.storage.GetShopByID(req.ShopID); err != nil {
		return nil, err
	}

	mode := strings.TrimSpace(req.ModeOfPayment)
	if mode == "" {
		mode = "Cash"
	}

	var sale *Sale
	err := s.storage.WithinTransaction(func(tx Storage) error {
		products, total, err := reserveStock(tx, req.Items)
		if err != nil {
			return err
		}

		items := make([]SaleItem, 0, len(req.Items))
		for _, line := range req.Items {
			items = append(items, SaleItem{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Price:     products[line.ProductID].Price,
			})
		}

		sale = &Sale{
			ShopID:        req.ShopID,
			AttendantID:   actor.ID,
			TotalAmount:   total,
			ModeOfPayment: mode,
			IsComplete:    true,
			Items:         items,
		}
		if err := tx.CreateSale(sale); err != nil {
			return err
		}

		for _, product := range products {
			if err := tx.SaveProduct(product); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infof("sale %d recorded for shop %d, total %.2f", sale.ID, sale.ShopID, sale.TotalAmount)
	s.notifier.Notify(actor.ID, "New Sale",
		fmt.Sprintf("A new sale '%d' has been recorded.", sale.ID), "Sale", sale.ID)
	s.notifier.RecordActivity(sale.ShopID, "SALE",
		fmt.Sprintf("Sale #%d recorded for %.2f (%s)", sale.ID, sale.TotalAmount, sale.ModeOfPayment))
	return sale, nil
}

func (s *ledgerService) CreateOrder(actor auth.Actor, req OrderRequest) (*Order, error) {
	if err := validatePhone(req.CustomerPhone); err != nil {
		return nil, err
	}
	if _, err := s.storage.GetShopByID(req.ShopID); err != nil {
		return nil, err
	}

	var order *Order
	err := s.storage.WithinTransaction(func(tx Storage) error {
		products, total, err := reserveStock(tx, req.Items)
		if err != nil {
			return err
		}

		items := make([]OrderItem, 0, len(req.Items))
		for _, line := range req.Items {
			items = append(items, OrderItem{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Price:     products[line.ProductID].Price,
			})
		}

		order = &Order{
			ShopID:           req.ShopID,
			CustomerName:     req.CustomerName,
			CustomerPhone:    req.CustomerPhone,
			CustomerLocation: req.CustomerLocation,
			Status:           OrderStatusPending,
			TotalAmount:      total,
			Items:            items,
		}
		if err := tx.CreateOrder(order); err != nil {
			return err
		}

		for _, product := range products {
			if err := tx.SaveProduct(product); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infof("order %d placed for shop %d, total %.2f", order.ID, order.ShopID, order.TotalAmount)
	s.notifier.Notify(actor.ID, "New Order",
		fmt.Sprintf("A new order '%d' has been placed.", order.ID), "Order", order.ID)
	s.notifier.RecordActivity(order.ShopID, "ORDER",
		fmt.Sprintf("Order #%d placed for %.2f", order.ID, order.TotalAmount))
	return order, nil
}

// reserveStock verifies and decrements stock for every line inside the given
// transaction. Products come back locked and already decremented in memory;
// the caller persists them only after all lines passed, so a single failing
// line aborts the whole transaction.
func reserveStock(tx Storage, items []LineItemRequest) (map[uint]*shop.Product, float64, error) {
	if len(items) == 0 {
		return nil, 0, ErrNoItems
	}

	products := make(map[uint]*shop.Product)
	total := 0.0
	for _, line := range items {
		if line.Quantity <= 0 {
			return nil, 0, ErrInvalidQuantity
		}

		product, ok := products[line.ProductID]
		if !ok {
			var err error
			product, err = tx.GetProductForUpdate(line.ProductID)
			if err != nil {
				return nil, 0, err
			}
			products[line.ProductID] = product
		}

		if product.Quantity < line.Quantity {
			return nil, 0, fmt.Errorf("%w for %s", ErrInsufficientStock, product.Name)
		}
		product.Quantity -= line.Quantity
		total += product.Price * float64(line.Quantity)
	}
	return products, total, nil
}

func (s *ledgerService) GetSale(id uint) (*Sale, error) {
	return s.storage.GetSaleByID(id)
}

func (s *ledgerService) ListSales(shopID uint) ([]Sale, error) {
	return s.storage.ListSalesByShop(shopID)
}

func (s *ledgerService) GetOrder(id uint) (*Order, error) {
	return s.storage.GetOrderByID(id)
}

func (s *ledgerService) ListOrders(shopID uint) ([]Order, error) {
	return s.storage.ListOrdersByShop(shopID)
}

func (s *ledgerService) AdvanceOrderStatus(actor auth.Actor, orderID uint, status string) (*Order, error) {
	order, err := s.storage.GetOrderByID(orderID)
	if err != nil {
		return nil, err
	}

	sh, err := s.storage.GetShopByID(order.ShopID)
	if err != nil {
		return nil, err
	}
	if !auth.Allow(actor, auth.CapManageShop) ||
		(actor.Role != auth.RoleSuperUser && sh.AdminID != actor.ID) {
		return nil, ErrUnauthorized
	}

	if status == OrderStatusCancelled {
		return nil, ErrCancelledViaRefund
	}
	if !order.CanAdvanceTo(status) {
		return nil, ErrInvalidStatusMove
	}

	order.Status = status
	if err := s.storage.SaveOrder(order); err != nil {
		return nil, err
	}

	s.notifier.Notify(actor.ID, "Order Updated",
		fmt.Sprintf("The order '%d' has been updated.", order.ID), "Order", order.ID)
	return order, nil
}

func (s *ledgerService) ShopSummary(shopID uint) (*ShopSummary, error) {
	if _, err := s.storage.GetShopByID(shopID); err != nil {
		return nil, err
	}

	sold, err := s.storage.ShopItemsSold(shopID)
	if err != nil {
		return nil, err
	}
	revenue, err := s.storage.ShopRevenue(shopID)
	if err != nil {
		return nil, err
	}

	return &ShopSummary{ShopID: shopID, ItemsSold: sold, Revenue: revenue}, nil
}

func validatePhone(phone string) error {
	if len(phone) < 10 {
		return ErrInvalidPhone
	}
	for _, r := range phone {
		if !unicode.IsDigit(r) {
			return ErrInvalidPhone
		}
	}
	return nil
}
