package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/egannguyen/go-kafka-marketplace/internal/access"
	"github.com/egannguyen/go-kafka-marketplace/internal/entity"
	"github.com/egannguyen/go-kafka-marketplace/internal/messaging"
	"github.com/egannguyen/go-kafka-marketplace/internal/repository"
)

// OrderService serves customers their orders and managers their shop's part of them.
type OrderService struct {
	orders    repository.OrderRepository
	authz     *access.Authorizer
	publisher messaging.Publisher
}

func NewOrderService(orders repository.OrderRepository, authz *access.Authorizer, publisher messaging.Publisher) *OrderService {
	return &OrderService{
		orders:    orders,
		authz:     authz,
		publisher: publisher,
	}
}

// DeliveryInput sets the shipment of a shop order.
type DeliveryInput struct {
	TrackingNumber string     `json:"tracking_number"`
	Carrier        string     `json:"carrier"`
	ShippingDate   *time.Time `json:"shipping_date"`
	DeliveryDate   *time.Time `json:"delivery_date"`
	Status         string     `json:"status"`
}

// VendorOrderUpdate changes the status, the delivery info, or both.
type VendorOrderUpdate struct {
	Status   *string        `json:"status"`
	Delivery *DeliveryInput `json:"delivery_info"`
}

// ListOrders returns the caller's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, id entity.Identity) ([]entity.Order, error) {
	if id.Anonymous() {
		return nil, fmt.Errorf("%w: orders", entity.ErrUnauthenticated)
	}
	orders, err := s.orders.ListByUser(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetOrder returns one of the caller's orders. Orders of other users are reported as
// not found.
func (s *OrderService) GetOrder(ctx context.Context, id entity.Identity, orderID string) (entity.Order, error) {
	if id.Anonymous() {
		return entity.Order{}, fmt.Errorf("%w: orders", entity.ErrUnauthenticated)
	}
	return s.orders.GetByUser(ctx, id.UserID, orderID)
}

// ListVendorOrders returns the shop orders of the caller's shop, newest first.
func (s *OrderService) ListVendorOrders(ctx context.Context, id entity.Identity) ([]entity.ShopOrder, error) {
	if id.Anonymous() {
		return nil, fmt.Errorf("%w: vendor orders", entity.ErrUnauthenticated)
	}
	m, ok, err := s.authz.Binding(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: only shop managers can list vendor orders", entity.ErrPermission)
	}
	subs, err := s.orders.ListShopOrders(ctx, m.ShopID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vendor orders: %w", err)
	}
	return subs, nil
}

func (s *OrderService) GetVendorOrder(ctx context.Context, id entity.Identity, shopOrderID string) (entity.ShopOrder, error) {
	return s.ownedShopOrder(ctx, id, access.ActionRead, shopOrderID)
}

// UpdateVendorOrderStatus moves the shop order to status.
func (s *OrderService) UpdateVendorOrderStatus(ctx context.Context, id entity.Identity, shopOrderID, status string) (entity.ShopOrder, error) {
	return s.UpdateVendorOrder(ctx, id, shopOrderID, VendorOrderUpdate{Status: &status})
}

// CancelVendorOrder moves the shop order to cancelled. Shop orders are never removed.
func (s *OrderService) CancelVendorOrder(ctx context.Context, id entity.Identity, shopOrderID string) (entity.ShopOrder, error) {
	status := string(entity.OrderStatusCancelled)
	so, err := s.ownedShopOrder(ctx, id, access.ActionDelete, shopOrderID)
	if err != nil {
		return entity.ShopOrder{}, err
	}
	return s.apply(ctx, so, VendorOrderUpdate{Status: &status})
}

// UpdateVendorOrder applies upd to a shop order of the caller's shop. Ownership is
// checked before the new status is validated.
func (s *OrderService) UpdateVendorOrder(ctx context.Context, id entity.Identity, shopOrderID string, upd VendorOrderUpdate) (entity.ShopOrder, error) {
	so, err := s.ownedShopOrder(ctx, id, access.ActionUpdate, shopOrderID)
	if err != nil {
		return entity.ShopOrder{}, err
	}
	return s.apply(ctx, so, upd)
}

func (s *OrderService) apply(ctx context.Context, so entity.ShopOrder, upd VendorOrderUpdate) (entity.ShopOrder, error) {
	if upd.Status == nil && upd.Delivery == nil {
		return entity.ShopOrder{}, entity.Invalid("status or delivery_info is required")
	}

	var status entity.OrderStatus
	if upd.Status != nil {
		var err error
		if status, err = entity.ParseOrderStatus(*upd.Status); err != nil {
			return entity.ShopOrder{}, err
		}
	}
	var delivery *entity.DeliveryInfo
	if upd.Delivery != nil {
		var err error
		if delivery, err = deliveryInfo(*upd.Delivery); err != nil {
			return entity.ShopOrder{}, err
		}
	}

	var newStatus *entity.OrderStatus
	if upd.Status != nil && status != so.Status {
		newStatus = &status
	}
	if newStatus == nil && delivery == nil {
		return so, nil
	}

	slog.Info("Service: Updating shop order", "shop_order_id", so.ID, "from", so.Status, "to", status, "delivery", delivery != nil)
	if err := s.orders.UpdateShopOrder(ctx, so.ID, newStatus, delivery); err != nil {
		return entity.ShopOrder{}, fmt.Errorf("failed to update shop order: %w", err)
	}
	if newStatus != nil {
		event := entity.ShopOrderStatusChanged{
			ShopOrderID: so.ID,
			OrderID:     so.OrderID,
			ShopID:      so.ShopID,
			From:        so.Status,
			To:          status,
			ChangedAt:   time.Now().UTC(),
		}
		if err := s.publisher.PublishEvent(ctx, entity.TopicShopOrderStatuses, so.ID, event); err != nil {
			slog.Error("Failed to publish ShopOrderStatusChanged", "shop_order_id", so.ID, "err", err)
		}
	}
	return s.orders.GetShopOrder(ctx, so.ID)
}

func deliveryInfo(in DeliveryInput) (*entity.DeliveryInfo, error) {
	if strings.TrimSpace(in.TrackingNumber) == "" {
		return nil, entity.Invalid("tracking_number is required")
	}
	d := &entity.DeliveryInfo{
		TrackingNumber: in.TrackingNumber,
		Carrier:        in.Carrier,
		ShippingDate:   in.ShippingDate,
		DeliveryDate:   in.DeliveryDate,
		Status:         entity.OrderStatusPending,
	}
	if in.Status != "" {
		st, err := entity.ParseOrderStatus(in.Status)
		if err != nil {
			return nil, err
		}
		d.Status = st
	}
	if d.ShippingDate != nil && d.DeliveryDate != nil && d.DeliveryDate.Before(*d.ShippingDate) {
		return nil, entity.Invalid("delivery_date must not be before shipping_date")
	}
	return d, nil
}

func (s *OrderService) ownedShopOrder(ctx context.Context, id entity.Identity, action access.Action, shopOrderID string) (entity.ShopOrder, error) {
	if id.Anonymous() {
		return entity.ShopOrder{}, fmt.Errorf("%w: vendor orders", entity.ErrUnauthenticated)
	}
	so, err := s.orders.GetShopOrder(ctx, shopOrderID)
	if err != nil {
		return entity.ShopOrder{}, err
	}
	if err := s.authz.Require(ctx, id, action, access.Resource{Kind: access.KindShopOrder, ShopID: so.ShopID}); err != nil {
		return entity.ShopOrder{}, err
	}
	return so, nil
}
