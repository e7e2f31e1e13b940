package service

import (
	"context"

	"github.com/sanketp1/ecommerce-microservices/payment-service/internal/domain"
)

func (s *PaymentService) ListOrders(ctx context.Context, userID string) ([]domain.OrderView, error) {
	orders, err := s.repo.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]domain.OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, o.View())
	}
	return views, nil
}

func (s *PaymentService) GetOrder(ctx context.Context, userID, orderID string) (*domain.OrderView, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrForbidden
	}
	view := order.View()
	return &view, nil
}
