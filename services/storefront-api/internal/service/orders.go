package service

import (
	"context"

	"ecommerce-storefront/shared/pkg/models"
)

type OrdersRepo interface {
	Create(ctx context.Context, o *models.Order) (*models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
}

type OrdersService struct {
	Repo OrdersRepo
}

type CreateOrderInput struct {
	Firstname   string
	Lastname    string
	Email       string
	PhoneNumber string
	Address     string
	Orders      []models.LineItem
	TotalAmount *models.Amount
}

// CreateOrder stores the order as given. The email is not checked against accounts.
func (s *OrdersService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	return s.Repo.Create(ctx, &models.Order{
		Firstname:   in.Firstname,
		Lastname:    in.Lastname,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		Address:     in.Address,
		Orders:      in.Orders,
		TotalAmount: in.TotalAmount,
	})
}

func (s *OrdersService) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.Repo.List(ctx)
}
