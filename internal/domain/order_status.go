package domain

import (
	"errors"
	"slices"
)

type OrderStatus string

// remember to add new statuses to the validOrderStatuses map and orderTransitions
const (
	OrderStatusCreated      OrderStatus = "CREATED"
	OrderStatusReserved     OrderStatus = "RESERVED"
	OrderStatusWithCustomer OrderStatus = "WITH_CUSTOMER"
	OrderStatusReturned     OrderStatus = "RETURNED"
	OrderStatusClosed       OrderStatus = "CLOSED"
	OrderStatusCancelled    OrderStatus = "CANCELLED"
)

var validOrderStatuses = map[OrderStatus]struct{}{
	OrderStatusCreated:      {},
	OrderStatusReserved:     {},
	OrderStatusWithCustomer: {},
	OrderStatusReturned:     {},
	OrderStatusClosed:       {},
	OrderStatusCancelled:    {},
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusCreated:      {OrderStatusReserved, OrderStatusCancelled},
	OrderStatusReserved:     {OrderStatusWithCustomer, OrderStatusCancelled},
	OrderStatusWithCustomer: {OrderStatusReturned},
	OrderStatusReturned:     {OrderStatusClosed},
}

func ToOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if _, ok := validOrderStatuses[status]; ok {
		return status, nil
	}

	return "", errors.New("invalid order status")
}

func OrderStatuses() []OrderStatus {
	result := make([]OrderStatus, 0, len(validOrderStatuses))
	for status := range validOrderStatuses {
		result = append(result, status)
	}
	return result
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return slices.Contains(orderTransitions[s], next)
}

func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}
