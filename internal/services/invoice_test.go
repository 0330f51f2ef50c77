package services_test

import (
	"testing"
	"time"

	"bookstore/internal/models"
	"bookstore/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestInvoice(t *testing.T) {
	order := &models.Order{
		Number:   3,
		Username: "alice",
		Items: []models.OrderItem{
			{Title: "Dune", Author: "Herbert", Price: 9.99},
			{Title: "Emma", Author: "Austen", Price: 5},
		},
		TotalPrice: 14.99,
		CreatedAt:  time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC),
	}

	assert.Equal(t, []string{
		"Invoice for Order #3",
		"Date: 2024-03-09 14:05:07",
		"Customer: alice",
		"Items:",
		"- Dune by Herbert - Rs 9.99",
		"- Emma by Austen - Rs 5.00",
		"Total Price: Rs 14.99",
	}, services.Invoice(order))
}
