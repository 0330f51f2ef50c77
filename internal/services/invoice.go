package services

import (
	"fmt"

	"bookstore/internal/models"
)

const invoiceDateLayout = "2006-01-02 15:04:05"

// Invoice renders an order as printable lines.
func Invoice(order *models.Order) []string {
	lines := []string{
		fmt.Sprintf("Invoice for Order #%d", order.Number),
		"Date: " + order.CreatedAt.Format(invoiceDateLayout),
		"Customer: " + order.Username,
		"Items:",
	}
	for _, item := range order.Items {
		lines = append(lines, fmt.Sprintf("- %s by %s - Rs %.2f", item.Title, item.Author, item.Price))
	}
	return append(lines, fmt.Sprintf("Total Price: Rs %.2f", order.TotalPrice))
}
