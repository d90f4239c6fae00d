// Package view holds the client-side list logic shared by the catalogue and
// admin screens: substring filtering over already-fetched collections and
// the dashboard counters.
package view

import (
	"strings"

	"github.com/JosherenPro/ManiocAGRI/client"
	"github.com/JosherenPro/ManiocAGRI/internal/catalog"
	"github.com/JosherenPro/ManiocAGRI/internal/order"
)

// Filter returns the items for which any of the field strings contains the
// query, case-insensitively, preserving the original order. An empty query
// matches everything. Purely client-side; there is no server search.
func Filter[T any](query string, items []T, fields func(T) []string) []T {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items
	}

	matched := make([]T, 0, len(items))
	for _, item := range items {
		for _, field := range fields(item) {
			if strings.Contains(strings.ToLower(field), query) {
				matched = append(matched, item)
				break
			}
		}
	}
	return matched
}

// ProductFields are the fields product search matches against.
func ProductFields(p client.Product) []string {
	return []string{p.Name, p.Description}
}

// UserFields are the fields user search matches against.
func UserFields(u client.User) []string {
	return []string{u.Username, u.Email, u.Role}
}

// Stats are the dashboard counters.
type Stats struct {
	Pending   int
	Delivered int
	Rejected  int
}

// OrderStats counts orders per dashboard bucket. Pending covers everything
// still before the delivery run.
func OrderStats(orders []client.Order) Stats {
	var stats Stats
	for _, o := range orders {
		switch o.Status {
		case order.StatusPendingValidation, order.StatusValidated:
			stats.Pending++
		case order.StatusDelivered:
			stats.Delivered++
		case order.StatusRejected:
			stats.Rejected++
		}
	}
	return stats
}

// LowStock returns the products under the low-stock threshold, preserving
// order.
func LowStock(products []client.Product) []client.Product {
	low := make([]client.Product, 0)
	for _, p := range products {
		if p.StockQuantity < catalog.LowStockThreshold {
			low = append(low, p)
		}
	}
	return low
}
