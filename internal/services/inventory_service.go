package services

import (
	"sync"

	"bookstore/internal/repositories"
)

// InventoryService writes the catalog to the persistence gateway. Its own
// lock serializes flushes; the catalog lock is held only while copying.
type InventoryService struct {
	catalog *repositories.Catalog
	gateway repositories.Gateway
	mu      sync.Mutex
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(catalog *repositories.Catalog, gateway repositories.Gateway) *InventoryService {
	return &InventoryService{
		catalog: catalog,
		gateway: gateway,
	}
}

// Flush saves the current title, author, price and stock of every book.
func (s *InventoryService) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gateway.SaveInventory(s.catalog.Snapshot())
}
