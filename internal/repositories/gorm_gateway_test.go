package repositories_test

import (
	"fmt"
	"testing"

	"bookstore/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newGormGateway(t *testing.T) *repositories.GormGateway {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "failed to connect to in-memory database")

	gateway, err := repositories.NewGormGateway(db)
	require.NoError(t, err)
	return gateway
}

func TestGormGateway_InventoryRoundTrip(t *testing.T) {
	gateway := newGormGateway(t)
	books := []repositories.InventoryRecord{
		{Title: "Dune", Author: "Frank Herbert", Price: 9.99, Stock: 3},
		{Title: "Emma", Author: "Jane Austen", Price: 5, Stock: 0},
		{Title: "Beloved", Author: "Toni Morrison", Price: 7.25, Stock: 4},
	}

	require.NoError(t, gateway.SaveInventory(books))
	loaded, err := gateway.LoadInventory()
	require.NoError(t, err)
	assert.Equal(t, books, loaded, "order is preserved")

	books[0].Stock = 1
	require.NoError(t, gateway.SaveInventory(books[:1]))
	loaded, err = gateway.LoadInventory()
	require.NoError(t, err)
	assert.Equal(t, books[:1], loaded, "save replaces previous contents")
}

func TestGormGateway_UsersRoundTrip(t *testing.T) {
	gateway := newGormGateway(t)
	users := []repositories.UserRecord{
		{Username: "bob", Password: "hunter22"},
		{Username: "alice", Password: "secret1"},
	}

	require.NoError(t, gateway.SaveUsers(users))
	require.NoError(t, gateway.SaveUsers(users), "saving the same users twice does not collide")

	loaded, err := gateway.LoadUsers()
	require.NoError(t, err)
	assert.Equal(t, users, loaded)
}

func TestGormGateway_EmptyTables(t *testing.T) {
	gateway := newGormGateway(t)

	require.NoError(t, gateway.SaveInventory(nil))
	books, err := gateway.LoadInventory()
	require.NoError(t, err)
	assert.Empty(t, books)

	users, err := gateway.LoadUsers()
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestOpenDialector(t *testing.T) {
	d, err := repositories.OpenDialector("sqlite", ":memory:")
	assert.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	d, err = repositories.OpenDialector("postgres", "host=localhost")
	assert.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	_, err = repositories.OpenDialector("mysql", "")
	assert.Error(t, err)
}
