package repositories_test

import (
	"errors"
	"testing"

	"bookstore/internal/models"
	"bookstore/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountDirectory_AddAndFind(t *testing.T) {
	directory := repositories.NewAccountDirectory(nil)

	require.NoError(t, directory.Add(models.NewUser("alice", "secret1")))
	err := directory.Add(models.NewUser("alice", "other12"))
	assert.True(t, errors.Is(err, models.ErrDuplicateUsername))

	assert.NotNil(t, directory.FindByUsername("alice"))
	assert.Nil(t, directory.FindByUsername("Alice"), "usernames are case-sensitive")
	assert.Equal(t, 1, directory.Len())
}

func TestAccountDirectory_Authenticate(t *testing.T) {
	directory := repositories.NewAccountDirectory([]*models.User{models.NewUser("alice", "secret1")})

	assert.NotNil(t, directory.Authenticate("alice", "secret1"))
	assert.Nil(t, directory.Authenticate("alice", "Secret1"))
	assert.Nil(t, directory.Authenticate("alice ", "secret1"))
	assert.Nil(t, directory.Authenticate("bob", "secret1"))
}

func TestAccountDirectory_Records(t *testing.T) {
	directory := repositories.NewAccountDirectory([]*models.User{
		models.NewUser("alice", "secret1"),
		models.NewUser("bob", "hunter22"),
	})

	assert.Equal(t, []repositories.UserRecord{
		{Username: "alice", Password: "secret1"},
		{Username: "bob", Password: "hunter22"},
	}, directory.Records())
}

func TestAccountDirectory_Wishlist(t *testing.T) {
	user := models.NewUser("alice", "secret1")
	directory := repositories.NewAccountDirectory([]*models.User{user})
	dune := models.NewBook("Dune", "Herbert", 9.99, 3)

	directory.AddToWishlist(user, dune)
	directory.AddToWishlist(user, dune)
	assert.Len(t, directory.Wishlist(user), 2, "plain appends keep duplicates")

	assert.False(t, directory.AddToWishlistOnce(user, dune))
	assert.True(t, directory.AddToWishlistOnce(user, models.NewBook("Emma", "Austen", 5, 1)))
	assert.Len(t, directory.Wishlist(user), 3)
}
