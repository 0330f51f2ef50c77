package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// userRow is the table layout for persisted users.
type userRow struct {
	ID       string `gorm:"primaryKey;type:varchar(36)"`
	Position int    `gorm:"index"`
	Username string `gorm:"uniqueIndex;type:varchar(100)"`
	Password string `gorm:"type:varchar(255)"`
}

func (userRow) TableName() string { return "user_records" }

// inventoryRow is the table layout for persisted catalog books.
type inventoryRow struct {
	ID       string `gorm:"primaryKey;type:varchar(36)"`
	Position int    `gorm:"index"`
	Title    string `gorm:"type:varchar(255)"`
	Author   string `gorm:"type:varchar(255)"`
	Price    float64
	Stock    int
}

func (inventoryRow) TableName() string { return "inventory_records" }

// OpenDialector returns the GORM dialector for a storage driver name.
func OpenDialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "sqlite":
		return sqlite.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported storage driver %q", driver)
}

// GormGateway is a GORM implementation of Gateway.
type GormGateway struct {
	db *gorm.DB
}

// NewGormGateway creates a gateway and migrates its tables.
func NewGormGateway(db *gorm.DB) (*GormGateway, error) {
	if err := db.AutoMigrate(&userRow{}, &inventoryRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate storage tables: %w", err)
	}
	return &GormGateway{db: db}, nil
}

// LoadUsers reads every stored user in insertion order.
func (g *GormGateway) LoadUsers() ([]UserRecord, error) {
	var rows []userRow
	if err := g.db.Order("position").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to load users: %v", ErrPersistenceRead, err)
	}
	users := make([]UserRecord, 0, len(rows))
	for _, r := range rows {
		users = append(users, UserRecord{Username: r.Username, Password: r.Password})
	}
	return users, nil
}

// SaveUsers replaces the stored users in one transaction.
func (g *GormGateway) SaveUsers(users []UserRecord) error {
	rows := make([]userRow, 0, len(users))
	for i, u := range users {
		rows = append(rows, userRow{
			ID:       uuid.New().String(),
			Position: i,
			Username: u.Username,
			Password: u.Password,
		})
	}
	if err := replaceAll(g.db, rows); err != nil {
		return fmt.Errorf("%w: failed to save users: %v", ErrPersistenceWrite, err)
	}
	return nil
}

// LoadInventory reads every stored book in catalog order.
func (g *GormGateway) LoadInventory() ([]InventoryRecord, error) {
	var rows []inventoryRow
	if err := g.db.Order("position").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to load inventory: %v", ErrPersistenceRead, err)
	}
	books := make([]InventoryRecord, 0, len(rows))
	for _, r := range rows {
		books = append(books, InventoryRecord{
			Title:  r.Title,
			Author: r.Author,
			Price:  r.Price,
			Stock:  r.Stock,
		})
	}
	return books, nil
}

// SaveInventory replaces the stored inventory in one transaction.
func (g *GormGateway) SaveInventory(books []InventoryRecord) error {
	rows := make([]inventoryRow, 0, len(books))
	for i, b := range books {
		rows = append(rows, inventoryRow{
			ID:       uuid.New().String(),
			Position: i,
			Title:    b.Title,
			Author:   b.Author,
			Price:    b.Price,
			Stock:    b.Stock,
		})
	}
	if err := replaceAll(g.db, rows); err != nil {
		return fmt.Errorf("%w: failed to save inventory: %v", ErrPersistenceWrite, err)
	}
	return nil
}

// replaceAll deletes every row of T and inserts rows in their place.
func replaceAll[T any](db *gorm.DB, rows []T) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(new(T)).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}
