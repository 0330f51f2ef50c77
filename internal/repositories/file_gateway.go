package repositories

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
)

// FileGateway stores users and inventory as comma-separated text files,
// one record per line. Embedded commas are not escaped.
type FileGateway struct {
	UsersPath     string
	InventoryPath string
}

// NewFileGateway creates a gateway over the two given files.
func NewFileGateway(usersPath, inventoryPath string) *FileGateway {
	return &FileGateway{
		UsersPath:     usersPath,
		InventoryPath: inventoryPath,
	}
}

// LoadUsers reads username,password lines. Lines without exactly two fields are skipped.
func (g *FileGateway) LoadUsers() ([]UserRecord, error) {
	var users []UserRecord
	err := readLines(g.UsersPath, func(line string) error {
		parts := strings.Split(line, ",")
		if len(parts) != 2 {
			return nil
		}
		users = append(users, UserRecord{Username: parts[0], Password: parts[1]})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// SaveUsers overwrites the users file. A user whose name or password holds
// a comma or a line break cannot be written as one two-field line; it is
// logged and left out of the file.
func (g *FileGateway) SaveUsers(users []UserRecord) error {
	lines := make([]string, 0, len(users))
	for _, u := range users {
		if strings.ContainsAny(u.Username, ",\r\n") || strings.ContainsAny(u.Password, ",\r\n") {
			log.Printf("User %q cannot be stored in %s, keeping it in memory only", u.Username, g.UsersPath)
			continue
		}
		lines = append(lines, u.Username+","+u.Password)
	}
	return writeLines(g.UsersPath, lines)
}

// LoadInventory reads title,author,price,stock lines. Lines without exactly
// four fields are skipped; a bad number fails the whole load.
func (g *FileGateway) LoadInventory() ([]InventoryRecord, error) {
	var books []InventoryRecord
	lineNo := 0
	err := readLines(g.InventoryPath, func(line string) error {
		lineNo++
		parts := strings.Split(line, ",")
		if len(parts) != 4 {
			return nil
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			return fmt.Errorf("%w: %s line %d: bad price %q", ErrPersistenceRead, g.InventoryPath, lineNo, parts[2])
		}
		stock, err := strconv.Atoi(strings.TrimSpace(parts[3]))
		if err != nil {
			return fmt.Errorf("%w: %s line %d: bad stock %q", ErrPersistenceRead, g.InventoryPath, lineNo, parts[3])
		}
		books = append(books, InventoryRecord{
			Title:  parts[0],
			Author: parts[1],
			Price:  price,
			Stock:  stock,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return books, nil
}

// SaveInventory overwrites the inventory file.
func (g *FileGateway) SaveInventory(books []InventoryRecord) error {
	lines := make([]string, 0, len(books))
	for _, b := range books {
		lines = append(lines, strings.Join([]string{
			b.Title,
			b.Author,
			strconv.FormatFloat(b.Price, 'f', -1, 64),
			strconv.Itoa(b.Stock),
		}, ","))
	}
	return writeLines(g.InventoryPath, lines)
}

// readLines calls fn for every line of the file. A missing file reads as empty.
func readLines(path string, fn func(line string) error) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Printf("%s does not exist yet, starting empty", path)
			return nil
		}
		return fmt.Errorf("%w: %v", ErrPersistenceRead, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if err := fn(scanner.Text()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPersistenceRead, path, err)
	}
	return nil
}

func writeLines(path string, lines []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceWrite, err)
	}

	w := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			f.Close()
			return fmt.Errorf("%w: %s: %v", ErrPersistenceWrite, path, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("%w: %s: %v", ErrPersistenceWrite, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPersistenceWrite, path, err)
	}
	return nil
}
