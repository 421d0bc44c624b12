// Package storage persists the product list and settings as flat JSON
// files, matching the deployment where the monitor runs next to its data
// with no database available.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"tomantrack/models"
)

// ProductStore owns the products.json file: an ordered list of
// {name, url} records addressed by position.
type ProductStore struct {
	path string
	mu   sync.Mutex
}

// NewProductStore creates a store backed by the given file path. The file
// is created on first write; a missing file reads as an empty list.
func NewProductStore(path string) *ProductStore {
	return &ProductStore{path: path}
}

// List returns all products in stored order
func (s *ProductStore) List() ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Get returns the product at the given position
func (s *ProductStore) Get(index int) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load()
	if err != nil {
		return models.Product{}, err
	}
	if index < 0 || index >= len(products) {
		return models.Product{}, fmt.Errorf("invalid product index %d", index)
	}
	return products[index], nil
}

// Add appends a product to the list. URLs are unique across the list.
func (s *ProductStore) Add(product models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load()
	if err != nil {
		return err
	}

	for _, existing := range products {
		if existing.URL == product.URL {
			return fmt.Errorf("product URL already exists")
		}
	}

	products = append(products, product)
	return s.save(products)
}

// RemoveAt deletes the product at the given position and returns it
func (s *ProductStore) RemoveAt(index int) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load()
	if err != nil {
		return models.Product{}, err
	}
	if index < 0 || index >= len(products) {
		return models.Product{}, fmt.Errorf("invalid product index %d", index)
	}

	removed := products[index]
	products = append(products[:index], products[index+1:]...)

	if err := s.save(products); err != nil {
		return models.Product{}, err
	}
	return removed, nil
}

// Len returns the number of stored products
func (s *ProductStore) Len() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.load()
	if err != nil {
		return 0, err
	}
	return len(products), nil
}

func (s *ProductStore) load() ([]models.Product, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Product{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %v", s.path, err)
	}

	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %v", s.path, err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

func (s *ProductStore) save(products []models.Product) error {
	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode products: %v", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %v", s.path, err)
	}
	return nil
}
