package services

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"soltienda/internal/domain"
	"soltienda/internal/repos"
)

var ErrProductNotFound = errors.New("product not found")

type CatalogService struct {
	Prods *repos.ProductRepo
	// UploadDir is where product images live; Delete removes the stored file.
	UploadDir string
}

func NewCatalogService(prods *repos.ProductRepo, uploadDir string) *CatalogService {
	return &CatalogService{Prods: prods, UploadDir: uploadDir}
}

// ProductInput carries the admin-editable product fields, already validated at
// the HTTP boundary.
type ProductInput struct {
	Name        string
	Description string
	Price       float64
	Currency    string
	Category    string
	Stock       int
	ImageURL    string
}

func (s *CatalogService) List(search, category string) ([]domain.Product, error) {
	return s.Prods.List(strings.ToLower(strings.TrimSpace(search)), strings.TrimSpace(category))
}

func (s *CatalogService) Get(id string) (domain.Product, error) {
	p, err := s.Prods.Get(id)
	if err == sql.ErrNoRows {
		return domain.Product{}, ErrProductNotFound
	}
	return p, err
}

func (s *CatalogService) Categories() ([]string, error) {
	return s.Prods.Categories()
}

func (s *CatalogService) Create(in ProductInput) (domain.Product, error) {
	p := domain.Product{
		ID:          newID(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Currency:    in.Currency,
		Category:    in.Category,
		Stock:       in.Stock,
		ImageURL:    in.ImageURL,
		CreatedAt:   now(),
	}
	if err := s.Prods.Create(p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// Update rewrites the product. An empty in.ImageURL keeps the current image.
func (s *CatalogService) Update(id string, in ProductInput) (domain.Product, error) {
	existing, err := s.Prods.Get(id)
	if err == sql.ErrNoRows {
		return domain.Product{}, ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}

	p := existing
	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.Currency = in.Currency
	p.Category = in.Category
	p.Stock = in.Stock
	if in.ImageURL != "" {
		p.ImageURL = in.ImageURL
	}
	p.UpdatedAt = now()

	if err := s.Prods.Update(p); err != nil {
		if err == sql.ErrNoRows {
			return domain.Product{}, ErrProductNotFound
		}
		return domain.Product{}, err
	}
	return p, nil
}

// Delete removes the product and its stored image file, if any.
func (s *CatalogService) Delete(id string) error {
	p, err := s.Prods.Get(id)
	if err == sql.ErrNoRows {
		return ErrProductNotFound
	}
	if err != nil {
		return err
	}
	if err := s.Prods.Delete(id); err != nil {
		if err == sql.ErrNoRows {
			return ErrProductNotFound
		}
		return err
	}
	s.removeImage(p.ImageURL)
	return nil
}

// removeImage deletes an uploaded file referenced as /uploads/<name>. Missing
// files are not an error; the catalog row is already gone.
func (s *CatalogService) removeImage(imageURL string) {
	const prefix = "/uploads/"
	if !strings.HasPrefix(imageURL, prefix) {
		return
	}
	name := filepath.Base(strings.TrimPrefix(imageURL, prefix))
	if name == "." || name == "/" {
		return
	}
	_ = os.Remove(filepath.Join(s.UploadDir, name))
}
