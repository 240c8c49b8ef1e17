package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"gorm.io/gorm"

	"github.com/kamaudev/dukashop/internal/logging"
	"github.com/kamaudev/dukashop/internal/models"
	"github.com/kamaudev/dukashop/internal/service"
)

var categories = map[string]bool{
	models.CategorySeedlingBags: true,
	models.CategoryElectronics:  true,
	models.CategoryServices:     true,
}

type Service struct {
	DB    *gorm.DB
	ES    *elasticsearch.Client
	Index string
}

type ProductInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Price       float64  `json:"price"`
	Stock       uint     `json:"stock"`
	Images      []string `json:"images"`
	Active      *bool    `json:"active"`
}

func (in *ProductInput) validate() error {
	if in.Name == "" {
		return fmt.Errorf("%w: name required", service.ErrValidation)
	}
	if !categories[in.Category] {
		return fmt.Errorf("%w: unknown category %q", service.ErrValidation, in.Category)
	}
	if in.Price < 0 {
		return fmt.Errorf("%w: price must be >= 0", service.ErrValidation)
	}
	return nil
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	product := models.Product{
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Price:       in.Price,
		Stock:       in.Stock,
		Images:      in.Images,
		Active:      true,
	}
	if in.Active != nil {
		product.Active = *in.Active
	}
	if err := s.DB.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	s.index(ctx, &product)
	return &product, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var product models.Product
	if err := s.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", service.ErrNotFound, id)
		}
		return nil, err
	}
	product.Name = in.Name
	product.Description = in.Description
	product.Category = in.Category
	product.Price = in.Price
	product.Stock = in.Stock
	product.Images = in.Images
	if in.Active != nil {
		product.Active = *in.Active
	}
	if err := s.DB.WithContext(ctx).Save(&product).Error; err != nil {
		return nil, err
	}
	s.index(ctx, &product)
	return &product, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: product %d", service.ErrNotFound, id)
	}
	s.deindex(ctx, id)
	return nil
}

func (s *Service) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := s.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", service.ErrNotFound, id)
		}
		return nil, err
	}
	return &product, nil
}

type ListFilter struct {
	Category   string
	ActiveOnly bool
	Offset     int
	Limit      int
}

func (s *Service) ListProducts(ctx context.Context, f ListFilter) ([]models.Product, int64, error) {
	q := s.DB.WithContext(ctx).Model(&models.Product{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.ActiveOnly {
		q = q.Where("active = ?", true)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var products []models.Product
	err := q.Order("id ASC").Offset(f.Offset).Limit(f.Limit).Find(&products).Error
	return products, total, err
}

// index mirrors the product into elasticsearch. Search is best-effort: an
// indexing failure is logged and the write proceeds.
func (s *Service) index(ctx context.Context, product *models.Product) {
	if s.ES == nil {
		return
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(product); err != nil {
		logging.FromContext(ctx).Error("es encode failed", "product_id", product.ID, "error", err)
		return
	}
	res, err := s.ES.Index(
		s.Index,
		&buf,
		s.ES.Index.WithContext(ctx),
		s.ES.Index.WithDocumentID(strconv.FormatUint(uint64(product.ID), 10)),
	)
	if err != nil {
		logging.FromContext(ctx).Error("es index failed", "product_id", product.ID, "error", err)
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		logging.FromContext(ctx).Error("es index rejected", "product_id", product.ID, "status", res.Status())
	}
}

func (s *Service) deindex(ctx context.Context, id uint) {
	if s.ES == nil {
		return
	}
	res, err := s.ES.Delete(
		s.Index,
		strconv.FormatUint(uint64(id), 10),
		s.ES.Delete.WithContext(ctx),
	)
	if err != nil {
		logging.FromContext(ctx).Error("es delete failed", "product_id", id, "error", err)
		return
	}
	res.Body.Close()
}
