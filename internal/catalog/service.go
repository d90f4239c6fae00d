package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/JosherenPro/ManiocAGRI/internal/account"
)

var (
	ErrNotFound          = errors.New("product not found")
	ErrDuplicateName     = errors.New("a product with this name already exists")
	ErrNotPermitted      = errors.New("not enough permissions")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type Service interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	Create(ctx context.Context, actor *account.User, product *Product) (*Product, error)
	Update(ctx context.Context, actor *account.User, product *Product) (*Product, error)
	Delete(ctx context.Context, actor *account.User, id uuid.UUID) error
	SetImage(ctx context.Context, id uuid.UUID, imageURL string) (*Product, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list products")
		return nil, fmt.Errorf("service: failed to list products: %w", err)
	}
	return products, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to fetch product")
		return nil, fmt.Errorf("service: failed to fetch product: %w", err)
	}
	return product, nil
}

// Create adds a product to the catalogue. Producers and admins only; the
// creating producer becomes the owner.
func (s *service) Create(ctx context.Context, actor *account.User, product *Product) (*Product, error) {
	if actor.Role != account.RoleProducer && actor.Role != account.RoleAdmin {
		return nil, ErrNotPermitted
	}
	if product.Price < 0 {
		return nil, errors.New("service: product price cannot be negative")
	}
	if product.StockQuantity < 0 {
		return nil, errors.New("service: product stock cannot be negative")
	}

	product.ProducerID = uuid.NullUUID{UUID: actor.ID, Valid: true}

	if err := s.repo.Create(ctx, product); err != nil {
		if errors.Is(err, ErrDuplicateName) {
			return nil, ErrDuplicateName
		}
		log.Error().Err(err).Str("name", product.Name).Msg("service: failed to create product")
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}

	log.Info().Stringer("product_id", product.ID).Str("name", product.Name).Msg("service: product created")
	return product, nil
}

// Update patches a product. Admins may edit anything; producers only their
// own products.
func (s *service) Update(ctx context.Context, actor *account.User, product *Product) (*Product, error) {
	existing, err := s.repo.GetByID(ctx, product.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("product_id", product.ID).Msg("service: failed to fetch product for update")
		return nil, fmt.Errorf("service: failed to fetch product for update: %w", err)
	}

	if actor.Role != account.RoleAdmin && (!existing.ProducerID.Valid || existing.ProducerID.UUID != actor.ID) {
		return nil, ErrNotPermitted
	}
	if product.Price < 0 || product.StockQuantity < 0 {
		return nil, errors.New("service: price and stock cannot be negative")
	}

	product.ProducerID = existing.ProducerID
	if product.ImageURL == "" {
		product.ImageURL = existing.ImageURL
	}

	if err := s.repo.Update(ctx, product); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicateName) {
			return nil, err
		}
		log.Error().Err(err).Stringer("product_id", product.ID).Msg("service: failed to update product")
		return nil, fmt.Errorf("service: failed to update product: %w", err)
	}
	return product, nil
}

func (s *service) Delete(ctx context.Context, actor *account.User, id uuid.UUID) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to fetch product for deletion")
		return fmt.Errorf("service: failed to fetch product for deletion: %w", err)
	}

	if actor.Role != account.RoleAdmin && (!existing.ProducerID.Valid || existing.ProducerID.UUID != actor.ID) {
		return ErrNotPermitted
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to delete product")
		return fmt.Errorf("service: failed to delete product: %w", err)
	}

	log.Info().Stringer("product_id", id).Msg("service: product deleted")
	return nil
}

func (s *service) SetImage(ctx context.Context, id uuid.UUID, imageURL string) (*Product, error) {
	product, err := s.repo.SetImage(ctx, id, imageURL)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to set product image")
		return nil, fmt.Errorf("service: failed to set product image: %w", err)
	}
	return product, nil
}
