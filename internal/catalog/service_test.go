package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JosherenPro/ManiocAGRI/internal/account"
	"github.com/JosherenPro/ManiocAGRI/internal/catalog"
)

type mockProductRepository struct {
	listFunc     func(ctx context.Context) ([]catalog.Product, error)
	getByIDFunc  func(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
	createFunc   func(ctx context.Context, product *catalog.Product) error
	updateFunc   func(ctx context.Context, product *catalog.Product) error
	deleteFunc   func(ctx context.Context, id uuid.UUID) error
	setImageFunc func(ctx context.Context, id uuid.UUID, imageURL string) (*catalog.Product, error)
}

func (m *mockProductRepository) List(ctx context.Context) ([]catalog.Product, error) {
	return m.listFunc(ctx)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	return m.createFunc(ctx, product)
}

func (m *mockProductRepository) Update(ctx context.Context, product *catalog.Product) error {
	return m.updateFunc(ctx, product)
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

func (m *mockProductRepository) SetImage(ctx context.Context, id uuid.UUID, imageURL string) (*catalog.Product, error) {
	return m.setImageFunc(ctx, id, imageURL)
}

func TestService_Create(t *testing.T) {
	producerID := uuid.Must(uuid.NewV4())

	tests := []struct {
		name       string
		actor      *account.User
		product    *catalog.Product
		createFunc func(ctx context.Context, product *catalog.Product) error
		wantErr    bool
		wantErrIs  error
	}{
		{
			name:    "producer_creates_and_owns",
			actor:   &account.User{ID: producerID, Role: account.RoleProducer, Approved: true},
			product: &catalog.Product{Name: "Manioc frais", Price: 500, StockQuantity: 40},
		},
		{
			name:    "admin_creates",
			actor:   &account.User{ID: uuid.Must(uuid.NewV4()), Role: account.RoleAdmin},
			product: &catalog.Product{Name: "Manioc frais", Price: 500, StockQuantity: 40},
		},
		{
			name:      "client_not_permitted",
			actor:     &account.User{ID: uuid.Must(uuid.NewV4()), Role: account.RoleClient},
			product:   &catalog.Product{Name: "Manioc frais", Price: 500},
			wantErr:   true,
			wantErrIs: catalog.ErrNotPermitted,
		},
		{
			name:    "negative_price",
			actor:   &account.User{ID: producerID, Role: account.RoleProducer},
			product: &catalog.Product{Name: "Manioc frais", Price: -1},
			wantErr: true,
		},
		{
			name:    "duplicate_name",
			actor:   &account.User{ID: producerID, Role: account.RoleProducer},
			product: &catalog.Product{Name: "Manioc frais", Price: 500},
			createFunc: func(ctx context.Context, product *catalog.Product) error {
				return catalog.ErrDuplicateName
			},
			wantErr:   true,
			wantErrIs: catalog.ErrDuplicateName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			createFunc := tt.createFunc
			if createFunc == nil {
				createFunc = func(ctx context.Context, product *catalog.Product) error { return nil }
			}
			svc := catalog.NewService(&mockProductRepository{createFunc: createFunc})

			created, err := svc.Create(context.Background(), tt.actor, tt.product)
			if tt.wantErr {
				assert.Error(t, err)
				if tt.wantErrIs != nil {
					assert.True(t, errors.Is(err, tt.wantErrIs))
				}
				return
			}

			require.NoError(t, err)
			assert.True(t, created.ProducerID.Valid)
			assert.Equal(t, tt.actor.ID, created.ProducerID.UUID)
		})
	}
}

func TestService_Update_Ownership(t *testing.T) {
	productID := uuid.Must(uuid.NewV4())
	ownerID := uuid.Must(uuid.NewV4())
	otherID := uuid.Must(uuid.NewV4())

	existing := catalog.Product{
		ID:         productID,
		Name:       "Manioc frais",
		Price:      500,
		ImageURL:   "/images/products/manioc.jpg",
		ProducerID: uuid.NullUUID{UUID: ownerID, Valid: true},
	}

	tests := []struct {
		name      string
		actor     *account.User
		wantErrIs error
	}{
		{name: "owner_updates", actor: &account.User{ID: ownerID, Role: account.RoleProducer}},
		{name: "admin_updates", actor: &account.User{ID: otherID, Role: account.RoleAdmin}},
		{name: "other_producer_blocked", actor: &account.User{ID: otherID, Role: account.RoleProducer}, wantErrIs: catalog.ErrNotPermitted},
		{name: "manager_blocked", actor: &account.User{ID: otherID, Role: account.RoleManager}, wantErrIs: catalog.ErrNotPermitted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := catalog.NewService(&mockProductRepository{
				getByIDFunc: func(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
					product := existing
					return &product, nil
				},
				updateFunc: func(ctx context.Context, product *catalog.Product) error { return nil },
			})

			updated, err := svc.Update(context.Background(), tt.actor, &catalog.Product{
				ID:            productID,
				Name:          "Manioc frais",
				Price:         600,
				StockQuantity: 35,
			})
			if tt.wantErrIs != nil {
				assert.True(t, errors.Is(err, tt.wantErrIs), "got %v", err)
				return
			}

			require.NoError(t, err)
			// Ownership and image survive a patch that does not touch them.
			assert.Equal(t, existing.ProducerID, updated.ProducerID)
			assert.Equal(t, existing.ImageURL, updated.ImageURL)
		})
	}
}

func TestService_Delete_Ownership(t *testing.T) {
	productID := uuid.Must(uuid.NewV4())
	ownerID := uuid.Must(uuid.NewV4())

	tests := []struct {
		name      string
		actor     *account.User
		wantErrIs error
	}{
		{name: "owner_deletes", actor: &account.User{ID: ownerID, Role: account.RoleProducer}},
		{name: "admin_deletes", actor: &account.User{ID: uuid.Must(uuid.NewV4()), Role: account.RoleAdmin}},
		{name: "client_blocked", actor: &account.User{ID: uuid.Must(uuid.NewV4()), Role: account.RoleClient}, wantErrIs: catalog.ErrNotPermitted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var deleted bool
			svc := catalog.NewService(&mockProductRepository{
				getByIDFunc: func(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
					return &catalog.Product{ID: productID, ProducerID: uuid.NullUUID{UUID: ownerID, Valid: true}}, nil
				},
				deleteFunc: func(ctx context.Context, id uuid.UUID) error {
					deleted = true
					return nil
				},
			})

			err := svc.Delete(context.Background(), tt.actor, productID)
			if tt.wantErrIs != nil {
				assert.True(t, errors.Is(err, tt.wantErrIs))
				assert.False(t, deleted)
				return
			}

			assert.NoError(t, err)
			assert.True(t, deleted)
		})
	}
}

func TestProduct_LowStock(t *testing.T) {
	assert.True(t, catalog.Product{StockQuantity: 0}.LowStock())
	assert.True(t, catalog.Product{StockQuantity: catalog.LowStockThreshold - 1}.LowStock())
	assert.False(t, catalog.Product{StockQuantity: catalog.LowStockThreshold}.LowStock())
}
