package view

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"

	"github.com/JosherenPro/ManiocAGRI/client"
	"github.com/JosherenPro/ManiocAGRI/client/workflow"
)

// CatalogueAPI is the slice of the HTTP client the catalogue admin view uses.
type CatalogueAPI interface {
	ListProducts(ctx context.Context) ([]client.Product, error)
	CreateProduct(ctx context.Context, req client.ProductRequest) (*client.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req client.ProductRequest) (*client.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	UploadProductImage(ctx context.Context, id uuid.UUID, imagePath string) (*client.Product, error)
}

// CatalogueView owns the product list of the admin screen: a snapshot
// overwritten wholesale on each successful fetch, filtered client-side.
type CatalogueView struct {
	api       CatalogueAPI
	notifier  workflow.Notifier
	confirmer workflow.Confirmer

	products []client.Product
}

func NewCatalogueView(api CatalogueAPI, notifier workflow.Notifier, confirmer workflow.Confirmer) *CatalogueView {
	if notifier == nil {
		notifier = workflow.NopNotifier{}
	}
	return &CatalogueView{api: api, notifier: notifier, confirmer: confirmer}
}

// Products returns the current snapshot.
func (v *CatalogueView) Products() []client.Product {
	return v.products
}

// Refresh replaces the snapshot; on failure the previous one is kept so the
// screen degrades to stale data instead of going blank.
func (v *CatalogueView) Refresh(ctx context.Context) error {
	products, err := v.api.ListProducts(ctx)
	if err != nil {
		v.notifier.Notify(workflow.SeverityError, err.Error())
		return err
	}
	v.products = products
	return nil
}

// Filtered applies the product search to the snapshot.
func (v *CatalogueView) Filtered(query string) []client.Product {
	return Filter(query, v.products, ProductFields)
}

// Create sends the product, then uploads the image if one was given. The
// two calls are strictly sequential: a failed creation leaves the snapshot
// untouched and never attempts the upload. A failed upload after a
// successful creation is surfaced but not rolled back.
func (v *CatalogueView) Create(ctx context.Context, req client.ProductRequest, imagePath string) (*client.Product, error) {
	created, err := v.api.CreateProduct(ctx, req)
	if err != nil {
		v.notifier.Notify(workflow.SeverityError, err.Error())
		return nil, err
	}

	if imagePath != "" {
		if withImage, uploadErr := v.api.UploadProductImage(ctx, created.ID, imagePath); uploadErr != nil {
			v.notifier.Notify(workflow.SeverityWarn, fmt.Sprintf("product %q created, but the image upload failed: %s", created.Name, uploadErr))
		} else {
			created = withImage
		}
	}

	if refreshErr := v.Refresh(ctx); refreshErr == nil {
		v.notifier.Notify(workflow.SeveritySuccess, fmt.Sprintf("product %q created", created.Name))
	}
	return created, nil
}

// Update patches the product and refreshes the snapshot.
func (v *CatalogueView) Update(ctx context.Context, id uuid.UUID, req client.ProductRequest) (*client.Product, error) {
	updated, err := v.api.UpdateProduct(ctx, id, req)
	if err != nil {
		v.notifier.Notify(workflow.SeverityError, err.Error())
		return nil, err
	}

	_ = v.Refresh(ctx)
	v.notifier.Notify(workflow.SeveritySuccess, fmt.Sprintf("product %q updated", updated.Name))
	return updated, nil
}

// Delete removes the product after explicit confirmation.
func (v *CatalogueView) Delete(ctx context.Context, product client.Product) error {
	if v.confirmer == nil || !v.confirmer.Confirm(fmt.Sprintf("Delete product %q?", product.Name)) {
		return workflow.ErrDeclined
	}

	if err := v.api.DeleteProduct(ctx, product.ID); err != nil {
		v.notifier.Notify(workflow.SeverityError, err.Error())
		return err
	}

	_ = v.Refresh(ctx)
	v.notifier.Notify(workflow.SeveritySuccess, fmt.Sprintf("product %q deleted", product.Name))
	return nil
}
