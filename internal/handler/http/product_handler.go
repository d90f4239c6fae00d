package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/JosherenPro/ManiocAGRI/internal/catalog"
)

// maxImageSize caps product image uploads at 5 MiB.
const maxImageSize = 5 << 20

type ProductRequest struct {
	Name          string `json:"name" validate:"required"`
	Description   string `json:"description"`
	Price         int64  `json:"price" validate:"gte=0"`
	StockQuantity int    `json:"stock_quantity" validate:"gte=0"`
	ImageURL      string `json:"image_url"`
}

type ProductHandler struct {
	products  catalog.Service
	uploadDir string
	validate  *validator.Validate
}

func NewProductHandler(products catalog.Service, uploadDir string) *ProductHandler {
	return &ProductHandler{
		products:  products,
		uploadDir: uploadDir,
		validate:  validator.New(),
	}
}

// RegisterPublicRoutes mounts catalogue listing, which needs no token.
func (h *ProductHandler) RegisterPublicRoutes(router chi.Router) {
	router.Get("/products", h.handleListProducts)
}

// RegisterRoutes mounts the catalogue mutations. The router is expected to be
// authenticated; producer/admin ownership is enforced by the service.
func (h *ProductHandler) RegisterRoutes(router chi.Router) {
	router.Post("/products", h.handleCreateProduct)
	router.Patch("/products/{id}", h.handleUpdateProduct)
	router.Delete("/products/{id}", h.handleDeleteProduct)
	router.Post("/products/{id}/image", h.handleUploadImage)
}

func (h *ProductHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list products")
		respondDomainError(w, err, "Failed to list products")
		return
	}
	respondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := CurrentUser(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var requestPayload ProductRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Error().Err(err).Msg("Failed to decode request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondValidationError(w, err)
		return
	}

	product := catalog.Product{
		Name:          requestPayload.Name,
		Description:   requestPayload.Description,
		Price:         requestPayload.Price,
		StockQuantity: requestPayload.StockQuantity,
		ImageURL:      requestPayload.ImageURL,
	}

	created, err := h.products.Create(r.Context(), actor, &product)
	if err != nil {
		log.Error().Err(err).Str("name", requestPayload.Name).Msg("Failed to create product")
		respondDomainError(w, err, "Failed to create product")
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *ProductHandler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := CurrentUser(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	productID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	var requestPayload ProductRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Error().Err(err).Msg("Failed to decode request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondValidationError(w, err)
		return
	}

	product := catalog.Product{
		ID:            productID,
		Name:          requestPayload.Name,
		Description:   requestPayload.Description,
		Price:         requestPayload.Price,
		StockQuantity: requestPayload.StockQuantity,
		ImageURL:      requestPayload.ImageURL,
	}

	updated, err := h.products.Update(r.Context(), actor, &product)
	if err != nil {
		log.Error().Err(err).Stringer("product_id", productID).Msg("Failed to update product")
		respondDomainError(w, err, "Failed to update product")
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *ProductHandler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	actor, ok := CurrentUser(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	productID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	if err := h.products.Delete(r.Context(), actor, productID); err != nil {
		log.Error().Err(err).Stringer("product_id", productID).Msg("Failed to delete product")
		respondDomainError(w, err, "Failed to delete product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleUploadImage accepts a multipart upload, stores the file under the
// upload directory and records the reference on the product.
func (h *ProductHandler) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid multipart payload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		log.Error().Err(err).Str("dir", h.uploadDir).Msg("Failed to create upload directory")
		respondWithError(w, http.StatusInternalServerError, "Failed to store image")
		return
	}

	fileName := fmt.Sprintf("%s%s", productID, filepath.Ext(header.Filename))
	destPath := filepath.Join(h.uploadDir, fileName)

	dest, err := os.Create(destPath)
	if err != nil {
		log.Error().Err(err).Str("path", destPath).Msg("Failed to create image file")
		respondWithError(w, http.StatusInternalServerError, "Failed to store image")
		return
	}
	defer dest.Close()

	if _, err := io.Copy(dest, file); err != nil {
		log.Error().Err(err).Str("path", destPath).Msg("Failed to write image file")
		respondWithError(w, http.StatusInternalServerError, "Failed to store image")
		return
	}

	updated, err := h.products.SetImage(r.Context(), productID, "/images/products/"+fileName)
	if err != nil {
		log.Error().Err(err).Stringer("product_id", productID).Msg("Failed to record product image")
		respondDomainError(w, err, "Failed to record product image")
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}
