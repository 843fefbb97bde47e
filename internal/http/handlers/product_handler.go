package handlers

import (
	"errors"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	applog "soltienda/internal/log"
	"soltienda/internal/services"
	"soltienda/internal/validate"
)

type ProductHandler struct {
	Catalog   *services.CatalogService
	UploadDir string
}

// GET /api/products?search=&category=
func (h *ProductHandler) List(c *fiber.Ctx) error {
	search := strings.TrimSpace(c.Query("search"))
	category := strings.TrimSpace(c.Query("category"))
	if category != "" {
		if _, ok := validate.ID(category); !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "category"})
			return jsonError(c, fiber.StatusBadRequest, "invalid category")
		}
	}
	products, err := h.Catalog.List(search, category)
	if err != nil {
		applog.Error(c, "products.list.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "could not load products")
	}
	return c.JSON(products)
}

// GET /api/products/:id
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusNotFound, "product not found")
	}
	p, err := h.Catalog.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			return jsonError(c, fiber.StatusNotFound, "product not found")
		}
		applog.Error(c, "products.get.fail", err, map[string]any{"product_id": id})
		return jsonError(c, fiber.StatusInternalServerError, "could not load product")
	}
	return c.JSON(p)
}

// GET /api/categories
func (h *ProductHandler) Categories(c *fiber.Ctx) error {
	cats, err := h.Catalog.Categories()
	if err != nil {
		applog.Error(c, "categories.list.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "could not load categories")
	}
	return c.JSON(cats)
}

// POST /api/products  (admin, multipart; image optional)
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	in, msg := h.parseInput(c)
	if msg != "" {
		applog.Security(c, "validation.fail", map[string]any{"field": msg})
		return jsonError(c, fiber.StatusBadRequest, "invalid "+msg)
	}
	imageURL, err := h.saveImage(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	in.ImageURL = imageURL

	p, err := h.Catalog.Create(in)
	if err != nil {
		applog.Error(c, "products.create.fail", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "could not save product")
	}
	applog.Audit(c, "products.create", map[string]any{"product_id": p.ID, "name": p.Name})
	return c.Status(fiber.StatusCreated).JSON(p)
}

// PUT /api/products/:id  (admin, multipart; image optional)
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusNotFound, "product not found")
	}
	in, msg := h.parseInput(c)
	if msg != "" {
		applog.Security(c, "validation.fail", map[string]any{"field": msg})
		return jsonError(c, fiber.StatusBadRequest, "invalid "+msg)
	}
	imageURL, err := h.saveImage(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	in.ImageURL = imageURL

	p, err := h.Catalog.Update(id, in)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			return jsonError(c, fiber.StatusNotFound, "product not found")
		}
		applog.Error(c, "products.update.fail", err, map[string]any{"product_id": id})
		return jsonError(c, fiber.StatusInternalServerError, "could not save product")
	}
	applog.Audit(c, "products.update", map[string]any{"product_id": id})
	return c.JSON(p)
}

// DELETE /api/products/:id  (admin)
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusNotFound, "product not found")
	}
	if err := h.Catalog.Delete(id); err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			return jsonError(c, fiber.StatusNotFound, "product not found")
		}
		applog.Error(c, "products.delete.fail", err, map[string]any{"product_id": id})
		return jsonError(c, fiber.StatusInternalServerError, "could not delete product")
	}
	applog.Audit(c, "products.delete", map[string]any{"product_id": id})
	return c.JSON(fiber.Map{"message": "product deleted"})
}

// parseInput validates the admin form fields; the returned string names the
// first offending field, empty on success.
func (h *ProductHandler) parseInput(c *fiber.Ctx) (services.ProductInput, string) {
	name, ok := validate.Name(c.FormValue("name"))
	if !ok {
		return services.ProductInput{}, "name"
	}
	price, ok := validate.Price(c.FormValue("price"))
	if !ok {
		return services.ProductInput{}, "price"
	}
	currency, ok := validate.Currency(c.FormValue("currency"))
	if !ok {
		return services.ProductInput{}, "currency"
	}
	category, ok := validate.ID(c.FormValue("category"))
	if !ok {
		return services.ProductInput{}, "category"
	}
	stock, ok := validate.Stock(c.FormValue("stock"))
	if !ok {
		return services.ProductInput{}, "stock"
	}
	return services.ProductInput{
		Name:        name,
		Description: strings.TrimSpace(c.FormValue("description")),
		Price:       price,
		Currency:    currency,
		Category:    category,
		Stock:       stock,
	}, ""
}

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// saveImage stores an optional multipart "image" under UploadDir with a
// uuid-derived name. 5 MiB cap, jpeg/png only.
func (h *ProductHandler) saveImage(c *fiber.Ctx) (string, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return "", nil // no file sent
	}
	if fh.Size > 5<<20 {
		return "", errors.New("image larger than 5MB")
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !imageExts[ext] || !isImageUpload(fh) {
		applog.Security(c, "upload.reject", map[string]any{"name": fh.Filename})
		return "", errors.New("only jpeg/jpg/png images are allowed")
	}
	name := uuid.NewString() + ext
	if err := c.SaveFile(fh, filepath.Join(h.UploadDir, name)); err != nil {
		return "", errors.New("could not store image")
	}
	return "/uploads/" + name, nil
}

func isImageUpload(fh *multipart.FileHeader) bool {
	ct := fh.Header.Get("Content-Type")
	return ct == "image/jpeg" || ct == "image/png"
}
