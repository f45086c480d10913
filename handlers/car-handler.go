package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/krishkalaria12/car-vault/middleware"
	"github.com/krishkalaria12/car-vault/models"
	"github.com/krishkalaria12/car-vault/search"
	"github.com/krishkalaria12/car-vault/store"
	"github.com/krishkalaria12/car-vault/uploads"
	"github.com/krishkalaria12/car-vault/workflow"
)

// requestTimeout bounds every store and upload call so a hung backend never
// leaves a request in flight forever.
const requestTimeout = 30 * time.Second

// CarHandler serves the /api/cars endpoints.
type CarHandler struct {
	store   *store.CarStore
	objects uploads.ObjectStore
	log     *zap.Logger
}

func NewCarHandler(carStore *store.CarStore, objects uploads.ObjectStore, log *zap.Logger) *CarHandler {
	return &CarHandler{store: carStore, objects: objects, log: log}
}

type listResponse struct {
	Total int          `json:"total"`
	Items []models.Car `json:"items"`
}

// List returns the owner's cars newest first, narrowed by ?search= and
// windowed by ?limit=&offset=. The window applies after filtering, so total
// is the post-filter count.
func (h *CarHandler) List(c *fiber.Ctx) error {
	ownerID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	cars, err := h.store.List(ctx, ownerID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	filtered := search.Filter(cars, c.Query("search"))
	total := len(filtered)

	offset := queryInt(c, "offset", 0)
	limit := queryInt(c, "limit", 0)

	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	items := filtered[offset:end]
	if items == nil {
		items = []models.Car{}
	}

	return c.JSON(listResponse{Total: total, Items: items})
}

func (h *CarHandler) Get(c *fiber.Ctx) error {
	ownerID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	car, err := h.store.Get(ctx, ownerID, c.Params("id"))
	if err != nil {
		return c.Status(statusForStoreErr(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(car)
}

// Create accepts a multipart form: title, description, carType, company,
// dealer, tags as a JSON array string, and up to 10 image files under
// "images". Images are uploaded first; the record is written with their
// URLs.
func (h *CarHandler) Create(c *fiber.Ctx) error {
	ownerID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	form := workflow.NewCreateForm()
	form.EditField(workflow.FieldTitle, c.FormValue("title"))
	form.EditField(workflow.FieldDescription, c.FormValue("description"))
	form.EditField(workflow.FieldCarType, c.FormValue("carType"))
	form.EditField(workflow.FieldCompany, c.FormValue("company"))
	form.EditField(workflow.FieldDealer, c.FormValue("dealer"))

	if tagsJSON := c.FormValue("tags"); tagsJSON != "" {
		var tags []string
		if err := json.Unmarshal([]byte(tagsJSON), &tags); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "tags must be a JSON array of strings"})
		}
		for _, tag := range tags {
			form.SetTagInput(tag)
			form.AddTag()
		}
	}

	// Reject an invalid form before any uploads happen: a validation
	// failure must not issue network calls.
	if !form.Validate() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": form.Err()})
	}

	session := uploads.NewSession(h.objects, ownerID)
	if mf, err := c.MultipartForm(); err == nil && mf != nil {
		var files []uploads.File
		for _, fh := range mf.File["images"] {
			f, err := fh.Open()
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "could not read uploaded file"})
			}
			defer f.Close()
			files = append(files, uploads.File{Name: fh.Filename, Data: f})
		}
		if err := session.Add(files...); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	if session.Len() > 0 {
		results, err := session.Upload(ctx)
		if err != nil {
			h.log.Error("upload images", zap.String("owner", ownerID), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upload images"})
		}
		form.CompleteUpload(uploads.URLs(results))
	}

	state := form.Submit(ctx, ownerID, func(ctx context.Context, car *models.Car) error {
		return h.store.Create(ctx, car)
	})

	switch state {
	case workflow.Succeeded:
		return c.Status(fiber.StatusCreated).JSON(form.Result())
	case workflow.Failed:
		if form.FailedValidation() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": form.Err()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": form.Err()})
	default: // Cancelled
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": form.Err()})
	}
}

// Update edits title and description, the only mutable surface.
func (h *CarHandler) Update(c *fiber.Ctx) error {
	ownerID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
	}

	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	carID := c.Params("id")
	existing, err := h.store.Get(ctx, ownerID, carID)
	if err != nil {
		return c.Status(statusForStoreErr(err)).JSON(fiber.Map{"error": err.Error()})
	}

	form := workflow.NewEditForm(*existing)
	form.EditField(workflow.FieldTitle, input.Title)
	form.EditField(workflow.FieldDescription, input.Description)

	state := form.Submit(ctx, ownerID, func(ctx context.Context, car *models.Car) error {
		updated, err := h.store.Update(ctx, ownerID, carID, store.UpdatePatch{
			Title:       car.Title,
			Description: car.Description,
		})
		if err != nil {
			return err
		}
		*car = *updated
		return nil
	})

	switch state {
	case workflow.Succeeded:
		return c.JSON(form.Result())
	case workflow.Failed:
		if form.FailedValidation() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": form.Err()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": form.Err()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": form.Err()})
	}
}

// Delete removes a car permanently after the client-side confirmation.
func (h *CarHandler) Delete(c *fiber.Ctx) error {
	ownerID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	if err := h.store.Delete(ctx, ownerID, c.Params("id")); err != nil {
		return c.Status(statusForStoreErr(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "car deleted"})
}

func statusForStoreErr(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, store.ErrPermissionDenied):
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
