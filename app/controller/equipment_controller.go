package controller

import (
	"io"
	"log"
	"net/http"

	"rental-quotes/models"
	"rental-quotes/repository"
	"rental-quotes/service"
)

const maxImageUploadBytes = 10 << 20

// EquipmentController handles HTTP requests for the equipment catalog
type EquipmentController struct {
	repository repository.EquipmentRepositoryInterface
	images     service.EquipmentImageServiceInterface
}

// NewEquipmentController creates a new EquipmentController
func NewEquipmentController(repo repository.EquipmentRepositoryInterface, images service.EquipmentImageServiceInterface) *EquipmentController {
	return &EquipmentController{
		repository: repo,
		images:     images,
	}
}

func mainCategoryParam(w http.ResponseWriter, r *http.Request, op string) (*models.MainCategory, bool) {
	raw := r.URL.Query().Get("mainCategory")
	if raw == "" {
		return nil, true
	}
	category, err := models.ParseMainCategory(raw)
	if err != nil {
		log.Printf("❌ %s: %v", op, err)
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return &category, true
}

// List handles GET /equipment?mainCategory=production
func (c *EquipmentController) List(w http.ResponseWriter, r *http.Request) {
	category, ok := mainCategoryParam(w, r, "ListEquipment")
	if !ok {
		return
	}
	equipment, err := c.repository.List(r.Context(), category)
	if err != nil {
		writeError(w, "ListEquipment", err)
		return
	}
	writeJSON(w, http.StatusOK, models.EquipmentListResponse{Equipment: equipment})
}

// Get handles GET /equipment/{id}
func (c *EquipmentController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "GetEquipment")
	if !ok {
		return
	}
	equipment, err := c.repository.Get(r.Context(), id)
	if err != nil {
		writeError(w, "GetEquipment", err)
		return
	}
	writeJSON(w, http.StatusOK, equipment)
}

// Catalog handles GET /catalog?mainCategory=home-ec-set
// Example response:
//
//	{
//	  "sections": [
//	    {
//	      "mainCategory": "home-ec-set",
//	      "label": "Home Ec & Set Decoration",
//	      "categories": [{"name": "Furniture", "subcategories": [{"name": "Seating", "equipment": [...]}]}]
//	    }
//	  ]
//	}
func (c *EquipmentController) Catalog(w http.ResponseWriter, r *http.Request) {
	category, ok := mainCategoryParam(w, r, "Catalog")
	if !ok {
		return
	}
	catalog, err := c.repository.Catalog(r.Context(), category)
	if err != nil {
		writeError(w, "Catalog", err)
		return
	}
	writeJSON(w, http.StatusOK, catalog)
}

// Create handles POST /admin/equipment
func (c *EquipmentController) Create(w http.ResponseWriter, r *http.Request) {
	var input models.EquipmentInput
	if !decodeJSON(w, r, "CreateEquipment", &input) {
		return
	}
	equipment, err := c.repository.Create(r.Context(), input)
	if err != nil {
		writeError(w, "CreateEquipment", err)
		return
	}
	log.Printf("✅ CreateEquipment: Created equipment id=%d", equipment.ID)
	writeJSON(w, http.StatusCreated, equipment)
}

// Update handles PUT /admin/equipment/{id}
func (c *EquipmentController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "UpdateEquipment")
	if !ok {
		return
	}
	var input models.EquipmentInput
	if !decodeJSON(w, r, "UpdateEquipment", &input) {
		return
	}
	equipment, err := c.repository.Update(r.Context(), id, input)
	if err != nil {
		writeError(w, "UpdateEquipment", err)
		return
	}
	writeJSON(w, http.StatusOK, equipment)
}

// Delete handles DELETE /admin/equipment/{id}
func (c *EquipmentController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "DeleteEquipment")
	if !ok {
		return
	}
	if err := c.repository.Delete(r.Context(), id); err != nil {
		writeError(w, "DeleteEquipment", err)
		return
	}
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "equipment deleted"})
}

// UploadImage handles POST /admin/equipment/{id}/image as multipart/form-data with an "image" file
func (c *EquipmentController) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "UploadImage")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageUploadBytes)
	file, header, err := r.FormFile("image")
	if err != nil {
		log.Printf("❌ UploadImage: Missing image file: %v", err)
		writeErrorMessage(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "failed to read image file")
		return
	}
	log.Printf("📥 UploadImage: Received %s (%d bytes) for equipment id=%d", header.Filename, len(data), id)

	equipment, err := c.images.Upload(r.Context(), id, data)
	if err != nil {
		writeError(w, "UploadImage", err)
		return
	}
	writeJSON(w, http.StatusOK, equipment)
}
