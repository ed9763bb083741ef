package service

import (
	"context"
	"fmt"
	"log"

	"rental-quotes/models"
	"rental-quotes/repository"
	"rental-quotes/utils"
)

// EquipmentImageServiceInterface defines the contract for equipment image uploads
type EquipmentImageServiceInterface interface {
	Upload(ctx context.Context, equipmentID int64, imageData []byte) (*models.Equipment, error)
}

// EquipmentImageService optimizes uploaded equipment photos, stores them and
// records the resulting URL on the equipment
type EquipmentImageService struct {
	store      ObjectStore
	repository repository.EquipmentRepositoryInterface
}

// NewEquipmentImageService creates a new EquipmentImageService
func NewEquipmentImageService(store ObjectStore, repo repository.EquipmentRepositoryInterface) *EquipmentImageService {
	return &EquipmentImageService{store: store, repository: repo}
}

// Ensure EquipmentImageService implements EquipmentImageServiceInterface
var _ EquipmentImageServiceInterface = (*EquipmentImageService)(nil)

// Upload replaces the equipment's image. The equipment is unchanged if storing fails.
func (s *EquipmentImageService) Upload(ctx context.Context, equipmentID int64, imageData []byte) (*models.Equipment, error) {
	if s.store == nil {
		return nil, &ExternalServiceError{Service: "image storage", Err: ErrNotConfigured}
	}
	equipment, err := s.repository.Get(ctx, equipmentID)
	if err != nil {
		return nil, err
	}

	optimized, err := OptimizeImage(imageData, ImageSizeMedium)
	if err != nil {
		return nil, &ValidationError{Field: "image", Message: err.Error()}
	}

	name := utils.EquipmentImageFileName(equipment.ID, equipment.Name)
	log.Printf("📤 Upload: Storing image %s for equipment id=%d", name, equipmentID)
	url, err := s.store.Put(ctx, name, "image/jpeg", optimized)
	if err != nil {
		log.Printf("❌ Upload: Error storing image for equipment id=%d: %v", equipmentID, err)
		return nil, &ExternalServiceError{Service: "image storage", Err: err}
	}

	updated, err := s.repository.SetImage(ctx, equipmentID, url)
	if err != nil {
		return nil, fmt.Errorf("failed to record image: %w", err)
	}
	log.Printf("✅ Upload: Equipment id=%d image set to %s", equipmentID, url)
	return updated, nil
}
