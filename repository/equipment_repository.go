package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"rental-quotes/models"
	"rental-quotes/utils"
)

const equipmentColumns = `id, name, main_category, category, subcategory, description, image_url,
		specifications, price_per_unit, units_per_item, created_at, updated_at`

// EquipmentRepository handles database operations for the equipment catalog
type EquipmentRepository struct {
	db *sql.DB
}

// NewEquipmentRepository creates a new EquipmentRepository
func NewEquipmentRepository(db *sql.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

// Ensure EquipmentRepository implements EquipmentRepositoryInterface
var _ EquipmentRepositoryInterface = (*EquipmentRepository)(nil)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEquipment(row rowScanner) (*models.Equipment, error) {
	var e models.Equipment
	var subcategory, description, imageURL sql.NullString
	var createdAt, updatedAt nullTime
	specs := []string{}

	err := row.Scan(
		&e.ID,
		&e.Name,
		&e.MainCategory,
		&e.Category,
		&subcategory,
		&description,
		&imageURL,
		jsonColumn{Target: &specs},
		&e.PricePerUnit,
		&e.UnitsPerItem,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Subcategory = stringOrEmpty(subcategory)
	e.Description = stringOrEmpty(description)
	e.ImageURL = stringOrEmpty(imageURL)
	e.Specifications = specs
	e.CreatedAt = createdAt.Time
	e.UpdatedAt = updatedAt.Time
	return &e, nil
}

// List returns equipment ordered for browsing, optionally limited to one main category
func (r *EquipmentRepository) List(ctx context.Context, mainCategory *models.MainCategory) ([]models.Equipment, error) {
	query := `SELECT ` + equipmentColumns + ` FROM equipment`
	var args []interface{}
	if mainCategory != nil {
		query += ` WHERE main_category = $1`
		args = append(args, string(*mainCategory))
	}
	query += ` ORDER BY main_category ASC, category ASC, COALESCE(subcategory, '') ASC, name ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Printf("❌ List: Error querying equipment: %v", err)
		return nil, fmt.Errorf("failed to query equipment: %w", err)
	}
	defer rows.Close()

	equipment := []models.Equipment{}
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			log.Printf("❌ List: Error scanning equipment: %v", err)
			return nil, fmt.Errorf("failed to scan equipment: %w", err)
		}
		equipment = append(equipment, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate equipment: %w", err)
	}

	log.Printf("✅ List: Found %d equipment rows", len(equipment))
	return equipment, nil
}

// Get retrieves a single equipment record
func (r *EquipmentRepository) Get(ctx context.Context, id int64) (*models.Equipment, error) {
	query := `SELECT ` + equipmentColumns + ` FROM equipment WHERE id = $1`
	e, err := scanEquipment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEquipmentNotFound
		}
		log.Printf("❌ Get: Error fetching equipment id=%d: %v", id, err)
		return nil, fmt.Errorf("failed to fetch equipment: %w", err)
	}
	return e, nil
}

// GetMany retrieves equipment by id. Unknown ids are absent from the result.
func (r *EquipmentRepository) GetMany(ctx context.Context, ids []int64) (map[int64]models.Equipment, error) {
	result := make(map[int64]models.Equipment, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := `SELECT ` + equipmentColumns + ` FROM equipment WHERE id IN (` + strings.Join(placeholders, ", ") + `)`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query equipment: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan equipment: %w", err)
		}
		result[e.ID] = *e
	}
	return result, rows.Err()
}

// Create inserts new equipment
func (r *EquipmentRepository) Create(ctx context.Context, input models.EquipmentInput) (*models.Equipment, error) {
	input.Normalize()
	log.Printf("📦 Create: Creating equipment name=%s, mainCategory=%s", input.Name, input.MainCategory)
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	specs, err := toJSON(input.Specifications)
	if err != nil {
		return nil, fmt.Errorf("failed to encode specifications: %w", err)
	}

	query := `
		INSERT INTO equipment (name, main_category, category, subcategory, description, image_url,
			specifications, price_per_unit, units_per_item)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + equipmentColumns

	e, err := scanEquipment(r.db.QueryRowContext(ctx, query,
		input.Name,
		string(input.MainCategory),
		input.Category,
		nullString(input.Subcategory),
		nullString(input.Description),
		nullString(input.ImageURL),
		specs,
		input.PricePerUnit,
		input.UnitsPerItem,
	))
	if err != nil {
		log.Printf("❌ Create: Error creating equipment: %v", err)
		return nil, fmt.Errorf("failed to create equipment: %w", err)
	}

	log.Printf("✅ Create: Successfully created equipment id=%d", e.ID)
	return e, nil
}

// Update replaces every editable field of an equipment record
func (r *EquipmentRepository) Update(ctx context.Context, id int64, input models.EquipmentInput) (*models.Equipment, error) {
	input.Normalize()
	log.Printf("📦 Update: Updating equipment id=%d", id)
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	specs, err := toJSON(input.Specifications)
	if err != nil {
		return nil, fmt.Errorf("failed to encode specifications: %w", err)
	}

	query := `
		UPDATE equipment
		SET name = $1, main_category = $2, category = $3, subcategory = $4, description = $5,
			image_url = $6, specifications = $7, price_per_unit = $8, units_per_item = $9,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $10
		RETURNING ` + equipmentColumns

	e, err := scanEquipment(r.db.QueryRowContext(ctx, query,
		input.Name,
		string(input.MainCategory),
		input.Category,
		nullString(input.Subcategory),
		nullString(input.Description),
		nullString(input.ImageURL),
		specs,
		input.PricePerUnit,
		input.UnitsPerItem,
		id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEquipmentNotFound
		}
		log.Printf("❌ Update: Error updating equipment id=%d: %v", id, err)
		return nil, fmt.Errorf("failed to update equipment: %w", err)
	}

	log.Printf("✅ Update: Successfully updated equipment id=%d", id)
	return e, nil
}

// SetImage records the stored image reference of an equipment record
func (r *EquipmentRepository) SetImage(ctx context.Context, id int64, imageURL string) (*models.Equipment, error) {
	query := `
		UPDATE equipment SET image_url = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
		RETURNING ` + equipmentColumns

	e, err := scanEquipment(r.db.QueryRowContext(ctx, query, nullString(imageURL), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEquipmentNotFound
		}
		return nil, fmt.Errorf("failed to set equipment image: %w", err)
	}
	log.Printf("✅ SetImage: Equipment id=%d image=%s", id, imageURL)
	return e, nil
}

// Delete removes an equipment record. Quotes keep their own snapshot of it.
func (r *EquipmentRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM equipment WHERE id = $1`, id)
	if err != nil {
		log.Printf("❌ Delete: Error deleting equipment id=%d: %v", id, err)
		return fmt.Errorf("failed to delete equipment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrEquipmentNotFound
	}
	log.Printf("✅ Delete: Deleted equipment id=%d", id)
	return nil
}

// Catalog groups equipment by main category, category and subcategory
func (r *EquipmentRepository) Catalog(ctx context.Context, mainCategory *models.MainCategory) (*models.CatalogResponse, error) {
	equipment, err := r.List(ctx, mainCategory)
	if err != nil {
		return nil, err
	}
	return BuildCatalog(equipment), nil
}

// BuildCatalog groups equipment by main category, category and subcategory.
// Category names are compared case-insensitively so "audio" and "Audio" share
// one group. Groups keep first-seen order; main categories follow
// models.MainCategories order.
func BuildCatalog(equipment []models.Equipment) *models.CatalogResponse {
	sections := make(map[models.MainCategory]*models.CatalogSection)
	categoryIndex := make(map[models.MainCategory]map[string]int)
	subcategoryIndex := make(map[models.MainCategory]map[string]map[string]int)

	for _, e := range equipment {
		section, ok := sections[e.MainCategory]
		if !ok {
			section = &models.CatalogSection{
				MainCategory: e.MainCategory,
				Label:        utils.MainCategoryLabel(e.MainCategory),
				Categories:   []models.CatalogCategory{},
			}
			sections[e.MainCategory] = section
			categoryIndex[e.MainCategory] = make(map[string]int)
			subcategoryIndex[e.MainCategory] = make(map[string]map[string]int)
		}
		section.ItemCount++

		categoryName := utils.CapitalizeWords(e.Category)
		categoryKey := strings.ToLower(categoryName)
		ci, ok := categoryIndex[e.MainCategory][categoryKey]
		if !ok {
			ci = len(section.Categories)
			categoryIndex[e.MainCategory][categoryKey] = ci
			subcategoryIndex[e.MainCategory][categoryKey] = make(map[string]int)
			section.Categories = append(section.Categories, models.CatalogCategory{
				Name:          categoryName,
				Subcategories: []models.CatalogSubcategory{},
			})
		}
		category := &section.Categories[ci]

		subName := e.Subcategory
		if subName == "" {
			subName = utils.DefaultSubcategory
		}
		subs := subcategoryIndex[e.MainCategory][categoryKey]
		si, ok := subs[subName]
		if !ok {
			si = len(category.Subcategories)
			subs[subName] = si
			category.Subcategories = append(category.Subcategories, models.CatalogSubcategory{Name: subName})
		}
		category.Subcategories[si].Equipment = append(category.Subcategories[si].Equipment, e)
	}

	response := &models.CatalogResponse{Sections: []models.CatalogSection{}}
	for _, main := range models.MainCategories {
		if section, ok := sections[main]; ok {
			response.Sections = append(response.Sections, *section)
		}
	}
	return response
}
