package disease

import (
	"strings"

	"harvestease-backend/internal/database"
	"harvestease-backend/internal/models"
	"harvestease-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type DiseaseRequest struct {
	Name                 string   `json:"name" validate:"required,max=100"`
	AffectedParts        []string `json:"affected_parts" validate:"required,min=1"`
	Symptoms             []string `json:"symptoms" validate:"required,min=1"`
	FavorableConditions  []string `json:"favorable_conditions" validate:"required,min=1"`
	Treatments           []string `json:"treatments" validate:"required,min=1"`
	NextSeasonManagement []string `json:"next_season_management" validate:"required,min=1"`
	ImagePath            string   `json:"image_path" validate:"max=255"`
}

type DiseaseResponse struct {
	ID                   uint     `json:"id"`
	Name                 string   `json:"name"`
	AffectedParts        []string `json:"affected_parts"`
	Symptoms             []string `json:"symptoms"`
	FavorableConditions  []string `json:"favorable_conditions"`
	Treatments           []string `json:"treatments"`
	NextSeasonManagement []string `json:"next_season_management"`
	ImagePath            string   `json:"image_path,omitempty"`
}

func toDiseaseResponse(d *models.DiseaseRecord) DiseaseResponse {
	return DiseaseResponse{
		ID:                   d.ID,
		Name:                 d.Name,
		AffectedParts:        d.AffectedParts,
		Symptoms:             d.Symptoms,
		FavorableConditions:  d.FavorableConditions,
		Treatments:           d.Treatments,
		NextSeasonManagement: d.NextSeasonManagement,
		ImagePath:            d.ImagePath,
	}
}

// POST /api/diseases (admin)
func CreateDiseaseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body DiseaseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if err := validation.Struct(body); err != nil {
			return err
		}

		d := models.DiseaseRecord{
			Name:                 body.Name,
			AffectedParts:        body.AffectedParts,
			Symptoms:             body.Symptoms,
			FavorableConditions:  body.FavorableConditions,
			Treatments:           body.Treatments,
			NextSeasonManagement: body.NextSeasonManagement,
			ImagePath:            body.ImagePath,
		}

		if err := database.DB.Create(&d).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save disease record")
		}

		return c.Status(fiber.StatusCreated).JSON(toDiseaseResponse(&d))
	}
}

// GET /api/diseases
func ListDiseasesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var rows []models.DiseaseRecord
		if err := database.DB.Order("name asc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list diseases")
		}

		resp := make([]DiseaseResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, toDiseaseResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/diseases/:id
func GetDiseaseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var d models.DiseaseRecord
		if err := database.DB.First(&d, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Disease record not found")
		}
		return c.JSON(toDiseaseResponse(&d))
	}
}

// PUT /api/diseases/:id (admin)
func UpdateDiseaseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var d models.DiseaseRecord
		if err := database.DB.First(&d, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Disease record not found")
		}

		var body DiseaseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if err := validation.Struct(body); err != nil {
			return err
		}

		d.Name = body.Name
		d.AffectedParts = body.AffectedParts
		d.Symptoms = body.Symptoms
		d.FavorableConditions = body.FavorableConditions
		d.Treatments = body.Treatments
		d.NextSeasonManagement = body.NextSeasonManagement
		if body.ImagePath != "" {
			d.ImagePath = body.ImagePath
		}

		if err := database.DB.Save(&d).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update disease record")
		}

		return c.JSON(toDiseaseResponse(&d))
	}
}

// DELETE /api/diseases/:id (admin)
func DeleteDiseaseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var d models.DiseaseRecord
		if err := database.DB.First(&d, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Disease record not found")
		}

		if err := database.DB.Delete(&d).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete disease record")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

type SearchRequest struct {
	AffectedParts []string `json:"affected_parts"`
	Symptoms      []string `json:"symptoms"`
}

type SearchResponse struct {
	Source  string  `json:"source"` // "local" or "external"
	Matches []Match `json:"matches"`
}

// matchesAny: case-insensitive substring match of any query term
// against any entry of the stored list.
func matchesAny(terms, stored []string) bool {
	for _, term := range terms {
		t := strings.ToLower(strings.TrimSpace(term))
		if t == "" {
			continue
		}
		for _, s := range stored {
			if strings.Contains(strings.ToLower(s), t) {
				return true
			}
		}
	}
	return false
}

// POST /api/diseases/search
//
// Local knowledge base first; when nothing matches, the external
// identification collaborator answers and its result is returned
// verbatim. Identifier failures surface to the caller immediately, no
// retry.
func SearchDiseasesHandler(ident Identifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SearchRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if len(body.AffectedParts) == 0 && len(body.Symptoms) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "affected_parts or symptoms required")
		}

		var records []models.DiseaseRecord
		if err := database.DB.Find(&records).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not search diseases")
		}

		matches := make([]Match, 0)
		for i := range records {
			r := &records[i]
			partsHit := len(body.AffectedParts) > 0 && matchesAny(body.AffectedParts, r.AffectedParts)
			symptomsHit := len(body.Symptoms) > 0 && matchesAny(body.Symptoms, r.Symptoms)
			if partsHit || symptomsHit {
				matches = append(matches, Match{
					Name:       r.Name,
					Treatments: r.Treatments,
					Source:     "local",
				})
			}
		}

		if len(matches) > 0 {
			return c.JSON(SearchResponse{Source: "local", Matches: matches})
		}

		external, err := ident.Identify(body.AffectedParts, body.Symptoms)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Identification service unavailable: "+err.Error())
		}

		return c.JSON(SearchResponse{Source: "external", Matches: external})
	}
}
