package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/logistics-erp/internal/models"
	"github.com/example/logistics-erp/internal/utils"
)

const fleetPrefix = "FLT-"

// FleetHandler manages vehicles.
type FleetHandler struct {
	db *gorm.DB
}

// NewFleetHandler constructs FleetHandler.
func NewFleetHandler(db *gorm.DB) *FleetHandler {
	return &FleetHandler{db: db}
}

// ListVehicles returns the fleet ordered by id.
func (h *FleetHandler) ListVehicles(c *fiber.Ctx) error {
	vehicles := make([]models.Vehicle, 0)
	if err := h.db.WithContext(c.UserContext()).Order("fleet_id ASC").Find(&vehicles).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": vehicles})
}

// NextID returns the next free fleet id.
func (h *FleetHandler) NextID(c *fiber.Ctx) error {
	id, err := nextFleetID(h.db.WithContext(c.UserContext()))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"id": id}})
}

type vehicleRequest struct {
	ID          string `json:"id"`
	Vehicle     string `json:"vehicle"`
	Driver      string `json:"driver"`
	Location    string `json:"location"`
	LastService string `json:"lastService"`
	NextService string `json:"nextService"`
}

// CreateVehicle adds a vehicle, generating its id when none is given.
func (h *FleetHandler) CreateVehicle(c *fiber.Ctx) error {
	var req vehicleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Vehicle) == "" || strings.TrimSpace(req.Driver) == "" || strings.TrimSpace(req.Location) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "vehicle, driver and location are required")
	}
	for _, date := range []string{req.LastService, req.NextService} {
		if date == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "service dates must use YYYY-MM-DD")
		}
	}

	vehicle := models.Vehicle{
		ID:          strings.TrimSpace(req.ID),
		Vehicle:     req.Vehicle,
		Driver:      req.Driver,
		Location:    req.Location,
		LastService: req.LastService,
		NextService: req.NextService,
	}

	err := h.db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if vehicle.ID == "" {
			id, err := nextFleetID(tx)
			if err != nil {
				return err
			}
			vehicle.ID = id
		}

		var count int64
		if err := tx.Model(&models.Vehicle{}).Where("fleet_id = ?", vehicle.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "fleet id already exists")
		}
		return tx.Create(&vehicle).Error
	})
	if err != nil {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return fiberErr
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Vehicle added successfully",
		"data":    vehicle,
	})
}

func nextFleetID(db *gorm.DB) (string, error) {
	var ids []string
	if err := db.Model(&models.Vehicle{}).Pluck("fleet_id", &ids).Error; err != nil {
		return "", err
	}
	return utils.NextSequence(ids, fleetPrefix, 4), nil
}
