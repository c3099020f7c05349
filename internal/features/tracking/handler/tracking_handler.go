package handler

import (
	"package-tracker/internal/features/tracking/domain"
	"package-tracker/internal/features/tracking/service"

	"github.com/gofiber/fiber/v2"
)

// TrackingHandler handles HTTP requests for tracking operations.
type TrackingHandler struct {
	tracker *service.TrackerService
}

// NewTrackingHandler creates a new TrackingHandler.
func NewTrackingHandler(tracker *service.TrackerService) *TrackingHandler {
	return &TrackingHandler{
		tracker: tracker,
	}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// BatchRequest is the body of a batch tracking request.
type BatchRequest struct {
	// TrackingNumbers are the numbers to look up, at most one result each.
	TrackingNumbers []string `json:"tracking_numbers"`
}

// DetectResponse reports the outcome of pattern-based carrier detection.
type DetectResponse struct {
	TrackingNumber  string             `json:"tracking_number"`
	DetectedCarrier domain.CarrierType `json:"detected_carrier"`
	Confidence      string             `json:"confidence"`
}

// knownCarriers maps the accepted carrier query values.
var knownCarriers = map[string]domain.CarrierType{
	string(domain.CarrierUSPS):      domain.CarrierUSPS,
	string(domain.CarrierUPS):       domain.CarrierUPS,
	string(domain.CarrierFedEx):     domain.CarrierFedEx,
	string(domain.CarrierDHL):       domain.CarrierDHL,
	string(domain.CarrierAmazon):    domain.CarrierAmazon,
	string(domain.CarrierOnTrac):    domain.CarrierOnTrac,
	string(domain.CarrierLaserShip): domain.CarrierLaserShip,
}

// TrackPackage godoc
// @Summary Track a package
// @Description Tracks a package by tracking number. The carrier is auto-detected when not provided.
// @Tags tracking
// @Produce json
// @Param number path string true "Tracking Number"
// @Param carrier query string false "Carrier (usps, ups, fedex, dhl, amazon, ontrac, lasership)"
// @Success 200 {object} domain.TrackResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} domain.TrackResult
// @Router /api/track/{number} [get]
func (h *TrackingHandler) TrackPackage(c *fiber.Ctx) error {
	trackingNumber := c.Params("number")
	if trackingNumber == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "tracking number is required",
			RayID:   rayID(c),
		})
	}

	var carrier domain.CarrierType
	if raw := c.Query("carrier"); raw != "" {
		known, ok := knownCarriers[raw]
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Message: "unknown carrier: " + raw,
				RayID:   rayID(c),
			})
		}
		carrier = known
	}

	result := h.tracker.Track(c.UserContext(), trackingNumber, carrier)
	if !result.Success {
		return c.Status(fiber.StatusNotFound).JSON(result)
	}

	return c.JSON(result)
}

// TrackBatch godoc
// @Summary Track multiple packages
// @Description Tracks several packages concurrently. Results keep the input order; failures are per-item.
// @Tags tracking
// @Accept json
// @Produce json
// @Param request body BatchRequest true "Tracking numbers"
// @Success 200 {object} domain.BatchResult
// @Failure 400 {object} ErrorResponse
// @Router /api/track/batch [post]
func (h *TrackingHandler) TrackBatch(c *fiber.Ctx) error {
	var request BatchRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "invalid request body",
			RayID:   rayID(c),
		})
	}

	if len(request.TrackingNumbers) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "tracking_numbers is required",
			RayID:   rayID(c),
		})
	}

	return c.JSON(h.tracker.TrackBatch(c.UserContext(), request.TrackingNumbers))
}

// DetectCarrier godoc
// @Summary Detect the carrier for a tracking number
// @Description Resolves the issuing carrier from the tracking number format.
// @Tags tracking
// @Produce json
// @Param number path string true "Tracking Number"
// @Success 200 {object} DetectResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/detect/{number} [get]
func (h *TrackingHandler) DetectCarrier(c *fiber.Ctx) error {
	trackingNumber := c.Params("number")
	if trackingNumber == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "tracking number is required",
			RayID:   rayID(c),
		})
	}

	detected := h.tracker.Detect(trackingNumber)
	confidence := "high"
	if detected == domain.CarrierUnknown {
		confidence = "none"
	}

	return c.JSON(DetectResponse{
		TrackingNumber:  trackingNumber,
		DetectedCarrier: detected,
		Confidence:      confidence,
	})
}

// ListCarriers godoc
// @Summary List supported carriers
// @Description Lists every registered carrier with its validation patterns and tracking URL template.
// @Tags tracking
// @Produce json
// @Success 200 {array} domain.CarrierInfo
// @Router /api/carriers [get]
func (h *TrackingHandler) ListCarriers(c *fiber.Ctx) error {
	return c.JSON(h.tracker.Carriers())
}

func rayID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}
