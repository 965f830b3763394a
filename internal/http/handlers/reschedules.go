package handlers

import (
	"net/http"

	"tourbooking/internal/domain/models"
	"tourbooking/internal/http/middleware"
	"tourbooking/internal/services"
	"tourbooking/internal/utils"

	"github.com/gin-gonic/gin"
)

func rescheduleSvc(c *gin.Context) services.RescheduleService {
	_, notifier, _ := deps()
	return services.RescheduleService{
		Notifier:  notifier,
		RequestID: middleware.GetRequestID(c),
	}
}

type rescheduleRequest struct {
	BookingID   int64  `json:"booking_id" validate:"required,min=1"`
	TanggalBaru string `json:"tanggal_baru" validate:"required"`
	Alasan      string `json:"alasan"`
}

// POST /api/reschedules/validate
//
// Dry run: answers whether the new date would pass the eligibility rules,
// without creating anything.
func ValidateReschedule(c *gin.Context) {
	var req rescheduleRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		RespondError(c, http.StatusBadRequest, "payload tidak valid", err)
		return
	}
	baru, err := utils.ParseDate(req.TanggalBaru)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "tanggal_baru tidak valid", err)
		return
	}

	if err := rescheduleSvc(c).Validate(middleware.GetUserID(c), req.BookingID, baru); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"eligible": true})
}

// POST /api/reschedules
func CreateReschedule(c *gin.Context) {
	var req rescheduleRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		RespondError(c, http.StatusBadRequest, "payload tidak valid", err)
		return
	}
	baru, err := utils.ParseDate(req.TanggalBaru)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "tanggal_baru tidak valid", err)
		return
	}

	rs, err := rescheduleSvc(c).Create(middleware.GetUserID(c), req.BookingID, baru, req.Alasan)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reschedulePayload(rs))
}

type rescheduleDecisionRequest struct {
	Status       string `json:"status" validate:"required,oneof=approved rejected"`
	CatatanAdmin string `json:"catatan_admin"`
}

// PUT /api/reschedules/:id/status (admin)
func UpdateRescheduleStatus(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	var req rescheduleDecisionRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		RespondError(c, http.StatusBadRequest, "payload tidak valid", err)
		return
	}

	rs, err := rescheduleSvc(c).UpdateStatus(id, middleware.GetUserID(c), req.Status, req.CatatanAdmin)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, reschedulePayload(rs))
}

// GET /api/reschedules/:id
func GetReschedule(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	rs, err := rescheduleSvc(c).Get(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if middleware.GetRole(c) != models.RoleAdmin && rs.CustomerID != middleware.GetUserID(c) {
		RespondError(c, http.StatusForbidden, "reschedule milik customer lain", nil)
		return
	}
	c.JSON(http.StatusOK, reschedulePayload(rs))
}

// GET /api/reschedules
func ListMyReschedules(c *gin.Context) {
	list, err := rescheduleSvc(c).ListMine(middleware.GetUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reschedules": reschedulePayloads(list)})
}

// GET /api/bookings/:id/reschedules
func ListBookingReschedules(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	booking, err := bookingSvc(c).GetBooking(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if !ownsBooking(c, booking) {
		RespondError(c, http.StatusForbidden, "booking milik customer lain", nil)
		return
	}
	list, err := rescheduleSvc(c).ListByBooking(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reschedules": reschedulePayloads(list)})
}

// GET /api/reschedules/pending (admin)
func ListPendingReschedules(c *gin.Context) {
	list, err := rescheduleSvc(c).ListPending()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reschedules": reschedulePayloads(list)})
}

func reschedulePayloads(list []models.Reschedule) []gin.H {
	out := make([]gin.H, 0, len(list))
	for _, rs := range list {
		out = append(out, reschedulePayload(rs))
	}
	return out
}

func reschedulePayload(rs models.Reschedule) gin.H {
	return gin.H{
		"id":            rs.ID,
		"booking_id":    rs.BookingID,
		"customer_id":   rs.CustomerID,
		"tanggal_lama":  utils.FormatDate(rs.TanggalLama),
		"tanggal_baru":  utils.FormatDate(rs.TanggalBaru),
		"alasan":        rs.Alasan,
		"status":        rs.Status,
		"catatan_admin": rs.CatatanAdmin,
		"created_at":    utils.FormatDateTime(rs.CreatedAt),
	}
}
