package handlers

import (
	"net/http"

	"tourbooking/internal/domain/models"
	"tourbooking/internal/http/middleware"
	"tourbooking/internal/services"
	"tourbooking/internal/utils"

	"github.com/gin-gonic/gin"
)

func paymentSvc(c *gin.Context) services.PaymentService {
	_, notifier, gw := deps()
	return services.PaymentService{
		Gateway:   gw,
		Notifier:  notifier,
		RequestID: middleware.GetRequestID(c),
	}
}

type createPaymentRequest struct {
	BookingID int64  `json:"booking_id" validate:"required,min=1"`
	Metode    string `json:"metode_pembayaran"`
}

// POST /api/payments
func CreatePayment(c *gin.Context) {
	var req createPaymentRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		RespondError(c, http.StatusBadRequest, "payload tidak valid", err)
		return
	}

	session, err := paymentSvc(c).CreatePayment(middleware.GetUserID(c), req.BookingID, req.Metode)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"payment":      paymentPayload(session.Payment),
		"snap_token":   session.Token,
		"redirect_url": session.RedirectURL,
	})
}

// GET /api/payments/:id/status
//
// Besides reading the stored row this polls the gateway and reconciles any
// missed webhook, so the response reflects the gateway's latest word.
func GetPaymentStatus(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	payment, err := paymentSvc(c).GetStatus(id, middleware.GetUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, paymentPayload(payment))
}

// POST /api/payments/notification
//
// Gateway callback. Always answers 200 so the gateway stops retrying; the
// body says whether the event was actually applied.
func PaymentNotification(c *gin.Context) {
	var ev services.WebhookEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		utils.LogEvent(middleware.GetRequestID(c), "payment", "webhook", "payload tidak valid: "+err.Error())
		c.JSON(http.StatusOK, services.WebhookResult{Success: false, Message: "payload tidak valid"})
		return
	}
	res := paymentSvc(c).HandleNotification(ev)
	c.JSON(http.StatusOK, res)
}

func paymentPayload(p models.Payment) gin.H {
	return gin.H{
		"id":                p.ID,
		"booking_id":        p.BookingID,
		"customer_id":       p.CustomerID,
		"order_id":          p.OrderID,
		"jumlah_bayar":      p.JumlahBayar,
		"metode_pembayaran": p.MetodePembayaran,
		"status":            p.Status,
		"tanggal":           utils.FormatDateTime(p.TanggalPembayaran),
	}
}
