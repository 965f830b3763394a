package handlers

import (
	"net/http"

	"tourbooking/internal/domain/models"
	"tourbooking/internal/http/middleware"
	"tourbooking/internal/services"
	"tourbooking/internal/utils"

	"github.com/gin-gonic/gin"
)

func refundSvc(c *gin.Context) services.RefundService {
	_, notifier, _ := deps()
	return services.RefundService{
		Notifier:  notifier,
		RequestID: middleware.GetRequestID(c),
	}
}

type createRefundRequest struct {
	BookingID       int64  `json:"booking_id"`
	OrderID         int64  `json:"order_id"`
	OrderLuarKotaID int64  `json:"order_luar_kota_id"`
	PaymentID       int64  `json:"payment_id"`
	Alasan          string `json:"alasan" validate:"required"`
	JumlahRefund    int64  `json:"jumlah_refund" validate:"required,min=1"`
	Metode          string `json:"metode_refund"`
	NomorRekening   string `json:"nomor_rekening"`
}

// POST /api/refunds
func CreateRefund(c *gin.Context) {
	var req createRefundRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		RespondError(c, http.StatusBadRequest, "payload tidak valid", err)
		return
	}

	refund, err := refundSvc(c).Create(middleware.GetUserID(c), services.CreateRefundInput{
		BookingID:       req.BookingID,
		OrderID:         req.OrderID,
		OrderLuarKotaID: req.OrderLuarKotaID,
		PaymentID:       req.PaymentID,
		Alasan:          req.Alasan,
		JumlahRefund:    req.JumlahRefund,
		Metode:          req.Metode,
		NomorRekening:   req.NomorRekening,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, refundPayload(refund))
}

// GET /api/refunds/:id
func GetRefund(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	refund, err := refundSvc(c).Get(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if middleware.GetRole(c) != models.RoleAdmin && refund.CustomerID != middleware.GetUserID(c) {
		RespondError(c, http.StatusForbidden, "refund milik customer lain", nil)
		return
	}
	c.JSON(http.StatusOK, refundPayload(refund))
}

// GET /api/refunds
func ListMyRefunds(c *gin.Context) {
	list, err := refundSvc(c).ListByCustomer(middleware.GetUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	out := make([]gin.H, 0, len(list))
	for _, rf := range list {
		out = append(out, refundPayload(rf))
	}
	c.JSON(http.StatusOK, gin.H{"refunds": out})
}

type approveRefundRequest struct {
	Potongan int64 `json:"potongan"`
}

// PUT /api/refunds/:id/approve (admin)
func ApproveRefund(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	var req approveRefundRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	refund, err := refundSvc(c).Approve(id, middleware.GetUserID(c), req.Potongan)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, refundPayload(refund))
}

type rejectRefundRequest struct {
	CatatanAdmin string `json:"catatan_admin"`
}

// PUT /api/refunds/:id/reject (admin)
func RejectRefund(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	var req rejectRefundRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	refund, err := refundSvc(c).Reject(id, middleware.GetUserID(c), req.CatatanAdmin)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, refundPayload(refund))
}

type processRefundRequest struct {
	BuktiRefund string `json:"bukti_refund" validate:"required"`
}

// PUT /api/refunds/:id/process (admin)
func ProcessRefund(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	var req processRefundRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		RespondError(c, http.StatusBadRequest, "payload tidak valid", err)
		return
	}
	refund, err := refundSvc(c).Process(id, middleware.GetUserID(c), req.BuktiRefund)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, refundPayload(refund))
}

// PUT /api/refunds/:id/complete (admin)
func CompleteRefund(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	refund, err := refundSvc(c).Complete(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, refundPayload(refund))
}

func refundPayload(rf models.Refund) gin.H {
	out := gin.H{
		"id":                 rf.ID,
		"booking_id":         rf.BookingID,
		"order_id":           rf.OrderID,
		"order_luar_kota_id": rf.OrderLuarKotaID,
		"payment_id":         rf.PaymentID,
		"customer_id":        rf.CustomerID,
		"kode_refund":        rf.KodeRefund,
		"alasan":             rf.Alasan,
		"jumlah_refund":      rf.JumlahRefund,
		"potongan":           rf.Potongan,
		"jumlah_final":       rf.JumlahFinal,
		"metode_refund":      rf.Metode,
		"nomor_rekening":     rf.NomorRekening,
		"status":             rf.Status,
		"tanggal_pengajuan":  utils.FormatDateTime(rf.TanggalPengajuan),
		"bukti_refund":       rf.BuktiRefund,
		"catatan_admin":      rf.CatatanAdmin,
	}
	if rf.TanggalDisetujui != nil {
		out["tanggal_disetujui"] = utils.FormatDateTime(*rf.TanggalDisetujui)
	}
	if rf.TanggalSelesai != nil {
		out["tanggal_selesai"] = utils.FormatDateTime(*rf.TanggalSelesai)
	}
	return out
}
