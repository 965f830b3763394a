package handlers

import (
	"net/http"

	"tourbooking/internal/domain"
	"tourbooking/internal/domain/models"
	"tourbooking/internal/http/middleware"
	"tourbooking/internal/services"
	"tourbooking/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func bookingSvc(c *gin.Context) services.BookingService {
	_, notifier, _ := deps()
	return services.BookingService{
		Notifier:  notifier,
		RequestID: middleware.GetRequestID(c),
	}
}

type createBookingRequest struct {
	PaketWisataID   int64  `json:"paket_wisata_id"`
	PaketLuarKotaID int64  `json:"paket_luar_kota_id"`
	FasilitasID     int64  `json:"fasilitas_id"`
	TanggalMulai    string `json:"tanggal_mulai_wisata" validate:"required"`
	TanggalSelesai  string `json:"tanggal_selesai_wisata" validate:"required"`
	JumlahPeserta   int    `json:"jumlah_peserta" validate:"required,min=1"`
	EstimasiHarga   int64  `json:"estimasi_harga" validate:"min=0"`
	Catatan         string `json:"catatan"`
	Draft           bool   `json:"draft"`
}

// POST /api/bookings
func CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		RespondError(c, http.StatusBadRequest, "payload tidak valid", err)
		return
	}

	mulai, err := utils.ParseDate(req.TanggalMulai)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "tanggal_mulai_wisata tidak valid", err)
		return
	}
	selesai, err := utils.ParseDate(req.TanggalSelesai)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "tanggal_selesai_wisata tidak valid", err)
		return
	}

	booking, err := bookingSvc(c).CreateBooking(middleware.GetUserID(c), services.CreateBookingInput{
		PaketWisataID:   req.PaketWisataID,
		PaketLuarKotaID: req.PaketLuarKotaID,
		FasilitasID:     req.FasilitasID,
		TanggalMulai:    mulai,
		TanggalSelesai:  selesai,
		JumlahPeserta:   req.JumlahPeserta,
		EstimasiHarga:   req.EstimasiHarga,
		Catatan:         req.Catatan,
		Draft:           req.Draft,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bookingPayload(booking))
}

// GET /api/bookings/:id
func GetBooking(c *gin.Context) {
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
		RespondDomainError(c, domain.UnauthorizedError{Msg: "booking milik customer lain"})
		return
	}
	c.JSON(http.StatusOK, bookingPayload(booking))
}

// ownsBooking: customers only see their own bookings, admins see all.
func ownsBooking(c *gin.Context, b models.Booking) bool {
	if middleware.GetRole(c) == models.RoleAdmin {
		return true
	}
	return b.CustomerID == middleware.GetUserID(c)
}

// GET /api/bookings/history
func BookingHistory(c *gin.Context) {
	list, err := bookingSvc(c).History(middleware.GetUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	out := make([]gin.H, 0, len(list))
	for _, b := range list {
		out = append(out, bookingPayload(b))
	}
	c.JSON(http.StatusOK, gin.H{"bookings": out})
}

type updateStatusRequest struct {
	Status     string `json:"status" validate:"required"`
	Keterangan string `json:"keterangan"`
}

// PUT /api/bookings/:id/status (admin)
func UpdateBookingStatus(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		RespondError(c, http.StatusBadRequest, "payload tidak valid", err)
		return
	}

	actor := models.Actor{AdminID: middleware.GetUserID(c)}
	booking, err := bookingSvc(c).TransitionStatus(id, req.Status, actor, req.Keterangan)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookingPayload(booking))
}

type assignRequest struct {
	DriverID    int64 `json:"driver_id" validate:"required,min=1"`
	KendaraanID int64 `json:"kendaraan_id" validate:"required,min=1"`
}

// PUT /api/bookings/:id/assign (admin)
func AssignDriverVehicle(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	var req assignRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		RespondError(c, http.StatusBadRequest, "payload tidak valid", err)
		return
	}

	if err := bookingSvc(c).AssignDriverAndVehicle(id, req.DriverID, req.KendaraanID); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "driver dan kendaraan tersimpan"})
}

// GET /api/bookings/:id/status-updates
func GetBookingStatusUpdates(c *gin.Context) {
	id, ok := PathID(c, "id")
	if !ok {
		return
	}
	svc := bookingSvc(c)
	booking, err := svc.GetBooking(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if !ownsBooking(c, booking) {
		RespondDomainError(c, domain.UnauthorizedError{Msg: "booking milik customer lain"})
		return
	}
	list, err := svc.StatusUpdates(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	out := make([]gin.H, 0, len(list))
	for _, su := range list {
		out = append(out, gin.H{
			"id":          su.ID,
			"booking_id":  su.BookingID,
			"status_lama": su.StatusLama,
			"status_baru": su.StatusBaru,
			"customer_id": su.CustomerID,
			"admin_id":    su.AdminID,
			"keterangan":  su.Keterangan,
			"created_at":  utils.FormatDateTime(su.CreatedAt),
		})
	}
	c.JSON(http.StatusOK, gin.H{"status_updates": out})
}

func bookingPayload(b models.Booking) gin.H {
	return gin.H{
		"id":                     b.ID,
		"customer_id":            b.CustomerID,
		"paket_wisata_id":        b.PaketWisataID,
		"paket_luar_kota_id":     b.PaketLuarKotaID,
		"fasilitas_id":           b.FasilitasID,
		"driver_id":              b.DriverID,
		"kendaraan_id":           b.KendaraanID,
		"kode_booking":           b.KodeBooking,
		"tanggal_booking":        utils.FormatDateTime(b.TanggalBooking),
		"tanggal_mulai_wisata":   utils.FormatDate(b.TanggalMulai),
		"tanggal_selesai_wisata": utils.FormatDate(b.TanggalSelesai),
		"jumlah_peserta":         b.JumlahPeserta,
		"estimasi_harga":         b.EstimasiHarga,
		"catatan":                b.Catatan,
		"status":                 b.Status,
		"expired_at":             utils.FormatDateTime(b.ExpiredAt),
	}
}
