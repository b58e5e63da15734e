package routes

import (
	"errors"
	"time"

	"github.com/cobaltwebtech/irishette-sub001/models"
	"github.com/cobaltwebtech/irishette-sub001/services"
	"github.com/cobaltwebtech/irishette-sub001/storage"
	"github.com/cobaltwebtech/irishette-sub001/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

type CreateReservationRequest struct {
	RoomID     uint      `json:"roomID" validate:"required"`
	CheckIn    time.Time `json:"checkIn" validate:"required"`
	CheckOut   time.Time `json:"checkOut" validate:"required"`
	NumGuests  int       `json:"numGuests" validate:"required,gte=1,lte=16"`
	GuestName  string    `json:"guestName" validate:"required,max=256"`
	GuestEmail string    `json:"guestEmail" validate:"required,email"`
	GuestPhone string    `json:"guestPhone" validate:"omitempty,max=30"`
}

func newReservationService() *services.ReservationService {
	return services.NewReservationService(
		services.NewPaymentService(),
		services.NewNotificationService(),
	)
}

// CreateReservation persists a pending reservation and returns the checkout
// URL the guest pays at. The calendar stays open until payment confirms.
func CreateReservation(ctx iris.Context) {
	var input CreateReservationRequest
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	userID := ctx.Values().Get("userID").(uint)

	reservation, checkoutURL, err := newReservationService().Create(services.CreateReservationInput{
		RoomID:     input.RoomID,
		CheckIn:    input.CheckIn,
		CheckOut:   input.CheckOut,
		NumGuests:  input.NumGuests,
		GuestName:  input.GuestName,
		GuestEmail: input.GuestEmail,
		GuestPhone: input.GuestPhone,
	}, userID)
	if err != nil {
		var conflict *services.ConflictError
		switch {
		case errors.As(err, &conflict):
			ctx.StopWithJSON(iris.StatusConflict, iris.Map{
				"success": false,
				"message": "requested dates are not available",
				"data": iris.Map{
					"blockedDates":            conflict.BlockedDates,
					"conflictingReservations": conflict.ConflictingReservations,
				},
			})
		case errors.Is(err, services.ErrInvalidRange):
			utils.CreateError(iris.StatusBadRequest, "Validation Error", "checkIn must be before checkOut", ctx)
		case errors.Is(err, services.ErrRoomNotFound):
			utils.CreateError(iris.StatusNotFound, "Not Found", "room not found", ctx)
		case errors.Is(err, services.ErrRoomUnavailable):
			utils.CreateError(iris.StatusConflict, "Conflict", "room is not accepting reservations", ctx)
		default:
			utils.CreateInternalServerError(ctx)
		}
		return
	}

	ctx.JSON(iris.Map{
		"success": true,
		"data": iris.Map{
			"reservation": reservation,
			"checkoutURL": checkoutURL,
		},
	})
}

func GetReservation(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid reservation id", ctx)
		return
	}

	userID := ctx.Values().Get("userID").(uint)

	var reservation models.Reservation
	if err := storage.DB.Where("id = ? AND user_id = ?", id, userID).First(&reservation).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "reservation not found", ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "data": reservation})
}

// GetReservationByCode looks a reservation up by its confirmation code. Open
// to any authenticated user: the code itself is the secret.
func GetReservationByCode(ctx iris.Context) {
	code := ctx.Params().Get("code")

	var reservation models.Reservation
	if err := storage.DB.Where("confirmation_code = ?", code).First(&reservation).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "reservation not found", ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "data": reservation})
}

func GetUserReservations(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var reservations []models.Reservation
	if err := storage.DB.
		Where("user_id = ?", userID).
		Order("check_in DESC").
		Find(&reservations).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "data": reservations})
}

// CancelReservation abandons the caller's own pending reservation.
func CancelReservation(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid reservation id", ctx)
		return
	}

	userID := ctx.Values().Get("userID").(uint)

	reservation, err := newReservationService().Cancel(id, userID)
	if err != nil {
		if errors.Is(err, services.ErrReservationNotFound) {
			utils.CreateError(iris.StatusNotFound, "Not Found", "reservation not found", ctx)
			return
		}
		utils.CreateError(iris.StatusConflict, "Conflict", err.Error(), ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "data": reservation})
}

// ListReservations is the admin view across all guests, newest first and
// paginated.
func ListReservations(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := ctx.URLParamIntDefault("perPage", 25)
	if perPage < 1 || perPage > 200 {
		perPage = 25
	}

	filtered := func(db *gorm.DB) *gorm.DB {
		if status := ctx.URLParam("status"); status != "" {
			db = db.Where("status = ?", status)
		}
		if roomID, err := ctx.URLParamInt("roomID"); err == nil && roomID > 0 {
			db = db.Where("room_id = ?", roomID)
		}
		return db
	}

	var total int64
	if err := filtered(storage.DB.Model(&models.Reservation{})).Count(&total).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var reservations []models.Reservation
	if err := filtered(storage.DB).
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&reservations).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONPage(ctx, reservations, page, perPage, total)
}
