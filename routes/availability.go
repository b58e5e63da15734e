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

type CheckAvailabilityInput struct {
	RoomID   uint      `json:"roomID" validate:"required"`
	CheckIn  time.Time `json:"checkIn" validate:"required"`
	CheckOut time.Time `json:"checkOut" validate:"required"`
}

type BlockedPeriodInput struct {
	RoomID    uint      `json:"roomID" validate:"required"`
	StartDate time.Time `json:"startDate" validate:"required"`
	EndDate   time.Time `json:"endDate" validate:"required"`
	Reason    string    `json:"reason" validate:"required,max=256"`
	Notes     string    `json:"notes"`
}

// CheckAvailability answers the booking page's "can I stay these dates"
// question, with both conflict sets when the answer is no.
func CheckAvailability(ctx iris.Context) {
	var input CheckAvailabilityInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	result, err := services.NewAvailabilityService().Check(input.RoomID, input.CheckIn, input.CheckOut)
	if err != nil {
		switch {
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

	ctx.JSON(iris.Map{"success": true, "data": result})
}

// GetRoomAvailability returns the raw ledger rows for a date range so the
// admin calendar view can render them.
func GetRoomAvailability(ctx iris.Context) {
	roomID, err := ctx.Params().GetUint("roomID")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid room id", ctx)
		return
	}

	start, err := time.Parse("2006-01-02", ctx.URLParamDefault("start", time.Now().Format("2006-01-02")))
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "start must be YYYY-MM-DD", ctx)
		return
	}
	end, err := time.Parse("2006-01-02", ctx.URLParamDefault("end", start.AddDate(0, 3, 0).Format("2006-01-02")))
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "end must be YYYY-MM-DD", ctx)
		return
	}

	var records []models.AvailabilityRecord
	if err := storage.DB.
		Where("room_id = ? AND date >= ? AND date <= ?", roomID, start, end).
		Order("date ASC").
		Find(&records).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "data": records})
}

// CreateBlockedPeriod records a manual block and marks every covered night
// in the ledger. The stored end date is inclusive.
func CreateBlockedPeriod(ctx iris.Context) {
	var input BlockedPeriodInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	startDate := services.DateOnly(input.StartDate)
	endDate := services.DateOnly(input.EndDate)
	if endDate.Before(startDate) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "endDate must not be before startDate", ctx)
		return
	}

	var room models.Room
	if err := storage.DB.First(&room, input.RoomID).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "room not found", ctx)
		return
	}

	block := models.BlockedPeriod{
		RoomID:    input.RoomID,
		StartDate: startDate,
		EndDate:   endDate,
		Reason:    input.Reason,
		Notes:     input.Notes,
	}
	if err := storage.DB.Create(&block).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		upsertManualBlock(block.RoomID, d)
	}

	ctx.JSON(iris.Map{"success": true, "data": block})
}

func ListBlockedPeriods(ctx iris.Context) {
	roomID, err := ctx.Params().GetUint("roomID")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid room id", ctx)
		return
	}

	var blocks []models.BlockedPeriod
	if err := storage.DB.Where("room_id = ?", roomID).Order("start_date ASC").Find(&blocks).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "data": blocks})
}

// DeleteBlockedPeriod removes the block and releases its manual ledger rows.
// Rows taken over by another writer since (a sync, a confirmed booking) are
// left alone.
func DeleteBlockedPeriod(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid block id", ctx)
		return
	}

	var block models.BlockedPeriod
	if err := storage.DB.First(&block, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "blocked period not found", ctx)
		return
	}

	if err := storage.DB.Unscoped().
		Where("room_id = ? AND source = ? AND date >= ? AND date <= ?",
			block.RoomID, models.SourceManual, block.StartDate, block.EndDate).
		Delete(&models.AvailabilityRecord{}).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if err := storage.DB.Delete(&block).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "message": "blocked period removed"})
}

func upsertManualBlock(roomID uint, day time.Time) {
	var record models.AvailabilityRecord
	err := storage.DB.Where("room_id = ? AND date = ?", roomID, day).First(&record).Error
	if err == nil {
		storage.DB.Model(&record).Updates(map[string]interface{}{
			"is_available": false,
			"is_blocked":   true,
			"source":       models.SourceManual,
		})
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		storage.DB.Create(&models.AvailabilityRecord{
			RoomID:      roomID,
			Date:        day,
			IsAvailable: false,
			IsBlocked:   true,
			Source:      models.SourceManual,
		})
	}
}
