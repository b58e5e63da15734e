package routes

import (
	"strconv"

	"github.com/cobaltwebtech/irishette-sub001/models"
	"github.com/cobaltwebtech/irishette-sub001/storage"
	"github.com/cobaltwebtech/irishette-sub001/utils"

	"github.com/kataras/iris/v12"
)

type RoomInput struct {
	Slug           string  `json:"slug" validate:"required,max=100"`
	Name           string  `json:"name" validate:"required,max=256"`
	Description    string  `json:"description"`
	BasePrice      float64 `json:"basePrice" validate:"required,gt=0"`
	ServiceFeeRate float64 `json:"serviceFeeRate" validate:"gte=0,lt=1"`
	StateTaxRate   float64 `json:"stateTaxRate" validate:"gte=0,lt=1"`
	LocalTaxRate   float64 `json:"localTaxRate" validate:"gte=0,lt=1"`
}

type RoomCalendarInput struct {
	AirbnbCalendarURL  string `json:"airbnbCalendarUrl" validate:"omitempty,url"`
	ExpediaCalendarURL string `json:"expediaCalendarUrl" validate:"omitempty,url"`
}

type RoomStatusInput struct {
	Status string `json:"status" validate:"required,oneof=active inactive archived"`
}

func ListRooms(ctx iris.Context) {
	var rooms []models.Room
	if err := storage.DB.Order("id ASC").Find(&rooms).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"success": true, "data": rooms})
}

// GetRoom resolves by numeric id or by slug, so marketing pages can link
// either way.
func GetRoom(ctx iris.Context) {
	ref := ctx.Params().Get("ref")

	var room models.Room
	if id, err := strconv.ParseUint(ref, 10, 32); err == nil {
		if err := storage.DB.First(&room, id).Error; err != nil {
			utils.CreateError(iris.StatusNotFound, "Not Found", "room not found", ctx)
			return
		}
	} else {
		if err := storage.DB.Where("slug = ?", ref).First(&room).Error; err != nil {
			utils.CreateError(iris.StatusNotFound, "Not Found", "room not found", ctx)
			return
		}
	}

	ctx.JSON(iris.Map{"success": true, "data": room})
}

func CreateRoom(ctx iris.Context) {
	var input RoomInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	room := models.Room{
		Slug:           input.Slug,
		Name:           input.Name,
		Description:    input.Description,
		BasePrice:      input.BasePrice,
		ServiceFeeRate: input.ServiceFeeRate,
		StateTaxRate:   input.StateTaxRate,
		LocalTaxRate:   input.LocalTaxRate,
		Status:         models.RoomStatusActive,
	}
	if err := storage.DB.Create(&room).Error; err != nil {
		utils.CreateError(iris.StatusConflict, "Conflict", "slug already in use", ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "data": room})
}

func UpdateRoom(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid room id", ctx)
		return
	}

	var room models.Room
	if err := storage.DB.First(&room, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "room not found", ctx)
		return
	}

	var input RoomInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	room.Slug = input.Slug
	room.Name = input.Name
	room.Description = input.Description
	room.BasePrice = input.BasePrice
	room.ServiceFeeRate = input.ServiceFeeRate
	room.StateTaxRate = input.StateTaxRate
	room.LocalTaxRate = input.LocalTaxRate

	if err := storage.DB.Save(&room).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "data": room})
}

func UpdateRoomStatus(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid room id", ctx)
		return
	}

	var input RoomStatusInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var room models.Room
	if err := storage.DB.First(&room, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "room not found", ctx)
		return
	}

	room.Status = input.Status
	if err := storage.DB.Save(&room).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "data": room})
}

// UpdateRoomCalendars sets the external feed URLs used by the reconciler.
func UpdateRoomCalendars(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid room id", ctx)
		return
	}

	var input RoomCalendarInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var room models.Room
	if err := storage.DB.First(&room, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "room not found", ctx)
		return
	}

	room.AirbnbCalendarURL = input.AirbnbCalendarURL
	room.ExpediaCalendarURL = input.ExpediaCalendarURL
	if err := storage.DB.Save(&room).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "data": room})
}
