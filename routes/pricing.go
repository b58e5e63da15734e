package routes

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/cobaltwebtech/irishette-sub001/models"
	"github.com/cobaltwebtech/irishette-sub001/services"
	"github.com/cobaltwebtech/irishette-sub001/storage"
	"github.com/cobaltwebtech/irishette-sub001/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/datatypes"
)

type PricingRuleInput struct {
	RoomID     uint      `json:"roomID" validate:"required"`
	Name       string    `json:"name" validate:"required,max=256"`
	RuleType   string    `json:"ruleType" validate:"required,oneof=surcharge_rate fixed_amount absolute_price"`
	Value      float64   `json:"value" validate:"required,gt=0"`
	StartDate  time.Time `json:"startDate" validate:"required"`
	EndDate    time.Time `json:"endDate" validate:"required"`
	IsActive   bool      `json:"isActive"`
	DaysOfWeek []int     `json:"daysOfWeek" validate:"omitempty,dive,gte=0,lte=6"`
}

type QuoteInput struct {
	RoomID    uint      `json:"roomID" validate:"required"`
	CheckIn   time.Time `json:"checkIn" validate:"required"`
	CheckOut  time.Time `json:"checkOut" validate:"required"`
	NumGuests int       `json:"numGuests" validate:"required,gte=1,lte=16"`
}

// CalculateQuote prices a stay without creating anything. Public: the
// booking page calls this as the guest picks dates.
func CalculateQuote(ctx iris.Context) {
	var input QuoteInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	quote, err := services.NewPricingService().Quote(input.RoomID, input.CheckIn, input.CheckOut, input.NumGuests)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRange):
			utils.CreateError(iris.StatusBadRequest, "Validation Error", "checkIn must be before checkOut", ctx)
		case errors.Is(err, services.ErrRoomNotFound):
			utils.CreateError(iris.StatusNotFound, "Not Found", "room not found", ctx)
		default:
			utils.CreateInternalServerError(ctx)
		}
		return
	}

	ctx.JSON(iris.Map{"success": true, "data": quote})
}

func GetRoomPricingRules(ctx iris.Context) {
	roomID, err := ctx.Params().GetUint("roomID")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid room id", ctx)
		return
	}

	var rules []models.PricingRule
	if err := storage.DB.Where("room_id = ?", roomID).Order("start_date ASC").Find(&rules).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "data": rules})
}

func CreatePricingRule(ctx iris.Context) {
	var input PricingRuleInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	startDate := services.DateOnly(input.StartDate)
	endDate := services.DateOnly(input.EndDate)
	if !startDate.Before(endDate) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "startDate must be before endDate", ctx)
		return
	}

	var room models.Room
	if err := storage.DB.First(&room, input.RoomID).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "room not found", ctx)
		return
	}

	rule := models.PricingRule{
		RoomID:    input.RoomID,
		Name:      input.Name,
		RuleType:  input.RuleType,
		Value:     input.Value,
		StartDate: startDate,
		EndDate:   endDate,
		IsActive:  input.IsActive,
	}
	if len(input.DaysOfWeek) > 0 {
		payload, err := daysOfWeekJSON(input.DaysOfWeek)
		if err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		rule.DaysOfWeek = payload
	}

	if err := storage.DB.Create(&rule).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "data": rule})
}

func UpdatePricingRule(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid rule id", ctx)
		return
	}

	var rule models.PricingRule
	if err := storage.DB.First(&rule, id).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "pricing rule not found", ctx)
		return
	}

	var input PricingRuleInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	startDate := services.DateOnly(input.StartDate)
	endDate := services.DateOnly(input.EndDate)
	if !startDate.Before(endDate) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "startDate must be before endDate", ctx)
		return
	}

	rule.Name = input.Name
	rule.RuleType = input.RuleType
	rule.Value = input.Value
	rule.StartDate = startDate
	rule.EndDate = endDate
	rule.IsActive = input.IsActive
	if len(input.DaysOfWeek) > 0 {
		payload, err := daysOfWeekJSON(input.DaysOfWeek)
		if err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		rule.DaysOfWeek = payload
	} else {
		rule.DaysOfWeek = nil
	}

	if err := storage.DB.Save(&rule).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "data": rule})
}

func DeletePricingRule(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid rule id", ctx)
		return
	}

	if err := storage.DB.Delete(&models.PricingRule{}, id).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "message": "pricing rule deleted"})
}

func daysOfWeekJSON(days []int) (datatypes.JSON, error) {
	payload, err := json.Marshal(days)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(payload), nil
}
