package routes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cobaltwebtech/irishette-sub001/models"
	"github.com/cobaltwebtech/irishette-sub001/services"
	"github.com/cobaltwebtech/irishette-sub001/storage"
	"github.com/cobaltwebtech/irishette-sub001/utils"

	"github.com/kataras/iris/v12"
)

// Outbound feeds are regenerated from current state on every miss; the cache
// only shields us from partner platforms polling every few minutes.
const feedCacheTTL = 5 * time.Minute

// GetCalendarFeed serves the room's outbound iCalendar document. Public and
// unauthenticated: Airbnb and Expedia poll it by URL.
func GetCalendarFeed(ctx iris.Context) {
	slug := ctx.Params().Get("slug")

	cacheKey := "ical:feed:" + slug
	if storage.Redis != nil {
		if cached, err := storage.Redis.Get(context.Background(), cacheKey).Result(); err == nil {
			serveICS(ctx, slug, cached)
			return
		}
	}

	doc, _, err := services.NewCalendarService().GenerateOutboundCalendarBySlug(slug)
	if err != nil {
		if errors.Is(err, services.ErrRoomNotFound) {
			utils.CreateError(iris.StatusNotFound, "Not Found", "room not found", ctx)
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	if storage.Redis != nil {
		storage.Redis.Set(context.Background(), cacheKey, doc, feedCacheTTL)
	}

	serveICS(ctx, slug, doc)
}

func serveICS(ctx iris.Context, slug, doc string) {
	ctx.ContentType("text/calendar; charset=utf-8")
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.ics"`, slug))
	ctx.WriteString(doc)
}

// SyncRoomCalendar triggers one room/platform reconciliation on demand.
func SyncRoomCalendar(ctx iris.Context) {
	roomID, err := ctx.Params().GetUint("roomID")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid room id", ctx)
		return
	}

	platform := ctx.Params().Get("platform")
	if platform != models.PlatformAirbnb && platform != models.PlatformExpedia {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "platform must be airbnb or expedia", ctx)
		return
	}

	result, err := services.NewCalendarService().SyncExternalCalendar(roomID, platform)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRoomNotFound):
			utils.CreateError(iris.StatusNotFound, "Not Found", "room not found", ctx)
		case errors.Is(err, services.ErrNoCalendarConfigured):
			utils.CreateError(iris.StatusBadRequest, "Bad Request",
				"no "+platform+" calendar URL configured for this room", ctx)
		case errors.Is(err, services.ErrFetchFailed):
			utils.CreateError(iris.StatusBadGateway, "Upstream Error", err.Error(), ctx)
		default:
			utils.CreateInternalServerError(ctx)
		}
		return
	}

	// Feeds are stale the moment the ledger changes.
	invalidateFeedCache(roomID)

	ctx.JSON(iris.Map{"success": true, "data": result})
}

// RunFullSync runs the whole scheduled pass right now and returns its
// summary. Handy after editing calendar URLs.
func RunFullSync(driver *services.SyncDriver) iris.Handler {
	return func(ctx iris.Context) {
		summary := driver.RunAll()
		ctx.JSON(iris.Map{"success": true, "data": summary})
	}
}

// GetLastSyncRun reports the most recent scheduled run's summary.
func GetLastSyncRun(driver *services.SyncDriver) iris.Handler {
	return func(ctx iris.Context) {
		summary, err := driver.LastRunSummary()
		if err != nil {
			utils.CreateError(iris.StatusNotFound, "Not Found", "no sync run recorded yet", ctx)
			return
		}
		ctx.JSON(iris.Map{"success": true, "data": summary})
	}
}

// GetSyncLogs lists reconciliation attempts for a room, newest first.
func GetSyncLogs(ctx iris.Context) {
	roomID, err := ctx.Params().GetUint("roomID")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "invalid room id", ctx)
		return
	}

	limit := 50
	if l, err := ctx.URLParamInt("limit"); err == nil && l > 0 && l <= 500 {
		limit = l
	}

	var entries []models.SyncLogEntry
	if err := storage.DB.
		Where("room_id = ?", roomID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "data": entries})
}

func invalidateFeedCache(roomID uint) {
	if storage.Redis == nil {
		return
	}
	var room models.Room
	if err := storage.DB.First(&room, roomID).Error; err != nil {
		return
	}
	storage.Redis.Del(context.Background(), "ical:feed:"+room.Slug)
}
