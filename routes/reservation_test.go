package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cobaltwebtech/irishette-sub001/models"
	"github.com/cobaltwebtech/irishette-sub001/storage"

	"github.com/kataras/iris/v12"
)

func adminListApp(t *testing.T) *httptest.Server {
	t.Helper()

	app := iris.New()
	app.Get("/api/admin/reservations", ListReservations)
	if err := app.Build(); err != nil {
		t.Fatalf("building app: %v", err)
	}

	srv := httptest.NewServer(app)
	t.Cleanup(srv.Close)
	return srv
}

type reservationPage struct {
	Data []models.Reservation `json:"data"`
	Meta struct {
		Page    int   `json:"page"`
		PerPage int   `json:"per_page"`
		Total   int64 `json:"total"`
	} `json:"meta"`
}

func getReservationPage(t *testing.T, srv *httptest.Server, query string) reservationPage {
	t.Helper()

	resp, err := http.Get(srv.URL + "/api/admin/reservations" + query)
	if err != nil {
		t.Fatalf("listing reservations: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var page reservationPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		t.Fatalf("decoding page: %v", err)
	}
	return page
}

func TestListReservationsPaginates(t *testing.T) {
	setupTestDB(t)

	for i := 0; i < 3; i++ {
		if err := storage.DB.Create(&models.Reservation{
			ConfirmationCode: fmt.Sprintf("PAGE234%d", i),
			RoomID:           1,
			CheckIn:          date(2026, 9, 10+i),
			CheckOut:         date(2026, 9, 12+i),
			Status:           models.ReservationStatusPending,
		}).Error; err != nil {
			t.Fatalf("creating reservation: %v", err)
		}
	}

	srv := adminListApp(t)

	first := getReservationPage(t, srv, "?page=1&perPage=2")
	if len(first.Data) != 2 {
		t.Errorf("first page rows = %d, want 2", len(first.Data))
	}
	if first.Meta.Total != 3 || first.Meta.Page != 1 || first.Meta.PerPage != 2 {
		t.Errorf("meta = %+v, want total 3 at page 1 size 2", first.Meta)
	}

	second := getReservationPage(t, srv, "?page=2&perPage=2")
	if len(second.Data) != 1 {
		t.Errorf("second page rows = %d, want 1", len(second.Data))
	}
	if second.Meta.Total != 3 {
		t.Errorf("second page total = %d, want 3", second.Meta.Total)
	}
}

func TestListReservationsStatusFilterCountsFiltered(t *testing.T) {
	setupTestDB(t)

	statuses := []string{
		models.ReservationStatusPending,
		models.ReservationStatusConfirmed,
		models.ReservationStatusConfirmed,
	}
	for i, status := range statuses {
		if err := storage.DB.Create(&models.Reservation{
			ConfirmationCode: fmt.Sprintf("FILT234%d", i),
			RoomID:           1,
			CheckIn:          date(2026, 9, 10),
			CheckOut:         date(2026, 9, 12),
			Status:           status,
		}).Error; err != nil {
			t.Fatalf("creating reservation: %v", err)
		}
	}

	srv := adminListApp(t)

	page := getReservationPage(t, srv, "?status=confirmed")
	if len(page.Data) != 2 {
		t.Errorf("rows = %d, want 2 confirmed", len(page.Data))
	}
	if page.Meta.Total != 2 {
		t.Errorf("total = %d, want the filtered count", page.Meta.Total)
	}
}
