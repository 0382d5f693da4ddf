package controllers_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"busao_api/internal/models"
)

type lineResp struct {
	ID              uint   `json:"id"`
	Number          string `json:"number"`
	Name            string `json:"name"`
	Direction       string `json:"direction"`
	Geometry        string `json:"geometry"`
	ScheduleEntries []struct {
		ID   uint   `json:"ID"`
		Time string `json:"time"`
		Days string `json:"days"`
	} `json:"scheduleEntries"`
	Stops []struct {
		ID   uint   `json:"ID"`
		Name string `json:"name"`
	} `json:"stops"`
}

func (l lineResp) stopIDs() map[uint]int {
	ids := make(map[uint]int)
	for _, s := range l.Stops {
		ids[s.ID]++
	}
	return ids
}

func TestCreateLineEndToEnd(t *testing.T) {
	r, _ := newTestRouter(t)
	token := registerAndLogin(t, r)

	a := createStop(t, r, token, "Ponto Central")
	b := createStop(t, r, token, "Ponto Bairro")

	body := fmt.Sprintf(`{
		"number":"101","name":"Centro - Bairro","direction":"ida",
		"color":"azul","fare":"4.50","operatingHours":"05:00 - 22:00",
		"scheduleEntries":[{"time":"06:00","days":"weekday"},{"time":"12:00","days":"weekday"}],
		"stops":[%d,%d]
	}`, a, b)
	w := doJSON(t, r, http.MethodPost, "/lines", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create line: status %d body %s", w.Code, w.Body.String())
	}

	var created lineResp
	decode(t, w, &created)
	if created.ID == 0 {
		t.Fatal("created line has no id")
	}
	if len(created.ScheduleEntries) != 2 {
		t.Fatalf("expected 2 schedule entries, got %d", len(created.ScheduleEntries))
	}
	if len(created.Stops) != 2 {
		t.Fatalf("expected 2 stops, got %d", len(created.Stops))
	}

	// The line is publicly readable, relations attached.
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/lines/%d", created.ID), "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get line: status %d", w.Code)
	}
	var fetched lineResp
	decode(t, w, &fetched)
	if fetched.Number != "101" || len(fetched.ScheduleEntries) != 2 || len(fetched.Stops) != 2 {
		t.Fatalf("unexpected fetched line: %+v", fetched)
	}

	w = doJSON(t, r, http.MethodGet, "/lines", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list lines: status %d", w.Code)
	}
	var all []lineResp
	decode(t, w, &all)
	if len(all) != 1 || all[0].ID != created.ID {
		t.Fatalf("unexpected line list: %+v", all)
	}
}

func TestCreateLineWithoutRelations(t *testing.T) {
	r, _ := newTestRouter(t)
	token := registerAndLogin(t, r)

	w := doJSON(t, r, http.MethodPost, "/lines", `{"number":"7","name":"Circular"}`, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create line: status %d body %s", w.Code, w.Body.String())
	}
	var created lineResp
	decode(t, w, &created)
	if len(created.ScheduleEntries) != 0 || len(created.Stops) != 0 {
		t.Fatalf("expected empty relations, got %+v", created)
	}
}

func TestCreateLineUnknownStopRef(t *testing.T) {
	r, db := newTestRouter(t)
	token := registerAndLogin(t, r)

	w := doJSON(t, r, http.MethodPost, "/lines",
		`{"number":"9","name":"Fantasma","stops":[9999]}`, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown stop, got %d body %s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&models.Line{}).Count(&count)
	if count != 0 {
		t.Fatalf("no line should have been created, found %d", count)
	}
}

func TestUpdateLineReplacesScheduleSet(t *testing.T) {
	r, db := newTestRouter(t)
	token := registerAndLogin(t, r)

	w := doJSON(t, r, http.MethodPost, "/lines", `{
		"number":"101","name":"Centro - Bairro",
		"scheduleEntries":[{"time":"06:00","days":"weekday"},{"time":"12:00","days":"weekday"}]
	}`, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var created lineResp
	decode(t, w, &created)

	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/lines/%d", created.ID), `{
		"number":"101","name":"Centro - Bairro",
		"scheduleEntries":[{"time":"07:30","days":"saturday"},{"time":"09:00","days":"saturday"},{"time":"18:00","days":"sunday"}]
	}`, token)
	if w.Code != http.StatusOK {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}
	var updated lineResp
	decode(t, w, &updated)
	if len(updated.ScheduleEntries) != 3 {
		t.Fatalf("expected exactly 3 entries after replace, got %d", len(updated.ScheduleEntries))
	}
	for _, e := range updated.ScheduleEntries {
		if e.Time == "06:00" || e.Time == "12:00" {
			t.Fatalf("old schedule entry survived the replace: %+v", e)
		}
	}

	// No orphans behind the API either.
	var count int64
	db.Model(&models.ScheduleEntry{}).Where("line_id = ?", created.ID).Count(&count)
	if count != 3 {
		t.Fatalf("expected 3 live entries in storage, got %d", count)
	}
}

func TestUpdateLineClearsScheduleSet(t *testing.T) {
	r, _ := newTestRouter(t)
	token := registerAndLogin(t, r)

	w := doJSON(t, r, http.MethodPost, "/lines", `{
		"number":"33","name":"Expresso",
		"scheduleEntries":[{"time":"05:00","days":"weekday"}]
	}`, token)
	var created lineResp
	decode(t, w, &created)

	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/lines/%d", created.ID),
		`{"number":"33","name":"Expresso","scheduleEntries":[]}`, token)
	if w.Code != http.StatusOK {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}
	var updated lineResp
	decode(t, w, &updated)
	if len(updated.ScheduleEntries) != 0 {
		t.Fatalf("expected empty schedule set, got %d entries", len(updated.ScheduleEntries))
	}
}

func TestUpdateLineReplacesStopSet(t *testing.T) {
	r, _ := newTestRouter(t)
	token := registerAndLogin(t, r)

	a := createStop(t, r, token, "A")
	b := createStop(t, r, token, "B")
	c := createStop(t, r, token, "C")
	d := createStop(t, r, token, "D")

	w := doJSON(t, r, http.MethodPost, "/lines",
		fmt.Sprintf(`{"number":"2","name":"Norte","stops":[%d,%d,%d]}`, a, b, c), token)
	var created lineResp
	decode(t, w, &created)
	if len(created.Stops) != 3 {
		t.Fatalf("expected 3 stops, got %d", len(created.Stops))
	}

	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/lines/%d", created.ID),
		fmt.Sprintf(`{"number":"2","name":"Norte","stops":[%d,%d]}`, b, d), token)
	if w.Code != http.StatusOK {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}
	var updated lineResp
	decode(t, w, &updated)

	ids := updated.stopIDs()
	if len(updated.Stops) != 2 || ids[b] != 1 || ids[d] != 1 {
		t.Fatalf("expected exactly {B,D}, got %+v", updated.Stops)
	}
	if ids[a] != 0 || ids[c] != 0 {
		t.Fatalf("residual stop association survived the replace: %+v", updated.Stops)
	}
}

func TestUpdateLineDeduplicatesStopRefs(t *testing.T) {
	r, _ := newTestRouter(t)
	token := registerAndLogin(t, r)

	a := createStop(t, r, token, "A")

	w := doJSON(t, r, http.MethodPost, "/lines",
		fmt.Sprintf(`{"number":"4","name":"Leste","stops":[%d,%d,%d]}`, a, a, a), token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var created lineResp
	decode(t, w, &created)
	if len(created.Stops) != 1 {
		t.Fatalf("duplicate stop refs must collapse to one association, got %d", len(created.Stops))
	}
}

func TestDeleteLinePreservesStops(t *testing.T) {
	r, db := newTestRouter(t)
	token := registerAndLogin(t, r)

	a := createStop(t, r, token, "Sobrevive A")
	b := createStop(t, r, token, "Sobrevive B")

	w := doJSON(t, r, http.MethodPost, "/lines", fmt.Sprintf(`{
		"number":"5","name":"Sul",
		"scheduleEntries":[{"time":"08:00","days":"weekday"}],
		"stops":[%d,%d]
	}`, a, b), token)
	var created lineResp
	decode(t, w, &created)

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/lines/%d", created.ID), "", token)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/lines/%d", created.ID), "", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("deleted line still fetchable: %d", w.Code)
	}

	for _, id := range []uint{a, b} {
		w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/stops/%d", id), "", "")
		if w.Code != http.StatusOK {
			t.Fatalf("stop %d did not survive line deletion: %d", id, w.Code)
		}
	}

	var count int64
	db.Model(&models.ScheduleEntry{}).Where("line_id = ?", created.ID).Count(&count)
	if count != 0 {
		t.Fatalf("orphan schedule entries after delete: %d", count)
	}
}

func TestDeleteMissingLine(t *testing.T) {
	r, _ := newTestRouter(t)
	token := registerAndLogin(t, r)

	w := doJSON(t, r, http.MethodDelete, "/lines/424242", "", token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 deleting a missing line, got %d", w.Code)
	}
}

func TestGetMissingLine(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/lines/424242", "", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestLineMutationsRequireAuth(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/lines"},
		{http.MethodPut, "/lines/1"},
		{http.MethodDelete, "/lines/1"},
	} {
		w := doJSON(t, r, tc.method, tc.path, `{"number":"1","name":"x"}`, "")
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s without token: expected 401, got %d", tc.method, tc.path, w.Code)
		}
	}
}

func TestLineGeometryRoundTrip(t *testing.T) {
	r, _ := newTestRouter(t)
	token := registerAndLogin(t, r)

	geo := `{"type":"LineString","coordinates":[[-46.6333,-23.5505],[-46.63,-23.5522]]}`
	w := doJSON(t, r, http.MethodPost, "/lines",
		fmt.Sprintf(`{"number":"6","name":"Mapa","geometry":%q}`, geo), token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var created lineResp
	decode(t, w, &created)
	if !strings.Contains(created.Geometry, "LineString") {
		t.Fatalf("geometry did not round-trip: %q", created.Geometry)
	}

	w = doJSON(t, r, http.MethodPost, "/lines",
		`{"number":"6b","name":"Mapa quebrado","geometry":"not geojson"}`, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid geometry, got %d", w.Code)
	}
}
