package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Digital-Creators-Team/prize-wheel-module/auth"
	"github.com/Digital-Creators-Team/prize-wheel-module/prize"
	"github.com/gin-gonic/gin"
)

func adminContext(t *testing.T, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/admin/prizes/import", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(auth.UserIDKey, "admin-1")
	c.Set(auth.RoleKey, auth.RoleAdmin)
	return c, w
}

func TestImportPrizesNormalizesBackendShapes(t *testing.T) {
	app := newClaimTestApp(t)

	// Three shapes the legacy export produces: canonical keys, mongo-style
	// _id with a bare image key, and a nested prize object. The last entry
	// carries no id and must be skipped without failing the batch.
	body := `[
		{"id": "p-1", "clubId": "club-1", "name": "500 Points", "type": "points",
		 "value": 500, "dropChance": 25, "slotIndex": 0, "totalQuantity": 10,
		 "imageUrl": "https://cdn.example.com/p1.png"},
		{"_id": "p-2", "clubId": "club-1", "name": "Free Drink", "type": "physical",
		 "value": 1, "dropChance": "10", "slotIndex": 1, "totalQuantity": 5,
		 "image": "https://cdn.example.com/p2.png"},
		{"prize": {"prizeId": "p-3", "clubId": "club-1", "name": "Club Hour", "type": "club_time",
		 "value": 60, "dropChance": 5, "slotIndex": 2, "totalQuantity": 3,
		 "imageUrl": "https://cdn.example.com/p3.png", "active": false}},
		{"name": "broken entry"}
	]`

	c, w := adminContext(t, body)
	app.adminHandler.ImportPrizes(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var resp struct {
		Data struct {
			Imported []*prize.Prize `json:"imported"`
			Skipped  int            `json:"skipped"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Data.Imported) != 3 {
		t.Fatalf("imported %d prizes, want 3", len(resp.Data.Imported))
	}
	if resp.Data.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", resp.Data.Skipped)
	}

	stored, err := app.registry.Get("p-2")
	if err != nil {
		t.Fatalf("aliased-key prize not stored: %v", err)
	}
	if stored.ImageURL != "https://cdn.example.com/p2.png" {
		t.Errorf("image alias not resolved: %q", stored.ImageURL)
	}
	if stored.DropChance != 10 {
		t.Errorf("weakly typed drop chance not coerced: %v", stored.DropChance)
	}

	nested, err := app.registry.Get("p-3")
	if err != nil {
		t.Fatalf("nested prize not stored: %v", err)
	}
	if nested.Active {
		t.Error("explicit active=false must survive the import")
	}
}

func TestImportPrizesSkipsSlotCollisions(t *testing.T) {
	app := newClaimTestApp(t)

	if _, err := app.registry.Create(prize.Definition{
		ClubID:        "club-1",
		Name:          "Holder",
		Type:          prize.TypeOther,
		Value:         1,
		DropChance:    10,
		SlotIndex:     0,
		TotalQuantity: 1,
		ImageURL:      "https://cdn.example.com/holder.png",
	}); err != nil {
		t.Fatalf("seed create failed: %v", err)
	}

	body := `[{"id": "p-clash", "clubId": "club-1", "name": "Clashing", "type": "other",
		"value": 1, "dropChance": 5, "slotIndex": 0, "totalQuantity": 1,
		"imageUrl": "https://cdn.example.com/x.png"}]`

	c, w := adminContext(t, body)
	app.adminHandler.ImportPrizes(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if _, err := app.registry.Get("p-clash"); err == nil {
		t.Error("colliding entry must not be stored")
	}
}

func TestImportPrizesRejectsMalformedBody(t *testing.T) {
	app := newClaimTestApp(t)

	c, w := adminContext(t, `{"not": "a list"}`)
	app.adminHandler.ImportPrizes(c)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
