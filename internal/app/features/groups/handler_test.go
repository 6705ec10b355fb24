package groups_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	groupsfeature "github.com/dalemusser/markloft/internal/app/features/groups"
	groupstore "github.com/dalemusser/markloft/internal/app/store/groups"
	"github.com/dalemusser/markloft/internal/app/system/auth"
	"github.com/dalemusser/markloft/internal/testutil"
	"go.uber.org/zap"
)

type envelope struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Group struct {
			ID        string `json:"id"`
			Name      string `json:"name"`
			CreatedAt string `json:"createdAt"`
		} `json:"group"`
	} `json:"data"`
	Groups []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"groups"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return env
}

func asUser(req *http.Request, userID string) *http.Request {
	return auth.WithUser(req, &auth.Claims{UserID: userID})
}

func TestHandleCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := groupsfeature.NewHandler(groupstore.New(db), zap.NewNop(), true)

	req := httptest.NewRequest("POST", "/groups", strings.NewReader(`{"name":"Reading"}`))
	req = asUser(req, "sub-1")
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code: got %d; body %s", rec.Code, rec.Body.String())
	}
	env := decode(t, rec)
	if !env.Success || env.Status != "SUCCESS" {
		t.Errorf("envelope: got %+v", env)
	}
	if env.Data.Group.Name != "Reading" || !strings.HasPrefix(env.Data.Group.ID, "GZIMD_") {
		t.Errorf("group payload: got %+v", env.Data.Group)
	}
}

func TestHandleCreate_BlankName(t *testing.T) {
	h := groupsfeature.NewHandler(nil, zap.NewNop(), true)

	req := httptest.NewRequest("POST", "/groups", strings.NewReader(`{"name":"   "}`))
	req = asUser(req, "sub-1")
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	// Validation failures answer 200 with REQUIRED_FIELDS, never a 4xx.
	if rec.Code != http.StatusOK {
		t.Errorf("code: got %d, want 200", rec.Code)
	}
	env := decode(t, rec)
	if env.Status != "REQUIRED_FIELDS" {
		t.Errorf("status: got %q, want REQUIRED_FIELDS", env.Status)
	}
	if env.Message != "All fields are required! please check and update" {
		t.Errorf("message: got %q", env.Message)
	}
}

func TestHandleRename(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	user := fixtures.CreateUser(ctx, "a@example.com", "A")
	group := fixtures.CreateGroup(ctx, user.ID, "Old")

	h := groupsfeature.NewHandler(store, zap.NewNop(), true)

	body := `{"groupId":"` + group.ID + `","name":"New"}`
	req := httptest.NewRequest("PUT", "/groups", strings.NewReader(body))
	req = asUser(req, user.ID)
	rec := httptest.NewRecorder()
	h.HandleRename(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code: got %d; body %s", rec.Code, rec.Body.String())
	}

	got, err := store.GetByID(ctx, user.ID, group.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "New" {
		t.Errorf("name after rename: got %q", got.Name)
	}
}

func TestHandleRename_UnknownGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := groupsfeature.NewHandler(groupstore.New(db), zap.NewNop(), true)

	req := httptest.NewRequest("PUT", "/groups",
		strings.NewReader(`{"groupId":"GZIMD_missing","name":"x"}`))
	req = asUser(req, "sub-1")
	rec := httptest.NewRecorder()
	h.HandleRename(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("code: got %d, want 404", rec.Code)
	}
	if env := decode(t, rec); env.Status != "NOT_FOUND" {
		t.Errorf("status: got %q", env.Status)
	}
}

func TestHandleList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, "sub-1", "First"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	// created_at has millisecond precision; avoid an ordering tie.
	time.Sleep(5 * time.Millisecond)
	if _, err := store.Create(ctx, "sub-1", "Second"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, "sub-2", "Foreign"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	h := groupsfeature.NewHandler(store, zap.NewNop(), true)

	req := asUser(httptest.NewRequest("GET", "/groups", nil), "sub-1")
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	env := decode(t, rec)
	if len(env.Groups) != 2 {
		t.Fatalf("groups: got %d, want 2 (owner scoped)", len(env.Groups))
	}
	if env.Groups[0].Name != "Second" {
		t.Errorf("order: got %q first, want newest group", env.Groups[0].Name)
	}
}

func TestHandleDelete_Cascades(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	user := fixtures.CreateUser(ctx, "a@example.com", "A")
	group := fixtures.CreateGroup(ctx, user.ID, "Doomed")
	fixtures.CreateBookmark(ctx, user.ID, group.ID, "A", 0)

	h := groupsfeature.NewHandler(store, zap.NewNop(), true)

	req := httptest.NewRequest("DELETE", "/groups?groupId="+group.ID, nil)
	req = asUser(req, user.ID)
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code: got %d; body %s", rec.Code, rec.Body.String())
	}
	if _, err := store.GetByID(ctx, user.ID, group.ID); err != groupstore.ErrNotFound {
		t.Errorf("group still visible after delete: %v", err)
	}
}

func TestHandleDelete_MissingGroupID(t *testing.T) {
	h := groupsfeature.NewHandler(nil, zap.NewNop(), true)

	req := asUser(httptest.NewRequest("DELETE", "/groups", nil), "sub-1")
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("code: got %d, want 200", rec.Code)
	}
	if env := decode(t, rec); env.Status != "REQUIRED_FIELDS" {
		t.Errorf("status: got %q, want REQUIRED_FIELDS", env.Status)
	}
}
