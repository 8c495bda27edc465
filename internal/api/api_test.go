package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/echonotes/internal/dashboard"
	"github.com/starford/echonotes/internal/graph"
	"github.com/starford/echonotes/internal/models"
	"github.com/starford/echonotes/internal/notes"
	"github.com/starford/echonotes/internal/settings"
	"github.com/starford/echonotes/internal/sse"
	"github.com/starford/echonotes/internal/testutil"
	"github.com/starford/echonotes/internal/theme"
	"github.com/starford/echonotes/internal/vault"
	"github.com/starford/echonotes/internal/workspaces"
)

type env struct {
	router   http.Handler
	shell    *dashboard.Shell
	vaultDir string
}

// testEnv seeds a temp vault with the sample notes and builds the router.
// An empty authToken means disabled mode.
func testEnv(t *testing.T, authToken string) env {
	t.Helper()
	return testEnvFull(t, authToken != "", authToken, nil)
}

func testEnvFull(t *testing.T, authEnabled bool, authToken string, sseHandler http.Handler) env {
	t.Helper()
	ctx := context.Background()
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))

	vaultDir, provider := testutil.TestVault(t)
	v := vault.New(provider, log)
	seeded, err := v.Seed(ctx, vault.SampleNotes())
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}

	db := testutil.TestDB(t)
	repo := settings.NewRepository(db, log)
	store := notes.NewStore(seeded, notes.WithFolders(vault.SampleFolders()))

	cfg := dashboard.DefaultConfig()
	cfg.SaveDelay = 0
	shell := dashboard.New(ctx, store, repo, cfg,
		dashboard.WithLogger(log),
		dashboard.WithPersister(v),
	)
	t.Cleanup(shell.Close)

	ws := workspaces.NewService(db, log)
	return env{
		router:   NewRouter(shell, ws, authEnabled, authToken, sseHandler),
		shell:    shell,
		vaultDir: vaultDir,
	}
}

func (e env) do(t *testing.T, method, target string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, rd)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func TestCreateAndGetNote(t *testing.T) {
	e := testEnv(t, "")

	w := e.do(t, http.MethodPost, "/notes", CreateNoteRequest{Title: "Hello", Content: "# Hello\nWorld", Tags: []string{"greeting"}})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	created := decode[NoteDetail](t, w)
	if created.Title != "Hello" || created.Updated != models.JustNow || created.Checksum == "" {
		t.Errorf("created = %+v", created)
	}
	if _, err := os.Stat(filepath.Join(e.vaultDir, vault.FileName(created.ID))); err != nil {
		t.Errorf("note file not written: %v", err)
	}

	w = e.do(t, http.MethodGet, "/notes/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	got := decode[NoteDetail](t, w)
	if got.ID != created.ID || got.Checksum != created.Checksum {
		t.Errorf("got = %+v", got)
	}
	if etag := w.Header().Get("ETag"); strings.Trim(etag, `"`) != created.Checksum {
		t.Errorf("ETag = %q", etag)
	}

	w = e.do(t, http.MethodGet, "/notes/selected", nil)
	if sel := decode[NoteDetail](t, w); sel.ID != created.ID {
		t.Errorf("selected = %s, want new note", sel.ID)
	}
}

func TestCreateNote_EmptyTitle(t *testing.T) {
	e := testEnv(t, "")
	w := e.do(t, http.MethodPost, "/notes", CreateNoteRequest{Title: "  "})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty title = %d, want 400", w.Code)
	}
	w = e.do(t, http.MethodGet, "/notes", nil)
	if resp := decode[NoteListResponse](t, w); resp.Total != 7 {
		t.Errorf("total = %d, want 7", resp.Total)
	}
}

func TestCreateNote_InvalidJSON(t *testing.T) {
	e := testEnv(t, "")
	req := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader("{"))
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid JSON = %d, want 400", w.Code)
	}
}

func TestUpdateWithOptimisticLocking(t *testing.T) {
	e := testEnv(t, "")

	w := e.do(t, http.MethodGet, "/notes/201", nil)
	before := decode[NoteDetail](t, w)

	edit := UpdateNoteRequest{Title: "Project Delta", Content: "v2", Tags: []string{"work"}}
	w = e.do(t, http.MethodPut, "/notes/201", edit, "If-Match", `"`+before.Checksum+`"`)
	if w.Code != http.StatusOK {
		t.Fatalf("update with correct checksum = %d, body = %s", w.Code, w.Body.String())
	}
	after := decode[NoteDetail](t, w)
	if after.Title != "Project Delta" || after.Excerpt != "v2" || after.Checksum == before.Checksum {
		t.Errorf("after = %+v", after)
	}

	// The old checksum is stale now.
	w = e.do(t, http.MethodPut, "/notes/201", edit, "If-Match", before.Checksum)
	if w.Code != http.StatusConflict {
		t.Errorf("update with stale checksum = %d, want 409", w.Code)
	}
}

func TestUpdateWithoutIfMatch(t *testing.T) {
	e := testEnv(t, "")
	w := e.do(t, http.MethodPut, "/notes/202", UpdateNoteRequest{Title: "Goals", Content: "x"})
	if w.Code != http.StatusOK {
		t.Errorf("update without If-Match = %d, want 200", w.Code)
	}
}

func TestUpdateNote_NotFound(t *testing.T) {
	e := testEnv(t, "")
	w := e.do(t, http.MethodPut, "/notes/ghost", UpdateNoteRequest{Title: "x"})
	if w.Code != http.StatusNotFound {
		t.Errorf("update missing = %d, want 404", w.Code)
	}
}

func TestTrashRestoreDelete(t *testing.T) {
	e := testEnv(t, "")

	if w := e.do(t, http.MethodDelete, "/notes/203", nil); w.Code != http.StatusBadRequest {
		t.Errorf("delete active note = %d, want 400", w.Code)
	}

	w := e.do(t, http.MethodPost, "/notes/203/trash", nil)
	if w.Code != http.StatusOK || !decode[NoteDetail](t, w).IsInTrash {
		t.Fatalf("trash = %d %s", w.Code, w.Body.String())
	}
	w = e.do(t, http.MethodGet, "/notes?trash=true", nil)
	if resp := decode[NoteListResponse](t, w); resp.Total != 1 || resp.Notes[0].ID != "203" {
		t.Errorf("trash list = %+v", resp)
	}

	w = e.do(t, http.MethodPost, "/notes/203/restore", nil)
	if w.Code != http.StatusOK || decode[NoteDetail](t, w).IsInTrash {
		t.Fatalf("restore = %d", w.Code)
	}

	e.do(t, http.MethodPost, "/notes/203/trash", nil)
	if w := e.do(t, http.MethodDelete, "/notes/203", nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete = %d, want 204", w.Code)
	}
	if w := e.do(t, http.MethodGet, "/notes/203", nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
	if _, err := os.Stat(filepath.Join(e.vaultDir, "203.md")); !os.IsNotExist(err) {
		t.Errorf("file still present: %v", err)
	}
}

func TestListNotes_QueryAndFolder(t *testing.T) {
	e := testEnv(t, "")

	w := e.do(t, http.MethodGet, "/notes?q=READING", nil)
	resp := decode[NoteListResponse](t, w)
	if resp.Total != 2 {
		t.Errorf("q=READING total = %d, want 2", resp.Total)
	}

	w = e.do(t, http.MethodGet, "/notes?folder=3", nil)
	if resp := decode[NoteListResponse](t, w); resp.Total != 2 {
		t.Errorf("folder 3 total = %d, want 2", resp.Total)
	}
	w = e.do(t, http.MethodGet, "/notes?folder=3&q=graph", nil)
	if resp := decode[NoteListResponse](t, w); resp.Total != 2 {
		t.Errorf("folder 3 q=graph total = %d, want 2", resp.Total)
	}
	if w := e.do(t, http.MethodGet, "/notes?folder=99", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown folder = %d, want 404", w.Code)
	}
	if w := e.do(t, http.MethodGet, "/notes?folder=3&trash=true", nil); w.Code != http.StatusBadRequest {
		t.Errorf("folder with trash = %d, want 400", w.Code)
	}
}

func TestShowTrashView(t *testing.T) {
	e := testEnv(t, "")

	e.do(t, http.MethodPost, "/notes/302/trash", nil)
	e.do(t, http.MethodPost, "/notes/302/select", nil)

	w := e.do(t, http.MethodPut, "/view/trash", TrashViewRequest{Show: true})
	resp := decode[TrashViewResponse](t, w)
	if resp.Selected == nil || resp.Selected.ID != "302" {
		t.Fatalf("selection in trash view = %+v", resp.Selected)
	}

	w = e.do(t, http.MethodPut, "/view/trash", TrashViewRequest{Show: false})
	if resp := decode[TrashViewResponse](t, w); resp.Selected != nil {
		t.Errorf("trashed selection kept: %+v", resp.Selected)
	}
	if w := e.do(t, http.MethodGet, "/notes/selected", nil); w.Code != http.StatusNotFound {
		t.Errorf("selected = %d, want 404", w.Code)
	}
}

func TestMoveAndDrop(t *testing.T) {
	e := testEnv(t, "")

	w := e.do(t, http.MethodPut, "/notes/101/folder", MoveNoteRequest{FolderID: "1"})
	if resp := decode[MoveNoteResponse](t, w); resp.Moved {
		t.Error("same-folder move reported moved")
	}
	w = e.do(t, http.MethodPut, "/notes/101/folder", MoveNoteRequest{FolderID: "3"})
	if resp := decode[MoveNoteResponse](t, w); !resp.Moved || resp.Note.FolderID != "3" {
		t.Errorf("move = %+v", resp)
	}

	w = e.do(t, http.MethodPost, "/dnd/drop", DropRequest{ActiveID: "101", OverID: "folder-2"})
	if resp := decode[DropResponse](t, w); resp.Action != dashboard.DropMove {
		t.Errorf("drop on folder = %s", resp.Action)
	}
	w = e.do(t, http.MethodPost, "/dnd/drop", DropRequest{ActiveID: "101", OverID: dashboard.TrashArea})
	if resp := decode[DropResponse](t, w); resp.Action != dashboard.DropTrash {
		t.Errorf("drop on trash = %s", resp.Action)
	}

	e.do(t, http.MethodPut, "/settings/enableDragDrop", SettingRequest{Value: false})
	if w := e.do(t, http.MethodPost, "/dnd/drop", DropRequest{ActiveID: "102", OverID: dashboard.TrashArea}); w.Code != http.StatusBadRequest {
		t.Errorf("drop while disabled = %d, want 400", w.Code)
	}
}

func TestFolders(t *testing.T) {
	e := testEnv(t, "")
	w := e.do(t, http.MethodGet, "/folders", nil)
	resp := decode[struct {
		Folders []models.FolderView `json:"folders"`
	}](t, w)
	if len(resp.Folders) != 3 || resp.Folders[1].Name != "Work" || len(resp.Folders[1].Notes) != 3 {
		t.Errorf("folders = %+v", resp.Folders)
	}
}

func TestGraphEndpoints(t *testing.T) {
	e := testEnv(t, "")

	w := e.do(t, http.MethodGet, "/graph", nil)
	g := decode[dashboard.GraphState](t, w)
	if len(g.Nodes) != 7 || len(g.Edges) == 0 {
		t.Fatalf("graph = %d nodes %d edges", len(g.Nodes), len(g.Edges))
	}

	w = e.do(t, http.MethodPost, "/graph/edges", EdgeRequest{Source: "203", Target: "301"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create edge = %d %s", w.Code, w.Body.String())
	}
	if edge := decode[graph.Edge](t, w); edge.ID != "e-203-301" || edge.Type != graph.Default {
		t.Errorf("edge = %+v", edge)
	}
	if w := e.do(t, http.MethodPost, "/graph/edges", EdgeRequest{Source: "203", Target: "301"}); w.Code != http.StatusConflict {
		t.Errorf("duplicate edge = %d, want 409", w.Code)
	}
	if w := e.do(t, http.MethodPost, "/graph/edges", EdgeRequest{Source: "203", Target: "301", Type: "wavy"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad type = %d, want 400", w.Code)
	}

	w = e.do(t, http.MethodPatch, "/graph/edges/e-203-301", EdgeTypeRequest{Type: graph.Reference})
	if edge := decode[graph.Edge](t, w); edge.Type != graph.Reference || !edge.Animated {
		t.Errorf("patched = %+v", edge)
	}
	if w := e.do(t, http.MethodDelete, "/graph/edges/e-203-301", nil); w.Code != http.StatusNoContent {
		t.Errorf("delete edge = %d", w.Code)
	}
	if w := e.do(t, http.MethodDelete, "/graph/edges/e-203-301", nil); w.Code != http.StatusNotFound {
		t.Errorf("delete missing edge = %d", w.Code)
	}

	if w := e.do(t, http.MethodPut, "/graph/nodes/203/position", PositionRequest{X: 1, Y: 2}); w.Code != http.StatusNoContent {
		t.Errorf("move node = %d", w.Code)
	}
}

func TestGraphConnectFlow(t *testing.T) {
	e := testEnv(t, "")

	w := e.do(t, http.MethodPost, "/graph/connect", ConnectRequest{Source: "301", Type: graph.Subordinate})
	if st := decode[graph.ConnectorState](t, w); !st.Connecting || st.Source != "301" {
		t.Fatalf("connect state = %+v", st)
	}
	w = e.do(t, http.MethodPost, "/graph/nodes/203/click", nil)
	res := decode[graph.ClickResult](t, w)
	if res.Edge == nil || res.Edge.ID != "e-301-203" {
		t.Fatalf("click = %+v", res)
	}

	w = e.do(t, http.MethodPost, "/graph/cancel", nil)
	if got := decode[map[string]bool](t, w); got["cancelled"] {
		t.Error("cancel after connection should report idle")
	}

	w = e.do(t, http.MethodPost, "/graph/nodes/302/click", nil)
	if res := decode[graph.ClickResult](t, w); res.Select != "302" {
		t.Errorf("idle click = %+v", res)
	}
}

func TestThemeEndpoints(t *testing.T) {
	e := testEnv(t, "")

	w := e.do(t, http.MethodGet, "/theme", nil)
	if a := decode[theme.Active](t, w); a.Color != theme.DefaultColor || len(a.Vars) == 0 {
		t.Errorf("default theme = %s, %d vars", a.Color, len(a.Vars))
	}

	opacity := 50.0
	w = e.do(t, http.MethodPut, "/theme", ThemeRequest{Color: "#0f766e", Opacity: &opacity})
	if a := decode[theme.Active](t, w); a.Color != "#0f766e80" || a.Opacity != 50.2 {
		t.Errorf("set theme = %s %v", a.Color, a.Opacity)
	}
	if w := e.do(t, http.MethodPut, "/theme", ThemeRequest{Color: "teal"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad color = %d, want 400", w.Code)
	}

	w = e.do(t, http.MethodPost, "/theme/reset", nil)
	if a := decode[theme.Active](t, w); a.Base != theme.DefaultColor || a.Opacity != 100 {
		t.Errorf("reset = %s %v", a.Base, a.Opacity)
	}

	w = e.do(t, http.MethodGet, "/theme/presets", nil)
	if p := decode[PresetsResponse](t, w); len(p.Presets) != len(theme.Presets) || p.Default != theme.DefaultColor {
		t.Errorf("presets = %+v", p)
	}
}

func TestCategoriesAndSettings(t *testing.T) {
	e := testEnv(t, "")

	w := e.do(t, http.MethodPost, "/categories", CategoryRequest{Name: "Ideas"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create category = %d %s", w.Code, w.Body.String())
	}
	c := decode[models.Category](t, w)
	if !c.IsCustom || !strings.HasPrefix(c.ID, "custom-") {
		t.Errorf("category = %+v", c)
	}
	if w := e.do(t, http.MethodPost, "/categories", CategoryRequest{Name: ""}); w.Code != http.StatusBadRequest {
		t.Errorf("empty name = %d", w.Code)
	}
	if w := e.do(t, http.MethodDelete, "/categories/all", nil); w.Code != http.StatusBadRequest {
		t.Errorf("delete built-in = %d", w.Code)
	}

	w = e.do(t, http.MethodPut, "/settings/enableCustomCategories", SettingRequest{Value: false})
	if snap := decode[settings.Snapshot](t, w); snap.EnableCustomCategories {
		t.Error("flag not stored")
	}
	w = e.do(t, http.MethodGet, "/categories", nil)
	cats := decode[map[string][]models.Category](t, w)["categories"]
	if len(cats) != 3 {
		t.Errorf("categories while disabled = %d, want 3", len(cats))
	}

	if w := e.do(t, http.MethodPut, "/settings/enableEverything", SettingRequest{Value: true}); w.Code != http.StatusNotFound {
		t.Errorf("unknown setting = %d", w.Code)
	}
	w = e.do(t, http.MethodGet, "/settings", nil)
	if snap := decode[settings.Snapshot](t, w); !snap.EnableDragDrop || snap.EnableCustomCategories {
		t.Errorf("settings = %+v", snap)
	}
}

func TestWorkspaces(t *testing.T) {
	e := testEnv(t, "")

	w := e.do(t, http.MethodPost, "/workspaces", workspaces.Input{Name: "Home", Description: "Personal", EmojiLogo: "🏡"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", w.Code, w.Body.String())
	}
	if w := e.do(t, http.MethodPost, "/workspaces", workspaces.Input{Name: "Home", Description: "x", EmojiLogo: "H"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad emoji = %d, want 400", w.Code)
	}

	w = e.do(t, http.MethodGet, "/workspaces", nil)
	list := decode[map[string][]models.Workspace](t, w)["workspaces"]
	if len(list) != 1 || list[0].Name != "Home" || list[0].ID == "" {
		t.Errorf("workspaces = %+v", list)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := testEnv(t, "secret123")
	w := e.do(t, http.MethodPost, "/notes", CreateNoteRequest{Title: "auth"}, "Authorization", "Bearer secret123")
	if w.Code != http.StatusCreated {
		t.Errorf("authed create = %d, want 201", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	e := testEnv(t, "secret123")
	if w := e.do(t, http.MethodGet, "/notes", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	e := testEnv(t, "secret123")
	if w := e.do(t, http.MethodGet, "/notes", nil, "Authorization", "Bearer wrong"); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	e := testEnv(t, "")
	if w := e.do(t, http.MethodGet, "/notes", nil); w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// SSE endpoint auth tests.

func testEnvWithSSE(t *testing.T, authEnabled bool, token string) env {
	t.Helper()
	b := sse.NewBroker(time.Second)
	t.Cleanup(b.Close)
	return testEnvFull(t, authEnabled, token, b)
}

func TestSSEEvents_AuthProtected(t *testing.T) {
	e := testEnvWithSSE(t, true, "secret")
	if w := e.do(t, http.MethodGet, "/events", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_AuthDisabled(t *testing.T) {
	e := testEnvWithSSE(t, false, "")

	// The SSE handler blocks until the request context ends.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE should not require auth when disabled")
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	e := testEnvWithSSE(t, true, "tok")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with valid token should not 401")
	}
}
