package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/fleetpass/fleetctl/internal/logging"
	"github.com/fleetpass/fleetctl/internal/model"
	"github.com/fleetpass/fleetctl/internal/session"
)

const (
	testEmail    = "admin@fleetpass.example"
	testPassword = "correct-horse"

	orgAcme   = "6f1d2c3e-5a4b-4c3d-8e2f-00000000000a"
	orgBeta   = "6f1d2c3e-5a4b-4c3d-8e2f-00000000000b"
	orgGone   = "6f1d2c3e-5a4b-4c3d-8e2f-0000000000ff"
	locAcme   = "7a2e3d4f-6b5c-4d4e-9f30-0000000000a1"
	locBeta   = "7a2e3d4f-6b5c-4d4e-9f30-0000000000b1"
	locOrph   = "7a2e3d4f-6b5c-4d4e-9f30-0000000000c1"
	vehAccord = "8b3f4e50-7c6d-4e5f-a041-0000000000f1"
	vehCivic  = "8b3f4e50-7c6d-4e5f-a041-0000000000f2"
)

var testPrincipal = session.Principal{
	ID:          "9c405f61-8d7e-4f60-b152-000000000001",
	Email:       testEmail,
	Role:        session.RoleAdmin,
	FirstName:   "Dana",
	LastName:    "Reyes",
	Roles:       []string{"admin"},
	Permissions: []string{"vehicles:write"},
}

func testToken(t *testing.T) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   testPrincipal.ID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

// fakeAPI is an in-memory FleetPass API
type fakeAPI struct {
	*httptest.Server
	token string

	mu       sync.Mutex
	requests []string
	auth     []string
	orgs     []model.Organization
	locs     []model.Location
	vehicles []model.Vehicle
	lastBody []byte
	bulkForm map[string]string
	bulkFile string
	bulk     model.BulkUploadResult
	fail     map[string]int
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{
		token: testToken(t),
		orgs: []model.Organization{
			{ID: orgAcme, Name: "Acme Rentals", Slug: "acme", IsActive: true},
			{ID: orgBeta, Name: "Beta Cars", Slug: "beta", IsActive: true},
		},
		locs: []model.Location{
			{ID: locAcme, OrganizationID: orgAcme, Name: "Acme Downtown", City: "Austin", State: "TX", IsActive: true},
			{ID: locBeta, OrganizationID: orgBeta, Name: "Beta Airport", City: "Denver", State: "CO", IsActive: true},
			{ID: locOrph, OrganizationID: orgGone, Name: "Orphan Lot"},
		},
		vehicles: []model.Vehicle{
			{ID: vehAccord, LocationID: locAcme, VIN: "1HGBH41JXMN109186", Make: "Honda", Model: "Accord", Year: 2022,
				Trim: "EX-L", Status: model.StatusAvailable, Condition: model.ConditionUsed, Mileage: 15000, DailyRate: 59.99,
				Images: []string{"https://img.example/accord-1.jpg", "https://img.example/accord-2.jpg"}},
			{ID: vehCivic, LocationID: locBeta, VIN: "2HGFC2F59MH512345", Make: "Honda", Model: "Civic", Year: 2021,
				Status: model.StatusMaintenance, Condition: model.ConditionUsed, Mileage: 32000},
		},
		fail: map[string]int{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", f.handleLogin)
	mux.HandleFunc("GET /api/profile", f.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, testPrincipal)
	}))
	mux.HandleFunc("GET /api/organizations", f.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, f.orgs)
	}))
	mux.HandleFunc("POST /api/organizations", f.authed(f.handleCreateOrg))
	mux.HandleFunc("DELETE /api/organizations/{id}", f.authed(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	mux.HandleFunc("GET /api/locations", f.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, f.locs)
	}))
	mux.HandleFunc("POST /api/locations", f.authed(f.handleCreateLocation))
	mux.HandleFunc("DELETE /api/locations/{id}", f.authed(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	mux.HandleFunc("GET /api/vehicles", f.authed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, f.vehicles)
	}))
	mux.HandleFunc("GET /api/vehicles/{id}", f.authed(func(w http.ResponseWriter, r *http.Request) {
		for _, v := range f.vehicles {
			if v.ID == r.PathValue("id") {
				writeJSON(w, v)
				return
			}
		}
		http.Error(w, "Vehicle not found", http.StatusNotFound)
	}))
	mux.HandleFunc("POST /api/vehicles", f.authed(f.handleSaveVehicle))
	mux.HandleFunc("PUT /api/vehicles/{id}", f.authed(f.handleSaveVehicle))
	mux.HandleFunc("DELETE /api/vehicles/{id}", f.authed(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	mux.HandleFunc("POST /api/vehicles/bulk-upload", f.authed(f.handleBulk))

	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		key := r.Method + " " + r.URL.Path
		f.requests = append(f.requests, key)
		f.auth = append(f.auth, r.Header.Get("Authorization"))
		status := f.fail[key]
		f.mu.Unlock()
		if status != 0 {
			http.Error(w, http.StatusText(status), status)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeAPI) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+f.token {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (f *fakeAPI) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if req.Email != testEmail || req.Password != testPassword {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	writeJSON(w, map[string]any{"token": f.token, "user": testPrincipal})
}

func (f *fakeAPI) handleCreateOrg(w http.ResponseWriter, r *http.Request) {
	var req model.CreateOrganizationRequest
	body, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(body, &req)
	org := model.Organization{ID: "6f1d2c3e-5a4b-4c3d-8e2f-0000000000c0", Name: req.Name, Slug: req.Slug, IsActive: true}
	f.mu.Lock()
	f.lastBody = body
	f.orgs = append(f.orgs, org)
	f.mu.Unlock()
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, org)
}

func (f *fakeAPI) handleCreateLocation(w http.ResponseWriter, r *http.Request) {
	var req model.CreateLocationRequest
	body, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(body, &req)
	loc := model.Location{ID: "7a2e3d4f-6b5c-4d4e-9f30-0000000000d1", OrganizationID: req.OrganizationID, Name: req.Name, Country: req.Country}
	f.mu.Lock()
	f.lastBody = body
	f.locs = append(f.locs, loc)
	f.mu.Unlock()
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, loc)
}

func (f *fakeAPI) handleSaveVehicle(w http.ResponseWriter, r *http.Request) {
	var req model.VehicleRequest
	body, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(body, &req)
	f.mu.Lock()
	f.lastBody = body
	f.mu.Unlock()
	id := r.PathValue("id")
	if id == "" {
		id = "8b3f4e50-7c6d-4e5f-a041-0000000000f9"
	}
	writeJSON(w, model.Vehicle{ID: id, LocationID: req.LocationID, VIN: req.VIN, Make: req.Make, Model: req.Model, Year: req.Year, Mileage: req.Mileage})
}

func (f *fakeAPI) handleBulk(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "No file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()
	data, _ := io.ReadAll(file)

	f.mu.Lock()
	f.bulkForm = map[string]string{
		"organization_id": r.FormValue("organization_id"),
		"location_id":     r.FormValue("location_id"),
	}
	f.bulkFile = string(data)
	res := f.bulk
	f.mu.Unlock()
	writeJSON(w, res)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// failWith makes method+path answer with status
func (f *fakeAPI) failWith(method, path string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[method+" "+path] = status
}

// calls returns the recorded "METHOD /path" requests
func (f *fakeAPI) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeAPI) count(method, path string) int {
	n := 0
	for _, c := range f.calls() {
		if c == method+" "+path {
			n++
		}
	}
	return n
}

func (f *fakeAPI) body() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastBody
}

// testEnv points the CLI at a fake API and a private session file
type testEnv struct {
	api         *fakeAPI
	sessionFile string
}

func setupCLI(t *testing.T) *testEnv {
	t.Helper()
	api := newFakeAPI(t)
	env := &testEnv{
		api:         api,
		sessionFile: filepath.Join(t.TempDir(), "fleetctl", "session.yaml"),
	}

	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")
	t.Setenv("FLEETCTL_API_URL", api.URL)
	t.Setenv("FLEETCTL_SESSION_FILE", env.sessionFile)
	t.Setenv("FLEETCTL_BULK_REDIRECT_DELAY", "0s")

	resetFlags(rootCmd)
	cfg = nil
	logger = logging.Discard()
	return env
}

// login seeds the session file the way a previous 'fleetctl login' would
func (e *testEnv) login(t *testing.T) {
	t.Helper()
	store := session.NewStore(session.NewFileBackend(e.sessionFile), logging.Discard())
	require.NoError(t, store.Set(e.api.token, testPrincipal))
}

func (e *testEnv) sessionExists() bool {
	_, err := os.Stat(e.sessionFile)
	return err == nil
}

type result struct {
	stdout string
	stderr string
	err    error
}

func (e *testEnv) run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// resetFlags restores every flag to its default between executions
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func mustExitCode(t *testing.T, err error, want int) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, want, ExitCode(err), fmt.Sprintf("error: %v", err))
}

func writeSession(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func sorted(s []string) []string {
	out := append([]string(nil), s...)
	slices.Sort(out)
	return out
}
