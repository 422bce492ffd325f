package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bloodlink/backend/internal/models"
	"github.com/bloodlink/backend/internal/services"
	"github.com/bloodlink/backend/internal/token"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid cross-test collisions.
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := "file:" + name + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Donor{}, &models.Donation{}, &models.BloodRequest{}, &models.Admin{}, &models.BloodStock{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestTokens() *token.Service { return token.NewService("test-secret") }

// testRouter mounts every handler the way the real server does, minus
// middleware, so route params resolve.
func testRouter(t *testing.T, db *gorm.DB) chi.Router {
	t.Helper()
	tokens := newTestTokens()
	stock := services.NewStockService(db)
	reports := services.NewReportService(db)
	r := chi.NewRouter()
	r.Route("/api/auth", NewAuthHandler(db, tokens).Register)
	r.Route("/api/donors", NewDonorHandler(db, reports).Register)
	r.Route("/api/blood-requests", NewRequestHandler(db).Register)
	r.Route("/api/admin", NewAdminHandler(db, stock, reports).Register)
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func doJSONWithAuth(t *testing.T, h http.Handler, path, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func seedDonor(t *testing.T, db *gorm.DB, email, status string) models.Donor {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	donor := models.Donor{
		FullName:     "Seed Donor",
		Age:          30,
		Gender:       "female",
		BloodGroup:   "O+",
		Contact:      "1234567890",
		Email:        email,
		City:         "Springfield",
		PasswordHash: string(hash),
		Status:       status,
		IsEligible:   true,
	}
	if err := db.Create(&donor).Error; err != nil {
		t.Fatalf("seed donor: %v", err)
	}
	return donor
}

func seedRequest(t *testing.T, db *gorm.DB, bloodGroup string, units int) models.BloodRequest {
	t.Helper()
	request := models.BloodRequest{
		Name:         "Patient",
		Contact:      "9876543210",
		BloodGroup:   bloodGroup,
		Units:        units,
		HospitalName: "City Hospital",
		City:         "Springfield",
		Status:       models.StatusPending,
		Urgency:      models.UrgencyNormal,
	}
	if err := db.Create(&request).Error; err != nil {
		t.Fatalf("seed request: %v", err)
	}
	return request
}
