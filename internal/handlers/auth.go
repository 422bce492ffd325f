package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/bloodlink/backend/internal/httpx"
	"github.com/bloodlink/backend/internal/models"
	"github.com/bloodlink/backend/internal/token"
	"github.com/bloodlink/backend/internal/validation"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Subject types embedded in session tokens.
const (
	subjectAdmin = "admin"
	subjectDonor = "donor"
)

type AuthHandler struct {
	DB     *gorm.DB
	Tokens *token.Service
}

func NewAuthHandler(db *gorm.DB, tokens *token.Service) *AuthHandler {
	return &AuthHandler{DB: db, Tokens: tokens}
}

func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Get("/verify", h.verify)
}

// registerInput mirrors the public registration payload (camelCase keys).
type registerInput struct {
	FullName   string `json:"fullName"`
	Age        int    `json:"age"`
	Gender     string `json:"gender"`
	BloodGroup string `json:"bloodGroup"`
	Contact    string `json:"contact"`
	Email      string `json:"email"`
	City       string `json:"city"`
	Password   string `json:"password"`
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var input registerInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	donor, status, errMsg, details := createDonor(h.DB, input)
	if errMsg != "" {
		httpx.JSONError(w, status, errMsg, details)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message": "Registration successful",
		"donor":   donor,
	})
}

// createDonor validates and persists a new donor application. Shared between
// public registration and the donor collection POST endpoint.
func createDonor(db *gorm.DB, input registerInput) (*models.Donor, int, string, any) {
	v := validation.Violations{}
	validation.Required("fullName", input.FullName, v)
	validation.PositiveInt("age", input.Age, v)
	validation.Required("gender", input.Gender, v)
	validation.Required("bloodGroup", input.BloodGroup, v)
	validation.Required("contact", input.Contact, v)
	validation.Required("email", input.Email, v)
	validation.Required("city", input.City, v)
	validation.Required("password", input.Password, v)
	if !v.Empty() {
		return nil, http.StatusBadRequest, "validation_failed", v
	}

	var count int64
	if err := db.Model(&models.Donor{}).Where("email = ?", input.Email).Count(&count).Error; err != nil {
		return nil, http.StatusInternalServerError, err.Error(), nil
	}
	if count > 0 {
		return nil, http.StatusBadRequest, "Email already registered", nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, http.StatusInternalServerError, err.Error(), nil
	}
	donor := models.Donor{
		FullName:     input.FullName,
		Age:          input.Age,
		Gender:       input.Gender,
		BloodGroup:   input.BloodGroup,
		Contact:      input.Contact,
		Email:        input.Email,
		City:         input.City,
		PasswordHash: string(hash),
		Status:       models.StatusPending,
		IsEligible:   true,
	}
	if err := db.Create(&donor).Error; err != nil {
		// Unique index race: two concurrent registrations with the same email.
		if strings.Contains(strings.ToLower(err.Error()), "unique") || strings.Contains(strings.ToLower(err.Error()), "duplicate") {
			return nil, http.StatusBadRequest, "Email already registered", nil
		}
		return nil, http.StatusInternalServerError, err.Error(), nil
	}
	return &donor, 0, "", nil
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if input.Email == "" || input.Password == "" {
		httpx.JSONError(w, http.StatusBadRequest, "Email and password are required", nil)
		return
	}

	var (
		userID      uint
		subjectType string
		user        any
	)
	if input.Role == "admin" {
		var admin models.Admin
		if err := h.DB.Where("email = ?", input.Email).First(&admin).Error; err != nil {
			httpx.JSONError(w, http.StatusUnauthorized, "Invalid credentials", nil)
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(input.Password)) != nil {
			httpx.JSONError(w, http.StatusUnauthorized, "Invalid credentials", nil)
			return
		}
		userID, subjectType, user = admin.ID, subjectAdmin, admin
	} else {
		var donor models.Donor
		if err := h.DB.Where("email = ?", input.Email).First(&donor).Error; err != nil {
			httpx.JSONError(w, http.StatusUnauthorized, "Invalid credentials", nil)
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(donor.PasswordHash), []byte(input.Password)) != nil {
			httpx.JSONError(w, http.StatusUnauthorized, "Invalid credentials", nil)
			return
		}
		if donor.Status != models.StatusApproved {
			httpx.JSONError(w, http.StatusForbidden, "Your account is pending approval", nil)
			return
		}
		userID, subjectType, user = donor.ID, subjectDonor, donor
	}

	signed, err := h.Tokens.Generate(userID, input.Email, subjectType, token.TTL)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   signed,
		"user":    user,
		"type":    subjectType,
	})
}

func (h *AuthHandler) verify(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	if header == "" {
		httpx.JSONError(w, http.StatusUnauthorized, "No token provided", nil)
		return
	}
	raw := strings.TrimPrefix(header, "Bearer ")
	claims, err := h.Tokens.Validate(raw)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			httpx.JSONError(w, http.StatusUnauthorized, "Token expired", nil)
			return
		}
		httpx.JSONError(w, http.StatusUnauthorized, "Invalid token", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"valid":   true,
		"user_id": claims.UserID,
		"type":    claims.Type,
	})
}
