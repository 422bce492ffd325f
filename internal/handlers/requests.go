package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/bloodlink/backend/internal/httpx"
	"github.com/bloodlink/backend/internal/models"
	"github.com/bloodlink/backend/internal/validation"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

type RequestHandler struct {
	DB *gorm.DB
}

func NewRequestHandler(db *gorm.DB) *RequestHandler { return &RequestHandler{DB: db} }

func (h *RequestHandler) Register(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/donor/{id}", h.listByDonor)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *RequestHandler) create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name         string `json:"name"`
		Contact      string `json:"contact"`
		BloodGroup   string `json:"bloodGroup"`
		Units        int    `json:"units"`
		HospitalName string `json:"hospitalName"`
		City         string `json:"city"`
		Message      string `json:"message"`
		Urgency      string `json:"urgency"`
		DonorID      *uint  `json:"donorId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", input.Name, v)
	validation.Required("contact", input.Contact, v)
	validation.Required("bloodGroup", input.BloodGroup, v)
	validation.PositiveInt("units", input.Units, v)
	validation.Required("hospitalName", input.HospitalName, v)
	validation.Required("city", input.City, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if input.Urgency == "" {
		input.Urgency = models.UrgencyNormal
	}

	request := models.BloodRequest{
		Name:         input.Name,
		Contact:      input.Contact,
		BloodGroup:   input.BloodGroup,
		Units:        input.Units,
		HospitalName: input.HospitalName,
		City:         input.City,
		Message:      input.Message,
		Status:       models.StatusPending,
		Urgency:      input.Urgency,
		DonorID:      input.DonorID,
	}
	if err := h.DB.Create(&request).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message": "Blood request submitted successfully",
		"request": request,
	})
}

func (h *RequestHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dbq := h.DB.Model(&models.BloodRequest{})
	if status := q.Get("status"); status != "" {
		dbq = dbq.Where("status = ?", status)
	}
	if group := q.Get("blood_group"); group != "" {
		dbq = dbq.Where("blood_group = ?", group)
	}
	var requests []models.BloodRequest
	if err := dbq.Order("created_at desc").Find(&requests).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"requests": requests})
}

func (h *RequestHandler) get(w http.ResponseWriter, r *http.Request) {
	request, ok := findRequest(h.DB, w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"request": request})
}

// update touches status and urgency only; all other fields are immutable
// after intake.
func (h *RequestHandler) update(w http.ResponseWriter, r *http.Request) {
	request, ok := findRequest(h.DB, w, r)
	if !ok {
		return
	}
	var input struct {
		Status  *string `json:"status"`
		Urgency *string `json:"urgency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if input.Status != nil {
		request.Status = *input.Status
	}
	if input.Urgency != nil {
		request.Urgency = *input.Urgency
	}
	if err := h.DB.Save(request).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Request updated successfully",
		"request": request,
	})
}

func (h *RequestHandler) delete(w http.ResponseWriter, r *http.Request) {
	request, ok := findRequest(h.DB, w, r)
	if !ok {
		return
	}
	if err := h.DB.Delete(request).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "Request deleted successfully"})
}

func (h *RequestHandler) listByDonor(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	donorID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid donor id", nil)
		return
	}
	var requests []models.BloodRequest
	if err := h.DB.Where("donor_id = ?", donorID).Order("created_at desc").Find(&requests).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"requests": requests})
}

// findRequest resolves {id} to a blood request, writing 404/400 on failure.
func findRequest(db *gorm.DB, w http.ResponseWriter, r *http.Request) (*models.BloodRequest, bool) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid request id", nil)
		return nil, false
	}
	var request models.BloodRequest
	if err := db.First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "Request not found", nil)
		} else {
			httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
		}
		return nil, false
	}
	return &request, true
}
