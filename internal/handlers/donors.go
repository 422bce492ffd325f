package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/bloodlink/backend/internal/httpx"
	"github.com/bloodlink/backend/internal/models"
	"github.com/bloodlink/backend/internal/services"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

type DonorHandler struct {
	DB      *gorm.DB
	Reports *services.ReportService
}

func NewDonorHandler(db *gorm.DB, reports *services.ReportService) *DonorHandler {
	return &DonorHandler{DB: db, Reports: reports}
}

func (h *DonorHandler) Register(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/stats", h.stats)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/approve", h.approve)
	r.Post("/{id}/reject", h.reject)
	r.Get("/{id}/donations", h.listDonations)
	r.Post("/{id}/donations", h.addDonation)
}

func (h *DonorHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dbq := h.DB.Model(&models.Donor{})
	if status := q.Get("status"); status != "" {
		dbq = dbq.Where("status = ?", status)
	}
	if group := q.Get("blood_group"); group != "" {
		dbq = dbq.Where("blood_group = ?", group)
	}
	if city := q.Get("city"); city != "" {
		dbq = dbq.Where("city = ?", city)
	}
	var donors []models.Donor
	if err := dbq.Order("created_at desc").Find(&donors).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"donors": donors,
		"total":  len(donors),
	})
}

// create adds a donor application through the collection endpoint. Same
// validation and defaults as public registration.
func (h *DonorHandler) create(w http.ResponseWriter, r *http.Request) {
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
		"message": "Donor created successfully",
		"donor":   donor,
	})
}

func (h *DonorHandler) get(w http.ResponseWriter, r *http.Request) {
	donor, ok := h.findDonor(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"donor": donor})
}

func (h *DonorHandler) update(w http.ResponseWriter, r *http.Request) {
	donor, ok := h.findDonor(w, r)
	if !ok {
		return
	}
	var input struct {
		FullName   *string `json:"full_name"`
		Age        *int    `json:"age"`
		Gender     *string `json:"gender"`
		BloodGroup *string `json:"blood_group"`
		Contact    *string `json:"contact"`
		City       *string `json:"city"`
		Status     *string `json:"status"`
		IsEligible *bool   `json:"is_eligible"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if input.FullName != nil {
		donor.FullName = *input.FullName
	}
	if input.Age != nil {
		donor.Age = *input.Age
	}
	if input.Gender != nil {
		donor.Gender = *input.Gender
	}
	if input.BloodGroup != nil {
		donor.BloodGroup = *input.BloodGroup
	}
	if input.Contact != nil {
		donor.Contact = *input.Contact
	}
	if input.City != nil {
		donor.City = *input.City
	}
	if input.Status != nil {
		donor.Status = *input.Status
	}
	if input.IsEligible != nil {
		donor.IsEligible = *input.IsEligible
	}
	if err := h.DB.Save(donor).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Donor updated successfully",
		"donor":   donor,
	})
}

// delete removes a donor and all of its donation records in one transaction.
func (h *DonorHandler) delete(w http.ResponseWriter, r *http.Request) {
	donor, ok := h.findDonor(w, r)
	if !ok {
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("donor_id = ?", donor.ID).Delete(&models.Donation{}).Error; err != nil {
			return err
		}
		return tx.Delete(donor).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "Donor deleted successfully"})
}

func (h *DonorHandler) approve(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.StatusApproved, "Donor approved successfully")
}

func (h *DonorHandler) reject(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.StatusRejected, "Donor rejected")
}

// setStatus performs the one-way pending -> approved/rejected transition.
func (h *DonorHandler) setStatus(w http.ResponseWriter, r *http.Request, status, message string) {
	donor, ok := h.findDonor(w, r)
	if !ok {
		return
	}
	donor.Status = status
	if err := h.DB.Save(donor).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": message,
		"donor":   donor,
	})
}

func (h *DonorHandler) listDonations(w http.ResponseWriter, r *http.Request) {
	donor, ok := h.findDonor(w, r)
	if !ok {
		return
	}
	var donations []models.Donation
	if err := h.DB.Where("donor_id = ?", donor.ID).Order("donation_date desc").Find(&donations).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"donations":       donations,
		"total_donations": donor.TotalDonations,
	})
}

func (h *DonorHandler) addDonation(w http.ResponseWriter, r *http.Request) {
	donor, ok := h.findDonor(w, r)
	if !ok {
		return
	}
	var input struct {
		Location     string `json:"location"`
		Units        int    `json:"units"`
		DonationDate string `json:"donation_date"`
		Notes        string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if input.Location == "" {
		input.Location = "Unknown"
	}
	if input.Units <= 0 {
		input.Units = 1
	}
	date := time.Now().UTC().Truncate(24 * time.Hour)
	if input.DonationDate != "" {
		parsed, err := time.Parse(dateLayout, input.DonationDate)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid donation_date, expected YYYY-MM-DD", nil)
			return
		}
		date = parsed
	}

	donation := models.Donation{
		DonorID:      donor.ID,
		Location:     input.Location,
		Units:        input.Units,
		Status:       models.DonationCompleted,
		DonationDate: date,
		Notes:        input.Notes,
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&donation).Error; err != nil {
			return err
		}
		// The donor's last-donation date always follows the newest record,
		// even when its date precedes an earlier donation.
		donor.TotalDonations++
		donor.LastDonationDate = &donation.DonationDate
		return tx.Save(donor).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message":  "Donation recorded successfully",
		"donation": donation,
	})
}

func (h *DonorHandler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Reports.DonorStats()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

// findDonor resolves {id} to a donor, writing 404/400 on failure.
func (h *DonorHandler) findDonor(w http.ResponseWriter, r *http.Request) (*models.Donor, bool) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid donor id", nil)
		return nil, false
	}
	var donor models.Donor
	if err := h.DB.First(&donor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "Donor not found", nil)
		} else {
			httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
		}
		return nil, false
	}
	return &donor, true
}
