package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bloodlink/backend/internal/httpx"
	"github.com/bloodlink/backend/internal/models"
	"github.com/bloodlink/backend/internal/services"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

// AdminHandler hosts the administrative surface: dashboards, pending queues,
// the stock ledger, and request approval.
type AdminHandler struct {
	DB      *gorm.DB
	Stock   *services.StockService
	Reports *services.ReportService
}

func NewAdminHandler(db *gorm.DB, stock *services.StockService, reports *services.ReportService) *AdminHandler {
	return &AdminHandler{DB: db, Stock: stock, Reports: reports}
}

func (h *AdminHandler) Register(r chi.Router) {
	r.Get("/dashboard/stats", h.dashboardStats)
	r.Get("/donors/pending", h.pendingDonors)
	r.Get("/requests/pending", h.pendingRequests)
	r.Get("/blood-stock", h.listStock)
	r.Put("/blood-stock/{id}", h.updateStock)
	r.Post("/requests/{id}/approve", h.approveRequest)
	r.Post("/requests/{id}/reject", h.rejectRequest)
	r.Get("/reports/monthly", h.monthlyReport)
}

func (h *AdminHandler) dashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Reports.Dashboard()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) pendingDonors(w http.ResponseWriter, r *http.Request) {
	var donors []models.Donor
	if err := h.DB.Where("status = ?", models.StatusPending).Order("created_at desc").Find(&donors).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"donors": donors})
}

func (h *AdminHandler) pendingRequests(w http.ResponseWriter, r *http.Request) {
	var requests []models.BloodRequest
	if err := h.DB.Where("status = ?", models.StatusPending).Order("created_at desc").Find(&requests).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"requests": requests})
}

func (h *AdminHandler) listStock(w http.ResponseWriter, r *http.Request) {
	stock, err := h.Stock.List()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"stock": stock})
}

func (h *AdminHandler) updateStock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid stock id", nil)
		return
	}
	var input struct {
		UnitsAvailable *int `json:"units_available"`
		UnitsReserved  *int `json:"units_reserved"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	stock, err := h.Stock.Update(id, input.UnitsAvailable, input.UnitsReserved)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "Stock not found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Blood stock updated successfully",
		"stock":   stock,
	})
}

// approveRequest marks a request approved and debits matching stock when
// enough units exist. Approval never fails on missing or short stock; the
// response's stock_debited flag says which path ran.
func (h *AdminHandler) approveRequest(w http.ResponseWriter, r *http.Request) {
	request, ok := findRequest(h.DB, w, r)
	if !ok {
		return
	}
	var outcome services.DebitOutcome
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		request.Status = models.StatusApproved
		if err := tx.Save(request).Error; err != nil {
			return err
		}
		var err error
		outcome, err = h.Stock.Debit(tx, request.BloodGroup, request.Units)
		return err
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message":       "Request approved successfully",
		"request":       request,
		"stock_debited": outcome.Applied(),
	})
}

func (h *AdminHandler) rejectRequest(w http.ResponseWriter, r *http.Request) {
	request, ok := findRequest(h.DB, w, r)
	if !ok {
		return
	}
	request.Status = models.StatusRejected
	if err := h.DB.Save(request).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Request rejected",
		"request": request,
	})
}

func (h *AdminHandler) monthlyReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.Reports.Monthly()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}
