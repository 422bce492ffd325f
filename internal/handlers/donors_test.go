package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/bloodlink/backend/internal/models"
)

func TestDonorListFilters(t *testing.T) {
	db := setupTestDB(t)
	r := testRouter(t, db)
	seedDonor(t, db, "a@example.com", models.StatusApproved)
	seedDonor(t, db, "b@example.com", models.StatusPending)

	w := doJSON(t, r, http.MethodGet, "/api/donors/?status=approved", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	var payload struct {
		Donors []models.Donor `json:"donors"`
		Total  int            `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Total != 1 || len(payload.Donors) != 1 {
		t.Fatalf("expected 1 approved donor got %d", payload.Total)
	}
	if payload.Donors[0].Email != "a@example.com" {
		t.Fatalf("unexpected donor: %s", payload.Donors[0].Email)
	}
}

func TestDonorGetNotFound(t *testing.T) {
	db := setupTestDB(t)
	r := testRouter(t, db)

	w := doJSON(t, r, http.MethodGet, "/api/donors/999", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}

func TestDonorPartialUpdate(t *testing.T) {
	db := setupTestDB(t)
	r := testRouter(t, db)
	donor := seedDonor(t, db, "upd@example.com", models.StatusPending)

	w := doJSON(t, r, http.MethodPut, "/api/donors/1", `{"city":"Shelbyville","is_eligible":false}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", w.Code, w.Body.String())
	}
	var updated models.Donor
	if err := db.First(&updated, donor.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if updated.City != "Shelbyville" {
		t.Fatalf("city not updated: %s", updated.City)
	}
	if updated.IsEligible {
		t.Fatal("is_eligible not updated")
	}
	// Untouched fields keep their values.
	if updated.FullName != donor.FullName || updated.BloodGroup != donor.BloodGroup {
		t.Fatal("unrelated fields were modified")
	}
}

func TestDonorApproveAndReject(t *testing.T) {
	db := setupTestDB(t)
	r := testRouter(t, db)
	a := seedDonor(t, db, "approve@example.com", models.StatusPending)
	b := seedDonor(t, db, "reject@example.com", models.StatusPending)

	if w := doJSON(t, r, http.MethodPost, "/api/donors/1/approve", ""); w.Code != http.StatusOK {
		t.Fatalf("approve: expected 200 got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, "/api/donors/2/reject", ""); w.Code != http.StatusOK {
		t.Fatalf("reject: expected 200 got %d", w.Code)
	}
	var approved, rejected models.Donor
	db.First(&approved, a.ID)
	db.First(&rejected, b.ID)
	if approved.Status != models.StatusApproved {
		t.Fatalf("expected approved got %q", approved.Status)
	}
	if rejected.Status != models.StatusRejected {
		t.Fatalf("expected rejected got %q", rejected.Status)
	}
}

func TestAddDonationUpdatesCounters(t *testing.T) {
	db := setupTestDB(t)
	r := testRouter(t, db)
	donor := seedDonor(t, db, "giver@example.com", models.StatusApproved)

	w := doJSON(t, r, http.MethodPost, "/api/donors/1/donations", `{"location":"Clinic","donation_date":"2025-08-01"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", w.Code, w.Body.String())
	}

	// An earlier-dated donation still moves last_donation_date backwards.
	w = doJSON(t, r, http.MethodPost, "/api/donors/1/donations", `{"location":"Clinic","donation_date":"2025-01-15"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", w.Code)
	}

	var reloaded models.Donor
	if err := db.First(&reloaded, donor.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.TotalDonations != 2 {
		t.Fatalf("expected 2 total donations got %d", reloaded.TotalDonations)
	}
	want := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	if reloaded.LastDonationDate == nil || !reloaded.LastDonationDate.Equal(want) {
		t.Fatalf("expected last donation %v got %v", want, reloaded.LastDonationDate)
	}
}

func TestAddDonationDefaults(t *testing.T) {
	db := setupTestDB(t)
	r := testRouter(t, db)
	seedDonor(t, db, "defaults@example.com", models.StatusApproved)

	w := doJSON(t, r, http.MethodPost, "/api/donors/1/donations", `{}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", w.Code)
	}
	var donation models.Donation
	if err := db.First(&donation).Error; err != nil {
		t.Fatalf("load donation: %v", err)
	}
	if donation.Location != "Unknown" {
		t.Fatalf("expected default location got %q", donation.Location)
	}
	if donation.Units != 1 {
		t.Fatalf("expected default 1 unit got %d", donation.Units)
	}
	if donation.Status != models.DonationCompleted {
		t.Fatalf("expected completed status got %q", donation.Status)
	}
}

func TestListDonationsOrdered(t *testing.T) {
	db := setupTestDB(t)
	r := testRouter(t, db)
	seedDonor(t, db, "order@example.com", models.StatusApproved)

	for _, d := range []string{"2025-03-01", "2025-07-01", "2025-05-01"} {
		if w := doJSON(t, r, http.MethodPost, "/api/donors/1/donations", `{"donation_date":"`+d+`"}`); w.Code != http.StatusCreated {
			t.Fatalf("seed donation %s: got %d", d, w.Code)
		}
	}
	w := doJSON(t, r, http.MethodGet, "/api/donors/1/donations", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	var payload struct {
		Donations      []models.Donation `json:"donations"`
		TotalDonations int               `json:"total_donations"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.TotalDonations != 3 || len(payload.Donations) != 3 {
		t.Fatalf("expected 3 donations got %d", len(payload.Donations))
	}
	if !payload.Donations[0].DonationDate.After(payload.Donations[1].DonationDate) {
		t.Fatal("donations not ordered newest first")
	}
}

func TestDeleteDonorCascadesDonations(t *testing.T) {
	db := setupTestDB(t)
	r := testRouter(t, db)
	donor := seedDonor(t, db, "gone@example.com", models.StatusApproved)
	if w := doJSON(t, r, http.MethodPost, "/api/donors/1/donations", `{"donation_date":"2025-06-01"}`); w.Code != http.StatusCreated {
		t.Fatalf("seed donation: got %d", w.Code)
	}

	w := doJSON(t, r, http.MethodDelete, "/api/donors/1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	var donorCount, donationCount int64
	db.Model(&models.Donor{}).Where("id = ?", donor.ID).Count(&donorCount)
	db.Model(&models.Donation{}).Where("donor_id = ?", donor.ID).Count(&donationCount)
	if donorCount != 0 {
		t.Fatal("donor still present after delete")
	}
	if donationCount != 0 {
		t.Fatalf("expected donations cascade-deleted, %d remain", donationCount)
	}
	if w := doJSON(t, r, http.MethodGet, "/api/donors/1", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete got %d", w.Code)
	}
}

func TestDonorStatsHistogram(t *testing.T) {
	db := setupTestDB(t)
	r := testRouter(t, db)
	seedDonor(t, db, "s1@example.com", models.StatusApproved)
	seedDonor(t, db, "s2@example.com", models.StatusApproved)
	pending := seedDonor(t, db, "s3@example.com", models.StatusPending)
	// Pending donors are excluded from the histogram.
	db.Model(&pending).Update("blood_group", "AB-")

	w := doJSON(t, r, http.MethodGet, "/api/donors/stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	var payload struct {
		TotalDonors            int64            `json:"total_donors"`
		ApprovedDonors         int64            `json:"approved_donors"`
		PendingDonors          int64            `json:"pending_donors"`
		BloodGroupDistribution map[string]int64 `json:"blood_group_distribution"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.TotalDonors != 3 || payload.ApprovedDonors != 2 || payload.PendingDonors != 1 {
		t.Fatalf("unexpected counts: %+v", payload)
	}
	if payload.BloodGroupDistribution["O+"] != 2 {
		t.Fatalf("expected 2 approved O+ donors got %d", payload.BloodGroupDistribution["O+"])
	}
	if _, present := payload.BloodGroupDistribution["AB-"]; present {
		t.Fatal("pending donor leaked into histogram")
	}
}
