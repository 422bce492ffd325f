package services

import (
	"time"

	"github.com/bloodlink/backend/internal/models"

	"gorm.io/gorm"
)

// ReportService computes the read-only aggregates behind the stats and
// reporting endpoints. Nothing is cached; every call hits the database.
type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService { return &ReportService{db: db} }

const reportWindow = 30 * 24 * time.Hour

type DashboardStats struct {
	TotalDonors            int64            `json:"total_donors"`
	TotalRequests          int64            `json:"total_requests"`
	ApprovedRequests       int64            `json:"approved_requests"`
	PendingRequests        int64            `json:"pending_requests"`
	TotalDonations         int64            `json:"total_donations"`
	RecentDonors           int64            `json:"recent_donors"`
	RecentRequests         int64            `json:"recent_requests"`
	BloodGroupDistribution map[string]int64 `json:"blood_group_distribution"`
}

func (s *ReportService) Dashboard() (*DashboardStats, error) {
	stats := &DashboardStats{}
	since := time.Now().UTC().Add(-reportWindow)

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.TotalDonors, s.db.Model(&models.Donor{})},
		{&stats.TotalRequests, s.db.Model(&models.BloodRequest{})},
		{&stats.ApprovedRequests, s.db.Model(&models.BloodRequest{}).Where("status = ?", models.StatusApproved)},
		{&stats.PendingRequests, s.db.Model(&models.BloodRequest{}).Where("status = ?", models.StatusPending)},
		{&stats.TotalDonations, s.db.Model(&models.Donation{})},
		{&stats.RecentDonors, s.db.Model(&models.Donor{}).Where("created_at >= ?", since)},
		{&stats.RecentRequests, s.db.Model(&models.BloodRequest{}).Where("created_at >= ?", since)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	dist, err := s.bloodGroupDistribution()
	if err != nil {
		return nil, err
	}
	stats.BloodGroupDistribution = dist
	return stats, nil
}

type DonorStats struct {
	TotalDonors            int64            `json:"total_donors"`
	ApprovedDonors         int64            `json:"approved_donors"`
	PendingDonors          int64            `json:"pending_donors"`
	BloodGroupDistribution map[string]int64 `json:"blood_group_distribution"`
}

func (s *ReportService) DonorStats() (*DonorStats, error) {
	stats := &DonorStats{}
	if err := s.db.Model(&models.Donor{}).Count(&stats.TotalDonors).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Donor{}).Where("status = ?", models.StatusApproved).Count(&stats.ApprovedDonors).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Donor{}).Where("status = ?", models.StatusPending).Count(&stats.PendingDonors).Error; err != nil {
		return nil, err
	}
	dist, err := s.bloodGroupDistribution()
	if err != nil {
		return nil, err
	}
	stats.BloodGroupDistribution = dist
	return stats, nil
}

type MonthlyReport struct {
	Period       string    `json:"period"`
	NewDonors    int64     `json:"new_donors"`
	NewRequests  int64     `json:"new_requests"`
	NewDonations int64     `json:"new_donations"`
	GeneratedAt  time.Time `json:"generated_at"`
}

func (s *ReportService) Monthly() (*MonthlyReport, error) {
	now := time.Now().UTC()
	since := now.Add(-reportWindow)
	report := &MonthlyReport{Period: "30_days", GeneratedAt: now}

	if err := s.db.Model(&models.Donor{}).Where("created_at >= ?", since).Count(&report.NewDonors).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.BloodRequest{}).Where("created_at >= ?", since).Count(&report.NewRequests).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Donation{}).Where("created_at >= ?", since).Count(&report.NewDonations).Error; err != nil {
		return nil, err
	}
	return report, nil
}

// bloodGroupDistribution counts approved donors per blood group.
func (s *ReportService) bloodGroupDistribution() (map[string]int64, error) {
	var rows []struct {
		BloodGroup string
		Count      int64
	}
	err := s.db.Model(&models.Donor{}).
		Select("blood_group, count(id) as count").
		Where("status = ?", models.StatusApproved).
		Group("blood_group").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	dist := make(map[string]int64, len(rows))
	for _, row := range rows {
		dist[row.BloodGroup] = row.Count
	}
	return dist, nil
}
