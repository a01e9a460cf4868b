package services

import (
	"fmt"
	"log"

	"github.com/admiralorbiter/skien/internal/models"

	"gorm.io/gorm"
)

// AuditService records admin actions and maintains the system metric gauges
type AuditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditService
func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// RequestMeta captures where a request came from for the audit trail
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// LogAction appends an audit record. Audit rows are never updated or
// deleted afterwards.
func (s *AuditService) LogAction(adminUserID uint, action string, targetID *uint, details string, meta RequestMeta) error {
	entry := &models.AdminLog{
		AdminUserID: adminUserID,
		Action:      action,
		TargetID:    targetID,
		Details:     details,
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
	}

	if violations := entry.Validate(); len(violations) > 0 {
		return NewValidationError(violations)
	}

	if err := s.db.Create(entry).Error; err != nil {
		log.Printf("Error logging admin action %s: %v", action, err)
		return fmt.Errorf("failed to log admin action: %w", err)
	}
	return nil
}

// RecentActions returns the newest audit entries, newest first. Storage
// errors degrade to an empty list.
func (s *AuditService) RecentActions(limit int) []models.AdminLog {
	var logs []models.AdminLog
	err := s.db.Order("created_at DESC, id DESC").Limit(limit).Find(&logs).Error
	if err != nil {
		log.Printf("Database error loading recent admin actions: %v", err)
		return nil
	}
	return logs
}

// ActionsForTarget returns the newest audit entries touching one target id
func (s *AuditService) ActionsForTarget(targetID uint, limit int) []models.AdminLog {
	var logs []models.AdminLog
	err := s.db.Where("target_id = ?", targetID).
		Order("created_at DESC, id DESC").Limit(limit).Find(&logs).Error
	if err != nil {
		log.Printf("Database error loading admin actions for target %d: %v", targetID, err)
		return nil
	}
	return logs
}

// ListActions returns a page of audit entries, newest first
func (s *AuditService) ListActions(limit, offset int) ([]models.AdminLog, int64, error) {
	var logs []models.AdminLog
	var total int64

	if err := s.db.Model(&models.AdminLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := s.db.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&logs).Error
	if err != nil {
		log.Printf("Database error listing admin logs: %v", err)
		return nil, 0, err
	}
	return logs, total, nil
}

// SetMetric upserts a named gauge and its optional JSON payload
func (s *AuditService) SetMetric(name string, value float64, data string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var metric models.SystemMetrics
		err := tx.Where("metric_name = ?", name).First(&metric).Error
		if isNotFound(err) {
			metric = models.SystemMetrics{
				MetricName:  name,
				MetricValue: value,
				MetricData:  data,
			}
			return tx.Create(&metric).Error
		}
		if err != nil {
			return err
		}
		metric.MetricValue = value
		metric.MetricData = data
		return tx.Save(&metric).Error
	})
	if err != nil {
		log.Printf("Error setting metric %s: %v", name, err)
		return fmt.Errorf("failed to set metric %s: %w", name, err)
	}
	return nil
}

// GetMetric reads a named gauge, returning defaultValue when the metric is
// missing or the read fails
func (s *AuditService) GetMetric(name string, defaultValue float64) float64 {
	var metric models.SystemMetrics
	err := s.db.Where("metric_name = ?", name).First(&metric).Error
	if err != nil {
		if !isNotFound(err) {
			log.Printf("Error getting metric %s: %v", name, err)
		}
		return defaultValue
	}
	return metric.MetricValue
}
