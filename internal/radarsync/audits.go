package radarsync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/hervefr78/fga-crm/internal/models"
	"github.com/hervefr78/fga-crm/internal/startupradar"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const auditStatusCompleted = "completed"

// syncAudits imports the two audit sub-resources for every remote startup
// that resolved to a local company during the startups phase.
func syncAudits(ctx context.Context, tx *gorm.DB, client *startupradar.Client, userID uint, idMap map[string]uint, startups []startupradar.Startup) *Result {
	result := &Result{}

	for _, st := range startups {
		srID := strconv.FormatInt(st.ID, 10)

		companyID, ok := idMap[srID]
		if !ok {
			continue
		}

		name := st.Name
		if name == "" {
			name = "Startup"
		}

		created, _, errs := importCompanyAudits(ctx, tx, client, companyID, name, srID, userID)
		result.AuditsCreated += created
		result.Errors = append(result.Errors, errs...)
	}

	log.Printf("[RadarSync] audits: %d created", result.AuditsCreated)
	return result
}

// importCompanyAudits fetches the messaging analysis and the detailed audit
// for one company and inserts an audit activity for each, unless an activity
// with the same (company, type=audit, subject) triple already exists. The
// subject line doubles as the idempotency key because audits carry no stable
// external id. A detailed audit in a non-terminal status is reported as an
// informational error and retried on the next run.
func importCompanyAudits(ctx context.Context, tx *gorm.DB, client *startupradar.Client, companyID uint, companyName, srID string, userID uint) (created, skipped int, errs []string) {
	analysis, err := client.GetAnalysis(ctx, srID)
	if err != nil {
		errs = append(errs, fmt.Sprintf("analysis %s: %v", companyName, err))
	} else if analysis != nil && analysis.Positioning != "" {
		subject := fmt.Sprintf("Audit messaging: %s", companyName)
		metadata := datatypes.JSONMap{
			"audit_type":        "messaging",
			"source":            "startup_radar",
			"positioning":       analysis.Positioning,
			"value_proposition": analysis.ValueProposition,
			"messaging_score":   analysis.MessagingScore,
			"differentiators":   analysis.Differentiators,
			"target_audience":   analysis.TargetAudience,
			"strengths":         analysis.Strengths,
			"weaknesses":        analysis.Weaknesses,
			"recommendations":   analysis.Recommendations,
		}

		ok, err := insertAuditActivity(tx, companyID, userID, subject, analysis.ValueProposition, metadata)
		switch {
		case err != nil:
			errs = append(errs, fmt.Sprintf("analysis %s: %v", companyName, err))
		case ok:
			created++
		default:
			skipped++
		}
	}

	audit, err := client.GetDetailedAudit(ctx, srID)
	if err != nil {
		errs = append(errs, fmt.Sprintf("detailed audit %s: %v", companyName, err))
	} else if audit != nil {
		switch {
		case audit.Status == auditStatusCompleted && audit.Result != nil:
			summary := audit.Result.ExecutiveSummary
			subject := fmt.Sprintf("Audit detailed: %s", companyName)
			metadata := datatypes.JSONMap{
				"audit_type":            "detailed",
				"source":                "startup_radar",
				"total_score":           summary.TotalScore,
				"score_interpretation":  summary.ScoreInterpretation,
				"key_findings":          summary.KeyFindings,
				"top_priority":          summary.TopPriority,
				"scoring":               audit.Result.Scoring,
				"gaps_count":            summary.GapsCount,
				"recommendations_count": summary.RecommendationsCount,
			}

			ok, err := insertAuditActivity(tx, companyID, userID, subject, summary.ScoreInterpretation, metadata)
			switch {
			case err != nil:
				errs = append(errs, fmt.Sprintf("detailed audit %s: %v", companyName, err))
			case ok:
				created++
			default:
				skipped++
			}
		case audit.Status != auditStatusCompleted:
			status := audit.Status
			if status == "" {
				status = "unknown"
			}
			// Informational: the remote is still working on it.
			errs = append(errs, fmt.Sprintf("detailed audit %s: in progress (status: %s)", companyName, status))
		}
	}

	return created, skipped, errs
}

// insertAuditActivity creates the activity unless the dedup triple already
// exists. Returns true when a row was inserted.
func insertAuditActivity(tx *gorm.DB, companyID, userID uint, subject, content string, metadata datatypes.JSONMap) (bool, error) {
	var existing models.Activity
	err := tx.Where("company_id = ? AND type = ? AND subject = ?", companyID, models.ActivityTypeAudit, subject).
		First(&existing).Error

	if err == nil {
		return false, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	activity := models.Activity{
		Type:      models.ActivityTypeAudit,
		Subject:   subject,
		Content:   content,
		Metadata:  metadata,
		CompanyID: &companyID,
		UserID:    userID,
	}

	if err := tx.Create(&activity).Error; err != nil {
		return false, err
	}

	return true, nil
}
