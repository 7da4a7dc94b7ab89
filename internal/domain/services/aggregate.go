package services

import (
	"sort"

	"permscope/internal/domain/models"
)

// DefaultTopRiskApps is the ranking size when the caller does not choose one.
const DefaultTopRiskApps = 5

// ScoreRecord computes an app's risk score: 3 points per genuine-risk
// permission plus 1 per granted normal permission.
func ScoreRecord(rec models.AppPermissionRecord) (score, dangerousGranted, normalGranted int) {
	for _, perm := range rec.Permissions {
		if perm.IsGenuineRisk {
			dangerousGranted++
		}
		if perm.ProtectionLevel == models.ProtectionNormal && perm.Granted {
			normalGranted++
		}
	}
	return 3*dangerousGranted + normalGranted, dangerousGranted, normalGranted
}

// Aggregate folds assembled records into scan-wide totals and a top-N risk
// ranking. Zero-score apps are dropped from the ranking; ties preserve input
// order. Always a full recomputation, never an incremental update.
func Aggregate(records []models.AppPermissionRecord, topN int) models.ScanAggregate {
	if topN <= 0 {
		topN = DefaultTopRiskApps
	}

	agg := models.ScanAggregate{
		TotalApps:   len(records),
		TopRiskApps: []models.RiskRankingEntry{},
	}

	ranking := make([]models.RiskRankingEntry, 0, len(records))
	for _, rec := range records {
		agg.TotalPermissions += len(rec.Permissions)

		score, dangerousGranted, _ := ScoreRecord(rec)
		agg.TotalGenuineRisk += dangerousGranted

		if score == 0 {
			continue
		}
		ranking = append(ranking, models.RiskRankingEntry{
			Record:                rec,
			Score:                 score,
			DangerousGrantedCount: dangerousGranted,
		})
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Score > ranking[j].Score
	})

	if len(ranking) > topN {
		ranking = ranking[:topN]
	}
	agg.TopRiskApps = ranking

	return agg
}
