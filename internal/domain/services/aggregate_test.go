package services

import (
	"testing"

	"permscope/internal/domain/models"
)

func record(pkg string, perms ...models.PermissionRecord) models.AppPermissionRecord {
	return models.AppPermissionRecord{
		AppName:     pkg,
		PackageName: pkg,
		Permissions: perms,
	}
}

func riskPerm(id string) models.PermissionRecord {
	return models.PermissionRecord{
		Identifier:      id,
		Granted:         true,
		ProtectionLevel: models.ProtectionDangerous,
		IsGenuineRisk:   true,
	}
}

func normalPerm(id string) models.PermissionRecord {
	return models.PermissionRecord{
		Identifier:      id,
		Granted:         true,
		ProtectionLevel: models.ProtectionNormal,
	}
}

func TestScoreRecord(t *testing.T) {
	tests := []struct {
		name          string
		rec           models.AppPermissionRecord
		wantScore     int
		wantDangerous int
		wantNormal    int
	}{
		{
			name:      "empty record",
			rec:       record("com.example.empty"),
			wantScore: 0,
		},
		{
			name:          "one risk one normal",
			rec:           record("com.example.mix", riskPerm("android.permission.CAMERA"), normalPerm("android.permission.INTERNET")),
			wantScore:     4,
			wantDangerous: 1,
			wantNormal:    1,
		},
		{
			name:          "two risks",
			rec:           record("com.example.risky", riskPerm("android.permission.CAMERA"), riskPerm("android.permission.READ_SMS")),
			wantScore:     6,
			wantDangerous: 2,
		},
		{
			name: "denied normal does not count",
			rec: record("com.example.denied", models.PermissionRecord{
				Identifier:      "android.permission.INTERNET",
				Granted:         false,
				ProtectionLevel: models.ProtectionNormal,
			}),
			wantScore: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, dangerous, normal := ScoreRecord(tt.rec)
			if score != tt.wantScore || dangerous != tt.wantDangerous || normal != tt.wantNormal {
				t.Errorf("ScoreRecord = (%d,%d,%d), want (%d,%d,%d)",
					score, dangerous, normal, tt.wantScore, tt.wantDangerous, tt.wantNormal)
			}
		})
	}
}

func TestAggregateTotals(t *testing.T) {
	records := []models.AppPermissionRecord{
		record("com.a", riskPerm("android.permission.CAMERA"), normalPerm("android.permission.INTERNET")),
		record("com.b", normalPerm("android.permission.VIBRATE")),
		record("com.c"),
	}

	agg := Aggregate(records, 5)

	if agg.TotalApps != 3 {
		t.Errorf("TotalApps = %d, want 3", agg.TotalApps)
	}
	if agg.TotalPermissions != 3 {
		t.Errorf("TotalPermissions = %d, want 3", agg.TotalPermissions)
	}
	if agg.TotalGenuineRisk != 1 {
		t.Errorf("TotalGenuineRisk = %d, want 1", agg.TotalGenuineRisk)
	}
}

func TestAggregateRankingDropsZeroScores(t *testing.T) {
	records := []models.AppPermissionRecord{
		record("com.zero"),
		record("com.scored", normalPerm("android.permission.INTERNET")),
	}

	agg := Aggregate(records, 5)

	if len(agg.TopRiskApps) != 1 {
		t.Fatalf("ranking has %d entries, want 1", len(agg.TopRiskApps))
	}
	if agg.TopRiskApps[0].Record.PackageName != "com.scored" {
		t.Errorf("ranked package = %s, want com.scored", agg.TopRiskApps[0].Record.PackageName)
	}
}

func TestAggregateTopNTruncation(t *testing.T) {
	records := []models.AppPermissionRecord{
		record("com.low", normalPerm("android.permission.INTERNET")),                                 // score 1
		record("com.high", riskPerm("android.permission.CAMERA"), riskPerm("android.permission.READ_SMS")), // score 6
		record("com.mid", riskPerm("android.permission.CAMERA")),                                     // score 3
	}

	agg := Aggregate(records, 1)

	if len(agg.TopRiskApps) != 1 {
		t.Fatalf("ranking has %d entries, want 1", len(agg.TopRiskApps))
	}
	top := agg.TopRiskApps[0]
	if top.Record.PackageName != "com.high" || top.Score != 6 {
		t.Errorf("top entry = (%s, %d), want (com.high, 6)", top.Record.PackageName, top.Score)
	}
}

// Ties keep input order.
func TestAggregateRankingIsStable(t *testing.T) {
	records := []models.AppPermissionRecord{
		record("com.first", riskPerm("android.permission.CAMERA")),
		record("com.second", riskPerm("android.permission.READ_SMS")),
	}

	agg := Aggregate(records, 5)

	if len(agg.TopRiskApps) != 2 {
		t.Fatalf("ranking has %d entries, want 2", len(agg.TopRiskApps))
	}
	if agg.TopRiskApps[0].Record.PackageName != "com.first" {
		t.Errorf("tie broke input order: first = %s", agg.TopRiskApps[0].Record.PackageName)
	}
}

func TestAggregateDefaultTopN(t *testing.T) {
	records := make([]models.AppPermissionRecord, 0, 8)
	for _, pkg := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		records = append(records, record("com."+pkg, normalPerm("android.permission.INTERNET")))
	}

	agg := Aggregate(records, 0)
	if len(agg.TopRiskApps) != DefaultTopRiskApps {
		t.Errorf("ranking has %d entries, want %d", len(agg.TopRiskApps), DefaultTopRiskApps)
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	agg := Aggregate(nil, 5)
	if agg.TotalApps != 0 || agg.TotalPermissions != 0 || agg.TotalGenuineRisk != 0 {
		t.Errorf("non-zero totals for empty input: %+v", agg)
	}
	if agg.TopRiskApps == nil {
		t.Error("TopRiskApps is nil, want empty slice")
	}
}
