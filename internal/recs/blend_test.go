package recs

import "testing"

func TestBlendRecommendations_Weights(t *testing.T) {
	content := []ScoredJob{{JobID: "both", Score: 0.8}, {JobID: "contentOnly", Score: 0.5}}
	collaborative := []ScoredJob{{JobID: "both", Score: 2.0}, {JobID: "collabOnly", Score: 1.0}}

	results := BlendRecommendations(content, collaborative, 10)
	byID := make(map[string]Recommendation, len(results))
	for _, r := range results {
		byID[r.JobID] = r
	}

	if r := byID["contentOnly"]; !almostEqual(r.FinalScore, 0.5*0.6) {
		t.Errorf("content-only final = %v, want %v", r.FinalScore, 0.5*0.6)
	}
	if r := byID["collabOnly"]; !almostEqual(r.FinalScore, 1.0*0.4) {
		t.Errorf("collab-only final = %v, want %v", r.FinalScore, 1.0*0.4)
	}
	if r := byID["both"]; !almostEqual(r.FinalScore, 0.8*0.6+2.0*0.4) {
		t.Errorf("both final = %v, want %v", r.FinalScore, 0.8*0.6+2.0*0.4)
	}
	if r := byID["collabOnly"]; r.ContentScore != 0 {
		t.Errorf("collab-only content score = %v, want 0", r.ContentScore)
	}
}

func TestBlendRecommendations_SortedAndLimited(t *testing.T) {
	content := []ScoredJob{
		{JobID: "low", Score: 0.1},
		{JobID: "high", Score: 0.9},
		{JobID: "mid", Score: 0.5},
	}

	results := BlendRecommendations(content, nil, 2)
	if len(results) != 2 {
		t.Fatalf("limit 2, got %d results", len(results))
	}
	if results[0].JobID != "high" || results[1].JobID != "mid" {
		t.Errorf("order = [%s, %s], want [high, mid]", results[0].JobID, results[1].JobID)
	}
	for i := 1; i < len(results); i++ {
		if results[i].FinalScore > results[i-1].FinalScore {
			t.Error("results not sorted descending")
		}
	}
}

func TestBlendRecommendations_StableTies(t *testing.T) {
	content := []ScoredJob{
		{JobID: "first", Score: 0.5},
		{JobID: "second", Score: 0.5},
	}
	results := BlendRecommendations(content, nil, 10)
	if results[0].JobID != "first" || results[1].JobID != "second" {
		t.Errorf("tie order not stable: [%s, %s]", results[0].JobID, results[1].JobID)
	}
}

func TestBlendRecommendations_Reasons(t *testing.T) {
	content := []ScoredJob{{JobID: "strong", Score: 0.5}, {JobID: "weak", Score: 0.1}}
	collaborative := []ScoredJob{{JobID: "strong", Score: 0.9}}

	results := BlendRecommendations(content, collaborative, 10)
	byID := make(map[string]Recommendation, len(results))
	for _, r := range results {
		byID[r.JobID] = r
	}

	strong := byID["strong"].Reasons
	if len(strong) != 2 || strong[0] != reasonContent || strong[1] != reasonCollab {
		t.Errorf("strong reasons = %v, want both phrases in order", strong)
	}
	if weak := byID["weak"].Reasons; len(weak) != 0 {
		t.Errorf("weak reasons = %v, want none", weak)
	}
}

func TestBlendRecommendations_Empty(t *testing.T) {
	if results := BlendRecommendations(nil, nil, 5); len(results) != 0 {
		t.Errorf("expected empty blend, got %v", results)
	}
}
