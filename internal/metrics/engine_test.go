package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/feiralivre/app-busca-catalogo/internal/models"
)

// fakeStore guarda tudo em memória e responde as contagens a partir dos
// registros inseridos.
type fakeStore struct {
	searches  []*models.SearchMetric
	clicks    []*models.ClickMetric
	insertErr error
}

func (f *fakeStore) InsertSearch(ctx context.Context, metric *models.SearchMetric) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.searches = append(f.searches, metric)
	return nil
}

func (f *fakeStore) InsertClick(ctx context.Context, click *models.ClickMetric) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.clicks = append(f.clicks, click)
	return nil
}

func (f *fakeStore) CountSearches(ctx context.Context, since time.Time) (int, int, error) {
	total, zero := 0, 0
	for _, s := range f.searches {
		if s.CreatedAt.Before(since) {
			continue
		}
		total++
		if s.ZeroResults {
			zero++
		}
	}
	return total, zero, nil
}

func (f *fakeStore) CountSearchesWithClicks(ctx context.Context, since time.Time) (int, int, error) {
	clicked := make(map[uuid.UUID]bool)
	for _, c := range f.clicks {
		clicked[c.SearchMetricID] = true
	}
	withClicks, total := 0, 0
	for _, s := range f.searches {
		if s.CreatedAt.Before(since) {
			continue
		}
		total++
		if clicked[s.ID] {
			withClicks++
		}
	}
	return withClicks, total, nil
}

func (f *fakeStore) AverageLatency(ctx context.Context, since time.Time, aiUsed *bool) (float64, error) {
	sum, n := int64(0), 0
	for _, s := range f.searches {
		if s.CreatedAt.Before(since) {
			continue
		}
		if aiUsed != nil && s.AIUsed != *aiUsed {
			continue
		}
		sum += s.LatencyMs
		n++
	}
	if n == 0 {
		return 0, nil
	}
	return float64(sum) / float64(n), nil
}

func TestTrackSearchDerivesZeroResults(t *testing.T) {
	store := &fakeStore{}
	e := NewEngine(store)

	if err := e.TrackSearch(context.Background(), "tomate", true, false, 3, 120*time.Millisecond, "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.TrackSearch(context.Background(), "xyzabc", false, true, 0, 80*time.Millisecond, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.searches) != 2 {
		t.Fatalf("expected 2 records, got %d", len(store.searches))
	}
	if store.searches[0].ZeroResults {
		t.Error("3 results must not be flagged as zero_results")
	}
	if !store.searches[1].ZeroResults {
		t.Error("0 results must be flagged as zero_results")
	}
	if store.searches[0].LatencyMs != 120 {
		t.Errorf("latency = %d, want 120", store.searches[0].LatencyMs)
	}
	if store.searches[0].ID == store.searches[1].ID {
		t.Error("metric ids must be unique")
	}
}

func TestTrackSearchStoreErrorWrapped(t *testing.T) {
	sentinel := errors.New("insert failed")
	e := NewEngine(&fakeStore{insertErr: sentinel})

	err := e.TrackSearch(context.Background(), "tomate", false, true, 0, time.Millisecond, "")
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestQualityScore(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{}
	e := NewEngine(store)
	e.now = func() time.Time { return now }

	// 3 buscas: uma com zero resultados; 2 com cliques
	ids := make([]uuid.UUID, 3)
	for i, results := range []int{5, 2, 0} {
		m := &models.SearchMetric{
			ID:           uuid.New(),
			Query:        "busca",
			ResultsCount: results,
			ZeroResults:  results == 0,
			LatencyMs:    100,
			CreatedAt:    now.Add(-time.Duration(i+1) * time.Minute),
		}
		store.searches = append(store.searches, m)
		ids[i] = m.ID
	}
	store.clicks = []*models.ClickMetric{
		{ID: uuid.New(), SearchMetricID: ids[0]},
		{ID: uuid.New(), SearchMetricID: ids[1]},
		{ID: uuid.New(), SearchMetricID: ids[1]}, // segundo clique na mesma busca
	}

	zeroRate, err := e.ZeroResultRate(context.Background(), time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := 100.0 / 3.0; !closeTo(zeroRate, want) {
		t.Errorf("zero-result rate = %v, want %v", zeroRate, want)
	}

	ctr, err := e.ClickThroughRate(context.Background(), time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// cliques duplicados na mesma busca contam uma vez
	if want := 200.0 / 3.0; !closeTo(ctr, want) {
		t.Errorf("CTR = %v, want %v", ctr, want)
	}

	score, err := e.QualityScore(context.Background(), time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// (100 - 33.33...)*0.5 + 66.66...*0.5 = 66.66..., arredondado a 66.67
	if score != 66.67 {
		t.Errorf("quality score = %v, want 66.67", score)
	}
}

func TestRatesOnEmptyWindow(t *testing.T) {
	e := NewEngine(&fakeStore{})

	zeroRate, err := e.ZeroResultRate(context.Background(), time.Hour)
	if err != nil || zeroRate != 0 {
		t.Errorf("empty window zero-result rate = %v, %v; want 0, nil", zeroRate, err)
	}
	ctr, err := e.ClickThroughRate(context.Background(), time.Hour)
	if err != nil || ctr != 0 {
		t.Errorf("empty window CTR = %v, %v; want 0, nil", ctr, err)
	}
	score, err := e.QualityScore(context.Background(), time.Hour)
	if err != nil || score != 50 {
		t.Errorf("empty window quality score = %v, %v; want 50, nil", score, err)
	}
}

func TestAverageLatencyFilter(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{}
	e := NewEngine(store)
	e.now = func() time.Time { return now }

	for _, tc := range []struct {
		ai      bool
		latency int64
	}{{true, 200}, {true, 400}, {false, 50}} {
		store.searches = append(store.searches, &models.SearchMetric{
			ID:        uuid.New(),
			AIUsed:    tc.ai,
			LatencyMs: tc.latency,
			CreatedAt: now.Add(-time.Minute),
		})
	}

	all, _ := e.AverageLatency(context.Background(), time.Hour, nil)
	if want := (200 + 400 + 50) / 3.0; !closeTo(all, want) {
		t.Errorf("overall avg = %v, want %v", all, want)
	}

	ai := true
	avgAI, _ := e.AverageLatency(context.Background(), time.Hour, &ai)
	if avgAI != 300 {
		t.Errorf("AI avg = %v, want 300", avgAI)
	}

	ai = false
	avgLadder, _ := e.AverageLatency(context.Background(), time.Hour, &ai)
	if avgLadder != 50 {
		t.Errorf("ladder avg = %v, want 50", avgLadder)
	}
}

func TestBuildDashboard(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{}
	e := NewEngine(store)
	e.now = func() time.Time { return now }

	recent := &models.SearchMetric{ID: uuid.New(), ResultsCount: 4, LatencyMs: 100, AIUsed: true, CreatedAt: now.Add(-time.Hour)}
	old := &models.SearchMetric{ID: uuid.New(), ZeroResults: true, LatencyMs: 900, CreatedAt: now.Add(-48 * time.Hour)}
	store.searches = append(store.searches, recent, old)
	store.clicks = append(store.clicks, &models.ClickMetric{ID: uuid.New(), SearchMetricID: recent.ID})

	d, err := e.BuildDashboard(context.Background(), 24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.WindowHours != 24 {
		t.Errorf("window = %d, want 24", d.WindowHours)
	}
	// o registro de 48h atrás fica fora da janela
	if d.TotalSearches != 1 {
		t.Errorf("total = %d, want 1", d.TotalSearches)
	}
	if d.ZeroResultRate != 0 {
		t.Errorf("zero-result rate = %v, want 0", d.ZeroResultRate)
	}
	if d.ClickThroughRate != 100 {
		t.Errorf("CTR = %v, want 100", d.ClickThroughRate)
	}
	if d.QualityScore != 100 {
		t.Errorf("quality score = %v, want 100", d.QualityScore)
	}
	if d.AvgLatencyMs != 100 {
		t.Errorf("avg latency = %v, want 100", d.AvgLatencyMs)
	}
}

func closeTo(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-9
}
