// Clusterrec - Clustered Content-Based Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clusterrec

package recommend_test

import (
	"context"
	"math/rand"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/clusterrec/internal/recommend"
	"github.com/tomtom215/clusterrec/internal/recommend/algorithms"
)

type memoryProvider struct {
	items        []recommend.ContentItem
	interactions []recommend.Interaction
	users        []int64
}

func (p *memoryProvider) GetCatalog(context.Context) ([]recommend.ContentItem, error) {
	return p.items, nil
}

func (p *memoryProvider) GetInteractions(context.Context) ([]recommend.Interaction, error) {
	return p.interactions, nil
}

func (p *memoryProvider) GetUsers(context.Context) ([]int64, error) {
	return p.users, nil
}

// syntheticData builds a catalog with a few tight topics and users who
// rate items from one or more of them.
func syntheticData(seed int64) *memoryProvider {
	rng := rand.New(rand.NewSource(seed))
	const (
		topics        = 4
		itemsPerTopic = 15
		dim           = 6
		users         = 12
	)

	p := &memoryProvider{}
	centers := make([][]float64, topics)
	for t := range centers {
		centers[t] = make([]float64, dim)
		centers[t][t] = 1
	}
	id := int64(1000)
	for t := 0; t < topics; t++ {
		for i := 0; i < itemsPerTopic; i++ {
			v := make([]float64, dim)
			for d := range v {
				v[d] = centers[t][d] + rng.NormFloat64()*0.05
			}
			p.items = append(p.items, recommend.ContentItem{ContentID: id, Embedding: v})
			id++
		}
	}

	for u := int64(1); u <= users; u++ {
		p.users = append(p.users, u)
		liked := 1 + int(u)%3
		for t := 0; t < liked; t++ {
			topic := (int(u) + t) % topics
			for i := 0; i < 6; i++ {
				item := p.items[topic*itemsPerTopic+rng.Intn(itemsPerTopic)]
				p.interactions = append(p.interactions, recommend.Interaction{
					UserID: u, ContentID: item.ContentID, Rating: 3 + rng.Intn(3),
				})
			}
		}
		bad := p.items[rng.Intn(len(p.items))]
		p.interactions = append(p.interactions, recommend.Interaction{UserID: u, ContentID: bad.ContentID, Rating: 1})
	}
	// A user known to the users table with no interactions.
	p.users = append(p.users, 99)
	return p
}

func newEngine(t *testing.T, cfg *recommend.Config, provider recommend.DataProvider) *recommend.Engine {
	t.Helper()
	e, err := recommend.NewEngine(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	e.SetDataProvider(provider)
	e.SetClusterer(algorithms.NewHDBSCAN())
	e.SetNeighborIndex(algorithms.NewBruteForceIndex())
	return e
}

func smallConfig() *recommend.Config {
	cfg := recommend.DefaultConfig()
	cfg.TotalRecommendations = 10
	cfg.FallbackPoolSize = 30
	cfg.Clustering.MinClusterSize = 3
	cfg.Clustering.MinSamples = 2
	return cfg
}

func TestEngine_ExampleEndToEnd(t *testing.T) {
	t.Parallel()

	provider := &memoryProvider{
		items: []recommend.ContentItem{
			{ContentID: 101, Embedding: []float64{1, 0}},
			{ContentID: 102, Embedding: []float64{0, 1}},
			{ContentID: 103, Embedding: []float64{1, 1}},
			{ContentID: 104, Embedding: []float64{-1, 0}},
		},
		interactions: []recommend.Interaction{
			{UserID: 1, ContentID: 101, Rating: 5},
			{UserID: 1, ContentID: 102, Rating: 5},
			{UserID: 1, ContentID: 103, Rating: 1},
		},
	}

	table, err := newEngine(t, nil, provider).Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	want := []recommend.Recommendation{{UserID: 1, ContentID: 104, Rank: 1, ModuleSource: "content_based"}}
	if !reflect.DeepEqual(table.Rows, want) {
		t.Errorf("rows = %+v, want %+v", table.Rows, want)
	}
}

func TestEngine_NeutralRatingStaysRecommendable(t *testing.T) {
	t.Parallel()

	provider := &memoryProvider{
		items: []recommend.ContentItem{
			{ContentID: 101, Embedding: []float64{1, 0}},
			{ContentID: 102, Embedding: []float64{1, 0.1}},
			{ContentID: 103, Embedding: []float64{-1, 0}},
		},
		interactions: []recommend.Interaction{
			{UserID: 1, ContentID: 101, Rating: 5},
			{UserID: 1, ContentID: 102, Rating: 3},
		},
	}

	table, err := newEngine(t, nil, provider).Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	want := []recommend.Recommendation{
		{UserID: 1, ContentID: 102, Rank: 1, ModuleSource: "content_based"},
		{UserID: 1, ContentID: 103, Rank: 2, ModuleSource: "content_based"},
	}
	if !reflect.DeepEqual(table.Rows, want) {
		t.Errorf("rows = %+v, want %+v", table.Rows, want)
	}
}

func TestEngine_OutputInvariants(t *testing.T) {
	t.Parallel()

	provider := syntheticData(7)
	cfg := smallConfig()
	e := newEngine(t, cfg, provider)

	table, err := e.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	// Rating 3 is neutral and stays recommendable.
	seen := make(map[int64]map[int64]bool)
	for _, in := range provider.interactions {
		if in.Rating == 3 {
			continue
		}
		if seen[in.UserID] == nil {
			seen[in.UserID] = make(map[int64]bool)
		}
		seen[in.UserID][in.ContentID] = true
	}

	for user, rows := range table.ByUser() {
		if len(rows) == 0 || len(rows) > cfg.TotalRecommendations {
			t.Errorf("user %d has %d rows", user, len(rows))
		}
		for i, r := range rows {
			if r.Rank != i+1 {
				t.Errorf("user %d row %d has rank %d", user, i, r.Rank)
			}
			if seen[user][r.ContentID] {
				t.Errorf("user %d was recommended already seen item %d", user, r.ContentID)
			}
			if r.ModuleSource != recommend.ModuleSourceContentBased {
				t.Errorf("module source = %q", r.ModuleSource)
			}
		}
	}
	if _, ok := table.ByUser()[99]; ok {
		t.Error("user without interactions must not get rows")
	}

	st := e.Status()
	if st.State != recommend.StateDone || st.Users != 12 || st.SkippedUsers != 1 {
		t.Errorf("status = %+v", st)
	}
}

func TestEngine_BatchingAndWorkersDoNotChangeOutput(t *testing.T) {
	t.Parallel()

	provider := syntheticData(11)
	base := smallConfig()
	base.BatchSize = 100
	base.Workers = 1
	want, err := newEngine(t, base, provider).Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	for _, tc := range []struct {
		name      string
		batchSize int
		workers   int
	}{
		{"batch 1", 1, 1},
		{"batch 3 workers 4", 3, 4},
		{"batch 100 workers 4", 100, 4},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := smallConfig()
			cfg.BatchSize = tc.batchSize
			cfg.Workers = tc.workers
			got, err := newEngine(t, cfg, provider).Generate(context.Background())
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if !reflect.DeepEqual(got.Rows, want.Rows) {
				t.Errorf("rows differ from the sequential run")
			}
		})
	}
}

func TestEngine_Idempotent(t *testing.T) {
	t.Parallel()

	e := newEngine(t, smallConfig(), syntheticData(3))
	first, err := e.Generate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.Generate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first.Rows, second.Rows) {
		t.Error("identical inputs produced different rows")
	}
}
