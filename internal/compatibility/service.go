package compatibility

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/matchminds/backend/internal/insight"
	"github.com/matchminds/backend/internal/metrics"
	"github.com/matchminds/backend/internal/model"
	"github.com/matchminds/backend/internal/models"
	"github.com/matchminds/backend/internal/questionnaire"
	"github.com/matchminds/backend/internal/scoring"
	"github.com/matchminds/backend/internal/session"
)

// sharedTraitThreshold marks a trait score as a strong one; it matches the
// suggestion filter.
const sharedTraitThreshold = 3

var (
	ErrIncomplete    = errors.New("form incomplete")
	ErrInvalidAnswer = errors.New("invalid answer")
)

// IncompleteError carries the gating state of a submission that cannot be
// scored yet.
type IncompleteError struct {
	Progress models.FormProgress
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("%s: friend1 %s, friend2 %s", ErrIncomplete, e.Progress.Friend1.Stage, e.Progress.Friend2.Stage)
}

func (e *IncompleteError) Unwrap() error {
	return ErrIncomplete
}

// Recorder persists finished checks. *Store implements it.
type Recorder interface {
	Record(ctx context.Context, c models.CompatibilityCheck, p1, p2 models.Person, inertia float64) error
}

type assessment struct {
	scaled  []float64
	cluster int
}

// generation pairs a bundle with the cache of assessments computed from it,
// so a check that started before a reload can never fill the new cache.
type generation struct {
	bundle      *model.Bundle
	cache       *lru.Cache[uint64, assessment]
	fingerprint string
}

type Service struct {
	current   atomic.Pointer[generation]
	cacheSize int
	bank      *questionnaire.Bank
	recorder  Recorder
	sessions  *session.Issuer
	tips      *insight.Generator

	mu        sync.Mutex
	listeners []func(*model.Bundle) error
}

func NewService(bundle *model.Bundle, bank *questionnaire.Bank, cacheSize int, recorder Recorder, sessions *session.Issuer, tips *insight.Generator) (*Service, error) {
	if cacheSize <= 0 {
		cacheSize = 1
	}
	s := &Service{
		cacheSize: cacheSize,
		bank:      bank,
		recorder:  recorder,
		sessions:  sessions,
		tips:      tips,
	}
	g, err := s.newGeneration(bundle)
	if err != nil {
		return nil, err
	}
	s.current.Store(g)
	return s, nil
}

func (s *Service) newGeneration(b *model.Bundle) (*generation, error) {
	cache, err := lru.New[uint64, assessment](s.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("vector cache: %w", err)
	}
	return &generation{bundle: b, cache: cache, fingerprint: b.Model.Fingerprint()}, nil
}

// Bundle returns the artifacts currently in use.
func (s *Service) Bundle() *model.Bundle {
	return s.current.Load().bundle
}

// OnReload registers a callback that receives every newly loaded bundle
// before it goes live. A failing callback aborts the reload.
func (s *Service) OnReload(fn func(*model.Bundle) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Reload reads the artifacts from the current bundle's directory again and
// swaps them in together with an empty cache.
func (s *Service) Reload() (*model.Bundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := model.LoadBundle(s.Bundle().Dir)
	if err != nil {
		metrics.ArtifactReloads.WithLabelValues("error").Inc()
		return nil, err
	}
	g, err := s.newGeneration(next)
	if err != nil {
		metrics.ArtifactReloads.WithLabelValues("error").Inc()
		return nil, err
	}
	for _, fn := range s.listeners {
		if err := fn(next); err != nil {
			metrics.ArtifactReloads.WithLabelValues("error").Inc()
			return nil, err
		}
	}
	s.current.Store(g)
	metrics.ArtifactReloads.WithLabelValues("ok").Inc()
	log.Printf("[compat] reloaded artifacts: %d features, %d clusters, model %s", len(next.Schema), next.Model.K(), g.fingerprint)
	return next, nil
}

func (s *Service) Questionnaire() []models.Question {
	return s.bank.Questions(s.Bundle().Schema)
}

func (s *Service) Progress(req models.CompatibilityRequest) models.FormProgress {
	return Progress(req, s.Bundle().Schema)
}

// Resolve turns a completed form into a person record keyed by canonical
// feature name. Answers for features outside schema are ignored.
func (s *Service) Resolve(f models.PersonForm, schema []string) (models.Person, error) {
	known := make(map[string]bool, len(schema))
	for _, feature := range schema {
		known[feature] = true
	}
	p := models.Person{
		Name:   strings.TrimSpace(f.Name),
		Scores: map[string]float64{"age": float64(f.Age)},
	}
	for key, a := range f.Answers {
		feature := models.CanonicalFeature(key)
		if feature == "age" || !known[feature] {
			continue
		}
		v, err := s.bank.Resolve(feature, a)
		if err != nil {
			return p, fmt.Errorf("%s: %w: %v", p.Name, ErrInvalidAnswer, err)
		}
		p.Scores[feature] = v
	}
	return p, nil
}

// Check scores a submission. Incomplete forms return an *IncompleteError and
// nothing is computed.
func (s *Service) Check(ctx context.Context, req models.CompatibilityRequest) (*models.CompatibilityResponse, error) {
	g := s.current.Load()
	b := g.bundle

	progress := Progress(req, b.Schema)
	if !progress.Ready {
		metrics.IncompleteTotal.Inc()
		return nil, &IncompleteError{Progress: progress}
	}

	p1, err := s.Resolve(req.Friend1, b.Schema)
	if err != nil {
		return nil, err
	}
	p2, err := s.Resolve(req.Friend2, b.Schema)
	if err != nil {
		return nil, err
	}

	a1, err := s.assess(g, p1)
	if err != nil {
		return nil, err
	}
	a2, err := s.assess(g, p2)
	if err != nil {
		return nil, err
	}

	r, err := scoring.Compatibility(a1.scaled, a2.scaled, a1.cluster, a2.cluster, b.Model)
	if err != nil {
		return nil, err
	}
	category := scoring.Categorize(r.Percentage)

	check := models.CompatibilityCheck{
		ID:                   uuid.NewString(),
		Friend1Name:          p1.Name,
		Friend2Name:          p2.Name,
		Friend1Cluster:       a1.cluster,
		Friend2Cluster:       a2.cluster,
		IndividualSimilarity: r.Individual,
		CentroidSimilarity:   r.Centroid,
		Percentage:           r.Percentage,
		Category:             category.Name,
		CreatedAt:            time.Now(),
	}
	if s.recorder != nil {
		if err := s.recorder.Record(ctx, check, p1, p2, b.Model.Inertia); err != nil {
			log.Printf("[compat] failed to record check %s: %v", check.ID, err)
		}
	}

	token, err := s.sessions.Issue(models.Session{
		CheckID:        check.ID,
		Friend1Name:    p1.Name,
		Friend2Name:    p2.Name,
		Friend1Cluster: a1.cluster,
		Friend2Cluster: a2.cluster,
		Percentage:     r.Percentage,
		Category:       category.Name,
		Model:          g.fingerprint,
	})
	if err != nil {
		return nil, err
	}

	tip := s.tips.Tip(ctx, insight.TipRequest{
		Friend1:    p1.Name,
		Friend2:    p2.Name,
		Percentage: r.Percentage,
		Category:   category.Name,
		SharedHigh: sharedHigh(p1, p2, b.Schema),
	})

	metrics.ChecksTotal.WithLabelValues(category.Name).Inc()
	metrics.CompatibilityPercentage.Observe(r.Percentage)

	return &models.CompatibilityResponse{
		ID: check.ID,
		Friend1: models.PersonResult{
			Name:              p1.Name,
			Cluster:           a1.cluster,
			DefaultedFeatures: scoring.MissingFeatures(p1.Scores, b.Schema),
		},
		Friend2: models.PersonResult{
			Name:              p2.Name,
			Cluster:           a2.cluster,
			DefaultedFeatures: scoring.MissingFeatures(p2.Scores, b.Schema),
		},
		IndividualSimilarity: r.Individual,
		CentroidSimilarity:   r.Centroid,
		Percentage:           r.Percentage,
		Category:             category,
		Tip:                  tip,
		SessionToken:         token,
	}, nil
}

// assess scales and clusters one person with g's bundle, memoized on the
// raw vector in g's cache.
func (s *Service) assess(g *generation, p models.Person) (assessment, error) {
	b := g.bundle
	vec := scoring.BuildVector(p.Scores, b.Schema)
	key := vectorKey(vec)
	if a, ok := g.cache.Get(key); ok {
		metrics.VectorCacheHits.Inc()
		return a, nil
	}
	metrics.VectorCacheMisses.Inc()

	scaled, cluster, err := scoring.ScaleAndCluster(vec, b.Scaler, b.Model)
	if err != nil {
		return assessment{}, fmt.Errorf("%s: %w", p.Name, err)
	}
	a := assessment{scaled: scaled, cluster: cluster}
	g.cache.Add(key, a)
	return a, nil
}

func vectorKey(v []float64) uint64 {
	d := xxhash.New()
	var buf [8]byte
	for _, x := range v {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(x))
		d.Write(buf[:])
	}
	return d.Sum64()
}

func sharedHigh(p1, p2 models.Person, schema []string) []string {
	var out []string
	for _, feature := range schema {
		if feature == "age" {
			continue
		}
		if p1.Scores[feature] > sharedTraitThreshold && p2.Scores[feature] > sharedTraitThreshold {
			out = append(out, feature)
		}
	}
	return out
}
