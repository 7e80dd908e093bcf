package suggestions

import (
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/matchminds/backend/internal/dataset"
	"github.com/matchminds/backend/internal/model"
	"github.com/matchminds/backend/internal/models"
)

const (
	// TraitThreshold is the score a trait must exceed to count as shared.
	TraitThreshold = 3
	// MaxSuggestions caps each friend's list.
	MaxSuggestions = 5
)

// ErrStaleSession means the session's cluster ids came from a model that
// has since been replaced.
var ErrStaleSession = errors.New("session was scored by a different model")

// Trait lists use the dataset's column spellings, canonicalized.
var (
	TraitsA = []string{"openness to experience", "honesty", "loyality", "respect", "family values"}
	TraitsB = []string{"open mindedness", "listen music", "reading books", "cooking and baking", "traveling"}
)

// Row is one person from the clustered dataset.
type Row struct {
	Name    string
	Gender  string
	Cluster int
	Traits  map[string]float64
}

// LoadRows reads the trainer's clustered CSV. Rows without a name are
// dropped; missing trait cells are left out of Traits.
func LoadRows(path string) ([]Row, error) {
	t, err := dataset.ReadCSV(path)
	if err != nil {
		return nil, err
	}
	ni := t.ColumnIndex("Full Name")
	ci := t.ColumnIndex("Cluster")
	if ni < 0 || ci < 0 {
		return nil, fmt.Errorf("%s: need Full Name and Cluster columns", path)
	}
	gi := t.ColumnIndex("Gender")

	traitCols := map[string]int{}
	for _, trait := range append(append([]string{}, TraitsA...), TraitsB...) {
		if i := t.ColumnIndex(trait); i >= 0 {
			traitCols[trait] = i
		}
	}

	rows := make([]Row, 0, len(t.Rows))
	for n, rec := range t.Rows {
		name := strings.TrimSpace(rec[ni])
		if name == "" {
			continue
		}
		cluster, err := strconv.ParseFloat(strings.TrimSpace(rec[ci]), 64)
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: bad cluster %q", path, n+2, rec[ci])
		}
		r := Row{Name: name, Cluster: int(cluster), Traits: make(map[string]float64, len(traitCols))}
		if gi >= 0 {
			r.Gender = strings.TrimSpace(rec[gi])
		}
		for trait, i := range traitCols {
			if v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64); err == nil {
				r.Traits[trait] = v
			}
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// Selector picks same-cluster suggestions from the clustered dataset.
type Selector struct {
	mu    sync.RWMutex
	rows  []Row
	model string

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewSelector serves rows clustered by the model with fingerprint
// modelFingerprint.
func NewSelector(rows []Row, modelFingerprint string, seed uint64) *Selector {
	return &Selector{
		rows:  rows,
		model: modelFingerprint,
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Reload replaces the rows with the clustered CSV next to a freshly loaded
// bundle.
func (s *Selector) Reload(b *model.Bundle) error {
	rows, err := LoadRows(filepath.Join(b.Dir, model.ClusteredFile))
	if err != nil {
		return err
	}
	fp := b.Model.Fingerprint()
	s.mu.Lock()
	s.rows = rows
	s.model = fp
	s.mu.Unlock()
	log.Printf("[suggestions] loaded %d rows for model %s", len(rows), fp)
	return nil
}

// ChooseTraits assigns one trait list to each friend. The choice depends
// only on the two names.
func ChooseTraits(name1, name2 string) (friend1, friend2 []string) {
	key := models.CanonicalName(name1) + models.CanonicalName(name2)
	if xxhash.Sum64String(key)%2 == 0 {
		return TraitsA, TraitsB
	}
	return TraitsB, TraitsA
}

// Suggest returns up to MaxSuggestions rows in cluster, excluding name,
// where at least one of traits exceeds TraitThreshold.
func (s *Selector) Suggest(name string, cluster int, traits []string) []models.Suggestion {
	self := models.CanonicalName(name)

	s.mu.RLock()
	var pool []models.Suggestion
	for _, r := range s.rows {
		if r.Cluster != cluster || models.CanonicalName(r.Name) == self {
			continue
		}
		shared := sharedTraits(r, traits)
		if len(shared) == 0 {
			continue
		}
		pool = append(pool, models.Suggestion{
			Name:         r.Name,
			Gender:       r.Gender,
			Cluster:      r.Cluster,
			SharedTraits: shared,
			Sentence:     TraitSentence(shared),
		})
	}
	s.mu.RUnlock()

	s.rngMu.Lock()
	s.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	s.rngMu.Unlock()

	if len(pool) > MaxSuggestions {
		pool = pool[:MaxSuggestions]
	}
	return pool
}

// ForSession builds both friends' lists for a finished check. Sessions
// scored by another model return ErrStaleSession.
func (s *Selector) ForSession(sess models.Session) (models.SuggestionsResponse, error) {
	s.mu.RLock()
	current := s.model
	s.mu.RUnlock()
	if sess.Model != current {
		return models.SuggestionsResponse{}, fmt.Errorf("%w: session %q, serving %q", ErrStaleSession, sess.Model, current)
	}

	t1, t2 := ChooseTraits(sess.Friend1Name, sess.Friend2Name)
	return models.SuggestionsResponse{
		Friend1: s.list(sess.Friend1Name, sess.Friend1Cluster, t1),
		Friend2: s.list(sess.Friend2Name, sess.Friend2Cluster, t2),
	}, nil
}

func (s *Selector) list(name string, cluster int, traits []string) models.SuggestionList {
	out := s.Suggest(name, cluster, traits)
	if out == nil {
		out = []models.Suggestion{}
	}
	return models.SuggestionList{For: name, Cluster: cluster, Traits: traits, Suggestions: out}
}

func sharedTraits(r Row, traits []string) []string {
	var out []string
	for _, t := range traits {
		if v, ok := r.Traits[t]; ok && v > TraitThreshold {
			out = append(out, t)
		}
	}
	return out
}

// TraitSentence renders traits as "You both have x, y, and z.".
func TraitSentence(traits []string) string {
	switch len(traits) {
	case 0:
		return ""
	case 1:
		return "You both have " + traits[0] + "."
	case 2:
		return "You both have " + traits[0] + " and " + traits[1] + "."
	default:
		last := len(traits) - 1
		return "You both have " + strings.Join(traits[:last], ", ") + ", and " + traits[last] + "."
	}
}
