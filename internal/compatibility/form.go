package compatibility

import (
	"strings"

	"github.com/matchminds/backend/internal/models"
)

// Progress walks the linear form gating for both people: a name unlocks
// the age field, an age above zero unlocks the questions, and friend 2 opens
// only once friend 1 has answered every expected feature.
func Progress(req models.CompatibilityRequest, schema []string) models.FormProgress {
	p1 := personProgress(req.Friend1, schema)
	p2 := personProgress(req.Friend2, schema)
	if p1.Stage != models.StageComplete {
		p2 = models.PersonProgress{Stage: models.StageLocked, Expected: p2.Expected}
	}
	return models.FormProgress{
		Friend1: p1,
		Friend2: p2,
		Ready:   p1.Stage == models.StageComplete && p2.Stage == models.StageComplete,
	}
}

func personProgress(f models.PersonForm, schema []string) models.PersonProgress {
	p := models.PersonProgress{Expected: len(schema)}
	if strings.TrimSpace(f.Name) == "" {
		p.Stage = models.StageNeedName
		return p
	}
	if f.Age <= 0 {
		p.Stage = models.StageNeedAge
		return p
	}

	answered := answeredFeatures(f)
	for _, feature := range schema {
		if feature == "age" || answered[feature] {
			p.Answered++
			continue
		}
		p.Missing = append(p.Missing, feature)
	}
	if len(p.Missing) > 0 {
		p.Stage = models.StageNeedAnswers
		return p
	}
	p.Stage = models.StageComplete
	return p
}

func answeredFeatures(f models.PersonForm) map[string]bool {
	out := make(map[string]bool, len(f.Answers))
	for key, a := range f.Answers {
		if a.Option == nil && a.Value == nil {
			continue
		}
		out[models.CanonicalFeature(key)] = true
	}
	return out
}
