package agents

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/spectrumbridge/bridge/internal/models"
)

//go:embed situations.yaml
var situationsYAML []byte

var (
	situationsOnce sync.Once
	situations     []models.SocialSituation
)

// SituationCatalog returns the built-in social story situations. The catalog
// is embedded at build time, so a parse failure is a programming error and
// panics at first use.
func SituationCatalog() []models.SocialSituation {
	situationsOnce.Do(func() {
		var doc struct {
			Situations []models.SocialSituation `yaml:"situations"`
		}
		if err := yaml.Unmarshal(situationsYAML, &doc); err != nil {
			panic(fmt.Sprintf("invalid embedded situation catalog: %v", err))
		}
		situations = doc.Situations
	})

	out := make([]models.SocialSituation, len(situations))
	copy(out, situations)
	return out
}
