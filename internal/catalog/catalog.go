package catalog

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/devops-autopost/internal/models"
)

// Catalog is an immutable list of topics to pick from
type Catalog struct {
	topics []models.Topic
}

// New creates a catalog. Topics with an empty title are rejected and
// duplicate titles keep their first occurrence.
func New(topics []models.Topic) (*Catalog, error) {
	seen := make(map[string]bool, len(topics))
	kept := make([]models.Topic, 0, len(topics))

	for i, t := range topics {
		if t.Key() == "" {
			return nil, fmt.Errorf("topic %d has no title", i)
		}
		if seen[t.Key()] {
			continue
		}
		seen[t.Key()] = true
		if t.Source == "" {
			t.Source = models.TopicSourceCatalog
		}
		kept = append(kept, t)
	}

	if len(kept) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}

	return &Catalog{topics: kept}, nil
}

// Default returns the built-in DevOps catalog
func Default() *Catalog {
	c, err := New(defaultTopics())
	if err != nil {
		panic(err)
	}
	return c
}

// catalogFile is the YAML layout accepted by LoadFile
type catalogFile struct {
	Topics []models.Topic `yaml:"topics"`
}

// LoadFile reads a YAML catalog of the form `topics: [{title, prompt, body, keywords}]`
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	return New(file.Topics)
}

// Len returns the number of topics
func (c *Catalog) Len() int {
	return len(c.topics)
}

// Topics returns a copy of the topic list
func (c *Catalog) Topics() []models.Topic {
	out := make([]models.Topic, len(c.topics))
	copy(out, c.topics)
	return out
}

// Extend returns a new catalog with extra topics appended
func (c *Catalog) Extend(extra []models.Topic) *Catalog {
	if len(extra) == 0 {
		return c
	}
	all := append(c.Topics(), extra...)
	ext, err := New(all)
	if err != nil {
		return c
	}
	return ext
}

// PickByDate cycles through the catalog by day of year
func (c *Catalog) PickByDate(now time.Time) models.Topic {
	return c.topics[now.YearDay()%len(c.topics)]
}

// PickRandom picks uniformly among topics whose key is not excluded. If
// every topic is excluded the whole catalog is eligible again.
func (c *Catalog) PickRandom(rng *rand.Rand, exclude map[string]bool) models.Topic {
	eligible := make([]int, 0, len(c.topics))
	for i := range c.topics {
		if !exclude[c.topics[i].Key()] {
			eligible = append(eligible, i)
		}
	}

	if len(eligible) == 0 {
		return c.topics[rng.Intn(len(c.topics))]
	}
	return c.topics[eligible[rng.Intn(len(eligible))]]
}
