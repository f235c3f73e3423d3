package recipe

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Compile-time interface checks.
var (
	_ Repository = (*MemoryRepository)(nil)
	_ Repository = (*PostgresRepository)(nil)
)

// MemoryRepository keeps recipes in process memory
type MemoryRepository struct {
	mu      sync.RWMutex
	recipes map[string]Recipe
}

// NewMemoryRepository creates an empty repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{recipes: make(map[string]Recipe)}
}

func (m *MemoryRepository) Get(ctx context.Context, id string) (*Recipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.recipes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &r, nil
}

// List returns every recipe ordered by name
func (m *MemoryRepository) List(ctx context.Context) ([]Recipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Recipe, 0, len(m.recipes))
	for _, r := range m.recipes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryRepository) Save(ctx context.Context, recipe *Recipe) error {
	if err := recipe.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.recipes[recipe.ID] = *recipe
	return nil
}

func (m *MemoryRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.recipes[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.recipes, id)
	return nil
}

// seedFile is the layout of a YAML recipe file
type seedFile struct {
	Recipes []Recipe `yaml:"recipes"`
}

// LoadYAML decodes recipes from r
func LoadYAML(r io.Reader) ([]Recipe, error) {
	var seed seedFile
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil {
		return nil, fmt.Errorf("failed to decode recipes: %w", err)
	}
	for i := range seed.Recipes {
		if err := seed.Recipes[i].Validate(); err != nil {
			return nil, fmt.Errorf("recipe %d: %w", i, err)
		}
	}
	return seed.Recipes, nil
}

// Seed saves every recipe in a YAML file into repo
func Seed(ctx context.Context, repo Repository, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open recipe file: %w", err)
	}
	defer f.Close()

	recipes, err := LoadYAML(f)
	if err != nil {
		return 0, err
	}
	for i := range recipes {
		if err := repo.Save(ctx, &recipes[i]); err != nil {
			return i, fmt.Errorf("failed to save recipe %s: %w", recipes[i].ID, err)
		}
	}
	return len(recipes), nil
}
