// Package catalog provides the static registry of geographic layers the
// intersector queries. Layers are loaded once from a YAML file, validated,
// and read-only afterwards; unknown lookups fail loudly because they are
// configuration bugs, not request conditions.
package catalog

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Ignacio1972/mineria-sub004/internal/seia/models"
	id "github.com/Ignacio1972/mineria-sub004/pkg/domain"
	dErrors "github.com/Ignacio1972/mineria-sub004/pkg/domain-errors"
)

// Catalog is the immutable, ordered set of layers.
type Catalog struct {
	layers []models.GeoLayer
	byID   map[id.LayerID]int
}

type fileEntry struct {
	ID             string   `yaml:"id"`
	DisplayName    string   `yaml:"display_name"`
	BufferMeters   float64  `yaml:"buffer_meters"`
	TriggerLetters []string `yaml:"trigger_letters"`
	DatasetRef     string   `yaml:"dataset_ref"`
	AlertOnOverlap bool     `yaml:"alert_on_overlap"`
}

type file struct {
	Layers []fileEntry `yaml:"layers"`
}

// Load reads a catalog file and validates it.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeConfiguration, "reading catalog file")
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeConfiguration, "parsing catalog file")
	}

	layers := make([]models.GeoLayer, 0, len(f.Layers))
	for i, entry := range f.Layers {
		letters := make([]models.Letter, 0, len(entry.TriggerLetters))
		for _, raw := range entry.TriggerLetters {
			letter, err := models.ParseLetter(raw)
			if err != nil {
				return nil, dErrors.Newf(dErrors.CodeConfiguration,
					"layer %d (%s): unknown trigger letter %q", i, entry.ID, raw)
			}
			letters = append(letters, letter)
		}
		layers = append(layers, models.GeoLayer{
			ID:             id.LayerID(entry.ID),
			DisplayName:    entry.DisplayName,
			BufferMeters:   entry.BufferMeters,
			TriggerLetters: letters,
			DatasetRef:     entry.DatasetRef,
			AlertOnOverlap: entry.AlertOnOverlap,
		})
	}
	return New(layers)
}

// New builds and validates a catalog from already-constructed layers.
func New(layers []models.GeoLayer) (*Catalog, error) {
	if len(layers) == 0 {
		return nil, dErrors.New(dErrors.CodeConfiguration, "catalog has no layers")
	}
	byID := make(map[id.LayerID]int, len(layers))
	for i, layer := range layers {
		if layer.ID == "" {
			return nil, dErrors.Newf(dErrors.CodeConfiguration, "layer %d: id is required", i)
		}
		if _, dup := byID[layer.ID]; dup {
			return nil, dErrors.Newf(dErrors.CodeConfiguration, "duplicate layer id %q", layer.ID)
		}
		if layer.BufferMeters < 0 {
			return nil, dErrors.Newf(dErrors.CodeConfiguration, "layer %q: buffer must be non-negative", layer.ID)
		}
		if layer.DatasetRef == "" {
			return nil, dErrors.Newf(dErrors.CodeConfiguration, "layer %q: dataset_ref is required", layer.ID)
		}
		if layer.DisplayName == "" {
			return nil, dErrors.Newf(dErrors.CodeConfiguration, "layer %q: display_name is required", layer.ID)
		}
		byID[layer.ID] = i
	}
	return &Catalog{layers: layers, byID: byID}, nil
}

// List returns the layers in file order. The returned slice is a copy;
// callers cannot mutate the catalog.
func (c *Catalog) List() []models.GeoLayer {
	out := make([]models.GeoLayer, len(c.layers))
	copy(out, c.layers)
	return out
}

// Get returns the layer with the given id.
func (c *Catalog) Get(layerID id.LayerID) (models.GeoLayer, error) {
	i, ok := c.byID[layerID]
	if !ok {
		return models.GeoLayer{}, dErrors.Newf(dErrors.CodeNotFound, "layer %q not in catalog", layerID)
	}
	return c.layers[i], nil
}

// Len returns the number of layers.
func (c *Catalog) Len() int { return len(c.layers) }
