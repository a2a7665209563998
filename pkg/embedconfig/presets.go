package embedconfig

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

var ErrUnknownPreset = errors.New("unknown preset")

//go:embed presets.yaml
var presetsYAML []byte

var (
	presetsOnce sync.Once
	presets     map[string]yaml.Node
	presetsErr  error
)

func loadPresets() (map[string]yaml.Node, error) {
	presetsOnce.Do(func() {
		presetsErr = yaml.Unmarshal(presetsYAML, &presets)
		if presetsErr != nil {
			presetsErr = fmt.Errorf("failed to parse embedded presets: %w", presetsErr)
		}
	})

	return presets, presetsErr
}

// PresetNames lists the embedded presets in sorted order.
func PresetNames() []string {
	p, err := loadPresets()
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

// ApplyPreset overlays the named preset onto cfg. Fields the preset does not
// mention keep their current values.
func ApplyPreset(cfg IframeConfig, name string) (IframeConfig, error) {
	p, err := loadPresets()
	if err != nil {
		return cfg, err
	}

	node, ok := p[name]
	if !ok {
		return cfg, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}

	out := cfg.Clone()
	if err := node.Decode(&out); err != nil {
		return cfg, fmt.Errorf("failed to apply preset %s: %w", name, err)
	}

	return out, nil
}
