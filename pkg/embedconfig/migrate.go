package embedconfig

import (
	"encoding/json"
	"fmt"
)

const legacySchemaVersion = 1

// DetectVersion reads the schema tag of a stored record. Untagged records
// carrying the security or performance sections are extended ones.
func DetectVersion(raw []byte) (int, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return 0, fmt.Errorf("failed to decode config: %w", err)
	}

	if v, ok := probe["schemaVersion"]; ok {
		var version int
		if err := json.Unmarshal(v, &version); err == nil && version > 0 {
			return version, nil
		}
	}

	_, hasCSP := probe["csp"]
	_, hasPerf := probe["performance"]
	if hasCSP || hasPerf {
		return CurrentSchemaVersion, nil
	}

	return legacySchemaVersion, nil
}

// Migrate decodes a record of any known schema version into the current one.
// Fields absent from the record take their default values.
func Migrate(raw []byte) (IframeConfig, error) {
	return decode(raw)
}

// UnmarshalJSON routes request bodies and stored blobs through Migrate so
// partial and legacy records come out complete.
func (c *IframeConfig) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	cfg, err := decode(data)
	if err != nil {
		return err
	}

	*c = cfg
	return nil
}

func decode(raw []byte) (IframeConfig, error) {
	type plain IframeConfig

	version, err := DetectVersion(raw)
	if err != nil {
		return IframeConfig{}, err
	}
	if version > CurrentSchemaVersion {
		return IframeConfig{}, fmt.Errorf("unsupported config schema version %d", version)
	}

	cfg := Default()
	// a stored map replaces the default headers instead of merging into them
	cfg.SecurityHeaders = nil
	if err := json.Unmarshal(raw, (*plain)(&cfg)); err != nil {
		return IframeConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.SecurityHeaders == nil {
		cfg.SecurityHeaders = Default().SecurityHeaders
	}
	if cfg.Sandbox == nil {
		cfg.Sandbox = []string{}
	}
	cfg.SchemaVersion = CurrentSchemaVersion

	return cfg, nil
}
