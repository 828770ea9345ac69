package config

import (
	"bytes"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	mgerrors "github.com/matzehuels/moviegraph/pkg/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MOVIEGRAPH_"

// configTag is the struct tag shared by the file format and koanf.
const configTag = "toml"

// load layers defaults, the optional file at path and the environment,
// then decodes the result. Keys that match no field are an error.
func load(path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), configTag), nil); err != nil {
		return Config{}, mgerrors.Wrap(mgerrors.ErrCodeInvalidConfig, err, "load defaults")
	}
	envKeys := envKeyMap(k.Keys())

	if path != "" {
		if err := k.Load(file.Provider(path), tomlParser{}); err != nil {
			return Config{}, mgerrors.Wrap(mgerrors.ErrCodeInvalidConfig, err, "read %s", path)
		}
	}

	// MOVIEGRAPH_SERVER_ADDR -> server.addr. Unknown and empty variables are skipped.
	overlay := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		return envKeys[key], value
	})
	if err := k.Load(overlay, nil); err != nil {
		return Config{}, mgerrors.Wrap(mgerrors.ErrCodeInvalidConfig, err, "read environment")
	}

	var cfg Config
	err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: configTag,
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
			WeaklyTypedInput: true,
			ErrorUnused:      true,
			Result:           &cfg,
		},
	})
	if err != nil {
		if path != "" {
			return Config{}, mgerrors.Wrap(mgerrors.ErrCodeInvalidConfig, err, "decode %s", path)
		}
		return Config{}, mgerrors.Wrap(mgerrors.ErrCodeInvalidConfig, err, "decode environment")
	}
	return cfg, nil
}

// envKeyMap maps every config path to its variable name, e.g.
// layout.link_distance to MOVIEGRAPH_LAYOUT_LINK_DISTANCE.
func envKeyMap(keys []string) map[string]string {
	m := make(map[string]string, len(keys))
	for _, key := range keys {
		m[EnvVar(key)] = key
	}
	return m
}

// EnvVar returns the environment variable overriding a config path.
func EnvVar(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// tomlParser lets koanf read TOML files.
type tomlParser struct{}

func (tomlParser) Unmarshal(b []byte) (map[string]interface{}, error) {
	var out map[string]interface{}
	if err := toml.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (tomlParser) Marshal(m map[string]interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
