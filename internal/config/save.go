package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Save overlays cfg onto the on-disk document and writes it back.
// Keys absent from cfg (including ones this tool never heard of) are
// preserved; only the values cfg actually carries are replaced.
func Save(cfg *Config) error {
	return overlay(cfg)
}

// SaveAccount overlays a single credential record, leaving the rest of
// the document alone. Called after every successful login.
func SaveAccount(acct Account) error {
	return overlay(&Config{
		Accounts: map[string]Account{acct.Username: acct},
	})
}

func overlay(update any) error {
	if err := EnsureDir(); err != nil {
		return err
	}
	path, err := Path()
	if err != nil {
		return err
	}

	updateDoc, err := toMap(update)
	if err != nil {
		return err
	}

	doc := map[string]any{}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	merged := merge(doc, updateDoc)

	out, err := yaml.Marshal(merged)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0600)
}

// toMap round-trips a value through YAML into a generic document so it
// can be merged key by key.
func toMap(v any) (map[string]any, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, err
	}
	m := map[string]any{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// merge recursively overlays src onto dst: maps merge per key,
// everything else is replaced by the src value.
func merge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = map[string]any{}
	}
	for k, sv := range src {
		if sm, ok := sv.(map[string]any); ok {
			if dm, ok := dst[k].(map[string]any); ok {
				dst[k] = merge(dm, sm)
				continue
			}
		}
		dst[k] = sv
	}
	return dst
}
