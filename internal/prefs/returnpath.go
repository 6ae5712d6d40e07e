// Package prefs persists small user-scoped preferences as JSON files
// under the user config directory.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const returnPathFile = "returnpath.json"

// Route identifies a view plus its deep-link parameters. It is saved
// before a redirect-style sign-in so the originally requested view can
// be restored once the flow completes.
type Route struct {
	View   string            `json:"view"`
	Params map[string]string `json:"params,omitempty"`
}

func returnPathPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, "receipted")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, returnPathFile), nil
}

func SaveReturnPath(route Route) error {
	path, err := returnPathPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(route, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadReturnPath reads and clears the stored route. A missing file
// yields a nil route.
func LoadReturnPath() (*Route, error) {
	path, err := returnPathPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var route Route
	if err := json.Unmarshal(data, &route); err != nil {
		return nil, err
	}
	_ = os.Remove(path)
	return &route, nil
}
