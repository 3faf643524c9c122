package config

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"

	"go.viam.com/testimage/logging"
)

// Read loads a JSON config file after substituting ${VAR} references from the environment. A
// reference to an unset variable is an error, so a missing output directory never silently turns
// into a path at the filesystem root.
func Read(filePath string, logger logging.Logger) (*Config, error) {
	const noUnset, noEmpty = true, false
	buf, err := envsubst.ReadFileRestricted(filePath, noUnset, noEmpty)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read config %q", filePath)
	}
	return FromReader(filePath, bytes.NewReader(buf), logger)
}

// FromReader decodes and validates a config. originalPath is recorded as the config's
// ConfigFilePath.
func FromReader(originalPath string, r io.Reader, logger logging.Logger) (*Config, error) {
	cfg := Config{ConfigFilePath: originalPath}
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode Config from json")
	}
	if err := cfg.Validate("config"); err != nil {
		return nil, err
	}

	logger.Debugw("read config",
		"path", originalPath,
		"jobs", len(cfg.Jobs()),
		"mime_type", cfg.MimeType,
		"quality", cfg.Quality)
	return &cfg, nil
}
