//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package common holds the pieces shared by the mcb subcommands: engine
// construction from configuration and flag-driven loading of policies,
// entities and schemas.
package common

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/manetu/cedarbridge/pkg/bridge"
	"github.com/manetu/cedarbridge/pkg/bridge/config"
	"github.com/manetu/cedarbridge/pkg/types"
)

// NewCliEngine loads configuration and constructs the engine backed by the
// native library.
func NewCliEngine(*cli.Command) (bridge.Engine, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}
	return bridge.New()
}

// ReadInput reads a file path, or stdin when path is "-".
func ReadInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path) // #nosec G304 -- CLI tool intentionally reads user-provided paths
}

// LoadPolicySet reads each --policy file into the policy set, one policy
// per file, using the file's base name (without extension) as the policy
// id.
func LoadPolicySet(cmd *cli.Command) (*bridge.PolicySet, error) {
	paths := cmd.StringSlice("policy")
	if len(paths) == 0 {
		return nil, errors.New("at least one policy file must be specified")
	}

	ps := &bridge.PolicySet{}
	for _, path := range paths {
		src, err := ReadInput(path)
		if err != nil {
			return nil, errors.Wrapf(err, "reading policy %s", path)
		}
		id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		p, err := bridge.NewPolicyWithID(string(src), id)
		if err != nil {
			return nil, errors.Wrapf(err, "policy %s", path)
		}
		if err := ps.Add(p); err != nil {
			return nil, err
		}
	}
	return ps, nil
}

// LoadEntities reads the optional --entities file (a JSON array of entity
// documents). Absent flag yields an empty collection.
func LoadEntities(cmd *cli.Command) (*types.Entities, error) {
	entities, err := types.NewEntities()
	if err != nil {
		return nil, err
	}
	path := cmd.String("entities")
	if path == "" {
		return entities, nil
	}
	data, err := ReadInput(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading entities %s", path)
	}
	if err := json.Unmarshal(data, entities); err != nil {
		return nil, errors.Wrapf(err, "entities %s", path)
	}
	return entities, nil
}

// LoadSchema reads the optional --schema file. JSON documents become
// JSON-form schemas, anything else is treated as the human-readable form.
func LoadSchema(cmd *cli.Command) (*bridge.Schema, error) {
	path := cmd.String("schema")
	if path == "" {
		return nil, nil
	}
	data, err := ReadInput(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading schema %s", path)
	}
	if json.Valid(data) {
		return bridge.NewJSONSchema(string(data))
	}
	return bridge.NewCedarSchema(string(data))
}

// ParseContext decodes an inline JSON context expression into a Record.
// Empty input yields an empty record.
func ParseContext(expr string) (types.Record, error) {
	if strings.TrimSpace(expr) == "" {
		return types.Record{}, nil
	}
	v, err := types.DecodeValue([]byte(expr))
	if err != nil {
		return types.Record{}, err
	}
	record, ok := v.(types.Record)
	if !ok {
		return types.Record{}, errors.New("context must be a JSON object")
	}
	return record, nil
}
