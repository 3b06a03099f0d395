package mcp

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/ziadkadry99/pageutil/internal/catalog"
)

// Local resolves strings from an in-process table. It has no registry:
// pending operations live in the page's server, not in this process.
type Local struct {
	Table *catalog.Table
}

func (l Local) GetString(ctx context.Context, identifier, component string, a any) (string, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return "", errors.Wrap(err, "encoding substitution")
	}
	sub, err := catalog.DecodeSubstitution(raw)
	if err != nil {
		return "", err
	}
	return l.Table.GetString(identifier, component, sub), nil
}
