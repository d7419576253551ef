// Package catalogstore persists the user-added expense types under the
// "expenseTypes" key. A stored document that is not a JSON array is treated
// as empty and removed. Entries that fail the entry schema are dropped one by
// one, as is the reserved sentinel, and the cleaned list is written back.
package catalogstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/melking/melking-bfa-go/internal/domain"
	"github.com/melking/melking-bfa-go/internal/taxonomy"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"
)

// Key is the storage key of the catalog document.
const Key = "expenseTypes"

// ErrCorrupt marks a stored document that is not a catalog at all.
var ErrCorrupt = errors.New("corrupt expense-type catalog")

const documentSchema = `{"type": "array"}`

const entrySchema = `{
	"type": "object",
	"required": ["value", "label"],
	"properties": {
		"value": {"type": "string", "minLength": 1},
		"label": {"type": "string"}
	}
}`

type schemas struct {
	document *jsonschema.Schema
	entry    *jsonschema.Schema
}

var compileSchemas = sync.OnceValues(func() (*schemas, error) {
	compiler := jsonschema.NewCompiler()
	for name, src := range map[string]string{
		"expense_types.json": documentSchema,
		"expense_type.json":  entrySchema,
	} {
		if err := compiler.AddResource(name, bytes.NewReader([]byte(src))); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", name, err)
		}
	}
	document, err := compiler.Compile("expense_types.json")
	if err != nil {
		return nil, fmt.Errorf("compile document schema: %w", err)
	}
	entry, err := compiler.Compile("expense_type.json")
	if err != nil {
		return nil, fmt.Errorf("compile entry schema: %w", err)
	}
	return &schemas{document: document, entry: entry}, nil
})

// Decode decodes a stored catalog document. Entries that fail the entry
// schema are skipped and counted in dropped. ErrCorrupt is returned only
// when data is not a JSON array.
func Decode(data []byte) (types []domain.ExpenseType, dropped int, err error) {
	s, err := compileSchemas()
	if err != nil {
		return nil, 0, err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := s.document.Validate(doc); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	for _, item := range doc.([]any) {
		if s.entry.Validate(item) != nil {
			dropped++
			continue
		}
		fields := item.(map[string]any)
		types = append(types, domain.ExpenseType{
			Value: fields["value"].(string),
			Label: fields["label"].(string),
		})
	}
	return types, dropped, nil
}

// backend is a single-key blob store.
type backend interface {
	// get returns nil, nil when nothing is stored.
	get(ctx context.Context) ([]byte, error)
	put(ctx context.Context, data []byte) error
	remove(ctx context.Context) error
}

func load(ctx context.Context, b backend, logger *zap.Logger) ([]domain.ExpenseType, error) {
	data, err := b.get(ctx)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	types, dropped, err := Decode(data)
	if err != nil {
		logger.Warn("catalog: discarding corrupt stored document", zap.Error(err))
		if rmErr := b.remove(ctx); rmErr != nil {
			return nil, fmt.Errorf("clearing corrupt catalog: %w", rmErr)
		}
		return nil, nil
	}

	purged, changed := taxonomy.Purge(types)
	if dropped > 0 {
		logger.Warn("catalog: dropped malformed entries from stored document", zap.Int("dropped", dropped))
	}
	if changed {
		logger.Info("catalog: purged reserved entry from stored document")
	}
	if dropped > 0 || changed {
		if err := write(ctx, b, purged); err != nil {
			return nil, err
		}
	}
	return purged, nil
}

func save(ctx context.Context, b backend, types []domain.ExpenseType) error {
	purged, _ := taxonomy.Purge(types)
	return write(ctx, b, purged)
}

func write(ctx context.Context, b backend, types []domain.ExpenseType) error {
	if types == nil {
		types = []domain.ExpenseType{}
	}
	data, err := json.Marshal(types)
	if err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	return b.put(ctx, data)
}
