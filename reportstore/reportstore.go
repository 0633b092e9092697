// Package reportstore persists batch results as JSON documents to local
// disk or cloud object storage.
package reportstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hsharma0052/etlverify/batch"
	"github.com/hsharma0052/etlverify/tablecompare"
)

// Store writes one named document and returns where it landed.
type Store interface {
	Create(ctx context.Context, r io.Reader, name string) (string, error)
}

// entryDocument is the serializable view of a batch entry. Errors flatten
// to their message.
type entryDocument struct {
	TableName string               `json:"table_name"`
	Result    *tablecompare.Result `json:"result,omitempty"`
	Error     string               `json:"error,omitempty"`
	Progress  float64              `json:"progress"`
}

type batchDocument struct {
	Environment string          `json:"environment"`
	GeneratedAt time.Time       `json:"generated_at"`
	State       string          `json:"state"`
	Tables      []string        `json:"tables"`
	Entries     []entryDocument `json:"entries"`
}

// WriteBatch serializes the batch result and stores it under
// <env>/<label>_<timestamp>.json. It returns the stored document's location.
func WriteBatch(
	ctx context.Context, store Store, env string, label string, res *batch.Result,
) (string, error) {
	doc := batchDocument{
		Environment: env,
		GeneratedAt: time.Now().UTC(),
		State:       res.State.String(),
		Tables:      res.Tables,
		Entries:     make([]entryDocument, 0, len(res.Entries)),
	}
	for _, e := range res.Entries {
		ed := entryDocument{
			TableName: e.TableName,
			Result:    e.Result,
			Progress:  e.Progress,
		}
		if e.Err != nil {
			ed.Error = e.Err.Error()
		}
		doc.Entries = append(doc.Entries, ed)
	}
	buf, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "error serializing batch result")
	}
	name := fmt.Sprintf("%s/%s_%s.json", env, label, doc.GeneratedAt.Format("20060102T150405Z"))
	return store.Create(ctx, bytes.NewReader(buf), name)
}
