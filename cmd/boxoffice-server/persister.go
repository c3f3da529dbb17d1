// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/boxoffice/lib/collection"
	"github.com/bureau-foundation/boxoffice/lib/snapshot"
)

// filePersister saves the store's current contents to the collection
// file. It backs the save and shutdown commands and the final save on
// exit.
type filePersister struct {
	file   *snapshot.File
	store  *collection.Store
	logger *slog.Logger
}

func (p *filePersister) Persist(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	result, err := p.file.Save(p.store.Snapshot())
	if err != nil {
		p.logger.Error("saving collection failed", "path", p.file.Path(), "error", err)
		return "", fmt.Errorf("saving %s: %w", p.file.Path(), err)
	}
	if result.Unchanged {
		p.logger.Debug("collection unchanged", "path", p.file.Path(), "digest", result.Digest.Short())
		return fmt.Sprintf("collection unchanged, %d ticket(s) already in %s", result.Count, p.file.Path()), nil
	}
	p.logger.Info("collection saved",
		"path", p.file.Path(),
		"tickets", result.Count,
		"digest", result.Digest.Short(),
	)
	return fmt.Sprintf("saved %d ticket(s) to %s (%s)", result.Count, p.file.Path(), result.Digest.Short()), nil
}
