// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"lightwork/internal/models"
)

// BatchValue is written into every field by the batch update.
const BatchValue = "Updated via cron"

// TypeLister lists the content type definitions.
type TypeLister interface {
	List() ([]models.ContentType, error)
}

// FieldOverwriter bulk-writes one value into fields of a type's records.
type FieldOverwriter interface {
	OverwriteFields(typ string, names []string, value string) (int64, error)
}

// Batch overwrites every defined field of every record with BatchValue.
type Batch struct {
	Types   TypeLister
	Records FieldOverwriter
	// After runs once the fields were written, e.g. to purge cached pages.
	After func(ctx context.Context)
}

// Run performs one batch update. A failing type aborts the run; types
// already processed keep their new values.
func (b *Batch) Run(ctx context.Context) error {
	types, err := b.Types.List()
	if err != nil {
		return fmt.Errorf("list content types: %w", err)
	}

	var total int64
	for _, ct := range types {
		if err := ctx.Err(); err != nil {
			return err
		}
		names := ct.FieldNames()
		if len(names) == 0 {
			continue
		}
		n, err := b.Records.OverwriteFields(ct.Slug, names, BatchValue)
		if err != nil {
			return fmt.Errorf("overwrite fields of %s: %w", ct.Slug, err)
		}
		slog.Debug("batch update type", "type", ct.Slug, "values", n)
		total += n
	}

	if total > 0 && b.After != nil {
		b.After(ctx)
	}
	slog.Info("batch update wrote fields", "types", len(types), "values", total)
	return nil
}
