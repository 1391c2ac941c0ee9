package dynamodb

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"clubhub-backend/infrastructure/persistence/abstractions"
	pkgerrors "clubhub-backend/pkg/errors"
	"clubhub-backend/pkg/observability"
)

// base carries what every repository needs: the table, a logger and metrics.
type base struct {
	name    string
	table   abstractions.Table
	logger  *zap.Logger
	metrics *observability.Collector
}

// track logs and measures one repository operation. Use with defer:
//
//	defer r.track("CreateClub", time.Now(), &err)
func (b base) track(operation string, started time.Time, errp *error, fields ...zap.Field) {
	var err error
	if errp != nil {
		err = *errp
	}
	b.metrics.RecordDBOperation(b.name, operation, started, err)

	fields = append(fields,
		zap.String("repository", b.name),
		zap.String("operation", operation),
		zap.Duration("duration", time.Since(started)),
	)
	switch {
	case err == nil:
		b.logger.Debug("Repository operation completed", fields...)
	case pkgerrors.IsInternal(err) || pkgerrors.GetAppError(err) == nil:
		b.logger.Error("Repository operation failed", append(fields, zap.Error(err))...)
	default:
		b.logger.Info("Repository operation rejected", append(fields, zap.Error(err))...)
	}
}

// storageError maps anything that is not already an AppError to INTERNAL
func storageError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if pkgerrors.GetAppError(err) != nil {
		return err
	}
	return pkgerrors.NewStorageError(operation, err)
}

func isConditionFailed(err error) bool {
	return errors.Is(err, abstractions.ErrConditionFailed)
}

// indexStartKey rebuilds an ExclusiveStartKey for an index item whose index
// keys duplicate its primary key.
func indexStartKey(key abstractions.Key, index abstractions.Index) abstractions.Item {
	item := key.Item()
	if index != abstractions.IndexTable {
		pk, sk := index.KeyAttributes()
		item[pk] = item[abstractions.AttrPK]
		item[sk] = item[abstractions.AttrSK]
	}
	return item
}

// collect reads pages until want items have matched or the partition is
// exhausted. want <= 0 reads everything. Filters apply after the page limit,
// so a single page may hold fewer matches than requested.
func (b base) collect(ctx context.Context, q abstractions.Query, want int) ([]abstractions.Item, error) {
	var out []abstractions.Item
	for {
		page, err := b.table.Query(ctx, q)
		if err != nil {
			return nil, err
		}
		out = append(out, page.Items...)
		if page.LastKey == nil || (want > 0 && len(out) >= want) {
			break
		}
		q.StartKey = page.LastKey
	}
	if want > 0 && len(out) > want {
		out = out[:want]
	}
	return out, nil
}
