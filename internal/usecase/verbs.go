package usecase

import (
	"context"

	"github.com/fixora/projectledger/internal/domain"
	"github.com/fixora/projectledger/internal/ports"
)

// Create validates payload, then in one transaction checks the records it
// links to, allocates the sequence number (for sequenced types), inserts the
// entity, recomputes the parents' rollups and writes the CREATE audit record.
func Create[E domain.Record](ctx context.Context, c *Coordinator, kind Kind[E], payload domain.Payload[E], actor domain.Actor) (E, error) {
	var created E
	if err := payload.Validate(); err != nil {
		return created, err
	}

	err := c.run(ctx, "create", kind.Type, func(ctx context.Context, tx ports.Tx) error {
		now := c.now().UTC()
		entity := payload.Build()
		entity.Stamp(newID(), now)

		snapshot := entity.Snapshot()
		parents := collectParents(kind.Type, nil, snapshot)
		if err := c.lockParents(ctx, tx, parents); err != nil {
			return err
		}
		if err := c.lockReferences(ctx, tx, kind.Type, nil, snapshot, parents); err != nil {
			return err
		}

		if c.allocator.Sequenced(kind.Type) {
			seq, ok := any(entity).(domain.Sequenced)
			if !ok {
				return domain.NewValidationError("%s cannot carry a sequence number", kind.Type)
			}
			number, err := c.allocator.Allocate(ctx, tx, kind.Type, now)
			if err != nil {
				return err
			}
			seq.AssignNumber(number)
		}

		if err := kind.Repo.Insert(ctx, tx, entity); err != nil {
			return err
		}
		if err := c.recalculate(ctx, tx, parents, now); err != nil {
			return err
		}
		if err := c.audit.RecordCreate(ctx, tx, entity, actor); err != nil {
			return err
		}

		created = entity
		return nil
	})
	if err != nil {
		var zero E
		return zero, err
	}

	return created, nil
}

// Update applies a sparse patch. Fields absent from the patch keep their
// stored values; a patch that changes nothing writes nothing and records no
// audit entries.
func Update[E domain.Record](ctx context.Context, c *Coordinator, kind Kind[E], id string, patch domain.Patch[E], actor domain.Actor) (E, error) {
	var updated E
	if err := patch.Validate(); err != nil {
		return updated, err
	}

	err := c.run(ctx, "update", kind.Type, func(ctx context.Context, tx ports.Tx) error {
		entity, err := kind.Repo.FindForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		before := entity.Snapshot()
		patch.Apply(entity)
		after := entity.Snapshot()

		changed := before.Diff(after)
		if len(changed) == 0 {
			updated = entity
			return nil
		}

		parents := collectParents(kind.Type, before, after)
		if err := c.lockParents(ctx, tx, parents); err != nil {
			return err
		}
		if err := c.lockReferences(ctx, tx, kind.Type, before, after, parents); err != nil {
			return err
		}

		now := c.now().UTC()
		entity.Touch(now)
		if err := kind.Repo.Update(ctx, tx, entity); err != nil {
			return err
		}
		if err := c.recalculate(ctx, tx, parents, now); err != nil {
			return err
		}
		if err := c.audit.RecordUpdate(ctx, tx, entity, actor, before, after, changed); err != nil {
			return err
		}

		updated = entity
		return nil
	})
	if err != nil {
		var zero E
		return zero, err
	}

	return updated, nil
}

// Delete removes an entity unless other records still reference it. The
// reference check, the delete, the parents' recomputation and the DELETE
// audit record share one transaction.
func Delete[E domain.Record](ctx context.Context, c *Coordinator, kind Kind[E], id string, actor domain.Actor) error {
	return c.run(ctx, "delete", kind.Type, func(ctx context.Context, tx ports.Tx) error {
		entity, err := kind.Repo.FindForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		if c.guard != nil {
			count, err := c.guard.CountReferences(ctx, tx, kind.Type, id)
			if err != nil {
				return err
			}
			if count > 0 {
				return domain.NewReferentialBlock(kind.Type, id, count)
			}
		}

		parents := collectParents(kind.Type, entity.Snapshot(), nil)
		if err := c.lockParents(ctx, tx, parents); err != nil {
			return err
		}

		if err := kind.Repo.Delete(ctx, tx, id); err != nil {
			return err
		}
		if err := c.recalculate(ctx, tx, parents, c.now().UTC()); err != nil {
			return err
		}

		return c.audit.RecordDelete(ctx, tx, entity, actor)
	})
}

// Get loads one entity by id
func Get[E domain.Record](ctx context.Context, c *Coordinator, kind Kind[E], id string) (E, error) {
	var found E
	err := c.run(ctx, "get", kind.Type, func(ctx context.Context, tx ports.Tx) error {
		entity, err := kind.Repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		found = entity
		return nil
	})
	return found, err
}
