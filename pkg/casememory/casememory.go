// Package casememory implements the Case Memory Binder: a bounded read of
// the most recent prior turns for an incident or user, returned
// oldest-first, and a
// transactional two-message (question + answer) write after each pipeline
// run. Grounded on the teacher's pkg/database/client.go Ent wrapping
// pattern and ent/schema/message.go, adapted to this domain's simpler
// three-role schema (ent/schema/casemessage.go).
package casememory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/codeready-toolchain/nitilex/ent"
	"github.com/codeready-toolchain/nitilex/ent/casemessage"
	"github.com/codeready-toolchain/nitilex/pkg/domain"
	"github.com/codeready-toolchain/nitilex/pkg/shared/errkind"
)

// Binder is the Case Memory Binder component.
type Binder struct {
	client       *ent.Client
	historyLimit int
	cache        *redis.Client // optional, nil-safe
}

// New creates a Binder backed by client, bounding LoadContext reads to
// historyLimit turns. cache may be nil; when set, it fronts LoadContext
// with a read-through cache keyed by incident or user ID.
func New(client *ent.Client, historyLimit int, cache *redis.Client) *Binder {
	return &Binder{client: client, historyLimit: historyLimit, cache: cache}
}

// LoadContext reads the most recent historyLimit turns for the query's
// incident (if set) or user (otherwise), oldest-first. When an incident ID
// is set, the user's other turns are not read. With a cache configured, a
// cached window up to cacheTTL old is returned without consulting the
// database; RecordTurn invalidates that entry after each write.
func (b *Binder) LoadContext(ctx context.Context, q domain.UserQuery) (domain.CaseMemory, error) {
	if q.IncidentID == "" && q.UserID == "" {
		return domain.CaseMemory{}, nil
	}

	cacheKey := b.cacheKey(q)
	if b.cache != nil && cacheKey != "" {
		if turns, ok := b.readCache(ctx, cacheKey); ok {
			return domain.CaseMemory{IncidentID: q.IncidentID, UserID: q.UserID, Turns: turns}, nil
		}
	}

	query := b.client.CaseMessage.Query().
		Order(ent.Desc(casemessage.FieldSequenceNumber)).
		Limit(b.historyLimit)

	if q.IncidentID != "" {
		query = query.Where(casemessage.IncidentIDEQ(q.IncidentID))
	} else {
		query = query.Where(casemessage.UserIDEQ(q.UserID))
	}

	rows, err := query.All(ctx)
	if err != nil {
		return domain.CaseMemory{}, errkind.Wrap(errkind.ErrTransportUnavailable, fmt.Errorf("load case memory: %w", err))
	}

	turns := make([]domain.CaseMemoryTurn, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		turns[len(rows)-1-i] = domain.CaseMemoryTurn{
			Role:      string(r.Role),
			Content:   r.Content,
			CreatedAt: r.CreatedAt,
		}
	}

	if b.cache != nil && cacheKey != "" {
		b.writeCache(ctx, cacheKey, turns)
	}

	return domain.CaseMemory{IncidentID: q.IncidentID, UserID: q.UserID, Turns: turns}, nil
}

// RecordTurn writes the user's question and the assistant's answer as a
// single transaction, so a reader never observes the question without
// its answer. The sequence number is derived from the highest one on
// record for this incident/user, not supplied by the caller — LoadContext
// only returns a bounded window, so a caller cannot reliably guess it.
func (b *Binder) RecordTurn(ctx context.Context, q domain.UserQuery, answer string) error {
	if q.IncidentID == "" && q.UserID == "" {
		return nil
	}

	tx, err := b.client.Tx(ctx)
	if err != nil {
		return errkind.Wrap(errkind.ErrTransportUnavailable, fmt.Errorf("begin case memory transaction: %w", err))
	}

	nextSeq, err := b.nextSequence(ctx, tx.Client(), q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := b.insertTurn(ctx, tx.Client(), q, "user", q.Question, nextSeq); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := b.insertTurn(ctx, tx.Client(), q, "assistant", answer, nextSeq+1); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return errkind.Wrap(errkind.ErrTransportUnavailable, fmt.Errorf("commit case memory transaction: %w", err))
	}

	if b.cache != nil {
		b.invalidateCache(ctx, q)
	}
	return nil
}

func (b *Binder) nextSequence(ctx context.Context, client *ent.Client, q domain.UserQuery) (int, error) {
	query := client.CaseMessage.Query().Order(ent.Desc(casemessage.FieldSequenceNumber)).Limit(1)
	if q.IncidentID != "" {
		query = query.Where(casemessage.IncidentIDEQ(q.IncidentID))
	} else {
		query = query.Where(casemessage.UserIDEQ(q.UserID))
	}

	last, err := query.First(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return 0, nil
		}
		return 0, errkind.Wrap(errkind.ErrTransportUnavailable, fmt.Errorf("read last sequence number: %w", err))
	}
	return last.SequenceNumber + 1, nil
}

func (b *Binder) insertTurn(ctx context.Context, client *ent.Client, q domain.UserQuery, role, content string, seq int) error {
	builder := client.CaseMessage.Create().
		SetID(uuid.New().String()).
		SetSequenceNumber(seq).
		SetRole(casemessage.Role(role)).
		SetContent(content).
		SetCreatedAt(time.Now())

	if q.IncidentID != "" {
		builder = builder.SetIncidentID(q.IncidentID)
	}
	if q.UserID != "" {
		builder = builder.SetUserID(q.UserID)
	}

	if _, err := builder.Save(ctx); err != nil {
		return errkind.Wrap(errkind.ErrTransportUnavailable, fmt.Errorf("save case message: %w", err))
	}
	return nil
}

func (b *Binder) cacheKey(q domain.UserQuery) string {
	if q.IncidentID != "" {
		return "casememory:incident:" + q.IncidentID
	}
	if q.UserID != "" {
		return "casememory:user:" + q.UserID
	}
	return ""
}

func (b *Binder) invalidateCache(ctx context.Context, q domain.UserQuery) {
	if key := b.cacheKey(q); key != "" {
		b.cache.Del(ctx, key)
	}
}
