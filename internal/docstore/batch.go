package docstore

import "context"

type opKind int

const (
	opSet opKind = iota
	opUpdate
	opDelete
)

type batchOp struct {
	kind   opKind
	ref    Ref
	data   any
	fields map[string]any
}

// Batch collects writes that commit together or not at all.
type Batch struct {
	ops []batchOp
}

// NewBatch returns an empty batch.
func NewBatch() *Batch { return &Batch{} }

func (b *Batch) Set(ref Ref, data any) *Batch {
	b.ops = append(b.ops, batchOp{kind: opSet, ref: ref, data: data})
	return b
}

func (b *Batch) Update(ref Ref, fields map[string]any) *Batch {
	b.ops = append(b.ops, batchOp{kind: opUpdate, ref: ref, fields: fields})
	return b
}

func (b *Batch) Delete(ref Ref) *Batch {
	b.ops = append(b.ops, batchOp{kind: opDelete, ref: ref})
	return b
}

// Merge appends another batch's writes.
func (b *Batch) Merge(other *Batch) *Batch {
	if other != nil {
		b.ops = append(b.ops, other.ops...)
	}
	return b
}

// Len returns the number of queued writes.
func (b *Batch) Len() int { return len(b.ops) }

// Refs lists the documents the batch touches, in write order.
func (b *Batch) Refs() []Ref {
	refs := make([]Ref, len(b.ops))
	for i, op := range b.ops {
		refs[i] = op.ref
	}
	return refs
}

// Commit applies every write in one transaction.
func (b *Batch) Commit(ctx context.Context, s Store) error {
	return s.RunTransaction(ctx, func(ctx context.Context) error {
		for _, op := range b.ops {
			var err error
			switch op.kind {
			case opSet:
				err = s.Set(ctx, op.ref, op.data)
			case opUpdate:
				err = s.Update(ctx, op.ref, op.fields)
			case opDelete:
				err = s.Delete(ctx, op.ref)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}
