package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// CaseMessage holds the schema definition for one turn of a Case Memory
// thread: a question or answer scoped to an incident or a user. Adapted
// from the teacher's Message schema, collapsing its four-value role enum
// (system, user, assistant, tool) to three values and dropping the
// tool-call fields — this pipeline's agents never do ReAct-style tool
// calling, so there is nothing for a "tool" role to represent here.
type CaseMessage struct {
	ent.Schema
}

// Fields of the CaseMessage.
func (CaseMessage) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("case_message_id").
			Unique().
			Immutable(),
		field.String("incident_id").
			Optional().
			Nillable().
			Immutable().
			Comment("Set for per-incident threads"),
		field.String("user_id").
			Optional().
			Nillable().
			Immutable().
			Comment("Set for per-user threads"),
		field.Int("sequence_number").
			Comment("Thread-scoped order"),
		field.Enum("role").
			Values("user", "assistant", "system"),
		field.Text("content"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Indexes of the CaseMessage.
func (CaseMessage) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("incident_id", "sequence_number"),
		index.Fields("user_id", "sequence_number"),
	}
}
