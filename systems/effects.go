package systems

import "github.com/pthm-cable/reef/components"

// EffectKind identifies a fire-and-forget visual effect.
type EffectKind uint8

const (
	EffectEatBubbles EffectKind = iota
	EffectTransform
	EffectHatch
	EffectJetWake
	EffectSpermCloud
)

// EffectEmitter is the particle/effect collaborator. Implementations are
// optional; a nil emitter is a no-op and never affects core behavior.
type EffectEmitter interface {
	EmitEffect(x, y float32, kind EffectKind)
}

// EventSink receives notable simulation events for telemetry. A nil sink
// is a no-op; recording never gates control flow.
type EventSink interface {
	RecordEat(predator, prey components.Species)
	RecordSpawn(s components.Species)
	RecordRemoval(s components.Species)
	RecordTransformation(from, to components.Species)
	RecordEggsLaid(count int)
	RecordFertilization()
	RecordHatch()
	RecordJet()
}
