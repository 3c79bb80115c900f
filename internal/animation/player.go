package animation

import (
	"math"

	"CollabBoard/internal/draw"
	"CollabBoard/internal/geom"
)

// DefaultDivisor spreads a run over roughly one second of ticks.
const DefaultDivisor = 50

// FlushCount returns how many frames a tick flushes when remain of total
// frames are left. The rate eases in and out along a sine.
func FlushCount(remain, total int, divisor float64) int {
	if remain <= 0 {
		return 0
	}
	if total < remain {
		total = remain
	}
	if divisor <= 0 {
		divisor = DefaultDivisor
	}
	count := int(geom.Round(math.Sin(float64(remain)/float64(total)*math.Pi)*float64(total)/divisor)) + 1
	return min(count, remain)
}

// Sink receives the painting work of the player.
type Sink interface {
	// ClearPreview erases the layer holding partial frames.
	ClearPreview()
	// Preview paints a partial frame.
	Preview(e draw.Event)
	// Commit paints on the persistent layer.
	Commit(e draw.Event)
}

type run struct {
	id    uint64
	steps int
}

// Player buffers frames and flushes them on ticks. It is not safe for
// concurrent use; drive it from a single goroutine such as a Loop.
type Player struct {
	sink    Sink
	divisor float64

	buffer []Frame
	id     uint64
	runs   []run

	// OnSettle is called when a run drained the buffer.
	OnSettle func()
}

// NewPlayer creates a player painting on sink.
func NewPlayer(sink Sink, divisor float64) *Player {
	if divisor <= 0 {
		divisor = DefaultDivisor
	}
	return &Player{sink: sink, divisor: divisor}
}

// Play appends events to the buffer and starts flushing it. Without
// animation the buffer is committed at once. A running animation is
// superseded and its unflushed frames are played by the new run.
func (p *Player) Play(events []draw.Event, animate bool) {
	if animate {
		p.buffer = append(p.buffer, Expand(events)...)
	} else {
		p.buffer = append(p.buffer, PlainFrames(events)...)
	}

	p.id++
	if !animate {
		p.flushAll()
		return
	}
	p.runs = append(p.runs, run{id: p.id, steps: len(p.buffer)})
}

// Reset drops the buffered frames and stops any run.
func (p *Player) Reset() {
	p.buffer = nil
	p.id++
}

// Tick advances every scheduled run by one step and reports whether a
// run is still playing. Runs superseded since they were scheduled stop
// silently.
func (p *Player) Tick() bool {
	pending := p.runs
	p.runs = nil
	for _, r := range pending {
		if r.id != p.id {
			continue
		}
		if p.step(r) {
			p.runs = append(p.runs, r)
		}
	}
	return len(p.runs) > 0
}

// Playing reports whether a run is scheduled.
func (p *Player) Playing() bool {
	for _, r := range p.runs {
		if r.id == p.id {
			return true
		}
	}
	return false
}

// Pending returns the number of buffered frames.
func (p *Player) Pending() int {
	return len(p.buffer)
}

// Generation returns the id of the latest run.
func (p *Player) Generation() uint64 {
	return p.id
}

func (p *Player) step(r run) bool {
	count := FlushCount(len(p.buffer), r.steps, p.divisor)
	for i := 0; i < count; i++ {
		p.paint(p.buffer[0])
		p.buffer = p.buffer[1:]
	}
	if len(p.buffer) > 0 {
		return true
	}
	p.buffer = nil
	if p.OnSettle != nil {
		p.OnSettle()
	}
	return false
}

func (p *Player) paint(f Frame) {
	switch f.Step {
	case Partial:
		p.sink.ClearPreview()
		p.sink.Preview(f.Event)
	case Final:
		p.sink.ClearPreview()
		p.sink.Commit(f.Event)
	default:
		p.sink.Commit(f.Event)
	}
}

// flushAll commits the buffer at once. Partial frames left by an
// interrupted run are skipped, their shape is committed by its final frame.
func (p *Player) flushAll() {
	p.sink.ClearPreview()
	for _, f := range p.buffer {
		if f.Step != Partial {
			p.sink.Commit(f.Event)
		}
	}
	p.buffer = nil
	if p.OnSettle != nil {
		p.OnSettle()
	}
}
