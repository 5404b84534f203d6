package cultivation

import (
	"maps"

	"github.com/louisbranch/sect.ascension/internal/services/game/domain/task"
)

// Complete is the progress value at which a tier is perfected.
const Complete = 100

// SubTier is derived from intra-tier progress.
type SubTier string

const (
	SubTierEarly   SubTier = "EARLY"
	SubTierMiddle  SubTier = "MIDDLE"
	SubTierLate    SubTier = "LATE"
	SubTierPerfect SubTier = "PERFECT"
)

// Count tracks completed tasks of one kind against the tier requirement.
type Count struct {
	Needed int
	Done   int
}

// Met reports whether the requirement is satisfied.
func (c Count) Met() bool {
	return c.Done >= c.Needed
}

// Progress is a disciple's cultivation state.
type Progress struct {
	Level        Level
	Progress     int
	Requirements map[task.Kind]Count
}

// NewProgress starts at level with the given requirements.
func NewProgress(level Level, needed map[task.Kind]int) Progress {
	p := Progress{Level: level}
	p.reset(needed)
	return p
}

func (p *Progress) reset(needed map[task.Kind]int) {
	p.Progress = 0
	p.Requirements = make(map[task.Kind]Count, len(needed))
	for kind, n := range needed {
		if n > 0 {
			p.Requirements[kind] = Count{Needed: n}
		}
	}
}

// SubTier derives the sub-tier from progress.
func (p Progress) SubTier() SubTier {
	switch {
	case p.Progress >= Complete:
		return SubTierPerfect
	case p.Progress >= 67:
		return SubTierLate
	case p.Progress >= 34:
		return SubTierMiddle
	default:
		return SubTierEarly
	}
}

// Gain adds progress, capped at Complete, and returns the amount applied.
func (p *Progress) Gain(amount int) int {
	if amount <= 0 {
		return 0
	}
	before := p.Progress
	p.Progress = min(Complete, p.Progress+amount)
	return p.Progress - before
}

// Record counts one completed task of kind toward the requirements.
func (p *Progress) Record(kind task.Kind) {
	c, ok := p.Requirements[kind]
	if !ok {
		return
	}
	c.Done++
	p.Requirements[kind] = c
}

// Ready reports whether the tier is perfected: progress is complete and
// every requirement count is met.
func (p Progress) Ready() bool {
	if p.Level >= Ascension || p.Progress < Complete {
		return false
	}
	for _, c := range p.Requirements {
		if !c.Met() {
			return false
		}
	}
	return true
}

// Advance moves to the next tier with fresh requirements. It returns false at
// the top tier.
func (p *Progress) Advance(needed map[task.Kind]int) bool {
	next, ok := p.Level.Next()
	if !ok {
		return false
	}
	p.Level = next
	p.reset(needed)
	return true
}

// Clone returns a deep copy.
func (p Progress) Clone() Progress {
	p.Requirements = maps.Clone(p.Requirements)
	return p
}
