// Package progression accumulates experience, runs the level-up loop, and
// maps levels onto evolution stages.
package progression

import (
	"math"
	"sort"

	"github.com/odomo-app/odomo/internal/model"
)

// Gate maps a minimum level to the stage unlocked at that level.
type Gate struct {
	Level int
	Stage model.Stage
}

// DefaultGates returns the production stage thresholds, ascending.
func DefaultGates() []Gate {
	return []Gate{
		{Level: 0, Stage: model.StageTamago},
		{Level: 1, Stage: model.StageChibi},
		{Level: 5, Stage: model.StageGenin},
		{Level: 10, Stage: model.StageChunin},
		{Level: 20, Stage: model.StageJonin},
		{Level: 50, Stage: model.StageKage},
	}
}

// HappinessPerLevel is the happiness bonus granted per level gained in a
// single XP grant, clamped at 100 by the caller.
const HappinessPerLevel = 5.0

// Engine applies XP gains. Gates are injected so tests can substitute
// alternate tuning.
type Engine struct {
	gates []Gate
}

// New creates an Engine with the given stage gates, sorted ascending by level.
func New(gates []Gate) *Engine {
	sorted := make([]Gate, len(gates))
	copy(sorted, gates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Level < sorted[j].Level })
	return &Engine{gates: sorted}
}

// XPForLevel is the experience required to advance past level:
// floor(100 · level^1.5). Strictly increasing, recomputed per level.
func XPForLevel(level int) int {
	return int(math.Floor(100 * math.Pow(float64(level), 1.5)))
}

// Result is the outcome of applying an XP gain.
type Result struct {
	Level        int
	XP           int
	Stage        model.Stage
	LeveledUp    bool
	StageEvolved bool
	// HappinessBonus is HappinessPerLevel × levels gained; zero when no
	// level-up occurred.
	HappinessBonus float64
}

// Apply accumulates gained XP onto (level, xp) and runs the level-up loop.
// A single call may cross several levels; the loop terminates because the
// requirement is strictly positive and increasing while the gain is finite.
func (e *Engine) Apply(level, xp int, stage model.Stage, gained int) Result {
	newXP := xp + gained
	newLevel := level
	for newXP >= XPForLevel(newLevel) {
		newXP -= XPForLevel(newLevel)
		newLevel++
	}

	newStage := e.StageForLevel(newLevel)
	// Stage is monotonic over the pet's life even if gates are retuned
	// downward between deployments.
	if stageRank(e.gates, newStage) < stageRank(e.gates, stage) {
		newStage = stage
	}

	res := Result{
		Level:        newLevel,
		XP:           newXP,
		Stage:        newStage,
		LeveledUp:    newLevel > level,
		StageEvolved: newStage != stage,
	}
	if res.LeveledUp {
		res.HappinessBonus = HappinessPerLevel * float64(newLevel-level)
	}
	return res
}

// StageForLevel recomputes the stage from scratch as a step function of level.
func (e *Engine) StageForLevel(level int) model.Stage {
	stage := e.gates[0].Stage
	for _, g := range e.gates {
		if level >= g.Level {
			stage = g.Stage
		}
	}
	return stage
}

func stageRank(gates []Gate, s model.Stage) int {
	for i, g := range gates {
		if g.Stage == s {
			return i
		}
	}
	return -1
}
