// Package testclips generates scripted detection sidecars for
// exercising the analysis pipeline without a real detector, and a
// replay tracker backend for tests.
package testclips

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pitchvision/pitchvision/pkg/logger"
)

// Wire classes matching the detector protocol.
const (
	classPlayer = 0
	classBall   = 1
)

// Line is one detection in the detector's wire format.
type Line struct {
	Frame      int     `json:"frame"`
	Class      int     `json:"class"`
	Confidence float64 `json:"confidence"`
	Box        [4]int  `json:"box"`
}

// Scenario names a scripted clip.
type Scenario string

// Built-in scenarios.
const (
	// ScenarioFastBreak advances the ball through high zones across
	// enough possessions to qualify as a fast break.
	ScenarioFastBreak Scenario = "fast_break"

	// ScenarioKick keeps the ball slow, then jumps it hard enough to
	// register a kick.
	ScenarioKick Scenario = "kick"

	// ScenarioPossession alternates the ball between two players to
	// produce possession transfer events.
	ScenarioPossession Scenario = "possession"
)

// playerBox builds a player detection around a center point.
func playerBox(frame, cx, cy int) Line {
	return Line{Frame: frame, Class: classPlayer, Confidence: 0.92, Box: [4]int{cx - 20, cy - 40, 40, 80}}
}

// ballBox builds a ball detection around a center point.
func ballBox(frame, cx, cy int) Line {
	return Line{Frame: frame, Class: classBall, Confidence: 0.88, Box: [4]int{cx - 10, cy - 10, 20, 20}}
}

// Generate produces the detection script for a scenario spanning the
// given number of frames.
func Generate(scenario Scenario, frames int) ([]Line, error) {
	switch scenario {
	case ScenarioFastBreak:
		return fastBreakScript(frames), nil
	case ScenarioKick:
		return kickScript(frames), nil
	case ScenarioPossession:
		return possessionScript(frames), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScenario, scenario)
	}
}

// fastBreakScript drives the ball from a defensive zone up through the
// attacking row while two players shadow it closely. Possession flips
// once near the end so the accumulated chain is classified.
func fastBreakScript(frames int) []Line {
	var lines []Line
	for f := 0; f < frames; f++ {
		// Ball climbs rows: y sweeps from the top row down into the
		// bottom (high-numbered) row while x drifts right.
		bx := 200 + f*8
		by := 150 + f*12
		lines = append(lines,
			ballBox(f, bx, by),
			playerBox(f, bx+15, by),
			playerBox(f, bx-400, by-100),
		)
	}
	// Final frames hand the ball to the far player, flipping possession.
	last := frames - 1
	lines = append(lines,
		ballBox(frames, 200+last*8-400, 150+last*12-100),
		playerBox(frames, 200+last*8-400, 150+last*12-100),
		playerBox(frames, 200+last*8, 150+last*12),
	)
	return lines
}

// kickScript holds the ball nearly still, then jumps it 60px in one
// frame.
func kickScript(frames int) []Line {
	var lines []Line
	for f := 0; f < frames; f++ {
		bx, by := 400+f, 500
		if f == frames/2 {
			bx += 60
		}
		lines = append(lines,
			ballBox(f, bx, by),
			playerBox(f, bx+20, by),
			playerBox(f, bx+600, by),
		)
	}
	return lines
}

// possessionScript bounces the ball between two fixed players every 20
// frames.
func possessionScript(frames int) []Line {
	const (
		leftX, rightX = 500, 900
		y             = 540
	)
	var lines []Line
	for f := 0; f < frames; f++ {
		bx := leftX
		if (f/20)%2 == 1 {
			bx = rightX
		}
		lines = append(lines,
			ballBox(f, bx, y),
			playerBox(f, leftX, y),
			playerBox(f, rightX, y),
		)
	}
	return lines
}

// WriteSidecar writes the script as a JSONL detections file.
func WriteSidecar(ctx context.Context, path string, lines []Line) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating sidecar: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, l := range lines {
		if err := enc.Encode(l); err != nil {
			return fmt.Errorf("writing sidecar line: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing sidecar: %w", err)
	}

	logger.Get().Info(ctx, "sidecar written",
		logger.String("path", path),
		logger.Int("lines", len(lines)),
	)
	return nil
}
