// Package detect streams per-frame detections from the external object
// detector, either by running the detector command and parsing its
// stdout or by reading a precomputed JSONL sidecar file.
//
// The detector protocol is one JSON object per line:
//
//	{"frame": 12, "class": 0, "confidence": 0.91, "box": [x, y, w, h]}
//
// Lines are grouped by ascending frame number. Malformed lines are
// logged and skipped; they never reach the tracker.
package detect

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/pitchvision/pitchvision/internal/domain/model"
	"github.com/pitchvision/pitchvision/pkg/logger"
)

// FrameDetections is one frame's worth of detector output.
type FrameDetections struct {
	Frame      int
	Detections []model.Detection
}

// detectionLine mirrors the detector's wire format.
type detectionLine struct {
	Frame      int     `json:"frame"`
	Class      int     `json:"class"`
	Confidence float64 `json:"confidence"`
	Box        [4]int  `json:"box"`
}

// Stream parses detector output from r and sends frame batches to out
// in frame order. It closes out before returning. Frames with no
// detections produce no batch; callers treat a gap as an empty frame.
func Stream(ctx context.Context, r io.Reader, out chan<- FrameDetections) error {
	defer close(out)

	log := logger.Get().Named("detect")
	scanner := bufio.NewScanner(r)

	current := FrameDetections{Frame: -1}
	flush := func() bool {
		if current.Frame < 0 {
			return true
		}
		select {
		case out <- current:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "{") {
			// Detector progress chatter, not data.
			continue
		}

		var dl detectionLine
		if err := json.Unmarshal([]byte(line), &dl); err != nil {
			log.Warn(ctx, "skipping malformed detection line", logger.Error(err))
			continue
		}
		if dl.Frame < current.Frame {
			log.Warn(ctx, "skipping out-of-order detection line",
				logger.Int("frame", dl.Frame),
			)
			continue
		}

		if dl.Frame != current.Frame {
			if !flush() {
				return ctx.Err()
			}
			current = FrameDetections{Frame: dl.Frame}
		}

		current.Detections = append(current.Detections, model.Detection{
			Box: model.BoundingBox{
				X: dl.Box[0], Y: dl.Box[1], W: dl.Box[2], H: dl.Box[3],
			},
			Class:      model.ClassID(dl.Class),
			Confidence: dl.Confidence,
		})
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading detector output: %w", err)
	}
	if !flush() {
		return ctx.Err()
	}
	return nil
}

// StreamFile streams detections from a JSONL sidecar file.
func StreamFile(ctx context.Context, path string, out chan<- FrameDetections) error {
	f, err := os.Open(path)
	if err != nil {
		close(out)
		return fmt.Errorf("opening detections file: %w", err)
	}
	defer f.Close()
	return Stream(ctx, f, out)
}

// RunDetector launches the detector command against a video and streams
// its stdout. The command is split on whitespace; the video path is
// appended as the final argument.
func RunDetector(ctx context.Context, command, videoPath string, out chan<- FrameDetections) error {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		close(out)
		return fmt.Errorf("empty detector command: %w", ErrDetectorFailed)
	}
	args := append(parts[1:], videoPath)

	cmd := exec.CommandContext(ctx, parts[0], args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		close(out)
		return fmt.Errorf("%w: %w", ErrDetectorFailed, err)
	}

	if err := cmd.Start(); err != nil {
		close(out)
		return fmt.Errorf("%w: %w", ErrDetectorFailed, err)
	}

	streamErr := Stream(ctx, stdout, out)

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("%w: %w", ErrDetectorFailed, err)
	}
	return streamErr
}
