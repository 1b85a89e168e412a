package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/pitchvision/pitchvision/internal/testclips"
	"github.com/pitchvision/pitchvision/pkg/logger"
)

const (
	defaultFrames      = 120
	defaultPollTimeout = 2 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the analysis service")
		videoPath = flag.String("video", "", "Clip submitted with each scripted sidecar")
		outputDir = flag.String("out", ".", "Directory for generated sidecar files")
		frames    = flag.Int("frames", defaultFrames, "Frames per scenario")
		scenarios = flag.String("scenarios", "fast_break,kick,possession", "Comma-separated scenario names")
		timeout   = flag.Duration("timeout", defaultPollTimeout, "Per-job poll timeout")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get().Named("test-clips")
	ctx := context.Background()

	if *videoPath == "" {
		log.Error(ctx, "missing -video flag")
		flag.Usage()
		os.Exit(2)
	}

	var names []testclips.Scenario
	for _, s := range strings.Split(*scenarios, ",") {
		if s = strings.TrimSpace(s); s != "" {
			names = append(names, testclips.Scenario(s))
		}
	}

	runner := testclips.NewRunner(testclips.Config{
		BaseURL:     *baseURL,
		VideoPath:   *videoPath,
		OutputDir:   *outputDir,
		Frames:      *frames,
		PollTimeout: *timeout,
	})
	if err := runner.Run(ctx, names...); err != nil {
		log.Error(ctx, "test run failed", logger.Error(err))
		os.Exit(1)
	}
	log.Info(ctx, "all scenarios finished")
}
