package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/nvr-ai/emotioncam/capture"
	"github.com/nvr-ai/emotioncam/config"
	"github.com/nvr-ai/emotioncam/detector"
	"github.com/nvr-ai/emotioncam/emotion"
	"github.com/nvr-ai/emotioncam/pipeline"
	"github.com/nvr-ai/emotioncam/profiler"
	"github.com/pkg/errors"
)

// locatorMinNeighbors is the stricter neighbour threshold of the classifier's own face locator.
const locatorMinNeighbors = 5

func main() {
	cfg := config.Default()

	var devices string
	flag.StringVar(&devices, "devices", "1,0", "Camera device indices to try, in order")
	flag.StringVar(&cfg.CascadePath, "cascade", config.DefaultCascadePath, "Path to the Haar cascade face model")
	flag.StringVar(&cfg.EmotionModelPath, "emotion-model", config.DefaultEmotionModelPath, "Path to the ONNX emotion model")
	flag.StringVar(&cfg.ONNXLibPath, "onnx-lib", "", "Path to the onnxruntime shared library (default: platform specific)")
	flag.BoolVar(&cfg.Headless, "headless", false, "Run without a display window")
	flag.BoolVar(&cfg.Profile, "profile", false, "Report per-stage timings")
	flag.DurationVar(&cfg.ProfileInterval, "profile-interval", config.DefaultProfileInterval, "Interval between profile reports")
	flag.Parse()

	log.SetPrefix(fmt.Sprintf("[emotioncam %s] ", uuid.NewString()[:8]))

	var err error
	cfg.Devices, err = config.ParseDevices(devices)
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

// run opens every resource, drives the loop and releases everything before returning.
func run(cfg config.Config) error {
	dev, err := capture.Open(capture.OpenVideoCapture, cfg.Devices...)
	if err != nil {
		return err
	}
	log.Printf("start reading camera device: %d", dev.Index)

	// The loop takes ownership of the camera once it exists; until then it is closed here.
	owned := false
	defer func() {
		if !owned {
			dev.Close()
		}
	}()

	faces, err := detector.NewCascade(detector.Config{
		Path:         cfg.CascadePath,
		ScaleFactor:  cfg.ScaleFactor,
		MinNeighbors: cfg.MinNeighbors,
	})
	if err != nil {
		return errors.Wrap(err, "load face detector")
	}
	defer faces.Close()

	locator, err := detector.NewCascade(detector.Config{
		Path:         cfg.CascadePath,
		ScaleFactor:  cfg.ScaleFactor,
		MinNeighbors: locatorMinNeighbors,
	})
	if err != nil {
		return errors.Wrap(err, "load emotion face locator")
	}

	model, err := emotion.NewONNXModel(emotion.ONNXConfig{
		ModelPath: cfg.EmotionModelPath,
		LibPath:   cfg.ONNXLibPath,
	})
	if err != nil {
		locator.Close()
		return errors.Wrap(err, "load emotion model")
	}
	classifier := emotion.NewClassifier(model, locator)
	defer classifier.Close()

	var display pipeline.Display = pipeline.Headless()
	if !cfg.Headless {
		display = pipeline.NewWindow(config.WindowTitle)
	}

	var opts []pipeline.Option
	if cfg.Profile {
		opts = append(opts, pipeline.WithProfiler(profiler.New(profiler.Options{
			ReportInterval: cfg.ProfileInterval,
		})))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loop := pipeline.New(cfg, dev, faces, classifier, display, opts...)
	owned = true

	started := time.Now()
	err = loop.Run(ctx)
	state := loop.State()
	log.Printf("processed %d frames in %v (%.2f fps)", state.FrameCount, time.Since(started).Truncate(time.Millisecond), state.FPS)
	return err
}
