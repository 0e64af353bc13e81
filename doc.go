/*
Package facestudio is a real-time image processing and face-region filtering
library: it takes small captured webcam frames, applies pixel-level
transforms (grayscale, channel extraction, thresholding, colorspace
conversion, blur, pixelation), locates a face region through a layered
heuristic pipeline backed by an optional cascade classifier, and composites
a selected filter onto that region.

The package provides a command line interface supporting various flags for
the different processing operations. To check the supported commands type:

	$ facestudio --help

In case you wish to integrate the API in a self constructed environment here
is a simple example:

	package main

	import (
		"context"
		"fmt"
		"os"

		facestudio "github.com/Akshat-2809/Face-Studio"
		"github.com/rs/zerolog"
	)

	func main() {
		log := zerolog.New(os.Stderr)
		det := facestudio.NewDetector(facestudio.DefaultDetectorConfig(), log)
		orch := facestudio.NewOrchestrator(det, nil, log)
		pipe := facestudio.NewPipeline(160, 120, orch, log)

		if err := pipe.Capture(context.Background(), frame, facestudio.NewContext()); err != nil {
			fmt.Printf("Error processing the frame: %s", err.Error())
		}
	}
*/
package facestudio
