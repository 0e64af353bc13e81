package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sync"
	"syscall"
	"time"

	facestudio "github.com/Akshat-2809/Face-Studio"
	"github.com/Akshat-2809/Face-Studio/utils"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

const HelpBanner = `
┌─┐┌─┐┌─┐┌─┐  ┌─┐┌┬┐┬ ┬┌┬┐┬┌─┐
├┤ ├─┤│  ├┤   └─┐ │ │ │ ││││ │
└  ┴ ┴└─┘└─┘  └─┘ ┴ └─┘─┴┘┴└─┘

Face-region localization and image transform pipeline.
    Version: %s

`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// maxWorkers sets the maximum number of concurrently running workers.
const maxWorkers = 20

// result holds the relevant information about the processing of one frame.
type result struct {
	path string
	err  error
}

var (
	// imgurl holds the file being accessed be it normal file or pipe name.
	imgurl *os.File
	// spinner used to instantiate and call the progress indicator.
	spinner *utils.Spinner
)

// Version indicates the current build version.
var Version string

var (
	// Flags
	source      = flag.String("in", pipeName, "Source")
	destination = flag.String("out", pipeName, "Destination")
	filterID    = flag.Int("filter", 0, "Face filter (0=original, 1=grayscale, 2=blur, 3=colorspace, 4=pixelate)")
	tag         = flag.String("tag", facestudio.TagFace, "Output raster to save")
	redThresh   = flag.Int("red", 127, "Red channel threshold")
	greenThresh = flag.Int("green", 127, "Green channel threshold")
	blueThresh  = flag.Int("blue", 127, "Blue channel threshold")
	hsvThresh   = flag.Int("hsv", 127, "HSV threshold")
	labThresh   = flag.Int("lab", 127, "Lab threshold")
	frameWidth  = flag.Int("width", facestudio.DefaultFrameWidth, "Capture frame width")
	frameHeight = flag.Int("height", facestudio.DefaultFrameHeight, "Capture frame height")
	mirror      = flag.Bool("mirror", false, "Correct for camera mirroring")
	cascade     = flag.String("cc", "", "Cascade classifier file or URL (empty = heuristics only)")
	verbose     = flag.Bool("v", false, "Verbose logging")
	workers     = flag.Int("conc", runtime.NumCPU(), "Number of files to process concurrently")

	// File related variables
	fs  os.FileInfo
	err error
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	pipe, pctx, err := buildPipeline(logger)
	if err != nil {
		log.Fatalf(utils.DecorateText("Unable to set up the pipeline: %v\n", utils.ErrorMessage), err)
	}

	spinnerText := fmt.Sprintf("%s %s",
		utils.DecorateText("▲ FACE-STUDIO", utils.StatusMessage),
		utils.DecorateText("is processing the frame...", utils.DefaultMessage))
	spinner = utils.NewSpinner(spinnerText, time.Millisecond*200, true)

	// Supported files
	validExtensions := []string{".jpg", ".png", ".jpeg", ".bmp", ".gif"}

	// Check if source path is a local image or URL.
	if utils.IsValidUrl(*source) {
		src, err := utils.DownloadImage(*source)
		if err != nil {
			log.Fatalf(
				utils.DecorateText("Failed to load the source image: %v", utils.ErrorMessage),
				utils.DecorateText(err.Error(), utils.DefaultMessage),
			)
		}
		defer src.Close()
		defer os.Remove(src.Name())

		fs, err = src.Stat()
		if err != nil {
			log.Fatalf(
				utils.DecorateText("Failed to load the source image: %v", utils.ErrorMessage),
				utils.DecorateText(err.Error(), utils.DefaultMessage),
			)
		}
		img, err := os.Open(src.Name())
		if err != nil {
			log.Fatalf(
				utils.DecorateText("Unable to open the temporary image file: %v", utils.ErrorMessage),
				utils.DecorateText(err.Error(), utils.DefaultMessage),
			)
		}
		imgurl = img
	} else {
		// Check if the source is a pipe name or a regular file.
		if *source == pipeName {
			fs, err = os.Stdin.Stat()
		} else {
			fs, err = os.Stat(*source)
		}
		if err != nil {
			log.Fatalf(
				utils.DecorateText("Failed to load the source image: %v", utils.ErrorMessage),
				utils.DecorateText(err.Error(), utils.DefaultMessage),
			)
		}
	}

	now := time.Now()

	switch mode := fs.Mode(); {
	case mode.IsDir():
		var wg sync.WaitGroup
		// Read destination file or directory.
		if _, err := os.Stat(*destination); err != nil {
			if err = os.Mkdir(*destination, 0755); err != nil {
				log.Fatalf(
					utils.DecorateText("Unable to get dir stats: %v\n", utils.ErrorMessage),
					utils.DecorateText(err.Error(), utils.DefaultMessage),
				)
			}
		}

		// Limit the concurrently running workers to maxWorkers.
		if *workers <= 0 || *workers > maxWorkers {
			*workers = runtime.NumCPU()
		}

		// Process the image files from the specified directory concurrently.
		// Every worker owns its own pipeline, since a pipeline processes
		// one capture at a time by design.
		ch := make(chan result)
		done := make(chan interface{})
		defer close(done)

		paths, errc := walkDir(done, *source, validExtensions)

		wg.Add(*workers)
		for i := 0; i < *workers; i++ {
			go func() {
				defer wg.Done()
				wpipe, wctx, err := buildPipeline(logger)
				if err != nil {
					return
				}
				consumer(done, paths, *destination, wpipe, wctx, ch)
			}()
		}

		// Close the channel after the values are consumed.
		go func() {
			defer close(ch)
			wg.Wait()
		}()

		// Consume the channel values.
		for res := range ch {
			printStatus(res.path, res.err)
		}

		if err := <-errc; err != nil {
			fmt.Fprint(os.Stderr, utils.DecorateText(err.Error(), utils.ErrorMessage))
		}

	case mode.IsRegular() || mode&os.ModeNamedPipe != 0: // check for regular files or pipe names
		ext := filepath.Ext(*destination)
		if !isValidExtension(ext, validExtensions) && *destination != pipeName {
			log.Fatalf(utils.DecorateText(fmt.Sprintf("%v file type not supported", ext), utils.ErrorMessage))
		}

		err := processor(*source, *destination, pipe, pctx)
		printStatus(*destination, err)
	}
	fmt.Fprintf(os.Stderr, "\nExecution time: %s\n", utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
}

// buildPipeline wires the detector, the optional cascade classifier and the
// capture pipeline from the command line flags.
func buildPipeline(logger zerolog.Logger) (*facestudio.Pipeline, *facestudio.Context, error) {
	detector := facestudio.NewDetector(facestudio.DefaultDetectorConfig(), logger)

	var external facestudio.FaceDetector
	if *cascade != "" {
		data, err := loadCascade(*cascade)
		if err != nil {
			return nil, nil, err
		}
		cd, err := facestudio.NewCascadeDetector(data)
		if err != nil {
			return nil, nil, err
		}
		external = cd
	}

	orch := facestudio.NewOrchestrator(detector, external, logger)
	pipe := facestudio.NewPipeline(*frameWidth, *frameHeight, orch, logger)

	pctx := facestudio.NewContext()
	if err := pctx.SetFilter(*filterID); err != nil {
		return nil, nil, err
	}
	pctx.SetThreshold(facestudio.SliderRed, *redThresh)
	pctx.SetThreshold(facestudio.SliderGreen, *greenThresh)
	pctx.SetThreshold(facestudio.SliderBlue, *blueThresh)
	pctx.SetThreshold(facestudio.SliderHSV, *hsvThresh)
	pctx.SetThreshold(facestudio.SliderLab, *labThresh)
	pctx.SetMirror(*mirror)

	return pipe, pctx, nil
}

// loadCascade reads the cascade classifier from a local file or URL.
func loadCascade(src string) ([]byte, error) {
	if utils.IsValidUrl(src) {
		f, err := utils.DownloadFile(src)
		if err != nil {
			return nil, err
		}
		defer os.Remove(f.Name())
		src = f.Name()
	}
	return os.ReadFile(src)
}

// walkDir starts a goroutine to walk the specified directory tree in recursive manner
// and send the path of each regular file on the string channel.
// It sends the result of the walk on the error channel.
// It terminates in case done channel is closed.
func walkDir(
	done <-chan interface{},
	src string,
	srcExts []string,
) (<-chan string, <-chan error) {
	pathChan := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		// Close the paths channel after Walk returns.
		defer close(pathChan)

		errChan <- filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
			isFileSupported := false
			if err != nil {
				return err
			}
			if !info.Mode().IsRegular() {
				return nil
			}

			// Get the file base name.
			fx := filepath.Ext(info.Name())
			for _, ext := range srcExts {
				if ext == fx {
					isFileSupported = true
					break
				}
			}

			if isFileSupported {
				select {
				case <-done:
					return errors.New("directory walk cancelled")
				case pathChan <- path:
				}
			}
			return nil
		})
	}()
	return pathChan, errChan
}

// consumer reads the path names from the paths channel, runs the capture
// pipeline against each source image and sends the results on a new channel.
func consumer(
	done <-chan interface{},
	paths <-chan string,
	dest string,
	pipe *facestudio.Pipeline,
	pctx *facestudio.Context,
	res chan<- result,
) {
	for src := range paths {
		dest := filepath.Join(dest, filepath.Base(src))
		err := processor(src, dest, pipe, pctx)

		select {
		case <-done:
			return
		case res <- result{
			path: src,
			err:  err,
		}:
		}
	}
}

// processor runs one frame through the capture pipeline and writes the
// requested output raster to the destination.
func processor(in, out string, pipe *facestudio.Pipeline, pctx *facestudio.Context) error {
	src, dst, err := pathToFile(in, out)
	if err != nil {
		return err
	}
	if f, ok := src.(*os.File); ok {
		defer f.Close()
	}
	if f, ok := dst.(*os.File); ok {
		defer f.Close()
	}

	// Capture CTRL-C signal and restore the cursor visibility back.
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalChan
		spinner.RestoreCursor()
		os.Exit(1)
	}()

	// Start the progress indicator.
	spinner.Start()

	err = process(src, dst, pipe, pctx)

	stopMsg := fmt.Sprintf("%s %s",
		utils.DecorateText("▲ FACE-STUDIO", utils.StatusMessage),
		utils.DecorateText("is processing the frame... ✔", utils.DefaultMessage))
	spinner.StopMsg = stopMsg

	// Stop the progress indicator.
	spinner.Stop()

	return err
}

// process decodes one frame, captures it and encodes the selected output.
func process(r io.Reader, w io.Writer, pipe *facestudio.Pipeline, pctx *facestudio.Context) error {
	frame, err := facestudio.DecodeImage(r)
	if err != nil {
		return err
	}

	if err := pipe.Capture(context.Background(), frame, pctx); err != nil {
		return err
	}

	out, ok := pipe.Output(*tag)
	if !ok {
		return fmt.Errorf("unknown output tag: %s", *tag)
	}
	return facestudio.EncodeImage(w, out)
}

// pathToFile converts the source and destination paths to readable and writable files.
func pathToFile(in, out string) (io.Reader, io.Writer, error) {
	var (
		src io.Reader
		dst io.Writer
		err error
	)
	// Check if the source path is a local image or URL.
	if utils.IsValidUrl(in) {
		src = imgurl
	} else {
		// Check if the source is a pipe name or a regular file.
		if in == pipeName {
			if term.IsTerminal(int(os.Stdin.Fd())) {
				return nil, nil, errors.New("`-` should be used with a pipe for stdin")
			}
			src = os.Stdin
		} else {
			src, err = os.Open(in)
			if err != nil {
				return nil, nil, fmt.Errorf("unable to open the source file: %v", err)
			}
		}
	}

	// Check if the destination is a pipe name or a regular file.
	if out == pipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return nil, nil, errors.New("`-` should be used with a pipe for stdout")
		}
		dst = os.Stdout
	} else {
		dst, err = os.OpenFile(out, os.O_CREATE|os.O_WRONLY, 0755)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to create the destination file: %v", err)
		}
	}
	return src, dst, nil
}

// printStatus displays the relevant information about the processed frame.
func printStatus(fname string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr,
			utils.DecorateText("\nError processing the frame: %s", utils.ErrorMessage),
			utils.DecorateText(fmt.Sprintf("\n\tReason: %v\n", err.Error()), utils.DefaultMessage),
		)
		os.Exit(1)
	} else {
		if fname != pipeName {
			fmt.Fprintf(os.Stderr, "\nThe processed frame has been saved as: %s %s\n",
				utils.DecorateText(filepath.Base(fname), utils.SuccessMessage),
				utils.DefaultColor,
			)
		}
	}
}

// isValidExtension checks for the supported extensions.
func isValidExtension(ext string, extensions []string) bool {
	for _, ex := range extensions {
		if ex == ext {
			return true
		}
	}
	return false
}
