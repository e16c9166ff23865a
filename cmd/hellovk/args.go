package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/cockroachdb/errors"
)

var errHelp = errors.New("help requested")

type options struct {
	Validation    bool
	Verbose       bool
	AssetDir      string
	Texture       string
	// TextureSet distinguishes --texture "" from no --texture at all.
	TextureSet    bool
	PipelineCache string
	Frames        int
}

func defaultOptions() options {
	return options{AssetDir: "assets"}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "\nOptions")
	fmt.Fprintln(w, "\t--validation")
	fmt.Fprintln(w, "\t\tEnable the Khronos validation layer")
	fmt.Fprintln(w, "\t--assets <dir>")
	fmt.Fprintln(w, "\t\tDirectory holding shaders/ and textures/ (default assets)")
	fmt.Fprintln(w, "\t--texture <path>")
	fmt.Fprintln(w, "\t\tFloor texture relative to the asset directory, empty for plain white")
	fmt.Fprintln(w, "\t--pipeline-cache <file>")
	fmt.Fprintln(w, "\t\tLoad the pipeline cache from file and save it back on exit")
	fmt.Fprintln(w, "\t--frames <n>")
	fmt.Fprintln(w, "\t\tFrames in flight (default 2)")
	fmt.Fprintln(w, "\t--verbose")
	fmt.Fprintln(w, "\t\tLog at debug level")
}

// parseArgs reads the command line, not including the program name.
func parseArgs(args []string) (options, error) {
	opts := defaultOptions()

	value := func(i int) (string, error) {
		if i+1 >= len(args) {
			return "", errors.Newf("option %s needs a value", args[i])
		}
		return args[i+1], nil
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--validation":
			opts.Validation = true
		case "--verbose":
			opts.Verbose = true
		case "--help", "-h":
			return opts, errHelp
		case "--assets", "--texture", "--pipeline-cache", "--frames":
			v, err := value(i)
			if err != nil {
				return opts, err
			}
			i++
			switch arg {
			case "--assets":
				opts.AssetDir = v
			case "--texture":
				opts.Texture = v
				opts.TextureSet = true
			case "--pipeline-cache":
				opts.PipelineCache = v
			case "--frames":
				n, err := strconv.Atoi(v)
				if err != nil || n < 1 {
					return opts, errors.Newf("--frames wants a positive number, got %q", v)
				}
				opts.Frames = n
			}
		default:
			return opts, errors.Newf("unrecognized option: %s", arg)
		}
	}

	return opts, nil
}
