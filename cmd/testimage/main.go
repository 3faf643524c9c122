// Package main generates, corrupts, rotates and compares camera test images.
package main

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"go.viam.com/testimage/config"
	"go.viam.com/testimage/logging"
	"go.viam.com/testimage/rimage"
	"go.viam.com/testimage/rimage/jpegr"
	"go.viam.com/testimage/testimage"
	"go.viam.com/testimage/utils"
)

const (
	// Flags.
	flagConfig  = "config"
	flagDebug   = "debug"
	flagWidth   = "width"
	flagHeight  = "height"
	flagOutput  = "output"
	flagSize    = "size"
	flagQuality = "quality"
	flagGainMap = "gainmap"
	flagScale   = "gainmap-scale"
	flagRotate  = "rotate"
	flagMime    = "mime"
	flagA24     = "a24"
	flagDegrees = "degrees"
	flagRegion  = "region"
	flagColor   = "color"
	flagStats   = "stats"
)

func main() {
	logger := logging.NewLogger("testimage")
	logging.ReplaceGlobal(logger)
	if err := realMain(os.Args, os.Stdout, logger); err != nil {
		logger.Fatal(err)
	}
}

func realMain(args []string, out io.Writer, logger logging.Logger) error {
	return newApp(out, logger).Run(args)
}

func newApp(out io.Writer, logger logging.Logger) *cli.App {
	return &cli.App{
		Name:      "testimage",
		Usage:     "generate and compare camera test images",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool(flagDebug) {
				logger.SetLevel(logging.DEBUG)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "write color block images, optionally with a gray band gain map",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    flagConfig,
						Aliases: []string{"c"},
						Usage:   "load the job from `FILE`; other flags are ignored",
					},
					&cli.IntFlag{Name: flagWidth, Usage: "image width in pixels"},
					&cli.IntFlag{Name: flagHeight, Usage: "image height in pixels"},
					&cli.StringFlag{
						Name:    flagOutput,
						Aliases: []string{"o"},
						Usage:   "output `FILE`; with --size, sizes are appended to its name",
					},
					&cli.StringSliceFlag{Name: flagSize, Usage: "generate a `WxH` image, may be repeated"},
					&cli.IntFlag{Name: flagQuality, Usage: "lossy quality, 1-100", Value: config.DefaultQuality},
					&cli.BoolFlag{Name: flagGainMap, Usage: "embed a gray band gain map (JPEG/R)"},
					&cli.IntFlag{Name: flagScale, Usage: "shrink the gain map by `N` in each dimension", Value: 1},
					&cli.IntFlag{Name: flagRotate, Usage: "rotate clockwise by `DEGREES`"},
					&cli.StringFlag{Name: flagMime, Usage: "output mime type, guessed from the output name by default"},
					&cli.BoolFlag{Name: flagA24, Usage: "prepend the malformed A24 header to the JPEG"},
				},
				Action: func(c *cli.Context) error {
					var cfg *config.Config
					var err error
					if path := c.String(flagConfig); path != "" {
						cfg, err = config.Read(path, logger)
					} else {
						cfg, err = configFromFlags(c)
					}
					if err != nil {
						return err
					}
					return generateAll(c.Context, cfg, out, logger)
				},
			},
			{
				Name:      "corrupt",
				Usage:     "prepend the malformed A24 header to an encoded image",
				ArgsUsage: "<input> <output>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return errors.New("corrupt needs an input and an output file")
					}
					data, err := os.ReadFile(c.Args().Get(0))
					if err != nil {
						return err
					}
					corrupted := testimage.CorruptHeaderForRegressionTest(data)
					logger.Debugw("corrupting header", "input", c.Args().Get(0), "bytes", len(data))
					return writeOutput(out, c.Args().Get(1), corrupted)
				},
			},
			{
				Name:      "rotate",
				Usage:     "rotate an image clockwise",
				ArgsUsage: "<input> <output>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: flagDegrees, Usage: "clockwise rotation in degrees", Value: 90},
					&cli.StringFlag{Name: flagMime, Usage: "output mime type, guessed from the output name by default"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return errors.New("rotate needs an input and an output file")
					}
					img, err := readImage(c.Context, c.Args().Get(0))
					if err != nil {
						return err
					}
					rotated := testimage.RotateImage(img, c.Int(flagDegrees))
					mimeType := outputMimeType(c.String(flagMime), c.Args().Get(1), utils.MimeTypePNG)
					data, err := rimage.EncodeImage(c.Context, rotated, mimeType)
					if err != nil {
						return err
					}
					return writeOutput(out, c.Args().Get(1), data)
				},
			},
			{
				Name:      "diff",
				Usage:     "print the mean per channel difference of two images, or of a region and a color",
				ArgsUsage: "<image> [other image]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagRegion, Usage: "compare the region `x0,y0,x1,y1` of the image to --color"},
					&cli.StringFlag{Name: flagColor, Usage: "reference color as `#rrggbb`"},
					&cli.BoolFlag{Name: flagStats, Usage: "also print the distribution of differences"},
				},
				Action: func(c *cli.Context) error {
					return diffAction(c, out)
				},
			},
			{
				Name:      "info",
				Usage:     "describe an encoded image",
				ArgsUsage: "<image>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return errors.New("info needs one file")
					}
					data, err := os.ReadFile(c.Args().First())
					if err != nil {
						return err
					}
					return printInfo(out, data)
				},
			},
			{
				Name:  "formats",
				Usage: "list the supported mime types",
				Action: func(c *cli.Context) error {
					lines := lo.Map(rimage.RegisteredMimeTypes(), func(mimeType string, _ int) string {
						codec, err := rimage.LookupCodec(mimeType)
						if err != nil {
							return mimeType
						}
						if rimage.IsLossy(codec) {
							return mimeType + " (lossy)"
						}
						return mimeType
					})
					fmt.Fprintln(out, strings.Join(lines, "\n"))
					return nil
				},
			},
		},
	}
}

func configFromFlags(c *cli.Context) (*config.Config, error) {
	output := c.String(flagOutput)
	cfg := &config.Config{
		Width:           c.Int(flagWidth),
		Height:          c.Int(flagHeight),
		Output:          output,
		Quality:         c.Int(flagQuality),
		GainMap:         c.Bool(flagGainMap),
		GainMapScale:    c.Int(flagScale),
		RotationDegrees: c.Int(flagRotate),
		MimeType:        c.String(flagMime),
		A24Header:       c.Bool(flagA24),
	}
	if cfg.MimeType == "" && !cfg.GainMap {
		cfg.MimeType = utils.MimeTypeFromPath(output)
	}
	if len(c.StringSlice(flagSize)) > 0 && output == "" {
		return nil, utils.NewConfigValidationFieldRequiredError("flags", flagOutput)
	}
	for _, size := range c.StringSlice(flagSize) {
		width, height, err := parseSize(size)
		if err != nil {
			return nil, err
		}
		ext := filepath.Ext(output)
		cfg.Sizes = append(cfg.Sizes, config.Size{
			Width:  width,
			Height: height,
			Output: fmt.Sprintf("%s_%dx%d%s", strings.TrimSuffix(output, ext), width, height, ext),
		})
	}
	if err := cfg.Validate("flags"); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseSize(size string) (int, int, error) {
	parts := strings.Split(strings.ToLower(size), "x")
	if len(parts) != 2 {
		return 0, 0, errors.Errorf("size %q is not WxH", size)
	}
	width, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, errors.Wrapf(err, "size %q", size)
	}
	height, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, errors.Wrapf(err, "size %q", size)
	}
	return width, height, nil
}

// generateAll writes every image of cfg, in parallel.
func generateAll(ctx context.Context, cfg *config.Config, out io.Writer, logger logging.Logger) error {
	jobs := cfg.Jobs()
	encoded := make([][]byte, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			data, err := generate(gctx, cfg, job)
			if err != nil {
				return errors.Wrapf(err, "generating %s", job.Output)
			}
			encoded[i] = data
			logger.Debugw("generated image",
				"output", job.Output,
				"width", job.Width,
				"height", job.Height,
				"bytes", len(data))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, job := range jobs {
		if err := writeOutput(out, job.Output, encoded[i]); err != nil {
			return err
		}
	}
	logger.Infow("generated test images", "count", len(jobs), "mime_type", cfg.MimeType)
	return nil
}

func generate(ctx context.Context, cfg *config.Config, job config.Size) ([]byte, error) {
	img, err := testimage.NewColorBlockImage(job.Width, job.Height)
	if err != nil {
		return nil, err
	}
	if cfg.RotationDegrees != 0 {
		img = testimage.RotateImage(img, cfg.RotationDegrees)
	}

	switch cfg.MimeType {
	case utils.MimeTypeJPEGR:
		gainMap, err := testimage.NewScaledGainMap(job.Width, job.Height, cfg.GainMapScale)
		if err != nil {
			return nil, err
		}
		if cfg.RotationDegrees != 0 {
			gainMap = testimage.RotateImage(gainMap, cfg.RotationDegrees)
		}
		return jpegr.Encode(img, gainMap, &jpegr.Options{Quality: cfg.Quality})
	case utils.MimeTypeJPEG:
		data, err := rimage.EncodeJPEG(img, cfg.Quality)
		if err != nil {
			return nil, err
		}
		if cfg.A24Header {
			data = testimage.CorruptHeaderForRegressionTest(data)
		}
		return data, nil
	default:
		return rimage.EncodeImage(ctx, img, cfg.MimeType)
	}
}

func diffAction(c *cli.Context, out io.Writer) error {
	if c.NArg() < 1 || c.NArg() > 2 {
		return errors.New("diff needs one image with --region, or two images")
	}
	img, err := readImage(c.Context, c.Args().Get(0))
	if err != nil {
		return err
	}

	if c.NArg() == 1 {
		if c.String(flagRegion) == "" || c.String(flagColor) == "" {
			return errors.New("diff of a single image needs --region and --color")
		}
		rect, err := parseRegion(c.String(flagRegion))
		if err != nil {
			return err
		}
		ref, err := rimage.NewColorFromHex(c.String(flagColor))
		if err != nil {
			return err
		}
		diff, err := rimage.MeanAbsoluteDiffRegion(img, rect, ref)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "mean absolute diff: %d\n", diff)
		return nil
	}

	other, err := readImage(c.Context, c.Args().Get(1))
	if err != nil {
		return err
	}
	diff, err := rimage.MeanAbsoluteDiff(img, other)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "mean absolute diff: %d\n", diff)
	if c.Bool(flagStats) {
		stats, err := rimage.DiffStatistics(img, other)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, statsTable(stats))
	}
	return nil
}

func statsTable(stats rimage.DiffStats) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Statistic", "Per channel diff"})
	for _, row := range []struct {
		name  string
		value float64
	}{
		{"mean", stats.Mean},
		{"median", stats.Median},
		{"p99", stats.P99},
		{"max", stats.Max},
	} {
		t.AppendRow(table.Row{row.name, fmt.Sprintf("%.2f", row.value)})
	}
	return t.Render()
}

func parseRegion(region string) (image.Rectangle, error) {
	parts := strings.Split(region, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, errors.Errorf("region %q is not x0,y0,x1,y1", region)
	}
	coords := make([]int, 0, 4)
	for _, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return image.Rectangle{}, errors.Wrapf(err, "region %q", region)
		}
		coords = append(coords, v)
	}
	// inverted corners are kept as given so that MeanAbsoluteDiffRegion rejects them
	return image.Rectangle{Min: image.Pt(coords[0], coords[1]), Max: image.Pt(coords[2], coords[3])}, nil
}

func printInfo(out io.Writer, data []byte) error {
	cfg, format, err := rimage.DecodeConfig(data)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "format: %s\nsize: %dx%d\nbytes: %d\n", format, cfg.Width, cfg.Height, len(data))
	if format != "jpeg" || !jpegr.HasGainMap(data) {
		return nil
	}
	img, err := jpegr.Decode(data)
	if err != nil {
		return err
	}
	md := img.Metadata
	fmt.Fprintf(out, "gain map: %dx%d\n", img.GainMap.Bounds().Dx(), img.GainMap.Bounds().Dy())
	fmt.Fprintf(out, "gain map version: %s content boost: %g-%g hdr capacity: %g-%g\n",
		md.Version, md.MinContentBoost, md.MaxContentBoost, md.HDRCapacityMin, md.HDRCapacityMax)
	return nil
}

func readImage(ctx context.Context, path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return rimage.DecodeImage(ctx, data, "")
}

func outputMimeType(flagValue, path, fallback string) string {
	if flagValue != "" {
		return flagValue
	}
	if mimeType := utils.MimeTypeFromPath(path); mimeType != "" {
		return mimeType
	}
	return fallback
}

func writeOutput(out io.Writer, path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s (%d bytes)\n", path, len(data))
	return nil
}
