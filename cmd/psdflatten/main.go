// psdflatten composites the layers of a Photoshop (PSD) file into a single
// image.
//
// Usage:
//
//	psdflatten [options] infile outfile
//
// Options:
//
//	-f <format>    output format (png, qoi, rgba) - default: from the outfile extension
//	-hide <name>   exclude layers with this name (repeatable)
//	-only <name>   include only layers with this name (repeatable)
//	-group <name>  include only layers inside the named group
//	-merged        write the merged image stored in the file instead of flattening
//	-blend         apply separable blend modes instead of plain alpha compositing
//	-zip           decode ZIP compressed channels
//	-zstd          compress rgba output with zstd
//	-v             verbose output
//	-version       show version information
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/xfmoulet/qoi"

	"github.com/mrjoshuak/go-psd/psd"
)

const version = "1.0.0"

// names is a repeatable string flag.
type names []string

func (n *names) String() string { return strings.Join(*n, ",") }

func (n *names) Set(v string) error {
	*n = append(*n, v)
	return nil
}

func (n names) has(name string) bool {
	for _, v := range n {
		if v == name {
			return true
		}
	}
	return false
}

type config struct {
	format  string
	hide    names
	only    names
	group   string
	merged  bool
	blend   bool
	zip     bool
	zstd    bool
	verbose bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.format, "f", "", "output format (png, qoi, rgba)")
	flag.Var(&cfg.hide, "hide", "exclude layers with this name (repeatable)")
	flag.Var(&cfg.only, "only", "include only layers with this name (repeatable)")
	flag.StringVar(&cfg.group, "group", "", "include only layers inside the named group")
	flag.BoolVar(&cfg.merged, "merged", false, "write the merged image stored in the file")
	flag.BoolVar(&cfg.blend, "blend", false, "apply separable blend modes")
	flag.BoolVar(&cfg.zip, "zip", false, "decode ZIP compressed channels")
	flag.BoolVar(&cfg.zstd, "zstd", false, "compress rgba output with zstd")
	flag.BoolVar(&cfg.verbose, "v", false, "verbose output")
	showVersion := flag.Bool("version", false, "show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: psdflatten [options] infile outfile\n\n")
		fmt.Fprintf(os.Stderr, "Composite the layers of a Photoshop document into one image.\n\n")
		fmt.Fprintf(os.Stderr, "Output formats:\n")
		fmt.Fprintf(os.Stderr, "  png   8-bit RGBA PNG\n")
		fmt.Fprintf(os.Stderr, "  qoi   Quite OK Image format\n")
		fmt.Fprintf(os.Stderr, "  rgba  raw interleaved RGBA8 rows, optionally zstd compressed\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("psdflatten version %s\n", version)
		fmt.Println("Part of go-psd - Pure Go Photoshop document decoder")
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) != 2 {
		flag.Usage()
		os.Exit(1)
	}

	if cfg.format == "" {
		cfg.format = formatFromExt(args[1])
	}
	switch cfg.format {
	case "png", "qoi", "rgba":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid output format: %q\n", cfg.format)
		fmt.Fprintf(os.Stderr, "Valid options are: png, qoi, rgba\n")
		os.Exit(1)
	}

	if err := run(args[0], args[1], cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func formatFromExt(path string) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSuffix(path, ".zst")))
	switch ext {
	case ".qoi":
		return "qoi"
	case ".rgba", ".raw":
		return "rgba"
	default:
		return "png"
	}
}

func run(inFile, outFile string, cfg config) error {
	if cfg.verbose {
		fmt.Printf("Reading file %s\n", inFile)
	}

	var opts []psd.Option
	if cfg.zip {
		opts = append(opts, psd.WithZIPDecoding())
	}
	doc, err := psd.Open(inFile, opts...)
	if err != nil {
		return fmt.Errorf("cannot decode input file: %w", err)
	}

	var img *image.NRGBA
	if cfg.merged {
		img = doc.Image()
	} else {
		filter, err := layerFilter(doc, cfg)
		if err != nil {
			return err
		}
		var fopts []psd.FlattenOption
		if cfg.blend {
			fopts = append(fopts, psd.WithBlendModes())
		}
		if img, err = doc.FlattenImage(filter, fopts...); err != nil {
			return fmt.Errorf("cannot flatten: %w", err)
		}
	}

	if cfg.verbose {
		fmt.Printf("Writing %dx%d %s to %s\n", img.Rect.Dx(), img.Rect.Dy(), cfg.format, outFile)
	}

	f, err := os.Create(outFile)
	if err != nil {
		return fmt.Errorf("cannot create output file: %w", err)
	}
	if err := encode(f, img, cfg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// layerFilter builds the Flatten predicate from the selection flags.
func layerFilter(doc *psd.Document, cfg config) (func(int, *psd.Layer) bool, error) {
	start, end := 0, len(doc.Layers())
	if cfg.group != "" {
		found := false
		for _, id := range doc.GroupIDs() {
			if g := doc.Groups()[id]; g.Name == cfg.group {
				start, end, found = g.Start, g.End, true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("no group named %q", cfg.group)
		}
	}

	return func(i int, l *psd.Layer) bool {
		if i < start || i >= end {
			return false
		}
		if cfg.hide.has(l.Name) {
			return false
		}
		if len(cfg.only) > 0 && !cfg.only.has(l.Name) {
			return false
		}
		if cfg.verbose {
			fmt.Printf("  layer %d %q\n", i, l.Name)
		}
		return true
	}, nil
}

func encode(w io.Writer, img *image.NRGBA, cfg config) error {
	switch cfg.format {
	case "qoi":
		return qoi.Encode(w, img)
	case "rgba":
		if !cfg.zstd {
			_, err := w.Write(img.Pix)
			return err
		}
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return err
		}
		if _, err := zw.Write(img.Pix); err != nil {
			zw.Close()
			return err
		}
		return zw.Close()
	default:
		return png.Encode(w, img)
	}
}
