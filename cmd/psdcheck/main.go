// psdcheck validates Photoshop (PSD) files by decoding every section and
// every layer channel.
//
// Usage:
//
//	psdcheck [-q|--quiet] [-v|--verbose] [-z|--zip] <filename> [<filename> ...]
//
// Options:
//
//	-q, --quiet    Only output errors. Exit code indicates pass/fail.
//	-v, --verbose  Print the layer and group tree of valid files.
//	-z, --zip      Decode ZIP compressed channels instead of reporting them.
//	-h, --help     Show this help message.
//	--version      Show version information.
//
// Exit codes:
//
//	0: All files valid
//	1: One or more files invalid
//	2: Error (file not found, etc.)
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mrjoshuak/go-psd/psd"
)

const version = "1.0.0"

// ValidationIssue represents a single validation problem found in a file.
type ValidationIssue struct {
	Severity string // "error" or "warning"
	Message  string
}

// ValidationResult contains all validation results for a file.
type ValidationResult struct {
	Filename string
	Issues   []ValidationIssue
	Checks   []string // List of checks performed
	Doc      *psd.Document
}

// IsValid returns true if there are no errors (warnings are ok).
func (r *ValidationResult) IsValid() bool {
	for _, issue := range r.Issues {
		if issue.Severity == "error" {
			return false
		}
	}
	return true
}

func (r *ValidationResult) addErrorf(format string, args ...any) {
	r.Issues = append(r.Issues, ValidationIssue{Severity: "error", Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) addWarningf(format string, args ...any) {
	r.Issues = append(r.Issues, ValidationIssue{Severity: "warning", Message: fmt.Sprintf(format, args...)})
}

func main() {
	quiet := false
	verbose := false
	zip := false
	files := []string{}

	for i := 1; i < len(os.Args); i++ {
		arg := os.Args[i]
		switch arg {
		case "-q", "--quiet":
			quiet = true
		case "-v", "--verbose":
			verbose = true
		case "-z", "--zip":
			zip = true
		case "-h", "--help":
			printUsage()
			os.Exit(0)
		case "--version":
			fmt.Printf("psdcheck version %s\n", version)
			fmt.Println("Part of go-psd - Pure Go Photoshop document decoder")
			os.Exit(0)
		default:
			if strings.HasPrefix(arg, "-") {
				fmt.Fprintf(os.Stderr, "Unknown option: %s\n", arg)
				printUsage()
				os.Exit(2)
			}
			files = append(files, arg)
		}
	}

	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "Error: No input files specified")
		printUsage()
		os.Exit(2)
	}

	var opts []psd.Option
	if zip {
		opts = append(opts, psd.WithZIPDecoding())
	}

	results, errs := validateAll(context.Background(), files, opts)

	validCount := 0
	errorOccurred := false
	for i, filename := range files {
		if errs[i] != nil {
			if !quiet {
				fmt.Fprintf(os.Stderr, "%s: error: %v\n", filename, errs[i])
			}
			errorOccurred = true
			continue
		}

		result := results[i]
		if result.IsValid() {
			validCount++
		}
		switch {
		case !quiet:
			printResult(result, verbose)
		case !result.IsValid():
			for _, issue := range result.Issues {
				if issue.Severity == "error" {
					fmt.Fprintf(os.Stderr, "%s: %s\n", filename, issue.Message)
				}
			}
		}
	}

	if len(files) > 1 && !quiet {
		fmt.Printf("\nSummary: %d of %d files valid\n", validCount, len(files))
	}

	if errorOccurred {
		os.Exit(2)
	}
	if validCount < len(files) {
		os.Exit(1)
	}
	os.Exit(0)
}

func printUsage() {
	fmt.Println(`Usage: psdcheck [options] <filename> [<filename> ...]

Validate Photoshop documents by decoding every section and layer channel.

Options:
  -q, --quiet    Only output errors. Exit code indicates pass/fail.
  -v, --verbose  Print the layer and group tree of valid files.
  -z, --zip      Decode ZIP compressed channels instead of reporting them.
  -h, --help     Show this help message.
  --version      Show version information.

Exit codes:
  0: All files valid
  1: One or more files invalid
  2: Error (file not found, permission denied, etc.)

Examples:
  psdcheck design.psd                 Validate a single file
  psdcheck -q *.psd                   Validate all PSD files silently
  psdcheck -v -z design.psd           Show the layer tree, inflating ZIP data`)
}

// validateAll checks files concurrently. errs[i] is set when file i could
// not be read at all.
func validateAll(ctx context.Context, files []string, opts []psd.Option) ([]*ValidationResult, []error) {
	results := make([]*ValidationResult, len(files))
	errs := make([]error, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, filename := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			results[i], errs[i] = validateFile(filename, opts)
			return nil
		})
	}
	_ = g.Wait()
	return results, errs
}

// validateFile validates a single PSD file and returns the results.
func validateFile(filename string, opts []psd.Option) (*ValidationResult, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	result := &ValidationResult{Filename: filename}

	result.Checks = append(result.Checks, "structure")
	doc, err := psd.Decode(data, opts...)
	if err != nil {
		result.addErrorf("%s", describe(err))
		return result, nil
	}
	result.Doc = doc

	result.Checks = append(result.Checks, "layer channels")
	for i, l := range doc.Layers() {
		for _, kind := range l.Channels() {
			p, _ := l.Channel(kind)
			if !p.HasData() {
				continue
			}
			if _, err := p.Decode(); err != nil {
				if errors.Is(err, psd.ErrUnsupportedCompression) {
					result.addWarningf("layer %d %q channel %s: %s data not decoded (use --zip)", i, l.Name, kind, p.Compression())
					continue
				}
				result.addErrorf("layer %d %q channel %s: %v", i, l.Name, kind, err)
			}
		}
	}

	result.Checks = append(result.Checks, "groups")
	n := len(doc.Layers())
	for _, id := range doc.GroupIDs() {
		g := doc.Groups()[id]
		if g.Start < 0 || g.End > n || g.Start > g.End {
			result.addErrorf("group %d %q has range [%d, %d) outside %d layers", id, g.Name, g.Start, g.End, n)
		}
	}

	result.Checks = append(result.Checks, "resources")
	for _, res := range doc.Resources() {
		var err error
		switch res.ID {
		case psd.ResourceResolutionInfo:
			_, err = res.Resolution()
		case psd.ResourceICCProfile:
			_, err = res.ICCProfile()
		case psd.ResourceThumbnail:
			var th *psd.Thumbnail
			if th, err = res.Thumbnail(); err == nil && th.Format == 1 {
				_, err = th.Image()
			}
		}
		if err != nil {
			result.addWarningf("resource %d: %v", res.ID, err)
		}
	}

	return result, nil
}

// describe names the failing section of a decode error.
func describe(err error) string {
	var (
		he *psd.HeaderError
		le *psd.LayerError
		ie *psd.ImageError
		re *psd.ResourceError
	)
	switch {
	case errors.As(err, &he):
		return fmt.Sprintf("header (%s): %v", he.Field, he.Err)
	case errors.As(err, &le):
		if le.Index < 0 {
			return fmt.Sprintf("layer section: %v", le.Err)
		}
		return fmt.Sprintf("layer record %d: %v", le.Index, le.Err)
	case errors.As(err, &ie):
		return fmt.Sprintf("image data: %v", ie.Err)
	case errors.As(err, &re):
		return fmt.Sprintf("image resource at offset %d: %v", re.Offset, re.Err)
	}
	return err.Error()
}

func printResult(result *ValidationResult, verbose bool) {
	if result.IsValid() {
		fmt.Printf("%s: OK\n", result.Filename)
	} else {
		fmt.Printf("%s: INVALID\n", result.Filename)
	}
	for _, issue := range result.Issues {
		fmt.Printf("  [%s] %s\n", strings.ToUpper(issue.Severity), issue.Message)
	}
	if len(result.Issues) > 0 {
		fmt.Printf("  Checks performed: %s\n", strings.Join(result.Checks, ", "))
	}

	if verbose && result.Doc != nil {
		printTree(result.Doc)
	}
}

// printTree lists layers from the top of the stack down, indented by group
// depth.
func printTree(doc *psd.Document) {
	h := doc.Header()
	fmt.Printf("  %dx%d %s %d-bit, %d channels, image data %s\n",
		h.Width, h.Height, h.ColorMode, h.Depth, h.Channels, doc.Compression())

	groups := doc.Groups()
	depth := func(parent uint32) int {
		d := 0
		for parent != 0 {
			d++
			parent = groups[parent].ParentID
		}
		return d
	}

	layers := doc.Layers()
	for i := len(layers) - 1; i >= 0; i-- {
		l := layers[i]
		vis := " "
		if !l.Visible {
			vis = "h"
		}
		path := ""
		for p := l.ParentID; p != 0; p = groups[p].ParentID {
			path = groups[p].Name + "/" + path
		}
		fmt.Printf("  %s %3d %s%s%s  %dx%d@%d,%d op=%d %s\n",
			vis, i, strings.Repeat("  ", depth(l.ParentID)), path, l.Name,
			l.Width(), l.Height(), l.Rect.Left, l.Rect.Top, l.Opacity, l.BlendMode)
	}
}
