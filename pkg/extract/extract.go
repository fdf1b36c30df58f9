// Package extract walks PAC archives and decodes every entry into an
// output tree, one directory per archive.
//
// Image entries become PNG files. Main images decode in a first pass
// and stay cached for the second pass, where sub images compose onto
// the mains they name. Anything that is not an image is copied out
// byte for byte. One bad entry never stops the rest of its archive;
// failures are logged, counted and recorded in the archive's report.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/supdrewin/cratri-unpac/pkg/logging"
	"github.com/supdrewin/cratri-unpac/pkg/pac"
	"github.com/supdrewin/cratri-unpac/pkg/pgd"
	"github.com/supdrewin/cratri-unpac/pkg/util"
)

// Extractor writes decoded archives under OutDir.
type Extractor struct {
	OutDir   string
	Manifest bool
}

// Result records the outcome for one archive entry.
type Result struct {
	Name   string `json:"name"`
	Kind   string `json:"kind,omitempty"`
	Output string `json:"output,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	MD5    string `json:"md5,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Report summarizes one archive run. It doubles as the manifest body,
// so repeated runs over identical input produce identical manifests.
type Report struct {
	ID      string   `json:"id,omitempty"`
	Archive string   `json:"archive"`
	Entries []Result `json:"entries"`
	Failed  int      `json:"failed"`
	Error   string   `json:"error,omitempty"`
}

func (r *Report) add(res Result) {
	r.Entries = append(r.Entries, res)
	if res.Error != "" {
		r.Failed++
	}
}

// Failures sums entry failures across reports.
func Failures(reports []*Report) int {
	total := 0
	for _, r := range reports {
		total += r.Failed
	}
	return total
}

// ExtractDir extracts every .pac file directly under dir. A broken
// archive is reported and skipped, not fatal; only directory access
// problems and context cancellation end the scan early.
func (ex *Extractor) ExtractDir(ctx context.Context, dir string) ([]*Report, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var reports []*Report
	for _, de := range des {
		if de.IsDir() || !strings.EqualFold(filepath.Ext(de.Name()), ".pac") {
			continue
		}
		report, err := ex.ExtractArchive(ctx, filepath.Join(dir, de.Name()))
		if err != nil {
			if ctx.Err() != nil {
				return reports, ctx.Err()
			}
			slog.ErrorContext(ctx, "archive failed", "archive", de.Name(), "error", err)
			reports = append(reports, &Report{Archive: de.Name(), Failed: 1, Error: err.Error()})
			continue
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// ExtractArchive decodes one archive into OutDir/<archive name>/. Main
// images decode before any sub image is composed, whatever the entry
// order, so forward references between entries work.
func (ex *Extractor) ExtractArchive(ctx context.Context, path string) (*Report, error) {
	rc, err := pac.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	name := filepath.Base(path)
	dir := filepath.Join(ex.OutDir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	ctx = logging.AppendCtx(ctx, slog.String("archive", name))
	report := &Report{Archive: name}
	decoded := make(map[string]*image.RGBA)
	var deferred []*pac.Entry

	for _, en := range rc.Entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := safeName(en.Name); err != nil {
			report.add(failure(ctx, Result{Name: en.Name}, err))
			continue
		}
		if !strings.HasSuffix(en.Name, "pgd") {
			report.add(ex.copyRaw(ctx, dir, en))
			continue
		}

		var magic [4]byte
		if _, err := io.ReadFull(en.Open(), magic[:]); err != nil {
			report.add(failure(ctx, Result{Name: en.Name}, err))
			continue
		}
		kind, err := pgd.DetectKind(magic[:])
		if err != nil {
			report.add(failure(ctx, Result{Name: en.Name}, err))
			continue
		}
		switch kind {
		case pgd.KindMain:
			report.add(ex.decodeMain(ctx, dir, en, decoded))
		case pgd.KindSub:
			deferred = append(deferred, en)
		}
	}

	for _, en := range deferred {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report.add(ex.composeSub(ctx, dir, en, decoded))
	}

	report.ID = util.HashUUID(report)
	if ex.Manifest {
		if err := ex.writeManifest(dir, report); err != nil {
			return nil, err
		}
	}
	slog.InfoContext(ctx, "archive finished",
		"entries", len(report.Entries), "failed", report.Failed)
	return report, nil
}

func (ex *Extractor) decodeMain(ctx context.Context, dir string, en *pac.Entry, decoded map[string]*image.RGBA) Result {
	res := Result{Name: en.Name, Kind: pgd.KindMain.String()}
	img, err := pgd.DecodeMain(en.Open())
	if err != nil {
		return failure(ctx, res, err)
	}
	decoded[en.Name] = img
	return ex.writeImage(ctx, dir, res, img)
}

func (ex *Extractor) composeSub(ctx context.Context, dir string, en *pac.Entry, decoded map[string]*image.RGBA) Result {
	res := Result{Name: en.Name, Kind: pgd.KindSub.String()}
	img, err := pgd.ComposeSub(en.Open(), decoded)
	if err != nil {
		return failure(ctx, res, err)
	}
	return ex.writeImage(ctx, dir, res, img)
}

func (ex *Extractor) writeImage(ctx context.Context, dir string, res Result, img *image.RGBA) Result {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return failure(ctx, res, err)
	}
	out := pngName(res.Name)
	if err := os.WriteFile(filepath.Join(dir, out), buf.Bytes(), 0o644); err != nil {
		return failure(ctx, res, err)
	}
	res.Output = out
	res.Width = img.Bounds().Dx()
	res.Height = img.Bounds().Dy()
	res.MD5 = util.Md5ThenHex(buf.Bytes())
	slog.InfoContext(ctx, "decoded",
		"entry", res.Name, "kind", res.Kind, "output", out)
	return res
}

func (ex *Extractor) copyRaw(ctx context.Context, dir string, en *pac.Entry) Result {
	res := Result{Name: en.Name, Kind: "raw"}
	data, err := io.ReadAll(en.Open())
	if err != nil {
		return failure(ctx, res, err)
	}
	if err := os.WriteFile(filepath.Join(dir, en.Name), data, 0o644); err != nil {
		return failure(ctx, res, err)
	}
	res.Output = en.Name
	res.MD5 = util.Md5ThenHex(data)
	slog.DebugContext(ctx, "copied", "entry", en.Name, "bytes", len(data))
	return res
}

func (ex *Extractor) writeManifest(dir string, report *Report) error {
	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "manifest.json"), raw, 0o644)
}

func failure(ctx context.Context, res Result, err error) Result {
	res.Error = err.Error()
	slog.WarnContext(ctx, "entry failed",
		"entry", res.Name, "kind", res.Kind, "error", err)
	return res
}

// pngName swaps the entry's extension for .png.
func pngName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".png"
}

// safeName rejects entry names that could escape the output directory.
func safeName(name string) (string, error) {
	switch {
	case name == "", name == ".", name == "..":
	case strings.ContainsAny(name, `/\`):
	default:
		return name, nil
	}
	return "", fmt.Errorf("unsafe entry name %q", name)
}
