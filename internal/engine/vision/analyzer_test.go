package vision

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/law-makers/vision-researcher/internal/engine"
	"github.com/law-makers/vision-researcher/internal/fetcher"
	"github.com/law-makers/vision-researcher/pkg/models"
)

type fakeClient struct {
	calls   int
	fail    map[int]bool
	empty   map[int]bool
	prompts []string
}

func (f *fakeClient) Describe(ctx context.Context, prompt string, data []byte) (string, error) {
	idx := f.calls
	f.calls++
	f.prompts = append(f.prompts, prompt)

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("tile is not a JPEG: %w", err)
	}
	if f.fail[idx] {
		return "", errors.New("vision service unavailable")
	}
	if f.empty[idx] {
		return "   ", nil
	}
	b := img.Bounds()
	return fmt.Sprintf("band %d: %dx%d", idx, b.Dx(), b.Dy()), nil
}

type fakeDownloader struct {
	bodies map[string][]byte
	err    error
}

func (d *fakeDownloader) Fetch(ctx context.Context, url string) (*fetcher.Result, error) {
	if d.err != nil {
		return nil, d.err
	}
	body, ok := d.bodies[url]
	if !ok {
		return nil, fetcher.NewHTTPError(404, "404 Not Found", "")
	}
	return &fetcher.Result{URL: url, StatusCode: 200, Body: body}, nil
}

func pngImage(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		shade := uint8(y % 256)
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: shade, G: 128, B: 255 - shade, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestBands_Coverage(t *testing.T) {
	for _, height := range []int{1, 999, 1000, 1001, 2500, 3000, 12345} {
		bands := Bands(height, 1000)

		want := (height + 999) / 1000
		if len(bands) != want {
			t.Errorf("height %d: expected %d bands, got %d", height, want, len(bands))
		}

		next := 0
		for i, b := range bands {
			if b.Index != i {
				t.Errorf("height %d: band %d has index %d", height, i, b.Index)
			}
			if b.Top != next {
				t.Errorf("height %d: band %d starts at %d, expected %d", height, i, b.Top, next)
			}
			if b.Height() <= 0 || b.Height() > 1000 {
				t.Errorf("height %d: band %d has height %d", height, i, b.Height())
			}
			next = b.Bottom
		}
		if next != height {
			t.Errorf("height %d: bands end at %d", height, next)
		}
	}
}

func TestBands_Remainder(t *testing.T) {
	bands := Bands(2500, 1000)
	if bands[2].Top != 2000 || bands[2].Bottom != 2500 {
		t.Errorf("unexpected last band %+v", bands[2])
	}

	even := Bands(2000, 1000)
	if len(even) != 2 || even[1].Height() != 1000 {
		t.Errorf("evenly divisible height should end with a full band, got %+v", even)
	}

	if Bands(0, 1000) != nil || Bands(100, 0) != nil {
		t.Error("expected no bands for empty input")
	}
}

func TestAnalyze_OrderedBands(t *testing.T) {
	shot := &models.Screenshot{URL: "https://cdn.example.com/shot.png"}
	dl := &fakeDownloader{bodies: map[string][]byte{shot.URL: pngImage(t, 40, 2500)}}
	client := &fakeClient{}

	var progress []int
	a := New(dl, client, Options{})
	a.SetProgress(func(done, total int) {
		if total != 3 {
			t.Errorf("expected total 3, got %d", total)
		}
		progress = append(progress, done)
	})

	report, err := a.Analyze(context.Background(), shot, "Describe the navigation bar")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	want := "band 0: 40x1000\nband 1: 40x1000\nband 2: 40x500"
	if report.Text != want {
		t.Errorf("got report %q, want %q", report.Text, want)
	}
	if report.Width != 40 || report.Height != 2500 || report.BandCount != 3 {
		t.Errorf("unexpected dimensions %+v", report)
	}
	if len(progress) != 3 || progress[2] != 3 {
		t.Errorf("unexpected progress calls %v", progress)
	}
	for _, p := range client.prompts {
		if p != "Describe the navigation bar" {
			t.Errorf("prompt must be sent unmodified, got %q", p)
		}
	}
	for i := 1; i < len(report.Answers); i++ {
		if report.Answers[i].Band.Top <= report.Answers[i-1].Band.Top {
			t.Errorf("answers out of vertical order: %+v", report.Answers)
		}
	}
}

func TestAnalyze_FailedBandsOmitted(t *testing.T) {
	shot := &models.Screenshot{Data: pngImage(t, 10, 3200)}
	client := &fakeClient{fail: map[int]bool{1: true}, empty: map[int]bool{2: true}}

	report, err := New(nil, client, Options{}).Analyze(context.Background(), shot, "q")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if client.calls != 4 {
		t.Errorf("expected every band to be attempted, got %d calls", client.calls)
	}
	want := "band 0: 10x1000\nband 3: 10x200"
	if report.Text != want {
		t.Errorf("got %q, want %q", report.Text, want)
	}
	if len(report.Answers) != 2 || report.Answers[1].Band.Index != 3 {
		t.Errorf("unexpected answers %+v", report.Answers)
	}
}

func TestAnalyze_NoAnalysis(t *testing.T) {
	shot := &models.Screenshot{Data: pngImage(t, 10, 1500)}
	client := &fakeClient{fail: map[int]bool{0: true, 1: true}}

	_, err := New(nil, client, Options{}).Analyze(context.Background(), shot, "q")
	if !errors.Is(err, engine.ErrNoAnalysis) {
		t.Fatalf("expected NO_ANALYSIS, got %v", err)
	}
}

func TestAnalyze_DownloadFailed(t *testing.T) {
	client := &fakeClient{}

	tests := []struct {
		name string
		shot *models.Screenshot
		dl   *fakeDownloader
	}{
		{"missing", &models.Screenshot{URL: "https://cdn.example.com/missing.jpg"}, &fakeDownloader{}},
		{"network", &models.Screenshot{URL: "https://cdn.example.com/x.jpg"}, &fakeDownloader{err: errors.New("connection reset")}},
		{"not an image", &models.Screenshot{Data: []byte("<html>")}, &fakeDownloader{}},
		{"empty reference", &models.Screenshot{}, &fakeDownloader{}},
		{"nil", nil, &fakeDownloader{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.dl, client, Options{}).Analyze(context.Background(), tt.shot, "q")
			if !errors.Is(err, engine.ErrDownloadFailed) {
				t.Fatalf("expected DOWNLOAD_FAILED, got %v", err)
			}
		})
	}

	if client.calls != 0 {
		t.Errorf("vision service must not be called when the image is unavailable, got %d calls", client.calls)
	}
}

func TestAnalyze_CustomBandHeight(t *testing.T) {
	shot := &models.Screenshot{Data: pngImage(t, 8, 900)}
	client := &fakeClient{}

	report, err := New(nil, client, Options{BandHeight: 400}).Analyze(context.Background(), shot, "q")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if report.BandCount != 3 || !strings.HasSuffix(report.Text, "8x100") {
		t.Errorf("unexpected report %+v", report)
	}
}

func TestCropBand_NonSubImager(t *testing.T) {
	src := image.NewUniform(color.Black)
	img := boundedImage{Image: src, rect: image.Rect(0, 0, 5, 30)}

	tile := cropBand(img, models.Band{Top: 10, Bottom: 30})
	if tile.Bounds().Dx() != 5 || tile.Bounds().Dy() != 20 {
		t.Errorf("unexpected tile bounds %v", tile.Bounds())
	}
}

type boundedImage struct {
	image.Image
	rect image.Rectangle
}

func (b boundedImage) Bounds() image.Rectangle { return b.rect }
