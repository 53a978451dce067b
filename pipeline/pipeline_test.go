package pipeline

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/getcharzp/go-saliency"
	"github.com/getcharzp/go-saliency/colormap"
	"github.com/getcharzp/go-saliency/condition"
	"github.com/getcharzp/go-saliency/heatmap"
	"github.com/getcharzp/go-saliency/overlay"
	"github.com/getcharzp/go-saliency/preprocess"
)

// constantModel 返回 64x64, 值为 0.5 的显著性数据, 并记录收到的条件
func constantModel(t *testing.T, got *condition.Vector) ModelFunc {
	return func(input *preprocess.Input, cond condition.Vector) (*heatmap.SaliencyMap, error) {
		if len(input.Data) != preprocess.Channels*preprocess.InputSize*preprocess.InputSize {
			t.Errorf("输入长度 = %d", len(input.Data))
		}
		if got != nil {
			*got = cond
		}
		data := make([]float32, 64*64)
		for i := range data {
			data[i] = 0.5
		}
		return heatmap.NewSaliencyMap(data, 1, 64, 64)
	}
}

func writeImage(t *testing.T, dir, name string, w, h int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func readPNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	return img
}

func rgb(c color.Color) [3]uint8 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return [3]uint8{n.R, n.G, n.B}
}

func TestPipeline_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	origColor := color.RGBA{R: 40, G: 90, B: 160, A: 255}
	imgPath := writeImage(t, dir, "photo.png", 100, 50, origColor)

	var gotCond condition.Vector
	p := New(constantModel(t, &gotCond), Options{OutputDir: dir})

	res, err := p.Predict(imgPath, condition.ECommerce)
	if err != nil {
		t.Fatalf("推理失败: %v", err)
	}
	if gotCond != (condition.Vector{0, 0, 1, 0}) {
		t.Errorf("条件向量 = %v", gotCond)
	}
	if res.OrigSize != image.Pt(100, 50) {
		t.Errorf("OrigSize = %v", res.OrigSize)
	}
	if res.HeatmapPath != filepath.Join(dir, "photo_saliencymap.png") {
		t.Errorf("HeatmapPath = %s", res.HeatmapPath)
	}
	if res.OverlayPath != filepath.Join(dir, "photo_overlay.png") {
		t.Errorf("OverlayPath = %s", res.OverlayPath)
	}

	heat := readPNG(t, res.HeatmapPath)
	over := readPNG(t, res.OverlayPath)
	for name, img := range map[string]image.Image{"heatmap": heat, "overlay": over} {
		if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 50 {
			t.Fatalf("%s 尺寸 = %v, 期望 100x50", name, img.Bounds())
		}
	}

	// 常量数据 → 热力图为单一颜色
	hot := colormap.Hot.Index(0)
	wantHeat := [3]uint8{hot.R, hot.G, hot.B}
	j := colormap.Jet.Index(overlay.Encoding.Intensity(hot))
	wantOverlay := [3]uint8{
		overlay.Blend(origColor.R, j.R),
		overlay.Blend(origColor.G, j.G),
		overlay.Blend(origColor.B, j.B),
	}
	for y := 0; y < 50; y++ {
		for x := 0; x < 100; x++ {
			if got := rgb(heat.At(x, y)); got != wantHeat {
				t.Fatalf("heatmap (%d,%d) = %v, 期望 %v", x, y, got, wantHeat)
			}
			if got := rgb(over.At(x, y)); got != wantOverlay {
				t.Fatalf("overlay (%d,%d) = %v, 期望 %v", x, y, got, wantOverlay)
			}
		}
	}

	if err := res.Cleanup(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(res.HeatmapPath); !os.IsNotExist(err) {
		t.Error("Cleanup 后热力图仍存在")
	}
}

func TestPipeline_InvalidCondition(t *testing.T) {
	dir := t.TempDir()
	imgPath := writeImage(t, dir, "photo.png", 10, 10, color.White)

	called := false
	model := ModelFunc(func(*preprocess.Input, condition.Vector) (*heatmap.SaliencyMap, error) {
		called = true
		return nil, nil
	})
	_, err := New(model, Options{OutputDir: dir}).Predict(imgPath, condition.Condition(5))
	if !errors.Is(err, saliency.ErrValidation) {
		t.Fatalf("期望 ErrValidation, 得到 %v", err)
	}
	if called {
		t.Error("条件非法时不应调用模型")
	}
}

func TestPipeline_LoadError(t *testing.T) {
	p := New(constantModel(t, nil), Options{OutputDir: t.TempDir()})
	if _, err := p.Predict(filepath.Join(t.TempDir(), "missing.jpg"), condition.UI); !errors.Is(err, saliency.ErrLoad) {
		t.Fatalf("期望 ErrLoad, 得到 %v", err)
	}
}

func TestPipeline_ModelErrors(t *testing.T) {
	dir := t.TempDir()
	imgPath := writeImage(t, dir, "photo.png", 10, 10, color.White)

	boom := errors.New("device lost")
	failing := ModelFunc(func(*preprocess.Input, condition.Vector) (*heatmap.SaliencyMap, error) {
		return nil, boom
	})
	if _, err := New(failing, Options{OutputDir: dir}).Predict(imgPath, condition.UI); !errors.Is(err, boom) {
		t.Fatalf("期望模型错误, 得到 %v", err)
	}

	empty := ModelFunc(func(*preprocess.Input, condition.Vector) (*heatmap.SaliencyMap, error) {
		return nil, nil
	})
	if _, err := New(empty, Options{OutputDir: dir}).Predict(imgPath, condition.UI); !errors.Is(err, saliency.ErrRender) {
		t.Fatalf("期望 ErrRender, 得到 %v", err)
	}

	if _, err := New(nil, Options{OutputDir: dir}).Predict(imgPath, condition.UI); err == nil {
		t.Fatal("模型为空时应返回错误")
	}
}

func TestPipeline_NonFiniteSaliency(t *testing.T) {
	dir := t.TempDir()
	imgPath := writeImage(t, dir, "photo.png", 10, 10, color.White)

	nan := ModelFunc(func(*preprocess.Input, condition.Vector) (*heatmap.SaliencyMap, error) {
		var zero float32
		return heatmap.NewSaliencyMap([]float32{0, 1, zero / zero, 1}, 2, 2)
	})
	_, err := New(nan, Options{OutputDir: dir}).Predict(imgPath, condition.NaturalEye)
	if !errors.Is(err, saliency.ErrRender) {
		t.Fatalf("期望 ErrRender, 得到 %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "photo_saliencymap.png")); !os.IsNotExist(err) {
		t.Error("渲染失败时不应写出热力图")
	}
}

func TestOutputPaths(t *testing.T) {
	heat, over := OutputPaths("/tmp/in/cat.photo.jpg", "out", "")
	if heat != filepath.Join("out", "cat.photo_saliencymap.png") || over != filepath.Join("out", "cat.photo_overlay.png") {
		t.Errorf("paths = %s, %s", heat, over)
	}

	heat, _ = OutputPaths("cat.jpg", "", "abc")
	if heat != "abc_cat_saliencymap.png" {
		t.Errorf("带前缀路径 = %s", heat)
	}
}

func TestPipeline_ConcurrentUniqueNames(t *testing.T) {
	dir := t.TempDir()
	imgPath := writeImage(t, dir, "shared.png", 20, 12, color.Gray{Y: 100})
	p := New(constantModel(t, nil), Options{OutputDir: dir, UniqueNames: true})

	const n = 8
	var wg sync.WaitGroup
	results := make([]*Result, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = p.Predict(imgPath, condition.Condition(i%condition.Count))
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("请求 %d 失败: %v", i, errs[i])
		}
		base := filepath.Base(results[i].OverlayPath)
		if !strings.HasSuffix(base, "_shared_overlay.png") || len(base) != 32+len("_shared_overlay.png") {
			t.Errorf("文件名格式错误: %s", base)
		}
		if seen[results[i].OverlayPath] {
			t.Fatalf("文件名冲突: %s", results[i].OverlayPath)
		}
		seen[results[i].OverlayPath] = true
	}
}

type warning struct {
	component, message string
}

// recordLogger 只记录 Warning
type recordLogger struct {
	mu       sync.Mutex
	warnings []warning
}

func (l *recordLogger) Info(string, string, map[string]interface{}) {}
func (l *recordLogger) Error(string, error, map[string]interface{}) {}
func (l *recordLogger) Debug(string, string, map[string]interface{}) {}

func (l *recordLogger) Warning(component, message string, _ map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, warning{component, message})
}

func TestPipeline_CompositeErrorRemovesHeatmap(t *testing.T) {
	dir := t.TempDir()
	imagePath := writeImage(t, dir, "photo.png", 20, 10, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	outDir := filepath.Join(dir, "out")
	heatPath, overlayPath := OutputPaths(imagePath, outDir, "")

	// 叠加图路径被目录占用, 合成阶段写出失败
	if err := os.MkdirAll(overlayPath, 0755); err != nil {
		t.Fatal(err)
	}

	log := &recordLogger{}
	p := New(constantModel(t, nil), Options{OutputDir: outDir, Logger: log})
	if _, err := p.Predict(imagePath, condition.ECommerce); !errors.Is(err, saliency.ErrComposite) {
		t.Fatalf("期望 ErrComposite, 得到 %v", err)
	}
	if _, err := os.Stat(heatPath); !os.IsNotExist(err) {
		t.Errorf("合成失败后不应留下 %s", filepath.Base(heatPath))
	}

	if len(log.warnings) != 1 || log.warnings[0].component != "Pipeline" {
		t.Errorf("warnings = %+v, 期望一条覆盖提示", log.warnings)
	}
}
