package exporter

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"fielddash/pkg/contracts/domain"
)

// NoticeImagesUnavailable is shown instead of the image download when no
// rasterizer can run on this host.
const NoticeImagesUnavailable = "A exportação de imagens não está disponível neste servidor. Baixe os gráficos em HTML ou use o botão de download do próprio gráfico."

// NoticeNoCharts is shown instead of the image download when every chart of
// the selection is empty.
const NoticeNoCharts = "Nenhum gráfico com dados no período selecionado. Ajuste os filtros para exportar imagens."

// Rasterizer turns a chart specification into PNG bytes
type Rasterizer interface {
	Name() string
	// Available reports whether the rasterizer can run on this host
	Available() bool
	Rasterize(ctx context.Context, spec *domain.ChartSpec) ([]byte, error)
}

// ImageResult is the outcome of ImageBundle. Either Archive is set, or
// Available is false and Notice explains why no archive was produced.
type ImageResult struct {
	Available bool
	Archive   []byte
	Files     []string
	Notice    string
}

// ImageBundle rasterizes every non-empty chart and zips them as
// grafico_<n>.png. An unavailable rasterizer, or a selection with nothing to
// draw, yields a notice, not an error.
func ImageBundle(ctx context.Context, r Rasterizer, charts []*domain.ChartSpec, limit int) (*ImageResult, error) {
	if r == nil || !r.Available() {
		return &ImageResult{Notice: NoticeImagesUnavailable}, nil
	}

	var drawable []*domain.ChartSpec
	for _, c := range charts {
		if !c.Empty() {
			drawable = append(drawable, c)
		}
	}
	if len(drawable) == 0 {
		return &ImageResult{Notice: NoticeNoCharts}, nil
	}

	images := make([][]byte, len(drawable))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, c := range drawable {
		g.Go(func() error {
			img, err := r.Rasterize(gctx, c)
			if err != nil {
				return fmt.Errorf("%s: rasterize chart %d: %w", r.Name(), i+1, err)
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := make([]string, 0, len(images))
	for i, img := range images {
		name := fmt.Sprintf("grafico_%d.png", i+1)
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("zip %s: %w", name, err)
		}
		if _, err := w.Write(img); err != nil {
			return nil, fmt.Errorf("zip %s: %w", name, err)
		}
		files = append(files, name)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}

	return &ImageResult{Available: true, Archive: buf.Bytes(), Files: files}, nil
}

// Unavailable is a rasterizer that never runs, used when image export is disabled
type Unavailable struct{}

func (Unavailable) Name() string    { return "none" }
func (Unavailable) Available() bool { return false }

func (Unavailable) Rasterize(context.Context, *domain.ChartSpec) ([]byte, error) {
	return nil, fmt.Errorf("image export disabled")
}

// FirstAvailable returns the first rasterizer able to run, or Unavailable
func FirstAvailable(candidates ...Rasterizer) Rasterizer {
	for _, r := range candidates {
		if r != nil && r.Available() {
			return r
		}
	}
	return Unavailable{}
}
