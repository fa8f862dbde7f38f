package pipeline

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"gocv.io/x/gocv"

	"pixelprobe/internal/logger"
)

// Loader turns encoded images into sample buffers for the histogram engine.
// Decoding goes through OpenCV; the returned slice is owned by the caller
// and all Mats are released before return.
type Loader struct {
	logger logger.Logger
}

func NewLoader(log logger.Logger) *Loader {
	return &Loader{logger: log}
}

// SamplesFromReader reads one encoded image from r and extracts its
// grayscale pixel intensities.
func (l *Loader) SamplesFromReader(r io.Reader) ([]float64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}
	return l.SamplesFromBytes(data)
}

// SamplesFromBytes decodes data, converts it to single-channel grayscale and
// flattens the pixel intensities row-major into a sample buffer.
func (l *Loader) SamplesFromBytes(data []byte) ([]float64, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}

	if cfg, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		l.logger.Debug("ImageLoader", "loading image", map[string]interface{}{
			"format":     format,
			"width":      cfg.Width,
			"height":     cfg.Height,
			"size_bytes": len(data),
		})
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, fmt.Errorf("decoded image is empty")
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	rows := gray.Rows()
	cols := gray.Cols()
	samples := make([]float64, 0, rows*cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			samples = append(samples, float64(gray.GetUCharAt(y, x)))
		}
	}

	return samples, nil
}

// SamplesFromImage extracts grayscale intensities from an already decoded
// image without going through OpenCV.
func SamplesFromImage(img image.Image) ([]float64, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}

	bounds := img.Bounds()
	samples := make([]float64, 0, bounds.Dx()*bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			samples = append(samples, float64(gray.Y))
		}
	}

	return samples, nil
}
