// Package preview validates processed images and renders thumbnail previews for them
package preview

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

// Inspect - проверяет что вендор вернул декодируемую картинку, отдает ее размеры
func Inspect(data []byte) (int, int, error) {
	if len(data) == 0 {
		return 0, 0, errors.New("empty image passed to Inspect")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode processed image: %w", err)
	}

	bounds := img.Bounds()
	return bounds.Dx(), bounds.Dy(), nil
}

// Render - квадратный PNG-превью результата
func Render(data []byte, side int) (io.Reader, int64, error) {
	if len(data) == 0 {
		return nil, 0, errors.New("empty image passed to Render")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to DEcode image in Render: %w", err)
	}

	thumb := imaging.Thumbnail(img, side, side, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.PNG); err != nil {
		return nil, 0, fmt.Errorf("failed to ENcode preview in Render: %w", err)
	}
	return &buf, int64(buf.Len()), nil
}
