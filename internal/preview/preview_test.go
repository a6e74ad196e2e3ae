package preview

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

func testImageBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 100, G: 100, B: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	err := imaging.Encode(&buf, img, imaging.PNG)
	require.NoError(t, err)

	return buf.Bytes()
}

func TestInspect(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantW   int
		wantH   int
		wantErr bool
	}{
		{
			name:  "OK png",
			data:  testImageBytes(t, 200, 100),
			wantW: 200,
			wantH: 100,
		},
		{
			name:    "empty input",
			data:    nil,
			wantErr: true,
		},
		{
			name:    "broken image",
			data:    []byte("not-an-image"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := Inspect(tt.data)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantW, w)
			require.Equal(t, tt.wantH, h)
		})
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		side    int
		wantErr bool
	}{
		{
			name: "OK preview",
			data: testImageBytes(t, 640, 480),
			side: 256,
		},
		{
			name:    "empty input",
			data:    nil,
			side:    256,
			wantErr: true,
		},
		{
			name:    "broken image",
			data:    []byte("not-an-image"),
			side:    256,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, size, err := Render(tt.data, tt.side)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Greater(t, size, int64(0))

			thumb, err := imaging.Decode(r)
			require.NoError(t, err)
			require.Equal(t, tt.side, thumb.Bounds().Dx())
			require.Equal(t, tt.side, thumb.Bounds().Dy())
		})
	}
}
