package frames

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"trajconv/internal/media/probe"
)

// VideoFileName is the required container name inside a trajectory folder.
const VideoFileName = "trajectory.mp4"

// ErrNoVideoStream indicates the container opened but holds no video stream.
var ErrNoVideoStream = errors.New("no video stream in container")

// Frame is a single decoded rgb24 frame. It implements image.Image.
type Frame struct {
	Width  int
	Height int
	Pix    []byte
}

// ColorModel implements image.Image.
func (f Frame) ColorModel() color.Model { return color.NRGBAModel }

// Bounds implements image.Image.
func (f Frame) Bounds() image.Rectangle { return image.Rect(0, 0, f.Width, f.Height) }

// At implements image.Image.
func (f Frame) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return color.NRGBA{}
	}
	offset := (y*f.Width + x) * 3
	return color.NRGBA{R: f.Pix[offset], G: f.Pix[offset+1], B: f.Pix[offset+2], A: 0xff}
}

// Decoder extracts all frames of a trajectory video via ffmpeg.
type Decoder struct {
	FFmpeg  string
	FFprobe string
}

// Decode opens <dir>/trajectory.mp4 and returns every frame in decode
// order. A missing file or unopenable container is reported as an error;
// the spawned decoder process is always reaped before returning.
func (d Decoder) Decode(ctx context.Context, dir string) ([]Frame, error) {
	videoPath := filepath.Join(dir, VideoFileName)
	if _, err := os.Stat(videoPath); err != nil {
		return nil, fmt.Errorf("frames: stat video: %w", err)
	}

	result, err := probe.Inspect(ctx, d.FFprobe, videoPath)
	if err != nil {
		return nil, fmt.Errorf("frames: open container %s: %w", videoPath, err)
	}
	stream, ok := result.FirstVideoStream()
	if !ok {
		return nil, fmt.Errorf("frames: %s: %w", videoPath, ErrNoVideoStream)
	}
	if stream.Width <= 0 || stream.Height <= 0 {
		return nil, fmt.Errorf("frames: %s: invalid geometry %dx%d", videoPath, stream.Width, stream.Height)
	}

	binary := strings.TrimSpace(d.FFmpeg)
	if binary == "" {
		binary = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, binary,
		"-v", "error",
		"-nostdin",
		"-i", videoPath,
		"-map", "0:v:0",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("frames: decoder stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("frames: start decoder: %w", err)
	}

	decoded, readErr := ReadFrames(stdout, stream.Width, stream.Height, stream.FrameCount())
	waitErr := cmd.Wait()
	if readErr != nil {
		return nil, fmt.Errorf("frames: decode %s: %w", videoPath, readErr)
	}
	if waitErr != nil {
		return nil, fmt.Errorf("frames: decode %s: %w: %s", videoPath, waitErr, strings.TrimSpace(stderr.String()))
	}
	return decoded, nil
}

// ReadFrames slices a raw rgb24 stream into width*height frames until EOF.
// sizeHint preallocates the result when the frame count is known upfront;
// zero is fine. A trailing partial frame is an error.
func ReadFrames(r io.Reader, width, height, sizeHint int) ([]Frame, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame geometry %dx%d", width, height)
	}
	frameSize := width * height * 3

	if sizeHint < 0 {
		sizeHint = 0
	}
	decoded := make([]Frame, 0, sizeHint)
	for {
		pix := make([]byte, frameSize)
		n, err := io.ReadFull(r, pix)
		if errors.Is(err, io.EOF) {
			return decoded, nil
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("truncated frame: got %d of %d bytes after %d full frames", n, frameSize, len(decoded))
		}
		if err != nil {
			return nil, err
		}
		decoded = append(decoded, Frame{Width: width, Height: height, Pix: pix})
	}
}
