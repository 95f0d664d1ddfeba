package recognition

import (
	"context"
	"io"
)

// singleFrame adapts one already-captured image to the FrameSource contract
// used by the multi-frame camera path.
type singleFrame struct {
	image []byte
	used  bool
}

// SingleFrame wraps an uploaded image as a one-shot frame source.
func SingleFrame(image []byte) FrameSource {
	return &singleFrame{image: image}
}

func (s *singleFrame) Next(_ context.Context) ([]byte, error) {
	if s.used {
		return nil, io.EOF
	}
	s.used = true
	return s.image, nil
}

func (s *singleFrame) Close() error { return nil }
