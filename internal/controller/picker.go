package controller

import (
	"context"
	"fmt"
	"io"
)

// Source is where a photo pick originates.
type Source int

const (
	SourceCamera Source = iota
	SourceLibrary
)

func (s Source) String() string {
	switch s {
	case SourceCamera:
		return "camera"
	case SourceLibrary:
		return "media library"
	}
	return fmt.Sprintf("Source(%d)", int(s))
}

// ImageRef is one picked image awaiting upload. Open returns the image bytes;
// it may be called at most once per upload attempt.
type ImageRef struct {
	// Name is the filename sent to the server (e.g. "photo-1.jpg").
	Name string
	// MIME is the image content type; empty defaults to image/jpeg.
	MIME string
	// Open yields the image bytes.
	Open func() (io.ReadCloser, error)
}

// Picker is the platform capability for choosing images. Each source carries
// its own permission, requested on demand. Pick returns an empty slice when
// the user cancels or selects nothing; that is not an error.
//
// Implementations wrap the device camera and media library; tests and the
// CLI substitute their own.
type Picker interface {
	RequestPermission(ctx context.Context, src Source) (bool, error)
	Pick(ctx context.Context, src Source) ([]ImageRef, error)
}
