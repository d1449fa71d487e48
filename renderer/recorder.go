package renderer

import (
	"fmt"
)

// Recorder is a Context that keeps everything in CPU memory and remembers what happened to it. It backs the
// headless mode of the command line tool and the tests.
type Recorder struct {
	buffers map[Buffer]*recordedBuffer
	next    Buffer

	Uploads []UploadEvent
	Draws   []DrawEvent
}

type recordedBuffer struct {
	kind BufferKind
	data []byte
}

type UploadEvent struct {
	Buffer Buffer
	Kind   BufferKind
	Size   int
}

type DrawEvent struct {
	Pass int
	Call DrawCall
}

func NewRecorder() *Recorder {
	return &Recorder{
		buffers: map[Buffer]*recordedBuffer{},
		next:    1,
	}
}

func (r *Recorder) AllocateBuffer(kind BufferKind, size int) (Buffer, error) {
	if size <= 0 {
		return 0, fmt.Errorf("cannot allocate %s buffer of %d bytes", kind, size)
	}
	b := r.next
	r.next++
	r.buffers[b] = &recordedBuffer{kind: kind, data: make([]byte, size)}
	return b, nil
}

func (r *Recorder) Upload(buf Buffer, payload []byte) error {
	rb, ok := r.buffers[buf]
	if !ok {
		return fmt.Errorf("upload to unknown buffer %d", buf)
	}
	if len(payload) != len(rb.data) {
		return fmt.Errorf("cant upload %d bytes into %s buffer of %d bytes", len(payload), rb.kind, len(rb.data))
	}
	copy(rb.data, payload)
	r.Uploads = append(r.Uploads, UploadEvent{Buffer: buf, Kind: rb.kind, Size: len(payload)})
	return nil
}

func (r *Recorder) DrawIndexed(pass int, call DrawCall) error {
	for _, b := range []Buffer{call.Positions, call.Normals, call.Colors, call.Indices} {
		if _, ok := r.buffers[b]; !ok {
			return fmt.Errorf("draw references unknown buffer %d", b)
		}
	}
	r.Draws = append(r.Draws, DrawEvent{Pass: pass, Call: call})
	return nil
}

func (r *Recorder) ReleaseBuffer(buf Buffer) {
	delete(r.buffers, buf)
}

// Contents returns a copy of the bytes last uploaded to buf.
func (r *Recorder) Contents(buf Buffer) ([]byte, bool) {
	rb, ok := r.buffers[buf]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), rb.data...), true
}

// Live reports the number of buffers that have been allocated and not released.
func (r *Recorder) Live() int {
	return len(r.buffers)
}

// UploadsOf counts the uploads that went to buffers of the given kind.
func (r *Recorder) UploadsOf(kind BufferKind) int {
	n := 0
	for _, u := range r.Uploads {
		if u.Kind == kind {
			n++
		}
	}
	return n
}
