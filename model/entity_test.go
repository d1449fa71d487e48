package model

import (
	"errors"
	"testing"

	"GPU_cylinder_mesh/renderer"
	vm "GPU_cylinder_mesh/vector_math"
)

func newInitialized(t *testing.T, p CylinderParams) (*Cylinder, *renderer.Recorder) {
	t.Helper()
	rec := renderer.NewRecorder()
	c := NewCylinder("tube", p)
	if err := c.Initialize(rec); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return c, rec
}

func TestInitializeUploadsOnce(t *testing.T) {
	c, rec := newInitialized(t, testParams())
	if rec.Live() != int(renderer.MAX_BUFFERS) {
		t.Errorf("expected %d live buffers, got %d", renderer.MAX_BUFFERS, rec.Live())
	}
	if len(rec.Uploads) != int(renderer.MAX_BUFFERS) {
		t.Errorf("expected one upload per buffer, got %d", len(rec.Uploads))
	}
	for pass := 0; pass < 3; pass++ {
		if err := c.RenderPass(pass); err != nil {
			t.Fatalf("RenderPass(%d): %v", pass, err)
		}
	}
	if len(rec.Uploads) != int(renderer.MAX_BUFFERS) {
		t.Errorf("render passes must not upload again, got %d uploads", len(rec.Uploads))
	}
	if len(rec.Draws) != 3 {
		t.Fatalf("expected 3 draws, got %d", len(rec.Draws))
	}
	call := rec.Draws[2].Call
	if rec.Draws[2].Pass != 2 {
		t.Errorf("draw recorded for pass %d, want 2", rec.Draws[2].Pass)
	}
	if call.IndexCount != uint32(len(c.Mesh().Indices)) {
		t.Errorf("draw uses %d indices, mesh has %d", call.IndexCount, len(c.Mesh().Indices))
	}
	if call.HasState {
		t.Errorf("render state should only be attached on request")
	}
	idx, _ := rec.Contents(call.Indices)
	if len(idx) != c.Mesh().GetIdxBufferSize() {
		t.Errorf("index buffer holds %d bytes, want %d", len(idx), c.Mesh().GetIdxBufferSize())
	}
}

func TestInitializeInvalidConfig(t *testing.T) {
	p := testParams()
	p.Meridians = 2
	rec := renderer.NewRecorder()
	c := NewCylinder("broken", p)
	err := c.Initialize(rec)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if c.Mesh() != nil || c.Initialized() {
		t.Errorf("failed initialize must not leave a mesh behind")
	}
	if rec.Live() != 0 || len(rec.Uploads) != 0 {
		t.Errorf("failed initialize must not touch the context: %d buffers, %d uploads", rec.Live(), len(rec.Uploads))
	}
	if err := c.RenderPass(0); err == nil {
		t.Errorf("RenderPass on an uninitialized cylinder should fail")
	}
}

func TestInitializeTwice(t *testing.T) {
	c, rec := newInitialized(t, testParams())
	if err := c.Initialize(rec); err == nil {
		t.Errorf("second Initialize should fail")
	}
}

// failingContext refuses the n-th allocation.
type failingContext struct {
	*renderer.Recorder
	failAt int
	calls  int
}

func (f *failingContext) AllocateBuffer(kind renderer.BufferKind, size int) (renderer.Buffer, error) {
	f.calls++
	if f.calls == f.failAt {
		return 0, errors.New("out of device memory")
	}
	return f.Recorder.AllocateBuffer(kind, size)
}

func TestInitializeReleasesOnAllocationFailure(t *testing.T) {
	ctx := &failingContext{Recorder: renderer.NewRecorder(), failAt: 3}
	c := NewCylinder("tube", testParams())
	if err := c.Initialize(ctx); err == nil {
		t.Fatalf("Initialize should report the allocation failure")
	}
	if ctx.Live() != 0 {
		t.Errorf("buffers allocated before the failure must be released, %d still live", ctx.Live())
	}
	if c.Initialized() || c.Mesh() != nil {
		t.Errorf("cylinder must stay uninitialized")
	}
}

// failingUpload rejects the upload of one buffer kind. Initialize uploads in kind order, so that is the
// kind-th upload.
type failingUpload struct {
	*renderer.Recorder
	kind renderer.BufferKind
}

func (f *failingUpload) Upload(buf renderer.Buffer, payload []byte) error {
	if len(f.Recorder.Uploads) == int(f.kind) {
		return errors.New("device lost")
	}
	return f.Recorder.Upload(buf, payload)
}

func TestInitializeReleasesOnUploadFailure(t *testing.T) {
	for _, kind := range []renderer.BufferKind{renderer.POSITION_BUFFER, renderer.COLOR_BUFFER, renderer.INDEX_BUFFER} {
		t.Run(kind.String(), func(t *testing.T) {
			ctx := &failingUpload{Recorder: renderer.NewRecorder(), kind: kind}
			c := NewCylinder("tube", testParams())
			if err := c.Initialize(ctx); err == nil {
				t.Fatalf("Initialize should report the failed %s upload", kind)
			}
			if ctx.Live() != 0 {
				t.Errorf("all buffers must be released after a failed upload, %d still live", ctx.Live())
			}
			if c.Initialized() || c.Mesh() != nil {
				t.Errorf("cylinder must stay uninitialized")
			}
			if err := c.Initialize(renderer.NewRecorder()); err != nil {
				t.Errorf("cylinder should initialize on a working context afterwards: %v", err)
			}
		})
	}
}

func TestSetColorsRebuildsOnlyColors(t *testing.T) {
	c, rec := newInitialized(t, testParams())
	positions := append([]vm.Vector(nil), c.Mesh().Positions...)

	c.SetColors(red, blue)
	if rec.UploadsOf(renderer.COLOR_BUFFER) != 1 {
		t.Errorf("colors must not be uploaded before the next render pass")
	}
	if err := c.RenderPass(0); err != nil {
		t.Fatal(err)
	}
	if n := rec.UploadsOf(renderer.COLOR_BUFFER); n != 2 {
		t.Errorf("expected the color buffer to be uploaded again, got %d uploads", n)
	}
	for _, kind := range []renderer.BufferKind{renderer.POSITION_BUFFER, renderer.NORMAL_BUFFER, renderer.INDEX_BUFFER} {
		if n := rec.UploadsOf(kind); n != 1 {
			t.Errorf("%s buffer uploaded %d times, want 1", kind, n)
		}
	}
	m := c.Mesh()
	if m.Colors[0] != red || m.Colors[len(m.Colors)-1] != blue {
		t.Errorf("colors not rebuilt: first %v last %v", m.Colors[0], m.Colors[len(m.Colors)-1])
	}
	for i := range positions {
		if positions[i] != m.Positions[i] {
			t.Fatalf("SetColors changed position %d", i)
		}
	}

	colorBuf := rec.Draws[0].Call.Colors
	raw, _ := rec.Contents(colorBuf)
	uploaded, err := vm.FromBytes(raw)
	if err != nil {
		t.Fatal(err)
	}
	if uploaded[0] != red {
		t.Errorf("uploaded color buffer starts with %v, want red", uploaded[0])
	}

	if err := c.RenderPass(1); err != nil {
		t.Fatal(err)
	}
	if n := rec.UploadsOf(renderer.COLOR_BUFFER); n != 2 {
		t.Errorf("unchanged colors must not be uploaded again, got %d uploads", n)
	}
}

func TestSetColorsBeforeInitialize(t *testing.T) {
	c := NewCylinder("tube", testParams())
	c.SetColors(red, blue)
	rec := renderer.NewRecorder()
	if err := c.Initialize(rec); err != nil {
		t.Fatal(err)
	}
	if c.Mesh().Colors[0] != red {
		t.Errorf("colors set before initialize should be used by the build")
	}
	if rec.UploadsOf(renderer.COLOR_BUFFER) != 1 {
		t.Errorf("color buffer should be uploaded once")
	}
}

func TestSetShape(t *testing.T) {
	c, rec := newInitialized(t, testParams())
	if err := c.SetShape(-1, 2); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("negative length should be rejected, got %v", err)
	}
	if c.Params().Length != testParams().Length {
		t.Errorf("rejected shape must not change the parameters")
	}
	if err := c.SetShape(4, 2); err != nil {
		t.Fatal(err)
	}
	if err := c.RenderPass(0); err != nil {
		t.Fatal(err)
	}
	if n := rec.UploadsOf(renderer.POSITION_BUFFER); n != 2 {
		t.Errorf("positions should be uploaded again, got %d uploads", n)
	}
	if n := rec.UploadsOf(renderer.NORMAL_BUFFER); n != 1 {
		t.Errorf("normals do not depend on the shape, got %d uploads", n)
	}
	last := c.Mesh().Positions[c.Mesh().VertexCount()-1]
	if last[vm.Z] != 4 {
		t.Errorf("last ring should sit at z=4, got %f", last[vm.Z])
	}
}

func TestRenderStateSnapshot(t *testing.T) {
	c, rec := newInitialized(t, testParams())
	c.AttachRenderState = true
	if err := c.RenderPass(0); err != nil {
		t.Fatal(err)
	}
	call := rec.Draws[0].Call
	if !call.HasState {
		t.Fatalf("render state should be attached")
	}
	p := testParams()
	if call.State.Radius != p.Radius || call.State.Length != p.Length ||
		call.State.ColorFrom != p.ColorFrom || call.State.ColorTo != p.ColorTo {
		t.Errorf("render state %+v does not match params %+v", call.State, p)
	}

	snapshot := c.RenderState()
	c.SetColors(red, blue)
	if snapshot.ColorFrom != p.ColorFrom {
		t.Errorf("snapshot must not follow later changes")
	}
	snapshot.Radius = 100
	if c.Params().Radius != p.Radius {
		t.Errorf("changing a snapshot must not change the cylinder")
	}
}

func TestReleaseFreesBuffers(t *testing.T) {
	c, rec := newInitialized(t, testParams())
	c.Release()
	if rec.Live() != 0 {
		t.Errorf("release left %d buffers", rec.Live())
	}
	if c.Initialized() {
		t.Errorf("cylinder should be uninitialized after release")
	}
	if err := c.Initialize(rec); err != nil {
		t.Errorf("cylinder should be reusable after release: %v", err)
	}
}
