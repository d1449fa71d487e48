package renderer

import (
	"errors"
	"testing"
)

// stubEntity allocates a single index buffer and draws it.
type stubEntity struct {
	name     string
	initErr  error
	ctx      Context
	buf      Buffer
	passes   []int
	released bool
}

func (s *stubEntity) Name() string { return s.name }

func (s *stubEntity) Initialize(ctx Context) error {
	if s.initErr != nil {
		return s.initErr
	}
	buf, err := ctx.AllocateBuffer(INDEX_BUFFER, 12)
	if err != nil {
		return err
	}
	s.ctx = ctx
	s.buf = buf
	return ctx.Upload(buf, make([]byte, 12))
}

func (s *stubEntity) RenderPass(pass int) error {
	s.passes = append(s.passes, pass)
	return s.ctx.DrawIndexed(pass, DrawCall{Positions: s.buf, Normals: s.buf, Colors: s.buf, Indices: s.buf, IndexCount: 3})
}

func (s *stubEntity) Release() {
	s.released = true
	s.ctx.ReleaseBuffer(s.buf)
}

func TestSceneAddOnlyInitialized(t *testing.T) {
	rec := NewRecorder()
	s := NewScene(rec)
	good := &stubEntity{name: "good"}
	bad := &stubEntity{name: "bad", initErr: errors.New("invalid shape")}

	if err := s.Add(good); err != nil {
		t.Fatalf("Add(good): %v", err)
	}
	if err := s.Add(bad); err == nil {
		t.Errorf("Add(bad) should fail")
	}
	if s.Len() != 1 {
		t.Errorf("scene should hold 1 entity, got %d", s.Len())
	}
	if _, err := s.Find("bad"); err == nil {
		t.Errorf("failed entity must not be part of the scene")
	}
	if err := s.Add(&stubEntity{name: "good"}); err == nil {
		t.Errorf("duplicate names should be rejected")
	}
}

func TestSceneRenderFrame(t *testing.T) {
	rec := NewRecorder()
	s := NewScene(rec)
	a := &stubEntity{name: "a"}
	b := &stubEntity{name: "b"}
	for _, e := range []*stubEntity{a, b} {
		if err := s.Add(e); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.RenderFrame(2); err != nil {
		t.Fatal(err)
	}
	if len(rec.Draws) != 4 {
		t.Fatalf("expected 4 draws, got %d", len(rec.Draws))
	}
	wantPasses := []int{0, 0, 1, 1}
	for i, d := range rec.Draws {
		if d.Pass != wantPasses[i] {
			t.Errorf("draw %d in pass %d, want %d", i, d.Pass, wantPasses[i])
		}
	}
	if len(a.passes) != 2 || len(b.passes) != 2 {
		t.Errorf("each entity should render twice: %v %v", a.passes, b.passes)
	}
}

func TestSceneRemoveAndClear(t *testing.T) {
	rec := NewRecorder()
	s := NewScene(rec)
	a := &stubEntity{name: "a"}
	b := &stubEntity{name: "b"}
	_ = s.Add(a)
	_ = s.Add(b)

	if err := s.Remove("a"); err != nil {
		t.Fatal(err)
	}
	if !a.released || rec.Live() != 1 {
		t.Errorf("removed entity should release its buffer")
	}
	if err := s.Remove("a"); err == nil {
		t.Errorf("removing twice should fail")
	}
	s.Clear()
	if !b.released || s.Len() != 0 || rec.Live() != 0 {
		t.Errorf("clear should release everything")
	}
}

func TestRecorderRejectsMismatchedUpload(t *testing.T) {
	rec := NewRecorder()
	buf, err := rec.AllocateBuffer(COLOR_BUFFER, 16)
	if err != nil {
		t.Fatal(err)
	}
	if err := rec.Upload(buf, make([]byte, 8)); err == nil {
		t.Errorf("upload of the wrong size should fail")
	}
	if err := rec.Upload(Buffer(99), make([]byte, 16)); err == nil {
		t.Errorf("upload to an unknown buffer should fail")
	}
	if _, err := rec.AllocateBuffer(COLOR_BUFFER, 0); err == nil {
		t.Errorf("empty buffers should be rejected")
	}
	if err := rec.DrawIndexed(0, DrawCall{Positions: buf}); err == nil {
		t.Errorf("draw with unknown buffers should fail")
	}
}

func TestBufferUsage(t *testing.T) {
	if bufferUsage(INDEX_BUFFER) == bufferUsage(POSITION_BUFFER) {
		t.Errorf("index and vertex buffers need different usage flags")
	}
	if bufferUsage(COLOR_BUFFER) != bufferUsage(NORMAL_BUFFER) {
		t.Errorf("all vertex streams share the same usage")
	}
}
