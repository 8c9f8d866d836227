package bridge

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"testing/iotest"

	"github.com/pes18fan/amai/metadata"
)

func newTestHandler(t *testing.T, files ...string) (*Handler, string) {
	t.Helper()

	dir := t.TempDir()
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	h := NewHandler(dir, nil)
	h.ReadMetadata = func(path string) (metadata.Metadata, error) {
		if path == "" {
			return metadata.Metadata{Art: metadata.EmptyImage()}, nil
		}
		if filepath.Base(path) == "broken.mp3" {
			return metadata.Metadata{}, errors.New("unreadable")
		}
		return metadata.Metadata{Title: "Title of " + filepath.Base(path), Art: []byte{1, 2, 3}}, nil
	}
	return h, dir
}

func TestHandleGetMusicFiles(t *testing.T) {
	h, dir := newTestHandler(t, "b.ogg", "a.mp3", "c.txt")

	resp := h.Handle(context.Background(), Request{
		ID:        7,
		Resource:  ResourceGetMusicFiles,
		Operation: OperationCreate,
	})
	if !resp.Successful || resp.ID != 7 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Blob != nil {
		t.Fatalf("music files answer travels in the message, not the blob")
	}

	var msg MusicFilesResponse
	if err := msg.Unmarshal(resp.Message); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.MusicFolder != dir {
		t.Fatalf("unexpected folder: %q", msg.MusicFolder)
	}
	want := []string{filepath.Join(dir, "a.mp3"), filepath.Join(dir, "b.ogg")}
	if len(msg.MusicFiles) != len(want) || msg.MusicFiles[0] != want[0] || msg.MusicFiles[1] != want[1] {
		t.Fatalf("unexpected files: %v", msg.MusicFiles)
	}
}

func TestHandleGetMusicFilesMissingDir(t *testing.T) {
	h := NewHandler(filepath.Join(t.TempDir(), "missing"), nil)

	resp := h.Handle(context.Background(), Request{ID: 1, Resource: ResourceGetMusicFiles, Operation: OperationCreate})
	if resp.Successful || resp.Message != nil || resp.ID != 1 {
		t.Fatalf("expected default response, got %+v", resp)
	}
}

func TestHandleGetMetadata(t *testing.T) {
	h, dir := newTestHandler(t)

	req := MetadataRequest{Path: filepath.Join(dir, "song.mp3")}
	resp := h.Handle(context.Background(), Request{
		ID:        3,
		Resource:  ResourceGetMetadata,
		Operation: OperationRead,
		Message:   req.Marshal(),
	})
	if !resp.Successful || resp.ID != 3 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Message != nil {
		t.Fatalf("metadata answer travels in the blob, not the message")
	}

	var out MetadataResponse
	if err := out.Unmarshal(resp.Blob); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Title != "Title of song.mp3" || !bytes.Equal(out.Art, []byte{1, 2, 3}) {
		t.Fatalf("unexpected metadata: %+v", out)
	}
}

func TestHandleGetMetadataEmptyPath(t *testing.T) {
	h, _ := newTestHandler(t)

	resp := h.Handle(context.Background(), Request{Resource: ResourceGetMetadata, Operation: OperationRead})
	if !resp.Successful {
		t.Fatalf("expected success for empty path")
	}
	var out MetadataResponse
	if err := out.Unmarshal(resp.Blob); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Title != "" || !bytes.Equal(out.Art, metadata.EmptyImage()) {
		t.Fatalf("expected empty title and fallback art, got %+v", out)
	}
}

func TestHandleDefaults(t *testing.T) {
	h, dir := newTestHandler(t, "a.mp3")
	broken := MetadataRequest{Path: filepath.Join(dir, "broken.mp3")}

	tests := []struct {
		name string
		req  Request
	}{
		{name: "unknown resource", req: Request{ID: 9, Resource: Resource(42), Operation: OperationRead}},
		{name: "files with read", req: Request{ID: 9, Resource: ResourceGetMusicFiles, Operation: OperationRead}},
		{name: "metadata with delete", req: Request{ID: 9, Resource: ResourceGetMetadata, Operation: OperationDelete}},
		{name: "metadata bad payload", req: Request{ID: 9, Resource: ResourceGetMetadata, Operation: OperationRead, Message: []byte{0xff}}},
		{name: "metadata read error", req: Request{ID: 9, Resource: ResourceGetMetadata, Operation: OperationRead, Message: broken.Marshal()}},
	}
	for _, tc := range tests {
		resp := h.Handle(context.Background(), tc.req)
		if resp.ID != 9 || resp.Successful || resp.Message != nil || resp.Blob != nil {
			t.Fatalf("%s: expected default response, got %+v", tc.name, resp)
		}
	}
}

func TestHandleCanceledContext(t *testing.T) {
	h, _ := newTestHandler(t, "a.mp3")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp := h.Handle(ctx, Request{ID: 4, Resource: ResourceGetMusicFiles, Operation: OperationCreate})
	if resp.Successful || resp.ID != 4 {
		t.Fatalf("expected default response on canceled context, got %+v", resp)
	}
}

func TestServeAnswersInOrder(t *testing.T) {
	h, dir := newTestHandler(t, "a.mp3")

	var in bytes.Buffer
	meta := MetadataRequest{Path: filepath.Join(dir, "a.mp3")}
	for _, req := range []Request{
		{ID: 1, Resource: ResourceGetMusicFiles, Operation: OperationCreate},
		{ID: 2, Resource: ResourceGetMetadata, Operation: OperationRead, Message: meta.Marshal()},
		{ID: 3, Resource: Resource(99)},
	} {
		if err := WriteFrame(&in, EncodeRequest(req)); err != nil {
			t.Fatalf("write request: %v", err)
		}
	}

	var out bytes.Buffer
	if err := Serve(context.Background(), &in, &out, h); err != nil {
		t.Fatalf("serve: %v", err)
	}

	reader := bufio.NewReader(&out)
	wantSuccess := []bool{true, true, false}
	for i, want := range wantSuccess {
		frame, err := ReadFrame(reader)
		if err != nil {
			t.Fatalf("read response %d: %v", i, err)
		}
		resp, err := DecodeResponse(frame)
		if err != nil {
			t.Fatalf("decode response %d: %v", i, err)
		}
		if resp.ID != uint64(i+1) || resp.Successful != want {
			t.Fatalf("response %d: unexpected %+v", i, resp)
		}
	}
	if _, err := ReadFrame(reader); !errors.Is(err, io.EOF) {
		t.Fatalf("expected exactly three responses, got %v", err)
	}
}

func TestServeTruncatedFrame(t *testing.T) {
	h, _ := newTestHandler(t)

	var in bytes.Buffer
	if err := WriteFrame(&in, EncodeRequest(Request{ID: 1})); err != nil {
		t.Fatalf("write: %v", err)
	}
	truncated := in.Bytes()[:in.Len()-1]

	if err := Serve(context.Background(), bytes.NewReader(truncated), &bytes.Buffer{}, h); err == nil {
		t.Fatalf("expected error for truncated frame")
	}
}

func TestServeAnswersUndecodableRequest(t *testing.T) {
	h, _ := newTestHandler(t, "a.mp3")

	var in bytes.Buffer
	// field 1 varint tag with its value missing
	if err := WriteFrame(&in, []byte{0x08}); err != nil {
		t.Fatalf("write bad request: %v", err)
	}
	if err := WriteFrame(&in, EncodeRequest(Request{ID: 7, Resource: ResourceGetMusicFiles, Operation: OperationCreate})); err != nil {
		t.Fatalf("write request: %v", err)
	}

	var out bytes.Buffer
	if err := Serve(context.Background(), &in, &out, h); err != nil {
		t.Fatalf("serve: %v", err)
	}

	reader := bufio.NewReader(&out)
	var got []Response
	for {
		frame, err := ReadFrame(reader)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("read response: %v", err)
		}
		resp, err := DecodeResponse(frame)
		if err != nil {
			t.Fatalf("decode response: %v", err)
		}
		got = append(got, resp)
	}

	if len(got) != 2 {
		t.Fatalf("expected two responses, got %d", len(got))
	}
	if got[0].Successful || len(got[0].Message) != 0 || len(got[0].Blob) != 0 {
		t.Fatalf("bad request should get the default response, got %+v", got[0])
	}
	if got[1].ID != 7 || !got[1].Successful {
		t.Fatalf("valid request after a bad one went unanswered: %+v", got[1])
	}
}

func TestReadFrameKeepsReadError(t *testing.T) {
	errDisk := errors.New("disk on fire")
	r := bufio.NewReader(io.MultiReader(bytes.NewReader([]byte{5, 1}), iotest.ErrReader(errDisk)))

	if _, err := ReadFrame(r); !errors.Is(err, errDisk) {
		t.Fatalf("expected underlying read error, got %v", err)
	}
}

func TestReadFrameEmptyBodyIsTruncation(t *testing.T) {
	r := bufio.NewReader(bytes.NewReader([]byte{3}))

	if _, err := ReadFrame(r); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected io.ErrUnexpectedEOF, got %v", err)
	}
}

func TestReadFrameTooLarge(t *testing.T) {
	var in bytes.Buffer
	in.Write([]byte{0xff, 0xff, 0xff, 0xff, 0x7f})

	if _, err := ReadFrame(bufio.NewReader(&in)); !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("expected ErrFrameTooLarge, got %v", err)
	}
}

func TestRequestSurvivesEncoding(t *testing.T) {
	req := Request{
		ID:        1 << 40,
		Resource:  ResourceGetMetadata,
		Operation: OperationRead,
		Message:   []byte("payload"),
		Blob:      []byte{},
	}

	var got Request
	if err := got.unmarshal(EncodeRequest(req)); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != req.ID || got.Resource != req.Resource || got.Operation != req.Operation {
		t.Fatalf("header mismatch: %+v", got)
	}
	if string(got.Message) != "payload" {
		t.Fatalf("unexpected message: %q", got.Message)
	}
	if got.Blob == nil || len(got.Blob) != 0 {
		t.Fatalf("present but empty blob should stay present, got %#v", got.Blob)
	}
}

func TestUnmarshalSkipsUnknownFields(t *testing.T) {
	known := MetadataRequest{Path: "/music/a.mp3"}.Marshal()
	// field 15, varint 1
	extra := append([]byte{15 << 3, 1}, known...)

	var got MetadataRequest
	if err := got.Unmarshal(extra); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Path != "/music/a.mp3" {
		t.Fatalf("unexpected path: %q", got.Path)
	}
}
