// Package bridge answers serialized requests from an embedding app with
// the same file scan and metadata logic the terminal player uses.
package bridge

import (
	"context"
	"log"

	"github.com/pes18fan/amai/library"
	"github.com/pes18fan/amai/metadata"
)

type Resource uint32

const (
	ResourceGetMusicFiles Resource = iota
	ResourceGetMetadata
)

func (r Resource) String() string {
	switch r {
	case ResourceGetMusicFiles:
		return "get_music_files"
	case ResourceGetMetadata:
		return "get_metadata"
	}
	return "unknown"
}

type Operation uint32

const (
	OperationCreate Operation = iota
	OperationRead
	OperationUpdate
	OperationDelete
)

// Request is one call from the app. Message and Blob are optional
// payloads; which one a resource reads is up to the resource.
type Request struct {
	ID        uint64
	Resource  Resource
	Operation Operation
	Message   []byte
	Blob      []byte
}

// Response is paired with its Request by ID. The zero value, apart from
// the ID, is the answer to anything the bridge does not handle.
type Response struct {
	ID         uint64
	Successful bool
	Message    []byte
	Blob       []byte
}

type Handler struct {
	// MusicDir returns the folder to scan. Resolved per request so a
	// missing directory can show up later.
	MusicDir     func() (string, error)
	Extensions   []string
	ReadMetadata func(path string) (metadata.Metadata, error)
}

func NewHandler(musicDir string, exts []string) *Handler {
	h := &Handler{
		Extensions:   exts,
		ReadMetadata: metadata.Read,
	}
	if musicDir != "" {
		h.MusicDir = func() (string, error) { return musicDir, nil }
	} else {
		h.MusicDir = library.MusicDir
	}
	return h
}

// Handle runs the function that corresponds to the request's resource.
func (h *Handler) Handle(ctx context.Context, req Request) Response {
	var resp Response
	if err := ctx.Err(); err != nil {
		return Response{ID: req.ID}
	}
	switch req.Resource {
	case ResourceGetMusicFiles:
		resp = h.handleGetMusicFiles(req)
	case ResourceGetMetadata:
		resp = h.handleGetMetadata(req)
	default:
		log.Println("unknown resource", uint32(req.Resource))
	}
	resp.ID = req.ID
	return resp
}

func (h *Handler) handleGetMusicFiles(req Request) Response {
	if req.Operation != OperationCreate {
		return Response{}
	}

	dir, err := h.MusicDir()
	if err != nil {
		log.Println("get_music_files:", err)
		return Response{}
	}
	list, err := library.Scan(dir, h.Extensions)
	if err != nil {
		log.Println("get_music_files:", err)
		return Response{}
	}

	msg := MusicFilesResponse{
		MusicFiles:  list.Paths(),
		MusicFolder: list.Folder,
	}
	return Response{
		Successful: true,
		Message:    msg.Marshal(),
	}
}

func (h *Handler) handleGetMetadata(req Request) Response {
	if req.Operation != OperationRead {
		return Response{}
	}

	var in MetadataRequest
	if err := in.Unmarshal(req.Message); err != nil {
		log.Println("get_metadata: bad request:", err)
		return Response{}
	}

	md, err := h.ReadMetadata(in.Path)
	if err != nil {
		log.Println("get_metadata:", err)
		return Response{}
	}

	out := MetadataResponse{Art: md.Art, Title: md.Title}
	return Response{
		Successful: true,
		Blob:       out.Marshal(),
	}
}
