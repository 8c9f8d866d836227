package bridge

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"

	"google.golang.org/protobuf/encoding/protowire"
)

// Frames larger than this are rejected instead of allocated.
const MaxFrameSize = 64 << 20

var ErrFrameTooLarge = errors.New("frame too large")

// Serve reads varint length-prefixed requests from r and writes one
// length-prefixed response per request to w, in order. A request that
// cannot be decoded gets the default response. It returns nil when r is
// exhausted between frames.
func Serve(ctx context.Context, r io.Reader, w io.Writer, h *Handler) error {
	in := bufio.NewReader(r)
	out := bufio.NewWriter(w)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame, err := ReadFrame(in)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		// the frame boundary survives a bad body, so answer and move on
		var resp Response
		var req Request
		if err := req.unmarshal(frame); err != nil {
			log.Println("decode request:", err)
		} else {
			resp = h.Handle(ctx, req)
		}
		if err := WriteFrame(out, resp.marshal()); err != nil {
			return err
		}
		if err := out.Flush(); err != nil {
			return fmt.Errorf("flush response: %w", err)
		}
	}
}

// ReadFrame reads one varint length-prefixed frame. io.EOF is returned
// only when r ends cleanly before a frame starts.
func ReadFrame(r *bufio.Reader) ([]byte, error) {
	size, err := binary.ReadUvarint(r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read frame size: %w", err)
	}
	if size > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, size)
	}

	frame := make([]byte, size)
	if _, err := io.ReadFull(r, frame); err != nil {
		// a frame cut off before its first byte is still a truncation
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("read frame: %w", err)
	}
	return frame, nil
}

func WriteFrame(w io.Writer, frame []byte) error {
	b := protowire.AppendVarint(make([]byte, 0, len(frame)+binary.MaxVarintLen64), uint64(len(frame)))
	b = append(b, frame...)
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// EncodeRequest and DecodeResponse are the client side of Serve.
func EncodeRequest(req Request) []byte {
	return req.marshal()
}

func DecodeResponse(frame []byte) (Response, error) {
	var resp Response
	if err := resp.unmarshal(frame); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}
	return resp, nil
}
