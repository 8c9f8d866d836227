package bridge

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the frame and payload messages.
const (
	requestID        protowire.Number = 1
	requestResource  protowire.Number = 2
	requestOperation protowire.Number = 3
	requestMessage   protowire.Number = 4
	requestBlob      protowire.Number = 5

	responseID         protowire.Number = 1
	responseSuccessful protowire.Number = 2
	responseMessage    protowire.Number = 3
	responseBlob       protowire.Number = 4

	musicFilesFiles  protowire.Number = 1
	musicFilesFolder protowire.Number = 2

	metadataRequestPath protowire.Number = 1

	metadataResponseArt   protowire.Number = 1
	metadataResponseTitle protowire.Number = 2
)

// MusicFilesResponse answers a get_music_files Create request.
type MusicFilesResponse struct {
	MusicFiles  []string
	MusicFolder string
}

// MetadataRequest asks for the tags of one file.
type MetadataRequest struct {
	Path string
}

// MetadataResponse carries the cover art and title of a file.
type MetadataResponse struct {
	Art   []byte
	Title string
}

func (m MusicFilesResponse) Marshal() []byte {
	var b []byte
	for _, file := range m.MusicFiles {
		b = protowire.AppendTag(b, musicFilesFiles, protowire.BytesType)
		b = protowire.AppendString(b, file)
	}
	if m.MusicFolder != "" {
		b = protowire.AppendTag(b, musicFilesFolder, protowire.BytesType)
		b = protowire.AppendString(b, m.MusicFolder)
	}
	return b
}

func (m *MusicFilesResponse) Unmarshal(b []byte) error {
	*m = MusicFilesResponse{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == musicFilesFiles && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n >= 0 {
				m.MusicFiles = append(m.MusicFiles, v)
			}
			return n, nil
		case num == musicFilesFolder && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			m.MusicFolder = v
			return n, nil
		}
		return skipField(num, typ, b)
	})
}

func (m MetadataRequest) Marshal() []byte {
	var b []byte
	if m.Path != "" {
		b = protowire.AppendTag(b, metadataRequestPath, protowire.BytesType)
		b = protowire.AppendString(b, m.Path)
	}
	return b
}

func (m *MetadataRequest) Unmarshal(b []byte) error {
	*m = MetadataRequest{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == metadataRequestPath && typ == protowire.BytesType {
			v, n := protowire.ConsumeString(b)
			m.Path = v
			return n, nil
		}
		return skipField(num, typ, b)
	})
}

func (m MetadataResponse) Marshal() []byte {
	var b []byte
	if len(m.Art) > 0 {
		b = protowire.AppendTag(b, metadataResponseArt, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Art)
	}
	if m.Title != "" {
		b = protowire.AppendTag(b, metadataResponseTitle, protowire.BytesType)
		b = protowire.AppendString(b, m.Title)
	}
	return b
}

func (m *MetadataResponse) Unmarshal(b []byte) error {
	*m = MetadataResponse{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == metadataResponseArt && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			m.Art = append([]byte(nil), v...)
			return n, nil
		case num == metadataResponseTitle && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			m.Title = v
			return n, nil
		}
		return skipField(num, typ, b)
	})
}

func (r Request) marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, requestID, protowire.VarintType)
	b = protowire.AppendVarint(b, r.ID)
	b = protowire.AppendTag(b, requestResource, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(r.Resource))
	b = protowire.AppendTag(b, requestOperation, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(r.Operation))
	if r.Message != nil {
		b = protowire.AppendTag(b, requestMessage, protowire.BytesType)
		b = protowire.AppendBytes(b, r.Message)
	}
	if r.Blob != nil {
		b = protowire.AppendTag(b, requestBlob, protowire.BytesType)
		b = protowire.AppendBytes(b, r.Blob)
	}
	return b
}

func (r *Request) unmarshal(b []byte) error {
	*r = Request{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == requestID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			r.ID = v
			return n, nil
		case num == requestResource && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			r.Resource = Resource(v)
			return n, nil
		case num == requestOperation && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			r.Operation = Operation(v)
			return n, nil
		case num == requestMessage && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			r.Message = append([]byte{}, v...)
			return n, nil
		case num == requestBlob && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			r.Blob = append([]byte{}, v...)
			return n, nil
		}
		return skipField(num, typ, b)
	})
}

func (r Response) marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, responseID, protowire.VarintType)
	b = protowire.AppendVarint(b, r.ID)
	b = protowire.AppendTag(b, responseSuccessful, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeBool(r.Successful))
	if r.Message != nil {
		b = protowire.AppendTag(b, responseMessage, protowire.BytesType)
		b = protowire.AppendBytes(b, r.Message)
	}
	if r.Blob != nil {
		b = protowire.AppendTag(b, responseBlob, protowire.BytesType)
		b = protowire.AppendBytes(b, r.Blob)
	}
	return b
}

func (r *Response) unmarshal(b []byte) error {
	*r = Response{}
	return walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == responseID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			r.ID = v
			return n, nil
		case num == responseSuccessful && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			r.Successful = protowire.DecodeBool(v)
			return n, nil
		case num == responseMessage && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			r.Message = append([]byte{}, v...)
			return n, nil
		case num == responseBlob && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			r.Blob = append([]byte{}, v...)
			return n, nil
		}
		return skipField(num, typ, b)
	})
}

// walkFields calls fn for every field in b. fn consumes the field value
// and returns how many bytes it used; a negative count is a parse error.
func walkFields(b []byte, fn func(protowire.Number, protowire.Type, []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("decode tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		n, err := fn(num, typ, b)
		if err != nil {
			return fmt.Errorf("decode field %d: %w", num, err)
		}
		if n < 0 {
			return fmt.Errorf("decode field %d: %w", num, protowire.ParseError(n))
		}
		b = b[n:]
	}
	return nil
}

func skipField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	n := protowire.ConsumeFieldValue(num, typ, b)
	if n < 0 {
		return n, protowire.ParseError(n)
	}
	return n, nil
}
