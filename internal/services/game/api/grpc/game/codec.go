package game

import (
	"encoding/json"

	apperrors "github.com/kopertop/ai-dnd-expo-sub000/internal/platform/errors"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// structToJSON renders a Struct message as JSON bytes.
func structToJSON(in *structpb.Struct) ([]byte, error) {
	if in == nil {
		return []byte("{}"), nil
	}
	return protojson.Marshal(in)
}

// decodeRequest unmarshals a request message into a typed request.
func decodeRequest(in *structpb.Struct, target any) error {
	raw, err := structToJSON(in)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "encode request", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "decode request", err)
	}
	return nil
}

// EncodeStruct converts any JSON object shaped value into a Struct.
func EncodeStruct(value any) (*structpb.Struct, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeStruct unmarshals a Struct into target through its JSON form.
func DecodeStruct(in *structpb.Struct, target any) error {
	raw, err := structToJSON(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, target)
}
