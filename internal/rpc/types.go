package rpc

import (
	"fmt"

	"github.com/goccy/go-json"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/adaptive-profile/internal/climate"
	"github.com/danielpatrickdp/adaptive-profile/internal/layer"
	"github.com/danielpatrickdp/adaptive-profile/internal/refine"
)

// #region messages
// EventRequest carries behavioral deltas for one user.
type EventRequest struct {
	UserID  string               `json:"user_id"`
	Signals []refine.EventSignal `json:"signals"`
}

// UserRequest names a user.
type UserRequest struct {
	UserID string `json:"user_id"`
}

// ValidationRequest records a user's verdict on a layer.
type ValidationRequest struct {
	UserID     string           `json:"user_id"`
	LayerID    layer.ID         `json:"layer_id"`
	Validation layer.Validation `json:"validation"`
}

// ClimateRequest carries member signals for a team.
type ClimateRequest struct {
	MemberCount int                    `json:"member_count"`
	Members     []climate.MemberSignal `json:"members"`
}

// TraitsResponse is the active trait vector for a user.
type TraitsResponse struct {
	UserID    string        `json:"user_id"`
	VersionID string        `json:"version_id,omitempty"`
	Traits    refine.Vector `json:"traits"`
}

// #endregion messages

// #region struct-codec
// toStruct encodes v through its JSON form.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	m := map[string]any{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return structpb.NewStruct(m)
}

// structJSON renders s back into JSON bytes.
func structJSON(s *structpb.Struct) ([]byte, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.AsMap())
}

// fromStruct decodes s into v.
func fromStruct(s *structpb.Struct, v any) error {
	data, err := structJSON(s)
	if err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	return nil
}

// #endregion struct-codec
