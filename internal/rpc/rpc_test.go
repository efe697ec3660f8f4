package rpc

import (
	"context"
	"net"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/adaptive-profile/internal/catalog"
	"github.com/danielpatrickdp/adaptive-profile/internal/climate"
	"github.com/danielpatrickdp/adaptive-profile/internal/gate"
	"github.com/danielpatrickdp/adaptive-profile/internal/layer"
	"github.com/danielpatrickdp/adaptive-profile/internal/profile"
	"github.com/danielpatrickdp/adaptive-profile/internal/refine"
	"github.com/danielpatrickdp/adaptive-profile/internal/traitstore"
)

// newTestClient serves a fresh engine over an in-memory listener.
func newTestClient(t *testing.T) *Client {
	t.Helper()

	store, err := traitstore.NewStore(filepath.Join(t.TempDir(), "rpc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	engine := refine.NewEngine(catalog.Default(), refine.DefaultConfig(), zerolog.Nop())
	svc := profile.NewService(store, engine, gate.NewGate(gate.DefaultGateConfig()))

	lis := bufconn.Listen(1 << 20)
	gs := NewGRPCServer(svc, zerolog.Nop())
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	client, err := NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestSubmitAnswerOverGRPC(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	out, err := client.SubmitAnswer(ctx, refine.AnswerInput{UserID: "u1", QuestionID: "BLUEPRINT.02", Value: 4})
	require.NoError(t, err)
	assert.Equal(t, profile.ActionCommit, out.Action)
	assert.NotEmpty(t, out.VersionID)

	got, ok := out.Traits.Get("self_clarity")
	require.True(t, ok)
	assert.Equal(t, 60.5, got.Score)

	traits, err := client.GetTraits(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, out.VersionID, traits.VersionID)
	assert.Equal(t, out.Traits, traits.Traits)
}

func TestSubmitAnswerErrorsMapToCodes(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	_, err := client.SubmitAnswer(ctx, refine.AnswerInput{UserID: "u1", QuestionID: "BLUEPRINT.99", Value: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = client.SubmitAnswer(ctx, refine.AnswerInput{UserID: "u1", QuestionID: "BLUEPRINT.02", Value: 2.5})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = client.SubmitEvent(ctx, "", nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSubmitEventOverGRPC(t *testing.T) {
	client := newTestClient(t)

	out, err := client.SubmitEvent(context.Background(), "u1", []refine.EventSignal{
		{TraitID: "curiosity", Delta: 6, Reliability: 0.5},
		{TraitID: "ghost", Delta: 1, Reliability: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, profile.ActionCommit, out.Action)
	require.Len(t, out.Warnings, 1)
	assert.Equal(t, "ghost", out.Warnings[0].TraitID)

	got, _ := out.Traits.Get("curiosity")
	assert.Equal(t, 53.0, got.Score)
}

func TestLayersAndValidationOverGRPC(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	for _, in := range []refine.AnswerInput{
		{UserID: "u1", QuestionID: "BLUEPRINT.04", Value: 4},
		{UserID: "u1", QuestionID: "BLUEPRINT.05", Value: 3},
	} {
		_, err := client.SubmitAnswer(ctx, in)
		require.NoError(t, err)
	}
	require.NoError(t, client.SetValidation(ctx, "u1", 2, layer.Resonates))

	view, err := client.GetLayers(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, view.Layers, layer.Count)

	temperament := view.Layers[1]
	assert.Equal(t, layer.ID(2), temperament.ID)
	assert.Equal(t, 2, temperament.SignalDensity)
	assert.Equal(t, layer.Developed, temperament.Status)
	assert.Equal(t, layer.Resonates, temperament.UserValidation)
	assert.NotEmpty(t, view.Insights)

	err = client.SetValidation(ctx, "u1", 99, layer.Resonates)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestTeamClimateOverGRPC(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	res, err := client.TeamClimate(ctx, make([]climate.MemberSignal, 3), 3)
	require.NoError(t, err)
	assert.Equal(t, climate.Withheld{Reason: climate.SuppressedReason}, res)

	members := make([]climate.MemberSignal, 5)
	for i := range members {
		members[i] = climate.MemberSignal{Pace: 40, Safety: 80, Clarity: 55, Frictions: []string{"meetings"}}
	}
	res, err = client.TeamClimate(ctx, members, 5)
	require.NoError(t, err)
	c, ok := res.(climate.Climate)
	require.True(t, ok)
	assert.Equal(t, 40.0, c.Pace)
	assert.Equal(t, "meetings", c.TopFriction)
}

func TestRawStructCall(t *testing.T) {
	client := newTestClient(t)

	req, err := structpb.NewStruct(map[string]any{"user_id": "raw"})
	require.NoError(t, err)
	resp := new(structpb.Struct)
	err = client.cc.Invoke(context.Background(), "/profile.v1.ProfileEngine/GetTraits", req, resp)
	require.NoError(t, err)
	assert.Equal(t, "raw", resp.Fields["user_id"].GetStringValue())
	assert.Len(t, resp.Fields["traits"].GetListValue().GetValues(), len(catalog.Default().TraitIDs()))

	err = client.cc.Invoke(context.Background(), "/profile.v1.ProfileEngine/Nope", req, resp)
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}

func TestToStatus(t *testing.T) {
	assert.Equal(t, codes.NotFound, status.Code(toStatus(traitstore.ErrNotFound)))
	assert.Equal(t, codes.InvalidArgument, status.Code(toStatus(catalog.ErrUnsupportedQuestionType)))
	assert.Equal(t, codes.Canceled, status.Code(toStatus(context.Canceled)))
	assert.Equal(t, codes.Internal, status.Code(toStatus(assert.AnError)))
}
