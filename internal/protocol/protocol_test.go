package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Whiteboard/internal/domain"
)

func TestPeekType(t *testing.T) {
	typ, err := PeekType([]byte(`{"type":"stroke","roomId":"r1"}`))
	require.NoError(t, err)
	assert.Equal(t, TypeStroke, typ)

	_, err = PeekType([]byte(`not json`))
	require.Error(t, err)
}

func TestDecode_StrokeUsesWireFieldNames(t *testing.T) {
	raw := []byte(`{"type":"stroke","roomId":"r1","data":{"x0":0.1,"y0":0.2,"x1":0.3,"y1":0.4,"color":"#ff0000","width":5}}`)

	var msg StrokeMessage
	require.NoError(t, Decode(raw, &msg))

	assert.Equal(t, domain.RoomID("r1"), msg.RoomID)
	assert.Equal(t, domain.StrokeSegment{X0: 0.1, Y0: 0.2, X1: 0.3, Y1: 0.4, Color: "#ff0000", Width: 5}, msg.Data)
}

func TestDecode_Join(t *testing.T) {
	var msg JoinRequest
	require.NoError(t, Decode([]byte(`{"type":"join","roomId":"r1","displayName":"alice"}`), &msg))
	assert.Equal(t, domain.RoomID("r1"), msg.RoomID)
	assert.Equal(t, "alice", msg.DisplayName)
}

func TestEncode_EmptyListsAreArrays(t *testing.T) {
	history, err := Encode(NewHistory(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"history","history":[]}`, string(history))

	members, err := Encode(NewMembers(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"members","members":[]}`, string(members))
}

func TestEncode_MembersAndClear(t *testing.T) {
	f, err := Encode(NewMembers([]domain.Participant{domain.NewParticipant("c1", "alice")}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"members","members":[{"connectionId":"c1","displayName":"alice"}]}`, string(f))

	f, err = Encode(NewClear())
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"clear"}`, string(f))
}
