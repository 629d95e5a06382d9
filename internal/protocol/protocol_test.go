package protocol

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcadelab/gamehub/internal/model"
)

func TestDecodeLogin(t *testing.T) {
	line := []byte(`{"action":"login","data":{"username":"alice","password":"pw","role":"player"}}`)

	req, err := Decode(line)
	require.NoError(t, err)

	login, ok := req.(*LoginRequest)
	require.True(t, ok)
	assert.Equal(t, "alice", login.Username)
	assert.Equal(t, "pw", login.Password)
	assert.Equal(t, model.RolePlayer, login.Role)
}

func TestDecodeCreateRoomOptionalMax(t *testing.T) {
	req, err := Decode([]byte(`{"action":"create_room","data":{"game_id":"chess"}}`))
	require.NoError(t, err)
	create := req.(*CreateRoomRequest)
	assert.Nil(t, create.MaxPlayers)

	req, err = Decode([]byte(`{"action":"create_room","data":{"game_id":"chess","max_players":3}}`))
	require.NoError(t, err)
	create = req.(*CreateRoomRequest)
	require.NotNil(t, create.MaxPlayers)
	assert.Equal(t, 3, *create.MaxPlayers)
}

func TestDecodePayloadlessActions(t *testing.T) {
	for _, action := range []string{ActionListGames, ActionListRooms, ActionListPlayers, ActionDevListGames, ActionQuit} {
		req, err := Decode([]byte(`{"action":"` + action + `"}`))
		require.NoError(t, err, action)
		assert.NotNil(t, req, action)
	}
}

func TestDecodeUnknownActionIsRecoverable(t *testing.T) {
	_, err := Decode([]byte(`{"action":"dance","data":{}}`))
	require.Error(t, err)

	var unknown *UnknownActionError
	assert.True(t, errors.As(err, &unknown))
	assert.Equal(t, "dance", unknown.Action)
}

func TestDecodeMalformedFrameIsFatal(t *testing.T) {
	_, err := Decode([]byte(`{"action":`))
	require.Error(t, err)

	var malformed *MalformedError
	assert.True(t, errors.As(err, &malformed))
}

func TestDecodeMalformedPayloadIsFatal(t *testing.T) {
	_, err := Decode([]byte(`{"action":"join_room","data":{"room_id":"not-a-number"}}`))
	require.Error(t, err)

	var malformed *MalformedError
	assert.True(t, errors.As(err, &malformed))
}

func TestEncodeIsNewlineTerminated(t *testing.T) {
	frame, err := Encode(ActionOK, OKData{Msg: "bye"})
	require.NoError(t, err)
	require.NotEmpty(t, frame)
	assert.Equal(t, byte('\n'), frame[len(frame)-1])

	var env Envelope
	require.NoError(t, json.Unmarshal(frame, &env))
	assert.Equal(t, ActionOK, env.Action)

	var data OKData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "bye", data.Msg)
}

func TestReasonForMapsSentinels(t *testing.T) {
	assert.Equal(t, ReasonAuthFailed, ReasonFor(model.ErrAuthFailed))
	assert.Equal(t, ReasonAlreadyOnline, ReasonFor(model.ErrAlreadyOnline))
	assert.Equal(t, ReasonGameNotFound, ReasonFor(model.ErrGameNotFound))
	assert.Equal(t, ReasonRoomFull, ReasonFor(model.ErrRoomFull))
	assert.Equal(t, ReasonInternal, ReasonFor(errors.New("disk on fire")))
}
