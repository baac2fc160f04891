// internal/api/websocket_test.go
package api

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StoryPact/ScenePactMCP/internal/models"
)

func TestValidateStream(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/validate"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	// 整契约帧
	require.NoError(t, conn.WriteJSON(&wsValidateFrame{
		Contract: testContract(1000),
		Text:     passingText,
		Seq:      7,
	}))
	var first wsResultFrame
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, 7, first.Seq)
	require.NotNil(t, first.Result)
	assert.True(t, first.Result.IsValid)
	assert.Empty(t, first.Error)

	// 节拍帧：同一条连接上逐帧独立验证
	parent := testContract(1000)
	require.NoError(t, conn.WriteJSON(&wsValidateFrame{
		Beat: &models.Beat{
			BeatNumber: 1, Title: "발단", TargetWordCount: 500,
			StartMoment: parent.StartCondition,
			EndMoment:   "그는 반지를 꺼냈다.",
		},
		Parent: parent,
		Text:   "지호가 서재의 문을 열었다. 그는 반지를 꺼냈다.",
		Seq:    8,
	}))
	var second wsResultFrame
	require.NoError(t, conn.ReadJSON(&second))
	assert.Equal(t, 8, second.Seq)
	require.NotNil(t, second.Result)
	assert.True(t, second.Result.IsValid)

	// 既无契约也无节拍的帧回错误，不断连
	require.NoError(t, conn.WriteJSON(&wsValidateFrame{Text: "고아 텍스트", Seq: 9}))
	var third wsResultFrame
	require.NoError(t, conn.ReadJSON(&third))
	assert.Equal(t, 9, third.Seq)
	assert.NotEmpty(t, third.Error)
	assert.Nil(t, third.Result)
}
