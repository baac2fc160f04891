// internal/api/websocket.go
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/StoryPact/ScenePactMCP/internal/models"
	"github.com/StoryPact/ScenePactMCP/internal/utils"
)

// WebSocket 升级器配置
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// 在生产环境中应该进行更严格的检查
		return true
	},
}

// wsValidateFrame 客户端推来的一帧：一个节拍（或整契约）加生成文本
type wsValidateFrame struct {
	Contract *models.SceneContract `json:"contract,omitempty"`
	Beat     *models.Beat          `json:"beat,omitempty"`
	Parent   *models.SceneContract `json:"parent,omitempty"`
	Text     string                `json:"text"`
	Seq      int                   `json:"seq,omitempty"`
}

// wsResultFrame 服务端回推的验证结果
type wsResultFrame struct {
	Seq    int                      `json:"seq,omitempty"`
	Result *models.ValidationResult `json:"result,omitempty"`
	Error  string                   `json:"error,omitempty"`
}

// ValidateStream GET /ws/validate
// 长连接验证：生成流水线边产出节拍文本边推上来，逐帧返回评分。
// 每帧验证彼此独立，连接断开没有任何需要回滚的状态。
func (h *Handler) ValidateStream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.GetLogger().Error("websocket upgrade failed", map[string]interface{}{"error": err.Error()})
		return
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(10 * time.Minute))

	for {
		var frame wsValidateFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				utils.GetLogger().Warn("websocket read error", map[string]interface{}{"error": err.Error()})
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(10 * time.Minute))

		validator := h.Config.Validator()

		var result *models.ValidationResult
		switch {
		case frame.Beat != nil:
			result = validator.ValidateBeat(frame.Beat, frame.Parent, frame.Text)
		case frame.Contract != nil:
			result = validator.ValidateContract(frame.Contract, frame.Text)
		default:
			conn.WriteJSON(&wsResultFrame{Seq: frame.Seq, Error: "frame carries neither contract nor beat"})
			continue
		}

		if err := conn.WriteJSON(&wsResultFrame{Seq: frame.Seq, Result: result}); err != nil {
			return
		}
	}
}
