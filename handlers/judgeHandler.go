package handlers

import (
	"net/http"

	"rpsserver/game"
	"rpsserver/models"
	"rpsserver/notify"
	"rpsserver/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GameStartHandler はルームマスターによるマッチ開始を処理します。
func GameStartHandler(c *gin.Context, st store.Store, pub *notify.Publisher, logger *zap.Logger) {
	email, ok := requireEmail(c, logger)
	if !ok {
		return
	}
	roomID := c.Param("roomID")

	outcome, err := game.GameStart(c.Request.Context(), st, logger, email, roomID)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	publishOutcome(c, pub, roomID, outcome)
	c.JSON(http.StatusOK, gin.H{"status": "success", "outcome": outcome})
}

// GameReadyHandler は手の提出（レディ）を処理します。
// 対戦中メンバー全員のレディが揃った場合はこのリクエストがラウンドを解決します。
func GameReadyHandler(c *gin.Context, st store.Store, pub *notify.Publisher, logger *zap.Logger) {
	email, ok := requireEmail(c, logger)
	if !ok {
		return
	}
	roomID := c.Param("roomID")

	var request models.ReadyRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		logger.Error("Request binding error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"status": "validation_error", "error": "Request binding error"})
		return
	}

	outcome, err := game.GameReady(c.Request.Context(), st, logger, email, roomID, request.Choose)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	publishOutcome(c, pub, roomID, outcome)
	c.JSON(http.StatusOK, gin.H{"status": "success", "outcome": outcome})
}

func publishOutcome(c *gin.Context, pub *notify.Publisher, roomID string, outcome *game.RoundOutcome) {
	if !outcome.Resolved {
		return
	}
	eventType := "round"
	if outcome.Ended {
		eventType = "ended"
	}
	pub.PublishRoomEvent(c.Request.Context(), models.RoomEvent{
		Type:    eventType,
		RoomID:  roomID,
		Payload: outcome,
	})
}
