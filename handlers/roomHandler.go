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

// ListRoomsHandler は待機中ルームの一覧（参加人数付き）を返します。
func ListRoomsHandler(c *gin.Context, st store.Store, logger *zap.Logger) {
	rooms, err := game.ListWaitingRooms(c.Request.Context(), st, logger)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "rooms": rooms})
}

// CreateRoomHandler は新しいルームを作成します。
func CreateRoomHandler(c *gin.Context, st store.Store, logger *zap.Logger) {
	email, ok := requireEmail(c, logger)
	if !ok {
		return
	}

	var request models.CreateRoomRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		logger.Error("Request binding error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"status": "validation_error", "error": "Request binding error"})
		return
	}

	room, err := game.CreateRoom(c.Request.Context(), st, logger, email, request)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "room": room})
}

// JoinRoomHandler はルーム参加を処理し、成功時にはルームイベントを発行します。
func JoinRoomHandler(c *gin.Context, st store.Store, pub *notify.Publisher, logger *zap.Logger) {
	email, ok := requireEmail(c, logger)
	if !ok {
		return
	}
	roomID := c.Param("roomID")

	if err := game.JoinGameRoom(c.Request.Context(), st, logger, email, roomID); err != nil {
		respondError(c, logger, err)
		return
	}

	pub.PublishRoomEvent(c.Request.Context(), models.RoomEvent{
		Type:    "joined",
		RoomID:  roomID,
		Payload: gin.H{"email": email},
	})
	c.JSON(http.StatusOK, gin.H{"status": "success", "roomId": roomID})
}

// LeaveRoomHandler はルーム退室を処理し、成功時にはルームイベントを発行します。
func LeaveRoomHandler(c *gin.Context, st store.Store, pub *notify.Publisher, logger *zap.Logger) {
	email, ok := requireEmail(c, logger)
	if !ok {
		return
	}
	roomID := c.Param("roomID")

	if err := game.LeaveGameRoom(c.Request.Context(), st, logger, email, roomID); err != nil {
		respondError(c, logger, err)
		return
	}

	pub.PublishRoomEvent(c.Request.Context(), models.RoomEvent{
		Type:    "left",
		RoomID:  roomID,
		Payload: gin.H{"email": email},
	})
	c.JSON(http.StatusOK, gin.H{"status": "success", "left": true})
}
