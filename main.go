package main

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"rpsserver/database" //PostgreSQLとRedisの初期化
	"rpsserver/handlers" //各HTTPリクエストとWebsocket接続の処理
	"rpsserver/notify"   //ルームイベントの配信（Redis pub/sub + Websocket）
	"rpsserver/store"    //トランザクショナルなドキュメントストア
	"rpsserver/utils"    //ロガーの初期化とCronジョブ(放置ルームの定期クリーンナップ)

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

func main() {
	var logger *zap.Logger
	var err error
	logger, err = utils.InitLogger() // ロガーの初期化
	if err != nil {
		panic(err) // 失敗した場合はプログラム停止
	}
	defer logger.Sync() // ロガーのクリーンアップ

	// Websocket接続で用いるアップグレーダを初期化
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	// 非同期でPostgreSQLとRedisの初期化
	var db *gorm.DB
	var rdb *redis.Client
	done := make(chan bool)

	go func() {
		config, err := database.LoadConfig("config.json")
		if err != nil {
			logger.Fatal("設定ファイルの読み込みに失敗しました", zap.Error(err))
		}
		db, err = database.InitPostgreSQL(config, logger)
		if err != nil {
			logger.Fatal("PostgreSQLの初期化に失敗しました", zap.Error(err))
		}
		done <- true
	}()

	go func() {
		rdb, err = database.InitRedis(logger)
		if err != nil {
			logger.Fatal("Failed to initialize Redis", zap.Error(err))
		}
		done <- true
	}()

	// 2つの初期化が完了するのを待つ
	<-done
	<-done

	// ドキュメントストアの初期化（documentsテーブルのマイグレーション込み）
	st, err := store.NewGormStore(db)
	if err != nil {
		logger.Fatal("ドキュメントストアの初期化に失敗しました", zap.Error(err))
	}

	// ルームイベントの発行側と配信ハブ
	pub := notify.NewPublisher(rdb, logger)
	hub := notify.NewHub(rdb, logger)
	go hub.Run(context.Background())

	// クーロンスケジューラのセットアップと呼び出し
	go utils.CronCleaner(st, logger)

	router := gin.Default()
	//リクエストロガーを起動
	router.Use(gin.Recovery(), utils.RequestLogger(logger))

	//CORS（Cross-Origin Resource Sharing）ポリシーを設定
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://192.168.1.1:8080"}, //ここにデプロイサーバーのIPアドレスを設定
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	//各HTTPリクエストのルーティング
	router.POST("/auth/token", func(c *gin.Context) {
		handlers.TokenHandler(c, st, logger)
	})
	router.GET("/gamer/info", func(c *gin.Context) {
		handlers.GamerInfoHandler(c, st, logger)
	})
	router.PUT("/gamer/name", func(c *gin.Context) {
		handlers.UpdateGamerNameHandler(c, st, logger)
	})
	router.GET("/rooms", func(c *gin.Context) {
		handlers.ListRoomsHandler(c, st, logger)
	})
	router.POST("/rooms/create", func(c *gin.Context) {
		handlers.CreateRoomHandler(c, st, logger)
	})
	router.POST("/rooms/:roomID/join", func(c *gin.Context) {
		handlers.JoinRoomHandler(c, st, pub, logger)
	})
	router.DELETE("/rooms/:roomID/leave", func(c *gin.Context) {
		handlers.LeaveRoomHandler(c, st, pub, logger)
	})
	router.POST("/rooms/:roomID/start", func(c *gin.Context) {
		handlers.GameStartHandler(c, st, pub, logger)
	})
	router.POST("/rooms/:roomID/ready", func(c *gin.Context) {
		handlers.GameReadyHandler(c, st, pub, logger)
	})
	router.GET("/ws", func(c *gin.Context) {
		handlers.WsHandler(c, rdb, hub, upgrader, logger)
	})

	// テスト時はHTTPサーバーとして運用。デフォルトポートは ":8080"
	router.Run()

	// // 本番環境ではコメントアウトを解除し、HTTPSサーバーとして運用
	// err = router.RunTLS(":443", "path/to/cert.pem", "path/to/key.pem")
	// if err != nil {
	// 	logger.Fatal("Failed to run HTTPS server: ", zap.Error(err))
	// }
}
