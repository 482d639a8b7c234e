package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/anirbanjana883/ZYRA-backend/api"
	"github.com/anirbanjana883/ZYRA-backend/global"
	"github.com/anirbanjana883/ZYRA-backend/logger"
	"github.com/anirbanjana883/ZYRA-backend/module/message"
	"github.com/anirbanjana883/ZYRA-backend/module/notification"
	"github.com/anirbanjana883/ZYRA-backend/module/user"
	"github.com/anirbanjana883/ZYRA-backend/service/chat"
	"github.com/anirbanjana883/ZYRA-backend/service/mgo"
	"github.com/anirbanjana883/ZYRA-backend/service/natsx"
	"github.com/anirbanjana883/ZYRA-backend/service/storage"
	storageredis "github.com/anirbanjana883/ZYRA-backend/service/storage/redis"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := global.Load()
	global.ConfigIds(nodeNumber(cfg.NodeID))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mongoCli, err := mgo.New(ctx, &mgo.Config{URI: cfg.MongoURI, Database: cfg.MongoDB})
	if err != nil {
		logger.Errorf("mongo init: %v", err)
		os.Exit(1)
	}
	db := mongoCli.DB()

	users := user.NewStore(db)
	messages := message.NewStore(db)
	notifications := notification.NewStore(db)

	var mirror *storage.Mirror
	if err := storageredis.InitRedis(storageredis.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	}); err != nil {
		logger.Warnf("redis init: %v (presence mirror disabled)", err)
	} else {
		mirror = storage.NewMirror(storageredis.GetRedis(), storage.MirrorConfig{NodeID: cfg.NodeID})
	}

	var relay *natsx.Relay
	if cfg.NatsURL != "" {
		relay, err = natsx.NewRelay(natsx.Config{URL: cfg.NatsURL, NodeID: cfg.NodeID})
		if err != nil {
			logger.Warnf("nats init: %v (broadcast relay disabled)", err)
			relay = nil
		}
	}

	reg := chat.NewRegistry()
	var router *chat.Router
	if relay != nil {
		router = chat.NewRouter(reg, relay)
	} else {
		router = chat.NewRouter(reg, nil)
	}
	notifier := chat.NewNotifier(router, notifications)
	tracker := chat.NewTracker(router, messages)
	gateway := chat.NewGateway(reg, router, users, notifier, mirrorOrNil(mirror))

	if relay != nil {
		if err := relay.Subscribe(router.ApplyRemote); err != nil {
			logger.Warnf("nats subscribe: %v", err)
		}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/ws", gateway.HandleWS)
	api.Register(r, &api.Deps{
		Registry:      reg,
		Router:        router,
		Tracker:       tracker,
		Notifier:      notifier,
		Messages:      messages,
		Notifications: notifications,
		Users:         users,
		Mirror:        mirror,
	})

	go func() {
		logger.Infof("gateway %s listening on %s", cfg.NodeID, cfg.HTTPAddr)
		if err := r.Run(cfg.HTTPAddr); err != nil {
			logger.Errorf("http server: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if relay != nil {
		relay.Close()
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = mongoCli.Close(shutdownCtx)
	_ = storageredis.CloseRedis()
}

// mirrorOrNil keeps the gateway's optional interface nil when the mirror is
// absent; a typed nil *storage.Mirror would not compare equal to nil.
func mirrorOrNil(m *storage.Mirror) chat.PresenceMirror {
	if m == nil {
		return nil
	}
	return m
}

// nodeNumber extracts the trailing digits of a node id like "gateway_03".
func nodeNumber(nodeID string) int64 {
	i := len(nodeID)
	for i > 0 && nodeID[i-1] >= '0' && nodeID[i-1] <= '9' {
		i--
	}
	n, err := strconv.ParseInt(strings.TrimLeft(nodeID[i:], "0"), 10, 64)
	if err != nil {
		return 1
	}
	return n
}
