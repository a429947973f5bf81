package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/b4babl/backend/internal/config"
	"github.com/b4babl/backend/internal/handler"
	audioservice "github.com/b4babl/backend/internal/service/audio"
	babelservice "github.com/b4babl/backend/internal/service/babel"
	channelservice "github.com/b4babl/backend/internal/service/channel"
	registryservice "github.com/b4babl/backend/internal/service/registry"
	"github.com/b4babl/backend/internal/service/speech"
	"github.com/b4babl/backend/internal/service/translate"
	"github.com/b4babl/backend/internal/store"
	"github.com/b4babl/backend/internal/store/memory"
	"github.com/b4babl/backend/internal/store/mongostore"
	"github.com/b4babl/backend/internal/store/redisq"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	sessions, babelStore, cleanup := buildRecordStores(ctx, cfg.Mongo)
	defer cleanup()

	queue := buildAudioQueue(cfg.Redis)
	gateway := buildGateway(ctx, cfg.AI)
	synth := buildSynthesizer(cfg.Speech)

	registrySvc := registryservice.NewService(sessions)
	audioSvc := audioservice.NewService(queue, synth)
	channelSvc := channelservice.NewService(sessions, gateway, audioSvc)
	babelSvc := babelservice.NewService(babelStore)

	router := handler.NewRouter(registrySvc, channelSvc, audioSvc, babelSvc)

	startServer(ctx, cfg.Server, router)
}

// buildRecordStores picks Mongo when configured, the in-memory store
// otherwise. The returned cleanup disconnects the Mongo client.
func buildRecordStores(ctx context.Context, cfg config.MongoConfig) (store.SessionStore, store.BabelStore, func()) {
	if !cfg.Enabled() {
		log.Println("MONGO_URI not set, using in-memory record store")
		return memory.NewSessionStore(), memory.NewBabelStore(), func() {}
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		log.Fatalf("failed to ping MongoDB: %v", err)
	}

	sessions := mongostore.NewSessionStore(client, cfg.Database)
	if err := sessions.EnsureIndexes(connectCtx); err != nil {
		log.Fatalf("failed to create MongoDB indexes: %v", err)
	}

	log.Printf("MongoDB record store ready (database=%s)", cfg.Database)
	cleanup := func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}
	return sessions, mongostore.NewBabelStore(client, cfg.Database), cleanup
}

func buildAudioQueue(cfg config.RedisConfig) store.AudioQueue {
	if !cfg.Enabled() {
		log.Println("REDIS_ADDR not set, using in-memory audio queue")
		return memory.NewAudioQueue()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	log.Printf("Redis audio queue ready (addr=%s)", cfg.Addr)
	return redisq.NewAudioQueue(client)
}

func buildGateway(ctx context.Context, cfg config.AIConfig) translate.Gateway {
	if !cfg.Enabled() {
		log.Println("Ark credentials not configured, using the static translation gateway")
		return translate.NewStaticGateway(nil)
	}

	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		log.Printf("warning: failed to initialize chat model: %v", err)
		log.Println("continuing with the static translation gateway")
		return translate.NewStaticGateway(nil)
	}

	gateway, err := translate.NewArkGateway(ctx, chatModel)
	if err != nil {
		log.Printf("warning: failed to build translation gateway: %v", err)
		return translate.NewStaticGateway(nil)
	}

	log.Println("Ark translation gateway initialized successfully")
	return gateway
}

func buildSynthesizer(cfg config.SpeechConfig) speech.Synthesizer {
	if !cfg.Enabled {
		log.Println("Speech credentials not configured, audio playback items disabled")
		return nil
	}

	log.Println("Speech synthesizer initialized successfully")
	return speech.NewWSClient(speech.Config{
		BaseURL:     cfg.BaseURL,
		AppID:       cfg.AppID,
		AccessToken: cfg.AccessToken,
		Voice:       cfg.Voice,
		Format:      cfg.Format,
		Timeout:     cfg.Timeout,
	})
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("b4babl backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
