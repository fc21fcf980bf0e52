//go:build integration
// +build integration

package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dreschagin/activity-globe/internal/application/dto"
	"github.com/dreschagin/activity-globe/internal/application/usecase"
	"github.com/dreschagin/activity-globe/internal/domain/service"
	redisCache "github.com/dreschagin/activity-globe/internal/infrastructure/cache/redis"
	natsPublisher "github.com/dreschagin/activity-globe/internal/infrastructure/messaging/nats"
	wsInfra "github.com/dreschagin/activity-globe/internal/infrastructure/notification/websocket"
	s3storage "github.com/dreschagin/activity-globe/internal/infrastructure/storage/s3"
	"github.com/dreschagin/activity-globe/internal/infrastructure/strava"
	"github.com/dreschagin/activity-globe/internal/interfaces/http/handler"
	"github.com/dreschagin/activity-globe/pkg/config"
	"github.com/dreschagin/activity-globe/pkg/logger"
	"github.com/nats-io/nats.go"
)

const integrationSubjectPrefix = "activity_globe_e2e"

type integrationEnv struct {
	redisAddr   string
	natsURL     string
	s3Endpoint  string
	s3Region    string
	s3AccessKey string
	s3SecretKey string
	s3Bucket    string
}

func loadIntegrationEnv() integrationEnv {
	return integrationEnv{
		redisAddr:   getenv("INTEGRATION_REDIS_ADDR", "localhost:6379"),
		natsURL:     getenv("INTEGRATION_NATS_URL", "nats://localhost:4222"),
		s3Endpoint:  getenv("INTEGRATION_S3_ENDPOINT", "http://localhost:9000"),
		s3Region:    getenv("INTEGRATION_S3_REGION", "us-east-1"),
		s3AccessKey: getenv("INTEGRATION_S3_ACCESS_KEY", "minioadmin"),
		s3SecretKey: getenv("INTEGRATION_S3_SECRET_KEY", "minioadmin"),
		s3Bucket:    getenv("INTEGRATION_S3_BUCKET", "activity-globe-e2e"),
	}
}

func TestE2EIntegrationPagesThroughRedisAndNATS(t *testing.T) {
	env := loadIntegrationEnv()

	subscriber, err := nats.Connect(env.natsURL)
	if err != nil {
		t.Fatalf("connect nats: %v", err)
	}
	t.Cleanup(subscriber.Close)

	sub, err := subscriber.SubscribeSync(integrationSubjectPrefix + "." + dto.SubjectActivitiesPageFetched)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := subscriber.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	server, fake := integrationServer(t, env)

	for attempt := 0; attempt < 2; attempt++ {
		var page dto.ActivityPageDTO
		if status := getJSON(t, server.URL+"/api/v1/activities?page=1&hue=0.3", goodToken, &page); status != http.StatusOK {
			t.Fatalf("expected 200, got %d", status)
		}
		if len(page.Tracks) != 1 {
			t.Fatalf("expected one track, got %d", len(page.Tracks))
		}
	}
	if fake.ListCalls() != 1 {
		t.Fatalf("expected second read from redis, strava saw %d calls", fake.ListCalls())
	}

	var events []dto.ActivitiesPageFetchedEvent
	for len(events) < 2 {
		msg, err := sub.NextMsg(5 * time.Second)
		if err != nil {
			t.Fatalf("expected page event: %v", err)
		}
		if strings.Contains(string(msg.Data), goodToken) {
			t.Fatal("event must not carry the access token")
		}
		var event dto.ActivitiesPageFetchedEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		events = append(events, event)
	}
	if events[0].FromCache || !events[1].FromCache {
		t.Fatalf("unexpected cache flags: %+v", events)
	}
}

func TestE2EIntegrationExportToS3(t *testing.T) {
	env := loadIntegrationEnv()
	ensureBucket(t, context.Background(), env)

	server, _ := integrationServer(t, env)

	req, _ := http.NewRequest(http.MethodPost, server.URL+"/api/v1/activities/1/export", nil)
	req.Header.Set("Authorization", "Bearer "+goodToken)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var export dto.TrackExportDTO
	if err := json.NewDecoder(resp.Body).Decode(&export); err != nil {
		t.Fatalf("decode export: %v", err)
	}

	download, err := http.Get(export.URL)
	if err != nil {
		t.Fatalf("download export: %v", err)
	}
	defer download.Body.Close()
	if download.StatusCode != http.StatusOK {
		t.Fatalf("expected presigned url to be readable, got %d", download.StatusCode)
	}

	raw, _ := io.ReadAll(download.Body)
	var feature struct {
		Type     string `json:"type"`
		Geometry struct {
			Type        string       `json:"type"`
			Coordinates [][2]float64 `json:"coordinates"`
		} `json:"geometry"`
	}
	if err := json.Unmarshal(raw, &feature); err != nil {
		t.Fatalf("decode geojson: %v", err)
	}
	if feature.Geometry.Type != "LineString" || len(feature.Geometry.Coordinates) != 3 {
		t.Fatalf("unexpected geometry: %+v", feature.Geometry)
	}
	if feature.Geometry.Coordinates[0][0] != -120.2 {
		t.Fatalf("expected [lng, lat] order, got %v", feature.Geometry.Coordinates[0])
	}
}

func integrationServer(t *testing.T, env integrationEnv) (*httptest.Server, *fakeStrava) {
	t.Helper()

	ctx := context.Background()
	log := logger.New("error")

	fake := &fakeStrava{}
	stravaServer := httptest.NewServer(fake)
	t.Cleanup(stravaServer.Close)

	cache, err := redisCache.NewRedisCache(ctx, redisCache.Options{Addr: env.redisAddr, TTL: time.Minute})
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	if err := cache.DeletePattern(ctx, "activities:*"); err != nil {
		t.Fatalf("reset redis: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })

	publisher, err := natsPublisher.NewNATSPublisher(env.natsURL, log)
	if err != nil {
		t.Fatalf("connect nats: %v", err)
	}
	t.Cleanup(func() { _ = publisher.Close() })

	storage, err := s3storage.NewTrackStorage(ctx, s3storage.Config{
		Bucket:          env.s3Bucket,
		Region:          env.s3Region,
		Endpoint:        env.s3Endpoint,
		AccessKeyID:     env.s3AccessKey,
		SecretAccessKey: env.s3SecretKey,
		UsePathStyle:    true,
		URLMode:         s3storage.URLModePresigned,
		PresignedTTL:    5 * time.Minute,
	})
	if err != nil {
		t.Fatalf("init s3 storage: %v", err)
	}

	client := strava.NewClient(strava.ClientConfig{BaseURL: stravaServer.URL + "/api/v3"}, log)
	decoder := service.NewPolylineDecoder()
	builder := service.NewTrackBuilder(decoder, 5, 0.5, 0.95)

	listPageUC := usecase.NewListActivityPageUseCase(client, builder, cache, publisher, nil,
		usecase.ListActivityPageConfig{SubjectPrefix: integrationSubjectPrefix}, log)
	exportUC := usecase.NewExportActivityTrackUseCase(client, decoder, storage, publisher,
		usecase.ExportActivityTrackConfig{KeyPrefix: "e2e", SubjectPrefix: integrationSubjectPrefix}, log)

	hubCtx, stopHub := context.WithCancel(ctx)
	hub := wsInfra.NewHub(log)
	go hub.Run(hubCtx)
	t.Cleanup(stopHub)

	handlers := Handlers{
		Globe:      handler.NewGlobeHandler(handler.GlobeSettings{PathWidth: 5}, log),
		OAuth:      handler.NewOAuthHandler(usecase.NewExchangeAuthCodeUseCase(strava.NewOAuth(strava.OAuthConfig{}), nil, "", log), false, log),
		Activities: handler.NewActivitiesAPIHandler(listPageUC, usecase.NewGetActivityTrackUseCase(client, builder, log), exportUC,
			usecase.NewInvalidateActivityCacheUseCase(cache, log), log),
		WebSocket:  handler.NewWebSocketHandler(usecase.NewStreamActivitiesUseCase(listPageUC, 10, log), hub, nil, log),
		Health:     handler.NewHealthHandler(map[string]handler.ReadinessCheck{"redis": cache.Ping}, log),
	}

	router := NewRouter(handlers, nil, nil, config.SecurityConfig{RateLimitRPS: 1000, RateLimitBurst: 1000}, log)
	server := httptest.NewServer(router.Setup())
	t.Cleanup(server.Close)

	return server, fake
}

func ensureBucket(t *testing.T, ctx context.Context, env integrationEnv) {
	t.Helper()
	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion(env.s3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			env.s3AccessKey,
			env.s3SecretKey,
			"",
		)),
	)
	if err != nil {
		t.Fatalf("load s3 config: %v", err)
	}
	client := s3.NewFromConfig(awsCfg, func(options *s3.Options) {
		options.BaseEndpoint = &env.s3Endpoint
		options.UsePathStyle = true
	})

	_, err = client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: &env.s3Bucket})
	if err == nil {
		return
	}

	var owned *s3types.BucketAlreadyOwnedByYou
	var exists *s3types.BucketAlreadyExists
	if !errors.As(err, &owned) && !errors.As(err, &exists) {
		t.Fatalf("create bucket: %v", err)
	}
}

func getenv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
