package usecase

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dreschagin/activity-globe/internal/application/dto"
	"github.com/dreschagin/activity-globe/internal/application/port"
	"github.com/dreschagin/activity-globe/internal/domain/entity"
	"github.com/dreschagin/activity-globe/internal/domain/service"
	"github.com/dreschagin/activity-globe/internal/domain/valueobject"
	"github.com/dreschagin/activity-globe/pkg/logger"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const geoJSONContentType = "application/geo+json"

type ExportActivityTrackConfig struct {
	KeyPrefix     string
	SubjectPrefix string
}

// ExportActivityTrackUseCase сохраняет детальный трек активности в object storage как GeoJSON
type ExportActivityTrackUseCase struct {
	provider  port.ActivityProvider
	decoder   *service.PolylineDecoder
	storage   port.TrackStorage
	publisher port.EventPublisher
	config    ExportActivityTrackConfig
	logger    *logger.Logger
}

// NewExportActivityTrackUseCase создает новый use case. storage == nil отключает экспорт.
func NewExportActivityTrackUseCase(
	provider port.ActivityProvider,
	decoder *service.PolylineDecoder,
	storage port.TrackStorage,
	publisher port.EventPublisher,
	config ExportActivityTrackConfig,
	log *logger.Logger,
) *ExportActivityTrackUseCase {
	if strings.TrimSpace(config.KeyPrefix) == "" {
		config.KeyPrefix = "tracks"
	}

	return &ExportActivityTrackUseCase{
		provider:  provider,
		decoder:   decoder,
		storage:   storage,
		publisher: publisher,
		config:    config,
		logger:    log,
	}
}

func (uc *ExportActivityTrackUseCase) Execute(ctx context.Context, accessToken string, id int64) (*dto.TrackExportDTO, error) {
	if uc.storage == nil {
		return nil, ErrStorageDisabled
	}
	if strings.TrimSpace(accessToken) == "" {
		return nil, ErrMissingAccessToken
	}

	activity, err := uc.provider.GetActivity(ctx, accessToken, id)
	if err != nil {
		uc.logger.Error("Failed to get activity for export", err, "activity_id", id)
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}

	points, err := uc.decoder.Decode(activity.EncodedPath())
	if err != nil {
		return nil, fmt.Errorf("activity %d: %w", id, err)
	}
	if len(points) == 0 {
		return nil, ErrNoPath
	}

	body, err := EncodeTrackGeoJSON(activity, points)
	if err != nil {
		return nil, err
	}

	key := path.Join(strings.Trim(uc.config.KeyPrefix, "/"), fmt.Sprintf("%d.geojson", id))
	url, err := uc.storage.PutObject(ctx, key, geoJSONContentType, body)
	if err != nil {
		uc.logger.Error("Failed to store track export", err, "key", key)
		return nil, fmt.Errorf("failed to store track export: %w", err)
	}

	uc.logger.Info("Track exported", "activity_id", id, "key", key, "points", len(points))

	publish(ctx, uc.publisher, uc.logger, subject(uc.config.SubjectPrefix, dto.SubjectTrackExported), dto.TrackExportedEvent{
		ActivityID: id,
		Key:        key,
		PointCount: len(points),
		ExportedAt: time.Now().UTC(),
	})

	return &dto.TrackExportDTO{
		ActivityID: id,
		Key:        key,
		URL:        url,
		PointCount: len(points),
	}, nil
}

// EncodeTrackGeoJSON renders an activity path as a GeoJSON LineString feature.
func EncodeTrackGeoJSON(activity *entity.Activity, points []valueobject.LatLng) ([]byte, error) {
	line := make(orb.LineString, 0, len(points))
	for _, p := range points {
		line = append(line, orb.Point{p.Lng, p.Lat})
	}

	feature := geojson.NewFeature(line)
	feature.ID = activity.ID()
	feature.Properties["name"] = activity.Name()
	feature.Properties["type"] = activity.Type().String()
	feature.Properties["start_date_local"] = activity.StartDateLocal().Format(time.RFC3339)
	feature.Properties["distance"] = activity.Distance()
	feature.Properties["total_elevation_gain"] = activity.TotalElevationGain()

	body, err := feature.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode geojson: %w", err)
	}
	return body, nil
}
