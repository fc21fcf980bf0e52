package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/dreschagin/activity-globe/internal/application/dto"
	"github.com/dreschagin/activity-globe/internal/application/port"
	"github.com/dreschagin/activity-globe/internal/domain/entity"
	"github.com/dreschagin/activity-globe/internal/domain/service"
	"github.com/dreschagin/activity-globe/internal/domain/valueobject"
)

func TestStreamActivitiesUseCase_StopsAtFirstEmptyPage(t *testing.T) {
	provider := &fakeProvider{pages: map[int][]*entity.Activity{
		1: {
			newActivity(t, 1, valueobject.Ride, canonicalPolyline),
			newActivity(t, 2, valueobject.Run, canonicalPolyline),
		},
		2: {newActivity(t, 3, valueobject.Walk, canonicalPolyline)},
		4: {newActivity(t, 4, valueobject.Ride, canonicalPolyline)},
	}}
	listPage := NewListActivityPageUseCase(provider, newTrackBuilder(), nil, nil, nil, ListActivityPageConfig{PerPage: 2}, testLogger())
	uc := NewStreamActivitiesUseCase(listPage, 0, testLogger())

	var pages []*dto.ActivityPageDTO
	err := uc.Execute(context.Background(), testToken, service.NewHueGeneratorFrom(0.3), func(page *dto.ActivityPageDTO) error {
		pages = append(pages, page)
		return nil
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	for i, page := range pages {
		if page.Page != i+1 {
			t.Fatalf("page %d has number %d", i, page.Page)
		}
	}
	if pages[2].NextPage != 0 {
		t.Fatalf("last page must end paging, got next page %d", pages[2].NextPage)
	}

	// Hue continues across pages.
	want := service.NextHue(pages[0].NextHue)
	if pages[1].Tracks[0].Hue != want {
		t.Fatalf("expected first hue of page 2 to be %v, got %v", want, pages[1].Tracks[0].Hue)
	}
	if len(provider.calls) != 3 {
		t.Fatalf("page 4 must never be requested, got %d calls", len(provider.calls))
	}
}

func TestStreamActivitiesUseCase_SkipsPastMalformedPage(t *testing.T) {
	provider := &fakeProvider{
		pages: map[int][]*entity.Activity{
			2: {newActivity(t, 7, valueobject.Hike, canonicalPolyline)},
		},
		dropped: map[int]int{1: 2},
	}
	listPage := NewListActivityPageUseCase(provider, newTrackBuilder(), nil, nil, nil, ListActivityPageConfig{PerPage: 2}, testLogger())
	uc := NewStreamActivitiesUseCase(listPage, 0, testLogger())

	var pages []*dto.ActivityPageDTO
	err := uc.Execute(context.Background(), testToken, nil, func(page *dto.ActivityPageDTO) error {
		pages = append(pages, page)
		return nil
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(pages) != 3 {
		t.Fatalf("expected pages 1..3, got %d", len(pages))
	}
	if len(pages[0].Activities) != 0 || pages[0].NextPage != 2 {
		t.Fatalf("malformed page must point at page 2, got %+v", pages[0])
	}
	if len(pages[1].Tracks) != 1 || pages[1].Tracks[0].ActivityID != 7 {
		t.Fatalf("expected track of activity 7 on page 2, got %+v", pages[1].Tracks)
	}
	if pages[2].NextPage != 0 {
		t.Fatalf("empty page 3 must end paging, got %d", pages[2].NextPage)
	}
}

func TestStreamActivitiesUseCase_StopsOnError(t *testing.T) {
	provider := &fakeProvider{
		pages: map[int][]*entity.Activity{
			1: {newActivity(t, 1, valueobject.Ride, canonicalPolyline)},
		},
		err:     port.ErrRateLimited,
		errPage: 2,
	}
	listPage := NewListActivityPageUseCase(provider, newTrackBuilder(), nil, nil, nil, ListActivityPageConfig{}, testLogger())
	uc := NewStreamActivitiesUseCase(listPage, 0, testLogger())

	emitted := 0
	err := uc.Execute(context.Background(), testToken, nil, func(*dto.ActivityPageDTO) error {
		emitted++
		return nil
	})
	if !errors.Is(err, port.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if emitted != 1 {
		t.Fatalf("expected 1 emitted page, got %d", emitted)
	}
	if len(provider.calls) != 2 {
		t.Fatalf("failed page must not be retried, got %d calls", len(provider.calls))
	}
}

func TestStreamActivitiesUseCase_EmitErrorStopsWalk(t *testing.T) {
	provider := &fakeProvider{pages: map[int][]*entity.Activity{
		1: {newActivity(t, 1, valueobject.Ride, canonicalPolyline)},
		2: {newActivity(t, 2, valueobject.Ride, canonicalPolyline)},
	}}
	listPage := NewListActivityPageUseCase(provider, newTrackBuilder(), nil, nil, nil, ListActivityPageConfig{}, testLogger())
	uc := NewStreamActivitiesUseCase(listPage, 0, testLogger())

	closed := errors.New("connection closed")
	err := uc.Execute(context.Background(), testToken, nil, func(*dto.ActivityPageDTO) error {
		return closed
	})
	if !errors.Is(err, closed) {
		t.Fatalf("expected emit error, got %v", err)
	}
	if len(provider.calls) != 1 {
		t.Fatalf("expected 1 provider call, got %d", len(provider.calls))
	}
}

func TestStreamActivitiesUseCase_MaxPages(t *testing.T) {
	provider := &fakeProvider{pages: map[int][]*entity.Activity{
		1: {newActivity(t, 1, valueobject.Ride, canonicalPolyline)},
		2: {newActivity(t, 2, valueobject.Ride, canonicalPolyline)},
		3: {newActivity(t, 3, valueobject.Ride, canonicalPolyline)},
	}}
	listPage := NewListActivityPageUseCase(provider, newTrackBuilder(), nil, nil, nil, ListActivityPageConfig{}, testLogger())
	uc := NewStreamActivitiesUseCase(listPage, 2, testLogger())

	emitted := 0
	err := uc.Execute(context.Background(), testToken, nil, func(*dto.ActivityPageDTO) error {
		emitted++
		return nil
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if emitted != 2 {
		t.Fatalf("expected 2 pages, got %d", emitted)
	}
}

func TestStreamActivitiesUseCase_CanceledContext(t *testing.T) {
	provider := &fakeProvider{pages: map[int][]*entity.Activity{}}
	listPage := NewListActivityPageUseCase(provider, newTrackBuilder(), nil, nil, nil, ListActivityPageConfig{}, testLogger())
	uc := NewStreamActivitiesUseCase(listPage, 0, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := uc.Execute(ctx, testToken, nil, func(*dto.ActivityPageDTO) error {
		t.Fatal("emit must not be called")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
