package clubhandlers

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace/noop"

	clubevents "github.com/osusu-club/osusu-service/app/events/club"
	clubservice "github.com/osusu-club/osusu-service/app/modules/club/application"
	sharedtypes "github.com/osusu-club/osusu-service/app/types/shared"
)

func TestHandleCloseClubRequest(t *testing.T) {
	testID := uuid.New()
	requestPayload := &clubevents.ClubCloseRequestedPayloadV1{
		ClubID: testID,
		Caller: "acct-creator",
	}

	tests := []struct {
		name         string
		setupService func(*FakeClubService)
		payload      *clubevents.ClubCloseRequestedPayloadV1
		wantResults  int
		wantErr      bool
		wantTopic    string
	}{
		{
			name: "happy path - club closed",
			setupService: func(f *FakeClubService) {
				f.CloseClubFunc = func(ctx context.Context, clubID uuid.UUID, caller sharedtypes.AccountID) (clubservice.CloseClubResult, error) {
					return clubservice.CloseClubResult{
						Success: &clubevents.ClubClosedPayloadV1{ClubID: clubID, Phase: "closed"},
					}, nil
				}
			},
			payload:     requestPayload,
			wantResults: 1,
			wantTopic:   clubevents.ClubClosedV1,
		},
		{
			name: "domain failure - not ended",
			setupService: func(f *FakeClubService) {
				f.CloseClubFunc = func(ctx context.Context, clubID uuid.UUID, caller sharedtypes.AccountID) (clubservice.CloseClubResult, error) {
					return clubservice.CloseClubResult{
						Failure: &clubevents.ClubCloseFailedPayloadV1{ClubID: clubID, Caller: caller, Code: clubservice.CodeNotEnded},
					}, nil
				}
			},
			payload:     requestPayload,
			wantResults: 1,
			wantTopic:   clubevents.ClubCloseFailedV1,
		},
		{
			name:         "nil payload",
			setupService: func(f *FakeClubService) {},
			payload:      nil,
			wantErr:      true,
		},
		{
			name: "service error",
			setupService: func(f *FakeClubService) {
				f.CloseClubFunc = func(ctx context.Context, clubID uuid.UUID, caller sharedtypes.AccountID) (clubservice.CloseClubResult, error) {
					return clubservice.CloseClubResult{}, errors.New("database error")
				}
			},
			payload: requestPayload,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakeService := NewFakeClubService()
			tt.setupService(fakeService)

			handler := NewClubHandlers(
				fakeService,
				slog.Default(),
				noop.NewTracerProvider().Tracer("test"),
			)

			results, err := handler.HandleCloseClubRequest(context.Background(), tt.payload)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Len(t, results, tt.wantResults)
			if tt.wantResults > 0 {
				assert.Equal(t, tt.wantTopic, results[0].Topic)
			}
		})
	}
}
