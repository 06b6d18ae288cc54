package clubhandlerintegrationtests

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/google/uuid"

	clubevents "github.com/osusu-club/osusu-service/app/events/club"
	treasuryevents "github.com/osusu-club/osusu-service/app/events/treasury"
	clubtypes "github.com/osusu-club/osusu-service/app/types/club"
	sharedtypes "github.com/osusu-club/osusu-service/app/types/shared"
	treasurytypes "github.com/osusu-club/osusu-service/app/types/treasury"
	"github.com/osusu-club/osusu-service/integration_tests/testutils"
)

func TestHandleWithdraw(t *testing.T) {
	generator := testutils.NewTestDataGenerator()
	creator := generator.GenerateAccountID()
	memberOne := generator.GenerateAccountID()
	memberTwo := generator.GenerateAccountID()

	var clubID uuid.UUID
	var input clubtypes.CreateClubInput

	// setupWithdrawable builds a two-member club that has fully contributed
	// and whose withdrawal phase is open. The payout interval controls how
	// wide the gap between consecutive claims has to be.
	setupWithdrawable := func(t *testing.T, deps HandlerTestDeps, interval time.Duration) {
		t.Helper()
		input = generator.GenerateClubInput(creator, 2)
		input.PayoutInterval = interval
		result, err := deps.ClubModule.ClubService.CreateClub(deps.Ctx, input)
		if err != nil || result.Success == nil {
			t.Fatalf("Failed to create club for test setup: %v, failure: %+v", err, result.Failure)
		}
		clubID = result.Success.Club.ClubID

		for _, account := range []sharedtypes.AccountID{memberOne, memberTwo} {
			joinResult, joinErr := deps.ClubModule.ClubService.JoinClub(deps.Ctx, clubID, account, sharedtypes.AccountKindIndividual, input.PenaltyAmount)
			if joinErr != nil || joinResult.Success == nil {
				t.Fatalf("Failed to join member %s for test setup: %v, failure: %+v", account, joinErr, joinResult.Failure)
			}
			contributeResult, contributeErr := deps.ClubModule.ClubService.Contribute(deps.Ctx, clubID, account, input.ContributionAmount)
			if contributeErr != nil || contributeResult.Success == nil {
				t.Fatalf("Failed to contribute for %s in test setup: %v, failure: %+v", account, contributeErr, contributeResult.Failure)
			}
		}

		openResult, openErr := deps.ClubModule.ClubService.OpenWithdrawals(deps.Ctx, clubID, creator)
		if openErr != nil || openResult.Success == nil {
			t.Fatalf("Failed to open withdrawals for test setup: %v, failure: %+v", openErr, openResult.Failure)
		}
	}

	withdrawViaService := func(t *testing.T, deps HandlerTestDeps, account sharedtypes.AccountID) {
		t.Helper()
		result, err := deps.ClubModule.ClubService.Withdraw(deps.Ctx, clubID, account)
		if err != nil || result.Success == nil {
			t.Fatalf("Failed to withdraw for %s in test setup: %v, failure: %+v", account, err, result.Failure)
		}
	}

	publishWithdraw := func(t *testing.T, env *testutils.TestEnvironment, account sharedtypes.AccountID) *message.Message {
		t.Helper()
		payload := clubevents.ClubWithdrawRequestedPayloadV1{
			ClubID:  clubID,
			Account: account,
		}
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("Failed to marshal payload: %v", err)
		}
		msg := message.NewMessage(uuid.New().String(), payloadBytes)
		msg.Metadata.Set(middleware.CorrelationIDMetadataKey, uuid.New().String())

		if err := testutils.PublishMessage(t, env.EventBus, env.Ctx, clubevents.ClubWithdrawRequestedV1, msg); err != nil {
			t.Fatalf("Failed to publish message: %v", err)
		}
		return msg
	}

	tests := []struct {
		name                   string
		setupFn                func(t *testing.T, deps HandlerTestDeps, env *testutils.TestEnvironment) interface{}
		publishMsgFn           func(t *testing.T, deps HandlerTestDeps, env *testutils.TestEnvironment) *message.Message
		validateFn             func(t *testing.T, deps HandlerTestDeps, env *testutils.TestEnvironment, triggerMsg *message.Message, receivedMsgs map[string][]*message.Message, initialState interface{})
		expectedOutgoingTopics []string
		expectHandlerError     bool
		timeout                time.Duration
	}{
		{
			name: "Success - first claim settles and records a transfer",
			setupFn: func(t *testing.T, deps HandlerTestDeps, env *testutils.TestEnvironment) interface{} {
				setupWithdrawable(t, deps, time.Second)
				return nil
			},
			publishMsgFn: func(t *testing.T, deps HandlerTestDeps, env *testutils.TestEnvironment) *message.Message {
				return publishWithdraw(t, env, memberOne)
			},
			expectedOutgoingTopics: []string{clubevents.ClubWithdrawalSettledV1, treasuryevents.TransferRecordedV1},
			validateFn: func(t *testing.T, deps HandlerTestDeps, env *testutils.TestEnvironment, incomingMsg *message.Message, receivedMsgs map[string][]*message.Message, initialState interface{}) {
				msgs := receivedMsgs[clubevents.ClubWithdrawalSettledV1]
				if len(msgs) == 0 {
					t.Fatalf("Expected at least one message on topic %q, but received none", clubevents.ClubWithdrawalSettledV1)
				}
				if len(msgs) > 1 {
					t.Errorf("Expected exactly one message on topic %q, but received %d", clubevents.ClubWithdrawalSettledV1, len(msgs))
				}

				receivedMsg := msgs[0]
				var successPayload clubevents.ClubWithdrawalSettledPayloadV1
				if err := deps.TestHelpers.UnmarshalPayload(receivedMsg, &successPayload); err != nil {
					t.Fatalf("Failed to unmarshal success payload: %v", err)
				}

				expectedPool := input.ContributionAmount * 2
				if successPayload.Account != memberOne {
					t.Errorf("Expected account %s, got %s", memberOne, successPayload.Account)
				}
				if successPayload.Amount != expectedPool {
					t.Errorf("Expected payout amount %d, got %d", expectedPool, successPayload.Amount)
				}
				if successPayload.Cycle != 1 {
					t.Errorf("Expected cycle 1, got %d", successPayload.Cycle)
				}
				if successPayload.TransferID == uuid.Nil {
					t.Errorf("Expected a transfer ID on the settled claim")
				}
				if successPayload.CycleCompleted {
					t.Errorf("Expected cycle to stay open after the first claim")
				}
				if successPayload.Phase != "pending" {
					t.Errorf("Expected phase %q, got %q", "pending", successPayload.Phase)
				}
				if successPayload.Instruction == nil {
					t.Fatalf("Expected the recorded instruction on the settled claim")
				}
				if successPayload.Instruction.Kind != treasurytypes.TransferKindPayout {
					t.Errorf("Expected instruction kind %q, got %q", treasurytypes.TransferKindPayout, successPayload.Instruction.Kind)
				}
				if successPayload.Instruction.Status != treasurytypes.TransferStatusPending {
					t.Errorf("Expected instruction status %q, got %q", treasurytypes.TransferStatusPending, successPayload.Instruction.Status)
				}
				if successPayload.Instruction.Destination != memberOne {
					t.Errorf("Expected instruction destination %s, got %s", memberOne, successPayload.Instruction.Destination)
				}

				// The same settlement is announced on the treasury stream
				treasuryMsgs := receivedMsgs[treasuryevents.TransferRecordedV1]
				if len(treasuryMsgs) == 0 {
					t.Fatalf("Expected at least one message on topic %q, but received none", treasuryevents.TransferRecordedV1)
				}
				var recordedPayload treasuryevents.TransferRecordedPayloadV1
				if err := deps.TestHelpers.UnmarshalPayload(treasuryMsgs[0], &recordedPayload); err != nil {
					t.Fatalf("Failed to unmarshal transfer recorded payload: %v", err)
				}
				if recordedPayload.Instruction.ID != successPayload.TransferID {
					t.Errorf("Expected instruction ID %s on the treasury stream, got %s", successPayload.TransferID, recordedPayload.Instruction.ID)
				}

				// The instruction must be persisted and still pending
				if err := testutils.WaitFor(5*time.Second, 100*time.Millisecond, func() error {
					transfers, listErr := deps.TreasuryService.ListTransfers(env.Ctx, clubID)
					if listErr != nil {
						return fmt.Errorf("list transfers: %w", listErr)
					}
					if len(transfers) != 1 {
						return fmt.Errorf("expected 1 transfer, got %d", len(transfers))
					}
					if transfers[0].Status != treasurytypes.TransferStatusPending {
						return fmt.Errorf("expected pending transfer, got %s", transfers[0].Status)
					}
					return nil
				}); err != nil {
					t.Fatalf("Transfer not persisted: %v", err)
				}

				if receivedMsg.Metadata.Get(middleware.CorrelationIDMetadataKey) != incomingMsg.Metadata.Get(middleware.CorrelationIDMetadataKey) {
					t.Errorf("Correlation ID mismatch: expected %q, got %q",
						incomingMsg.Metadata.Get(middleware.CorrelationIDMetadataKey),
						receivedMsg.Metadata.Get(middleware.CorrelationIDMetadataKey))
				}
			},
			expectHandlerError: false,
			timeout:            5 * time.Second,
		},
		{
			name: "Failure - second claim inside the payout interval",
			setupFn: func(t *testing.T, deps HandlerTestDeps, env *testutils.TestEnvironment) interface{} {
				// Wide interval so the handler reliably sees the gap as too
				// short even on a slow machine.
				setupWithdrawable(t, deps, 10*time.Second)
				withdrawViaService(t, deps, memberOne)
				return nil
			},
			publishMsgFn: func(t *testing.T, deps HandlerTestDeps, env *testutils.TestEnvironment) *message.Message {
				return publishWithdraw(t, env, memberTwo)
			},
			expectedOutgoingTopics: []string{clubevents.ClubWithdrawFailedV1},
			validateFn: func(t *testing.T, deps HandlerTestDeps, env *testutils.TestEnvironment, incomingMsg *message.Message, receivedMsgs map[string][]*message.Message, initialState interface{}) {
				msgs := receivedMsgs[clubevents.ClubWithdrawFailedV1]
				if len(msgs) == 0 {
					t.Fatalf("Expected at least one message on topic %q, but received none", clubevents.ClubWithdrawFailedV1)
				}

				var failurePayload clubevents.ClubWithdrawFailedPayloadV1
				if err := deps.TestHelpers.UnmarshalPayload(msgs[0], &failurePayload); err != nil {
					t.Fatalf("Failed to unmarshal failure payload: %v", err)
				}

				if failurePayload.Code != "withdrawal_too_soon" {
					t.Errorf("Expected failure code %q, got %q", "withdrawal_too_soon", failurePayload.Code)
				}
				if failurePayload.Account != memberTwo {
					t.Errorf("Expected account %s echoed in failure, got %s", memberTwo, failurePayload.Account)
				}

				// Only the setup claim may have produced a transfer
				transfers, listErr := deps.TreasuryService.ListTransfers(env.Ctx, clubID)
				if listErr != nil {
					t.Fatalf("Failed to list transfers: %v", listErr)
				}
				if len(transfers) != 1 {
					t.Errorf("Expected 1 transfer, got %d", len(transfers))
				}

				if len(receivedMsgs[clubevents.ClubWithdrawalSettledV1]) > 0 {
					t.Errorf("Expected no messages on topic %q, but received %d", clubevents.ClubWithdrawalSettledV1, len(receivedMsgs[clubevents.ClubWithdrawalSettledV1]))
				}
			},
			expectHandlerError: false,
			timeout:            5 * time.Second,
		},
		{
			name: "Failure - account claims twice",
			setupFn: func(t *testing.T, deps HandlerTestDeps, env *testutils.TestEnvironment) interface{} {
				setupWithdrawable(t, deps, time.Second)
				withdrawViaService(t, deps, memberOne)
				// Let the payout interval lapse so the repeat claim is
				// rejected for being a repeat, not for being too soon.
				time.Sleep(1500 * time.Millisecond)
				return nil
			},
			publishMsgFn: func(t *testing.T, deps HandlerTestDeps, env *testutils.TestEnvironment) *message.Message {
				return publishWithdraw(t, env, memberOne)
			},
			expectedOutgoingTopics: []string{clubevents.ClubWithdrawFailedV1},
			validateFn: func(t *testing.T, deps HandlerTestDeps, env *testutils.TestEnvironment, incomingMsg *message.Message, receivedMsgs map[string][]*message.Message, initialState interface{}) {
				msgs := receivedMsgs[clubevents.ClubWithdrawFailedV1]
				if len(msgs) == 0 {
					t.Fatalf("Expected at least one message on topic %q, but received none", clubevents.ClubWithdrawFailedV1)
				}

				var failurePayload clubevents.ClubWithdrawFailedPayloadV1
				if err := deps.TestHelpers.UnmarshalPayload(msgs[0], &failurePayload); err != nil {
					t.Fatalf("Failed to unmarshal failure payload: %v", err)
				}

				if failurePayload.Code != "already_withdrawn" {
					t.Errorf("Expected failure code %q, got %q", "already_withdrawn", failurePayload.Code)
				}

				// The first claim's transfer is the only one
				transfers, listErr := deps.TreasuryService.ListTransfers(env.Ctx, clubID)
				if listErr != nil {
					t.Fatalf("Failed to list transfers: %v", listErr)
				}
				if len(transfers) != 1 {
					t.Errorf("Expected 1 transfer, got %d", len(transfers))
				}
			},
			expectHandlerError: false,
			timeout:            5 * time.Second,
		},
		{
			name: "Success - final claim completes the rotation",
			setupFn: func(t *testing.T, deps HandlerTestDeps, env *testutils.TestEnvironment) interface{} {
				setupWithdrawable(t, deps, time.Second)
				withdrawViaService(t, deps, memberOne)
				time.Sleep(1500 * time.Millisecond)
				return nil
			},
			publishMsgFn: func(t *testing.T, deps HandlerTestDeps, env *testutils.TestEnvironment) *message.Message {
				return publishWithdraw(t, env, memberTwo)
			},
			expectedOutgoingTopics: []string{clubevents.ClubWithdrawalSettledV1, treasuryevents.TransferRecordedV1},
			validateFn: func(t *testing.T, deps HandlerTestDeps, env *testutils.TestEnvironment, incomingMsg *message.Message, receivedMsgs map[string][]*message.Message, initialState interface{}) {
				msgs := receivedMsgs[clubevents.ClubWithdrawalSettledV1]
				if len(msgs) == 0 {
					t.Fatalf("Expected at least one message on topic %q, but received none", clubevents.ClubWithdrawalSettledV1)
				}

				var successPayload clubevents.ClubWithdrawalSettledPayloadV1
				if err := deps.TestHelpers.UnmarshalPayload(msgs[0], &successPayload); err != nil {
					t.Fatalf("Failed to unmarshal success payload: %v", err)
				}

				if successPayload.Account != memberTwo {
					t.Errorf("Expected account %s, got %s", memberTwo, successPayload.Account)
				}
				if !successPayload.CycleCompleted {
					t.Errorf("Expected the final claim to complete the cycle")
				}
				if successPayload.Phase != "completed" {
					t.Errorf("Expected phase %q, got %q", "completed", successPayload.Phase)
				}

				if err := testutils.WaitFor(5*time.Second, 100*time.Millisecond, func() error {
					getResult, getErr := deps.ClubModule.ClubService.GetClub(env.Ctx, clubID)
					if getErr != nil {
						return fmt.Errorf("service returned error: %w", getErr)
					}
					if getResult.Success == nil {
						return errors.New("club not found yet")
					}
					snapshot := getResult.Success.Club
					if snapshot.Phase != "completed" {
						return fmt.Errorf("expected phase completed, got %s", snapshot.Phase)
					}
					if len(snapshot.CompletedCycles) != 1 {
						return fmt.Errorf("expected 1 completed cycle, got %d", len(snapshot.CompletedCycles))
					}
					if len(snapshot.CompletedCycles[0].AccountsPaid) != 2 {
						return fmt.Errorf("expected 2 accounts paid, got %d", len(snapshot.CompletedCycles[0].AccountsPaid))
					}
					return nil
				}); err != nil {
					t.Fatalf("Completed cycle not persisted: %v", err)
				}

				transfers, listErr := deps.TreasuryService.ListTransfers(env.Ctx, clubID)
				if listErr != nil {
					t.Fatalf("Failed to list transfers: %v", listErr)
				}
				if len(transfers) != 2 {
					t.Errorf("Expected 2 transfers after the rotation, got %d", len(transfers))
				}
			},
			expectHandlerError: false,
			timeout:            5 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps, cleanup := SetupTestClubHandler(t)
			defer cleanup()

			env := deps.TestEnvironment

			genericCase := testutils.TestCase{
				SetupFn: func(t *testing.T, env *testutils.TestEnvironment) interface{} {
					return tt.setupFn(t, deps, env)
				},
				PublishMsgFn: func(t *testing.T, env *testutils.TestEnvironment) *message.Message {
					return tt.publishMsgFn(t, deps, env)
				},
				ValidateFn: func(t *testing.T, env *testutils.TestEnvironment, triggerMsg *message.Message, receivedMsgs map[string][]*message.Message, initialState interface{}) {
					tt.validateFn(t, deps, env, triggerMsg, receivedMsgs, initialState)
				},
				ExpectedTopics: tt.expectedOutgoingTopics,
				ExpectError:    tt.expectHandlerError,
				MessageTimeout: tt.timeout,
			}

			testutils.RunTest(t, genericCase, env)
		})
	}
}
