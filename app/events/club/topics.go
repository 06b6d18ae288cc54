package clubevents

// StreamName is the JetStream stream carrying every club subject.
const StreamName = "club"

// Request/outcome topic pairs. Requests arrive from the API gateway or other
// services; handlers publish exactly one outcome per request.
const (
	ClubCreateRequestedV1 = "club.create.requested.v1"
	ClubCreatedV1         = "club.created.v1"
	ClubCreationFailedV1  = "club.creation.failed.v1"

	ClubJoinRequestedV1 = "club.join.requested.v1"
	ClubMemberJoinedV1  = "club.member.joined.v1"
	ClubJoinFailedV1    = "club.join.failed.v1"

	ClubContributionRequestedV1 = "club.contribution.requested.v1"
	ClubContributionRecordedV1  = "club.contribution.recorded.v1"
	ClubContributionFailedV1    = "club.contribution.failed.v1"

	ClubWithdrawalOpenRequestedV1 = "club.withdrawal.open.requested.v1"
	ClubWithdrawalPhaseOpenedV1   = "club.withdrawal.phase.opened.v1"
	ClubWithdrawalOpenFailedV1    = "club.withdrawal.open.failed.v1"

	ClubWithdrawRequestedV1 = "club.withdraw.requested.v1"
	ClubWithdrawalSettledV1 = "club.withdrawal.settled.v1"
	ClubWithdrawFailedV1    = "club.withdrawal.failed.v1"

	ClubCloseRequestedV1 = "club.close.requested.v1"
	ClubClosedV1         = "club.closed.v1"
	ClubCloseFailedV1    = "club.close.failed.v1"

	ClubGetRequestedV1 = "club.get.requested.v1"
	ClubGetResponseV1  = "club.get.response.v1"
	ClubGetFailedV1    = "club.get.failed.v1"
)

// Notification topics published by the scheduler workers.
const (
	ClubWithdrawalWindowOpenedV1 = "club.withdrawal.window.opened.v1"
	ClubContributionReminderV1   = "club.contribution.reminder.v1"
)
