package testutils

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"

	clubtypes "github.com/osusu-club/osusu-service/app/types/club"
	sharedtypes "github.com/osusu-club/osusu-service/app/types/shared"
)

// TestDataGenerator provides methods to create test data for integration tests
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewTestDataGenerator creates a new test data generator with optional seed
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	var s int64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = time.Now().UnixNano()
	}

	faker := gofakeit.New(uint64(s))

	return &TestDataGenerator{
		faker: faker,
		seed:  s,
	}
}

// GenerateAccountID creates a random account identifier
func (g *TestDataGenerator) GenerateAccountID() sharedtypes.AccountID {
	return sharedtypes.AccountID("acct_" + g.faker.Numerify("############"))
}

// GenerateAccountIDs creates count distinct account identifiers
func (g *TestDataGenerator) GenerateAccountIDs(count int) []sharedtypes.AccountID {
	seen := make(map[sharedtypes.AccountID]struct{}, count)
	ids := make([]sharedtypes.AccountID, 0, count)
	for len(ids) < count {
		id := g.GenerateAccountID()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// GenerateClubName creates a random club name
func (g *TestDataGenerator) GenerateClubName() string {
	name := g.faker.Company() + " Circle"
	if len(name) > 100 {
		name = name[:100]
	}
	return name
}

// GenerateClubInput creates a valid club configuration whose admission window
// is already open and whose payout interval is short enough for rotation
// tests to run in real time.
func (g *TestDataGenerator) GenerateClubInput(creator sharedtypes.AccountID, maxMembers int) clubtypes.CreateClubInput {
	now := time.Now().UTC()
	return clubtypes.CreateClubInput{
		Name:               g.GenerateClubName(),
		Description:        g.faker.Sentence(8),
		Creator:            creator,
		ContributionAmount: sharedtypes.Amount(g.faker.Number(10, 100)) * 100,
		PenaltyAmount:      sharedtypes.Amount(g.faker.Number(1, 10)) * 100,
		MaxMembers:         maxMembers,
		StartTime:          now.Add(-1 * time.Hour),
		EndTime:            now.Add(24 * time.Hour),
		PayoutInterval:     time.Second,
	}
}
