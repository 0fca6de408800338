//go:build integration

package enrollment_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"payrail/internal/enrollment"
	"payrail/pkg/sentinel"
	"payrail/pkg/testutil/containers"
)

type PostgresStudentStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *enrollment.PostgresStudentStore
}

func TestPostgresStudentStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStudentStoreSuite))
}

func (s *PostgresStudentStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = enrollment.NewPostgresStudentStore(s.pg.DB)
}

func (s *PostgresStudentStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(context.Background(), "students"))
}

func (s *PostgresStudentStoreSuite) TestSaveAndFind() {
	ctx := context.Background()
	student := enrollment.Student{
		StudentID: "2020-TWC-1223",
		Name:      "Alice Mwangi",
		Enrolled:  true,
		Balance:   decimal.NewFromFloat(1250.50),
	}
	s.Require().NoError(s.store.Save(ctx, student))

	got, err := s.store.FindByID(ctx, "2020-TWC-1223")
	s.Require().NoError(err)
	s.Equal("Alice Mwangi", got.Name)
	s.True(got.Enrolled)
	s.True(got.Balance.Equal(decimal.NewFromFloat(1250.50)))
}

func (s *PostgresStudentStoreSuite) TestSaveUpserts() {
	ctx := context.Background()
	student := enrollment.Student{StudentID: "2019-TWC-0007", Name: "Carol Njeri", Enrolled: true, Balance: decimal.Zero}
	s.Require().NoError(s.store.Save(ctx, student))

	student.Enrolled = false
	s.Require().NoError(s.store.Save(ctx, student))

	got, err := s.store.FindByID(ctx, "2019-TWC-0007")
	s.Require().NoError(err)
	s.False(got.Enrolled)
}

func (s *PostgresStudentStoreSuite) TestFindUnknown() {
	_, err := s.store.FindByID(context.Background(), "2020-TWC-9999")
	s.ErrorIs(err, sentinel.ErrNotFound)
}
