package activities

import (
	"context"
	"errors"
	"testing"

	"github.com/cx-tal-miterani/ticket-checkout/internal/models"
	"github.com/cx-tal-miterani/ticket-checkout/internal/payment"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/testsuite"
)

type mockProcessor struct {
	mock.Mock
}

func (m *mockProcessor) Charge(ctx context.Context, req models.PaymentRequest, attempt int) (models.ChargeResult, error) {
	args := m.Called(ctx, req, attempt)
	return args.Get(0).(models.ChargeResult), args.Error(1)
}

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) RecordPayment(ctx context.Context, result models.PaymentResult) error {
	return m.Called(ctx, result).Error(0)
}

type ActivitiesTestSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite
	env       *testsuite.TestActivityEnvironment
	processor *mockProcessor
	ledger    *mockLedger
}

func (s *ActivitiesTestSuite) SetupTest() {
	s.env = s.NewTestActivityEnvironment()
	s.processor = new(mockProcessor)
	s.ledger = new(mockLedger)
	s.env.RegisterActivity(NewActivities(s.processor, s.ledger))
}

func (s *ActivitiesTestSuite) AfterTest(suiteName, testName string) {
	s.processor.AssertExpectations(s.T())
	s.ledger.AssertExpectations(s.T())
}

func TestActivitiesTestSuite(t *testing.T) {
	suite.Run(t, new(ActivitiesTestSuite))
}

func testInput(attempt int) ChargePaymentInput {
	return ChargePaymentInput{
		Request: models.PaymentRequest{
			OrderID:      "order-1",
			Title:        "Coldplay: Music of the Spheres",
			SeatCount:    2,
			CategoryName: "Gold",
			TotalAmount:  3823,
		},
		Attempt: attempt,
	}
}

func (s *ActivitiesTestSuite) TestChargePayment_Success() {
	input := testInput(1)
	s.processor.On("Charge", mock.Anything, input.Request, 1).
		Return(models.ChargeResult{Success: true, TransactionID: "TXN-1"}, nil).Once()

	val, err := s.env.ExecuteActivity(ChargePaymentName, input)
	s.Require().NoError(err)

	var result models.ChargeResult
	s.Require().NoError(val.Get(&result))
	s.True(result.Success)
	s.Equal("TXN-1", result.TransactionID)
}

func (s *ActivitiesTestSuite) TestChargePayment_DeclineIsNotAnError() {
	input := testInput(2)
	s.processor.On("Charge", mock.Anything, input.Request, 2).
		Return(models.ChargeResult{Success: false, Error: "Payment declined by provider", CanRetry: true}, nil).Once()

	val, err := s.env.ExecuteActivity(ChargePaymentName, input)
	s.Require().NoError(err)

	var result models.ChargeResult
	s.Require().NoError(val.Get(&result))
	s.False(result.Success)
	s.True(result.CanRetry)
	s.Equal("Payment declined by provider", result.Error)
}

func (s *ActivitiesTestSuite) TestChargePayment_ProcessorError() {
	input := testInput(1)
	s.processor.On("Charge", mock.Anything, input.Request, 1).
		Return(models.ChargeResult{}, errors.New("connection reset")).Once()

	_, err := s.env.ExecuteActivity(ChargePaymentName, input)

	s.Require().Error(err)
	s.Contains(err.Error(), "connection reset")
}

func (s *ActivitiesTestSuite) TestChargePayment_SimulatedProcessor() {
	env := s.NewTestActivityEnvironment()
	env.RegisterActivity(NewActivities(payment.NewSimulatedProcessor(0), nil))

	val, err := env.ExecuteActivity(ChargePaymentName, testInput(1))
	s.Require().NoError(err)

	var result models.ChargeResult
	s.Require().NoError(val.Get(&result))
	s.True(result.Success)
	s.NotEmpty(result.TransactionID)
}

func (s *ActivitiesTestSuite) TestRecordPayment_WritesLedger() {
	result := models.PaymentResult{OrderID: "order-1", Success: true, TransactionID: "TXN-1", Attempts: 1}
	s.ledger.On("RecordPayment", mock.Anything, result).Return(nil).Once()

	_, err := s.env.ExecuteActivity(RecordPaymentName, result)
	s.NoError(err)
}

func (s *ActivitiesTestSuite) TestRecordPayment_LedgerError() {
	result := models.PaymentResult{OrderID: "order-1", Attempts: 3, FailureReason: "declined"}
	s.ledger.On("RecordPayment", mock.Anything, result).Return(errors.New("db down")).Once()

	_, err := s.env.ExecuteActivity(RecordPaymentName, result)

	s.Require().Error(err)
	s.Contains(err.Error(), "db down")
}

func (s *ActivitiesTestSuite) TestRecordPayment_NoLedger() {
	env := s.NewTestActivityEnvironment()
	env.RegisterActivity(NewActivities(payment.NewSimulatedProcessor(0), nil))

	_, err := env.ExecuteActivity(RecordPaymentName, models.PaymentResult{OrderID: "order-1"})
	s.NoError(err)
}
