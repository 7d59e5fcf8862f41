package service_test

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"testing"
	"time"
	"unibook/internal/domains/booking/model"
	"unibook/internal/domains/booking/model/dto"
	"unibook/internal/domains/booking/repository"
	"unibook/shared/constant"
	"unibook/shared/failure"
	"unibook/shared/timezone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// photoHeaders builds real multipart file headers the way an HTTP request
// would deliver them.
func photoHeaders(t *testing.T, names ...string) []*multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, name := range names {
		part, err := writer.CreateFormFile(constant.FormFieldImages, name)
		require.NoError(t, err)

		_, err = part.Write([]byte("image-bytes"))
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(constant.RequestMaxMemory)
	require.NoError(t, err)

	return form.File[constant.FormFieldImages]
}

// approvedBookingAt returns an approved booking whose slot starts at the
// given offset from now, so window checks run against the real clock.
func approvedBookingAt(owner string, startIn time.Duration) model.Booking {
	start := timezone.Now().Add(startIn)

	return model.Booking{
		ID:          "bk-1",
		RequesterID: owner,
		FacilityID:  "fac-1",
		Date:        start.Format(constant.DayFormat),
		StartTime:   start.Format(constant.ClockFormat),
		EndTime:     start.Add(time.Hour).Format(constant.ClockFormat),
		Status:      model.StatusApproved,
	}
}

func TestBookingService_CheckInSuccess(t *testing.T) {
	f := newFixture(t)

	booking := approvedBookingAt("stu-1", 10*time.Minute)

	f.repo.EXPECT().
		Get(gomock.Any(), "bk-1").
		Return(booking, nil)

	f.s3.EXPECT().
		UploadFile(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("https://media.example.edu/bookings/bk-1/checkin/photo.jpg", nil)

	checkedIn := booking
	checkedIn.CheckIn = &model.PresenceRecord{
		AtRaw:     timezone.Now().Format(constant.DateFormat),
		Note:      "room in good condition",
		ImageURLs: []string{"https://media.example.edu/bookings/bk-1/checkin/photo.jpg"},
	}

	f.repo.EXPECT().
		CheckIn(gomock.Any(), "bk-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, evidence repository.PresencePayload) (model.Booking, error) {
			require.Len(t, evidence.ImageURLs, 1)
			assert.Equal(t, "room in good condition", evidence.Note)

			return checkedIn, nil
		})

	wait := f.expectInvalidation()

	res, err := f.svc.CheckIn(studentCtx("stu-1"), "bk-1", "room in good condition", photoHeaders(t, "photo.jpg"))
	require.NoError(t, err)

	require.NotNil(t, res.CheckIn)
	assert.False(t, res.CanCheckIn)
	assert.True(t, res.CanCheckOut)

	wait()
}

func TestBookingService_CheckInDiscardsUploadsOnFailure(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().
		Get(gomock.Any(), "bk-1").
		Return(approvedBookingAt("stu-1", 10*time.Minute), nil)

	gomock.InOrder(
		f.s3.EXPECT().
			UploadFile(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return("https://media.example.edu/bookings/bk-1/checkin/first.jpg", nil),
		f.s3.EXPECT().
			UploadFile(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return("", errors.New("bucket unavailable")),
	)

	// The photo that did make it up must not be left orphaned.
	f.s3.EXPECT().
		DeleteFile(gomock.Any(), gomock.Any(), "bookings/bk-1/checkin", gomock.Any()).
		Return(nil)

	_, err := f.svc.CheckIn(studentCtx("stu-1"), "bk-1", "", photoHeaders(t, "first.jpg", "second.jpg"))
	require.Error(t, err)
}

func TestBookingService_CheckInRequiresPhoto(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().
		Get(gomock.Any(), "bk-1").
		Return(approvedBookingAt("stu-1", 10*time.Minute), nil)

	_, err := f.svc.CheckIn(studentCtx("stu-1"), "bk-1", "", nil)
	require.Error(t, err)
	assert.True(t, failure.IsClientFault(err))
	assert.Contains(t, err.Error(), "photo")
}

func TestBookingService_CheckInBlockedOutsideWindow(t *testing.T) {
	f := newFixture(t)

	// Three hours before the slot starts is well outside the thirty minute
	// window.
	f.repo.EXPECT().
		Get(gomock.Any(), "bk-1").
		Return(approvedBookingAt("stu-1", 3*time.Hour), nil)

	_, err := f.svc.CheckIn(studentCtx("stu-1"), "bk-1", "", photoHeaders(t, "photo.jpg"))
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
}

func TestBookingService_CheckInRejectsNonApprovedBooking(t *testing.T) {
	f := newFixture(t)

	booking := approvedBookingAt("stu-1", 10*time.Minute)
	booking.Status = model.StatusPendingApproval

	f.repo.EXPECT().
		Get(gomock.Any(), "bk-1").
		Return(booking, nil)

	_, err := f.svc.CheckIn(studentCtx("stu-1"), "bk-1", "", photoHeaders(t, "photo.jpg"))
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
}

func TestBookingService_CheckInRejectsDoubleCheckIn(t *testing.T) {
	f := newFixture(t)

	booking := approvedBookingAt("stu-1", 10*time.Minute)
	booking.CheckIn = &model.PresenceRecord{ImageURLs: []string{"https://media.example.edu/p.jpg"}}

	f.repo.EXPECT().
		Get(gomock.Any(), "bk-1").
		Return(booking, nil)

	_, err := f.svc.CheckIn(studentCtx("stu-1"), "bk-1", "", photoHeaders(t, "photo.jpg"))
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
}

func TestBookingService_CheckOutRequiresCheckIn(t *testing.T) {
	f := newFixture(t)

	// Slot ends about now, so the window is open, but there was no check-in.
	booking := approvedBookingAt("stu-1", -time.Hour)

	f.repo.EXPECT().
		Get(gomock.Any(), "bk-1").
		Return(booking, nil)

	_, err := f.svc.CheckOut(studentCtx("stu-1"), "bk-1", "", photoHeaders(t, "photo.jpg"))
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
}

func TestBookingService_CheckOutSuccess(t *testing.T) {
	f := newFixture(t)

	booking := approvedBookingAt("stu-1", -time.Hour)
	booking.CheckIn = &model.PresenceRecord{ImageURLs: []string{"https://media.example.edu/in.jpg"}}

	f.repo.EXPECT().
		Get(gomock.Any(), "bk-1").
		Return(booking, nil)

	f.s3.EXPECT().
		UploadFile(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("https://media.example.edu/bookings/bk-1/checkout/photo.jpg", nil)

	checkedOut := booking
	checkedOut.CheckOut = &model.PresenceRecord{
		ImageURLs: []string{"https://media.example.edu/bookings/bk-1/checkout/photo.jpg"},
	}

	f.repo.EXPECT().
		CheckOut(gomock.Any(), "bk-1", gomock.Any()).
		Return(checkedOut, nil)

	wait := f.expectInvalidation()

	res, err := f.svc.CheckOut(studentCtx("stu-1"), "bk-1", "", photoHeaders(t, "photo.jpg"))
	require.NoError(t, err)
	require.NotNil(t, res.CheckOut)

	wait()
}

func TestBookingService_FeedbackOnlyOnCompletedBooking(t *testing.T) {
	f := newFixture(t)

	booking := pendingBooking("bk-1", "stu-1")
	booking.Status = model.StatusApproved

	f.repo.EXPECT().
		Get(gomock.Any(), "bk-1").
		Return(booking, nil)

	_, err := f.svc.SubmitFeedback(studentCtx("stu-1"), "bk-1", dto.FeedbackRequest{Rating: 5})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
}

func TestBookingService_FeedbackOnlyOnce(t *testing.T) {
	f := newFixture(t)

	booking := pendingBooking("bk-1", "stu-1")
	booking.Status = model.StatusCompleted
	booking.Feedback = &model.Feedback{Rating: 4}

	f.repo.EXPECT().
		Get(gomock.Any(), "bk-1").
		Return(booking, nil)

	_, err := f.svc.SubmitFeedback(studentCtx("stu-1"), "bk-1", dto.FeedbackRequest{Rating: 5})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
}

func TestBookingService_FeedbackIssueNeedsDescription(t *testing.T) {
	f := newFixture(t)

	booking := pendingBooking("bk-1", "stu-1")
	booking.Status = model.StatusCompleted

	f.repo.EXPECT().
		Get(gomock.Any(), "bk-1").
		Return(booking, nil)

	_, err := f.svc.SubmitFeedback(studentCtx("stu-1"), "bk-1", dto.FeedbackRequest{
		Rating:      2,
		ReportIssue: true,
	})
	require.Error(t, err)
	assert.True(t, failure.IsClientFault(err))
}

func TestBookingService_FeedbackSuccess(t *testing.T) {
	f := newFixture(t)

	booking := pendingBooking("bk-1", "stu-1")
	booking.Status = model.StatusCompleted

	f.repo.EXPECT().
		Get(gomock.Any(), "bk-1").
		Return(booking, nil)

	reviewed := booking
	reviewed.Feedback = &model.Feedback{Rating: 4, Comments: "projector flickers", ReportIssue: true, IssueDescription: "projector flickers under HDMI"}

	f.repo.EXPECT().
		SubmitFeedback(gomock.Any(), "bk-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, feedback model.Feedback) (model.Booking, error) {
			assert.Equal(t, 4, feedback.Rating)
			assert.True(t, feedback.ReportIssue)

			return reviewed, nil
		})

	wait := f.expectInvalidation()

	res, err := f.svc.SubmitFeedback(studentCtx("stu-1"), "bk-1", dto.FeedbackRequest{
		Rating:           4,
		Comments:         "projector flickers",
		ReportIssue:      true,
		IssueDescription: "projector flickers under HDMI",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Feedback)
	assert.False(t, res.CanFeedback)

	wait()
}
