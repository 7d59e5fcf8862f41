package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"path"
	"path/filepath"
	"time"
	"unibook/internal/domains/booking/model"
	"unibook/internal/domains/booking/model/dto"
	"unibook/internal/domains/booking/repository"
	slotModel "unibook/internal/domains/slot/model"
	"unibook/shared/constant"
	"unibook/shared/failure"
	"unibook/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	directoryCheckIn  = "checkin"
	directoryCheckOut = "checkout"
)

// CheckIn captures arrival evidence for an approved booking. At least one
// photo is required; photos go to the media host first and only their URLs
// are relayed to the booking core.
func (s *serviceImpl) CheckIn(ctx context.Context, id, note string, images []*multipart.FileHeader) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.CheckIn")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.fetch(ctx, id)
	if err != nil {
		return res, err
	}

	userID, _, _ := actor(ctx)
	if !booking.OwnedBy(userID) {
		return res, failure.ResourceRestrictedError
	}

	if booking.Status != model.StatusApproved {
		return res, failure.Conflict(fmt.Sprintf("a %s booking cannot be checked in", booking.Status))
	}

	if booking.CheckedIn() {
		return res, failure.Conflict("this booking is already checked in")
	}

	start, err := slotTime(booking.Date, booking.StartTime)
	if err != nil {
		return res, failure.InternalError(fmt.Errorf("booking %s has an unreadable slot time", id))
	}

	window := time.Duration(s.cfg.Booking.CheckInWindowMinutes) * time.Minute
	if err = insideWindow(timezone.Now(), start, window, "check-in"); err != nil {
		return res, err
	}

	evidence, err := s.uploadEvidence(ctx, id, directoryCheckIn, note, images)
	if err != nil {
		return res, err
	}

	checkedIn, err := s.repo.CheckIn(ctx, id, evidence)
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to check in booking")

		return res, fmt.Errorf("failed to check in booking: %w", err)
	}

	s.invalidateAfterMutation(ctx, checkedIn)

	res.FromModel(checkedIn, slotModel.SourceServer)

	return res, nil
}

// CheckOut captures departure evidence. It requires a prior check-in and is
// windowed around the slot end the same way check-in is around the start.
func (s *serviceImpl) CheckOut(ctx context.Context, id, note string, images []*multipart.FileHeader) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.CheckOut")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.fetch(ctx, id)
	if err != nil {
		return res, err
	}

	userID, _, _ := actor(ctx)
	if !booking.OwnedBy(userID) {
		return res, failure.ResourceRestrictedError
	}

	if booking.Status != model.StatusApproved {
		return res, failure.Conflict(fmt.Sprintf("a %s booking cannot be checked out", booking.Status))
	}

	if !booking.CheckedIn() {
		return res, failure.Conflict("this booking has not been checked in")
	}

	end, err := slotTime(booking.Date, booking.EndTime)
	if err != nil {
		return res, failure.InternalError(fmt.Errorf("booking %s has an unreadable slot time", id))
	}

	window := time.Duration(s.cfg.Booking.CheckOutWindowMinutes) * time.Minute
	if err = insideWindow(timezone.Now(), end, window, "check-out"); err != nil {
		return res, err
	}

	evidence, err := s.uploadEvidence(ctx, id, directoryCheckOut, note, images)
	if err != nil {
		return res, err
	}

	checkedOut, err := s.repo.CheckOut(ctx, id, evidence)
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to check out booking")

		return res, fmt.Errorf("failed to check out booking: %w", err)
	}

	s.invalidateAfterMutation(ctx, checkedOut)

	res.FromModel(checkedOut, slotModel.SourceServer)

	return res, nil
}

// SubmitFeedback attaches the one-shot post-use review to a completed
// booking.
func (s *serviceImpl) SubmitFeedback(ctx context.Context, id string, req dto.FeedbackRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.SubmitFeedback")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.fetch(ctx, id)
	if err != nil {
		return res, err
	}

	userID, _, _ := actor(ctx)
	if !booking.OwnedBy(userID) {
		return res, failure.ResourceRestrictedError
	}

	if booking.Status != model.StatusCompleted {
		return res, failure.Conflict("feedback can only be left on a completed booking")
	}

	if booking.Feedback != nil {
		return res, failure.Conflict("feedback has already been submitted for this booking")
	}

	if req.ReportIssue && trimmed(req.IssueDescription) == constant.Empty {
		return res, failure.BadRequestFromString("an issue description is required when reporting an issue")
	}

	reviewed, err := s.repo.SubmitFeedback(ctx, id, model.Feedback{
		Rating:           req.Rating,
		Comments:         req.Comments,
		ReportIssue:      req.ReportIssue,
		IssueDescription: req.IssueDescription,
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to submit feedback")

		return res, fmt.Errorf("failed to submit feedback: %w", err)
	}

	s.invalidateAfterMutation(ctx, reviewed)

	res.FromModel(reviewed, slotModel.SourceServer)

	return res, nil
}

// insideWindow verifies the wall clock sits within anchor plus or minus
// window, naming the action in the rejection so the caller knows which gate
// fired.
func insideWindow(now, anchor time.Time, window time.Duration, action string) error {
	if now.Before(anchor.Add(-window)) {
		return failure.Conflict(fmt.Sprintf("%s opens at %s", action, anchor.Add(-window).Format(constant.ClockFormat)))
	}

	if now.After(anchor.Add(window)) {
		return failure.Conflict(fmt.Sprintf("the %s window closed at %s", action, anchor.Add(window).Format(constant.ClockFormat)))
	}

	return nil
}

// uploadEvidence pushes every photo to the media host and assembles the
// payload for the booking core. Uploads happen before the core call so a
// record never references a URL that does not exist.
func (s *serviceImpl) uploadEvidence(ctx context.Context, bookingID, directory, note string, images []*multipart.FileHeader) (evidence repository.PresencePayload, err error) {
	if len(images) == 0 {
		return evidence, failure.BadRequestFromString("at least one photo is required")
	}

	evidence.Note = trimmed(note)
	evidence.ImageURLs = make([]string, 0, len(images))

	directory = path.Join("bookings", bookingID, directory)
	uploaded := make([]string, 0, len(images))

	for _, header := range images {
		file, err := header.Open()
		if err != nil {
			s.discardEvidence(ctx, directory, uploaded)

			return repository.PresencePayload{}, failure.BadRequest(fmt.Errorf("could not read uploaded file %s", header.Filename))
		}

		fileName := uuid.NewString() + filepath.Ext(header.Filename)

		url, err := s.s3.UploadFile(ctx, s.cfg.External.S3.BucketName, directory, file, header, fileName)
		file.Close()

		if err != nil {
			log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to upload evidence photo")

			s.discardEvidence(ctx, directory, uploaded)

			return repository.PresencePayload{}, fmt.Errorf("failed to upload photo: %w", err)
		}

		uploaded = append(uploaded, fileName)
		evidence.ImageURLs = append(evidence.ImageURLs, url)
	}

	return evidence, nil
}

// discardEvidence removes photos already uploaded when a later one fails, so
// the media host does not accumulate orphans no record points at.
func (s *serviceImpl) discardEvidence(ctx context.Context, directory string, fileNames []string) {
	c := context.WithoutCancel(ctx)

	for _, fileName := range fileNames {
		if err := s.s3.DeleteFile(c, s.cfg.External.S3.BucketName, directory, fileName); err != nil {
			log.Error().Err(err).Str("file", fileName).Msg("failed to discard orphaned evidence photo")
		}
	}
}
