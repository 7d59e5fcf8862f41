package service

import (
	"context"
	"fmt"
	"unibook/internal/domains/booking/model/dto"
	slotModel "unibook/internal/domains/slot/model"
	"unibook/shared/constant"
	"unibook/shared/failure"

	"github.com/rs/zerolog/log"
)

// Approve grants a pending booking. Decisions only apply to bookings still
// awaiting one; anything else is reported as a conflict, not silently redone.
func (s *serviceImpl) Approve(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.Approve")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.fetch(ctx, id)
	if err != nil {
		return res, err
	}

	if !booking.Status.Decidable() {
		return res, failure.Conflict(fmt.Sprintf("a %s booking cannot be approved", booking.Status))
	}

	approved, err := s.repo.Approve(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to approve booking")

		return res, fmt.Errorf("failed to approve booking: %w", err)
	}

	s.invalidateAfterMutation(ctx, approved)

	res.FromModel(approved, slotModel.SourceServer)

	return res, nil
}

// Reject declines a pending booking. A reason is mandatory: the requester
// sees it verbatim, so an empty or whitespace one is refused here no matter
// what the transport validated.
func (s *serviceImpl) Reject(ctx context.Context, id, reason string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.Reject")
	defer scope.End()
	defer scope.TraceIfError(err)

	reason = trimmed(reason)
	if reason == constant.Empty {
		return res, failure.BadRequestFromString("a reject reason is required")
	}

	booking, err := s.fetch(ctx, id)
	if err != nil {
		return res, err
	}

	if !booking.Status.Decidable() {
		return res, failure.Conflict(fmt.Sprintf("a %s booking cannot be rejected", booking.Status))
	}

	rejected, err := s.repo.Reject(ctx, id, reason)
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to reject booking")

		return res, fmt.Errorf("failed to reject booking: %w", err)
	}

	s.releaseSlot(ctx, rejected)
	s.invalidateAfterMutation(ctx, rejected)

	res.FromModel(rejected, slotModel.SourceServer)

	return res, nil
}

// BatchDecide applies one decision to many bookings. Items that are no
// longer pending are skipped with a per-item reason instead of failing the
// whole batch, so a reviewer racing another reviewer loses only the rows
// that were already decided.
func (s *serviceImpl) BatchDecide(ctx context.Context, req dto.BatchDecisionRequest) (res dto.BatchDecisionResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Booking.BatchDecide")
	defer scope.End()
	defer scope.TraceIfError(err)

	reason := trimmed(req.Reason)
	if req.Action == dto.BatchActionReject && reason == constant.Empty {
		return res, failure.BadRequestFromString("a reject reason is required")
	}

	res.Action = req.Action
	res.Results = make([]dto.BatchItemResult, 0, len(req.BookingIDs))

	for _, id := range req.BookingIDs {
		result := s.decideOne(ctx, req.Action, id, reason)

		if result.Applied {
			res.Applied++
		} else {
			res.Skipped++
		}

		res.Results = append(res.Results, result)
	}

	return res, nil
}

func (s *serviceImpl) decideOne(ctx context.Context, action, id, reason string) dto.BatchItemResult {
	result := dto.BatchItemResult{BookingID: id}

	booking, err := s.fetch(ctx, id)
	if err != nil {
		result.Reason = "could not load booking"

		return result
	}

	if !booking.Status.Decidable() {
		result.Reason = fmt.Sprintf("booking is %s, not pending approval", booking.Status)

		return result
	}

	switch action {
	case dto.BatchActionApprove:
		booking, err = s.repo.Approve(ctx, id)
	case dto.BatchActionReject:
		booking, err = s.repo.Reject(ctx, id, reason)
	}

	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Str("action", action).Msg("failed to apply batch decision")

		result.Reason = "decision was not applied"

		return result
	}

	if action == dto.BatchActionReject {
		s.releaseSlot(ctx, booking)
	}

	s.invalidateAfterMutation(ctx, booking)

	result.Applied = true

	return result
}
