package grpc

import (
	"context"
	"errors"

	"github.com/fjod/go_pos/internal/domain"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps domain errors onto gRPC codes. The message keeps the domain
// wording so the gateway can show it to staff.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var (
		notFound   *domain.NotFoundError
		validation *domain.ValidationError
		fetch      *domain.FetchError
		printErr   *domain.PrintError
	)
	switch {
	case errors.As(err, &notFound),
		errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrSessionNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.As(err, &validation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrProductExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrSessionBusy),
		errors.Is(err, domain.ErrScanCooldown),
		errors.Is(err, domain.ErrNoPendingCancel),
		errors.Is(err, domain.ErrTotalMismatch):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.As(err, &fetch), errors.As(err, &printErr):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Errorf(codes.Internal, "internal error: %v", err)
	}
}
