package grpc

import (
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorDomain is the ErrorInfo domain attached to every failure.
const ErrorDomain = "gophauth"

func codeOf(code string) codes.Code {
	switch code {
	case common.CodeAccessDenied, common.CodePermissionDenied:
		return codes.PermissionDenied
	case common.CodeEntityNotFound:
		return codes.NotFound
	case common.CodeUnauthenticated, common.CodePasswordIsCurrent, common.CodePasswordIsPrevious,
		common.CodeMissingToken, common.CodeInvalidToken, common.CodeExpiredToken:
		return codes.Unauthenticated
	case common.CodeCryptoError, common.CodeBadRequest:
		return codes.InvalidArgument
	default:
		return codes.Internal
	}
}

// toStatus converts a service error into a status carrying the error code
// as ErrorInfo.Reason.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	// already a status, e.g. a decode failure
	var st interface{ GRPCStatus() *status.Status }
	if errors.As(err, &st) {
		return err
	}

	reason := common.CodeOf(err)
	c := codeOf(reason)

	msg := err.Error()
	if c == codes.Internal {
		msg = common.ErrorInternal.Error()
	}

	withInfo, detailErr := status.New(c, msg).WithDetails(&errdetails.ErrorInfo{
		Reason: reason,
		Domain: ErrorDomain,
	})
	if detailErr != nil {
		return status.Error(c, msg)
	}
	return withInfo.Err()
}

// ReasonOf returns the ErrorInfo reason of a status error, or "".
func ReasonOf(err error) string {
	st, ok := status.FromError(err)
	if !ok {
		return ""
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info.GetReason()
		}
	}
	return ""
}
