package hrest

import (
	"encoding/json"
	"net/http"
	"strconv"

	"ledger-service/internal/domain"
	"ledger-service/pkg/response"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// statusFor maps a ledger error code to its HTTP status.
func statusFor(de *domain.Error) int {
	switch de.Code {
	case domain.CodeInvalidAmount, domain.CodeInvalidRequest:
		return http.StatusBadRequest
	case domain.CodeAccountNotFound, domain.CodeAccountTypeNotFound,
		domain.CodeBranchNotFound, domain.CodeFormNotFound:
		return http.StatusNotFound
	case domain.CodeInsufficientFunds, domain.CodeMinimumBalanceViolation:
		return http.StatusConflict
	case domain.CodeAllocationError:
		return http.StatusServiceUnavailable
	case domain.CodePersistenceError:
		if de.Retryable {
			return http.StatusServiceUnavailable
		}
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// writeResult renders a (value, error) pair as a Result envelope. Only the
// typed code and its fixed message leave the process; causes go to the log.
func writeResult[T any](w http.ResponseWriter, r *http.Request, logger *zap.Logger, okStatus int, v *T, err error) {
	res := domain.NewResult(v, err)
	if !res.IsError() {
		response.JSON(w, okStatus, res.Response)
		return
	}

	de := domain.AsError(err)
	if de == nil {
		de = domain.ErrPersistence
	}
	status := statusFor(de)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("correlation_id", CorrelationID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.String("code", string(de.Code)),
			zap.Error(de.Err),
		)
	}
	response.ErrorWithDetails(w, status, res.Errors[0].Message, res.Errors)
}

func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	writeResult[struct{}](w, r, logger, http.StatusOK, nil, err)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.Invalid("invalid request body")
	}
	return nil
}

// parseAmount accepts a JSON number or a decimal string.
func parseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Zero, domain.ErrInvalidAmount
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(raw); err != nil {
		return decimal.Zero, domain.Wrap(domain.ErrInvalidAmount, err)
	}
	return d, nil
}

func parsePage(r *http.Request) (domain.Page, error) {
	var p domain.Page
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, domain.Invalid("limit must be an integer")
		}
		p.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, domain.Invalid("offset must be an integer")
		}
		p.Offset = n
	}
	return p.Normalize(), nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalid("id must be a positive integer")
	}
	return id, nil
}
