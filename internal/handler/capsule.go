package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/Joseph-hackathon/Lucid-solana/internal/errors"
	"github.com/Joseph-hackathon/Lucid-solana/internal/logging"
	"github.com/Joseph-hackathon/Lucid-solana/internal/model"
	"github.com/Joseph-hackathon/Lucid-solana/solana"
)

// CapsuleService is what the capsule endpoints need from the service layer.
type CapsuleService interface {
	GetDormantStats(ctx context.Context) *model.StatsResponse
	GetLedger(ctx context.Context, req *model.LedgerRequest) (*model.LedgerResponse, error)
	GetSnapshot(ctx context.Context, address string) (*model.SnapshotResponse, error)
	LocalHistory(ctx context.Context, wallet string) (*model.LocalHistoryResponse, error)
	WalletActivity(ctx context.Context, wallet string) (*model.WalletActivity, error)
}

var _ CapsuleService = (*solana.Service)(nil)

// CapsuleHandler serves the capsule endpoints
type CapsuleHandler struct {
	svc    CapsuleService
	logger *zap.Logger
}

// NewCapsuleHandler creates a new CapsuleHandler
func NewCapsuleHandler(svc CapsuleService, logger *zap.Logger) *CapsuleHandler {
	return &CapsuleHandler{svc: svc, logger: logging.OrNop(logger)}
}

// Stats handles GET /capsules/stats
// @Summary      Dormant wallet statistics
// @Description  Counts capsule owners inactive for at least the dormancy threshold, as a six-point series two months apart, with the estimated assets they hold. Always returns a well-formed body; values are zero when the ledger is unreachable.
// @Tags         capsules
// @Produce      json
// @Success      200  {object}  model.StatsResponse
// @Router       /capsules/stats [get]
func (h *CapsuleHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, h.svc.GetDormantStats(r.Context()))
}

// Ledger handles GET /capsules/ledger
// @Summary      Reconciled capsule transactions
// @Description  Merges the local cache, the ledger RPC node and the indexer into one newest-first list of capsule transactions for a wallet, with the latest creation and execution signatures.
// @Tags         capsules
// @Produce      json
// @Param        wallet     query     string  true   "Wallet address"
// @Param        capsule    query     string  false  "Capsule account address"
// @Param        kind       query     string  false  "creation, execution or unclassified"
// @Param        signature  query     string  false  "Transaction signature"
// @Param        from       query     string  false  "Start date (YYYY-MM-DD)"
// @Param        to         query     string  false  "End date (YYYY-MM-DD)"
// @Success      200  {object}  model.LedgerResponse
// @Failure      400  {object}  model.ErrorResponse
// @Failure      503  {object}  model.LedgerResponse
// @Router       /capsules/ledger [get]
func (h *CapsuleHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	req, err := parseLedgerRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.svc.GetLedger(r.Context(), req)
	if err != nil {
		if errors.Is(err, errors.ErrAllSourcesFailed) && resp != nil {
			h.logger.Error("ledger unavailable", zap.String("wallet", req.Wallet), zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
		h.logError(err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Snapshot handles GET /capsules/snapshot
// @Summary      Decode one capsule
// @Description  Fetches a capsule account and returns its decoded state.
// @Tags         capsules
// @Produce      json
// @Param        address  query     string  true  "Capsule account address"
// @Success      200  {object}  model.SnapshotResponse
// @Failure      400  {object}  model.ErrorResponse
// @Failure      404  {object}  model.ErrorResponse
// @Failure      422  {object}  model.ErrorResponse
// @Router       /capsules/snapshot [get]
func (h *CapsuleHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	address := r.URL.Query().Get("address")
	if address == "" {
		writeError(w, errors.NewInvalidRequest("address is required"))
		return
	}

	resp, err := h.svc.GetSnapshot(r.Context(), address)
	if err != nil {
		h.logError(err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// History handles GET /capsules/history
// @Summary      Locally remembered intents
// @Description  Returns the intent texts and executed capsules remembered in the local cache for a wallet.
// @Tags         capsules
// @Produce      json
// @Param        wallet  query     string  true  "Wallet address"
// @Success      200  {object}  model.LocalHistoryResponse
// @Failure      400  {object}  model.ErrorResponse
// @Router       /capsules/history [get]
func (h *CapsuleHandler) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	resp, err := h.svc.LocalHistory(r.Context(), r.URL.Query().Get("wallet"))
	if err != nil {
		h.logError(err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Activity handles GET /capsules/activity
// @Summary      Wallet activity
// @Description  Returns the most recent transaction known for a wallet, from the reconciled ledger or, when that is empty, from the indexer. lastActivityTimestamp is in unix milliseconds and 0 when unknown.
// @Tags         capsules
// @Produce      json
// @Param        wallet  query     string  true  "Wallet address"
// @Success      200  {object}  model.WalletActivity
// @Failure      400  {object}  model.ErrorResponse
// @Router       /capsules/activity [get]
func (h *CapsuleHandler) Activity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	resp, err := h.svc.WalletActivity(r.Context(), r.URL.Query().Get("wallet"))
	if err != nil {
		h.logError(err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// parseLedgerRequest reads the ledger filters from the query string.
func parseLedgerRequest(r *http.Request) (*model.LedgerRequest, error) {
	q := r.URL.Query()
	req, err := model.NewLedgerRequest(q.Get("wallet"), q.Get("capsule"), q.Get("kind"), q.Get("signature"), q.Get("from"), q.Get("to"))
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	return req, nil
}

func (h *CapsuleHandler) logError(err error) {
	if statusFor(err) >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
	}
}

// statusFor maps an error code to its HTTP status.
func statusFor(err error) int {
	switch errors.CodeOf(err) {
	case errors.ErrInvalidRequest:
		return http.StatusBadRequest
	case errors.ErrNotFound:
		return http.StatusNotFound
	case errors.ErrDecodeFailure:
		return http.StatusUnprocessableEntity
	case errors.ErrAllSourcesFailed, errors.ErrSourceUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	resp := model.ErrorResponse{Error: err.Error(), Code: string(errors.CodeOf(err))}
	writeJSON(w, statusFor(err), resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
