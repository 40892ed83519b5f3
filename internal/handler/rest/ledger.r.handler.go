package hrest

import (
	"encoding/json"
	"net/http"

	"ledger-service/internal/domain"
	"ledger-service/internal/usecase"

	"go.uber.org/zap"
)

type LedgerRestHandler struct {
	ledgerUC  *usecase.LedgerUsecase
	accountUC *usecase.AccountUsecase
	typeUC    *usecase.AccountTypeUsecase
	branchUC  *usecase.BranchUsecase
	formUC    *usecase.FormUsecase
	logger    *zap.Logger
}

func NewLedgerRestHandler(
	ledgerUC *usecase.LedgerUsecase,
	accountUC *usecase.AccountUsecase,
	typeUC *usecase.AccountTypeUsecase,
	branchUC *usecase.BranchUsecase,
	formUC *usecase.FormUsecase,
	logger *zap.Logger,
) *LedgerRestHandler {
	return &LedgerRestHandler{
		ledgerUC:  ledgerUC,
		accountUC: accountUC,
		typeUC:    typeUC,
		branchUC:  branchUC,
		formUC:    formUC,
		logger:    logger,
	}
}

type MovementJSON struct {
	AccountNumber string          `json:"account_number"`
	Amount        json.RawMessage `json:"amount"`
}

type TransferJSON struct {
	FromAccountNumber string          `json:"from_account_number"`
	ToAccountNumber   string          `json:"to_account_number"`
	Amount            json.RawMessage `json:"amount"`
}

// Deposit handles POST /api/transactions/deposit
func (h *LedgerRestHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var in MovementJSON
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	amount, err := parseAmount(in.Amount)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	posting, err := h.ledgerUC.Deposit(r.Context(), in.AccountNumber, amount)
	writeResult(w, r, h.logger, http.StatusCreated, posting, err)
}

// Withdraw handles POST /api/transactions/withdraw
func (h *LedgerRestHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var in MovementJSON
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	amount, err := parseAmount(in.Amount)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	posting, err := h.ledgerUC.Withdraw(r.Context(), in.AccountNumber, amount)
	writeResult(w, r, h.logger, http.StatusCreated, posting, err)
}

// Transfer handles POST /api/transactions/transfer
func (h *LedgerRestHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var in TransferJSON
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	amount, err := parseAmount(in.Amount)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	posting, err := h.ledgerUC.Transfer(r.Context(), in.FromAccountNumber, in.ToAccountNumber, amount)
	writeResult(w, r, h.logger, http.StatusCreated, posting, err)
}

// ListTransactions handles GET /api/transactions
func (h *LedgerRestHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	txs, err := h.accountUC.ListTransactions(r.Context(), page)
	writeResult(w, r, h.logger, http.StatusOK, &txs, err)
}

type transactionsPage struct {
	AccountNumber string                `json:"account_number"`
	Limit         int                   `json:"limit"`
	Offset        int                   `json:"offset"`
	Transactions  []*domain.Transaction `json:"transactions"`
}
