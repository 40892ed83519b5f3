package hrest

import (
	"encoding/json"
	"net/http"

	"ledger-service/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type CreateAccountJSON struct {
	InitialBalance json.RawMessage `json:"initial_balance"`
	FormID         *int64          `json:"form_id,omitempty"`
}

type minBalanceJSON struct {
	AccountNumber string          `json:"account_number"`
	MinBalance    decimal.Decimal `json:"min_balance"`
}

// CreateAccount handles POST /api/accounts
func (h *LedgerRestHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var in CreateAccountJSON
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	balance := decimal.Zero
	if len(in.InitialBalance) > 0 {
		var err error
		if balance, err = parseAmount(in.InitialBalance); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
	}

	account, err := h.accountUC.CreateAccount(r.Context(), domain.AccountCreate{InitialBalance: balance, FormID: in.FormID})
	writeResult(w, r, h.logger, http.StatusCreated, account, err)
}

// GetAccount handles GET /api/accounts/{number}
func (h *LedgerRestHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.accountUC.GetAccount(r.Context(), chi.URLParam(r, "number"))
	writeResult(w, r, h.logger, http.StatusOK, account, err)
}

// AccountTransactions handles GET /api/accounts/{number}/transactions
func (h *LedgerRestHandler) AccountTransactions(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	number := chi.URLParam(r, "number")

	txs, err := h.accountUC.History(r.Context(), number, page)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeResult(w, r, h.logger, http.StatusOK, &transactionsPage{
		AccountNumber: number,
		Limit:         page.Limit,
		Offset:        page.Offset,
		Transactions:  txs,
	}, nil)
}

// MinBalance handles GET /api/accounts/{number}/min-balance
func (h *LedgerRestHandler) MinBalance(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	v, err := h.accountUC.MinBalanceFor(r.Context(), number)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeResult(w, r, h.logger, http.StatusOK, &minBalanceJSON{AccountNumber: number, MinBalance: v}, nil)
}

// DeactivateAccount handles DELETE /api/accounts/{number}
func (h *LedgerRestHandler) DeactivateAccount(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	if err := h.accountUC.Deactivate(r.Context(), number); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeResult(w, r, h.logger, http.StatusOK, &map[string]interface{}{"account_number": number, "is_active": false}, nil)
}
