package hrest

import (
	"encoding/json"
	"net/http"

	"ledger-service/internal/domain"

	"github.com/go-chi/chi/v5"
)

type AccountTypeJSON struct {
	TypeName   string          `json:"type_name"`
	MinBalance json.RawMessage `json:"min_balance"`
}

func (in AccountTypeJSON) toDomain() (*domain.AccountType, error) {
	t := &domain.AccountType{TypeName: in.TypeName}
	if len(in.MinBalance) > 0 {
		if err := t.MinBalance.UnmarshalJSON(in.MinBalance); err != nil {
			return nil, domain.Wrap(domain.ErrInvalidAmount, err)
		}
	}
	return t, nil
}

// ---------------- Account types ----------------

func (h *LedgerRestHandler) CreateAccountType(w http.ResponseWriter, r *http.Request) {
	var in AccountTypeJSON
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	t, err := in.toDomain()
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	created, err := h.typeUC.Create(r.Context(), t)
	writeResult(w, r, h.logger, http.StatusCreated, created, err)
}

func (h *LedgerRestHandler) ListAccountTypes(w http.ResponseWriter, r *http.Request) {
	list, err := h.typeUC.List(r.Context())
	writeResult(w, r, h.logger, http.StatusOK, &list, err)
}

func (h *LedgerRestHandler) GetAccountType(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	t, err := h.typeUC.Get(r.Context(), id)
	writeResult(w, r, h.logger, http.StatusOK, t, err)
}

func (h *LedgerRestHandler) UpdateAccountType(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var in AccountTypeJSON
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	t, err := in.toDomain()
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	t.TypeID = id
	updated, err := h.typeUC.Update(r.Context(), t)
	writeResult(w, r, h.logger, http.StatusOK, updated, err)
}

func (h *LedgerRestHandler) DeactivateAccountType(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.typeUC.Deactivate(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeResult(w, r, h.logger, http.StatusOK, &map[string]interface{}{"type_id": id, "is_active": false}, nil)
}

// ---------------- Branches ----------------

func (h *LedgerRestHandler) AddBranch(w http.ResponseWriter, r *http.Request) {
	var in domain.BranchInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	b, err := h.branchUC.Add(r.Context(), in)
	writeResult(w, r, h.logger, http.StatusCreated, b, err)
}

func (h *LedgerRestHandler) ListBranches(w http.ResponseWriter, r *http.Request) {
	list, err := h.branchUC.List(r.Context())
	writeResult(w, r, h.logger, http.StatusOK, &list, err)
}

func (h *LedgerRestHandler) GetBranch(w http.ResponseWriter, r *http.Request) {
	b, err := h.branchUC.Get(r.Context(), chi.URLParam(r, "ifsc"))
	writeResult(w, r, h.logger, http.StatusOK, b, err)
}

func (h *LedgerRestHandler) UpdateBranch(w http.ResponseWriter, r *http.Request) {
	var in domain.BranchInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	b, err := h.branchUC.Update(r.Context(), chi.URLParam(r, "ifsc"), in)
	writeResult(w, r, h.logger, http.StatusOK, b, err)
}

func (h *LedgerRestHandler) DeactivateBranch(w http.ResponseWriter, r *http.Request) {
	ifsc := chi.URLParam(r, "ifsc")
	if err := h.branchUC.Deactivate(r.Context(), ifsc); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeResult(w, r, h.logger, http.StatusOK, &map[string]interface{}{"ifsc": ifsc, "is_active": false}, nil)
}

// ---------------- Application forms ----------------

func (h *LedgerRestHandler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	var in domain.FormInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	f, err := h.formUC.Submit(r.Context(), in)
	writeResult(w, r, h.logger, http.StatusCreated, f, err)
}

func (h *LedgerRestHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	f, err := h.formUC.Get(r.Context(), id)
	writeResult(w, r, h.logger, http.StatusOK, f, err)
}

// ApproveForm handles POST /api/forms/{id}/approve and returns the opened account.
func (h *LedgerRestHandler) ApproveForm(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	account, err := h.formUC.Approve(r.Context(), id)
	writeResult(w, r, h.logger, http.StatusCreated, account, err)
}
