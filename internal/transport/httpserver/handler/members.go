package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	memberdomain "somiti-server/internal/domain/member"
)

type memberResponse struct {
	ID          string     `json:"_id"`
	UID         string     `json:"uid,omitempty"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	Photo       string     `json:"photo,omitempty"`
	PhoneNumber string     `json:"phoneNumber,omitempty"`
	IsActive    bool       `json:"isActive"`
	CreatedBy   string     `json:"createdBy,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
}

type memberSummaryResponse struct {
	memberResponse
	TotalContributions float64 `json:"totalContributions"`
}

type registerRequest struct {
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	Photo       string     `json:"photo"`
	PhoneNumber string     `json:"phoneNumber"`
	UID         string     `json:"uid"`
	CreatedAt   *time.Time `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
}

type assignRequest struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	Password    string `json:"password"`
	Photo       string `json:"photo"`
	PhoneNumber string `json:"phoneNumber"`
	Role        string `json:"role"`
}

type updateStatusRequest struct {
	Role        string   `json:"role"`
	IsActive    FlexBool `json:"isActive"`
	Name        string   `json:"name"`
	PhoneNumber string   `json:"phoneNumber"`
	PhotoURL    string   `json:"photoURL"`
}

type updateProfileRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	Photo       string `json:"photo"`
}

type lastLoginRequest struct {
	LastLoginAt *time.Time `json:"lastLoginAt"`
}

type updateResultResponse struct {
	MatchedCount  int64  `json:"matchedCount"`
	ModifiedCount int64  `json:"modifiedCount"`
	Message       string `json:"message,omitempty"`
}

type emailTakenResponse struct {
	Error   string         `json:"error"`
	Message string         `json:"message"`
	User    memberResponse `json:"user"`
}

type messageResponse struct {
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
}

type profileResponse struct {
	Result       memberResponse        `json:"result"`
	Transactions []transactionResponse `json:"transactions"`
	Message      string                `json:"message"`
}

type deleteMemberResponse struct {
	DeletedID string `json:"deletedId"`
	Message   string `json:"message"`
}

func (h *Handlers) RegisterMember(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	result, created, err := h.Members.Register(r.Context(), memberdomain.RegisterInput{
		Email:       req.Email,
		Name:        req.Name,
		Role:        memberdomain.Role(strings.TrimSpace(req.Role)),
		Photo:       req.Photo,
		PhoneNumber: req.PhoneNumber,
		UID:         req.UID,
		CreatedAt:   req.CreatedAt,
		LastLoginAt: req.LastLoginAt,
	})
	if err != nil {
		h.writeMemberError(w, "members.register", err, "email", req.Email)
		return
	}

	if !created {
		writeJSON(w, http.StatusOK, toMemberResponse(*result))
		return
	}
	writeJSON(w, http.StatusCreated, messageResponse{
		Data:    toMemberResponse(*result),
		Message: "user created",
	})
}

func (h *Handlers) AssignMember(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	result, err := h.Members.Assign(r.Context(), memberdomain.AssignInput{
		Email:       req.Email,
		Name:        req.Name,
		Password:    req.Password,
		Photo:       req.Photo,
		PhoneNumber: req.PhoneNumber,
		Role:        memberdomain.Role(strings.TrimSpace(req.Role)),
	})
	if err != nil {
		h.writeMemberError(w, "members.assign", err, "email", req.Email)
		return
	}

	writeJSON(w, http.StatusCreated, messageResponse{
		Data:    toMemberResponse(*result),
		Message: "user created",
	})
}

func (h *Handlers) ListMembers(w http.ResponseWriter, r *http.Request) {
	query, err := parseMemberQuery(r)
	if err != nil {
		h.log.BusinessError("members.list: invalid query", err, "query", r.URL.RawQuery)
		writeError(w, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}

	items, err := h.Members.List(r.Context(), query)
	if err != nil {
		h.writeMemberError(w, "members.list", err)
		return
	}

	response := make([]memberSummaryResponse, 0, len(items))
	for _, item := range items {
		response = append(response, memberSummaryResponse{
			memberResponse:     toMemberResponse(item.Member),
			TotalContributions: item.TotalContributions,
		})
	}
	writeJSON(w, http.StatusOK, response)
}

func parseMemberQuery(r *http.Request) (memberdomain.Query, error) {
	values := r.URL.Query()
	var query memberdomain.Query

	if role := strings.TrimSpace(values.Get("role")); role != "" {
		parsed := memberdomain.Role(role)
		if !parsed.Valid() {
			return query, memberdomain.ErrInvalidRole
		}
		query.Criteria = append(query.Criteria, memberdomain.ExactMatch{Field: memberdomain.FieldRole, Value: parsed})
	}

	active, err := parseBoolParam(values.Get("active"))
	if err != nil {
		return query, err
	}
	if active != nil {
		query.Criteria = append(query.Criteria, memberdomain.ExactMatch{Field: memberdomain.FieldIsActive, Value: *active})
	}

	if search := strings.TrimSpace(values.Get("search")); search != "" {
		query.Criteria = append(query.Criteria, memberdomain.TextSearch{
			Fields: []string{memberdomain.FieldName, memberdomain.FieldPhoneNumber},
			Term:   search,
		})
	}

	if filter := strings.TrimSpace(values.Get("filter")); filter != "" {
		contribution, err := memberdomain.ParseContributionRange(filter)
		if err != nil {
			return query, err
		}
		query.Criteria = append(query.Criteria, contribution)
	}

	query.Sort, err = memberdomain.ParseSort(values.Get("sort"))
	if err != nil {
		return query, err
	}
	return query, nil
}

func (h *Handlers) GetMemberProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	email := r.URL.Query().Get("email")

	profile, err := h.Members.Profile(r.Context(), id, email)
	if err != nil {
		h.writeMemberError(w, "members.profile", err, "id", id, "email", email)
		return
	}

	txs := make([]transactionResponse, 0, len(profile.Transactions))
	for _, tx := range profile.Transactions {
		txs = append(txs, toTransactionResponse(tx))
	}
	writeJSON(w, http.StatusOK, profileResponse{
		Result:       toMemberResponse(profile.Member),
		Transactions: txs,
		Message:      "user profile retrieved",
	})
}

func (h *Handlers) UpdateMemberStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	result, err := h.Members.UpdateStatus(r.Context(), id, memberdomain.StatusInput{
		Role:        memberdomain.Role(strings.TrimSpace(req.Role)),
		IsActive:    req.IsActive.Ptr(),
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		h.writeMemberError(w, "members.update_status", err, "id", id)
		return
	}

	response := updateResultResponse{MatchedCount: result.MatchedCount, ModifiedCount: result.ModifiedCount}
	if result.ModifiedCount == 0 {
		response.Message = "no changes to update"
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) UpdateMemberProfile(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	result, err := h.Members.UpdateProfile(r.Context(), email, memberdomain.ProfileInput{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Photo:       req.Photo,
	})
	if err != nil {
		h.writeMemberError(w, "members.update_profile", err, "email", email)
		return
	}

	writeJSON(w, http.StatusOK, updateResultResponse{MatchedCount: result.MatchedCount, ModifiedCount: result.ModifiedCount})
}

func (h *Handlers) TouchMemberLastLogin(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	var req lastLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	var at time.Time
	if req.LastLoginAt != nil {
		at = *req.LastLoginAt
	}

	result, err := h.Members.TouchLastLogin(r.Context(), email, at)
	if err != nil {
		h.writeMemberError(w, "members.last_login", err, "email", email)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Data:    updateResultResponse{MatchedCount: result.MatchedCount, ModifiedCount: result.ModifiedCount},
		Message: "lastLoginAt updated",
	})
}

func (h *Handlers) DeleteMember(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	uid, err := h.Members.Delete(r.Context(), email)
	if err != nil {
		h.writeMemberError(w, "members.delete", err, "email", email)
		return
	}

	writeJSON(w, http.StatusOK, deleteMemberResponse{DeletedID: uid, Message: "user deleted"})
}

// writeMemberError maps member service errors to responses. op prefixes the
// log message, e.g. "members.delete".
func (h *Handlers) writeMemberError(w http.ResponseWriter, op string, err error, args ...any) {
	var taken *memberdomain.EmailTakenError
	switch {
	case errors.As(err, &taken) && taken.Existing != nil:
		h.log.BusinessError(op+": email already registered", err, args...)
		writeJSON(w, http.StatusBadRequest, emailTakenResponse{
			Error:   "email_taken",
			Message: err.Error(),
			User:    toMemberResponse(*taken.Existing),
		})
	case errors.Is(err, memberdomain.ErrEmailTaken):
		h.log.BusinessError(op+": email already registered", err, args...)
		writeError(w, http.StatusBadRequest, "email_taken", err.Error())
	case errors.Is(err, memberdomain.ErrMemberNotFound):
		h.log.BusinessError(op+": member not found", err, args...)
		writeError(w, http.StatusNotFound, "member_not_found", "user not found")
	case errors.Is(err, memberdomain.ErrInvalidEmail),
		errors.Is(err, memberdomain.ErrInvalidID),
		errors.Is(err, memberdomain.ErrLookupRequired),
		errors.Is(err, memberdomain.ErrInvalidRole),
		errors.Is(err, memberdomain.ErrMissingUID),
		errors.Is(err, memberdomain.ErrMissingEmail),
		errors.Is(err, memberdomain.ErrInvalidQuery),
		errors.Is(err, memberdomain.ErrPasswordTooShort):
		h.log.BusinessError(op+": invalid request", err, args...)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, memberdomain.ErrIdentityFailure):
		h.log.InternalError(op+": identity provider failed", err, args...)
		writeError(w, http.StatusInternalServerError, "identity_error", "identity provider request failed")
	case errors.Is(err, memberdomain.ErrNotDeleted):
		h.log.InternalError(op+": member not deleted", err, args...)
		writeError(w, http.StatusInternalServerError, "not_deleted", err.Error())
	default:
		h.log.InternalError(op+": failed", err, args...)
		writeInternalError(w)
	}
}

func toMemberResponse(m memberdomain.Member) memberResponse {
	return memberResponse{
		ID:          m.ID,
		UID:         m.UID,
		Email:       m.Email,
		Name:        m.Name,
		Role:        string(m.Role),
		Photo:       m.Photo,
		PhoneNumber: m.PhoneNumber,
		IsActive:    m.IsActive,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
		LastLoginAt: m.LastLoginAt,
	}
}
