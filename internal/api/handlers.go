// Package api exposes the HTTP handlers for the EcoTrack service.
package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/EMananq/Carbon-Footprint-Calculator-Tracker/internal/auth"
	"github.com/EMananq/Carbon-Footprint-Calculator-Tracker/internal/domain"
	"github.com/EMananq/Carbon-Footprint-Calculator-Tracker/internal/observability"
	"github.com/EMananq/Carbon-Footprint-Calculator-Tracker/internal/persistence"
	"github.com/EMananq/Carbon-Footprint-Calculator-Tracker/internal/recommend"
)

// DefaultTrendWindowDays is applied when the trend endpoint is called
// without a days parameter.
const DefaultTrendWindowDays = 14

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service     *domain.Service
	recommender *recommend.Service
	authCfg     auth.Config
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, recommender *recommend.Service, authCfg auth.Config) *Handler {
	return &Handler{service: service, recommender: recommender, authCfg: authCfg}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/auth/register", h.register)
	mux.HandleFunc("/api/auth/login", h.login)
	mux.HandleFunc("/api/auth/me", h.me)
	mux.HandleFunc("/api/auth/profile", h.updateProfile)
	mux.HandleFunc("/api/activities", h.activities)
	mux.HandleFunc("/api/activities/", h.activityByID)
	mux.HandleFunc("/api/stats", h.stats)
	mux.HandleFunc("/api/stats/trend", h.trend)
	mux.HandleFunc("/api/stats/goal", h.goal)
	mux.HandleFunc("/api/recommendations", h.recommendations)
	mux.HandleFunc("/api/chat", h.chat)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	user, err := h.service.Register(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeAuthResponse(w, http.StatusCreated, user)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "email and password are required")
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeAuthResponse(w, http.StatusOK, user)
}

func (h *Handler) writeAuthResponse(w http.ResponseWriter, status int, user *domain.User) {
	token, err := auth.Sign(user.ID, user.Email, h.authCfg, time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, status, AuthResponse{User: toUserView(*user), Token: token})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	user, err := h.service.GetUser(r.Context(), claims.UserID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserView(*user))
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if strings.TrimSpace(req.DisplayName) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "displayName is required")
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), claims.UserID, req.DisplayName, req.MonthlyGoal)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserView(*user))
}

func (h *Handler) activities(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createActivity(w, r)
	case http.MethodGet:
		h.listActivities(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) activityByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/activities/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing activity id")
		return
	}

	switch r.Method {
	case http.MethodPut:
		h.updateActivity(w, r, id)
	case http.MethodDelete:
		h.deleteActivity(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) createActivity(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	input, ok := h.decodeActivityInput(w, r, claims.UserID)
	if !ok {
		return
	}

	activity, err := h.service.LogActivity(r.Context(), input)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toActivityView(*activity))
}

func (h *Handler) updateActivity(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	input, ok := h.decodeActivityInput(w, r, claims.UserID)
	if !ok {
		return
	}

	activity, err := h.service.UpdateActivity(r.Context(), claims.UserID, id, input)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityView(*activity))
}

func (h *Handler) decodeActivityInput(w http.ResponseWriter, r *http.Request, userID string) (domain.LogActivityInput, bool) {
	var req ActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return domain.LogActivityInput{}, false
	}

	input, err := req.ToInput(userID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return domain.LogActivityInput{}, false
	}
	return input, true
}

func (h *Handler) deleteActivity(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	if err := h.service.DeleteActivity(r.Context(), claims.UserID, id); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "activity deleted"})
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	// Without a limit the full log is returned, newest first, so clients can
	// recompute stats locally and arrive at the same numbers as /api/stats.
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	activities, next, err := h.service.ListActivities(r.Context(), claims.UserID, cursor, limit)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	items := make([]ActivityView, 0, len(activities))
	for _, activity := range activities {
		items = append(items, toActivityView(activity))
	}
	writeJSON(w, http.StatusOK, ListActivitiesResponse{
		Items:      items,
		NextCursor: persistence.EncodeCursor(next),
	})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	start := time.Now()
	stats, err := h.service.Stats(r.Context(), claims.UserID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	observability.ObserveStatsRequest(time.Since(start))

	writeJSON(w, http.StatusOK, toStatsResponse(stats))
}

func (h *Handler) trend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	days := DefaultTrendWindowDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", "days must be an integer")
			return
		}
		days = parsed
	}

	points, err := h.service.Trend(r.Context(), claims.UserID, days)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	out := make([]TrendPointView, 0, len(points))
	for _, p := range points {
		out = append(out, TrendPointView{Date: p.Date, Emission: p.Emission})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) goal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	report, err := h.service.Goal(r.Context(), claims.UserID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, GoalResponse{
		Percentage: report.Progress.Percentage,
		Status:     string(report.Progress.Status),
		Monthly:    report.Monthly,
		Goal:       report.Goal,
	})
}

func (h *Handler) recommendations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	stats, err := h.service.Stats(r.Context(), claims.UserID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	recent, _, err := h.service.ListActivities(r.Context(), claims.UserID, nil, 10)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	items := make([]recommend.RecentActivity, 0, len(recent))
	for _, activity := range recent {
		items = append(items, recommend.RecentActivity{
			Type:       activity.Type,
			Value:      activity.Value,
			Unit:       activity.Unit,
			EmissionKg: activity.Emission,
		})
	}

	recs := h.recommender.Recommendations(r.Context(), toRecommendStats(stats), items)
	writeJSON(w, http.StatusOK, RecommendationsResponse{Recommendations: recs})
}

func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "message is required")
		return
	}

	stats, err := h.service.Stats(r.Context(), claims.UserID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	reply := h.recommender.Chat(r.Context(), req.Message, req.History, toRecommendStats(stats))
	writeJSON(w, http.StatusOK, ChatResponse{Reply: reply})
}

func toRecommendStats(stats domain.EmissionStats) recommend.Stats {
	return recommend.Stats{
		Monthly:   stats.Monthly,
		Transport: stats.ByCategory[domain.CategoryTransport],
		Energy:    stats.ByCategory[domain.CategoryEnergy],
		Diet:      stats.ByCategory[domain.CategoryDiet],
	}
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrActivityNotFound):
		writeError(w, http.StatusNotFound, "not_found", "activity not found")
	case errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "not_found", "user not found")
	case errors.Is(err, domain.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, "validation_failed", "email already registered")
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
	case errors.Is(err, domain.ErrInvalidGoal), errors.Is(err, domain.ErrInvalidWindow):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

// RegisterRequest is the payload for POST /api/auth/register.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// Validate ensures request correctness.
func (r RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return errors.New("email is required")
	}
	if r.Password == "" {
		return errors.New("password is required")
	}
	if strings.TrimSpace(r.DisplayName) == "" {
		return errors.New("displayName is required")
	}
	return nil
}

// LoginRequest is the payload for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest is the payload for PUT /api/auth/profile.
type UpdateProfileRequest struct {
	DisplayName string `json:"displayName"`
	MonthlyGoal int    `json:"monthlyGoal"`
}

// AuthResponse carries the account plus a bearer token.
type AuthResponse struct {
	User  UserView `json:"user"`
	Token string   `json:"token"`
}

// UserView exposes account details.
type UserView struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	MonthlyGoal int       `json:"monthlyGoal"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ActivityRequest is the payload for creating or updating an activity.
type ActivityRequest struct {
	Category string  `json:"category"`
	Type     string  `json:"type"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit"`
	Date     string  `json:"date"` // YYYY-MM-DD
	Notes    string  `json:"notes"`
}

// ToInput validates the request and converts it to a domain input. The
// write boundary is strict: all fields present, value positive and finite,
// category from the closed set. Read-side aggregation stays lenient.
func (r ActivityRequest) ToInput(userID string) (domain.LogActivityInput, error) {
	if r.Category == "" || r.Type == "" || r.Unit == "" || r.Date == "" {
		return domain.LogActivityInput{}, errors.New("category, type, value, unit and date are required")
	}
	if r.Value <= 0 {
		return domain.LogActivityInput{}, errors.New("value must be > 0")
	}
	if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
		return domain.LogActivityInput{}, errors.New("value must be finite")
	}

	category := domain.Category(r.Category)
	if !category.Known() {
		return domain.LogActivityInput{}, errors.New("category must be one of transport, energy, diet, other")
	}

	date, err := time.Parse(time.DateOnly, r.Date)
	if err != nil {
		return domain.LogActivityInput{}, errors.New("date must be formatted YYYY-MM-DD")
	}

	return domain.LogActivityInput{
		UserID:   userID,
		Category: category,
		Type:     r.Type,
		Value:    r.Value,
		Unit:     r.Unit,
		Date:     date,
		Notes:    r.Notes,
	}, nil
}

// ActivityView exposes full details about an activity.
type ActivityView struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Category  string    `json:"category"`
	Type      string    `json:"type"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
	Emission  float64   `json:"emission"`
	Date      string    `json:"date"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListActivitiesResponse packages list results.
type ListActivitiesResponse struct {
	Items      []ActivityView `json:"items"`
	NextCursor string         `json:"nextCursor,omitempty"`
}

// StatsResponse mirrors EmissionStats on the wire.
type StatsResponse struct {
	Daily      float64            `json:"daily"`
	Weekly     float64            `json:"weekly"`
	Monthly    float64            `json:"monthly"`
	ByCategory map[string]float64 `json:"byCategory"`
}

// TrendPointView is one day of the trend series.
type TrendPointView struct {
	Date     string  `json:"date"`
	Emission float64 `json:"emission"`
}

// GoalResponse reports goal progress alongside its inputs.
type GoalResponse struct {
	Percentage float64 `json:"percentage"`
	Status     string  `json:"status"`
	Monthly    float64 `json:"monthly"`
	Goal       int     `json:"goal"`
}

// RecommendationsResponse wraps the advice list.
type RecommendationsResponse struct {
	Recommendations []string `json:"recommendations"`
}

// ChatRequest is the payload for POST /api/chat.
type ChatRequest struct {
	Message string              `json:"message"`
	History []recommend.Message `json:"history"`
}

// ChatResponse carries the advisor's reply.
type ChatResponse struct {
	Reply string `json:"reply"`
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toUserView(user domain.User) UserView {
	return UserView{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		MonthlyGoal: user.MonthlyGoal,
		CreatedAt:   user.CreatedAt,
	}
}

func toActivityView(activity domain.Activity) ActivityView {
	return ActivityView{
		ID:        activity.ID,
		UserID:    activity.UserID,
		Category:  string(activity.Category),
		Type:      activity.Type,
		Value:     activity.Value,
		Unit:      activity.Unit,
		Emission:  activity.Emission,
		Date:      activity.Date.Format(time.DateOnly),
		Notes:     activity.Notes,
		CreatedAt: activity.CreatedAt,
	}
}

func toStatsResponse(stats domain.EmissionStats) StatsResponse {
	byCategory := make(map[string]float64, len(stats.ByCategory))
	for category, total := range stats.ByCategory {
		byCategory[string(category)] = total
	}
	return StatsResponse{
		Daily:      stats.Daily,
		Weekly:     stats.Weekly,
		Monthly:    stats.Monthly,
		ByCategory: byCategory,
	}
}
